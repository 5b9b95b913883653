package interfaces

import (
	"context"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

// Notifier delivers out-of-band run summaries (e.g. Slack). Best effort:
// failures are logged, never escalated.
type Notifier interface {
	NotifyRunResult(ctx context.Context, result *model.RunResult) error
}

// CVEEnricher supplements alert data with external advisory details.
type CVEEnricher interface {
	FetchCVE(ctx context.Context, cveID string) (*model.CVEDetail, error)
}
