package interfaces

import (
	"context"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

// AnalysisStore persists analysis records. The production implementation is
// backed by the PR comment thread itself; records are appended, never
// deleted, and the latest timestamp wins.
type AnalysisStore interface {
	// LoadLatest returns the current record for a (PR, package) pair, or
	// false when none exists. Malformed stored data is skipped, not fatal.
	LoadLatest(ctx context.Context, prNumber int, packageName string) (*model.AnalysisRecord, bool, error)

	// Append durably stores rec together with its rendered comment body.
	// When a record for the same (PR, package, revision) already exists its
	// comment is replaced in place; otherwise a new comment is created.
	// Returns the comment ID carrying the record.
	Append(ctx context.Context, rec *model.AnalysisRecord, body string) (int64, error)
}
