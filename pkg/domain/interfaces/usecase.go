package interfaces

import (
	"context"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

// AnalyzeUseCase drives one full analysis run for a single PR.
type AnalyzeUseCase interface {
	Run(ctx context.Context, intent *model.Intent) (*model.RunResult, error)
}
