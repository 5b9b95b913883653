package interfaces

import (
	"context"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

// GitHubClient defines the repository operations the analyzer needs. All
// methods are blocking I/O.
type GitHubClient interface {
	// GetPullRequest fetches PR metadata including body and head SHA.
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error)

	// ListDependabotAlerts returns the repository's open alerts, flattened
	// to one Alert per advisory vulnerability.
	ListDependabotAlerts(ctx context.Context, owner, repo string) ([]model.Alert, error)

	// ListComments returns the PR's comments in creation order.
	ListComments(ctx context.Context, owner, repo string, number int) ([]model.Comment, error)

	// CreateComment posts a new comment and returns its ID.
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error)

	// UpdateComment replaces the body of an existing comment.
	UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error

	// UpdatePullRequestBody replaces the PR description.
	UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error

	// ListChangedFiles returns the files touched by the PR with patches.
	ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]model.ChangedFile, error)
}
