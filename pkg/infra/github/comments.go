package github

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

// ListComments returns the PR's comments in creation order.
func (c *client) ListComments(ctx context.Context, owner, repo string, number int) ([]model.Comment, error) {
	var comments []model.Comment
	opts := &github.IssueListCommentsOptions{
		Sort:        github.Ptr("created"),
		Direction:   github.Ptr("asc"),
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		page, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list comments",
				goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
		}

		for _, cm := range page {
			comments = append(comments, model.Comment{
				ID:   cm.GetID(),
				Body: cm.GetBody(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// CreateComment posts a new comment on the PR and returns its ID.
func (c *client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	cm, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create comment",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
	}
	return cm.GetID(), nil
}

// UpdateComment replaces the body of an existing comment.
func (c *client) UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	_, _, err := c.gh.Issues.EditComment(ctx, owner, repo, commentID, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to update comment",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("comment_id", commentID))
	}
	return nil
}
