package github

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

// GetPullRequest fetches PR metadata including body and head SHA.
func (c *client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get pull request",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
	}

	return &model.PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		HeadSHA: pr.GetHead().GetSHA(),
	}, nil
}

// UpdatePullRequestBody replaces the PR description.
func (c *client) UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.gh.PullRequests.Edit(ctx, owner, repo, number, &github.PullRequest{
		Body: github.Ptr(body),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to update pull request body",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
	}
	return nil
}

// ListChangedFiles returns the files touched by the PR with their patches.
func (c *client) ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]model.ChangedFile, error) {
	var files []model.ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list changed files",
				goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
		}

		for _, f := range page {
			files = append(files, model.ChangedFile{
				Filename:  f.GetFilename(),
				Patch:     f.GetPatch(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}
