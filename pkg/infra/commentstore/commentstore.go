// Package commentstore persists analysis records in the PR's own comment
// thread. There is no external database: each published comment embeds a
// machine-parseable marker, and reads recompute state by scanning the
// thread. Comment volume per PR is small and bounded, so a full scan per
// read is acceptable.
package commentstore

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
	"github.com/m-mizutani/dependahunt/pkg/domain/model"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

type store struct {
	gh    interfaces.GitHubClient
	owner string
	repo  string
}

// New creates an AnalysisStore backed by the comment thread of PRs in the
// given repository.
func New(gh interfaces.GitHubClient, owner, repo string) interfaces.AnalysisStore {
	return &store{gh: gh, owner: owner, repo: repo}
}

// LoadLatest scans the PR's comments for analyzed-package markers matching
// the key and returns the record with the greatest timestamp. Malformed or
// foreign markers are ignored.
func (s *store) LoadLatest(ctx context.Context, prNumber int, packageName string) (*model.AnalysisRecord, bool, error) {
	comments, err := s.gh.ListComments(ctx, s.owner, s.repo, prNumber)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to scan comment thread")
	}

	var latest *model.AnalysisRecord
	for _, c := range comments {
		for _, rec := range decodeRecords(ctx, c) {
			if rec.PackageName != packageName || rec.PRNumber != prNumber {
				continue
			}
			if latest == nil || rec.Timestamp.After(latest.Timestamp) {
				latest = rec
			}
		}
	}

	if latest == nil {
		return nil, false, nil
	}
	return latest, true, nil
}

// Append publishes rec by creating a comment, or editing the existing one
// when a marker with the same (PR, package, revision) is already present.
// Editing in place keeps at most one current comment per package per PR
// revision while older revisions remain as history.
func (s *store) Append(ctx context.Context, rec *model.AnalysisRecord, body string) (int64, error) {
	comments, err := s.gh.ListComments(ctx, s.owner, s.repo, rec.PRNumber)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to scan comment thread before append",
			goerr.Tag(types.ErrTagPublish))
	}

	for _, c := range comments {
		for _, prev := range decodeRecords(ctx, c) {
			if prev.PackageName != rec.PackageName || prev.PRNumber != rec.PRNumber {
				continue
			}
			if prev.RevisionSHA != rec.RevisionSHA {
				continue
			}

			if err := s.gh.UpdateComment(ctx, s.owner, s.repo, c.ID, body); err != nil {
				return 0, goerr.Wrap(err, "failed to update analysis comment",
					goerr.Tag(types.ErrTagPublish), goerr.V("comment_id", c.ID))
			}
			return c.ID, nil
		}
	}

	id, err := s.gh.CreateComment(ctx, s.owner, s.repo, rec.PRNumber, body)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create analysis comment",
			goerr.Tag(types.ErrTagPublish))
	}
	return id, nil
}

func decodeRecords(ctx context.Context, c model.Comment) []*model.AnalysisRecord {
	var out []*model.AnalysisRecord
	for _, raw := range model.AnalyzedPackageMarker.ExtractAll(c.Body) {
		var rec model.AnalysisRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			ctxlog.From(ctx).Debug("skipping malformed analysis marker",
				"comment_id", c.ID, "error", err)
			continue
		}
		if rec.PackageName == "" || rec.Timestamp.IsZero() {
			continue
		}
		rec.CommentID = c.ID
		out = append(out, &rec)
	}
	return out
}
