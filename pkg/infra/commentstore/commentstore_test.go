package commentstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
	"github.com/m-mizutani/dependahunt/pkg/infra/commentstore"
)

// commentThreadMock simulates the PR comment thread behind the GitHub API.
type commentThreadMock struct {
	comments []model.Comment
	nextID   int64

	updateCalls int
	createCalls int
}

func newCommentThreadMock() *commentThreadMock {
	return &commentThreadMock{nextID: 100}
}

func (m *commentThreadMock) GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	return nil, nil
}

func (m *commentThreadMock) ListDependabotAlerts(ctx context.Context, owner, repo string) ([]model.Alert, error) {
	return nil, nil
}

func (m *commentThreadMock) ListComments(ctx context.Context, owner, repo string, number int) ([]model.Comment, error) {
	return m.comments, nil
}

func (m *commentThreadMock) CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	m.createCalls++
	id := m.nextID
	m.nextID++
	m.comments = append(m.comments, model.Comment{ID: id, Body: body})
	return id, nil
}

func (m *commentThreadMock) UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	m.updateCalls++
	for i := range m.comments {
		if m.comments[i].ID == commentID {
			m.comments[i].Body = body
			return nil
		}
	}
	return nil
}

func (m *commentThreadMock) UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error {
	return nil
}

func (m *commentThreadMock) ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]model.ChangedFile, error) {
	return nil, nil
}

func record(pkg, sha string, ts time.Time) *model.AnalysisRecord {
	return &model.AnalysisRecord{
		PackageName: pkg,
		PRNumber:    42,
		RevisionSHA: sha,
		Verdict:     model.VerdictSafe,
		Rationale:   "ok",
		Timestamp:   ts,
	}
}

func renderBody(t *testing.T, rec *model.AnalysisRecord) string {
	t.Helper()
	marker, err := model.AnalyzedPackageMarker.Encode(rec)
	gt.NoError(t, err)
	return "analysis result\n\n" + marker + "\n"
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	gh := newCommentThreadMock()
	store := commentstore.New(gh, "test", "repo")

	rec := record("lodash", "sha-1", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	id, err := store.Append(ctx, rec, renderBody(t, rec))
	gt.NoError(t, err)
	gt.True(t, id > 0)

	got, ok, err := store.LoadLatest(ctx, 42, "lodash")
	gt.NoError(t, err)
	gt.True(t, ok)
	gt.Equal(t, got.PackageName, "lodash")
	gt.Equal(t, got.RevisionSHA, "sha-1")
	gt.Equal(t, got.CommentID, id)
}

func TestStore_LoadLatest(t *testing.T) {
	ctx := context.Background()

	t.Run("empty thread", func(t *testing.T) {
		store := commentstore.New(newCommentThreadMock(), "test", "repo")
		_, ok, err := store.LoadLatest(ctx, 42, "lodash")
		gt.NoError(t, err)
		gt.Equal(t, ok, false)
	})

	t.Run("latest timestamp wins regardless of comment order", func(t *testing.T) {
		gh := newCommentThreadMock()
		store := commentstore.New(gh, "test", "repo")

		newer := record("lodash", "sha-2", time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC))
		older := record("lodash", "sha-1", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))

		// Newer record appears earlier in the thread.
		_, err := store.Append(ctx, newer, renderBody(t, newer))
		gt.NoError(t, err)
		_, err = store.Append(ctx, older, renderBody(t, older))
		gt.NoError(t, err)

		got, ok, err := store.LoadLatest(ctx, 42, "lodash")
		gt.NoError(t, err)
		gt.True(t, ok)
		gt.Equal(t, got.RevisionSHA, "sha-2")
	})

	t.Run("other packages and malformed markers are skipped", func(t *testing.T) {
		gh := newCommentThreadMock()
		gh.comments = []model.Comment{
			{ID: 1, Body: "<!-- dependahunt:analyzed-package {broken -->"},
			{ID: 2, Body: "plain human comment"},
			{ID: 3, Body: renderBody(t, record("express", "sha-1", time.Now().UTC()))},
		}
		store := commentstore.New(gh, "test", "repo")

		_, ok, err := store.LoadLatest(ctx, 42, "lodash")
		gt.NoError(t, err)
		gt.Equal(t, ok, false)
	})
}

func TestStore_AppendIdempotence(t *testing.T) {
	ctx := context.Background()

	t.Run("same revision edits the existing comment", func(t *testing.T) {
		gh := newCommentThreadMock()
		store := commentstore.New(gh, "test", "repo")

		first := record("lodash", "sha-1", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
		id1, err := store.Append(ctx, first, renderBody(t, first))
		gt.NoError(t, err)

		second := record("lodash", "sha-1", time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC))
		second.Rationale = "updated rationale"
		id2, err := store.Append(ctx, second, renderBody(t, second))
		gt.NoError(t, err)

		gt.Equal(t, id1, id2)
		gt.Equal(t, gh.createCalls, 1)
		gt.Equal(t, gh.updateCalls, 1)
		gt.Equal(t, len(gh.comments), 1)
	})

	t.Run("new revision creates a new comment", func(t *testing.T) {
		gh := newCommentThreadMock()
		store := commentstore.New(gh, "test", "repo")

		first := record("lodash", "sha-1", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
		id1, err := store.Append(ctx, first, renderBody(t, first))
		gt.NoError(t, err)

		second := record("lodash", "sha-2", time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC))
		id2, err := store.Append(ctx, second, renderBody(t, second))
		gt.NoError(t, err)

		gt.V(t, id1).NotEqual(id2)
		gt.Equal(t, gh.createCalls, 2)
		gt.Equal(t, len(gh.comments), 2)
	})

	t.Run("different packages never collide", func(t *testing.T) {
		gh := newCommentThreadMock()
		store := commentstore.New(gh, "test", "repo")

		lodash := record("lodash", "sha-1", time.Now().UTC())
		express := record("express", "sha-1", time.Now().UTC())

		id1, err := store.Append(ctx, lodash, renderBody(t, lodash))
		gt.NoError(t, err)
		id2, err := store.Append(ctx, express, renderBody(t, express))
		gt.NoError(t, err)

		gt.V(t, id1).NotEqual(id2)
		gt.Equal(t, gh.createCalls, 2)
	})
}
