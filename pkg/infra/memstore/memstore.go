// Package memstore provides an in-memory implementation of
// interfaces.AnalysisStore. Suitable for dev/testing.
package memstore

import (
	"context"
	"sync"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

type entry struct {
	rec       model.AnalysisRecord
	body      string
	commentID int64
}

// Store holds analysis records in memory, keyed like the comment thread.
type Store struct {
	mu      sync.RWMutex
	records map[string][]entry // RecordKey -> append-only history
	nextID  int64
}

var _ interfaces.AnalysisStore = (*Store)(nil)

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{records: make(map[string][]entry), nextID: 1}
}

// LoadLatest returns a copy of the record with the greatest timestamp for
// the key.
func (s *Store) LoadLatest(_ context.Context, prNumber int, packageName string) (*model.AnalysisRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.AnalysisRecord
	for _, e := range s.records[model.RecordKey(prNumber, packageName)] {
		if latest == nil || e.rec.Timestamp.After(latest.Timestamp) {
			cp := e.rec
			cp.CommentID = e.commentID
			latest = &cp
		}
	}
	if latest == nil {
		return nil, false, nil
	}
	return latest, true, nil
}

// Append stores a copy of rec. An existing entry with the same revision is
// replaced in place, mirroring the comment-thread store's idempotent edit.
func (s *Store) Append(_ context.Context, rec *model.AnalysisRecord, body string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.Key()
	for i, e := range s.records[key] {
		if e.rec.RevisionSHA == rec.RevisionSHA {
			s.records[key][i] = entry{rec: *rec, body: body, commentID: e.commentID}
			return e.commentID, nil
		}
	}

	id := s.nextID
	s.nextID++
	s.records[key] = append(s.records[key], entry{rec: *rec, body: body, commentID: id})
	return id, nil
}

// History returns all stored records for the key, oldest first. Test helper.
func (s *Store) History(prNumber int, packageName string) []model.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.AnalysisRecord
	for _, e := range s.records[model.RecordKey(prNumber, packageName)] {
		out = append(out, e.rec)
	}
	return out
}

// Body returns the stored comment body for a comment ID. Test helper.
func (s *Store) Body(commentID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, hist := range s.records {
		for _, e := range hist {
			if e.commentID == commentID {
				return e.body, true
			}
		}
	}
	return "", false
}
