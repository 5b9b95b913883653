package model

import (
	"strconv"
	"time"
)

// Verdict is the AI backend's structured risk conclusion for one package
// update.
type Verdict string

const (
	VerdictSafe         Verdict = "SAFE"
	VerdictVulnerable   Verdict = "VULNERABLE"
	VerdictInconclusive Verdict = "INCONCLUSIVE"
)

// Valid reports whether v is one of the defined verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictSafe, VerdictVulnerable, VerdictInconclusive:
		return true
	}
	return false
}

// Icon returns the marker emoji used in rendered comments.
func (v Verdict) Icon() string {
	switch v {
	case VerdictSafe:
		return "\U0001F7E2" // green circle
	case VerdictVulnerable:
		return "\U0001F534" // red circle
	default:
		return "\U0001F7E1" // yellow circle
	}
}

// RiskAssessment is the structured response expected from the AI backend.
// A response that does not unmarshal into this shape, or carries an unknown
// verdict, is a backend error rather than a best-effort guess.
type RiskAssessment struct {
	Verdict            Verdict  `json:"verdict"`
	RiskLevel          string   `json:"risk_level,omitempty"`
	Confidence         string   `json:"confidence,omitempty"`
	Rationale          string   `json:"rationale"`
	RecommendedActions []string `json:"recommended_actions,omitempty"`
}

// AnalysisRecord is one completed analysis for a (PR, package) pair.
// Records are appended, never deleted; the one with the latest timestamp is
// current and the rest are history. The JSON field names double as the
// comment marker payload format.
type AnalysisRecord struct {
	PackageName string    `json:"package"`
	PRNumber    int       `json:"pr"`
	RevisionSHA string    `json:"revision"`
	Verdict     Verdict   `json:"verdict"`
	Rationale   string    `json:"rationale"`
	Timestamp   time.Time `json:"timestamp"`

	// CommentID is where the record lives; assigned on publish, not part of
	// the marker payload.
	CommentID int64 `json:"-"`
}

// Key identifies the record's (PR, package) pair.
func (r *AnalysisRecord) Key() string {
	return RecordKey(r.PRNumber, r.PackageName)
}

// RecordKey builds the lookup key for a (PR, package) pair.
func RecordKey(pr int, pkg string) string {
	return strconv.Itoa(pr) + "#" + pkg
}

// AnalysisContext is the bounded prompt context handed to the AI backend.
type AnalysisContext struct {
	Correlation       Correlation
	DiffSummary       string
	CVEDetails        []CVEDetail
	AdditionalComment string
	Previous          *AnalysisRecord // latest prior record only, nil when absent
}

// PackageResult is the outcome of one package's pipeline within a run.
type PackageResult struct {
	Package    string
	Verdict    Verdict
	Remediated bool
	CommentID  int64
	Skipped    bool
	SkipReason string
	Err        error
}

// RunResult summarizes one orchestrator invocation.
type RunResult struct {
	Repo     string
	PRNumber int
	Results  []PackageResult
}

// Failed reports how many packages ended in error.
func (r *RunResult) Failed() int {
	var n int
	for _, pr := range r.Results {
		if pr.Err != nil {
			n++
		}
	}
	return n
}
