package usecase

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

// Correlate matches each package update against the repository's alert set
// and decides whether the update remediates what it matched.
//
// An alert matches when its package name equals the update's name exactly
// and its vulnerable range plausibly contains FromVersion. Alerts are
// trusted as-is: when either side fails to parse, the alert stays matched
// rather than silently dropping a finding.
//
// Remediated holds iff every matched alert is resolved by ToVersion; a
// package with no matched alerts is trivially remediated and still emitted,
// so the analysis can state the absence of known vulnerabilities.
func Correlate(updates []model.PackageUpdate, alerts []model.Alert) []model.Correlation {
	out := make([]model.Correlation, 0, len(updates))

	for _, u := range updates {
		var matched []model.Alert
		remediated := true

		for _, a := range alerts {
			if a.PackageName != u.Name {
				continue
			}
			if !versionPlausiblyInRange(u.FromVersion, a.VulnerableRange) {
				continue
			}

			if u.Ecosystem == "" {
				u.Ecosystem = a.Ecosystem
			}
			matched = append(matched, a)
			if !alertRemediated(u.ToVersion, a) {
				remediated = false
			}
		}

		out = append(out, model.Correlation{
			Update:        u,
			MatchedAlerts: matched,
			Remediated:    remediated,
		})
	}

	return out
}

// FilterUpdates narrows updates to the one exactly matching filter. The
// second return distinguishes "no such package in this PR" from "analyzed,
// no alerts".
func FilterUpdates(updates []model.PackageUpdate, filter string) ([]model.PackageUpdate, bool) {
	if filter == "" {
		return updates, true
	}
	for _, u := range updates {
		if u.Name == filter {
			return []model.PackageUpdate{u}, true
		}
	}
	return nil, false
}

var severityRank = map[string]int{
	"low":      1,
	"medium":   2,
	"moderate": 2,
	"high":     3,
	"critical": 4,
}

// FilterAlertsBySeverity drops alerts below the policy's minimum severity.
// Alerts with unknown severity are kept; an unknown minimum disables the
// filter.
func FilterAlertsBySeverity(alerts []model.Alert, minSeverity string) []model.Alert {
	minRank, ok := severityRank[strings.ToLower(minSeverity)]
	if !ok {
		return alerts
	}

	var out []model.Alert
	for _, a := range alerts {
		rank, known := severityRank[strings.ToLower(a.Severity)]
		if known && rank < minRank {
			continue
		}
		out = append(out, a)
	}
	return out
}

// alertRemediated reports whether toVersion resolves a single alert: the
// version left the vulnerable range, or reached the first patched version.
func alertRemediated(toVersion string, a model.Alert) bool {
	if !versionPlausiblyInRange(toVersion, a.VulnerableRange) {
		return true
	}
	if a.PatchedVersion != "" && compareVersions(toVersion, a.PatchedVersion) >= 0 {
		return true
	}
	return false
}

// versionPlausiblyInRange checks range membership, erring on the side of a
// match: unparseable versions or ranges keep the alert in scope.
func versionPlausiblyInRange(version, rangeStr string) bool {
	c, err := parseRange(rangeStr)
	if err != nil {
		return true
	}
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return true
	}
	return c.Check(v)
}

// parseRange parses a GitHub vulnerable_version_range expression such as
// "< 4.17.21" or ">= 4.0.0, < 4.17.21".
func parseRange(rangeStr string) (*semver.Constraints, error) {
	return semver.NewConstraint(strings.TrimSpace(rangeStr))
}

// compareVersions orders two versions semantically, falling back to string
// comparison when either fails to parse.
func compareVersions(a, b string) int {
	va, errA := semver.NewVersion(strings.TrimSpace(a))
	vb, errB := semver.NewVersion(strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}
