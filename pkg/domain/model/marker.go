package model

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// Markers are structured payloads hidden inside HTML comments. They are the
// only persistence mechanism: analysis state is recovered by scanning the PR
// comment thread for them. Format:
//
//	<!-- dependahunt:analyzed-package {"package":"lodash",...} -->
//
// Malformed or foreign markers are skipped, never fatal.
const markerPrefix = "dependahunt"

// Marker encodes and scans one marker kind.
type Marker struct {
	tag       string
	bareRe    *regexp.Regexp
	payloadRe *regexp.Regexp
}

func newMarker(kind string) Marker {
	tag := markerPrefix + ":" + kind
	return Marker{
		tag:       tag,
		bareRe:    regexp.MustCompile(`<!--\s+` + regexp.QuoteMeta(tag) + `\s+-->`),
		payloadRe: regexp.MustCompile(`<!--\s+` + regexp.QuoteMeta(tag) + `\s+([^\n]+?)\s*-->`),
	}
}

var (
	// AnalyzedPackageMarker carries an AnalysisRecord per published analysis.
	AnalyzedPackageMarker = newMarker("analyzed-package")

	// TargetPackageMarker is written into PR bodies by renovate config and
	// carries a TargetPackageInfo per updated package.
	TargetPackageMarker = newMarker("target-package")

	// CVEInfoMarker guards the CVE section appended to the PR body so it is
	// only added once.
	CVEInfoMarker = newMarker("cve-info")
)

// Encode renders the marker with a JSON payload.
func (m Marker) Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal marker payload", goerr.V("tag", m.tag))
	}
	return fmt.Sprintf("<!-- %s %s -->", m.tag, raw), nil
}

// EncodeBare renders the marker without a payload.
func (m Marker) EncodeBare() string {
	return fmt.Sprintf("<!-- %s -->", m.tag)
}

// ExistsIn reports whether the marker appears in text, with or without a
// payload.
func (m Marker) ExistsIn(text string) bool {
	return m.bareRe.MatchString(text) || m.payloadRe.MatchString(text)
}

// Extract unmarshals the first payload found in text into out. Returns false
// when no marker is present or its payload is not valid JSON.
func (m Marker) Extract(text string, out any) bool {
	match := m.payloadRe.FindStringSubmatch(text)
	if match == nil {
		return false
	}
	return json.Unmarshal([]byte(match[1]), out) == nil
}

// ExtractAll returns every well-formed payload found in text. Payloads that
// fail to parse are dropped.
func (m Marker) ExtractAll(text string) []json.RawMessage {
	var out []json.RawMessage
	for _, match := range m.payloadRe.FindAllStringSubmatch(text, -1) {
		raw := json.RawMessage(match[1])
		if !json.Valid(raw) {
			continue
		}
		out = append(out, raw)
	}
	return out
}

// Tag returns the marker's tag, for logging.
func (m Marker) Tag() string {
	return m.tag
}
