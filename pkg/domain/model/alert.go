package model

// Alert is a vulnerability record from the repository's Dependabot alert
// feed. One alert may carry several advisories; each (alert, vulnerability)
// pair for a package is flattened into its own Alert. Read-only to this
// system: alerts are trusted as-is.
type Alert struct {
	Number          int    `json:"number"`
	CVEID           string `json:"cve_id,omitempty"`
	GHSAID          string `json:"ghsa_id,omitempty"`
	PackageName     string `json:"package"`
	Ecosystem       string `json:"ecosystem,omitempty"`
	VulnerableRange string `json:"vulnerable_range"`
	PatchedVersion  string `json:"patched_version,omitempty"`
	Severity        string `json:"severity,omitempty"`
	Summary         string `json:"summary,omitempty"`
	URL             string `json:"url,omitempty"`
}

// Identifier returns the best available advisory ID for display.
func (a Alert) Identifier() string {
	if a.CVEID != "" {
		return a.CVEID
	}
	return a.GHSAID
}

// CVEDetail is supplemental CVE information fetched from NVD.
type CVEDetail struct {
	ID          string
	Description string
	Severity    string
}
