package model

// Correlation is the computed relationship between one package update and
// the alerts it may resolve.
type Correlation struct {
	Update        PackageUpdate
	MatchedAlerts []Alert

	// Remediated holds iff every matched alert is resolved by ToVersion:
	// the version left the vulnerable range or reached the first patched
	// version. Trivially true when no alerts matched.
	Remediated bool
}

// CVEs returns the unique advisory identifiers across matched alerts,
// preserving first-seen order.
func (c Correlation) CVEs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, a := range c.MatchedAlerts {
		id := a.Identifier()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
