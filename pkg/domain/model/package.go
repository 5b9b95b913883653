package model

// PackageUpdate represents a single package changed by a pull request.
// Immutable for the life of the PR revision being analyzed.
type PackageUpdate struct {
	Ecosystem   string `json:"ecosystem,omitempty"`
	Name        string `json:"name"`
	FromVersion string `json:"from_version"`
	ToVersion   string `json:"to_version"`
}

// TargetPackageInfo is the payload of a renovate-generated target-package
// marker embedded in the PR body. Field names follow the marker format.
type TargetPackageInfo struct {
	PackageName    string `json:"packageName"`
	CurrentVersion string `json:"currentVersion"`
	NewVersion     string `json:"newVersion"`
}

// PullRequest holds the PR fields the analyzer needs.
type PullRequest struct {
	Number  int
	Title   string
	Body    string
	HeadSHA string
}

// Comment is a PR comment as seen by the state store and publisher.
type Comment struct {
	ID   int64
	Body string
}

// ChangedFile is one file touched by the PR, with its unified diff patch.
type ChangedFile struct {
	Filename  string
	Patch     string
	Additions int
	Deletions int
}
