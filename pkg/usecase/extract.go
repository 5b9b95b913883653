package usecase

import (
	"encoding/json"
	"regexp"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

// Renovate writes one target-package marker per updated package into the PR
// body. Dependabot PRs carry no markers, so their prose is matched instead:
// "Bumps [pkg](url) from 1.2.3 to 1.2.4" or the plain-text equivalent.
var (
	bumpsLinkRe = regexp.MustCompile(
		`(?i)Bumps?\s+\[(@?[a-zA-Z0-9\-_./]+)\]\([^)]+\)\s+from\s+([\d]+(?:\.[\d]+)*(?:-[a-zA-Z0-9.]+)?)\s+to\s+([\d]+(?:\.[\d]+)*(?:-[a-zA-Z0-9.]+)?)`)
	bumpsPlainRe = regexp.MustCompile(
		`(?i)Bumps?\s+(@?[a-zA-Z0-9\-_./]+)\s+from\s+([\d]+(?:\.[\d]+)*(?:-[a-zA-Z0-9.]+)?)\s+to\s+([\d]+(?:\.[\d]+)*(?:-[a-zA-Z0-9.]+)?)`)
)

// ExtractPackageUpdates pulls every package-version change out of a PR
// body. Marker form wins over prose; prose matching stops at the first
// match since Dependabot writes one package per PR.
func ExtractPackageUpdates(prBody string) []model.PackageUpdate {
	var updates []model.PackageUpdate

	for _, raw := range model.TargetPackageMarker.ExtractAll(prBody) {
		var info model.TargetPackageInfo
		if err := json.Unmarshal(raw, &info); err != nil || info.PackageName == "" {
			continue
		}
		updates = append(updates, model.PackageUpdate{
			Name:        info.PackageName,
			FromVersion: info.CurrentVersion,
			ToVersion:   info.NewVersion,
		})
	}
	if len(updates) > 0 {
		return updates
	}

	for _, re := range []*regexp.Regexp{bumpsLinkRe, bumpsPlainRe} {
		if m := re.FindStringSubmatch(prBody); m != nil {
			return []model.PackageUpdate{{
				Name:        m[1],
				FromVersion: m[2],
				ToVersion:   m[3],
			}}
		}
	}

	return nil
}
