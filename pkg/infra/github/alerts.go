package github

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

// ListDependabotAlerts returns the repository's open alerts. Each advisory
// vulnerability entry that targets the alert's own package becomes one
// model.Alert, so the correlator can reason per vulnerable range.
func (c *client) ListDependabotAlerts(ctx context.Context, owner, repo string) ([]model.Alert, error) {
	opts := &github.ListAlertsOptions{
		State:             github.Ptr("open"),
		ListCursorOptions: github.ListCursorOptions{PerPage: 100},
	}

	var out []model.Alert
	for {
		alerts, resp, err := c.gh.Dependabot.ListRepoAlerts(ctx, owner, repo, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list dependabot alerts",
				goerr.V("owner", owner), goerr.V("repo", repo))
		}

		for _, a := range alerts {
			out = append(out, flattenAlert(a)...)
		}

		if resp.After == "" {
			break
		}
		opts.ListCursorOptions.After = resp.After
	}
	return out, nil
}

func flattenAlert(a *github.DependabotAlert) []model.Alert {
	pkgName := a.GetDependency().GetPackage().GetName()
	ecosystem := a.GetDependency().GetPackage().GetEcosystem()
	adv := a.GetSecurityAdvisory()
	if pkgName == "" || adv == nil {
		return nil
	}

	base := model.Alert{
		Number:      a.GetNumber(),
		CVEID:       adv.GetCVEID(),
		GHSAID:      adv.GetGHSAID(),
		PackageName: pkgName,
		Ecosystem:   ecosystem,
		Severity:    adv.GetSeverity(),
		Summary:     adv.GetSummary(),
		URL:         a.GetHTMLURL(),
	}

	var out []model.Alert
	for _, v := range adv.Vulnerabilities {
		if v.GetPackage().GetName() != pkgName {
			continue
		}
		alert := base
		alert.VulnerableRange = v.GetVulnerableVersionRange()
		alert.PatchedVersion = v.GetFirstPatchedVersion().GetIdentifier()
		out = append(out, alert)
	}

	// Advisory without per-package vulnerability entries: keep the alert so
	// the analysis can still mention it.
	if len(out) == 0 {
		out = append(out, base)
	}
	return out
}
