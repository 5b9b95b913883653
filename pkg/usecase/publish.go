package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
	"github.com/m-mizutani/dependahunt/pkg/domain/model"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

// commentFooter marks comments produced by this system; state recovery
// relies on the marker, the footer is for humans.
const commentFooter = "This comment was automatically generated by dependahunt."

// publisher turns assessments into PR comments and durable records.
type publisher struct {
	store interfaces.AnalysisStore
}

// publish persists the assessment and creates or updates the PR comment.
// With silent set there is no network call at all and the returned ID is
// zero. A failed publish is retried once before giving up.
func (p *publisher) publish(
	ctx context.Context,
	corr model.Correlation,
	assessment *model.RiskAssessment,
	intent *model.Intent,
	prNumber int,
	revisionSHA string,
) (int64, error) {
	if intent.Silent {
		return 0, nil
	}

	rec := &model.AnalysisRecord{
		PackageName: corr.Update.Name,
		PRNumber:    prNumber,
		RevisionSHA: revisionSHA,
		Verdict:     assessment.Verdict,
		Rationale:   assessment.Rationale,
		Timestamp:   time.Now().UTC(),
	}

	body, err := renderAnalysisComment(corr, assessment, rec)
	if err != nil {
		return 0, err
	}

	id, err := p.store.Append(ctx, rec, body)
	if err != nil {
		ctxlog.From(ctx).Warn("publish failed, retrying once",
			"package", corr.Update.Name, "error", err)
		id, err = p.store.Append(ctx, rec, body)
	}
	if err != nil {
		return 0, goerr.Wrap(err, "failed to publish analysis comment",
			goerr.Tag(types.ErrTagPublish), goerr.V("package", corr.Update.Name))
	}

	rec.CommentID = id
	return id, nil
}

// renderAnalysisComment builds the markdown body carrying both the
// human-readable verdict and the machine-readable marker.
func renderAnalysisComment(corr model.Correlation, assessment *model.RiskAssessment, rec *model.AnalysisRecord) (string, error) {
	marker, err := model.AnalyzedPackageMarker.Encode(rec)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s Dependency risk analysis: `%s`\n\n", assessment.Verdict.Icon(), corr.Update.Name)
	fmt.Fprintf(&sb, "**Verdict**: %s", assessment.Verdict)
	if assessment.RiskLevel != "" {
		fmt.Fprintf(&sb, " (risk: %s", assessment.RiskLevel)
		if assessment.Confidence != "" {
			fmt.Fprintf(&sb, ", confidence: %s", assessment.Confidence)
		}
		sb.WriteString(")")
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "**Update**: `%s` %s -> %s\n\n",
		corr.Update.Name, corr.Update.FromVersion, corr.Update.ToVersion)

	if cves := corr.CVEs(); len(cves) > 0 {
		fmt.Fprintf(&sb, "**Addressed advisories**: %s (remediated: %t)\n\n",
			strings.Join(cves, ", "), corr.Remediated)
	} else {
		sb.WriteString("No open vulnerability alerts matched this package.\n\n")
	}

	sb.WriteString("### Rationale\n\n")
	sb.WriteString(assessment.Rationale + "\n")

	if len(assessment.RecommendedActions) > 0 {
		sb.WriteString("\n### Recommended actions\n\n")
		for i, action := range assessment.RecommendedActions {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, action)
		}
	}

	sb.WriteString("\n---\n")
	sb.WriteString(commentFooter + "\n")
	sb.WriteString(marker + "\n")

	return sb.String(), nil
}

// ReplyParseError reports a malformed trigger back to the PR as a reply
// comment. Parse errors never fail the run.
func ReplyParseError(ctx context.Context, gh interfaces.GitHubClient, owner, repo string, prNumber int, parseErr error) {
	body := fmt.Sprintf("⚠️ Could not understand the trigger command: %v\n\n"+
		"Usage: `%s (analyze|re-analyze) [packageName] [--comment \"text\"] [--include-previous]`\n\n---\n%s\n",
		parseErr, TriggerKeyword, commentFooter)

	if _, err := gh.CreateComment(ctx, owner, repo, prNumber, body); err != nil {
		ctxlog.From(ctx).Error("failed to post parse error reply", "error", err)
	}
}

// appendCVESection adds a "Detected CVEs" section with alert links to the
// PR body, once. The cve-info marker guards against duplicate appends, and
// is written even when nothing matched so later runs skip the update.
func appendCVESection(ctx context.Context, gh interfaces.GitHubClient, owner, repo string, pr *model.PullRequest, correlations []model.Correlation) error {
	if model.CVEInfoMarker.ExistsIn(pr.Body) {
		ctxlog.From(ctx).Debug("CVE section already present in PR body")
		return nil
	}

	type alertRef struct {
		number int
		url    string
	}
	cveAlerts := map[string][]alertRef{}
	for _, corr := range correlations {
		for _, a := range corr.MatchedAlerts {
			id := a.Identifier()
			if id == "" {
				continue
			}
			cveAlerts[id] = append(cveAlerts[id], alertRef{number: a.Number, url: a.URL})
		}
	}

	var sb strings.Builder
	sb.WriteString(pr.Body)
	sb.WriteString("\n\n---\n\n")
	sb.WriteString(model.CVEInfoMarker.EncodeBare() + "\n")

	if len(cveAlerts) > 0 {
		fmt.Fprintf(&sb, "\n## 🔒 Detected CVEs (%d)\n\n", len(cveAlerts))

		ids := make([]string, 0, len(cveAlerts))
		for id := range cveAlerts {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			fmt.Fprintf(&sb, "- **%s**", id)
			var links []string
			for _, ref := range cveAlerts[id] {
				if ref.number > 0 && ref.url != "" {
					links = append(links, fmt.Sprintf("[#%d](%s)", ref.number, ref.url))
				}
			}
			if len(links) > 0 {
				fmt.Fprintf(&sb, " (Dependabot Alert %s)", strings.Join(links, ", "))
			}
			sb.WriteString("\n")
		}
	}

	if err := gh.UpdatePullRequestBody(ctx, owner, repo, pr.Number, sb.String()); err != nil {
		return goerr.Wrap(err, "failed to append CVE section to PR body",
			goerr.Tag(types.ErrTagPublish))
	}
	return nil
}
