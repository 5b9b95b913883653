package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
	"github.com/m-mizutani/dependahunt/pkg/domain/model"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
	"github.com/m-mizutani/dependahunt/pkg/utils/parallel"
)

const defaultConcurrency = 2

// Analyzer orchestrates one full analysis run: extract package updates,
// correlate them with alerts, build per-package context, invoke the AI
// backend, and publish verdicts as PR comments.
type Analyzer struct {
	gh       interfaces.GitHubClient
	llm      interfaces.LLMClient
	store    interfaces.AnalysisStore
	enricher interfaces.CVEEnricher
	notifier interfaces.Notifier

	owner       string
	repo        string
	prNumber    int
	concurrency int
	denied      func(pkg string) (string, bool)
	minSeverity string

	userTmpl *template.Template
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithEnricher enables CVE detail enrichment.
func WithEnricher(e interfaces.CVEEnricher) Option {
	return func(a *Analyzer) { a.enricher = e }
}

// WithNotifier enables out-of-band run notifications.
func WithNotifier(n interfaces.Notifier) Option {
	return func(a *Analyzer) { a.notifier = n }
}

// WithConcurrency bounds the per-package worker pool. The pool serializes
// pressure on the shared AI and comment API budgets; it is never unbounded.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithDenyPolicy installs a policy check; packages it rejects are reported
// as skipped with the returned reason.
func WithDenyPolicy(denied func(pkg string) (string, bool)) Option {
	return func(a *Analyzer) { a.denied = denied }
}

// WithMinSeverity drops alerts below the given severity before correlation.
func WithMinSeverity(min string) Option {
	return func(a *Analyzer) { a.minSeverity = min }
}

// NewAnalyzer builds the orchestrator for one repository PR.
func NewAnalyzer(
	gh interfaces.GitHubClient,
	llmClient interfaces.LLMClient,
	store interfaces.AnalysisStore,
	owner, repo string,
	prNumber int,
	opts ...Option,
) (*Analyzer, error) {
	tmpl, err := parseUserTemplate()
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		gh:          gh,
		llm:         llmClient,
		store:       store,
		owner:       owner,
		repo:        repo,
		prNumber:    prNumber,
		concurrency: defaultConcurrency,
		userTmpl:    tmpl,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

var _ interfaces.AnalyzeUseCase = (*Analyzer)(nil)

// Run executes the full pipeline for the configured PR. Per-package
// failures are isolated: they are reported in the result (and in-PR unless
// silent) without failing the run. Run itself errors only when the host
// platform is unreachable.
func (a *Analyzer) Run(ctx context.Context, intent *model.Intent) (*model.RunResult, error) {
	logger := ctxlog.From(ctx)
	result := &model.RunResult{
		Repo:     fmt.Sprintf("%s/%s", a.owner, a.repo),
		PRNumber: a.prNumber,
	}

	pr, err := a.gh.GetPullRequest(ctx, a.owner, a.repo, a.prNumber)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch pull request")
	}

	updates := ExtractPackageUpdates(pr.Body)
	if len(updates) == 0 {
		logger.Info("no package updates detected in PR body")
		a.postInfo(ctx, intent, "No package updates were detected in this pull request, nothing to analyze.")
		return result, nil
	}

	updates, found := FilterUpdates(updates, intent.PackageFilter)
	if !found {
		logger.Info("package filter matched nothing", slog.String("filter", intent.PackageFilter))
		a.postInfo(ctx, intent, fmt.Sprintf(
			"Package `%s` is not updated by this pull request; nothing was analyzed.", intent.PackageFilter))
		return result, nil
	}

	updates, skipped := a.applyPolicy(updates)
	result.Results = append(result.Results, skipped...)
	if len(updates) == 0 {
		logger.Info("all packages denied by policy")
		a.finish(ctx, result)
		return result, nil
	}

	alerts, err := a.gh.ListDependabotAlerts(ctx, a.owner, a.repo)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch dependabot alerts")
	}
	if a.minSeverity != "" {
		alerts = FilterAlertsBySeverity(alerts, a.minSeverity)
	}

	files, err := a.gh.ListChangedFiles(ctx, a.owner, a.repo, a.prNumber)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch changed files")
	}

	correlations := Correlate(updates, alerts)
	logger.Info("correlated package updates",
		slog.Int("packages", len(correlations)),
		slog.Int("alerts", len(alerts)),
	)

	if !intent.Silent {
		if err := appendCVESection(ctx, a.gh, a.owner, a.repo, pr, correlations); err != nil {
			// PR-body annotation is a convenience; the analysis continues.
			logger.Warn("failed to append CVE section", slog.Any("error", err))
		}
	}

	pkgResults := make([]model.PackageResult, len(correlations))
	workerErrs := parallel.ForEach(ctx, a.concurrency, indexes(correlations), func(ctx context.Context, i int) error {
		pkgResults[i] = a.analyzePackage(ctx, correlations[i], intent, pr, files)
		return nil
	})
	for i, err := range workerErrs {
		if err == nil {
			continue
		}
		// A worker that panicked never filled in its slot.
		pkgResults[i].Package = correlations[i].Update.Name
		pkgResults[i].Err = err
	}
	result.Results = append(result.Results, pkgResults...)

	a.finish(ctx, result)
	return result, nil
}

// analyzePackage runs the strictly ordered per-package chain: load prior
// state, build context, invoke the backend, publish. Errors are captured in
// the returned PackageResult, never propagated to siblings.
func (a *Analyzer) analyzePackage(
	ctx context.Context,
	corr model.Correlation,
	intent *model.Intent,
	pr *model.PullRequest,
	files []model.ChangedFile,
) model.PackageResult {
	logger := ctxlog.From(ctx)
	res := model.PackageResult{Package: corr.Update.Name, Remediated: corr.Remediated}

	details := a.enrichCVEs(ctx, corr)

	ac, err := BuildContext(ctx, corr, intent, a.store, a.prNumber, files, details)
	if err != nil {
		res.Err = err
		return res
	}

	userPrompt, err := renderUserPrompt(a.userTmpl, ac)
	if err != nil {
		res.Err = err
		return res
	}

	assessment, err := a.invoke(ctx, userPrompt)
	if err != nil {
		// Backend failures degrade to an inconclusive verdict for this
		// package only; the failure is still recorded against the package.
		logger.Error("AI analysis failed",
			slog.String("package", corr.Update.Name), slog.Any("error", err))
		res.Err = err
		assessment = &model.RiskAssessment{
			Verdict: model.VerdictInconclusive,
			Rationale: fmt.Sprintf(
				"Automated analysis did not complete (%v). Re-run with `%s re-analyze %s` or review manually.",
				err, TriggerKeyword, corr.Update.Name),
		}
	}
	res.Verdict = assessment.Verdict

	pub := &publisher{store: a.store}
	commentID, err := pub.publish(ctx, corr, assessment, intent, a.prNumber, pr.HeadSHA)
	if err != nil {
		logger.Error("failed to publish analysis",
			slog.String("package", corr.Update.Name), slog.Any("error", err))
		res.Err = err
		return res
	}
	res.CommentID = commentID

	logger.Info("package analysis complete",
		slog.String("package", corr.Update.Name),
		slog.String("verdict", string(assessment.Verdict)),
		slog.Int64("comment_id", commentID),
	)
	return res
}

// invoke calls the AI backend and validates the structured response.
func (a *Analyzer) invoke(ctx context.Context, userPrompt string) (*model.RiskAssessment, error) {
	raw, err := a.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, goerr.Wrap(err, "AI invocation failed",
			goerr.Tag(types.ErrTagBackend), goerr.V("provider", a.llm.Name()))
	}
	return parseAssessment(raw)
}

// enrichCVEs fetches advisory details, best effort.
func (a *Analyzer) enrichCVEs(ctx context.Context, corr model.Correlation) []model.CVEDetail {
	if a.enricher == nil {
		return nil
	}

	var details []model.CVEDetail
	for _, a2 := range corr.MatchedAlerts {
		if a2.CVEID == "" {
			continue
		}
		d, err := a.enricher.FetchCVE(ctx, a2.CVEID)
		if err != nil {
			ctxlog.From(ctx).Warn("CVE enrichment failed",
				slog.String("cve", a2.CVEID), slog.Any("error", err))
			continue
		}
		details = append(details, *d)
	}
	return details
}

// applyPolicy splits updates into analyzable ones and policy-denied
// results.
func (a *Analyzer) applyPolicy(updates []model.PackageUpdate) ([]model.PackageUpdate, []model.PackageResult) {
	if a.denied == nil {
		return updates, nil
	}

	var kept []model.PackageUpdate
	var skipped []model.PackageResult
	for _, u := range updates {
		if reason, deny := a.denied(u.Name); deny {
			skipped = append(skipped, model.PackageResult{
				Package:    u.Name,
				Skipped:    true,
				SkipReason: reason,
			})
			continue
		}
		kept = append(kept, u)
	}
	return kept, skipped
}

// postInfo reports an informational outcome as a PR comment, honoring
// silent mode.
func (a *Analyzer) postInfo(ctx context.Context, intent *model.Intent, message string) {
	if intent.Silent {
		return
	}
	body := fmt.Sprintf("ℹ️ %s\n\n---\n%s\n", message, commentFooter)
	if _, err := a.gh.CreateComment(ctx, a.owner, a.repo, a.prNumber, body); err != nil {
		ctxlog.From(ctx).Warn("failed to post informational comment", slog.Any("error", err))
	}
}

// finish emits the run notification.
func (a *Analyzer) finish(ctx context.Context, result *model.RunResult) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.NotifyRunResult(ctx, result); err != nil {
		ctxlog.From(ctx).Warn("run notification failed", slog.Any("error", err))
	}
}

func indexes[T any](items []T) []int {
	out := make([]int, len(items))
	for i := range items {
		out[i] = i
	}
	return out
}
