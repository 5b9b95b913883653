package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/dependahunt/pkg/cli/config"
	"github.com/m-mizutani/dependahunt/pkg/domain/model"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
	"github.com/m-mizutani/dependahunt/pkg/infra/commentstore"
	"github.com/m-mizutani/dependahunt/pkg/infra/llm"
	"github.com/m-mizutani/dependahunt/pkg/infra/notify"
	"github.com/m-mizutani/dependahunt/pkg/infra/nvd"
	"github.com/m-mizutani/dependahunt/pkg/usecase"
)

func cmdAnalyze() *cli.Command {
	return newAnalyzeCommand(model.CommandAnalyze,
		"Analyze dependency updates in a pull request",
		"Fetch the PR, correlate its package updates with open Dependabot alerts, and post one AI risk verdict per package.")
}

func cmdReAnalyze() *cli.Command {
	return newAnalyzeCommand(model.CommandReAnalyze,
		"Re-analyze with previous results as context",
		"Same as analyze, but prior verdicts for each package are loaded from the comment thread and handed to the model.")
}

// newAnalyzeCommand builds the analyze and re-analyze commands, which share
// everything except whether previous analyses are pulled into context.
func newAnalyzeCommand(command model.Command, usage, description string) *cli.Command {
	var (
		githubCfg config.GitHub
		aiCfg     config.AI
		policyCfg config.Policy
		notifyCfg config.Notify

		triggerComment    string
		additionalComment string
		includePrevious   bool
		silent            bool
		skipNVD           bool
		concurrency       int
	)

	flags := githubCfg.Flags()
	flags = append(flags, aiCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "trigger-comment",
			Usage:       "Raw PR comment body containing the trigger command (CI passes the event payload body here)",
			Destination: &triggerComment,
			Sources:     cli.EnvVars("DEPENDAHUNT_TRIGGER_COMMENT"),
		},
		&cli.StringFlag{
			Name:        "comment",
			Usage:       "Additional reviewer context passed to the model verbatim",
			Destination: &additionalComment,
		},
		&cli.BoolFlag{
			Name:        "include-previous",
			Usage:       "Include previous analysis results in the model context",
			Destination: &includePrevious,
		},
		&cli.BoolFlag{
			Name:        "silent",
			Usage:       "Do not write any PR comments, print results to stdout only",
			Destination: &silent,
			Sources:     cli.EnvVars("DEPENDAHUNT_SILENT"),
		},
		&cli.BoolFlag{
			Name:        "skip-nvd",
			Usage:       "Skip NVD CVE detail enrichment",
			Destination: &skipNVD,
			Sources:     cli.EnvVars("DEPENDAHUNT_SKIP_NVD"),
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Max packages analyzed in parallel",
			Value:       2,
			Destination: &concurrency,
			Sources:     cli.EnvVars("DEPENDAHUNT_CONCURRENCY"),
		},
	)

	return &cli.Command{
		Name:        string(command),
		Usage:       usage,
		Description: description,
		ArgsUsage:   "<owner>/<repo> <pr-number> [package]",
		Flags:       flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			owner, repo, prNumber, pkgArg, err := parseTarget(c.Args().Slice())
			if err != nil {
				return err
			}

			// All configuration problems surface before any network I/O.
			if err := githubCfg.Validate(); err != nil {
				return err
			}
			if err := aiCfg.Validate(); err != nil {
				return err
			}
			rules, err := policyCfg.Load()
			if err != nil {
				return err
			}

			if notifyCfg.SentryDSN != "" {
				if err := sentry.Init(sentry.ClientOptions{
					Dsn:     notifyCfg.SentryDSN,
					Release: types.Version,
				}); err != nil {
					return goerr.Wrap(err, "failed to initialize sentry",
						goerr.Tag(types.ErrTagConfig))
				}
				defer sentry.Flush(2 * time.Second)
			}

			gh, err := githubCfg.Build()
			if err != nil {
				return err
			}
			llmClient, err := llm.New(ctx, aiCfg.BackendConfig())
			if err != nil {
				return err
			}
			store := commentstore.New(gh, owner, repo)

			intent, parseErr := buildIntent(command, triggerComment)
			if parseErr != nil {
				if errors.Is(parseErr, usecase.ErrNotAddressed) {
					// The comment never mentioned the bot; stay quiet.
					logger.Info("comment does not address dependahunt, nothing to do")
					return nil
				}
				// Malformed trigger commands are answered in the PR, not
				// treated as a run failure.
				logger.Warn("trigger command rejected", slog.Any("error", parseErr))
				if !silent {
					usecase.ReplyParseError(ctx, gh, owner, repo, prNumber, parseErr)
				}
				return nil
			}

			if pkgArg != "" {
				intent.PackageFilter = pkgArg
			}
			if additionalComment != "" {
				intent.AdditionalComment = additionalComment
			}
			if includePrevious {
				intent.IncludePrevious = true
			}
			intent.Silent = silent

			opts := []usecase.Option{
				usecase.WithConcurrency(int(concurrency)),
			}
			if !skipNVD {
				opts = append(opts, usecase.WithEnricher(nvd.New()))
			}
			if notifyCfg.SlackWebhook != "" {
				opts = append(opts, usecase.WithNotifier(notify.NewSlack(notifyCfg.SlackWebhook)))
			}
			if rules != nil {
				opts = append(opts, usecase.WithDenyPolicy(rules.Denied))
				if rules.MinSeverity != "" {
					opts = append(opts, usecase.WithMinSeverity(rules.MinSeverity))
				}
			}

			analyzer, err := usecase.NewAnalyzer(gh, llmClient, store, owner, repo, prNumber, opts...)
			if err != nil {
				return err
			}

			logger.Info("starting analysis",
				slog.String("repo", owner+"/"+repo),
				slog.Int("pr", prNumber),
				slog.String("provider", llmClient.Name()),
				slog.String("package_filter", intent.PackageFilter),
			)

			result, err := analyzer.Run(ctx, intent)
			if err != nil {
				if notifyCfg.SentryDSN != "" {
					sentry.CaptureException(err)
				}
				return err
			}

			printSummary(result)
			return runOutcome(ctx, result, silent)
		},
	}
}

// runOutcome maps the run result onto the process exit contract. Per-package
// failures are already reported in the PR, so a completed run exits zero;
// only silent mode escalates them, since the exit status is then the only
// surfacing channel left.
func runOutcome(ctx context.Context, result *model.RunResult, silent bool) error {
	n := result.Failed()
	if n == 0 {
		return nil
	}
	if silent {
		return goerr.New("one or more packages failed analysis",
			goerr.V("repo", result.Repo), goerr.V("pr", result.PRNumber),
			goerr.V("failed", n))
	}
	ctxlog.From(ctx).Warn("per-package failures were reported in the PR",
		slog.Int("failed", n))
	return nil
}

// parseTarget resolves the positional arguments into repository coordinates
// and an optional package filter.
func parseTarget(args []string) (owner, repo string, prNumber int, pkg string, err error) {
	if len(args) < 2 || len(args) > 3 {
		return "", "", 0, "", goerr.New("expected arguments: <owner>/<repo> <pr-number> [package]",
			goerr.Tag(types.ErrTagConfig), goerr.V("args", args))
	}

	owner, repo, ok := strings.Cut(args[0], "/")
	if !ok || owner == "" || repo == "" {
		return "", "", 0, "", goerr.New("repository must be given as owner/repo",
			goerr.Tag(types.ErrTagConfig), goerr.V("repository", args[0]))
	}

	prNumber, err = strconv.Atoi(args[1])
	if err != nil || prNumber <= 0 {
		return "", "", 0, "", goerr.New("pull request number must be a positive integer",
			goerr.Tag(types.ErrTagConfig), goerr.V("pr", args[1]))
	}

	if len(args) == 3 {
		pkg = args[2]
	}
	return owner, repo, prNumber, pkg, nil
}

// buildIntent parses the trigger comment when one is supplied, otherwise
// synthesizes an intent from the invoked command.
func buildIntent(command model.Command, triggerComment string) (*model.Intent, error) {
	if triggerComment != "" {
		return usecase.ParseTrigger(triggerComment, model.EventComment)
	}

	intent := &model.Intent{
		Command:     model.CommandAnalyze,
		PostComment: true,
	}
	if command == model.CommandReAnalyze {
		intent.IncludePrevious = true
	}
	return intent, nil
}

// printSummary writes the per-package outcome table to stdout.
func printSummary(result *model.RunResult) {
	fmt.Printf("\n%s PR #%d\n", result.Repo, result.PRNumber)

	for _, r := range result.Results {
		switch {
		case r.Skipped:
			color.Yellow("  SKIP  %s (%s)", r.Package, r.SkipReason)
		case r.Err != nil:
			color.Red("  FAIL  %s: %v", r.Package, r.Err)
		case r.Verdict == model.VerdictSafe:
			color.Green("  SAFE  %s", r.Package)
		case r.Verdict == model.VerdictVulnerable:
			color.Red("  VULN  %s", r.Package)
		default:
			color.Yellow("  %-4s  %s", r.Verdict, r.Package)
		}
	}

	if len(result.Results) == 0 {
		fmt.Println("  nothing analyzed")
	}
}
