// Package notify delivers run summaries to Slack via an incoming webhook.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

type slackNotifier struct {
	webhookURL string
}

// NewSlack creates a Notifier posting to a Slack incoming webhook.
func NewSlack(webhookURL string) interfaces.Notifier {
	return &slackNotifier{webhookURL: webhookURL}
}

// NotifyRunResult posts a one-message summary of the run.
func (n *slackNotifier) NotifyRunResult(ctx context.Context, result *model.RunResult) error {
	msg := &slack.WebhookMessage{Text: formatRunResult(result)}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack notification")
	}
	return nil
}

func formatRunResult(result *model.RunResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "dependahunt analyzed %s#%d\n", result.Repo, result.PRNumber)

	for _, r := range result.Results {
		switch {
		case r.Skipped:
			fmt.Fprintf(&sb, "- %s: skipped (%s)\n", r.Package, r.SkipReason)
		case r.Err != nil:
			fmt.Fprintf(&sb, "- %s: failed (%v)\n", r.Package, r.Err)
		default:
			fmt.Fprintf(&sb, "- %s: %s\n", r.Package, r.Verdict)
		}
	}

	if failed := result.Failed(); failed > 0 {
		fmt.Fprintf(&sb, "%d package(s) failed\n", failed)
	}
	return sb.String()
}
