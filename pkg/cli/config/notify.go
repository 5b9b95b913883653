package config

import "github.com/urfave/cli/v3"

// Notify holds optional notification and error-reporting configuration.
type Notify struct {
	SlackWebhook string
	SentryDSN    string
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook",
			Usage:       "Slack incoming webhook URL for run summaries",
			Destination: &c.SlackWebhook,
			Sources:     cli.EnvVars("DEPENDAHUNT_SLACK_WEBHOOK"),
		},
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting",
			Destination: &c.SentryDSN,
			Sources:     cli.EnvVars("DEPENDAHUNT_SENTRY_DSN"),
		},
	}
}
