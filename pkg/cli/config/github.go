package config

import (
	"os"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	ghinfra "github.com/m-mizutani/dependahunt/pkg/infra/github"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

// GitHub holds GitHub authentication configuration. Either a token or a
// full set of App credentials must be provided.
type GitHub struct {
	Token          string
	AppID          string
	InstallationID string
	PrivateKeyPath string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub access token (read PR/alerts, write comments)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("DEPENDAHUNT_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID (App auth)",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("DEPENDAHUNT_GITHUB_APP_ID"),
		},
		&cli.StringFlag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID (App auth)",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("DEPENDAHUNT_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to GitHub App private key PEM (App auth)",
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("DEPENDAHUNT_GITHUB_PRIVATE_KEY"),
		},
	}
}

// Validate checks that a usable credential set is configured.
func (c *GitHub) Validate() error {
	if c.Token != "" {
		return nil
	}
	if c.AppID != "" && c.InstallationID != "" && c.PrivateKeyPath != "" {
		return nil
	}
	return goerr.New("GitHub credential is required: set --github-token or App credentials",
		goerr.Tag(types.ErrTagConfig))
}

// Build constructs the GitHub client from the configured credential.
func (c *GitHub) Build() (interfaces.GitHubClient, error) {
	if c.Token != "" {
		return ghinfra.NewTokenClient(c.Token), nil
	}

	appID, err := strconv.ParseInt(c.AppID, 10, 64)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid GitHub App ID",
			goerr.Tag(types.ErrTagConfig), goerr.V("app_id", c.AppID))
	}
	instID, err := strconv.ParseInt(c.InstallationID, 10, 64)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid GitHub installation ID",
			goerr.Tag(types.ErrTagConfig), goerr.V("installation_id", c.InstallationID))
	}
	key, err := os.ReadFile(c.PrivateKeyPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GitHub App private key",
			goerr.Tag(types.ErrTagConfig), goerr.V("path", c.PrivateKeyPath))
	}

	return ghinfra.NewAppClient(appID, instID, key)
}
