package github

import (
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
)

type client struct {
	gh *github.Client
}

// NewTokenClient creates a GitHub client authenticated with a personal or
// installation access token.
func NewTokenClient(token string) interfaces.GitHubClient {
	return &client{
		gh: github.NewClient(nil).WithAuthToken(token),
	}
}

// NewAppClient creates a GitHub client authenticated as a GitHub App
// installation.
func NewAppClient(appID, installationID int64, privateKey []byte) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return &client{
		gh: github.NewClient(&http.Client{Transport: itr}),
	}, nil
}
