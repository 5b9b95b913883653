package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/dependahunt/pkg/cli/config"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

func TestAI_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AI
		wantErr bool
	}{
		{
			name: "claude-direct with api key",
			cfg:  config.AI{Provider: "claude-direct", AnthropicAPIKey: "sk-test"},
		},
		{
			name:    "claude-direct without api key",
			cfg:     config.AI{Provider: "claude-direct"},
			wantErr: true,
		},
		{
			name: "gemini-direct with api key",
			cfg:  config.AI{Provider: "gemini-direct", GeminiAPIKey: "test-key"},
		},
		{
			name:    "gemini-direct without api key",
			cfg:     config.AI{Provider: "gemini-direct"},
			wantErr: true,
		},
		{
			name: "claude-vertex with project",
			cfg:  config.AI{Provider: "claude-vertex", VertexProjectID: "my-proj", VertexLocation: "us-central1"},
		},
		{
			name: "gemini-vertex with project",
			cfg:  config.AI{Provider: "gemini-vertex", VertexProjectID: "my-proj", VertexLocation: "us-central1"},
		},
		{
			name:    "vertex without project",
			cfg:     config.AI{Provider: "gemini-vertex", VertexLocation: "us-central1"},
			wantErr: true,
		},
		{
			name:    "vertex without location",
			cfg:     config.AI{Provider: "claude-vertex", VertexProjectID: "my-proj"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     config.AI{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "empty provider",
			cfg:     config.AI{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, types.IsConfigError(err))
				return
			}
			gt.NoError(t, err)
			// Model default is filled during validation.
			gt.V(t, tt.cfg.Model).NotEqual("")
		})
	}
}

func TestAI_ModelDefault(t *testing.T) {
	t.Run("explicit model is kept", func(t *testing.T) {
		cfg := config.AI{Provider: "gemini-direct", GeminiAPIKey: "k", Model: "gemini-2.5-pro"}
		gt.NoError(t, cfg.Validate())
		gt.Equal(t, cfg.Model, "gemini-2.5-pro")
	})

	t.Run("claude default differs from gemini default", func(t *testing.T) {
		claude := config.AI{Provider: "claude-direct", AnthropicAPIKey: "k"}
		gemini := config.AI{Provider: "gemini-direct", GeminiAPIKey: "k"}
		gt.NoError(t, claude.Validate())
		gt.NoError(t, gemini.Validate())
		gt.V(t, claude.Model).NotEqual(gemini.Model)
	})
}

func TestGitHub_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.GitHub
		wantErr bool
	}{
		{
			name: "token auth",
			cfg:  config.GitHub{Token: "ghp_test"},
		},
		{
			name: "app auth",
			cfg: config.GitHub{
				AppID: "12345", InstallationID: "67890", PrivateKeyPath: "/tmp/key.pem",
			},
		},
		{
			name:    "incomplete app auth",
			cfg:     config.GitHub{AppID: "12345"},
			wantErr: true,
		},
		{
			name:    "no credentials",
			cfg:     config.GitHub{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, types.IsConfigError(err))
				return
			}
			gt.NoError(t, err)
		})
	}
}
