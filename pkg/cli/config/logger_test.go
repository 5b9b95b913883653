package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/dependahunt/pkg/cli/config"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "debug console", level: "debug", format: "console"},
		{name: "info json", level: "info", format: "json"},
		{name: "warn text", level: "warn", format: "text"},
		{name: "error console", level: "error", format: "console"},
		{name: "level is case insensitive", level: "INFO", format: "console"},
		{name: "format is case insensitive", level: "info", format: "JSON"},
		{name: "invalid level", level: "verbose", format: "console", wantErr: true},
		{name: "empty level", level: "", format: "console", wantErr: true},
		{name: "invalid format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Logger{Level: tt.level, Format: tt.format}
			logger, err := cfg.Configure()
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.V(t, logger).NotNil()
		})
	}
}
