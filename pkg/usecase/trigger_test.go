package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
	"github.com/m-mizutani/dependahunt/pkg/usecase"
)

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *model.Intent
		wantErr bool
	}{
		{
			name: "analyze all packages",
			raw:  "/dependahunt analyze",
			want: &model.Intent{Command: model.CommandAnalyze, PostComment: true},
		},
		{
			name: "analyze single package",
			raw:  "/dependahunt analyze lodash",
			want: &model.Intent{Command: model.CommandAnalyze, PackageFilter: "lodash", PostComment: true},
		},
		{
			name: "re-analyze normalizes to analyze with previous context",
			raw:  "/dependahunt re-analyze",
			want: &model.Intent{Command: model.CommandAnalyze, IncludePrevious: true, PostComment: true},
		},
		{
			name: "re-analyze with redundant include-previous",
			raw:  "/dependahunt re-analyze lodash --include-previous",
			want: &model.Intent{Command: model.CommandAnalyze, PackageFilter: "lodash", IncludePrevious: true, PostComment: true},
		},
		{
			name: "quoted comment value",
			raw:  `/dependahunt analyze lodash --comment "check the prototype pollution fix"`,
			want: &model.Intent{
				Command:           model.CommandAnalyze,
				PackageFilter:     "lodash",
				AdditionalComment: "check the prototype pollution fix",
				PostComment:       true,
			},
		},
		{
			name: "trigger embedded in larger comment",
			raw:  "LGTM overall, but:\n\n/dependahunt analyze express\n\nthanks!",
			want: &model.Intent{Command: model.CommandAnalyze, PackageFilter: "express", PostComment: true},
		},
		{
			name:    "missing command",
			raw:     "/dependahunt",
			wantErr: true,
		},
		{
			name:    "unknown command",
			raw:     "/dependahunt destroy",
			wantErr: true,
		},
		{
			name:    "command keyword is case-sensitive",
			raw:     "/dependahunt ANALYZE",
			wantErr: true,
		},
		{
			name:    "unknown flag",
			raw:     "/dependahunt analyze --force",
			wantErr: true,
		},
		{
			name:    "comment flag without value",
			raw:     "/dependahunt analyze --comment",
			wantErr: true,
		},
		{
			name:    "multiple package names",
			raw:     "/dependahunt analyze lodash express",
			wantErr: true,
		},
		{
			name:    "unterminated quote",
			raw:     `/dependahunt analyze --comment "unclosed`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := usecase.ParseTrigger(tt.raw, model.EventComment)
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, types.IsParseError(err))
				return
			}
			gt.NoError(t, err)
			gt.Equal(t, got, tt.want)
		})
	}
}

func TestParseTrigger_NotAddressed(t *testing.T) {
	// A comment that never mentions the bot is not a parse error; the
	// caller stays quiet instead of replying with usage help.
	for _, raw := range []string{
		"just a regular review comment",
		"LGTM, merging",
		"",
		"mentions /dependahunting in prose but not as a command line",
	} {
		_, err := usecase.ParseTrigger(raw, model.EventComment)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, usecase.ErrNotAddressed))
		gt.Equal(t, types.IsParseError(err), false)
	}
}

func TestParseTrigger_NonCommentEvents(t *testing.T) {
	for _, kind := range []model.EventKind{model.EventSchedule, model.EventDispatch} {
		t.Run(string(kind), func(t *testing.T) {
			// Raw text is ignored for non-comment triggers.
			got, err := usecase.ParseTrigger("this is not a command", kind)
			gt.NoError(t, err)
			gt.Equal(t, got.Command, model.CommandAnalyze)
			gt.Equal(t, got.PackageFilter, "")
			gt.Equal(t, got.IncludePrevious, false)
			gt.True(t, got.PostComment)
		})
	}
}
