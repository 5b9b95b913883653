package usecase

import (
	"strings"

	"github.com/google/shlex"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

// TriggerKeyword starts an analysis command in a PR comment.
const TriggerKeyword = "/dependahunt"

// ErrNotAddressed reports a comment that carries no trigger line at all.
// Distinct from a parse error: callers ignore unrelated comments instead of
// replying with usage help.
var ErrNotAddressed = goerr.New("comment does not contain a trigger command")

// ParseTrigger turns a raw trigger into an Intent.
//
// Comment grammar (command keywords are case-sensitive, package names are
// matched verbatim):
//
//	/dependahunt (analyze|re-analyze) [packageName] [--comment "text"] [--include-previous]
//
// re-analyze is sugar for analyze --include-previous and is normalized at
// parse time; a redundant --include-previous is accepted. A comment without
// any trigger line returns ErrNotAddressed. Anything else outside the
// defined grammar is a parse error, which callers report as a reply comment
// rather than a run failure.
//
// Non-comment kinds (schedule, dispatch) synthesize a full-PR analysis
// intent and ignore raw.
func ParseTrigger(raw string, kind model.EventKind) (*model.Intent, error) {
	if kind != model.EventComment {
		return &model.Intent{
			Command:     model.CommandAnalyze,
			PostComment: true,
		}, nil
	}

	line := findTriggerLine(raw)
	if line == "" {
		return nil, ErrNotAddressed
	}

	tokens, err := shlex.Split(line)
	if err != nil {
		return nil, goerr.Wrap(err, "malformed quoting in trigger command",
			goerr.Tag(types.ErrTagParse), goerr.V("line", line))
	}

	// tokens[0] is the keyword itself; findTriggerLine guarantees it.
	if len(tokens) < 2 {
		return nil, goerr.New("missing command after trigger keyword",
			goerr.Tag(types.ErrTagParse), goerr.V("line", line))
	}

	intent := &model.Intent{PostComment: true}

	switch model.Command(tokens[1]) {
	case model.CommandAnalyze:
		intent.Command = model.CommandAnalyze
	case model.CommandReAnalyze:
		intent.Command = model.CommandAnalyze
		intent.IncludePrevious = true
	default:
		return nil, goerr.New("unknown command",
			goerr.Tag(types.ErrTagParse), goerr.V("command", tokens[1]))
	}

	rest := tokens[2:]
	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		switch {
		case tok == "--comment":
			if i+1 >= len(rest) {
				return nil, goerr.New("--comment requires a value",
					goerr.Tag(types.ErrTagParse))
			}
			i++
			intent.AdditionalComment = rest[i]

		case tok == "--include-previous":
			intent.IncludePrevious = true

		case strings.HasPrefix(tok, "--"):
			return nil, goerr.New("unknown flag",
				goerr.Tag(types.ErrTagParse), goerr.V("flag", tok))

		default:
			if intent.PackageFilter != "" {
				return nil, goerr.New("multiple package names given",
					goerr.Tag(types.ErrTagParse),
					goerr.V("first", intent.PackageFilter), goerr.V("second", tok))
			}
			intent.PackageFilter = tok
		}
	}

	return intent, nil
}

// findTriggerLine returns the first line starting with the trigger keyword,
// trimmed. Empty when the comment does not address us.
func findTriggerLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == TriggerKeyword || strings.HasPrefix(line, TriggerKeyword+" ") {
			return line
		}
	}
	return ""
}
