package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

// Context size is bounded regardless of comment-thread length: only the
// single most recent prior record is ever included, and the diff summary is
// truncated.
const maxDiffSummaryBytes = 4000

// BuildContext assembles the prompt context for one package. LoadLatest is
// consulted before anything else so the record used is the one current when
// the build starts. A missing prior record with IncludePrevious set is not
// an error; it degrades to the no-history case.
func BuildContext(
	ctx context.Context,
	corr model.Correlation,
	intent *model.Intent,
	store interfaces.AnalysisStore,
	prNumber int,
	files []model.ChangedFile,
	details []model.CVEDetail,
) (*model.AnalysisContext, error) {
	var previous *model.AnalysisRecord
	if intent.IncludePrevious {
		rec, ok, err := store.LoadLatest(ctx, prNumber, corr.Update.Name)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load prior analysis",
				goerr.V("package", corr.Update.Name))
		}
		if ok {
			previous = rec
		} else {
			ctxlog.From(ctx).Debug("no prior analysis found",
				"package", corr.Update.Name, "pr", prNumber)
		}
	}

	return &model.AnalysisContext{
		Correlation:       corr,
		DiffSummary:       summarizeDiff(files),
		CVEDetails:        details,
		AdditionalComment: intent.AdditionalComment,
		Previous:          previous,
	}, nil
}

// summarizeDiff renders the changed-file list with patches, truncated to
// the context budget. Manifest and lockfile patches come first since they
// carry the version change itself.
func summarizeDiff(files []model.ChangedFile) string {
	ordered := make([]model.ChangedFile, 0, len(files))
	var rest []model.ChangedFile
	for _, f := range files {
		if isManifestFile(f.Filename) {
			ordered = append(ordered, f)
		} else {
			rest = append(rest, f)
		}
	}
	ordered = append(ordered, rest...)

	var sb strings.Builder
	for _, f := range ordered {
		if sb.Len() >= maxDiffSummaryBytes {
			sb.WriteString("... (diff truncated)\n")
			break
		}
		sb.WriteString("--- " + f.Filename + "\n")
		if f.Patch == "" {
			continue
		}
		remain := maxDiffSummaryBytes - sb.Len()
		patch := f.Patch
		if len(patch) > remain {
			patch = patch[:remain] + "\n... (patch truncated)"
		}
		sb.WriteString(patch + "\n")
	}
	return sb.String()
}

func isManifestFile(name string) bool {
	for _, suffix := range []string{
		"package.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml",
		"go.mod", "go.sum",
		"requirements.txt", "poetry.lock", "Pipfile.lock",
		"Gemfile.lock", "Cargo.lock", "composer.lock",
	} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
