package usecase

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

//go:embed prompts/risk_system.md
var systemPrompt string

//go:embed prompts/risk_user.md
var userPromptTemplate string

type alertView struct {
	Identifier      string
	Number          int
	Severity        string
	VulnerableRange string
	PatchedVersion  string
	Summary         string
}

type userPromptInput struct {
	Package           string
	Ecosystem         string
	FromVersion       string
	ToVersion         string
	Remediated        bool
	Alerts            []alertView
	CVEDetails        []model.CVEDetail
	DiffSummary       string
	Previous          *model.AnalysisRecord
	AdditionalComment string
}

func parseUserTemplate() (*template.Template, error) {
	tmpl, err := template.New("risk_user").Parse(userPromptTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse user prompt template")
	}
	return tmpl, nil
}

func renderUserPrompt(tmpl *template.Template, ac *model.AnalysisContext) (string, error) {
	in := userPromptInput{
		Package:           ac.Correlation.Update.Name,
		Ecosystem:         ac.Correlation.Update.Ecosystem,
		FromVersion:       ac.Correlation.Update.FromVersion,
		ToVersion:         ac.Correlation.Update.ToVersion,
		Remediated:        ac.Correlation.Remediated,
		CVEDetails:        ac.CVEDetails,
		DiffSummary:       ac.DiffSummary,
		Previous:          ac.Previous,
		AdditionalComment: ac.AdditionalComment,
	}
	for _, a := range ac.Correlation.MatchedAlerts {
		in.Alerts = append(in.Alerts, alertView{
			Identifier:      a.Identifier(),
			Number:          a.Number,
			Severity:        a.Severity,
			VulnerableRange: a.VulnerableRange,
			PatchedVersion:  a.PatchedVersion,
			Summary:         a.Summary,
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, in); err != nil {
		return "", goerr.Wrap(err, "failed to render user prompt")
	}
	return buf.String(), nil
}

// parseAssessment validates the raw model response against the fixed
// response contract. A response that does not fit is a backend error, never
// coerced into a verdict.
func parseAssessment(raw string) (*model.RiskAssessment, error) {
	// Some models wrap JSON in a fenced block despite JSON mode.
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var assessment model.RiskAssessment
	if err := json.Unmarshal([]byte(trimmed), &assessment); err != nil {
		return nil, goerr.Wrap(err, "AI response is not valid JSON",
			goerr.Tag(types.ErrTagBackend), goerr.V("response", raw))
	}

	if !assessment.Verdict.Valid() {
		return nil, goerr.New("AI response carries unknown verdict",
			goerr.Tag(types.ErrTagBackend), goerr.V("verdict", assessment.Verdict))
	}
	if assessment.Rationale == "" {
		return nil, goerr.New("AI response is missing rationale",
			goerr.Tag(types.ErrTagBackend))
	}

	return &assessment, nil
}
