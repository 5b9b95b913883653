package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

// Policy points at an optional TOML policy file:
//
//	denied_packages = ["left-pad", "event-stream"]
//	min_severity = "medium"
type Policy struct {
	Path string
}

// Flags returns CLI flags for policy configuration
func (c *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to TOML policy file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("DEPENDAHUNT_POLICY"),
		},
	}
}

// PolicyRules is the parsed policy file.
type PolicyRules struct {
	DeniedPackages []string `toml:"denied_packages"`
	MinSeverity    string   `toml:"min_severity"`
}

// Load parses the policy file. Returns nil when no path is configured.
func (c *Policy) Load() (*PolicyRules, error) {
	if c.Path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file",
			goerr.Tag(types.ErrTagConfig), goerr.V("path", c.Path))
	}

	var rules PolicyRules
	if err := toml.Unmarshal(raw, &rules); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy file",
			goerr.Tag(types.ErrTagConfig), goerr.V("path", c.Path))
	}
	return &rules, nil
}

// Denied reports whether pkg is excluded from analysis by policy.
func (r *PolicyRules) Denied(pkg string) (string, bool) {
	for _, name := range r.DeniedPackages {
		if strings.EqualFold(name, pkg) {
			return "denied by policy", true
		}
	}
	return "", false
}
