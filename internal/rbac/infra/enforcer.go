package infra

import (
	"embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf policy.csv
var defaults embed.FS

// NewEnforcer loads the model and policy files. Empty paths fall back to the
// copies compiled into the binary.
func NewEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	if modelPath != "" && policyPath != "" {
		return casbin.NewEnforcer(modelPath, policyPath)
	}

	m, err := DefaultModel()
	if err != nil {
		return nil, err
	}
	policy, err := defaults.ReadFile("policy.csv")
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := loadPolicyText(e, string(policy)); err != nil {
		return nil, err
	}
	return e, nil
}

func DefaultModel() (model.Model, error) {
	text, err := defaults.ReadFile("model.conf")
	if err != nil {
		return nil, err
	}
	return model.NewModelFromString(string(text))
}

// loadPolicyText applies csv policy lines ("p, ..." and "g, ...").
func loadPolicyText(e *casbin.Enforcer, text string) error {
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		rule := make([]any, 0, len(fields)-1)
		for _, f := range fields[1:] {
			rule = append(rule, f)
		}

		var err error
		switch fields[0] {
		case "p":
			_, err = e.AddPolicy(rule...)
		case "g":
			_, err = e.AddGroupingPolicy(rule...)
		default:
			err = fmt.Errorf("unknown policy type %q", fields[0])
		}
		if err != nil {
			return fmt.Errorf("policy line %d: %w", i+1, err)
		}
	}
	return nil
}
