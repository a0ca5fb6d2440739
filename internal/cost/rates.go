package cost

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ModelRate holds per-model token pricing in USD per million tokens.
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates holds per-provider pricing configuration.
type Rates struct {
	Models             map[string]ModelRate `yaml:"models" mapstructure:"models"`
	SearchPerQuery     float64              `yaml:"search_per_query" mapstructure:"search_per_query"`
	TaskMarginal       float64              `yaml:"task_marginal" mapstructure:"task_marginal"`
	ValidationMarginal float64              `yaml:"validation_marginal" mapstructure:"validation_marginal"`
}

// DefaultRates returns the built-in pricing table.
func DefaultRates() Rates {
	return Rates{
		Models: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		},
		SearchPerQuery:     0.005,
		TaskMarginal:       0.05,
		ValidationMarginal: 0.03,
	}
}

// LoadRates reads a pricing table from a YAML file. Zero-valued fields
// fall back to the defaults so a partial override file works.
func LoadRates(path string) (Rates, error) {
	defaults := DefaultRates()

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, eris.Wrapf(err, "cost: read rates %s", path)
	}

	var r Rates
	if err := yaml.Unmarshal(data, &r); err != nil {
		return defaults, eris.Wrapf(err, "cost: parse rates %s", path)
	}

	if r.Models == nil {
		r.Models = defaults.Models
	}
	if r.SearchPerQuery == 0 {
		r.SearchPerQuery = defaults.SearchPerQuery
	}
	if r.TaskMarginal == 0 {
		r.TaskMarginal = defaults.TaskMarginal
	}
	if r.ValidationMarginal == 0 {
		r.ValidationMarginal = defaults.ValidationMarginal
	}
	return r, nil
}

// Tokens computes the cost of a model call from token counts. Unknown
// models cost zero rather than failing the caller.
func (r Rates) Tokens(model string, input, output int64) float64 {
	rate, ok := r.Models[model]
	if !ok {
		return 0
	}
	return (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
}
