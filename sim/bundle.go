package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioBundle holds a batch of named what-if scenarios plus an optional
// parameter sweep, loadable from a YAML file. Baseline overrides, when set,
// are applied to the configuration before every scenario in the bundle.
type ScenarioBundle struct {
	Baseline  map[string]float64 `yaml:"baseline"`
	Scenarios []ScenarioSpec     `yaml:"scenarios"`
	Sweep     *SweepSpec         `yaml:"sweep"`
}

// ScenarioSpec names one what-if run and the parameter overrides that
// define it.
type ScenarioSpec struct {
	Name      string             `yaml:"name"`
	Overrides map[string]float64 `yaml:"overrides"`
}

// SweepSpec describes a one-dimensional sensitivity sweep. The swept values
// are given either explicitly through values or as an inclusive from/to
// range divided into steps points.
type SweepSpec struct {
	Parameter string    `yaml:"parameter"`
	Values    []float64 `yaml:"values"`
	From      float64   `yaml:"from"`
	To        float64   `yaml:"to"`
	Steps     int       `yaml:"steps"`
}

// LoadScenarioBundle reads and parses a YAML scenario file.
func LoadScenarioBundle(path string) (*ScenarioBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var bundle ScenarioBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	return &bundle, nil
}

// Validate checks every name, override key, and sweep definition in the
// bundle before anything runs.
func (b *ScenarioBundle) Validate() error {
	for name := range b.Baseline {
		if _, ok := parameterSetters[name]; !ok {
			return fmt.Errorf("baseline: %w: %q", ErrUnknownParameter, name)
		}
	}
	seen := map[string]bool{}
	for i, sc := range b.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario %d has no name", i)
		}
		if seen[sc.Name] {
			return fmt.Errorf("duplicate scenario name %q", sc.Name)
		}
		seen[sc.Name] = true
		for name := range sc.Overrides {
			if _, ok := parameterSetters[name]; !ok {
				return fmt.Errorf("scenario %q: %w: %q", sc.Name, ErrUnknownParameter, name)
			}
		}
	}
	if b.Sweep != nil {
		if err := b.Sweep.validate(); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
	}
	return nil
}

func (sw *SweepSpec) validate() error {
	if _, ok := parameterSetters[sw.Parameter]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, sw.Parameter)
	}
	explicit := len(sw.Values) > 0
	ranged := sw.Steps != 0 || sw.From != 0 || sw.To != 0
	if explicit && ranged {
		return fmt.Errorf("give either values or from/to/steps, not both")
	}
	if !explicit {
		if sw.Steps < 2 {
			return fmt.Errorf("a range sweep needs at least 2 steps, got %d", sw.Steps)
		}
		if sw.To <= sw.From {
			return fmt.Errorf("empty range: from=%g to=%g", sw.From, sw.To)
		}
	}
	return nil
}

// Points resolves the sweep to the concrete values to run, in order.
func (sw *SweepSpec) Points() []float64 {
	if len(sw.Values) > 0 {
		out := make([]float64, len(sw.Values))
		copy(out, sw.Values)
		return out
	}
	out := make([]float64, sw.Steps)
	span := sw.To - sw.From
	for i := range out {
		out[i] = sw.From + span*float64(i)/float64(sw.Steps-1)
	}
	return out
}
