// Package config loads the benchmark configuration from YAML, with
// defaults mirroring the reference comparison setup: 500 contingencies,
// 1000 monitored branches, 500 injection points, 30-minute timeout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no config path is given.
const DefaultPath = "gridbench.yaml"

// Duration wraps time.Duration so YAML can carry values like "30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// EngineConfig describes how to launch one package's solver worker and
// where its runner writes results.
type EngineConfig struct {
	// Package is the display name used in results and reports.
	Package    string   `yaml:"package"`
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	Env        []string `yaml:"env"`
	ResultFile string   `yaml:"result_file"`
}

// Config is the full benchmark configuration.
type Config struct {
	CaseFile          string                  `yaml:"case_file"`
	OutputDir         string                  `yaml:"output_dir"`
	Timeout           Duration                `yaml:"timeout"`
	Contingencies     int                     `yaml:"contingencies"`
	MonitoredBranches int                     `yaml:"monitored_branches"`
	InjectionPoints   int                     `yaml:"injection_points"`
	HistoryDB         string                  `yaml:"history_db"`
	WorkersDir        string                  `yaml:"workers_dir"`
	Engines           map[string]EngineConfig `yaml:"engines"`
}

// EngineNames returns the two benchmarked engines in their canonical
// comparison order.
func EngineNames() []string {
	return []string{"powsybl", "powermodels"}
}

// Default returns the built-in configuration.
func Default() Config {
	workersDir := "workers"

	return Config{
		CaseFile:          filepath.Join("testsystem", "smallsystem_case.raw"),
		OutputDir:         ".",
		Timeout:           Duration(30 * time.Minute),
		Contingencies:     500,
		MonitoredBranches: 1000,
		InjectionPoints:   500,
		HistoryDB:         "gridbench_history.db",
		WorkersDir:        workersDir,
		Engines:           defaultEngines(workersDir),
	}
}

func defaultEngines(workersDir string) map[string]EngineConfig {
	return map[string]EngineConfig{
		"powsybl": {
			Package: "PowSyBl",
			Command: "java",
			Args: []string{
				"-jar", filepath.Join(workersDir, "powsybl-worker.jar"),
			},
			ResultFile: "powsybl_results.json",
		},
		"powermodels": {
			Package: "PowerModels.jl",
			Command: "julia",
			Args: []string{
				"--project=" + filepath.Join(workersDir, "powermodels"),
				filepath.Join(workersDir, "powermodels", "worker.jl"),
			},
			Env:        []string{"JULIA_NUM_THREADS=1"},
			ResultFile: "powermodels_results.json",
		},
	}
}

// Load reads the configuration at path and overlays it on the defaults.
// With an empty path the default location is tried and a missing file
// just yields the defaults; an explicitly named missing file is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	// Engine defaults depend on workers_dir, so they are rebuilt after
	// the file is applied rather than carried over from Default.
	cfg.Engines = nil

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	defaults := defaultEngines(cfg.WorkersDir)

	if cfg.Engines == nil {
		cfg.Engines = defaults
	} else {
		// Engines omitted from the file keep their built-in commands.
		for name, def := range defaults {
			if _, ok := cfg.Engines[name]; !ok {
				cfg.Engines[name] = def
			}
		}
	}

	return cfg, nil
}
