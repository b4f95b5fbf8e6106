package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional single-file configuration schema. Nested
// sections map naturally to the flags.
type FileConfig struct {
	Request string `yaml:"request"`
	Output  string `yaml:"output"`

	LLM struct {
		BaseURL     string `yaml:"base"`
		Model       string `yaml:"model"`
		SearchModel string `yaml:"searchModel"`
		ReportModel string `yaml:"reportModel"`
		APIKey      string `yaml:"key"`
	} `yaml:"llm"`

	Parallel bool `yaml:"parallel"`
	// Durations are strings in time.ParseDuration form, e.g. "45s", "10m".
	Timeout string `yaml:"timeout"`
	Verbose bool   `yaml:"verbose"`

	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`

	Tasks struct {
		TTL      string `yaml:"ttl"`
		Capacity int    `yaml:"capacity"`
	} `yaml:"tasks"`
}

// LoadFileConfig reads a YAML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config: %w", err)
	}
	return fc, nil
}

// Flag defaults that a config file may still override; a flag value that
// differs from its default is explicit and always wins.
const (
	requestPathDefault = "request.yaml"
	outputPathDefault  = "report.json"
	timeoutDefault     = 60 * time.Second
)

// Apply fills unset Config fields from the file. Explicit flag values always
// win over file values; fields still at their flag default count as unset.
func (fc FileConfig) Apply(cfg *Config) {
	setStr := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}
	setPath := func(dst *string, v, flagDefault string) {
		if (*dst == "" || *dst == flagDefault) && v != "" {
			*dst = v
		}
	}
	setPath(&cfg.RequestPath, fc.Request, requestPathDefault)
	setPath(&cfg.OutputPath, fc.Output, outputPathDefault)
	setStr(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setStr(&cfg.LLMModel, fc.LLM.Model)
	setStr(&cfg.SearchModel, fc.LLM.SearchModel)
	setStr(&cfg.ReportModel, fc.LLM.ReportModel)
	setStr(&cfg.LLMAPIKey, fc.LLM.APIKey)
	setStr(&cfg.CacheDir, fc.Cache.Dir)
	if !cfg.Parallel && fc.Parallel {
		cfg.Parallel = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	setDur := func(dst *time.Duration, v string, flagDefault time.Duration) {
		if (*dst != 0 && *dst != flagDefault) || v == "" {
			return
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
	setDur(&cfg.Timeout, fc.Timeout, timeoutDefault)
	setDur(&cfg.TaskTTL, fc.Tasks.TTL, 0)
	if cfg.TaskCapacity == 0 && fc.Tasks.Capacity > 0 {
		cfg.TaskCapacity = fc.Tasks.Capacity
	}
}
