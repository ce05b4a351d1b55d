package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/golang/glog"
)

const DefaultPath = "z80hexer.json"

type BatchConfig struct {
	OutputDir   string `json:"outputDir"`   // empty writes each .s file next to its source
	ReportPath  string `json:"reportPath"`  // empty skips the JSON report
	Concurrency int    `json:"concurrency"` // files assembled at once, <= 0 means unbounded
}

type Config struct {
	LanguageServerAddr string      `json:"languageServerAddr"`
	LanguageID         string      `json:"languageId"`
	PlaygroundAddr     string      `json:"playgroundAddr"`
	LogEndpoint        string      `json:"logEndpoint"`
	Batch              BatchConfig `json:"batch"`
}

func Default() *Config {
	return &Config{
		LanguageServerAddr: ":2035",
		LanguageID:         "z80",
		PlaygroundAddr:     ":8080",
		LogEndpoint:        "http://localhost:8006/log",
		Batch: BatchConfig{
			Concurrency: 4,
		},
	}
}

// Load reads a JSON config file over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		glog.V(1).Infof("No config at %s, using defaults", path)
		return c, nil
	} else if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(b, c); err != nil {
		return nil, err
	}
	glog.V(1).Infof("Loaded config from %s", path)
	return c, nil
}

var conf *Config

// Use installs c as the process-wide config returned by GetConfig.
func Use(c *Config) {
	conf = c
}

func GetConfig() *Config {
	if conf == nil {
		c, err := Load(DefaultPath)
		if err != nil {
			glog.Errorf("Error loading %s: %v", DefaultPath, err)
			c = Default()
		}
		conf = c
	}

	return conf
}
