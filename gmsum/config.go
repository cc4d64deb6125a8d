package main

import (
	"fmt"
	. "github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/validator.v2"
	"gopkg.in/yaml.v2"
	"os"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// configuration is the optional YAML file named by --config. Zero values leave the matching
// flag alone, as does any flag given explicitly on the command line.
type configuration struct {
	Key     string `yaml:"key" validate:"max=256"`
	Output  string `yaml:"output" validate:"regexp=^(hex|base64)?$"`
	Pretty  bool   `yaml:"pretty"`
	NoCodes bool   `yaml:"noCodes"`
	Strict  bool   `yaml:"strict"`
}

func loadConfig(path string) (configuration, error) {
	var cfg configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err = yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err = validator.Validate(cfg); err != nil {
		return cfg, fmt.Errorf("validating %s: %w", path, err)
	}
	if len(cfg.Key) > 16 {
		zap.L().Warn("configured key longer than 16 bytes; the excess is ignored",
			zap.String("path", path), zap.Int("bytes", len(cfg.Key)))
	}
	return cfg, nil
}

func (c configuration) apply() {
	if c.Key != "" && !CommandLine.Changed("key") {
		pKey = c.Key
	}
	if c.Output == "base64" && !CommandLine.Changed("base64") {
		pBase64 = true
	}
	if c.Pretty && !CommandLine.Changed("pretty") {
		pPretty = true
	}
	if c.NoCodes && !CommandLine.Changed("no-codes") {
		pNoCodes = true
		noCodes()
	}
	if c.Strict && !CommandLine.Changed("strict") {
		pStrict = true
	}
}
