// Package config holds the settings of the dunder driver.
package config

import (
	"fmt"
	"go/token"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/dunder/internal/lower"
)

// Config controls which operators are lowered and where the output goes.
//
// A YAML file looks like:
//
//	operators:
//	  "+": Add
//	  "-": Sub
//	  "*": Mul
//	scalar: Scalar
//	out: dist
//	tags: [integration]
//	noEmitOnError: true
//
// An empty scalar (scalar: "") turns off wrapping of numeric literals.
type Config struct {
	Operators     map[string]string
	Scalar        string
	OutDir        string
	Tags          []string
	NoEmitOnError bool
}

// fileConfig is the YAML form of Config. Scalar is a pointer so that an
// explicitly empty value can be told apart from a missing key.
type fileConfig struct {
	Operators     map[string]string `yaml:"operators"`
	Scalar        *string           `yaml:"scalar"`
	OutDir        string            `yaml:"out"`
	Tags          []string          `yaml:"tags"`
	NoEmitOnError bool              `yaml:"noEmitOnError"`
}

// operators lists the binary operators that may be lowered.
var operators = map[string]token.Token{
	"+": token.ADD,
	"-": token.SUB,
	"*": token.MUL,
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Operators: map[string]string{
			"+": "Add",
			"-": "Sub",
			"*": "Mul",
		},
		Scalar: "Scalar",
		OutDir: "dist",
	}
}

// Load reads a YAML configuration file. Keys missing from the file keep
// their Default values; an operators table replaces the default table.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if file.Operators != nil {
		cfg.Operators = file.Operators
	}
	if file.Scalar != nil {
		cfg.Scalar = *file.Scalar
	}
	if file.OutDir != "" {
		cfg.OutDir = file.OutDir
	}
	if len(file.Tags) > 0 {
		cfg.Tags = file.Tags
	}
	cfg.NoEmitOnError = file.NoEmitOnError

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the operator table and the output directory.
func (c Config) Validate() error {
	if c.OutDir == "" {
		return fmt.Errorf("output directory is empty")
	}
	if _, err := c.Rules(); err != nil {
		return err
	}
	return nil
}

// Rules converts the operator table into lowering rules.
func (c Config) Rules() (lower.Rules, error) {
	keys := make([]string, 0, len(c.Operators))
	for op := range c.Operators {
		keys = append(keys, op)
	}
	sort.Strings(keys)

	rules := lower.Rules{Methods: make(map[token.Token]string, len(keys)), Scalar: c.Scalar}
	for _, op := range keys {
		tok, ok := operators[op]
		if !ok {
			return lower.Rules{}, fmt.Errorf("operator %q cannot be lowered (want one of + - *)", op)
		}
		rules.Methods[tok] = c.Operators[op]
	}
	if err := rules.Validate(); err != nil {
		return lower.Rules{}, err
	}
	return rules, nil
}
