// Package config loads the CLI's optional .json-to-tables.hcl file,
// letting CLI flags override whatever it sets.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/agentic-research/jsontotables/internal/errs"
)

// Config mirrors the CLI flags of the same name — see SPEC_FULL's
// ambient-stack section. Every field is optional; a flag explicitly set
// on the command line always wins over the config file's value.
type Config struct {
	Sink      string `hcl:"sink,optional"`
	Strict    bool   `hcl:"strict,optional"`
	Parallel  int    `hcl:"parallel,optional"`
	BatchSize int    `hcl:"batch_size,optional"`
}

// Load reads path as HCL into a Config. A missing file is not an error
// — it returns a zero-value Config, since every setting has a flag
// default to fall back on.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Config{}, nil
	}

	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parsing config %s: %v", errs.ErrInputIO, path, err)
	}
	return cfg, nil
}
