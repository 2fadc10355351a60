package config

import (
	"fmt"
	"path/filepath"
)

// Validate checks if the configuration is usable for a generator run.
func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("an output file is required\nHint: pass -o <file> or set output in xovigen.yaml")
	}
	if c.OutputHeader != "" && filepath.Clean(c.OutputHeader) == filepath.Clean(c.Output) {
		return fmt.Errorf("header and module output must be different files: %s", c.Output)
	}
	return nil
}
