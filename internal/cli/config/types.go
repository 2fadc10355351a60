// Package config provides configuration management for the xovigen CLI.
//
// Values are layered from built-in defaults, an optional YAML file and the
// flags given on the command line, in that order of increasing precedence.
package config

// Config holds all CLI configuration options.
type Config struct {
	Output            string `koanf:"output"`
	OutputHeader      string `koanf:"output_header"`
	Architecture      string `koanf:"architecture"`
	Boilerplate       string `koanf:"boilerplate"`
	HeaderBoilerplate string `koanf:"header_boilerplate"`
	Verbose           bool   `koanf:"verbose"`
	Watch             bool   `koanf:"watch"`
}

// Config file names searched for when no --config flag is given.
var configFileNames = []string{"xovigen.yaml", "xovigen.yml"}

// pathKeys are the keys holding file paths. Relative paths read from a config
// file are resolved against the file's directory.
var pathKeys = []string{"output", "output_header", "boilerplate", "header_boilerplate"}
