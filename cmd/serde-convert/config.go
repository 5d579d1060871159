package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tagged-serde/format/toml"
	"tagged-serde/format/yaml"
)

type config struct {
	From     string `opt:"f,from,help=input format; guessed from the input name" yaml:"from,skipmissing" toml:"from,skipmissing" fmt:"from"`
	To       string `opt:"t,to,help=output format" yaml:"to,skipmissing" toml:"to,skipmissing" fmt:"to"`
	Indent   int    `opt:"i,indent,help=spaces per nesting level" yaml:"indent,skipmissing" toml:"indent,skipmissing" fmt:"indent"`
	ASCII    bool   `opt:"a,ascii,help=escape non-ASCII characters in JSON output" yaml:"ascii,skipmissing" toml:"ascii,skipmissing" fmt:"ascii"`
	Comments bool   `opt:"c,comments,help=accept comments and trailing commas in JSON input" yaml:"comments,skipmissing" toml:"comments,skipmissing" fmt:"comments"`
	MaxDepth int    `opt:"max-depth,help=deepest nesting accepted" yaml:"max_depth,skipmissing" toml:"max_depth,skipmissing" fmt:"max_depth"`
	Select   string `opt:"s,select,help=path of the node to convert such as .items[0]" fmt:"select"`
	Config   string `opt:"config,help=YAML or TOML file with defaults" fmt:"config"`
	Verbose  bool   `opt:"v,verbose,help=log debug output" yaml:"verbose,skipmissing" toml:"verbose,skipmissing" fmt:"verbose"`
	Input    string `opt:"positional,skipmissing,help=input file" fmt:"input"`
	Output   string `opt:"positional,skipmissing,help=output file" fmt:"output"`
}

func defaults() config {
	return config{To: "json"}
}

// loadConfig reads path over cfg. Fields missing from the file keep their values.
func loadConfig(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.ParseInto(data, cfg)
	case ".toml":
		err = toml.ParseInto(data, cfg)
	default:
		return fmt.Errorf("failed to load %s: unsupported config extension %q", path, ext)
	}

	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	return nil
}
