package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"tagged-serde/cli"
	"tagged-serde/diagnostic"
	"tagged-serde/format/cbor"
	"tagged-serde/format/json"
	"tagged-serde/format/jsonv2"
	"tagged-serde/format/toml"
	"tagged-serde/format/yaml"
	"tagged-serde/internal/match"
	"tagged-serde/node"
	"tagged-serde/options"
	"tagged-serde/tagfmt"
)

const name = "serde-convert"

var formats = map[string]*node.Format{
	"json":   json.Format,
	"jsonv2": jsonv2.Format,
	"toml":   toml.Format,
	"yaml":   yaml.Format,
	"cbor":   cbor.Format,
}

var extensions = map[string]string{
	".json":  "json",
	".jsonc": "json",
	".toml":  "toml",
	".yaml":  "yaml",
	".yml":   "yaml",
	".cbor":  "cbor",
}

func run(args []string, stdin io.Reader, stdout io.Writer, logger zerolog.Logger) error {
	cfg, err := parseArgs(args)
	if errors.Is(err, pflag.ErrHelp) {
		_, err = io.WriteString(stdout, cli.Usage(name, new(config)))
		return err
	}

	if err != nil {
		return err
	}

	if cfg.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	logger.Debug().Stringer("config", tagfmt.Of(cfg)).Msg("configuration loaded")

	if cfg.From == "" {
		cfg.From = extensions[strings.ToLower(filepath.Ext(cfg.Input))]
	}

	if cfg.From == "" {
		cfg.From = "json"
	}

	from, err := lookup(cfg.From)
	if err != nil {
		return err
	}

	to, err := lookup(cfg.To)
	if err != nil {
		return err
	}

	data, err := readInput(cfg.Input, stdin)
	if err != nil {
		return err
	}

	opts := options.Options{Indent: cfg.Indent, MaxDepth: cfg.MaxDepth}
	if cfg.Comments {
		opts.Flags |= options.FlagIgnoreComments
	}

	if cfg.ASCII {
		opts.Flags |= options.FlagEnsureASCII
	}

	doc, err := from.Read(data, opts)
	if err != nil {
		return fmt.Errorf("failed to parse %s input: %w", from, diagnostic.Wrap(err))
	}

	if cfg.Select != "" {
		path, err := diagnostic.ParsePath(cfg.Select)
		if err != nil {
			return fmt.Errorf("failed to parse --select: %w", err)
		}

		sel, ok := doc.At(path)
		if !ok {
			return fmt.Errorf("nothing at %s", path)
		}

		logger.Debug().Str("path", path.String()).Msg("selected node")

		doc = sel
	}

	out, err := to.Write(doc, opts)
	if err != nil {
		return fmt.Errorf("failed to write %s output: %w", to, diagnostic.Wrap(err))
	}

	if to != cbor.Format {
		out = append(bytes.TrimRight(out, "\n"), '\n')
	}

	if err := writeOutput(cfg.Output, stdout, out); err != nil {
		return err
	}

	logger.Debug().
		Str("from", from.Name).
		Str("to", to.Name).
		Int("bytes", len(out)).
		Msg("converted")

	return nil
}

// parseArgs reads the command line, over the --config file when one is named.
func parseArgs(args []string) (config, error) {
	cfg := defaults()

	rest, err := cli.Parse(&cfg, args)
	if err != nil {
		return cfg, err
	}

	if len(rest) > 0 {
		return cfg, fmt.Errorf("unexpected argument %q", rest[0])
	}

	if cfg.Config == "" {
		return cfg, nil
	}

	file := defaults()
	if err := loadConfig(cfg.Config, &file); err != nil {
		return cfg, err
	}

	if _, err := cli.Parse(&file, args); err != nil {
		return cfg, err
	}

	return file, nil
}

func lookup(format string) (*node.Format, error) {
	if f, ok := formats[format]; ok {
		return f, nil
	}

	names := slices.Sorted(maps.Keys(formats))

	if hint, ok := match.Suggest(format, names); ok {
		return nil, fmt.Errorf("unknown format %q; did you mean %q?", format, hint)
	}

	return nil, fmt.Errorf("unknown format %q; expected one of %s", format, strings.Join(names, ", "))
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" || path == "-" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write stdout: %w", err)
		}

		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
