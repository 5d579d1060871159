// Command serde-convert converts documents between JSON, TOML, YAML and
// CBOR:
//
//	serde-convert --to yaml config.json
//	serde-convert -f toml -t json --select .servers[0] < app.toml
//
// Defaults can be kept in a YAML or TOML file passed with --config; flags
// override it.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	if err := run(os.Args[1:], os.Stdin, os.Stdout, logger); err != nil {
		logger.Error().Err(err).Msg("conversion failed")
		os.Exit(1)
	}
}
