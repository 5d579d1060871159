// Package options holds the knobs shared by every parse and dump entry point.
package options

import "tagged-serde/internal/common"

type FlagEnum int

const (
	FlagIgnoreComments FlagEnum = 1 << iota // json: strip comments and trailing commas before parsing
	FlagEnsureASCII                         // json: escape every non-ASCII rune as \uXXXX on output

	FlagAll  = (1 << iota) - 1 // all flags combined
	FlagNone = 0               // no flags selected
)

// DefaultMaxDepth bounds the nesting of converted values and parsed documents.
const DefaultMaxDepth = 512

// Options configures one parse or dump call.
type Options struct {
	// Indent is the number of spaces per nesting level on output; zero
	// selects the compact form where the format has one.
	Indent int
	Flags  FlagEnum
	// MaxDepth is the deepest nesting accepted; zero means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) Has(f FlagEnum) bool {
	return o.Flags&f == f
}

// Resolve returns the last of opts with defaults filled in.
func Resolve(opts ...Options) Options {
	o, _ := common.Last(opts)

	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}

	return o
}
