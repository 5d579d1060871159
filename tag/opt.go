package tag

import "strings"

// OptInfo is the command-line view of a field, read from the "opt" namespace.
//
//	Verbose bool   `opt:"v,verbose,help=print more"`
//	Input   string `opt:"input,positional"`
//
// Unlike Info, every part is classified on its own: a single letter is the
// short flag, "help=" sets the help text, "positional" marks an argument and
// anything else is the long flag name.
type OptInfo struct {
	Short       byte
	Long        string
	Positional  bool
	SkipMissing bool // a missing positional argument is not an error
	Help        string
}

// ParseOpt extracts the OptInfo of raw.
func ParseOpt(raw string) OptInfo {
	var opt OptInfo

	seg, ok := Lookup(raw, "opt")
	if !ok || seg == "" {
		return opt
	}

	for part := range strings.SplitSeq(seg, ",") {
		switch {
		case part == "":
		case len(part) == 1 && isLetter(part[0]):
			opt.Short = part[0]
		case strings.HasPrefix(part, "help="):
			opt.Help = strings.TrimPrefix(part, "help=")
		case part == "positional":
			opt.Positional = true
		case part == "skipmissing":
			opt.SkipMissing = true
		default:
			opt.Long = part
		}
	}

	return opt
}

// Inert reports whether the field is neither a flag nor a positional argument.
func (o OptInfo) Inert() bool {
	return o.Short == 0 && o.Long == "" && !o.Positional
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
