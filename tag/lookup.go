// Package tag parses the directive strings attached to struct fields and
// tuple slots.
//
// A raw tag holds one directive list per format namespace:
//
//	json:"name,omitempty" toml:"name" proto:"1"
//
// The Go quoting style and a backtick style (json:`name`) are both accepted,
// and one list may be shared by several namespaces (json,yaml:"name").
// The first comma-separated part of a list is the key; the rest are flags
// (skipmissing, omitempty, noserde, positional) or key=value pairs (help=).
// Unknown parts are ignored.
package tag

import (
	"strconv"
	"strings"
)

// Lookup returns the directive list stored under namespace ns in raw.
// The boolean is false when the namespace is absent or raw is malformed
// before the namespace is reached.
func Lookup(raw, ns string) (string, bool) {
	for raw != "" {
		i := 0
		for i < len(raw) && raw[i] == ' ' {
			i++
		}

		raw = raw[i:]
		if raw == "" {
			break
		}

		i = 0
		for i < len(raw) && raw[i] > ' ' && raw[i] != ':' && raw[i] != '"' && raw[i] != '`' && raw[i] != 0x7f {
			i++
		}

		if i == 0 || i+1 >= len(raw) || raw[i] != ':' {
			break
		}

		names, quote := raw[:i], raw[i+1]
		raw = raw[i+2:]

		var value string

		switch quote {
		default:
			return "", false
		case '`':
			end := strings.IndexByte(raw, '`')
			if end < 0 {
				return "", false
			}

			value, raw = raw[:end], raw[end+1:]
		case '"':
			end := 0
			for end < len(raw) && raw[end] != '"' {
				if raw[end] == '\\' {
					end++
				}
				end++
			}

			if end >= len(raw) {
				return "", false
			}

			unquoted, err := strconv.Unquote(`"` + raw[:end] + `"`)
			if err != nil {
				return "", false
			}

			value, raw = unquoted, raw[end+1:]
		}

		for name := range strings.SplitSeq(names, ",") {
			if name == ns {
				return value, true
			}
		}
	}

	return "", false
}

// LookupAny returns the directive list of the first namespace in nss that is
// present in raw.
func LookupAny(raw string, nss ...string) (string, bool) {
	for _, ns := range nss {
		if v, ok := Lookup(raw, ns); ok {
			return v, true
		}
	}

	return "", false
}
