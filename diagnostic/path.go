package diagnostic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: a member key or a sequence index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path locates a node inside a document, root first.
type Path []Segment

// String renders the path as ".outer[0].age", or "<root>" when empty.
func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}

	var b strings.Builder

	for _, s := range p {
		if s.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		} else {
			b.WriteByte('.')
			b.WriteString(s.Key)
		}
	}

	return b.String()
}

// ParsePath parses the String form of a path.
// Supports: "<root>", "", ".name", "[2]", ".items[0].name".
func ParsePath(path string) (Path, error) {
	if path == "" || path == "<root>" {
		return Path{}, nil
	}

	var segments Path

	for rest := path; rest != ""; {
		switch rest[0] {
		case '.':
			rest = rest[1:]

			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}

			if end == 0 {
				return nil, fmt.Errorf("invalid path %q: empty key", path)
			}

			segments = append(segments, Segment{Key: rest[:end]})
			rest = rest[end:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("invalid path %q: unterminated index", path)
			}

			i, err := strconv.Atoi(rest[1:end])
			if err != nil || i < 0 {
				return nil, fmt.Errorf("invalid path %q: invalid index %q", path, rest[1:end])
			}

			segments = append(segments, Segment{Index: i, IsIndex: true})
			rest = rest[end+1:]
		default:
			return nil, errors.New("invalid path " + strconv.Quote(path) + ": segments start with '.' or '['")
		}
	}

	return segments, nil
}
