package tag

import (
	"strconv"
	"strings"

	"tagged-serde/utils"
)

// Info is the directive set of one field for one format namespace.
// A field with an empty Key is inert: it is never written and never required.
type Info struct {
	Key         string
	SkipMissing bool // absent input leaves the current value untouched
	OmitEmpty   bool // empty values are not written
	NoSerde     bool // the value is pre-encoded document text
	Positional  bool
	Help        string
}

// Parse extracts the Info of namespace ns from raw.
func Parse(raw, ns string) Info {
	seg, ok := Lookup(raw, ns)
	if !ok {
		return Info{}
	}

	return ParseSegment(seg)
}

// ParseAny is Parse over the first namespace of nss present in raw.
func ParseAny(raw string, nss ...string) Info {
	seg, ok := LookupAny(raw, nss...)
	if !ok {
		return Info{}
	}

	return ParseSegment(seg)
}

// ParseSegment parses an already extracted directive list.
func ParseSegment(seg string) Info {
	key, rest, hasRest := strings.Cut(seg, ",")

	info := Info{Key: key}
	if key == "-" && !hasRest {
		info.Key = ""
	}

	if !hasRest {
		return info
	}

	for part := range strings.SplitSeq(rest, ",") {
		name, arg := utils.Unpack2(strings.SplitN(part, "=", 2))

		switch name {
		case "skipmissing":
			info.SkipMissing = true
		case "omitempty":
			info.OmitEmpty = true
		case "noserde":
			info.NoSerde = true
		case "positional":
			info.Positional = true
		case "help":
			info.Help = arg
		}
	}

	return info
}

// Inert reports whether the field takes no part in the format.
func (i Info) Inert() bool {
	return i.Key == ""
}

// FieldNumber returns the numeric prefix of the key, as used for protobuf
// field numbers. A leading '-' is kept. Keys without digits yield 0.
func FieldNumber(info Info) int64 {
	key := info.Key

	start := 0
	if strings.HasPrefix(key, "-") {
		start = 1
	}

	end := start
	for end < len(key) && utils.IsInRange('0', key[end], '9') {
		end++
	}

	if end == start {
		return 0
	}

	n, err := strconv.ParseInt(key[:end], 10, 32)
	if err != nil {
		return 0
	}

	return n
}

// TupleInfo holds the per-slot directives of an ordered tuple.
type TupleInfo struct {
	Slots []Info
}

// ParseTuple parses the raw tags of every slot for namespace ns.
func ParseTuple(raws []string, ns string) TupleInfo {
	slots := make([]Info, len(raws))
	for i, raw := range raws {
		slots[i] = Parse(raw, ns)
	}

	return TupleInfo{Slots: slots}
}

// IsObj reports whether the tuple is written as a keyed record.
// It is false only for a non-empty tuple whose keyed slots are all positional.
func (t TupleInfo) IsObj() bool {
	if len(t.Slots) == 0 {
		return true
	}

	for _, s := range t.Slots {
		if s.Key != "" && !s.Positional {
			return true
		}
	}

	return false
}
