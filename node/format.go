package node

import (
	"tagged-serde/options"
	"tagged-serde/tag"
	"tagged-serde/tree"
)

// Format describes one document format to the dispatch engine.
type Format struct {
	// Name identifies the format in messages.
	Name string
	// Namespaces are the tag namespaces read for this format, in priority order.
	Namespaces []string
	// Null is set when the format can represent an absent value.
	Null bool
	// NativeTime is set when the format has its own date-time node.
	NativeTime bool
	// NativeBytes is set when the format has its own byte-string node.
	NativeBytes bool

	// Read parses a whole document. Used by the entry points and to splice
	// noserde text.
	Read func(data []byte, o options.Options) (*tree.Node, error)
	// Write prints a whole document. Used by the entry points and to
	// capture noserde text.
	Write func(n *tree.Node, o options.Options) ([]byte, error)
}

// Info parses the directives of raw for the first namespace of f present in it.
func (f *Format) Info(raw string) tag.Info {
	return tag.ParseAny(raw, f.Namespaces...)
}

func (f *Format) String() string {
	return f.Name
}
