package node

import (
	"fmt"
	"os"

	"tagged-serde/diagnostic"
	"tagged-serde/options"
)

// Parse reads a document of format f into a new T.
func Parse[T any](f *Format, data []byte, opts ...options.Options) (T, error) {
	var v T

	err := ParseInto(f, data, &v, opts...)

	return v, err
}

// ParseInto reads a document of format f into the value ptr points to.
// Members marked skipmissing keep the values already present in *ptr.
func ParseInto(f *Format, data []byte, ptr any, opts ...options.Options) error {
	o := options.Resolve(opts...)

	n, err := f.Read(data, o)
	if err != nil {
		return diagnostic.Wrap(err)
	}

	return Decode(f, n, ptr, o)
}

// ParseFile reads the document stored at path.
func ParseFile[T any](f *Format, path string, opts ...options.Options) (T, error) {
	var v T

	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("failed to read %s: %w", path, err)
	}

	err = ParseInto(f, data, &v, opts...)

	return v, err
}

// Dump writes v as a document of format f.
func Dump(f *Format, v any, opts ...options.Options) ([]byte, error) {
	o := options.Resolve(opts...)

	n, err := Encode(f, v, o)
	if err != nil {
		return nil, err
	}

	out, err := f.Write(n, o)
	if err != nil {
		return nil, diagnostic.Wrap(err)
	}

	return out, nil
}
