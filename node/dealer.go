package node

import "reflect"

type capKey struct {
	format *Format
	typ    reflect.Type
	decode bool
}

// dealer tracks the capability questions in progress, so that recursive
// types are answered optimistically instead of looping.
type dealer struct {
	open map[capKey]struct{}
}

// enter marks k as in progress. It reports false if k already was.
func (d *dealer) enter(k capKey) bool {
	if d.open == nil {
		d.open = make(map[capKey]struct{})
	}

	if _, exists := d.open[k]; exists {
		return false
	}

	d.open[k] = struct{}{}

	return true
}

func (d *dealer) leave(k capKey) {
	delete(d.open, k)
}
