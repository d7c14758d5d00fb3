package document

import (
	"github.com/modforge/core/errors"
	"github.com/modforge/core/jsonval"
)

// Write returns a new tree with value written at path, creating missing
// intermediate containers and growing arrays on demand. Every container on
// the route from the root to the write site is shallow-copied, so the input
// tree is never mutated and stays valid for callers still holding it.
func Write(tree jsonval.Value, path Path, value jsonval.Value) (jsonval.Value, error) {
	if len(path) == 0 {
		switch value.Kind() {
		case jsonval.KindObject, jsonval.KindArray:
			return value.Clone(), nil
		}
		return value, nil
	}
	return writeAt(tree, path, 0, value)
}

func writeAt(node jsonval.Value, path Path, depth int, value jsonval.Value) (jsonval.Value, error) {
	seg := path[depth]
	last := depth == len(path)-1

	if seg.IsIndex() && seg.Index() < 0 {
		return nil, errors.InvalidInput("negative array index in path " + path.String())
	}

	switch n := node.(type) {
	case *jsonval.Object:
		if seg.IsIndex() {
			return nil, conflict(path, depth, "array", n.Kind())
		}
		out := n.Copy()
		if last {
			out.Set(seg.Key(), value)
			return out, nil
		}
		child, ok := n.Get(seg.Key())
		if !ok {
			child = emptyContainer(path[depth+1])
		}
		newChild, err := writeAt(child, path, depth+1, value)
		if err != nil {
			return nil, err
		}
		out.Set(seg.Key(), newChild)
		return out, nil

	case jsonval.Array:
		if !seg.IsIndex() {
			return nil, conflict(path, depth, "object", n.Kind())
		}
		idx := seg.Index()
		out := n.Copy()
		if last {
			for len(out) <= idx {
				out = append(out, jsonval.Null{})
			}
			out[idx] = value
			return out, nil
		}
		for len(out) <= idx {
			out = append(out, emptyContainer(path[depth+1]))
		}
		newChild, err := writeAt(out[idx], path, depth+1, value)
		if err != nil {
			return nil, err
		}
		out[idx] = newChild
		return out, nil

	default:
		wanted := "object"
		if seg.IsIndex() {
			wanted = "array"
		}
		return nil, conflict(path, depth, wanted, node.Kind())
	}
}

func conflict(path Path, depth int, wanted string, found jsonval.Kind) error {
	return errors.PathConflict(path[:depth+1].String(), wanted, found.String())
}

// emptyContainer picks the placeholder to create for a missing intermediate
// node, based on what the following segment expects to select into.
func emptyContainer(next Segment) jsonval.Value {
	if next.IsIndex() {
		return jsonval.Array{}
	}
	return jsonval.NewObject()
}

// ValueAt walks path through tree and returns the value there, reporting
// false when any step is missing or of the wrong shape.
func ValueAt(tree jsonval.Value, path Path) (jsonval.Value, bool) {
	node := tree
	for _, seg := range path {
		switch n := node.(type) {
		case *jsonval.Object:
			if seg.IsIndex() {
				return nil, false
			}
			child, ok := n.Get(seg.Key())
			if !ok {
				return nil, false
			}
			node = child
		case jsonval.Array:
			if !seg.IsIndex() {
				return nil, false
			}
			idx := seg.Index()
			if idx < 0 || idx >= len(n) {
				return nil, false
			}
			node = n[idx]
		default:
			return nil, false
		}
	}
	return node, true
}
