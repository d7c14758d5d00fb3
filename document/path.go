// Package document implements the command stack at the heart of the editor:
// path-addressed edits against in-memory JSON snapshots, with strict LIFO
// undo/redo, per-document dirty tracking, and synchronous observer fan-out.
package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/modforge/core/errors"
)

// ID identifies a persisted document, conventionally its file path.
type ID string

// Segment is one step of a Path: either a string key selecting into an
// object, or an integer index selecting into an array.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Field creates a segment that selects object key k.
func Field(k string) Segment {
	return Segment{key: k}
}

// Index creates a segment that selects array element i.
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

// IsIndex reports whether the segment selects into an array.
func (s Segment) IsIndex() bool { return s.isIndex }

// Key returns the object key, valid only when IsIndex is false.
func (s Segment) Key() string { return s.key }

// Index returns the array index, valid only when IsIndex is true.
func (s Segment) Index() int { return s.index }

func (s Segment) String() string {
	if s.isIndex {
		return fmt.Sprintf("[%d]", s.index)
	}
	return s.key
}

// Path is an ordered sequence of segments addressing a location inside a
// document tree. The empty path addresses the whole document.
type Path []Segment

// ParsePath parses the dotted notation used on the command line, e.g.
// "weapons[0].damage". An empty string yields the empty path.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}

	var path Path
	for _, part := range strings.Split(s, ".") {
		key := part
		var indexes []int
		for {
			open := strings.IndexByte(key, '[')
			if open < 0 {
				break
			}
			rest := key[open:]
			key = key[:open]
			for rest != "" {
				if rest[0] != '[' {
					return nil, errors.InvalidInput(fmt.Sprintf("malformed path segment '%s'", part))
				}
				close := strings.IndexByte(rest, ']')
				if close < 0 {
					return nil, errors.InvalidInput(fmt.Sprintf("unclosed index in path segment '%s'", part))
				}
				idx, err := strconv.Atoi(rest[1:close])
				if err != nil || idx < 0 {
					return nil, errors.InvalidInput(fmt.Sprintf("invalid array index in path segment '%s'", part))
				}
				indexes = append(indexes, idx)
				rest = rest[close+1:]
			}
			break
		}

		if key == "" && len(indexes) == 0 {
			return nil, errors.InvalidInput(fmt.Sprintf("empty segment in path '%s'", s))
		}
		if key != "" {
			path = append(path, Field(key))
		}
		for _, idx := range indexes {
			path = append(path, Index(idx))
		}
	}
	return path, nil
}

// MustParsePath is like ParsePath but panics on a malformed path. It is
// intended for paths known at compile time.
func MustParsePath(s string) Path {
	path, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return path
}

// String renders the path in the same notation ParsePath accepts.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if !seg.IsIndex() && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Equal reports whether two paths address the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
