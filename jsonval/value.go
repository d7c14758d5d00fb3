// Package jsonval models JSON documents as an explicit tagged union so that
// traversal code matches exhaustively on node kinds instead of type-asserting
// its way through interface{} trees. Object keys keep their insertion order,
// which is what makes persisted documents diffable.
package jsonval

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the concrete type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the lowercase name of the kind, as used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is one node of a document tree. The six implementations are Null,
// Bool, Number, String, *Object and Array; no other type satisfies it.
type Value interface {
	Kind() Kind
	// Clone returns a deep copy sharing no containers with the receiver.
	Clone() Value

	value()
}

// Null is the JSON null value.
type Null struct{}

func (Null) Kind() Kind   { return KindNull }
func (Null) Clone() Value { return Null{} }
func (Null) value()       {}

// Bool is a JSON boolean.
type Bool bool

func (b Bool) Kind() Kind   { return KindBool }
func (b Bool) Clone() Value { return b }
func (Bool) value()         {}

// Number is a JSON number, stored as a float64.
type Number float64

func (n Number) Kind() Kind   { return KindNumber }
func (n Number) Clone() Value { return n }
func (Number) value()         {}

// String is a JSON string.
type String string

func (s String) Kind() Kind   { return KindString }
func (s String) Clone() Value { return s }
func (String) value()         {}

// Object is an ordered mapping from string keys to values. Insertion order
// is preserved; overwriting an existing key keeps its original position.
type Object struct {
	entries *orderedmap.OrderedMap[string, Value]
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{entries: orderedmap.New[string, Value]()}
}

func (o *Object) Kind() Kind { return KindObject }
func (*Object) value()       {}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o.entries == nil {
		return 0
	}
	return o.entries.Len()
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o.entries == nil {
		return nil, false
	}
	return o.entries.Get(key)
}

// Set inserts or overwrites key and returns the object for chaining.
func (o *Object) Set(key string, v Value) *Object {
	if o.entries == nil {
		o.entries = orderedmap.New[string, Value]()
	}
	o.entries.Set(key, v)
	return o
}

// Delete removes key, reporting whether it was present.
func (o *Object) Delete(key string) bool {
	if o.entries == nil {
		return false
	}
	_, present := o.entries.Delete(key)
	return present
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	if o.entries == nil {
		return keys
	}
	for pair := o.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every key/value pair in insertion order.
func (o *Object) Each(fn func(key string, v Value)) {
	if o.entries == nil {
		return
	}
	for pair := o.entries.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Copy returns a shallow copy: a new object with the same keys in the same
// order, pointing at the same child values.
func (o *Object) Copy() *Object {
	out := &Object{entries: orderedmap.New[string, Value](orderedmap.WithCapacity[string, Value](o.Len()))}
	o.Each(func(key string, v Value) {
		out.entries.Set(key, v)
	})
	return out
}

// Clone returns a deep copy.
func (o *Object) Clone() Value {
	out := &Object{entries: orderedmap.New[string, Value](orderedmap.WithCapacity[string, Value](o.Len()))}
	o.Each(func(key string, v Value) {
		out.entries.Set(key, v.Clone())
	})
	return out
}

// Array is an ordered sequence of values.
type Array []Value

func (a Array) Kind() Kind { return KindArray }
func (Array) value()       {}

// Copy returns a shallow copy of the array.
func (a Array) Copy() Array {
	out := make(Array, len(a))
	copy(out, a)
	return out
}

// Clone returns a deep copy.
func (a Array) Clone() Value {
	out := make(Array, len(a))
	for i, v := range a {
		out[i] = v.Clone()
	}
	return out
}

// Equal reports structural equality of two values. Object keys must match
// in both content and order, since key order is significant on disk.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		equal := true
		bKeys := bv.Keys()
		i := 0
		av.Each(func(key string, v Value) {
			if !equal {
				return
			}
			if bKeys[i] != key {
				equal = false
				return
			}
			other, _ := bv.Get(key)
			if !Equal(v, other) {
				equal = false
			}
			i++
		})
		return equal
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
