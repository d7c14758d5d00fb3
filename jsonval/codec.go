package jsonval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/buger/jsonparser"
)

const indentUnit = "  "

// Decode parses JSON bytes into a Value. Object keys come out in document
// order, which the standard library's map-based decoding would lose.
func Decode(data []byte) (Value, error) {
	raw, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return decodeValue(raw, dataType)
}

func decodeValue(data []byte, dataType jsonparser.ValueType) (Value, error) {
	switch dataType {
	case jsonparser.Null:
		return Null{}, nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return nil, fmt.Errorf("parse boolean: %w", err)
		}
		return Bool(b), nil
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(data)
		if err != nil {
			return nil, fmt.Errorf("parse number: %w", err)
		}
		return Number(f), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return nil, fmt.Errorf("parse string: %w", err)
		}
		return String(s), nil
	case jsonparser.Object:
		obj := NewObject()
		err := jsonparser.ObjectEach(data, func(key []byte, value []byte, vt jsonparser.ValueType, _ int) error {
			k, err := jsonparser.ParseString(key)
			if err != nil {
				return fmt.Errorf("parse object key: %w", err)
			}
			child, err := decodeValue(value, vt)
			if err != nil {
				return err
			}
			obj.Set(k, child)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return obj, nil
	case jsonparser.Array:
		arr := Array{}
		var cbErr error
		_, err := jsonparser.ArrayEach(data, func(value []byte, vt jsonparser.ValueType, _ int, err error) {
			if cbErr != nil {
				return
			}
			if err != nil {
				cbErr = err
				return
			}
			child, err := decodeValue(value, vt)
			if err != nil {
				cbErr = err
				return
			}
			arr = append(arr, child)
		})
		if err != nil {
			return nil, err
		}
		if cbErr != nil {
			return nil, cbErr
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value type %v", dataType)
	}
}

// Encode serializes a Value as indented JSON with a trailing newline.
// Object keys are written in their stored order, so encoding is stable
// across runs and produces human-diffable files.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v Value, depth int) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("cannot encode nil value")
	case Null:
		buf.WriteString("null")
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		s, err := formatNumber(float64(val))
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case String:
		data, err := json.Marshal(string(val))
		if err != nil {
			return err
		}
		buf.Write(data)
	case *Object:
		if val.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		var encErr error
		i := 0
		val.Each(func(key string, child Value) {
			if encErr != nil {
				return
			}
			if i > 0 {
				buf.WriteString(",\n")
			}
			writeIndent(buf, depth+1)
			keyData, err := json.Marshal(key)
			if err != nil {
				encErr = err
				return
			}
			buf.Write(keyData)
			buf.WriteString(": ")
			encErr = encodeValue(buf, child, depth+1)
			i++
		})
		if encErr != nil {
			return encErr
		}
		buf.WriteByte('\n')
		writeIndent(buf, depth)
		buf.WriteByte('}')
	case Array:
		if len(val) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, child := range val {
			if i > 0 {
				buf.WriteString(",\n")
			}
			writeIndent(buf, depth+1)
			if err := encodeValue(buf, child, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		writeIndent(buf, depth)
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString(indentUnit)
	}
}

// formatNumber renders integral floats without a fractional part so that
// counters and indices round-trip as "3" rather than "3.0" or "3e+00".
func formatNumber(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("cannot encode %v as JSON number", f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}
