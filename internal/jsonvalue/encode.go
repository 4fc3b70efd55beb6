package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Encode writes v as JSON to w. When indent is non-empty, the output is
// pretty-printed with that indent string (the driver's batch output and the
// fetch cache's stored documents both use "  ", matching the teacher's
// preference for readable on-disk JSON).
func Encode(w io.Writer, v *Value, indent string) error {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	if indent == "" {
		_, err := w.Write(buf.Bytes())
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf.Bytes(), "", indent); err != nil {
		return fmt.Errorf("indent json: %w", err)
	}
	_, err := w.Write(pretty.Bytes())
	return err
}

// Marshal returns v as compact JSON bytes.
func Marshal(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v *Value) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.Num)
	case KindString:
		encoded, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.Arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range v.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyBytes)
			buf.WriteByte(':')
			if err := encodeValue(buf, v.Fields[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %v", v.Kind)
	}
	return nil
}
