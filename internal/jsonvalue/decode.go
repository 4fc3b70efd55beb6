package jsonvalue

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads one JSON document from r into an order-preserving Value
// tree. encoding/json's map[string]any target loses key order, which the
// Normalizer relies on for deterministic definitions output, so Decode
// drives the lower-level Decoder.Token() API directly.
func Decode(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// Unmarshal parses a JSON document already fully read into memory.
func Unmarshal(data []byte) (*Value, error) {
	dec := json.NewDecoder(&jsonReader{data})
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}
	return v, nil
}

type jsonReader struct{ data []byte }

func (r *jsonReader) Read(p []byte) (int, error) {
	n := copy(p, r.data)
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	r.data = r.data[n:]
	return n, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case nil:
		return &Value{Kind: KindNull}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		return &Value{Kind: KindNumber, Num: t.String()}, nil
	case string:
		return &Value{Kind: KindString, Str: t}, nil
	default:
		return nil, fmt.Errorf("unexpected token %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (*Value, error) {
	obj := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		child, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, child)
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (*Value, error) {
	arr := NewArray()
	for dec.More() {
		child, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr.Append(child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}
