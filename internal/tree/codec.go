package tree

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	engerrors "github.com/vishalvchavan/streamsmt/pkg/errors"
)

// Decode parses raw JSON bytes into a Node tree, preserving object key
// order via token-level decoding (goccy/go-json's Decoder.Token, the same
// technique encoding/json supports) since plain unmarshal into
// map[string]interface{} would discard it.
func Decode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeValue(dec)
	if err != nil {
		return Missing, engerrors.Wrap(err, engerrors.EInvalid, "failed to parse JSON payload")
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Missing, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch v := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(v), nil
	case json.Number:
		return decodeNumber(v), nil
	case string:
		return Text(v), nil
	case json.Delim:
		switch v {
		case json.Delim('['):
			return decodeArray(dec)
		case json.Delim('{'):
			return decodeObject(dec)
		default:
			return Missing, fmt.Errorf("unexpected JSON delimiter %q", v)
		}
	default:
		return Missing, fmt.Errorf("unexpected JSON token %T", tok)
	}
}

func decodeNumber(num json.Number) Node {
	s := string(num)
	if !strings.ContainsAny(s, ".eE") {
		if iv, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(iv)
		}
		// Overflows int64: preserve the exact text rather than lose
		// precision through a float64 round-trip.
		return Decimal(s)
	}
	if fv, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(fv)
	}
	return Decimal(s)
}

func decodeArray(dec *json.Decoder) (Node, error) {
	var elems []Node
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return Missing, err
		}
		elems = append(elems, v)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return Missing, err
	}
	return Array(elems), nil
}

func decodeObject(dec *json.Decoder) (Node, error) {
	obj := NewObject(4)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Missing, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Missing, fmt.Errorf("expected JSON object key, got %T", keyTok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return Missing, err
		}
		obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return Missing, err
	}
	return ObjectNode(obj), nil
}

// Encode serializes n back to JSON, preserving object key order.
func Encode(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, n); err != nil {
		return nil, engerrors.Wrap(err, engerrors.EInternal, "failed to encode output tree")
	}
	return buf.Bytes(), nil
}

func encodeValue(w io.Writer, n Node) error {
	switch n.Kind() {
	case KindMissing, KindNull:
		_, err := io.WriteString(w, "null")
		return err
	case KindBool:
		_, err := io.WriteString(w, strconv.FormatBool(n.BoolValue()))
		return err
	case KindInt:
		_, err := io.WriteString(w, strconv.FormatInt(n.IntValue(), 10))
		return err
	case KindFloat:
		_, err := io.WriteString(w, strconv.FormatFloat(n.FloatValue(), 'g', -1, 64))
		return err
	case KindDecimal:
		_, err := io.WriteString(w, n.DecimalText())
		return err
	case KindText:
		b, err := json.Marshal(n.TextValue())
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case KindArray:
		if _, err := io.WriteString(w, "["); err != nil {
			return err
		}
		for i, el := range n.ArrayValue() {
			if i > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			if err := encodeValue(w, el); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "]")
		return err
	case KindObject:
		if _, err := io.WriteString(w, "{"); err != nil {
			return err
		}
		obj := n.ObjectValue()
		for i, k := range obj.Keys() {
			if i > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			if _, err := w.Write(kb); err != nil {
				return err
			}
			if _, err := io.WriteString(w, ":"); err != nil {
				return err
			}
			v, _ := obj.Get(k)
			if err := encodeValue(w, v); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "}")
		return err
	default:
		return fmt.Errorf("unknown node kind %d", n.Kind())
	}
}
