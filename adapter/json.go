package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-postfix/value"
)

// JSONExtension is the file extension handled by JSON.
const JSONExtension = "json"

// JSON reads JSON documents, keeping object key order.
type JSON struct {
	structured
}

var _ MergingAdapter = (*JSON)(nil)

func NewJSON() *JSON {
	return &JSON{structured{format: "json", extensions: extensionSet{JSONExtension}}}
}

// Ingest parses content. Blank content yields an empty object.
func (j *JSON) Ingest(postfix string, content []byte) (value.Value, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return value.NewObject(), nil
	}
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	tree, err := decodeJSONValue(decoder)
	if err != nil {
		return value.Null, &ParseError{Format: j.Format(), Postfix: postfix, Cause: err}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return value.Null, &ParseError{Format: j.Format(), Postfix: postfix, Cause: fmt.Errorf("unexpected data after top-level value")}
	}
	return tree, nil
}

func decodeJSONValue(decoder *json.Decoder) (value.Value, error) {
	token, err := decoder.Token()
	if err != nil {
		return value.Null, err
	}
	switch typed := token.(type) {
	case json.Delim:
		switch typed {
		case '{':
			b := value.NewObjectBuilder(4)
			for decoder.More() {
				keyToken, err := decoder.Token()
				if err != nil {
					return value.Null, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return value.Null, fmt.Errorf("expected object key, got %v", keyToken)
				}
				child, err := decodeJSONValue(decoder)
				if err != nil {
					return value.Null, fmt.Errorf("%s: %w", key, err)
				}
				b.Set(key, child)
			}
			if _, err := decoder.Token(); err != nil {
				return value.Null, err
			}
			return b.Build(), nil
		case '[':
			var items []value.Value
			for decoder.More() {
				child, err := decodeJSONValue(decoder)
				if err != nil {
					return value.Null, fmt.Errorf("[%d]: %w", len(items), err)
				}
				items = append(items, child)
			}
			if _, err := decoder.Token(); err != nil {
				return value.Null, err
			}
			return value.Array(items...), nil
		default:
			return value.Null, fmt.Errorf("unexpected delimiter %q", typed)
		}
	case json.Number:
		return value.FromNumber(typed.String())
	case string:
		return value.String(typed), nil
	case bool:
		return value.Bool(typed), nil
	case nil:
		return value.Null, nil
	default:
		return value.Null, fmt.Errorf("unexpected token %v", token)
	}
}
