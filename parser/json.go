package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ledgerline/taxdoc-import/dto"
)

// parseJSON accepts a top-level array of objects (one row per element) or a
// single object (a one-row result). Column order follows the first element's
// keys in document order; every row keeps its own key set.
func parseJSON(data []byte) (*dto.ParseResult, error) {
	var root interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var elements []map[string]interface{}
	switch v := root.(type) {
	case []interface{}:
		elements = make([]map[string]interface{}, 0, len(v))
		for i, el := range v {
			obj, ok := el.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("array element %d is not an object", i+1)
			}
			elements = append(elements, obj)
		}
	case map[string]interface{}:
		elements = []map[string]interface{}{v}
	default:
		return nil, fmt.Errorf("top-level JSON must be an array of objects or an object")
	}

	columns := firstElementColumns(data)

	rows := make([]dto.RawRow, 0, len(elements))
	for _, el := range elements {
		row := make(dto.RawRow, len(el))
		for k, v := range el {
			row[k] = v
		}
		rows = append(rows, row)
	}

	return newParseResult(columns, rows), nil
}

// firstElementColumns re-reads the document token by token to recover the key
// order of the first object, which json.Unmarshal does not preserve.
func firstElementColumns(data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); ok && d == '[' {
		if !dec.More() {
			return nil
		}
		tok, err = dec.Token()
		if err != nil {
			return nil
		}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	var columns []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}
		columns = append(columns, key)
		if err := skipValue(dec); err != nil {
			return nil
		}
	}
	return columns
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
