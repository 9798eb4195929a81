package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type jsonParser struct{}

func (jsonParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

// Parse accepts three layouts:
//   - an array of objects (columns in first-seen key order, missing keys are nil)
//   - an array of arrays whose first element is the header
//   - an object {"columns": [...], "rows": [[...], ...]} ("data" is accepted for "rows")
func (jsonParser) Parse(content []byte, opt Options) (*Table, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return &Table{}, nil
	}
	switch trimmed[0] {
	case '[':
		return parseJSONArray(trimmed, opt)
	case '{':
		return parseJSONColumnsRows(trimmed, opt)
	default:
		return nil, errors.New("json: expected array or object at top level")
	}
}

func parseJSONArray(content []byte, opt Options) (*Table, error) {
	var items []json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	t := &Table{}
	if len(items) == 0 {
		return t, nil
	}
	first := bytes.TrimSpace(items[0])
	if len(first) > 0 && first[0] == '[' {
		var header []any
		if err := decodeNumbers(first, &header); err != nil {
			return nil, fmt.Errorf("decode header: %w", err)
		}
		for _, h := range header {
			t.Columns = append(t.Columns, fmt.Sprint(h))
		}
		for i, raw := range items[1:] {
			var row []any
			if err := decodeNumbers(raw, &row); err != nil {
				return nil, fmt.Errorf("decode row %d: %w", i+1, err)
			}
			if keepRow(t, opt) {
				t.Rows = append(t.Rows, row)
			}
		}
		return t, nil
	}

	index := map[string]int{}
	records := make([]map[string]any, 0, len(items))
	for i, raw := range items {
		keys, vals, err := decodeOrderedObject(raw)
		if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i+1, err)
		}
		for _, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(t.Columns)
				t.Columns = append(t.Columns, k)
			}
		}
		records = append(records, vals)
	}
	for _, rec := range records {
		if !keepRow(t, opt) {
			continue
		}
		row := make([]any, len(t.Columns))
		for k, v := range rec {
			row[index[k]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func parseJSONColumnsRows(content []byte, opt Options) (*Table, error) {
	var doc struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
		Data    [][]any  `json:"data"`
	}
	if err := decodeNumbers(content, &doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	rows := doc.Rows
	if rows == nil {
		rows = doc.Data
	}
	t := &Table{Columns: doc.Columns}
	for _, r := range rows {
		if keepRow(t, opt) {
			t.Rows = append(t.Rows, r)
		}
	}
	return t, nil
}

func decodeNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// decodeOrderedObject decodes a JSON object keeping its key order.
func decodeOrderedObject(raw []byte) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("expected object")
	}
	var keys []string
	vals := map[string]any{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected key token %v", kt)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, seen := vals[key]; !seen {
			keys = append(keys, key)
		}
		vals[key] = v
	}
	return keys, vals, nil
}
