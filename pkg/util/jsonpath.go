package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Extraction is the outcome of walking a dotted path through a decoded JSON
// document. When Remaining is empty the path resolved fully; otherwise Value
// is the deepest node reached and Remaining starts at the first segment that
// could not be followed.
type Extraction struct {
	Value     any
	Remaining []string
}

// Resolved reports whether every path segment was followed.
func (e Extraction) Resolved() bool { return len(e.Remaining) == 0 }

// Extract walks doc along dottedPath. Objects are indexed by key and arrays
// by decimal position. A missing segment is not an error: the walk stops and
// the node reached so far is returned. An empty path returns doc unchanged.
func Extract(doc any, dottedPath string) Extraction {
	if dottedPath == "" {
		return Extraction{Value: doc}
	}
	segments := strings.Split(dottedPath, ".")
	cur := doc
	for i, seg := range segments {
		next, ok := child(cur, seg)
		if !ok {
			return Extraction{Value: cur, Remaining: segments[i:]}
		}
		cur = next
	}
	return Extraction{Value: cur}
}

// ExtractValue is Extract collapsed to its best-effort value.
func ExtractValue(doc any, dottedPath string) any {
	return Extract(doc, dottedPath).Value
}

func child(node any, seg string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		v, ok := n[seg]
		return v, ok
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(n) {
			return nil, false
		}
		return n[idx], true
	default:
		return nil, false
	}
}

// DecodeDocument decodes a JSON document keeping numbers as json.Number so
// re-encoding reproduces them exactly.
func DecodeDocument(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode json: trailing data after document")
	}
	return doc, nil
}

// Float converts a decoded JSON scalar into a float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Int converts a decoded JSON scalar into an int64, truncating fractions.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		return int64(f), err == nil
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
