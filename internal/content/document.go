// Package content models the nested website-content document that a
// localization job operates on: an arbitrary tree of mappings and lists
// whose translatable leaves are mappings carrying exactly a "type" tag and
// a "value" string. The package provides deterministic traversal with
// structural path addressing, deep copying, and path-based write-back of
// translated values.
package content

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Document is a nested content tree as decoded from JSON.
type Document map[string]any

// Leaf returns the type tag and value of node when it is a translatable
// leaf: a mapping containing both a "type" and a "value" string. A mapping
// with only one of the two fields is a branch and gets recursed into; the
// walker reports it as a structural warning so the permissive rule stays
// visible.
func Leaf(node map[string]any) (typ, value string, ok bool) {
	t, hasType := node["type"].(string)
	v, hasValue := node["value"].(string)
	if hasType && hasValue {
		return t, v, true
	}
	return "", "", false
}

// partial reports whether node carries exactly one of the two leaf fields.
func partial(node map[string]any) bool {
	_, hasType := node["type"].(string)
	_, hasValue := node["value"].(string)
	return hasType != hasValue
}

// Walk visits every translatable leaf of doc depth-first, calling visit with
// the leaf's structural path (dot-separated keys, bracketed list indices)
// and the leaf mapping itself. Map keys are visited in sorted order, so the
// traversal is a pure function of the document: repeated walks over the same
// document yield identical paths in identical order.
//
// The returned slice holds one warning per partial node encountered (a
// mapping with "type" but no "value", or vice versa); such nodes are treated
// as branches and recursed into.
func Walk(doc Document, visit func(path string, leaf map[string]any)) []string {
	var warnings []string
	walkNode(map[string]any(doc), "", visit, &warnings)
	return warnings
}

func walkNode(node any, path string, visit func(string, map[string]any), warnings *[]string) {
	switch n := node.(type) {
	case Document:
		walkNode(map[string]any(n), path, visit, warnings)
	case map[string]any:
		if _, _, ok := Leaf(n); ok {
			visit(path, n)
			return
		}
		if partial(n) {
			*warnings = append(*warnings, fmt.Sprintf("partial leaf at %q treated as branch", path))
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return naturalLess(keys[i], keys[j]) })
		for _, k := range keys {
			walkNode(n[k], joinPath(path, k), visit, warnings)
		}
	case []any:
		for i, elem := range n {
			walkNode(elem, fmt.Sprintf("%s[%d]", path, i), visit, warnings)
		}
	}
}

// naturalLess orders keys the way a page reads: runs of digits compare by
// numeric value, so item_2 walks before item_10. Purely lexicographic order
// would interleave them and scramble prompt context for large sections.
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			da, ra := takeDigits(a)
			db, rb := takeDigits(b)
			ta := strings.TrimLeft(da, "0")
			tb := strings.TrimLeft(db, "0")
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			if da != db {
				// Same numeric value, different zero padding. Keep a total
				// order so the walk stays deterministic.
				return da < db
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func takeDigits(s string) (run, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// ParentPath returns the path of the mapping that contains the node at path,
// or "" for a top-level node.
func ParentPath(path string) string {
	if i := strings.LastIndexAny(path, ".["); i > 0 {
		return strings.TrimSuffix(path[:i], ".")
	}
	return ""
}

// Clone returns a deep copy of doc. The copy shares no mutable state with
// the original; translations are always written to a clone so the caller's
// document is never mutated.
func Clone(doc Document) Document {
	return Document(cloneValue(map[string]any(doc)).(map[string]any))
}

func cloneValue(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, e := range n {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// pathStep is one segment of a parsed structural path: a map key or a list
// index.
type pathStep struct {
	key   string
	index int
	list  bool
}

func parsePath(path string) ([]pathStep, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	var steps []pathStep
	for _, seg := range strings.Split(path, ".") {
		for seg != "" {
			open := strings.IndexByte(seg, '[')
			if open == -1 {
				steps = append(steps, pathStep{key: seg})
				break
			}
			if open > 0 {
				steps = append(steps, pathStep{key: seg[:open]})
			}
			closing := strings.IndexByte(seg, ']')
			if closing < open {
				return nil, fmt.Errorf("malformed path segment %q", seg)
			}
			idx, err := strconv.Atoi(seg[open+1 : closing])
			if err != nil {
				return nil, fmt.Errorf("malformed list index in %q: %w", seg, err)
			}
			steps = append(steps, pathStep{index: idx, list: true})
			seg = seg[closing+1:]
		}
	}
	return steps, nil
}

// SetValue overwrites the "value" field of the translatable leaf at path
// with text. It returns an error when the path does not resolve to a leaf,
// which means structural drift between segmentation and reassembly. The caller decides
// whether that error is fatal; the reassembler treats it as fail-open.
func SetValue(doc Document, path, text string) error {
	steps, err := parsePath(path)
	if err != nil {
		return err
	}
	var node any = map[string]any(doc)
	for _, st := range steps {
		switch {
		case st.list:
			list, ok := node.([]any)
			if !ok {
				return fmt.Errorf("path %q: expected list", path)
			}
			if st.index < 0 || st.index >= len(list) {
				return fmt.Errorf("path %q: index %d out of range", path, st.index)
			}
			node = list[st.index]
		default:
			m, ok := node.(map[string]any)
			if !ok {
				return fmt.Errorf("path %q: expected mapping at %q", path, st.key)
			}
			child, exists := m[st.key]
			if !exists {
				return fmt.Errorf("path %q: key %q not found", path, st.key)
			}
			node = child
		}
	}
	leaf, ok := node.(map[string]any)
	if !ok {
		return fmt.Errorf("path %q: not a leaf", path)
	}
	if _, _, isLeaf := Leaf(leaf); !isLeaf {
		return fmt.Errorf("path %q: node has no type/value pair", path)
	}
	leaf["value"] = text
	return nil
}
