package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Store is a path-addressed document store.
//
// Paths alternate collection and document segments: "users/u1/library/saved"
// addresses document "saved" inside collection "users/u1/library".
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the document at path or ErrNotFound.
	Get(ctx context.Context, path string) (*Document, error)

	// Set creates the document when absent, otherwise merges the given
	// top-level fields into it.
	Set(ctx context.Context, path string, fields map[string]any) error

	// Create writes a new document at path and fails with ErrAlreadyExists
	// when one is already stored there.
	Create(ctx context.Context, path string, fields map[string]any) error

	// Add creates a new document with a generated id inside collection and
	// returns its path.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)

	// ArrayUnion adds values to an array field, skipping values that are
	// already present. The document is created when absent.
	ArrayUnion(ctx context.Context, path, field string, values ...any) error

	// ArrayRemove removes values from an array field. Missing documents and
	// missing values are ignored.
	ArrayRemove(ctx context.Context, path, field string, values ...any) error

	// Query returns the documents of collection matching all filters,
	// ordered by path ascending.
	Query(ctx context.Context, collection string, filters ...Filter) ([]*Document, error)

	// Delete removes the document at path. Missing documents are ignored.
	Delete(ctx context.Context, path string) error

	// Watch emits the current state of the document (when it exists) and
	// every later change. The channel is closed when ctx is done.
	Watch(ctx context.Context, path string) (<-chan *Document, error)
}

// Document is a snapshot of a stored document.
// Version starts at 1 and grows by one with every write to the document.
type Document struct {
	Path      string
	Fields    map[string]any
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ID returns the last path segment.
func (d *Document) ID() string {
	_, id := Split(d.Path)
	return id
}

// Decode unmarshals the document fields into v using their JSON representation.
func (d *Document) Decode(v any) error {
	raw, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// Lookup walks nested maps and arrays. Numeric keys index into arrays.
func (d *Document) Lookup(keys ...string) (any, bool) {
	return lookup(d.Fields, keys...)
}

// String returns the string found at the given key path.
func (d *Document) String(keys ...string) string {
	v, ok := d.Lookup(keys...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Strings returns an array field as a string slice, skipping non-string items.
func (d *Document) Strings(field string) []string {
	v, ok := d.Fields[field]
	if !ok || v == nil {
		return []string{}
	}
	switch vals := v.(type) {
	case []string:
		return append([]string{}, vals...)
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// Op is a filter comparison operator.
type Op string

const (
	OpEqual Op = "=="
	OpIn    Op = "in"
)

// Filter restricts query results by a field value.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Equal matches documents whose field equals value.
func Equal(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// In matches documents whose field equals any of values.
func In(field string, values ...any) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}

func (f Filter) match(fields map[string]any) bool {
	v, ok := lookup(fields, strings.Split(f.Field, ".")...)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEqual:
		return reflect.DeepEqual(v, f.Value)
	case OpIn:
		vals, _ := f.Value.([]any)
		for _, candidate := range vals {
			if reflect.DeepEqual(v, candidate) {
				return true
			}
		}
	}
	return false
}

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split returns the parent collection path and the document id of a document path.
func Split(path string) (collection, id string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// ValidateDocumentPath reports whether path addresses a document.
func ValidateDocumentPath(path string) error {
	segments := strings.Split(path, "/")
	if len(segments)%2 != 0 || hasEmpty(segments) {
		return fmt.Errorf("%w: %q is not a document path", ErrInvalidPath, path)
	}
	return nil
}

// ValidateCollectionPath reports whether path addresses a collection.
func ValidateCollectionPath(path string) error {
	segments := strings.Split(path, "/")
	if len(segments)%2 != 1 || hasEmpty(segments) {
		return fmt.Errorf("%w: %q is not a collection path", ErrInvalidPath, path)
	}
	return nil
}

func hasEmpty(segments []string) bool {
	for _, s := range segments {
		if s == "" {
			return true
		}
	}
	return false
}

func lookup(v any, keys ...string) (any, bool) {
	cur := v
	for _, key := range keys {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[key]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			var idx int
			if _, err := fmt.Sscanf(key, "%d", &idx); err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// cloneValue deep-copies maps and slices so stored state never aliases caller data.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneFields(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneFields(item)
		}
		return out
	default:
		return val
	}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}
