// Package hydrate turns loosely typed configuration documents into structs.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Source identifies where a document came from in error messages.
type Source struct {
	Name    string
	Section string
}

func (s Source) String() string {
	if s.Section == "" {
		return s.Name
	}
	return s.Name + "#" + s.Section
}

// PreHook rewrites the raw document before it is decoded.
type PreHook func(Source, map[string]any) (map[string]any, error)

// PostHook adjusts or validates the decoded value.
type PostHook[T any] func(Source, *T) error

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts documents into T. Values missing from the document keep
// whatever the base value held.
type Decoder[T any] struct {
	base      func() T
	preHooks  []PreHook
	postHooks []PostHook[T]
	strict    bool
}

// WithBase seeds every decode with the value returned by base.
func WithBase[T any](base func() T) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.base = base
	}
}

func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields rejects documents carrying unknown keys.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strict = true
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// DecodeYAML parses data as a YAML mapping and decodes it.
func (d *Decoder[T]) DecodeYAML(src Source, data []byte) (T, error) {
	var zero T
	doc := map[string]any{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return zero, fmt.Errorf("hydrate: parse %s: %w", src, err)
		}
	}
	return d.Decode(src, doc)
}

// Decode applies the pre-hooks, decodes doc over the base value and runs the
// post-hooks.
func (d *Decoder[T]) Decode(src Source, doc map[string]any) (T, error) {
	var zero T
	if doc == nil {
		return zero, fmt.Errorf("hydrate: document is nil for %s", src)
	}

	current, err := normalize(doc)
	if err != nil {
		return zero, fmt.Errorf("hydrate: normalise %s: %w", src, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(src, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", src, err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	if d.base != nil {
		result = d.base()
	}
	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal %s: %w", src, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if d.strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %s: %w", src, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(src, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", src, err)
		}
	}
	return result, nil
}

// normalize deep-copies doc, converting the map[any]any nodes some YAML
// producers emit into map[string]any.
func normalize(doc map[string]any) (map[string]any, error) {
	out, err := normalizeValue(doc)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func normalizeValue(v any) (any, error) {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			n, err := normalizeValue(value)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			name, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", key)
			}
			n, err := normalizeValue(value)
			if err != nil {
				return nil, err
			}
			out[name] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			n, err := normalizeValue(value)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}
