package repository

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorruptRecord means a stored value could not be decoded back into
// its in-memory shape. This is a data-integrity fault, never a user
// error, and must surface loudly instead of degrading to an empty
// collection.
var ErrCorruptRecord = errors.New("corrupt stored record")

// FieldCodec normalizes the two dual-representation fields (note tags
// and event metadata) between their in-memory shapes and whatever the
// active backend can store. It is chosen once at startup; nothing above
// the repository layer ever branches on the backend.
type FieldCodec interface {
	EncodeTags(tags []string) (any, error)
	DecodeTags(raw any) ([]string, error)
	EncodeMetadata(md map[string]any) (any, error)
	DecodeMetadata(raw any) (map[string]any, error)

	// StructuredContainment reports whether the backend can evaluate
	// tag-containment inside the query itself.
	StructuredContainment() bool
}

// NativeCodec targets a backend with native array and JSON column
// types (postgres: text[] and jsonb). Tags pass through untouched;
// metadata travels as JSON bytes.
type NativeCodec struct{}

func (NativeCodec) EncodeTags(tags []string) (any, error) {
	if tags == nil {
		return []string{}, nil
	}
	return tags, nil
}

func (NativeCodec) DecodeTags(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: tags column holds %T, want []string", ErrCorruptRecord, raw)
	}
}

func (NativeCodec) EncodeMetadata(md map[string]any) (any, error) {
	if len(md) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return b, nil
}

func (NativeCodec) DecodeMetadata(raw any) (map[string]any, error) {
	b, err := rawBytes(raw)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	var md map[string]any
	if err := json.Unmarshal(b, &md); err != nil {
		return nil, fmt.Errorf("%w: metadata is not valid JSON: %v", ErrCorruptRecord, err)
	}
	return md, nil
}

func (NativeCodec) StructuredContainment() bool { return true }

// TextCodec targets a backend without native array/JSON columns
// (sqlite): both fields are stored as JSON text and must round-trip
// exactly.
type TextCodec struct{}

func (TextCodec) EncodeTags(tags []string) (any, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func (TextCodec) DecodeTags(raw any) ([]string, error) {
	b, err := rawBytes(raw)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		return nil, fmt.Errorf("%w: tags blob is not a JSON string array: %v", ErrCorruptRecord, err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func (TextCodec) EncodeMetadata(md map[string]any) (any, error) {
	if len(md) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(b), nil
}

func (TextCodec) DecodeMetadata(raw any) (map[string]any, error) {
	b, err := rawBytes(raw)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	var md map[string]any
	if err := json.Unmarshal(b, &md); err != nil {
		return nil, fmt.Errorf("%w: metadata blob is not a JSON object: %v", ErrCorruptRecord, err)
	}
	return md, nil
}

func (TextCodec) StructuredContainment() bool { return false }

func rawBytes(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("%w: stored value holds %T, want text", ErrCorruptRecord, raw)
	}
}

// NormalizeTags deduplicates while preserving first-occurrence order,
// the display order users expect.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
