// Package codec serializes application snapshots to and from a transportable
// string form. Clone is implemented as a round trip so the copy shares no
// memory with the original.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/quire/pkg/core"
)

// ErrMalformedSnapshot is returned when Deserialize is fed input the codec
// did not produce.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Serialize encodes a snapshot. Timestamps are written as RFC 3339 with
// nanosecond precision.
func Serialize(s core.Snapshot) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return string(data), nil
}

// Deserialize decodes a string produced by Serialize.
func Deserialize(raw string) (core.Snapshot, error) {
	var s core.Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return core.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return s, nil
}

// Clone returns a deep copy of s.
func Clone(s core.Snapshot) (core.Snapshot, error) {
	raw, err := Serialize(s)
	if err != nil {
		return core.Snapshot{}, err
	}
	return Deserialize(raw)
}

// ExportYAML renders a snapshot for humans (CLI export).
func ExportYAML(s core.Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to export snapshot: %w", err)
	}
	return data, nil
}
