package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/tally/internal/check"
	"github.com/roach88/tally/internal/digest"
)

type storedOptions struct {
	Key        string `json:"key"`
	SummaryKey string `json:"summary_key"`
	Count      string `json:"count"`
	Mode       string `json:"mode"`
}

// marshalOptions converts check options to canonical JSON TEXT for storage.
func marshalOptions(opts check.Options) (string, error) {
	data, err := digest.MarshalCanonical(map[string]any{
		"key":         opts.Key,
		"summary_key": opts.SummaryKey,
		"count":       opts.Count,
		"mode":        string(opts.Mode),
	})
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}
	return string(data), nil
}

// unmarshalOptions parses options JSON TEXT.
func unmarshalOptions(data string) (check.Options, error) {
	if data == "" || data == "{}" {
		return check.Options{}, nil
	}
	var so storedOptions
	if err := json.Unmarshal([]byte(data), &so); err != nil {
		return check.Options{}, fmt.Errorf("unmarshal options: %w", err)
	}
	return check.Options{
		Key:        so.Key,
		SummaryKey: so.SummaryKey,
		Count:      so.Count,
		Mode:       check.Mode(so.Mode),
	}, nil
}
