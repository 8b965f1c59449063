package client

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vaintrub/hierarchy-go/models"
)

// envelope is the service's list-style response wrapper. Value is nil when
// the field is absent or null.
type envelope struct {
	Value *[]json.RawMessage `json:"value"`
}

func decodeEnvelope(body []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

// ExtractRootValue returns the first record of the envelope's value array.
// A missing, null or empty value array is logged and yields nil without an
// error; only malformed JSON is an error.
//
// An empty array is treated like a missing one. Earlier clients
// of this service failed with an index error on an empty array while
// tolerating a missing field; GetRoot relies on nil meaning "no root yet" in
// both cases.
func ExtractRootValue(body []byte) (*models.HierarchyNode, error) {
	return extractRootValue(body, slog.Default())
}

// ExtractRootID returns the Id of the envelope's first record, with the same
// absent-on-missing behaviour as ExtractRootValue.
func ExtractRootID(body []byte) (string, error) {
	return extractRootID(body, slog.Default())
}

// ExtractAllValues returns every record of the envelope's value array in
// order. Unlike ExtractRootValue, a missing value field is a *StructuralError.
func ExtractAllValues(body []byte) ([]models.HierarchyNode, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if env.Value == nil {
		return nil, &StructuralError{Field: "value"}
	}

	nodes := make([]models.HierarchyNode, 0, len(*env.Value))
	for i, raw := range *env.Value {
		var node models.HierarchyNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, fmt.Errorf("unmarshal value[%d]: %w", i, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func extractRootValue(body []byte, logger *slog.Logger) (*models.HierarchyNode, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if env.Value == nil || len(*env.Value) == 0 {
		logger.Warn("envelope has no root value", slog.Bool("value_present", env.Value != nil))
		return nil, nil
	}

	var node models.HierarchyNode
	if err := json.Unmarshal((*env.Value)[0], &node); err != nil {
		return nil, fmt.Errorf("unmarshal value[0]: %w", err)
	}
	return &node, nil
}

func extractRootID(body []byte, logger *slog.Logger) (string, error) {
	node, err := extractRootValue(body, logger)
	if err != nil || node == nil {
		return "", err
	}
	if node.ID == "" {
		logger.Warn("root value has no Id")
	}
	return node.ID, nil
}
