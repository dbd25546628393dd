package storage

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/weeklit/internal/models"
)

// EncodeHistory serializes a history column; nil is stored as an empty object
func EncodeHistory(h models.History) (string, error) {
	if h == nil {
		h = models.History{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return string(data), nil
}

// DecodeHistory parses a history column
func DecodeHistory(raw []byte) (models.History, error) {
	h := models.History{}
	if len(raw) == 0 {
		return h, nil
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return h, nil
}
