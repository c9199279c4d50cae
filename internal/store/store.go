// Package store holds the SQL the workers run against the advocacy database.
package store

import (
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("NOT_FOUND")

func decodeList(raw []byte) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
