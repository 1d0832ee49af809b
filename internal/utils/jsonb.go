package utils

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type JSONMap map[string]any

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil // Store NULL if the map is nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("JSONMap: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, j)
}

// UUIDSlice stores an ordered list of ids as a JSONB array.
type UUIDSlice []uuid.UUID

func (s UUIDSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *UUIDSlice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("UUIDSlice: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, s)
}

// StringSlice stores a list of strings as a JSONB array.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("StringSlice: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, s)
}

// Float64Slice stores a list of amounts as a JSONB array.
type Float64Slice []float64

func (s Float64Slice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *Float64Slice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("Float64Slice: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, s)
}
