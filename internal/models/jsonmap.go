package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONMap is an open key-value map stored as jsonb. It carries the free-form
// hospital capability set. On upsert conflicts the whole map is replaced only
// when the incoming value is non-null (COALESCE in the upsert), so a report
// without capabilities preserves the stored ones.
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}

	if len(data) == 0 {
		*m = nil
		return nil
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return errors.New("invalid JSON in capabilities column: " + err.Error())
	}
	*m = out
	return nil
}
