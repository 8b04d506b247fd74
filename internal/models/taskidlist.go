package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TaskIDList is a set of task ids persisted as a JSON array in a single text
// column. A nil list stores NULL.
type TaskIDList []uint

func (l TaskIDList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshaling task id list: %w", err)
	}
	return string(b), nil
}

// Scan tolerates garbage in the column: anything unparseable reads back as an
// empty list instead of failing the whole row read, so a reversal on a row
// with a corrupted list degrades to a no-op rather than an error.
func (l *TaskIDList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		*l = TaskIDList{}
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		*l = TaskIDList{}
		return nil
	}
	*l = ids
	return nil
}

func (l TaskIDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}
