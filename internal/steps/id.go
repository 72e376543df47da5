package steps

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies one generation step. The zero value means "no step".
type ID int

const (
	None ID = iota
	YT1
	YT2
	YT3
	YT4
	YT5
	YT6
	YT7
	YT8
	YT9
	YT10
	YT11
	YT12
	YT13
)

// Count is the number of steps in the catalog.
const Count = int(YT13)

const idPrefix = "YT"

// String renders the wire identifier ("YT1".."YT13"); None renders empty.
func (id ID) String() string {
	if id <= None {
		return ""
	}
	return idPrefix + strconv.Itoa(int(id))
}

// Valid reports whether id names a catalog step.
func (id ID) Valid() bool {
	return id >= YT1 && id <= YT13
}

// Next returns the step after id, or None after the last step.
func (id ID) Next() ID {
	if id >= YT13 {
		return None
	}
	return id + 1
}

// Parse accepts "YT3", "yt3" or "3".
func Parse(value string) (ID, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	trimmed = strings.TrimPrefix(trimmed, idPrefix)
	n, err := strconv.Atoi(trimmed)
	if err != nil || !ID(n).Valid() {
		return None, fmt.Errorf("unknown step %q", value)
	}
	return ID(n), nil
}

// MarshalJSON encodes None as null and other steps as their wire identifier.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == None {
		return []byte("null"), nil
	}
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts null or a step identifier string.
func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*id = None
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode step id: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*id = None
		return nil
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
