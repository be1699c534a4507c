package jsonx

import "fmt"

// RawMessage handles NULL json/jsonb fields from DB while marshaling
// transparently as the stored document.
type RawMessage []byte

func (j *RawMessage) Scan(src any) error {
	if src == nil {
		*j = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", src)
	}
	return nil
}

func (j RawMessage) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *RawMessage) UnmarshalJSON(data []byte) error {
	if j == nil {
		return fmt.Errorf("jsonx.RawMessage: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[0:0], data...)
	return nil
}
