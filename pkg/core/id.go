package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// looseID decodes an identifier sent either as a JSON string or as a JSON number.
// Numbers keep their literal text, so 1 and "1" read as the same id.
type looseID string

func (id *looseID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = looseID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number, got %s", data)
	}
	*id = looseID(n.String())
	return nil
}

// UnmarshalJSON accepts string or numeric ids.
func (p *Playbook) UnmarshalJSON(data []byte) error {
	type plain Playbook
	aux := struct {
		*plain
		ID looseID `json:"_id"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ID = string(aux.ID)
	return nil
}

// UnmarshalJSON accepts string or numeric step and playbook ids.
func (s *Step) UnmarshalJSON(data []byte) error {
	type plain Step
	aux := struct {
		*plain
		ID         looseID `json:"id"`
		PlaybookID looseID `json:"pb_id"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.ID = string(aux.ID)
	s.PlaybookID = string(aux.PlaybookID)
	return nil
}
