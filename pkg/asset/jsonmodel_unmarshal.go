package asset

import "encoding/json"

// UnmarshalJSON accepts either a single variant object or a weighted array
// of them, keeping only the first.
func (v *variantEntriesJSON) UnmarshalJSON(data []byte) error {
	var single applyJSON
	if err := json.Unmarshal(data, &single); err == nil && single.Model != "" {
		v.first = single
		return nil
	}
	var list []applyJSON
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		v.first = list[0]
	}
	return nil
}

// fromRaw decodes multipartEntryJSON.Apply: vanilla allows "apply" to be
// either a single object or a weighted array (same "pick the first" rule).
func (a *applyJSON) fromRaw(raw json.RawMessage) error {
	var single applyJSON
	if err := json.Unmarshal(raw, &single); err == nil && single.Model != "" {
		*a = single
		return nil
	}
	var list []applyJSON
	if err := json.Unmarshal(raw, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		*a = list[0]
	}
	return nil
}

func (m *multipartEntryJSON) UnmarshalJSON(data []byte) error {
	var raw struct {
		When  map[string]interface{} `json:"when"`
		Apply json.RawMessage        `json:"apply"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.When = raw.When
	return m.Apply.fromRaw(raw.Apply)
}
