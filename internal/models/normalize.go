package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// The agent pipeline emits risk factors and action items in several shapes:
// a bare string, or an object whose keys vary by agent ("factor" vs "action"
// vs "title", "impact" vs "description" vs "detail"). Normalization happens
// once, at the decode boundary; the rest of the code only ever sees the
// canonical structs below.

// RiskFactor is the canonical shape of one risk factor.
type RiskFactor struct {
	Factor string `json:"factor"`
	Impact string `json:"impact,omitempty"`
}

// ActionItem is the canonical shape of one recommended action.
type ActionItem struct {
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
}

// normalizeEntry maps any accepted input shape into (label, detail).
// labelKeys and detailKeys are tried in order against object input.
func normalizeEntry(raw json.RawMessage, labelKeys, detailKeys []string) (string, string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, "", nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", "", fmt.Errorf("unsupported entry shape: %s", string(raw))
	}

	pick := func(keys []string) string {
		for _, k := range keys {
			if v, ok := obj[k]; ok {
				if sv, ok := v.(string); ok && sv != "" {
					return sv
				}
			}
		}
		return ""
	}

	return pick(labelKeys), pick(detailKeys), nil
}

// RiskFactorList decodes a JSON array of risk factors in any accepted shape.
type RiskFactorList []RiskFactor

// UnmarshalJSON implements json.Unmarshaler with shape normalization.
func (l *RiskFactorList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(RiskFactorList, 0, len(raws))
	for _, raw := range raws {
		label, detail, err := normalizeEntry(raw,
			[]string{"factor", "name", "title"},
			[]string{"impact", "description", "detail"})
		if err != nil {
			return err
		}
		out = append(out, RiskFactor{Factor: label, Impact: detail})
	}
	*l = out
	return nil
}

// Value implements driver.Valuer, storing the canonical JSON form.
func (l RiskFactorList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]RiskFactor(l))
	return string(b), err
}

// Scan implements sql.Scanner, accepting any of the tolerated input shapes.
func (l *RiskFactorList) Scan(value any) error {
	return scanJSON(value, l)
}

// ActionItemList decodes a JSON array of action items in any accepted shape.
type ActionItemList []ActionItem

// UnmarshalJSON implements json.Unmarshaler with shape normalization.
func (l *ActionItemList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(ActionItemList, 0, len(raws))
	for _, raw := range raws {
		label, detail, err := normalizeEntry(raw,
			[]string{"action", "title", "name"},
			[]string{"description", "impact", "detail"})
		if err != nil {
			return err
		}
		out = append(out, ActionItem{Action: label, Description: detail})
	}
	*l = out
	return nil
}

// Value implements driver.Valuer, storing the canonical JSON form.
func (l ActionItemList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]ActionItem(l))
	return string(b), err
}

// Scan implements sql.Scanner, accepting any of the tolerated input shapes.
func (l *ActionItemList) Scan(value any) error {
	return scanJSON(value, l)
}

func scanJSON(value any, dest any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
