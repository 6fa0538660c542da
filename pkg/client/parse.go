package client

import (
	"encoding/json"
	"fmt"
)

// MalformedError reports a preference response that matched none of the
// known envelope shapes. The raw payload is kept so schema drift fails
// loudly in tests instead of coercing to an empty list.
type MalformedError struct {
	Raw json.RawMessage
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed preferences response: %s", truncate(e.Raw, 200))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// parsePreferences accepts the three shapes the server has historically
// produced ({"data":{"preferences":[...]}}, {"preferences":[...]}, and a
// bare array) and rejects everything else.
func parsePreferences(raw json.RawMessage) ([]Preference, error) {
	var envelope struct {
		Data *struct {
			Preferences *[]Preference `json:"preferences"`
		} `json:"data"`
		Preferences *[]Preference `json:"preferences"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Data != nil && envelope.Data.Preferences != nil {
			return *envelope.Data.Preferences, nil
		}
		if envelope.Preferences != nil {
			return *envelope.Preferences, nil
		}
	}

	var bare []Preference
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	return nil, &MalformedError{Raw: raw}
}
