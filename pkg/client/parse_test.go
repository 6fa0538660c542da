package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreferencesNestedEnvelope(t *testing.T) {
	raw := json.RawMessage(`{"data":{"preferences":[{"category":"project","channels":["email"],"frequency":"immediate","is_active":true}]}}`)
	prefs, err := parsePreferences(raw)
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	assert.Equal(t, "project", prefs[0].Category)
	assert.Equal(t, []string{"email"}, prefs[0].Channels)
}

func TestParsePreferencesFlatEnvelope(t *testing.T) {
	raw := json.RawMessage(`{"preferences":[{"category":"hr","channels":[],"frequency":"never","is_active":true}]}`)
	prefs, err := parsePreferences(raw)
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	assert.Equal(t, "hr", prefs[0].Category)
	assert.Equal(t, "never", prefs[0].Frequency)
}

func TestParsePreferencesBareArray(t *testing.T) {
	raw := json.RawMessage(`[{"category":"system"},{"category":"finance"}]`)
	prefs, err := parsePreferences(raw)
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, "finance", prefs[1].Category)
}

func TestParsePreferencesEmptyList(t *testing.T) {
	prefs, err := parsePreferences(json.RawMessage(`{"data":{"preferences":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, prefs)
}

func TestParsePreferencesRejectsUnknownShapes(t *testing.T) {
	cases := map[string]string{
		"object without keys": `{}`,
		"wrong key":           `{"data":{"items":[]}}`,
		"scalar":              `42`,
		"string":              `"preferences"`,
		"null data":           `{"data":null}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parsePreferences(json.RawMessage(raw))
			var malformed *MalformedError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, raw, string(malformed.Raw))
		})
	}
}

func TestMalformedErrorTruncatesPayload(t *testing.T) {
	raw := make([]byte, 1000)
	for i := range raw {
		raw[i] = 'x'
	}
	err := &MalformedError{Raw: raw}
	assert.Less(t, len(err.Error()), 300)
}
