package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "rfc3339", raw: `"2025-03-01T10:20:30Z"`, want: time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{name: "offset", raw: `"2025-03-01T12:20:30+02:00"`, want: time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{name: "zoneless micros", raw: `"2025-03-01T10:20:30.123000"`, want: time.Date(2025, 3, 1, 10, 20, 30, 123000000, time.UTC)},
		{name: "zoneless seconds", raw: `"2025-03-01T10:20:30"`, want: time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{name: "null", raw: `null`},
		{name: "empty", raw: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_RejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12`), &ts))
}

func TestDocument_DecodesNaiveBackendRecord(t *testing.T) {
	raw := `{"id":"d1","original_filename":"a.pdf","status":"completed","created_at":"2025-03-01T10:20:30.123000","updated_at":null}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, 2025, doc.CreatedAt.Year())
	assert.Equal(t, time.UTC, doc.CreatedAt.Location())
	assert.True(t, doc.UpdatedAt.IsZero())
}

func TestTimestamp_MarshalZeroIsNull(t *testing.T) {
	out, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(out))

	out, err = json.Marshal(Timestamp{Time: time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)})
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-03-01T10:20:30Z"`, string(out))
}
