package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudEventRoundTrip(t *testing.T) {
	ce, err := NewCloudEvent("service-tickets", "ticket.issued", map[string]string{"ticket_code": "TICKET_1_abcdef"})
	require.NoError(t, err)
	ce.Subject = "ev-1"
	assert.Equal(t, "1.0", ce.SpecVersion)
	assert.Equal(t, "application/json", ce.DataContentType)
	assert.NotEmpty(t, ce.ID)

	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	parsed, err := ParseCloudEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, ce.ID, parsed.ID)
	assert.Equal(t, "ev-1", parsed.Subject)

	var data map[string]string
	require.NoError(t, parsed.ParseData(&data))
	assert.Equal(t, "TICKET_1_abcdef", data["ticket_code"])
}

func TestParseCloudEvent_Invalid(t *testing.T) {
	_, err := ParseCloudEvent([]byte(`{"id":"1"}`))
	assert.ErrorContains(t, err, "missing type")

	_, err = ParseCloudEvent([]byte(`{`))
	assert.Error(t, err)
}
