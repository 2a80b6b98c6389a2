package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadLetterJSON_TextRaw(t *testing.T) {
	dl := DeadLetter{ID: "dl-1", Reason: "MALFORMED_LENGTH", Raw: []byte("016464")}

	body, err := json.Marshal(dl)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"raw":"016464"`)
	assert.Contains(t, string(body), `"rawEncoding":"text"`)

	var back DeadLetter
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Equal(t, dl.Raw, back.Raw)
	assert.Equal(t, "dl-1", back.ID)
}

func TestDeadLetterJSON_BinaryRaw(t *testing.T) {
	dl := DeadLetter{ID: "dl-2", Raw: []byte{0xff, 0xfe, 0x00}}

	body, err := json.Marshal(dl)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"rawEncoding":"base64"`)

	var back DeadLetter
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Equal(t, dl.Raw, back.Raw)
}
