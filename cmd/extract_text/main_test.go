package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader("ALFAMART\nRoti Tawar 12.500\nTOTAL 12.500\n"), &out, false))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Alfamart", got["merchant_name"])
	assert.EqualValues(t, 12500, got["total"])
	items, ok := got["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "Roti Tawar", items[0].(map[string]any)["name"])
}

func TestRunEmptyInput(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader(""), &out, true))
	assert.Contains(t, out.String(), `"items": []`)
	assert.Contains(t, out.String(), `"total": null`)
}
