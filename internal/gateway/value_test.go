package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsToRecords_Postgres(t *testing.T) {
	id := [16]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef, 0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	records := rowsToRecords([]string{"id", "blob", "n"}, [][]any{
		{id, []byte{0xde, 0xad}, int64(3)},
	}, pgValue)

	got, err := toValueTree(records)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{
		"id":   "01234567-89ab-cdef-0123-456789abcdef",
		"blob": `\xdead`,
		"n":    json.Number("3"),
	}}, got)
}

func TestRowsToRecords_SQLiteBlobStaysHex(t *testing.T) {
	blob := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}

	got, err := toValueTree(rowsToRecords([]string{"payload"}, [][]any{{blob}}, blobValue))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{
		"payload": `\x00112233445566778899aabbccddeeff`,
	}}, got)
}

func TestDecodeValue(t *testing.T) {
	got, err := decodeValue([]byte(`{"big": 12345678901234567890, "f": 1.50, "list": [true, null]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"big":  json.Number("12345678901234567890"),
		"f":    json.Number("1.50"),
		"list": []any{true, nil},
	}, got)

	got, err = decodeValue(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = decodeValue([]byte(`{`))
	require.Error(t, err)
}
