package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `  [{"title":"a"}]  `, `[{"title":"a"}]`},
		{"json tag", "```json\n[{\"title\":\"a\"}]\n```", `[{"title":"a"}]`},
		{"bare fence", "```\n[]\n```", `[]`},
		{"single line", "```[1]```", `[1]`},
		{"unterminated", "```json\n[1]", "```json\n[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestParseRawRecordsArray(t *testing.T) {
	records, skipped, err := ParseRawRecords("```json\n[{\"title\":\"One\"},{\"title\":\"Two\",\"remoteOrOnline\":true}]\n```")
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, records, 2)
	assert.Equal(t, "Two", *records[1].Title)
	assert.True(t, *records[1].RemoteOrOnline)
}

func TestParseRawRecordsObjectUsesFirstArrayKey(t *testing.T) {
	body := `{"meta": {"count": 1}, "zResults": [{"title": "First"}], "aResults": [{"title": "Second"}]}`

	records, _, err := ParseRawRecords(body)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "First", *records[0].Title)
}

func TestParseRawRecordsSkipsNonObjects(t *testing.T) {
	records, skipped, err := ParseRawRecords(`[{"title":"Ok"}, "junk", 4, null, ["nested"]]`)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 4, skipped)
}

func TestParseRawRecordsFailures(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", "   "},
		{"not json", "Here are some opportunities you might like!"},
		{"scalar", `"just a string"`},
		{"object without array", `{"title": "lonely"}`},
		{"trailing data", `[{"title":"a"}] and more`},
		{"truncated", `[{"title":"a"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRawRecords(tt.in)
			require.Error(t, err)
			assert.Equal(t, KindParse, KindOf(err))
		})
	}
}
