package codec_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/codec"
)

func TestExportMarkdown(t *testing.T) {
	data, err := codec.ExportMarkdown(sampleSnapshot())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "---\nid: p-1\nworkspace: Personal\ntitle: Plans\n")
	assert.Contains(t, out, "template: meeting-notes\n")
	assert.Contains(t, out, "# Plans\n\n## Q2\n  > nested\n    - [ ] deep\n```\nfmt.Println()\n```\n")
	assert.Contains(t, out, "# Empty\n\n")
}

func TestExportCSV(t *testing.T) {
	data, err := codec.ExportCSV(sampleSnapshot())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"workspace", "page", "block", "type", "depth", "content", "comments"}, records[0])
	assert.Equal(t, []string{"Personal", "Plans", "b-1-1", "quote", "1", "nested", "2"}, records[2])
	assert.Equal(t, "2", records[3][4])
}

func TestExportJSON(t *testing.T) {
	data, err := codec.ExportJSON(sampleSnapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ws-1", decoded["currentWorkspace"])
}

func TestExporterFor(t *testing.T) {
	snap := sampleSnapshot()
	render := func(path string) string {
		data, err := codec.ExporterFor(path).Export(snap)
		require.NoError(t, err)
		return string(data)
	}

	md, _ := codec.ExportMarkdown(snap)
	csvOut, _ := codec.ExportCSV(snap)
	yml, _ := codec.ExportYAML(snap)

	assert.Equal(t, string(md), render("notes.MD"))
	assert.Equal(t, string(csvOut), render("csv"))
	assert.Equal(t, string(yml), render(""))
	assert.Equal(t, string(yml), render("notes.txt"))
}
