package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const indexTemplate = `<!doctype html>
<html>
<script>
const rawData = [];
renderDashboard(rawData);
</script>
</html>`

func sampleRecords() []Record {
	days := 51
	return []Record{
		{
			Date:           "05/06/2019",
			Year:           2019,
			Device:         "Triage <AI> & Friends",
			Company:        "Acme $1 Medical",
			Panel:          "Radiology",
			Code:           "QAS",
			SubmissionID:   "K183268",
			SubmissionURL:  "https://example.gov/k183268",
			ReceivedDate:   "2020-01-10",
			DecisionDate:   "2020-03-01",
			DaysToDecision: &days,
		},
		{Date: "01/02/2021", Year: 2021, Device: "Flow Monitor"},
	}
}

func TestWriteEnrichedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "enriched.json")
	require.NoError(t, WriteEnrichedJSON(path, sampleRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	require.Contains(t, content, "\n  {")
	require.Contains(t, content, `"device": "Triage <AI> & Friends"`)
	require.Contains(t, content, `"days_to_decision": 51`)
	require.Contains(t, content, `"days_to_decision": null`)
	require.Contains(t, content, `"summary_url": ""`)

	var roundTrip []Record
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	require.Equal(t, sampleRecords(), roundTrip)
}

func TestUpdateIndexHTMLReplacesBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(indexTemplate), 0o600))

	require.NoError(t, UpdateIndexHTML(path, sampleRecords()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), `const rawData = [{"date":"05/06/2019"`)
	require.Contains(t, string(content), "renderDashboard(rawData);")
	// Dollar signs in field values must survive the splice untouched.
	require.Contains(t, string(content), "Acme $1 Medical")

	// A second run with identical data must not rewrite the file.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))
	require.NoError(t, UpdateIndexHTML(path, sampleRecords()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.WithinDuration(t, past, info.ModTime(), time.Second)
}

func TestUpdateIndexHTMLRequiresExactlyOneBlock(t *testing.T) {
	dir := t.TempDir()

	none := filepath.Join(dir, "none.html")
	require.NoError(t, os.WriteFile(none, []byte("<html></html>"), 0o600))
	err := UpdateIndexHTML(none, sampleRecords())
	require.Error(t, err)
	require.Contains(t, err.Error(), "found 0")

	double := filepath.Join(dir, "double.html")
	require.NoError(t, os.WriteFile(double,
		[]byte("const rawData = [];\nconst rawData = [];\n"), 0o600))
	err = UpdateIndexHTML(double, sampleRecords())
	require.Error(t, err)
	require.Contains(t, err.Error(), "found 2")
}

func TestLoadRecordsPrefersJSONArtifact(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "enriched.json")
	htmlPath := filepath.Join(dir, "index.html")

	require.NoError(t, WriteEnrichedJSON(jsonPath, sampleRecords()))
	require.NoError(t, os.WriteFile(htmlPath, []byte(indexTemplate), 0o600))

	records, err := LoadRecords(jsonPath, htmlPath)
	require.NoError(t, err)
	require.Equal(t, sampleRecords(), records)
}

func TestLoadRecordsFallsBackToEmbeddedBlock(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte(indexTemplate), 0o600))
	require.NoError(t, UpdateIndexHTML(htmlPath, sampleRecords()))

	records, err := LoadRecords(filepath.Join(dir, "missing.json"), htmlPath)
	require.NoError(t, err)
	require.Equal(t, sampleRecords(), records)
}

func TestLoadRecordsMissingEverywhere(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte("<html></html>"), 0o600))

	_, err := LoadRecords(filepath.Join(dir, "missing.json"), htmlPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rawData block not found")
}
