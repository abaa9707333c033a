package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var (
	rawDataRE        = regexp.MustCompile(`(?s)const rawData = \[.*?\];`)
	rawDataCaptureRE = regexp.MustCompile(`(?s)const rawData = (\[.*?\]);`)
)

// marshalRecords encodes records without HTML escaping so device and company
// names survive byte-for-byte in both artifacts.
func marshalRecords(records []Record, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteEnrichedJSON writes the dataset artifact with two-space indentation,
// creating parent directories as needed.
func WriteEnrichedJSON(path string, records []Record) error {
	data, err := marshalRecords(records, "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write enriched dataset: %w", err)
	}
	return nil
}

// UpdateIndexHTML replaces the embedded rawData block in the dashboard page
// with the freshly built dataset. Exactly one block must exist; zero or
// several means the page shape changed and replacing anything would corrupt
// it. The file is rewritten only when the content actually changes.
func UpdateIndexHTML(path string, records []Record) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read index page: %w", err)
	}

	matches := rawDataRE.FindAllIndex(content, -1)
	if len(matches) != 1 {
		return fmt.Errorf("expected exactly one rawData block in %s, found %d", path, len(matches))
	}

	blob, err := marshalRecords(records, "")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	m := matches[0]
	var out bytes.Buffer
	out.Grow(len(content) - (m[1] - m[0]) + len(blob) + len("const rawData = ;"))
	out.Write(content[:m[0]])
	out.WriteString("const rawData = ")
	out.Write(blob)
	out.WriteByte(';')
	out.Write(content[m[1]:])

	updated := out.Bytes()
	if bytes.Equal(updated, content) {
		return nil
	}
	if err := os.WriteFile(path, updated, 0o600); err != nil {
		return fmt.Errorf("write index page: %w", err)
	}
	return nil
}

// LoadRecords reads the enriched dataset, falling back to the copy embedded
// in the dashboard page when the JSON artifact is absent.
func LoadRecords(inputJSON, indexHTML string) ([]Record, error) {
	data, err := os.ReadFile(inputJSON)
	switch {
	case err == nil:
		var records []Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse %s: %w", inputJSON, err)
		}
		return records, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read %s: %w", inputJSON, err)
	}

	content, err := os.ReadFile(indexHTML)
	if err != nil {
		return nil, fmt.Errorf("read index page: %w", err)
	}
	m := rawDataCaptureRE.FindSubmatch(content)
	if m == nil {
		return nil, fmt.Errorf("rawData block not found in %s", indexHTML)
	}
	var records []Record
	if err := json.Unmarshal(m[1], &records); err != nil {
		return nil, fmt.Errorf("parse rawData block: %w", err)
	}
	return records, nil
}
