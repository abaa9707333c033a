// Package submission resolves device submission identifiers and their
// canonical reference URLs from the raw feed field. The field mixes
// machine-generated hyperlink markup with years of hand-entered text, so
// resolution layers structured extraction over heuristic fallbacks instead
// of trusting any single shape.
package submission

import (
	"regexp"
	"strings"
)

var (
	// hyperlinkRE matches the spreadsheet-style directive
	// HYPERLINK("<url>", "<display>") that some feed rows carry verbatim.
	hyperlinkRE = regexp.MustCompile(`(?i)HYPERLINK\("([^"]+)",\s*"([^"]+)"\)`)
	urlRE       = regexp.MustCompile(`https?://[^\s)"]+`)
	idRE        = regexp.MustCompile(`(?i)(DEN\d+|K\d+|P\d+)`)
)

// Parse extracts the submission identifier and reference URL from one raw
// field. Resolution order, first match wins per slot: hyperlink directive
// (both slots at once), then the first bare URL, then the first identifier
// in the field, then the first identifier inside the URL. When only an
// identifier is found the URL is synthesized from its family template.
// Absent values are empty strings; Parse never fails.
func Parse(raw string) (id, url string) {
	raw = strings.TrimSpace(raw)

	if m := hyperlinkRE.FindStringSubmatch(raw); m != nil {
		url = strings.TrimSpace(m[1])
		id = strings.ToUpper(strings.TrimSpace(m[2]))
		return id, url
	}

	url = urlRE.FindString(raw)
	idMatch := idRE.FindStringSubmatch(raw)
	if idMatch == nil && url != "" {
		idMatch = idRE.FindStringSubmatch(url)
	}
	if idMatch != nil {
		id = strings.ToUpper(idMatch[1])
	}
	if url == "" && id != "" {
		url = BuildSubmissionURL(id)
	}
	return id, url
}

// BuildSubmissionURL synthesizes the canonical reference URL for an
// identifier from its family template. Unrecognized prefixes yield "".
func BuildSubmissionURL(id string) string {
	if id == "" {
		return ""
	}
	id = strings.ToUpper(id)
	switch {
	case strings.HasPrefix(id, "DEN"):
		return "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfpmn/denovo.cfm?id=" + id
	case strings.HasPrefix(id, "K"):
		return "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfPMN/pmn.cfm?ID=" + id
	case strings.HasPrefix(id, "P"):
		return "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfpma/pma.cfm?id=" + id
	}
	return ""
}
