package submission

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantID  string
		wantURL string
	}{
		{
			name:    "hyperlink directive wins both slots",
			raw:     `HYPERLINK("https://example.gov/k123456","K123456")`,
			wantID:  "K123456",
			wantURL: "https://example.gov/k123456",
		},
		{
			name:    "hyperlink directive is case-insensitive",
			raw:     `hyperlink("https://example.gov/p010101", "p010101")`,
			wantID:  "P010101",
			wantURL: "https://example.gov/p010101",
		},
		{
			name:    "bare identifier with trailing noise",
			raw:     "K123456 (cleared 2021)",
			wantID:  "K123456",
			wantURL: "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfPMN/pmn.cfm?ID=K123456",
		},
		{
			name:    "lowercase identifier is normalized",
			raw:     "den200001",
			wantID:  "DEN200001",
			wantURL: "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfpmn/denovo.cfm?id=DEN200001",
		},
		{
			name:    "bare url with embedded identifier",
			raw:     "see https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfpma/pma.cfm?id=P950009",
			wantID:  "P950009",
			wantURL: "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfpma/pma.cfm?id=P950009",
		},
		{
			name:    "identifier in field beats identifier in url",
			raw:     "K111111 https://example.gov/device/K222222",
			wantID:  "K111111",
			wantURL: "https://example.gov/device/K222222",
		},
		{
			name:    "url without identifier keeps url only",
			raw:     "https://example.gov/some/page",
			wantID:  "",
			wantURL: "https://example.gov/some/page",
		},
		{
			name:    "url stops at closing paren",
			raw:     "(https://example.gov/K333333) approved",
			wantID:  "K333333",
			wantURL: "https://example.gov/K333333",
		},
		{name: "noise only", raw: "pending review", wantID: "", wantURL: ""},
		{name: "empty", raw: "", wantID: "", wantURL: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, url := Parse(tt.raw)
			require.Equal(t, tt.wantID, id)
			require.Equal(t, tt.wantURL, url)
		})
	}
}

func TestParseIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`HYPERLINK("https://example.gov/k123456","K123456")`,
		"K123456 (cleared 2021)",
		"https://example.gov/some/page",
		"noise",
	}
	for _, raw := range inputs {
		id1, url1 := Parse(raw)
		id2, url2 := Parse(raw)
		require.Equal(t, id1, id2)
		require.Equal(t, url1, url2)
	}
}

func TestBuildSubmissionURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id       string
		wantPart string
	}{
		{id: "K123456", wantPart: "cfPMN/pmn.cfm?ID=K123456"},
		{id: "P950009", wantPart: "cfpma/pma.cfm?id=P950009"},
		{id: "DEN200001", wantPart: "cfpmn/denovo.cfm?id=DEN200001"},
		{id: "k123456", wantPart: "cfPMN/pmn.cfm?ID=K123456"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := BuildSubmissionURL(tt.id)
			require.True(t, strings.Contains(got, tt.wantPart), "got %q", got)
		})
	}

	require.Empty(t, BuildSubmissionURL(""))
	require.Empty(t, BuildSubmissionURL("X999999"))
	require.Empty(t, BuildSubmissionURL("510K123"))
}
