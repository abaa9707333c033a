package summary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscoverPDFLinks(t *testing.T) {
	page := []byte(`<html><body>
<a href="/media/1.pdf">510(k) Summary</a>
<a href="docs/ifu.PDF?download=1">Instructions for Use</a>
<a href="https://other.example.gov/review.docx">Review</a>
<a href="#">Summary</a>
<a href="/media/2.pdf"><span>Decision</span> <b>Summary</b></a>
</body></html>`)

	candidates, err := DiscoverPDFLinks(page, "https://example.gov/scripts/cdrh/pmn.cfm?ID=K183268")
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	require.Equal(t, "https://example.gov/media/1.pdf", candidates[0].URL)
	require.Equal(t, "510(k) Summary", candidates[0].Text)

	// Relative hrefs resolve against the page URL; the extension match is
	// case-insensitive and tolerates query strings.
	require.Equal(t, "https://example.gov/scripts/cdrh/docs/ifu.PDF?download=1", candidates[1].URL)

	// Nested markup contributes its concatenated text.
	require.Equal(t, "Decision Summary", candidates[2].Text)
}

func TestDiscoverPDFLinksEmptyPage(t *testing.T) {
	candidates, err := DiscoverPDFLinks([]byte("<html><body><p>No links here</p></body></html>"), "https://example.gov/")
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestDiscoverPDFLinksBadBaseURL(t *testing.T) {
	_, err := DiscoverPDFLinks([]byte("<a href='x.pdf'>x</a>"), "://not-a-url")
	require.Error(t, err)
}
