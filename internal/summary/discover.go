// Package summary finds, downloads and extracts the official summary
// document for each device submission: it scans the submission's reference
// page for PDF links, ranks them by relevance keywords, and drives the
// download and text-extraction pipeline with a resumable link cache.
package summary

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var pdfRE = regexp.MustCompile(`(?i)\.pdf($|\?)`)

// Candidate is one discovered document link.
type Candidate struct {
	URL   string
	Text  string
	Score int
}

// DiscoverPDFLinks returns the PDF-like anchors of a reference page resolved
// to absolute URLs, in document order. Anchors whose href does not look like
// a PDF, or does not parse as a URL, are dropped.
func DiscoverPDFLinks(body []byte, baseURL string) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse reference page: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var candidates []Candidate
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || !pdfRE.MatchString(href) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		candidates = append(candidates, Candidate{
			URL:  base.ResolveReference(ref).String(),
			Text: strings.TrimSpace(sel.Text()),
		})
	})
	return candidates, nil
}
