package dataset

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fdadash/devicefeed/internal/config"
	"github.com/fdadash/devicefeed/internal/fetch"
	"github.com/fdadash/devicefeed/internal/normalize"
	"github.com/fdadash/devicefeed/internal/submission"
)

type feedRow struct {
	DecisionDate string `xml:"Date_of_final_decision"`
	Submission   string `xml:"Submission_number"`
	Device       string `xml:"Device"`
	Company      string `xml:"Company"`
	Panel        string `xml:"Panel"`
	Code         string `xml:"Primary_product_code"`
}

type feedDocument struct {
	Rows []feedRow `xml:"row"`
}

// ParseFeed turns the raw XML feed into records. A feed that does not parse
// is fatal; individual rows with missing fields still produce records with
// empty values.
func ParseFeed(data []byte) ([]Record, error) {
	var doc feedDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse source feed: %w", err)
	}

	records := make([]Record, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		date := normalize.CleanText(row.DecisionDate)
		id, url := submission.Parse(row.Submission)

		year := 0
		if date != "" {
			parts := strings.Split(date, "/")
			if len(parts) == 3 && isDigits(parts[2]) {
				if n, err := strconv.Atoi(parts[2]); err == nil {
					year = n
				}
			}
		}

		records = append(records, Record{
			Date:          date,
			Year:          year,
			Device:        normalize.CleanText(row.Device),
			Company:       normalize.CleanText(row.Company),
			Panel:         normalize.CleanText(row.Panel),
			Code:          normalize.CleanText(row.Code),
			SubmissionID:  id,
			SubmissionURL: url,
		})
	}
	return records, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LoadFeed returns the raw feed bytes. With SkipDownload set it reads the
// local mirror; otherwise it downloads the feed and refreshes the mirror
// when the upstream content differs from what is on disk.
func LoadFeed(ctx context.Context, fetcher fetch.Fetcher, cfg config.UpdateConfig) ([]byte, error) {
	if cfg.SkipDownload {
		data, err := os.ReadFile(cfg.SourceXML)
		if err != nil {
			return nil, fmt.Errorf("read feed mirror: %w", err)
		}
		return data, nil
	}

	page, err := fetcher.Fetch(ctx, cfg.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("download source feed: %w", err)
	}

	existing, err := os.ReadFile(cfg.SourceXML)
	if err != nil || !bytes.Equal(existing, page.Body) {
		if dir := filepath.Dir(cfg.SourceXML); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create feed mirror dir: %w", err)
			}
		}
		if err := os.WriteFile(cfg.SourceXML, page.Body, 0o600); err != nil {
			return nil, fmt.Errorf("write feed mirror: %w", err)
		}
	}
	return page.Body, nil
}
