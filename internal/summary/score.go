package summary

import (
	"sort"
	"strings"
)

// summaryKeywords mark phrases that indicate an official summary document.
// negativeKeywords mark labeling, manuals and review documents that look
// similar but are not the target.
var (
	summaryKeywords = []string{
		"summary of safety and effectiveness",
		"summary of safety",
		"ssed",
		"summary",
		"510(k) summary",
		"executive summary",
		"decision summary",
	}
	negativeKeywords = []string{
		"label",
		"labeling",
		"instructions",
		"ifu",
		"manual",
		"brochure",
		"addendum",
		"review",
	}
)

// Score rates one candidate link. Each positive phrase adds 3 when found in
// the anchor text, else 1 when found in the URL; each negative phrase found
// in either subtracts 2.
func Score(text, href string) int {
	textLower := strings.ToLower(text)
	hrefLower := strings.ToLower(href)

	score := 0
	for _, kw := range summaryKeywords {
		if strings.Contains(textLower, kw) {
			score += 3
		} else if strings.Contains(hrefLower, kw) {
			score++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(textLower, kw) || strings.Contains(hrefLower, kw) {
			score -= 2
		}
	}
	return score
}

// Rank scores candidates and orders them. When any candidate scores strictly
// positive, only the positive ones are kept, best first. Otherwise every
// candidate is returned in discovery order: with no confident match the
// page's own ordering is the best remaining guess.
func Rank(candidates []Candidate) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	scored := make([]Candidate, len(candidates))
	copy(scored, candidates)
	for i := range scored {
		scored[i].Score = Score(scored[i].Text, scored[i].URL)
	}

	var positive []Candidate
	for _, c := range scored {
		if c.Score > 0 {
			positive = append(positive, c)
		}
	}
	if len(positive) == 0 {
		return scored
	}

	sort.SliceStable(positive, func(i, j int) bool {
		return positive[i].Score > positive[j].Score
	})
	return positive
}
