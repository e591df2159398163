// cleaner.go
package main

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	citationPattern  = regexp.MustCompile(`\[[0-9]*[a-z]*\]`)
	nbspPattern      = regexp.MustCompile(`\x{00a0}`)
	strayPattern     = regexp.MustCompile(`\n | '`)
	backslashPattern = regexp.MustCompile(`\\`)
)

// cleanText normalizes raw article text: citation markers like [1] or [12a]
// are stripped, then non-breaking spaces, then newline-plus-space and stray
// apostrophe sequences, then any leftover literal backslashes. Pure function,
// idempotent on already-clean input.
func cleanText(text string) string {
	text = citationPattern.ReplaceAllString(text, "")
	text = nbspPattern.ReplaceAllString(text, "")
	text = strayPattern.ReplaceAllString(text, "")
	text = backslashPattern.ReplaceAllString(text, "")
	return text
}

// extractArticleText concatenates the trimmed text of every paragraph element
// in document order. Paragraph boundaries are not marked in the output; the
// corpus format has no separators.
func extractArticleText(doc *goquery.Document) string {
	var b strings.Builder
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		b.WriteString(strings.TrimSpace(p.Text()))
	})
	return b.String()
}

// fetchArticleText fetches one article and returns its cleaned text.
func fetchArticleText(ctx context.Context, client *http.Client, articleURL string) (string, error) {
	doc, err := fetchDocument(ctx, client, articleURL)
	if err != nil {
		return "", err
	}
	return cleanText(extractArticleText(doc)), nil
}
