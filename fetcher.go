package main

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

const (
	wikidataBase    = "https://www.wikidata.org"
	wikidataSearch  = "/w/index.php?search="
	wikipediaDomain = ".wikipedia.org"
)

// HTTPError represents a non-success HTTP response for a fetched URL
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// ContainerError reports a page that lacks the structural container an
// extractor depends on: an entity page without sitelinks, an article without
// a category box, a category without a member listing. It must surface as a
// per-item failure rather than an empty result, so the fan-out boundary can
// count it.
type ContainerError struct {
	Selector string
	URL      string
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("no %q container in %s", e.Selector, e.URL)
}

var (
	entityHrefPattern = regexp.MustCompile(`/wiki/Q`)
	wikiHrefPattern   = regexp.MustCompile(`/wiki/`)
)

// fetchDocument issues a single blocking GET and parses the body as HTML.
func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", pageURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: pageURL}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	return doc, nil
}

// anchorHrefs collects the href of every anchor in sel whose href matches
// pattern, prefixing each with base.
func anchorHrefs(sel *goquery.Selection, pattern *regexp.Regexp, base string) []string {
	var hrefs []string
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if pattern.MatchString(href) {
			hrefs = append(hrefs, base+href)
		}
	})
	return hrefs
}
