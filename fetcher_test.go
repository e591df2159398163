package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestFetchDocumentParsesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>hello</p></body></html>"))
	}))
	defer server.Close()

	doc, err := fetchDocument(context.Background(), server.Client(), server.URL)
	if err != nil {
		t.Fatalf("fetchDocument() error = %v", err)
	}
	if got := doc.Find("p").Text(); got != "hello" {
		t.Errorf("parsed paragraph = %q, want %q", got, "hello")
	}
}

func TestFetchDocumentHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := fetchDocument(context.Background(), server.Client(), server.URL)
	if err == nil {
		t.Fatal("fetchDocument() should fail on HTTP 404")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("fetchDocument() error = %T, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("HTTPError.StatusCode = %d, want %d", httpErr.StatusCode, http.StatusNotFound)
	}
	if httpErr.URL != server.URL {
		t.Errorf("HTTPError.URL = %q, want %q", httpErr.URL, server.URL)
	}
}

func TestAnchorHrefs(t *testing.T) {
	html := `<div>
		<a href="/wiki/Q42">Douglas Adams</a>
		<a href="/wiki/Special:Search">not an entity</a>
		<a href="/wiki/Q1">Universe</a>
		<a>no href</a>
	</div>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}

	got := anchorHrefs(doc.Selection, entityHrefPattern, "https://example.org")
	want := []string{"https://example.org/wiki/Q42", "https://example.org/wiki/Q1"}
	if len(got) != len(want) {
		t.Fatalf("anchorHrefs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("anchorHrefs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestContainerErrorMessage(t *testing.T) {
	err := &ContainerError{Selector: "div#mw-pages", URL: "https://en.wikipedia.org/wiki/Category:Rivers"}
	if !strings.Contains(err.Error(), "div#mw-pages") {
		t.Errorf("ContainerError message %q should name the selector", err.Error())
	}
}
