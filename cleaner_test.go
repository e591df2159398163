package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"citation digits", "Paris[1] is large[12a]", "Paris is large"},
		{"citation with letters", "fact[3b]", "fact"},
		{"non-breaking space", "a b", "ab"},
		{"newline followed by space", "a\n b", "ab"},
		{"space before apostrophe", "it 's", "its"},
		{"literal backslash", `a\b`, "ab"},
		{"already clean", "plain text stays", "plain text stays"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	raw := "The Seine[1] flows through Paris[2a].\n It 's a river\\."
	once := cleanText(raw)
	twice := cleanText(once)
	if once != twice {
		t.Errorf("cleanText is not idempotent: first %q, second %q", once, twice)
	}
}

func TestExtractArticleTextJoinsParagraphsWithoutSeparator(t *testing.T) {
	html := `<html><body>
		<h1>Title</h1>
		<p> First paragraph. </p>
		<div><p>Second paragraph.</p></div>
		<p>Third.</p>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}

	got := extractArticleText(doc)
	want := "First paragraph.Second paragraph.Third."
	if got != want {
		t.Errorf("extractArticleText() = %q, want %q", got, want)
	}
}

func TestFetchArticleTextCleansFetchedParagraphs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>Paris[1] is large.</p><p>It has rivers[2a].</p></body></html>"))
	}))
	defer server.Close()

	got, err := fetchArticleText(context.Background(), server.Client(), server.URL)
	if err != nil {
		t.Fatalf("fetchArticleText() error = %v", err)
	}
	want := "Paris is large.It has rivers."
	if got != want {
		t.Errorf("fetchArticleText() = %q, want %q", got, want)
	}
}

func TestFetchArticleTextPropagatesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := fetchArticleText(context.Background(), server.Client(), server.URL)
	if err == nil {
		t.Fatal("fetchArticleText() should fail on HTTP 503")
	}
}
