package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// corpusTestServer simulates the full traversal for two seed keywords:
// "alpha" resolves to entity Q100, article alpha, categories One and Two;
// "beta" resolves to entity Q200, article beta, categories Two and Three.
// After the dedup barrier the three categories expand to three unique member
// articles.
func corpusTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	sitelink := func(article string) string {
		return `<div data-wb-sitelinks-group="wikipedia"><a href="` + server.URL + `/article/` + article + `">` + article + `</a></div>`
	}
	catlinks := func(categories ...string) string {
		links := `<a href="/wiki/Help:Category">Categories</a>`
		for _, c := range categories {
			links += `<a href="/wiki/Category:` + c + `">` + c + `</a>`
		}
		return `<div class="mw-normal-catlinks">` + links + `</div>`
	}
	members := func(articles ...string) string {
		links := `<a href="/wiki/Category:Self">self</a>`
		for _, a := range articles {
			links += `<a href="/wiki/` + a + `">` + a + `</a>`
		}
		return `<div id="mw-pages">` + links + `</div>`
	}

	mux.HandleFunc("/w/index.php", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("search") {
		case "alpha":
			w.Write([]byte(`<a href="/wiki/Q100">alpha</a>`))
		case "beta":
			w.Write([]byte(`<a href="/wiki/Q200">beta</a>`))
		default:
			// Derived expansion terms find nothing.
			w.Write([]byte(`<p>no results</p>`))
		}
	})
	mux.HandleFunc("/wiki/Q100", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sitelink("alpha")))
	})
	mux.HandleFunc("/wiki/Q200", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sitelink("beta")))
	})
	mux.HandleFunc("/article/alpha", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>Alpha rays travel short distances.</p>` + catlinks("One", "Two")))
	})
	mux.HandleFunc("/article/beta", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>Beta rays penetrate further.</p>` + catlinks("Two", "Three")))
	})
	mux.HandleFunc("/wiki/Category:One", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(members("MemberA")))
	})
	mux.HandleFunc("/wiki/Category:Two", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(members("MemberB")))
	})
	mux.HandleFunc("/wiki/Category:Three", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(members("MemberC")))
	})
	mux.HandleFunc("/wiki/MemberA", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>First member[1] text.</p>`))
	})
	mux.HandleFunc("/wiki/MemberB", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>Second member[2] text.</p>`))
	})
	mux.HandleFunc("/wiki/MemberC", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>Third member[3a] text.</p>`))
	})

	return server
}

func newTestBuilder(t *testing.T, serverURL, outputPath string) *Builder {
	t.Helper()

	settings := defaultSettingsValues()
	settings.OutputPath = outputPath
	settings.Workers = 4
	settings.RequestTimeoutSeconds = 5
	settings.ModelDir = t.TempDir() // no vector model

	b := NewBuilder(settings, quietLogger())
	b.resolver.entityBase = serverURL
	b.resolver.articleBase = serverURL
	b.resolver.sitelink = regexp.MustCompile(regexp.QuoteMeta(serverURL))
	return b
}

func TestBuilderRunEndToEnd(t *testing.T) {
	server := corpusTestServer(t)
	outputPath := filepath.Join(t.TempDir(), "corpus.txt")

	b := newTestBuilder(t, server.URL, outputPath)
	report, err := b.Run(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Keywords != 2 {
		t.Errorf("report.Keywords = %d, want 2", report.Keywords)
	}
	if report.Articles != 3 {
		t.Errorf("report.Articles = %d, want 3", report.Articles)
	}
	if report.FailedFetches() != 0 {
		t.Errorf("report.FailedFetches() = %d, want 0", report.FailedFetches())
	}

	// Categories One, Two and Three must have been deduplicated before the
	// member expansion: Two appears under both keywords but MemberB's text
	// must show up exactly once.
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading corpus file: %v", err)
	}
	corpus := string(data)
	if len(corpus) == 0 {
		t.Fatal("corpus file is empty")
	}

	cleaned := []string{
		"First member text.",
		"Second member text.",
		"Third member text.",
	}
	total := 0
	for _, text := range cleaned {
		if strings.Count(corpus, text) != 1 {
			t.Errorf("corpus should contain %q exactly once:\n%s", text, corpus)
		}
		total += len(text)
	}
	if len(corpus) != total {
		t.Errorf("corpus length = %d, want %d (three cleaned texts, no separators)", len(corpus), total)
	}
	if report.CorpusBytes != len(corpus) {
		t.Errorf("report.CorpusBytes = %d, want %d", report.CorpusBytes, len(corpus))
	}
}

func TestBuilderRunTotalFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "corpus.txt")
	b := newTestBuilder(t, server.URL, outputPath)

	_, err := b.Run(context.Background(), []string{"alpha"})
	if !errors.Is(err, ErrStageExhausted) {
		t.Fatalf("Run() error = %v, want ErrStageExhausted", err)
	}

	// The output file is still written so the caller can decide what to do
	// with it.
	data, readErr := os.ReadFile(outputPath)
	if readErr != nil {
		t.Fatalf("output file missing after total failure: %v", readErr)
	}
	if len(data) != 0 {
		t.Errorf("corpus after total failure = %q, want empty", data)
	}
}

func TestBuilderRunOverwritesExistingOutput(t *testing.T) {
	server := corpusTestServer(t)
	outputPath := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(outputPath, []byte("stale previous corpus"), 0644); err != nil {
		t.Fatalf("seeding stale file: %v", err)
	}

	b := newTestBuilder(t, server.URL, outputPath)
	if _, err := b.Run(context.Background(), []string{"alpha"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading corpus file: %v", err)
	}
	if strings.Contains(string(data), "stale previous corpus") {
		t.Error("previous corpus content survived the overwrite")
	}
}
