// expander.go
package main

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

//go:embed stopwords/*.txt
var stopwordFiles embed.FS

// supportedLanguages lists the languages with an embedded stopword list and a
// known vector model naming scheme.
var supportedLanguages = map[string]bool{
	"en": true,
	"de": true,
}

// Expander turns one seed keyword into a list of related search terms. It
// derives terms from the keyword's own top-ranked article and, when a vector
// model is available, adds the keyword's nearest neighbors. The model is an
// optional capability: absent model means fewer terms, never a failure.
type Expander struct {
	log           *logrus.Logger
	resolver      *Resolver
	model         *VectorModel
	language      string
	timeout       time.Duration
	keywordCount  int
	neighborCount int
}

// NewExpander creates an expander, loading the language's vector model if one
// exists under the configured model directory.
func NewExpander(settings *Settings, log *logrus.Logger, resolver *Resolver) *Expander {
	e := &Expander{
		log:           log,
		resolver:      resolver,
		language:      settings.Language,
		timeout:       settings.RequestTimeout(),
		keywordCount:  settings.Expansion.Keywords,
		neighborCount: settings.Expansion.Neighbors,
	}

	if !supportedLanguages[settings.Language] {
		log.Warnf("expansion: language %q is not supported, continuing without a vector model", settings.Language)
		return e
	}

	path := filepath.Join(settings.ModelDir, "cc."+settings.Language+".300.vec")
	model, err := loadVectors(path)
	if err != nil {
		log.WithError(err).Warnf("expansion: vector model %s unavailable, continuing without it", path)
		return e
	}
	log.Infof("expansion: loaded %d word vectors from %s", len(model.vectors), path)
	e.model = model
	return e
}

// Expand returns the expanded term list for one seed keyword. The keyword
// itself is always included; every other source of terms degrades gracefully.
func (e *Expander) Expand(ctx context.Context, keyword string) []string {
	terms := []string{keyword}

	derived, err := e.deriveTerms(ctx, keyword)
	if err != nil {
		e.log.WithError(err).Debugf("expansion: no derived terms for %q", keyword)
	}
	terms = append(terms, derived...)

	if e.model != nil {
		terms = append(terms, e.model.MostSimilar(strings.ToLower(keyword), e.neighborCount)...)
	}

	return dedupe(terms)
}

// deriveTerms resolves the keyword's top entity to its article and runs
// keyword extraction over the article text.
func (e *Expander) deriveTerms(ctx context.Context, keyword string) ([]string, error) {
	client := newSession(e.timeout)

	entities, err := e.resolver.searchEntities(ctx, client, keyword, 1)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no entity found for %q", keyword)
	}

	articles, err := e.resolver.entityArticles(ctx, client, entities[0])
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("no article sitelink for %q", keyword)
	}

	text, err := fetchArticleText(ctx, client, articles[0])
	if err != nil {
		return nil, err
	}
	return rakeKeywords(text, e.language, e.keywordCount), nil
}

var sentenceDelims = regexp.MustCompile(`[.!?,;:()\[\]"\t\n\r]+`)
var numericWord = regexp.MustCompile(`^[0-9]+$`)

// rakeKeywords extracts candidate keyword phrases with the RAKE scheme:
// the text splits into sentences at punctuation, phrases are maximal runs of
// non-stopwords, each word is scored by degree over frequency, and each
// phrase by the sum of its word scores. The top limit phrases come back in
// rank order.
func rakeKeywords(text, language string, limit int) []string {
	stop := stopwordsFor(language)

	var phrases [][]string
	for _, sentence := range sentenceDelims.Split(strings.ToLower(text), -1) {
		var phrase []string
		flush := func() {
			if len(phrase) > 0 {
				phrases = append(phrases, phrase)
				phrase = nil
			}
		}
		for _, word := range strings.Fields(sentence) {
			word = strings.Trim(word, "'\"`")
			if word == "" || stop[word] || numericWord.MatchString(word) {
				flush()
				continue
			}
			phrase = append(phrase, word)
		}
		flush()
	}

	freq := make(map[string]float64)
	degree := make(map[string]float64)
	for _, phrase := range phrases {
		for _, word := range phrase {
			freq[word]++
			degree[word] += float64(len(phrase) - 1)
		}
	}

	type scoredPhrase struct {
		phrase string
		score  float64
	}
	seen := make(map[string]bool)
	var ranked []scoredPhrase
	for _, phrase := range phrases {
		key := strings.Join(phrase, " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		var score float64
		for _, word := range phrase {
			score += (degree[word] + freq[word]) / freq[word]
		}
		ranked = append(ranked, scoredPhrase{phrase: key, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]string, 0, limit)
	for _, s := range ranked[:limit] {
		out = append(out, s.phrase)
	}
	return out
}

// stopwordsFor loads the embedded stopword list for a language. Unknown
// languages get an empty set, which turns every word into a candidate.
func stopwordsFor(language string) map[string]bool {
	stop := make(map[string]bool)
	data, err := stopwordFiles.ReadFile("stopwords/" + language + ".txt")
	if err != nil {
		return stop
	}
	for _, line := range strings.Split(string(data), "\n") {
		word := strings.TrimSpace(line)
		if word != "" {
			stop[word] = true
		}
	}
	return stop
}

// VectorModel holds word vectors for nearest-neighbor expansion.
type VectorModel struct {
	dims    int
	vectors map[string][]float64
}

// loadVectors reads word vectors in the fastText text format: a header line
// "count dims" followed by one "word v1 .. vD" line per word. Malformed rows
// are skipped.
func loadVectors(path string) (*VectorModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty vector file %s", path)
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 {
		return nil, fmt.Errorf("malformed header in vector file %s", path)
	}
	dims, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("malformed dimension in vector file %s: %w", path, err)
	}

	model := &VectorModel{dims: dims, vectors: make(map[string][]float64)}
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != dims+1 {
			continue
		}
		vec := make([]float64, dims)
		valid := true
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				valid = false
				break
			}
			vec[i] = v
		}
		if valid {
			model.vectors[fields[0]] = vec
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vector file %s: %w", path, err)
	}
	return model, nil
}

// MostSimilar returns up to topn words ranked by cosine similarity to word.
// An out-of-vocabulary word yields nothing.
func (m *VectorModel) MostSimilar(word string, topn int) []string {
	target, ok := m.vectors[word]
	if !ok {
		return nil
	}

	type scoredWord struct {
		word  string
		score float64
	}
	candidates := make([]scoredWord, 0, len(m.vectors))
	for w, vec := range m.vectors {
		if w == word {
			continue
		}
		candidates = append(candidates, scoredWord{word: w, score: cosine(target, vec)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].word < candidates[j].word
	})

	if topn > len(candidates) {
		topn = len(candidates)
	}
	out := make([]string, 0, topn)
	for _, c := range candidates[:topn] {
		out = append(out, c.word)
	}
	return out
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
