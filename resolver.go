package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// ErrStageExhausted marks a stage in which every single item failed. Partial
// failures are absorbed at the fan-out boundary; only total exhaustion is
// escalated, since feeding an empty list to the next stage wastes the rest of
// the pipeline.
var ErrStageExhausted = errors.New("all items in stage failed")

const (
	sitelinksSelector = `div[data-wb-sitelinks-group="wikipedia"]`
	catlinksSelector  = `div.mw-normal-catlinks`
	membersSelector   = `div#mw-pages`
)

// Resolver chains the fetch hops that turn expanded keywords into the final
// article frontier: entity search, entity to article, article to categories,
// category to member articles, and finally article text. Each hop is a
// bounded fan-out over one shared session, and each hop drains completely
// before the next starts.
type Resolver struct {
	log         *logrus.Logger
	report      *RunReport
	workers     int
	timeout     time.Duration
	searchLimit int

	entityBase  string
	articleBase string
	sitelink    *regexp.Regexp
}

// NewResolver creates a resolver for the configured target language.
func NewResolver(settings *Settings, log *logrus.Logger, report *RunReport) *Resolver {
	lang := settings.Language
	return &Resolver{
		log:         log,
		report:      report,
		workers:     settings.Workers,
		timeout:     settings.RequestTimeout(),
		searchLimit: settings.SearchResults,
		entityBase:  wikidataBase,
		articleBase: "https://" + lang + wikipediaDomain,
		sitelink:    regexp.MustCompile(`https://` + regexp.QuoteMeta(lang) + `\.wikipedia`),
	}
}

// searchURL builds the entity search URL for one term.
func (r *Resolver) searchURL(term string, limit int) string {
	return r.entityBase + wikidataSearch + url.QueryEscape(term) + "&page=1&limit=" + strconv.Itoa(limit)
}

// searchEntities fetches the entity search results for one term and returns
// absolute entity URLs.
func (r *Resolver) searchEntities(ctx context.Context, client *http.Client, term string, limit int) ([]string, error) {
	doc, err := fetchDocument(ctx, client, r.searchURL(term, limit))
	if err != nil {
		return nil, err
	}
	return r.extractEntityLinks(doc), nil
}

// extractEntityLinks returns every anchor on a search result page that points
// at an entity, as absolute URLs.
func (r *Resolver) extractEntityLinks(doc *goquery.Document) []string {
	return anchorHrefs(doc.Selection, entityHrefPattern, r.entityBase)
}

// entityArticles fetches one entity page and returns the sitelinked articles
// for the target language.
func (r *Resolver) entityArticles(ctx context.Context, client *http.Client, entityURL string) ([]string, error) {
	doc, err := fetchDocument(ctx, client, entityURL)
	if err != nil {
		return nil, err
	}
	return r.extractSitelinks(doc, entityURL)
}

// extractSitelinks pulls the target-language article URLs out of the entity
// page's encyclopedia sitelinks group. Sitelink hrefs are already absolute.
func (r *Resolver) extractSitelinks(doc *goquery.Document, pageURL string) ([]string, error) {
	group := doc.Find(sitelinksSelector)
	if group.Length() == 0 {
		return nil, &ContainerError{Selector: sitelinksSelector, URL: pageURL}
	}
	var articles []string
	group.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if r.sitelink.MatchString(href) {
			articles = append(articles, href)
		}
	})
	return articles, nil
}

// articleCategories fetches one article and returns its category URLs.
func (r *Resolver) articleCategories(ctx context.Context, client *http.Client, articleURL string) ([]string, error) {
	doc, err := fetchDocument(ctx, client, articleURL)
	if err != nil {
		return nil, err
	}
	return r.extractWikiLinks(doc, articleURL, catlinksSelector)
}

// categoryMembers fetches one category page and returns its member article
// URLs.
func (r *Resolver) categoryMembers(ctx context.Context, client *http.Client, categoryURL string) ([]string, error) {
	doc, err := fetchDocument(ctx, client, categoryURL)
	if err != nil {
		return nil, err
	}
	return r.extractWikiLinks(doc, categoryURL, membersSelector)
}

// extractWikiLinks collects the wiki links inside the given container,
// absolutized against the article base, and drops the first match. On every
// page layout observed so far the first anchor is the container's own
// navigational link, not a data link. That assumption is fragile rather than
// guaranteed, but it is kept as-is: "fixing" it would double-count the self
// reference on the layouts we do crawl.
func (r *Resolver) extractWikiLinks(doc *goquery.Document, pageURL, selector string) ([]string, error) {
	container := doc.Find(selector)
	if container.Length() == 0 {
		return nil, &ContainerError{Selector: selector, URL: pageURL}
	}
	links := anchorHrefs(container, wikiHrefPattern, r.articleBase)
	if len(links) > 0 {
		links = links[1:]
	}
	return links, nil
}

// runStage fans op out over items with a fresh session, absorbs per-item
// failures into the report, and escalates only total exhaustion.
func (r *Resolver) runStage(ctx context.Context, stage Stage, items []string, op extractOp) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	client := newSession(r.timeout)
	results, failures := fanOut(ctx, client, items, r.workers, op)

	for _, f := range failures {
		r.log.WithError(f.Err).Warnf("%s: skipping %s", stage, f.Item)
	}
	if r.report != nil {
		r.report.observe(stage, len(items), len(failures))
	}
	r.log.Debugf("%s: %d items, %d failed, %d links", stage, len(items), len(failures), len(results))

	if len(failures) == len(items) {
		return nil, fmt.Errorf("%s: %d items: %w", stage, len(items), ErrStageExhausted)
	}
	return results, nil
}

// ResolveEntities runs the entity search stage over a list of search terms.
func (r *Resolver) ResolveEntities(ctx context.Context, terms []string) ([]string, error) {
	return r.runStage(ctx, StageEntitySearch, terms, func(ctx context.Context, client *http.Client, term string) ([]string, error) {
		return r.searchEntities(ctx, client, term, r.searchLimit)
	})
}

// ResolveArticles runs the entity-to-article stage over a list of entity URLs.
func (r *Resolver) ResolveArticles(ctx context.Context, entities []string) ([]string, error) {
	return r.runStage(ctx, StageEntityToArticle, entities, r.entityArticles)
}

// ResolveCategories runs the article-to-categories stage over a list of
// article URLs.
func (r *Resolver) ResolveCategories(ctx context.Context, articles []string) ([]string, error) {
	return r.runStage(ctx, StageArticleToCategory, articles, r.articleCategories)
}

// ResolveMembers runs the category-to-articles stage over a deduplicated
// category set, producing the final crawl frontier.
func (r *Resolver) ResolveMembers(ctx context.Context, categories []string) ([]string, error) {
	return r.runStage(ctx, StageCategoryToArticle, categories, r.categoryMembers)
}

// ResolveKeywordCategories chains the three per-keyword stages. Each stage
// fully drains before the next begins; this is a dependent pipeline, not a
// streaming one.
func (r *Resolver) ResolveKeywordCategories(ctx context.Context, terms []string) ([]string, error) {
	entities, err := r.ResolveEntities(ctx, terms)
	if err != nil {
		return nil, err
	}
	articles, err := r.ResolveArticles(ctx, entities)
	if err != nil {
		return nil, err
	}
	return r.ResolveCategories(ctx, articles)
}

// CollectText fans the text extraction stage out over the final article list
// and concatenates the cleaned texts in completion order. Per-article
// boundaries are not marked; the corpus is one blob.
func (r *Resolver) CollectText(ctx context.Context, articles []string) (string, error) {
	texts, err := r.runStage(ctx, StageTextExtract, articles, func(ctx context.Context, client *http.Client, articleURL string) ([]string, error) {
		text, err := fetchArticleText(ctx, client, articleURL)
		if err != nil {
			return nil, err
		}
		return []string{text}, nil
	})
	if err != nil {
		return "", err
	}

	var b []byte
	for _, t := range texts {
		b = append(b, t...)
	}
	return string(b), nil
}

// dedupe collapses a URL list to a set. First appearance order is kept, but
// nothing downstream depends on it.
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	var out []string
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
