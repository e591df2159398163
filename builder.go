// builder.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Builder orchestrates one corpus build: per-keyword expansion and link
// resolution, the cross-keyword category dedup barrier, the final member
// expansion, text extraction, and the output sink.
type Builder struct {
	log      *logrus.Logger
	settings *Settings
	report   *RunReport
	resolver *Resolver
	expander *Expander
}

// NewBuilder creates a builder and its collaborators from settings.
func NewBuilder(settings *Settings, log *logrus.Logger) *Builder {
	report := newRunReport()
	resolver := NewResolver(settings, log, report)
	return &Builder{
		log:      log,
		settings: settings,
		report:   report,
		resolver: resolver,
		expander: NewExpander(settings, log, resolver),
	}
}

// Run builds the corpus for the given seed keywords and writes it to the
// output path, overwriting any previous file. The file is always written,
// even when empty, so the caller can decide whether to keep it; a run that
// resolves zero articles returns ErrStageExhausted alongside the report.
// A partial corpus with some failed fetches is a success.
func (b *Builder) Run(ctx context.Context, keywords []string) (*RunReport, error) {
	b.report.Keywords = len(keywords)
	b.report.OutputPath = b.settings.OutputPath

	// Stages 1-3 run per keyword; keywords are independent until the
	// category dedup barrier below.
	var categories []string
	for i, keyword := range keywords {
		terms := b.expander.Expand(ctx, keyword)
		b.log.Infof("[%d/%d] %q expanded to %d terms", i+1, len(keywords), keyword, len(terms))

		keywordCategories, err := b.resolver.ResolveKeywordCategories(ctx, terms)
		if err != nil {
			if ctx.Err() != nil {
				return b.report, ctx.Err()
			}
			b.log.WithError(err).Warnf("keyword %q resolved no categories", keyword)
			continue
		}
		categories = append(categories, keywordCategories...)
	}

	unique := dedupe(categories)
	b.log.Infof("%d unique categories (%d collected)", len(unique), len(categories))

	articles, membersErr := b.resolver.ResolveMembers(ctx, unique)
	b.report.Articles = len(articles)
	b.log.Infof("crawl frontier: %d articles", len(articles))

	corpus, textErr := b.resolver.CollectText(ctx, articles)
	b.report.CorpusBytes = len(corpus)

	if err := b.writeCorpus(corpus); err != nil {
		return b.report, err
	}
	b.log.Infof("wrote %d bytes to %s (%d failed fetches)", len(corpus), b.settings.OutputPath, b.report.FailedFetches())

	if ctx.Err() != nil {
		return b.report, ctx.Err()
	}
	if membersErr != nil {
		return b.report, fmt.Errorf("resolving category members: %w", membersErr)
	}
	if textErr != nil {
		return b.report, fmt.Errorf("extracting article text: %w", textErr)
	}
	if len(keywords) > 0 && len(articles) == 0 {
		return b.report, fmt.Errorf("no articles resolved for %d keywords: %w", len(keywords), ErrStageExhausted)
	}
	return b.report, nil
}

// writeCorpus hands the assembled corpus to the output sink.
func (b *Builder) writeCorpus(corpus string) error {
	if err := os.WriteFile(b.settings.OutputPath, []byte(corpus), 0644); err != nil {
		return fmt.Errorf("writing corpus to %s: %w", b.settings.OutputPath, err)
	}
	return nil
}
