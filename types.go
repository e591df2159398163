package main

// Every reference that moves between pipeline stages is a plain URL string:
// entity pages on Wikidata, articles and categories on Wikipedia. No reference
// carries state of its own; all mutation happens on the lists and sets that
// the stages exchange.

// Stage identifies one hop of the link resolution pipeline.
type Stage string

const (
	StageEntitySearch      Stage = "entity-search"
	StageEntityToArticle   Stage = "entity-to-article"
	StageArticleToCategory Stage = "article-to-categories"
	StageCategoryToArticle Stage = "category-to-articles"
	StageTextExtract       Stage = "text-extract"
)

// StageStats counts fan-out outcomes for one stage, accumulated across every
// fan-out call that ran under that stage name.
type StageStats struct {
	Items     int
	Succeeded int
	Failed    int
}

// RunReport summarizes one corpus build for the caller.
type RunReport struct {
	Keywords    int
	Stages      map[Stage]*StageStats
	Articles    int
	CorpusBytes int
	OutputPath  string
}

func newRunReport() *RunReport {
	return &RunReport{Stages: make(map[Stage]*StageStats)}
}

// observe records one drained fan-out. Stages run strictly one after another,
// so no locking is needed here.
func (r *RunReport) observe(stage Stage, items, failed int) {
	s, ok := r.Stages[stage]
	if !ok {
		s = &StageStats{}
		r.Stages[stage] = s
	}
	s.Items += items
	s.Failed += failed
	s.Succeeded += items - failed
}

// FailedFetches returns the total number of per-item failures across all
// stages.
func (r *RunReport) FailedFetches() int {
	total := 0
	for _, s := range r.Stages {
		total += s.Failed
	}
	return total
}
