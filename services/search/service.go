package search

import (
	"context"
	"fmt"
	"time"

	"github.com/meghashyamc/whereis/logger"
)

const matcherCacheSize = 256

// Query is a transport-neutral description of a search, as received from
// the HTTP API, the CLI or a saved search.
type Query struct {
	Location       string     `json:"location,omitempty"`
	MoreLocations  []string   `json:"more_locations,omitempty"`
	Input          string     `json:"input,omitempty"`
	Ext            string     `json:"ext,omitempty"`
	Depth          *int       `json:"depth,omitempty"`
	Limit          *int       `json:"limit,omitempty"`
	Strict         bool       `json:"strict,omitempty"`
	IgnoreCase     bool       `json:"ignore_case,omitempty"`
	Hidden         bool       `json:"hidden,omitempty"`
	MinSize        string     `json:"min_size,omitempty"`
	MaxSize        string     `json:"max_size,omitempty"`
	Size           string     `json:"size,omitempty"`
	ModifiedAfter  *time.Time `json:"modified_after,omitempty"`
	ModifiedBefore *time.Time `json:"modified_before,omitempty"`
	CreatedAfter   *time.Time `json:"created_after,omitempty"`
	CreatedBefore  *time.Time `json:"created_before,omitempty"`
	Rank           string     `json:"rank,omitempty"`
}

// Builder turns the query into a search configuration on top of base.
func (q Query) Builder(base Builder) (Builder, error) {
	b := base
	if q.Location != "" {
		b = b.Location(q.Location)
	}
	if len(q.MoreLocations) > 0 {
		b = b.MoreLocations(q.MoreLocations)
	}
	if q.Input != "" {
		b = b.SearchInput(q.Input)
	}
	if q.Ext != "" {
		b = b.Ext(q.Ext)
	}
	if q.Depth != nil {
		b = b.Depth(*q.Depth)
	}
	if q.Limit != nil {
		b = b.Limit(*q.Limit)
	}
	if q.Strict {
		b = b.Strict()
	}
	if q.IgnoreCase {
		b = b.IgnoreCase()
	}
	if q.Hidden {
		b = b.Hidden()
	}

	sizeFilters := []struct {
		text  string
		apply func(Builder, FileSize) Builder
	}{
		{q.MinSize, Builder.FileSizeGreater},
		{q.MaxSize, Builder.FileSizeSmaller},
		{q.Size, Builder.FileSizeEqual},
	}
	for _, sizeFilter := range sizeFilters {
		if sizeFilter.text == "" {
			continue
		}
		size, err := ParseFileSize(sizeFilter.text)
		if err != nil {
			return Builder{}, err
		}
		b = sizeFilter.apply(b, size)
	}

	if q.ModifiedAfter != nil {
		b = b.ModifiedAfter(*q.ModifiedAfter)
	}
	if q.ModifiedBefore != nil {
		b = b.ModifiedBefore(*q.ModifiedBefore)
	}
	if q.CreatedAfter != nil {
		b = b.CreatedAfter(*q.CreatedAfter)
	}
	if q.CreatedBefore != nil {
		b = b.CreatedBefore(*q.CreatedBefore)
	}

	return b, nil
}

type Service struct {
	logger     logger.Logger
	matchers   *MatcherCache
	maxResults int
}

// New returns a search service. maxResults caps searches that set no limit
// of their own; zero leaves them unbounded.
func New(logger logger.Logger, maxResults int) (*Service, error) {
	matchers, err := NewMatcherCache(matcherCacheSize)
	if err != nil {
		logger.Error("could not create matcher cache", "err", err.Error())
		return nil, fmt.Errorf("could not create matcher cache: %w", err)
	}

	return &Service{
		logger:     logger,
		matchers:   matchers,
		maxResults: maxResults,
	}, nil
}

func (s *Service) start(ctx context.Context, query Query) (*Search, error) {
	if query.Limit == nil && s.maxResults > 0 {
		limit := s.maxResults
		query.Limit = &limit
	}

	base := NewBuilder().WithLogger(s.logger).WithMatcherCache(s.matchers)
	b, err := query.Builder(base)
	if err != nil {
		s.logger.Warn("could not build search from query", "err", err.Error())
		return nil, err
	}

	return b.Build(ctx)
}

// Run executes query and returns every result, ranked by similarity when
// the query asks for it.
func (s *Service) Run(ctx context.Context, query Query) ([]string, error) {
	started := time.Now()

	search, err := s.start(ctx, query)
	if err != nil {
		return nil, err
	}
	defer search.Close()

	results := search.Collect()
	if results == nil {
		results = []string{}
	}
	if query.Rank != "" {
		SimilaritySort(results, query.Rank)
	}
	s.logger.Info("search completed", "results", len(results), "duration", time.Since(started).String())

	return results, nil
}

// Stream calls emit for every result as it arrives until emit returns false,
// the search finishes or ctx is cancelled. Ranking is not applied.
func (s *Service) Stream(ctx context.Context, query Query, emit func(path string) bool) error {
	search, err := s.start(ctx, query)
	if err != nil {
		return err
	}
	defer search.Close()

	count := 0
	for path := range search.All() {
		if !emit(path) {
			break
		}
		count++
	}
	s.logger.Info("search stream finished", "results", count)

	return ctx.Err()
}

// Check reports whether query would start: its sizes parse and its pattern
// compiles. Nothing is walked.
func (s *Service) Check(query Query) error {
	b, err := query.Builder(NewBuilder())
	if err != nil {
		return err
	}
	if _, err := s.matchers.compile(b.Expression()); err != nil {
		return err
	}

	return nil
}
