package search

import (
	"context"
	"iter"
	"regexp"
	"runtime"
	"slices"
	"sync"

	"github.com/meghashyamc/whereis/logger"
	"github.com/meghashyamc/whereis/services/walk"
)

const (
	maxWorkers       = 12
	resultBufferSize = 1024
)

// Search is a running search. Results arrive in no particular order and can
// be read only once; a caller that needs them twice should Collect them.
// A Search has a single consumer: Next, All and Collect must not be called
// concurrently.
type Search struct {
	results <-chan string
	cancel  context.CancelFunc
	done    chan struct{}

	limit    int
	hasLimit bool
	taken    int

	closeOnce sync.Once
	cleanup   runtime.Cleanup
}

func newSearch(ctx context.Context, b Builder) (*Search, error) {
	log := b.logger
	if log == nil {
		log = logger.Discard()
	}

	expression := b.Expression()
	var err error
	var matcher *regexp.Regexp
	if b.matchers != nil {
		matcher, err = b.matchers.compile(expression)
	} else {
		matcher, err = compileExpression(expression)
	}
	if err != nil {
		log.Warn("could not compile search pattern", "expression", expression, "err", err.Error())
		return nil, err
	}

	opts := walk.Options{
		SkipHidden: !b.hidden,
		GitIgnore:  true,
		MaxDepth:   walk.Unbounded,
		Threads:    min(maxWorkers, runtime.NumCPU()),
		Logger:     log,
	}
	if b.depth != nil && *b.depth >= 0 {
		opts.MaxDepth = *b.depth
	}

	walker := walk.New(b.location, opts)
	for _, location := range b.moreLocations {
		walker.Add(location)
	}

	ctx, cancel := context.WithCancel(ctx)
	results := make(chan string, resultBufferSize)
	done := make(chan struct{})
	s := &Search{
		results: results,
		cancel:  cancel,
		done:    done,
	}
	// A Search dropped without Close still releases its workers once collected.
	s.cleanup = runtime.AddCleanup(s, func(cancel context.CancelFunc) { cancel() }, cancel)
	if b.limit != nil {
		s.limit, s.hasLimit = max(*b.limit, 0), true
	}

	v := &visitor{
		ctx:      ctx,
		results:  results,
		matcher:  matcher,
		filters:  filters(slices.Clone(b.filters)),
		limit:    s.limit,
		hasLimit: s.hasLimit,
	}

	log.Debug("starting search", "location", b.location, "more_locations", len(b.moreLocations), "expression", expression, "workers", opts.Threads)
	go func() {
		defer close(done)
		defer close(results)
		if err := walker.Run(ctx, v.forWorker); err != nil && ctx.Err() == nil {
			log.Error("search walk failed", "err", err.Error())
		}
	}()

	return s, nil
}

// Next returns the next result, or false once the search is exhausted or
// the limit has been reached.
func (s *Search) Next() (string, bool) {
	if s.hasLimit && s.taken >= s.limit {
		s.Close()
		return "", false
	}

	path, ok := <-s.results
	if !ok {
		s.Close()
		return "", false
	}
	s.taken++

	return path, true
}

// All yields results as they arrive. Stopping the range early closes the
// search.
func (s *Search) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			path, ok := s.Next()
			if !ok {
				return
			}
			if !yield(path) {
				s.Close()
				return
			}
		}
	}
}

// Collect drains the search into a slice.
func (s *Search) Collect() []string {
	var paths []string
	for path := range s.All() {
		paths = append(paths, path)
	}
	return paths
}

// Close stops the search and waits for its workers to exit. It is safe to
// call more than once.
func (s *Search) Close() error {
	s.closeOnce.Do(func() {
		s.cleanup.Stop()
		s.cancel()
		<-s.done
	})
	return nil
}

// visitor holds the per-search state shared by every worker; the count of
// delivered results is kept per worker.
type visitor struct {
	ctx      context.Context
	results  chan<- string
	matcher  *regexp.Regexp
	filters  filters
	limit    int
	hasLimit bool
}

func (v *visitor) forWorker() walk.Visitor {
	delivered := 0

	return func(entry *walk.Entry) walk.State {
		if entry.IsDir() || !v.matcher.MatchString(entry.Name()) || !v.filters.apply(entry) {
			return walk.Continue
		}
		if !v.deliver(entry.Path()) {
			return walk.Quit
		}
		delivered++
		if v.hasLimit && delivered >= v.limit {
			return walk.Quit
		}

		return walk.Continue
	}
}

func (v *visitor) deliver(path string) bool {
	if v.ctx.Err() != nil {
		return false
	}
	select {
	case v.results <- path:
		return true
	case <-v.ctx.Done():
		return false
	}
}
