package search

import (
	"cmp"
	"path/filepath"
	"slices"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Metric scores two strings between 0 (unrelated) and 1 (identical).
type Metric interface {
	Compare(a, b string) float64
}

func defaultMetric() Metric {
	return metrics.NewJaroWinkler()
}

// SimilaritySort orders paths in place, most similar file name to query
// first. Paths with equal scores keep their relative order.
func SimilaritySort(paths []string, query string) {
	SimilaritySortWith(paths, query, defaultMetric())
}

func SimilaritySortWith(paths []string, query string, metric Metric) {
	lower := cases.Lower(language.Und)
	query = lower.String(query)

	type scored struct {
		path  string
		score float64
	}
	ranked := make([]scored, len(paths))
	for i, path := range paths {
		name := lower.String(filepath.Base(path))
		ranked[i] = scored{path: path, score: strutil.Similarity(name, query, metric)}
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	for i := range ranked {
		paths[i] = ranked[i].path
	}
}
