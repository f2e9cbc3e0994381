package search

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/meghashyamc/whereis/logger"
)

// Builder describes a search. Every method returns an updated copy, so a
// base Builder can be shared and branched freely; nothing touches the file
// system until Build.
type Builder struct {
	location      string
	moreLocations []string
	searchInput   *string
	ext           *string
	depth         *int
	limit         *int
	strict        bool
	ignoreCase    bool
	hidden        bool
	filters       []Filter

	logger   logger.Logger
	matchers *MatcherCache
}

// NewBuilder returns a search over the current working directory that
// matches every file.
func NewBuilder() Builder {
	location, err := os.Getwd()
	if err != nil {
		location = "."
	}

	return Builder{location: location}
}

func (b Builder) Location(path string) Builder {
	b.location = expandHome(path)
	return b
}

func (b Builder) MoreLocations(paths []string) Builder {
	b.moreLocations = make([]string, 0, len(paths))
	for _, path := range paths {
		b.moreLocations = append(b.moreLocations, expandHome(path))
	}
	return b
}

func (b Builder) SearchInput(input string) Builder {
	b.searchInput = &input
	return b
}

// Ext sets the extension; one leading dot is dropped.
func (b Builder) Ext(ext string) Builder {
	ext = strings.TrimPrefix(ext, ".")
	b.ext = &ext
	return b
}

// Depth bounds how far below the locations the search descends; 1 covers
// only their direct children. A negative depth removes the bound.
func (b Builder) Depth(depth int) Builder {
	b.depth = &depth
	return b
}

func (b Builder) Limit(limit int) Builder {
	b.limit = &limit
	return b
}

func (b Builder) Strict() Builder {
	b.strict = true
	return b
}

func (b Builder) IgnoreCase() Builder {
	b.ignoreCase = true
	return b
}

func (b Builder) Hidden() Builder {
	b.hidden = true
	return b
}

func (b Builder) Filter(filter Filter) Builder {
	b.filters = append(slices.Clip(b.filters), filter)
	return b
}

func (b Builder) CreatedBefore(t time.Time) Builder {
	return b.Filter(CreatedFilter(Less, t))
}

func (b Builder) CreatedAt(t time.Time) Builder {
	return b.Filter(CreatedFilter(Equal, t))
}

func (b Builder) CreatedAfter(t time.Time) Builder {
	return b.Filter(CreatedFilter(Greater, t))
}

func (b Builder) ModifiedBefore(t time.Time) Builder {
	return b.Filter(ModifiedFilter(Less, t))
}

func (b Builder) ModifiedAt(t time.Time) Builder {
	return b.Filter(ModifiedFilter(Equal, t))
}

func (b Builder) ModifiedAfter(t time.Time) Builder {
	return b.Filter(ModifiedFilter(Greater, t))
}

func (b Builder) FileSizeSmaller(size FileSize) Builder {
	return b.Filter(FileSizeFilter(Less, size))
}

func (b Builder) FileSizeEqual(size FileSize) Builder {
	return b.Filter(FileSizeFilter(Equal, size))
}

func (b Builder) FileSizeGreater(size FileSize) Builder {
	return b.Filter(FileSizeFilter(Greater, size))
}

func (b Builder) CustomFilter(f FilterFunc) Builder {
	return b.Filter(CustomFilter(f))
}

func (b Builder) WithLogger(logger logger.Logger) Builder {
	b.logger = logger
	return b
}

// WithMatcherCache shares compiled file-name expressions between searches.
func (b Builder) WithMatcherCache(cache *MatcherCache) Builder {
	b.matchers = cache
	return b
}

// Expression returns the file-name expression the search will compile.
func (b Builder) Expression() string {
	return composeExpression(b.searchInput, b.ext, b.strict, b.ignoreCase)
}

// Build compiles the search and starts it. The returned Search must be
// drained or closed.
func (b Builder) Build(ctx context.Context) (*Search, error) {
	return newSearch(ctx, b)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
