package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/meghashyamc/whereis/services/walk"
	"github.com/stretchr/testify/require"
)

const maxWaitForSearch = 10 * time.Second

var testFiles = map[string]string{
	"report.txt":             "quarterly",
	"report_final.txt":       "final",
	"notes.md":               "# notes",
	"empty.log":              "",
	"docs/Guide.MD":          "guide",
	"docs/nested/readme.txt": "read me",
	".config/settings.txt":   "hidden",
	"archive/old/report.txt": "old",
}

func writeTestFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	assert := require.New(t)
	root := t.TempDir()
	for relPath, content := range files {
		fullPath := filepath.Join(root, relPath)
		assert.NoError(os.MkdirAll(filepath.Dir(fullPath), 0755), "could not create test sub-directory")
		assert.NoError(os.WriteFile(fullPath, []byte(content), 0644), "could not write test file")
	}
	return root
}

// runSearch builds the search and returns the sorted paths relative to root.
func runSearch(t *testing.T, b Builder, root string) []string {
	t.Helper()
	assert := require.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitForSearch)
	defer cancel()

	s, err := b.Build(ctx)
	assert.NoError(err)

	var paths []string
	for _, path := range s.Collect() {
		rel, err := filepath.Rel(root, path)
		assert.NoError(err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	sort.Strings(paths)

	return paths
}

var searchTestCases = []struct {
	name     string
	builder  func(b Builder) Builder
	expected []string
}{
	{
		name:     "LoosePatternAndExtension",
		builder:  func(b Builder) Builder { return b.SearchInput("report").Ext("txt") },
		expected: []string{"archive/old/report.txt", "report.txt", "report_final.txt"},
	},
	{
		name:     "StrictPatternAndExtension",
		builder:  func(b Builder) Builder { return b.SearchInput("report").Ext("txt").Strict() },
		expected: []string{"archive/old/report.txt", "report.txt"},
	},
	{
		name:     "LeadingDotInExtension",
		builder:  func(b Builder) Builder { return b.SearchInput("report").Ext(".txt") },
		expected: []string{"archive/old/report.txt", "report.txt", "report_final.txt"},
	},
	{
		name:     "ExtensionOnly",
		builder:  func(b Builder) Builder { return b.Ext("md") },
		expected: []string{"notes.md"},
	},
	{
		name:     "IgnoreCase",
		builder:  func(b Builder) Builder { return b.Ext("md").IgnoreCase() },
		expected: []string{"docs/Guide.MD", "notes.md"},
	},
	{
		name:     "Hidden",
		builder:  func(b Builder) Builder { return b.SearchInput("settings").Hidden() },
		expected: []string{".config/settings.txt"},
	},
	{
		name:     "HiddenExcludedByDefault",
		builder:  func(b Builder) Builder { return b.SearchInput("settings") },
		expected: nil,
	},
	{
		name:     "DepthOne",
		builder:  func(b Builder) Builder { return b.Ext("txt").Depth(1) },
		expected: []string{"report.txt", "report_final.txt"},
	},
	{
		name:     "DepthZero",
		builder:  func(b Builder) Builder { return b.Depth(0) },
		expected: nil,
	},
	{
		name:     "NegativeDepthIsUnbounded",
		builder:  func(b Builder) Builder { return b.Ext("txt").Depth(-1) },
		expected: []string{"archive/old/report.txt", "docs/nested/readme.txt", "report.txt", "report_final.txt"},
	},
	{
		name:     "NoPatternMatchesEverything",
		builder:  func(b Builder) Builder { return b },
		expected: []string{"archive/old/report.txt", "docs/Guide.MD", "docs/nested/readme.txt", "empty.log", "notes.md", "report.txt", "report_final.txt"},
	},
	{
		name:     "SizeGreaterThanZeroExcludesEmptyFile",
		builder:  func(b Builder) Builder { return b.Ext("log").FileSizeGreater(Bytes(0)) },
		expected: nil,
	},
	{
		name:     "SizeEqualZeroFindsEmptyFile",
		builder:  func(b Builder) Builder { return b.FileSizeEqual(Bytes(0)) },
		expected: []string{"empty.log"},
	},
	{
		name:     "SizeSmaller",
		builder:  func(b Builder) Builder { return b.Ext("txt").FileSizeSmaller(Bytes(4)) },
		expected: []string{"archive/old/report.txt"},
	},
	{
		name: "CustomFilter",
		builder: func(b Builder) Builder {
			return b.CustomFilter(func(entry *walk.Entry) bool {
				return strings.Contains(filepath.ToSlash(entry.Path()), "/docs/")
			})
		},
		expected: []string{"docs/Guide.MD", "docs/nested/readme.txt"},
	},
	{
		name: "FiltersCombineWithAnd",
		builder: func(b Builder) Builder {
			return b.Ext("txt").
				FileSizeGreater(Bytes(3)).
				CustomFilter(func(entry *walk.Entry) bool { return !strings.HasPrefix(entry.Name(), "report") })
		},
		expected: []string{"docs/nested/readme.txt"},
	},
}

func TestSearch(t *testing.T) {
	root := writeTestFiles(t, testFiles)

	for _, testCase := range searchTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			b := testCase.builder(NewBuilder().Location(root))

			assert.Equal(testCase.expected, runSearch(t, b, root))
		})
	}
}

func TestSearchSizeFilterOnNonEmptyFile(t *testing.T) {
	assert := require.New(t)
	root := writeTestFiles(t, map[string]string{"full.log": "x", "empty.log": ""})

	paths := runSearch(t, NewBuilder().Location(root).FileSizeGreater(Bytes(0)), root)

	assert.Equal([]string{"full.log"}, paths)
}

func TestSearchModifiedFilters(t *testing.T) {
	assert := require.New(t)
	root := writeTestFiles(t, map[string]string{"old.txt": "o", "new.txt": "n"})

	reference := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	oldTime := reference.Add(-24 * time.Hour)
	assert.NoError(os.Chtimes(filepath.Join(root, "old.txt"), oldTime, oldTime))
	assert.NoError(os.Chtimes(filepath.Join(root, "new.txt"), reference, reference))

	base := NewBuilder().Location(root)
	assert.Equal([]string{"old.txt"}, runSearch(t, base.ModifiedBefore(reference), root))
	assert.Equal([]string{"new.txt"}, runSearch(t, base.ModifiedAt(reference), root))
	assert.Equal([]string{"new.txt"}, runSearch(t, base.ModifiedAfter(oldTime), root))
}

func TestSearchCreatedFilters(t *testing.T) {
	assert := require.New(t)
	root := writeTestFiles(t, map[string]string{"a.txt": "a", "d/b.txt": "b"})

	var unavailable atomic.Bool
	detectCreated := NewBuilder().Location(root).CustomFilter(func(entry *walk.Entry) bool {
		if _, err := entry.Created(); errors.Is(err, walk.ErrCreationTimeUnavailable) {
			unavailable.Store(true)
		}
		return true
	})
	assert.Len(runSearch(t, detectCreated, root), 2)
	if unavailable.Load() {
		t.Skip("file system does not record creation times")
	}

	hourAgo := time.Now().Add(-time.Hour)
	hourAhead := time.Now().Add(time.Hour)
	base := NewBuilder().Location(root)
	assert.Equal([]string{"a.txt", "d/b.txt"}, runSearch(t, base.CreatedAfter(hourAgo), root))
	assert.Equal([]string{"a.txt", "d/b.txt"}, runSearch(t, base.CreatedBefore(hourAhead), root))
	assert.Nil(runSearch(t, base.CreatedBefore(hourAgo), root))
	assert.Nil(runSearch(t, base.CreatedAfter(hourAhead), root))
	assert.Nil(runSearch(t, base.CreatedAt(hourAgo), root))
}

func TestSearchMoreLocations(t *testing.T) {
	assert := require.New(t)
	first := writeTestFiles(t, map[string]string{"a.txt": "a"})
	second := writeTestFiles(t, map[string]string{"b.txt": "b"})
	third := writeTestFiles(t, map[string]string{"c.txt": "c"})

	s, err := NewBuilder().Location(first).MoreLocations([]string{second, third}).Ext("txt").Build(context.Background())
	assert.NoError(err)

	var names []string
	for _, path := range s.Collect() {
		names = append(names, filepath.Base(path))
	}
	sort.Strings(names)

	assert.Equal([]string{"a.txt", "b.txt", "c.txt"}, names)
}

func manyFiles(count int) map[string]string {
	files := make(map[string]string, count)
	for i := range count {
		files[fmt.Sprintf("dir%02d/file%04d.txt", i%16, i)] = "x"
	}
	return files
}

func TestSearchLimit(t *testing.T) {
	root := writeTestFiles(t, manyFiles(300))

	for _, limit := range []int{0, 1, 5, 64, 299, 300, 500} {
		t.Run(fmt.Sprintf("Limit%d", limit), func(t *testing.T) {
			assert := require.New(t)

			paths := runSearch(t, NewBuilder().Location(root).Ext("txt").Limit(limit), root)

			assert.Len(paths, min(limit, 300))
		})
	}
}

func TestSearchNextAfterLimitReturnsNothing(t *testing.T) {
	assert := require.New(t)
	root := writeTestFiles(t, manyFiles(50))

	s, err := NewBuilder().Location(root).Limit(2).Build(context.Background())
	assert.NoError(err)

	_, ok := s.Next()
	assert.True(ok)
	_, ok = s.Next()
	assert.True(ok)
	_, ok = s.Next()
	assert.False(ok)
	_, ok = s.Next()
	assert.False(ok)
}

func TestSearchCloseWithoutConsuming(t *testing.T) {
	assert := require.New(t)
	root := writeTestFiles(t, manyFiles(3000))

	s, err := NewBuilder().Location(root).Build(context.Background())
	assert.NoError(err)

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(maxWaitForSearch):
		assert.Fail("closing an unconsumed search did not stop its workers")
	}

	assert.NoError(s.Close(), "closing twice must be harmless")
}

func TestSearchBreakingRangeStopsWorkers(t *testing.T) {
	assert := require.New(t)
	root := writeTestFiles(t, manyFiles(3000))

	s, err := NewBuilder().Location(root).Build(context.Background())
	assert.NoError(err)

	count := 0
	for range s.All() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(3, count)

	select {
	case <-s.done:
	case <-time.After(maxWaitForSearch):
		assert.Fail("workers still running after the range was abandoned")
	}
}

// startUnconsumedSearch returns only the done channel so the Search itself
// becomes unreachable.
func startUnconsumedSearch(t *testing.T, root string) <-chan struct{} {
	t.Helper()
	s, err := NewBuilder().Location(root).Build(context.Background())
	require.NoError(t, err)
	return s.done
}

func TestSearchDroppedWithoutCloseStopsWorkers(t *testing.T) {
	assert := require.New(t)
	root := writeTestFiles(t, manyFiles(3000))

	done := startUnconsumedSearch(t, root)

	deadline := time.After(maxWaitForSearch)
	for {
		runtime.GC()
		select {
		case <-done:
			return
		case <-deadline:
			assert.Fail("workers of a dropped search were never released")
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSearchContextCancellation(t *testing.T) {
	assert := require.New(t)
	root := writeTestFiles(t, manyFiles(3000))

	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewBuilder().Location(root).Build(ctx)
	assert.NoError(err)
	cancel()

	finished := make(chan []string)
	go func() { finished <- s.Collect() }()

	select {
	case paths := <-finished:
		assert.Less(len(paths), 3000+1)
	case <-time.After(maxWaitForSearch):
		assert.Fail("search did not finish after its context was cancelled")
	}
}

func TestSearchIsRepeatable(t *testing.T) {
	assert := require.New(t)
	root := writeTestFiles(t, testFiles)
	b := NewBuilder().Location(root).Ext("txt")

	first := runSearch(t, b, root)
	second := runSearch(t, b, root)

	assert.NotEmpty(first)
	assert.Equal(first, second)
}

func TestSearchInvalidPattern(t *testing.T) {
	assert := require.New(t)

	s, err := NewBuilder().Location(t.TempDir()).SearchInput("report(").Build(context.Background())
	assert.Nil(s)
	assert.True(errors.Is(err, ErrInvalidPattern))

	_, err = NewBuilder().Location(t.TempDir()).Ext("c++").Build(context.Background())
	assert.ErrorIs(err, ErrInvalidPattern)
}

func TestSearchMissingLocation(t *testing.T) {
	assert := require.New(t)
	root := filepath.Join(t.TempDir(), "missing")

	paths := runSearch(t, NewBuilder().Location(root), root)

	assert.Empty(paths)
}

func TestSearchWithMatcherCache(t *testing.T) {
	assert := require.New(t)
	root := writeTestFiles(t, testFiles)
	cache, err := NewMatcherCache(4)
	assert.NoError(err)

	b := NewBuilder().Location(root).SearchInput("report").Ext("txt").Strict().WithMatcherCache(cache)
	assert.Len(runSearch(t, b, root), 2)
	assert.Len(runSearch(t, b, root), 2)
	assert.Equal(1, cache.Len())
}
