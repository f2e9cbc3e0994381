package search

import (
	"errors"
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultSearchInput = `\w+`

var ErrInvalidPattern = errors.New("invalid search pattern")

type InvalidPatternError struct {
	Expression string
	Err        error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid search pattern %q: %s", e.Expression, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }

func (e *InvalidPatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// MatcherCache keeps recently compiled file-name expressions so repeated
// searches with the same pattern skip compilation. Safe for concurrent use.
type MatcherCache struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

func NewMatcherCache(size int) (*MatcherCache, error) {
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		return nil, err
	}
	return &MatcherCache{cache: c}, nil
}

func (c *MatcherCache) Len() int {
	return c.cache.Len()
}

func (c *MatcherCache) compile(expression string) (*regexp.Regexp, error) {
	if matcher, ok := c.cache.Get(expression); ok {
		return matcher, nil
	}
	matcher, err := compileExpression(expression)
	if err != nil {
		return nil, err
	}
	c.cache.Add(expression, matcher)

	return matcher, nil
}

// composeExpression builds the file-name expression for a search. An absent
// extension matches any extension (or none); with neither an input nor an
// extension every non-empty name matches.
func composeExpression(input *string, ext *string, strict bool, ignoreCase bool) string {
	var expression string

	switch {
	case input == nil && ext == nil:
		expression = `.+`
	case ext == nil:
		if strict {
			expression = patternOrDefault(input) + `(\..*)?$`
		} else {
			expression = patternOrDefault(input)
		}
	default:
		if strict {
			expression = patternOrDefault(input) + `\.` + *ext + `$`
		} else {
			expression = patternOrDefault(input) + `.*\.` + *ext + `$`
		}
	}

	if ignoreCase {
		expression = "(?i)" + expression
	}

	return expression
}

func patternOrDefault(input *string) string {
	if input == nil {
		return defaultSearchInput
	}
	return *input
}

func compileExpression(expression string) (*regexp.Regexp, error) {
	matcher, err := regexp.Compile(expression)
	if err != nil {
		return nil, &InvalidPatternError{Expression: expression, Err: err}
	}
	return matcher, nil
}
