package walk

import (
	"errors"
	"io/fs"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

var ignoreFileNames = []string{".gitignore", ".ignore"}

type ignoreRule struct {
	base    string
	matcher *gitignore.GitIgnore
}

// loadIgnoreRules returns parent extended with the ignore files found
// directly inside dir. parent is never modified.
func (w *Walker) loadIgnoreRules(dir string, parent []ignoreRule) []ignoreRule {
	rules := parent
	for _, name := range ignoreFileNames {
		ignorePath := filepath.Join(dir, name)
		matcher, err := gitignore.CompileIgnoreFile(ignorePath)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				w.logger.Debug("could not read ignore file", "path", ignorePath, "err", err.Error())
			}
			continue
		}
		if len(rules) == len(parent) {
			rules = append(make([]ignoreRule, 0, len(parent)+1), parent...)
		}
		rules = append(rules, ignoreRule{base: dir, matcher: matcher})
	}

	return rules
}

func isIgnored(rules []ignoreRule, path string, isDir bool) bool {
	for _, rule := range rules {
		rel, err := filepath.Rel(rule.base, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rule.matcher.MatchesPath(rel) {
			return true
		}
		if isDir && rule.matcher.MatchesPath(rel+"/") {
			return true
		}
	}

	return false
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}
