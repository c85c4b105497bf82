package wiki

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"defectscope/internal/config"
	"defectscope/internal/logging"
)

// Match pairs a discovered file with the target that claimed it.
type Match struct {
	Path   string // absolute path
	Rel    string // path relative to the scan root, slash-separated
	Target config.Target
}

// Scanner walks the repository and matches files against configured targets.
type Scanner struct {
	root           string
	ignorePatterns []string
	log            *logging.Logger
}

// Hidden directories that still hold documentable content. Everything else
// starting with a dot is skipped.
var allowedHiddenDirs = map[string]bool{
	".github": true,
	".ai-docs": false, // config and templates, never documented
	".git":     false,
	".defectscope": false,
}

// NewScanner creates a scanner rooted at root.
func NewScanner(root string, ignorePatterns []string) *Scanner {
	return &Scanner{
		root:           root,
		ignorePatterns: ignorePatterns,
		log:            logging.Get(logging.CategoryWiki),
	}
}

// Scan walks the tree once and returns matches for all targets, in
// deterministic (path, target) order. A file matching several targets
// yields one match per target; a file matching none yields nothing.
func (s *Scanner) Scan(targets []config.Target) ([]Match, error) {
	timer := logging.StartTimer(logging.CategoryWiki, "Scan")
	defer timer.Stop()

	var files []string
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			name := info.Name()
			if rel == "." {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				if allow, exists := allowedHiddenDirs[name]; !exists || !allow {
					return filepath.SkipDir
				}
				return nil
			}
			if s.ignored(rel, name) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.ignored(rel, info.Name()) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var matches []Match
	for _, rel := range files {
		for _, target := range targets {
			if MatchesPattern(target.Pattern, rel) {
				matches = append(matches, Match{
					Path:   filepath.Join(s.root, filepath.FromSlash(rel)),
					Rel:    rel,
					Target: target,
				})
			}
		}
	}

	s.log.Info("scan of %s: %d files, %d matches across %d targets",
		s.root, len(files), len(matches), len(targets))
	return matches, nil
}

// ignored reports whether a path is excluded by the ignore patterns.
// Patterns are matched against the basename, the relative path, and each
// directory component, so plain names like "node_modules" work anywhere.
func (s *Scanner) ignored(rel, base string) bool {
	for _, pattern := range s.ignorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		for _, part := range strings.Split(rel, "/") {
			if matched, _ := filepath.Match(pattern, part); matched {
				return true
			}
		}
	}
	return false
}

// MatchesPattern reports whether a slash-separated relative path matches a
// target pattern. Patterns use filepath.Match syntax with one extension:
// a leading "**/" makes the remainder match at any depth, including the
// root, so "**/*.ipynb" claims notebooks anywhere in the tree.
func MatchesPattern(pattern, rel string) bool {
	pattern = filepath.ToSlash(pattern)

	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		if matched, _ := filepath.Match(rest, filepath.Base(rel)); matched {
			return true
		}
		// Also allow the remainder to match a path suffix, for patterns
		// like "**/scripts/*.py".
		parts := strings.Split(rel, "/")
		for i := range parts {
			suffix := strings.Join(parts[i:], "/")
			if matched, _ := filepath.Match(rest, suffix); matched {
				return true
			}
		}
		return false
	}

	matched, _ := filepath.Match(pattern, rel)
	return matched
}

// ScanExtensions walks the tree and reports which of the given extensions
// occur in it. Extensions are compared longest-first so compound suffixes
// like ".test.js" win over ".js".
func (s *Scanner) ScanExtensions(extensions []string) (map[string]bool, error) {
	sorted := make([]string, len(extensions))
	copy(sorted, extensions)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	found := make(map[string]bool)
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			name := info.Name()
			if rel == "." {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				if allow, exists := allowedHiddenDirs[name]; !exists || !allow {
					return filepath.SkipDir
				}
				return nil
			}
			if s.ignored(rel, name) {
				return filepath.SkipDir
			}
			return nil
		}

		lower := strings.ToLower(info.Name())
		for _, ext := range sorted {
			if strings.HasSuffix(lower, ext) {
				found[ext] = true
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
