// Package wiki implements the documentation generator: scanning the
// repository for configured targets, rendering prompt templates, calling
// Gemini, and writing the resulting Markdown pages.
package wiki

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"defectscope/internal/logging"
)

// ErrTemplateNotFound is returned when a target names a template that does
// not exist in the templates directory.
var ErrTemplateNotFound = errors.New("template not found")

// genericTemplate is the fallback prompt when a configured template is
// missing. It keeps a run going rather than failing the whole batch.
const genericTemplate = "You are a technical documentation expert. " +
	"Write comprehensive documentation in Markdown format for the file " +
	"'{{filename}}' from the project '{{project}}'.\n\n" +
	"File content:\n```text\n{{content}}\n```"

// TemplateStore loads prompt templates from a directory.
type TemplateStore struct {
	dir string
	log *logging.Logger
}

// NewTemplateStore creates a store rooted at dir.
func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{dir: dir, log: logging.Get(logging.CategoryWiki)}
}

// Load returns the template text for name. When the file is missing it
// falls back to the built-in generic template with a warning, matching the
// original pipeline's behavior.
func (s *TemplateStore) Load(name string) string {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("template %s not found, using generic fallback: %v", name, err)
		return genericTemplate
	}
	return string(data)
}

// Exists reports whether a template file is present. Discovery uses this to
// refuse to configure targets whose template is missing.
func (s *TemplateStore) Exists(name string) bool {
	info, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil && !info.IsDir()
}

// Names lists the template files in the store.
func (s *TemplateStore) Names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read templates dir %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// RenderPrompt substitutes the placeholder markers into a template.
// Substitution is literal; prompts are plain text, not HTML, so no
// escaping is wanted. Content is truncated to maxContentBytes first.
func RenderPrompt(template, project, filename, content string, maxContentBytes int) string {
	content = Truncate(content, maxContentBytes)
	out := strings.ReplaceAll(template, "{{filename}}", filename)
	out = strings.ReplaceAll(out, "{{content}}", content)
	out = strings.ReplaceAll(out, "{{project}}", project)
	return out
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := s[:n]
	// Back off the bytes of a rune split by the cut, lead byte included.
	for len(cut) > 0 {
		if r, size := utf8.DecodeLastRuneInString(cut); r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}
