package wiki

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"defectscope/internal/config"
	"defectscope/internal/gemini"
	"defectscope/internal/logging"
)

// ErrNoTargets is returned when the config declares no targets; running the
// generator would silently do nothing, which is almost always a mistake.
var ErrNoTargets = errors.New("no targets configured")

// Options tune a generation run.
type Options struct {
	// SkipUnchanged consults the ledger and skips files whose content hash
	// has not changed since their page was generated.
	SkipUnchanged bool

	// DryRun lists the pages a run would produce without calling the API
	// or writing anything.
	DryRun bool
}

// PageResult describes the outcome for one (file, target) pair.
type PageResult struct {
	Source   string // relative source path
	Target   string
	Category string
	PagePath string
	Skipped  bool
	Err      error
}

// RunResult summarizes a generation run. On a dry run pages are tallied as
// Planned rather than Written.
type RunResult struct {
	RunID   string
	Pages   []PageResult
	Written int
	Planned int
	Failed  int
	Skipped int
}

// Generator orchestrates a documentation run.
type Generator struct {
	cfg       *config.Config
	root      string
	client    gemini.Client
	templates *TemplateStore
	ledger    *Ledger // nil disables the run ledger
	log       *logging.Logger
}

// NewGenerator wires a generator. ledger may be nil.
func NewGenerator(cfg *config.Config, root string, client gemini.Client, ledger *Ledger) *Generator {
	return &Generator{
		cfg:       cfg,
		root:      root,
		client:    client,
		templates: NewTemplateStore(filepath.Join(root, cfg.TemplatesDir)),
		ledger:    ledger,
		log:       logging.Get(logging.CategoryWiki),
	}
}

// Run scans the repository and generates one page per (file, target) match.
// Per-file failures are recorded and skipped; the run continues. The error
// return is reserved for run-level problems (no targets, unreadable tree).
func (g *Generator) Run(ctx context.Context, opts Options) (*RunResult, error) {
	if len(g.cfg.Targets) == 0 {
		return nil, ErrNoTargets
	}

	scanner := NewScanner(g.root, g.cfg.IgnorePatterns)
	matches, err := scanner.Scan(g.cfg.Targets)
	if err != nil {
		return nil, fmt.Errorf("repository scan failed: %w", err)
	}

	result := &RunResult{
		RunID: uuid.NewString(),
		Pages: make([]PageResult, len(matches)),
	}
	if g.ledger != nil && !opts.DryRun {
		if err := g.ledger.BeginRun(result.RunID); err != nil {
			g.log.Warn("ledger: %v", err)
		}
	}

	wikiDir := filepath.Join(g.root, g.cfg.WikiDir)
	if !opts.DryRun {
		if err := os.MkdirAll(wikiDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create wiki dir: %w", err)
		}
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.cfg.Gemini.MaxConcurrent)

	for i, m := range matches {
		i, m := i, m
		grp.Go(func() error {
			result.Pages[i] = g.processOne(gctx, m, wikiDir, result.RunID, opts)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	for _, p := range result.Pages {
		switch {
		case p.Err != nil:
			result.Failed++
		case p.Skipped:
			result.Skipped++
		case opts.DryRun:
			result.Planned++
		default:
			result.Written++
		}
	}

	if !opts.DryRun {
		if err := g.writeHome(wikiDir, result); err != nil {
			g.log.Error("failed to write Home.md: %v", err)
		}
		if g.ledger != nil {
			if err := g.ledger.FinishRun(result.RunID, result.Written, result.Failed, result.Skipped); err != nil {
				g.log.Warn("ledger: %v", err)
			}
		}
	}

	if opts.DryRun {
		g.log.Info("dry run %s: %d pages would be written, %d skipped, %d failed",
			result.RunID, result.Planned, result.Skipped, result.Failed)
	} else {
		g.log.Info("run %s: %d written, %d skipped, %d failed",
			result.RunID, result.Written, result.Skipped, result.Failed)
	}
	return result, nil
}

// processOne generates the page for a single match.
func (g *Generator) processOne(ctx context.Context, m Match, wikiDir, runID string, opts Options) PageResult {
	res := PageResult{
		Source:   m.Rel,
		Target:   m.Target.Name,
		Category: category(m.Target),
		PagePath: filepath.Join(wikiDir, FlatPageName(m.Rel)),
	}

	content, err := os.ReadFile(m.Path)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", m.Rel, err)
		g.log.Error("%v", res.Err)
		return res
	}
	hash := hashContent(content)

	if opts.SkipUnchanged && g.ledger != nil {
		rec, found, err := g.ledger.Lookup(m.Rel, m.Target.Name)
		if err != nil {
			g.log.Warn("ledger lookup for %s: %v", m.Rel, err)
		} else if found && rec.ContentHash == hash && pageExists(res.PagePath) {
			g.log.Debug("skipping %s (unchanged)", m.Rel)
			res.Skipped = true
			return res
		}
	}

	if opts.DryRun {
		return res
	}

	template := g.templates.Load(m.Target.Template)
	prompt := RenderPrompt(template, g.cfg.ProjectName, m.Rel, string(content), g.cfg.Gemini.MaxContentBytes)

	g.log.Info("generating %s using %s", m.Rel, m.Target.Template)
	raw, err := g.client.Generate(ctx, prompt)
	if err != nil {
		res.Err = fmt.Errorf("generation failed for %s: %w", m.Rel, err)
		g.log.Error("%v", res.Err)
		return res
	}

	page := gemini.CleanMarkdown(raw)
	if page == "" {
		res.Err = fmt.Errorf("empty documentation returned for %s", m.Rel)
		g.log.Error("%v", res.Err)
		return res
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<!-- Category: %s -->\n", res.Category)
	fmt.Fprintf(&b, "<!-- Source: %s -->\n\n", m.Rel)
	b.WriteString(page)
	b.WriteString("\n")

	if err := os.WriteFile(res.PagePath, []byte(b.String()), 0644); err != nil {
		res.Err = fmt.Errorf("failed to write page for %s: %w", m.Rel, err)
		g.log.Error("%v", res.Err)
		return res
	}

	if g.ledger != nil {
		err := g.ledger.Record(PageRecord{
			SourcePath:  m.Rel,
			TargetName:  m.Target.Name,
			ContentHash: hash,
			PagePath:    res.PagePath,
			Model:       g.client.Model(),
			RunID:       runID,
			GeneratedAt: time.Now(),
		})
		if err != nil {
			g.log.Warn("ledger: %v", err)
		}
	}
	return res
}

// writeHome assembles Home.md, grouping the run's pages by category.
func (g *Generator) writeHome(wikiDir string, result *RunResult) error {
	byCategory := make(map[string][]PageResult)
	for _, p := range result.Pages {
		if p.Err != nil {
			continue
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Documentation (AI Generated)\n\n", g.cfg.ProjectName)
	b.WriteString("Welcome to the AI-generated documentation.\n")

	for _, c := range categories {
		fmt.Fprintf(&b, "\n## %s\n\n", c)
		pages := byCategory[c]
		sort.Slice(pages, func(i, j int) bool { return pages[i].Source < pages[j].Source })
		for _, p := range pages {
			fmt.Fprintf(&b, "- [%s](%s)\n", p.Source, filepath.Base(p.PagePath))
		}
	}

	return os.WriteFile(filepath.Join(wikiDir, "Home.md"), []byte(b.String()), 0644)
}

// FlatPageName converts a source path into a flat wiki page name: path
// separators and dots become underscores, so "pkg/a.go" -> "pkg_a_go.md".
// Wikis are flat; hierarchy is kept in the name.
func FlatPageName(rel string) string {
	flat := strings.NewReplacer("\\", "_", "/", "_", ".", "_").Replace(rel)
	return flat + ".md"
}

func category(t config.Target) string {
	if t.Category == "" {
		return "General"
	}
	return t.Category
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func pageExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
