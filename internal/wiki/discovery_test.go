package wiki

import (
	"os"
	"path/filepath"
	"testing"

	"defectscope/internal/config"
)

func discoveryConfig(root string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.AutoDiscovery = map[string]config.DiscoveryRule{
		".ipynb": {Template: "notebook.md", Category: "Analysis", TargetName: "Notebooks"},
		".py":    {Template: "source.md", Category: "Code"},
		".rs":    {Template: "missing.md", Category: "Code"},
	}
	templatesDir := filepath.Join(root, cfg.TemplatesDir)
	os.MkdirAll(templatesDir, 0755)
	os.WriteFile(filepath.Join(templatesDir, "notebook.md"), []byte("{{content}}"), 0644)
	os.WriteFile(filepath.Join(templatesDir, "source.md"), []byte("{{content}}"), 0644)
	return cfg
}

func TestDiscoverAddsTargets(t *testing.T) {
	root := t.TempDir()
	cfg := discoveryConfig(root)
	writeFile(t, root, "Section_C.ipynb", "{}")
	writeFile(t, root, "scripts/train.py", "x")

	added, err := Discover(cfg, root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 added targets, got %+v", added)
	}

	// Sorted by extension: .ipynb before .py.
	if added[0].Name != "Notebooks" || added[0].Pattern != "**/*.ipynb" {
		t.Errorf("unexpected first target: %+v", added[0])
	}
	if added[1].Name != "Files (.py)" || added[1].Pattern != "**/*.py" {
		t.Errorf("unexpected default-named target: %+v", added[1])
	}
	if len(cfg.Targets) != 2 {
		t.Errorf("targets not appended to config: %+v", cfg.Targets)
	}
}

func TestDiscoverSkipsMissingTemplate(t *testing.T) {
	root := t.TempDir()
	cfg := discoveryConfig(root)
	writeFile(t, root, "main.rs", "fn main() {}")

	added, err := Discover(cfg, root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	for _, target := range added {
		if target.Template == "missing.md" {
			t.Errorf("target with missing template must not be added: %+v", target)
		}
	}
}

func TestDiscoverIdempotent(t *testing.T) {
	root := t.TempDir()
	cfg := discoveryConfig(root)
	writeFile(t, root, "Section_C.ipynb", "{}")

	if _, err := Discover(cfg, root); err != nil {
		t.Fatal(err)
	}
	before := len(cfg.Targets)

	added, err := Discover(cfg, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Errorf("second discovery must add nothing, got %+v", added)
	}
	if len(cfg.Targets) != before {
		t.Errorf("targets changed on rerun: %d -> %d", before, len(cfg.Targets))
	}
}

func TestDiscoverAbsentExtension(t *testing.T) {
	root := t.TempDir()
	cfg := discoveryConfig(root)
	writeFile(t, root, "README.txt", "no matching extensions here")

	added, err := Discover(cfg, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Errorf("no rule extension present, expected no targets, got %+v", added)
	}
}

func TestDiscoverNoRules(t *testing.T) {
	cfg := config.DefaultConfig()
	added, err := Discover(cfg, t.TempDir())
	if err != nil || added != nil {
		t.Errorf("expected no-op, got added=%v err=%v", added, err)
	}
}
