package wiki

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"defectscope/internal/config"
)

// fakeClient counts calls and answers from a function.
type fakeClient struct {
	calls int32
	fn    func(prompt string) (string, error)
}

func (f *fakeClient) Generate(_ context.Context, prompt string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fn != nil {
		return f.fn(prompt)
	}
	return "# Generated\n\ndocs", nil
}

func (f *fakeClient) Model() string { return "fake-model" }

func testConfig(root string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.ProjectName = "widgets"
	cfg.Targets = []config.Target{
		{Name: "Python", Pattern: "**/*.py", Template: "py.md", Category: "Code"},
	}
	templatesDir := filepath.Join(root, cfg.TemplatesDir)
	os.MkdirAll(templatesDir, 0755)
	os.WriteFile(filepath.Join(templatesDir, "py.md"),
		[]byte("Document {{filename}} of {{project}}:\n{{content}}"), 0644)
	return cfg
}

func TestRunGeneratesOnePagePerMatch(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, root, "train.py", "print('train')")
	writeFile(t, root, "scripts/eval.py", "print('eval')")
	writeFile(t, root, "notes.txt", "not matched")

	client := &fakeClient{}
	gen := NewGenerator(cfg, root, client, nil)

	result, err := gen.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Written != 2 || result.Failed != 0 || result.Skipped != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if atomic.LoadInt32(&client.calls) != 2 {
		t.Errorf("expected 2 API calls, got %d", client.calls)
	}

	// Matched files produce exactly one page each; unmatched produce none.
	wikiDir := filepath.Join(root, cfg.WikiDir)
	for _, page := range []string{"train_py.md", "scripts_eval_py.md", "Home.md"} {
		if _, err := os.Stat(filepath.Join(wikiDir, page)); err != nil {
			t.Errorf("expected page %s: %v", page, err)
		}
	}
	if _, err := os.Stat(filepath.Join(wikiDir, "notes_txt.md")); !os.IsNotExist(err) {
		t.Error("unmatched file must not produce a page")
	}
}

func TestRunPageHeadersAndFenceCleanup(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, root, "train.py", "print(1)")

	client := &fakeClient{fn: func(string) (string, error) {
		return "```markdown\n# Train\n\nbody\n```", nil
	}}
	gen := NewGenerator(cfg, root, client, nil)
	if _, err := gen.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, cfg.WikiDir, "train_py.md"))
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	if !strings.HasPrefix(page, "<!-- Category: Code -->\n<!-- Source: train.py -->\n\n") {
		t.Errorf("missing header comments:\n%s", page)
	}
	if strings.Contains(page, "```markdown") {
		t.Errorf("fence not cleaned:\n%s", page)
	}
	if !strings.Contains(page, "# Train") {
		t.Errorf("body missing:\n%s", page)
	}
}

func TestRunIdempotentOverwrite(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, root, "train.py", "print(1)")

	client := &fakeClient{}
	gen := NewGenerator(cfg, root, client, nil)

	for i := 0; i < 2; i++ {
		if _, err := gen.Run(context.Background(), Options{}); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(root, cfg.WikiDir))
	if err != nil {
		t.Fatal(err)
	}
	// train_py.md + Home.md, no duplicates.
	if len(entries) != 2 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected 2 wiki files after re-run, got %v", names)
	}
}

func TestRunPerFileFailureContinues(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, root, "bad.py", "x")
	writeFile(t, root, "good.py", "y")

	client := &fakeClient{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "bad.py") {
			return "", errors.New("api exploded")
		}
		return "# ok", nil
	}}
	gen := NewGenerator(cfg, root, client, nil)

	result, err := gen.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Written != 1 || result.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if _, err := os.Stat(filepath.Join(root, cfg.WikiDir, "good_py.md")); err != nil {
		t.Errorf("good page missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, cfg.WikiDir, "bad_py.md")); !os.IsNotExist(err) {
		t.Error("failed page must not be written")
	}
}

func TestRunEmptyResponseIsFailure(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, root, "train.py", "x")

	client := &fakeClient{fn: func(string) (string, error) { return "```markdown\n```", nil }}
	gen := NewGenerator(cfg, root, client, nil)

	result, err := gen.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("empty documentation should fail the page, got %+v", result)
	}
}

func TestRunNoTargets(t *testing.T) {
	cfg := config.DefaultConfig()
	gen := NewGenerator(cfg, t.TempDir(), &fakeClient{}, nil)
	if _, err := gen.Run(context.Background(), Options{}); !errors.Is(err, ErrNoTargets) {
		t.Errorf("expected ErrNoTargets, got %v", err)
	}
}

func TestRunDryRun(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, root, "train.py", "x")

	client := &fakeClient{}
	gen := NewGenerator(cfg, root, client, nil)

	result, err := gen.Run(context.Background(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if atomic.LoadInt32(&client.calls) != 0 {
		t.Errorf("dry run must not call the API, got %d calls", client.calls)
	}
	if result.Planned != 1 {
		t.Errorf("dry run should report planned pages, got %+v", result)
	}
	if result.Written != 0 {
		t.Errorf("dry run must not count pages as written, got %+v", result)
	}
	if _, err := os.Stat(filepath.Join(root, cfg.WikiDir)); !os.IsNotExist(err) {
		t.Error("dry run must not create the wiki dir")
	}
}

func TestRunSkipUnchanged(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	writeFile(t, root, "train.py", "print(1)")

	ledger, err := OpenLedger(filepath.Join(root, ".defectscope", "ledger.db"))
	if err != nil {
		t.Fatalf("OpenLedger failed: %v", err)
	}
	defer ledger.Close()

	client := &fakeClient{}
	gen := NewGenerator(cfg, root, client, ledger)

	if _, err := gen.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := atomic.LoadInt32(&client.calls)

	result, err := gen.Run(context.Background(), Options{SkipUnchanged: true})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if result.Skipped != 1 || result.Written != 0 {
		t.Errorf("expected unchanged file to be skipped, got %+v", result)
	}
	if atomic.LoadInt32(&client.calls) != first {
		t.Errorf("skip-unchanged must not call the API again")
	}

	// Changing the file content invalidates the hash.
	writeFile(t, root, "train.py", "print(2)")
	result, err = gen.Run(context.Background(), Options{SkipUnchanged: true})
	if err != nil {
		t.Fatalf("third run failed: %v", err)
	}
	if result.Written != 1 {
		t.Errorf("changed file must be regenerated, got %+v", result)
	}
}

func TestHomeGroupsByCategory(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	cfg.Targets = append(cfg.Targets, config.Target{
		Name: "Notebooks", Pattern: "**/*.ipynb", Template: "py.md", Category: "Analysis",
	})
	writeFile(t, root, "train.py", "x")
	writeFile(t, root, "Section_C.ipynb", "{}")

	gen := NewGenerator(cfg, root, &fakeClient{}, nil)
	if _, err := gen.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, cfg.WikiDir, "Home.md"))
	if err != nil {
		t.Fatal(err)
	}
	home := string(data)
	if !strings.Contains(home, "# widgets Documentation (AI Generated)") {
		t.Errorf("missing title:\n%s", home)
	}
	analysisIdx := strings.Index(home, "## Analysis")
	codeIdx := strings.Index(home, "## Code")
	if analysisIdx < 0 || codeIdx < 0 || analysisIdx > codeIdx {
		t.Errorf("categories missing or unsorted:\n%s", home)
	}
	if !strings.Contains(home, "(train_py.md)") || !strings.Contains(home, "(Section_C_ipynb.md)") {
		t.Errorf("page links missing:\n%s", home)
	}
}
