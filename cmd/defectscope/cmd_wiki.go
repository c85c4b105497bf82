package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"defectscope/internal/gemini"
	"defectscope/internal/wiki"
)

var (
	wikiSkipUnchanged bool
	wikiDryRun        bool
	wikiWatch         bool
	wikiNoPull        bool
	wikiRemote        string
)

// wikiCmd groups the documentation generation commands
var wikiCmd = &cobra.Command{
	Use:   "wiki",
	Short: "Generate and publish AI-written documentation",
}

// wikiGenerateCmd runs the generation pipeline over the repository
var wikiGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate wiki pages for files matching the configured targets",
	Long: `Scans the workspace for files matching the target patterns in the
config, renders a prompt per file from its template, sends it to the
Gemini API and writes the response as a wiki page. Pages are grouped by
category in Home.md.

With --watch the command keeps running and regenerates whenever a
matching source file changes.`,
	RunE: runWikiGenerate,
}

// wikiDiscoverCmd adds targets for extensions found in the repo
var wikiDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Add wiki targets for file extensions found in the workspace",
	RunE:  runWikiDiscover,
}

// wikiPublishCmd commits and pushes the wiki directory
var wikiPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Commit and push the generated wiki to its git remote",
	RunE:  runWikiPublish,
}

// wikiPreviewCmd renders a generated page in the terminal
var wikiPreviewCmd = &cobra.Command{
	Use:   "preview [page]",
	Short: "Render a generated wiki page in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runWikiPreview,
}

func runWikiGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	timeout, err := cfg.Gemini.ParsedTimeout()
	if err != nil {
		return err
	}
	client := gemini.NewClient(gemini.Config{
		APIKey:          cfg.Gemini.APIKey,
		BaseURL:         cfg.Gemini.BaseURL,
		Model:           cfg.Model,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		Timeout:         timeout,
	})

	ledger, err := wiki.OpenLedger(filepath.Join(workspace, ".defectscope", "wiki.db"))
	if err != nil {
		return fmt.Errorf("failed to open run ledger: %w", err)
	}
	defer ledger.Close()

	generator := wiki.NewGenerator(cfg, workspace, client, ledger)
	opts := wiki.Options{SkipUnchanged: wikiSkipUnchanged, DryRun: wikiDryRun}

	// A failed pull is reported but never blocks generation.
	if !wikiNoPull && !wikiDryRun && cfg.Publish.Remote != "" {
		publisher := wiki.NewPublisher(cfg.Publish, filepath.Join(workspace, cfg.WikiDir))
		if err := publisher.Pull(ctx); err != nil {
			logger.Warn("Wiki pull failed, continuing with local state", zap.Error(err))
		}
	}

	runOnce := func(ctx context.Context) {
		result, err := generator.Run(ctx, opts)
		if err != nil {
			if errors.Is(err, wiki.ErrNoTargets) {
				fmt.Println("No targets configured. Run `defectscope wiki discover` first.")
				return
			}
			logger.Error("Wiki generation failed", zap.Error(err))
			return
		}
		if wikiDryRun {
			fmt.Printf("Run %s: %d pages would be written, %d skipped, %d failed\n",
				result.RunID, result.Planned, result.Skipped, result.Failed)
		} else {
			fmt.Printf("Run %s: %d written, %d skipped, %d failed\n",
				result.RunID, result.Written, result.Skipped, result.Failed)
		}
		for _, page := range result.Pages {
			if page.Err != nil {
				fmt.Printf("  failed %s: %v\n", page.Source, page.Err)
			}
		}
	}

	runOnce(ctx)
	if !wikiWatch {
		return nil
	}

	watcher, err := wiki.NewWatcher(cfg, workspace, runOnce)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	fmt.Println("Watching for changes. Ctrl-C to stop.")
	return watcher.Start(ctx)
}

func runWikiDiscover(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	added, err := wiki.Discover(cfg, workspace)
	if err != nil {
		return err
	}
	if len(added) == 0 {
		fmt.Println("No new targets discovered.")
		return nil
	}
	if err := cfg.Save(configPath()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	for _, t := range added {
		fmt.Printf("Added target %q (pattern %s, template %s)\n", t.Name, t.Pattern, t.Template)
	}
	fmt.Printf("Config updated: %s\n", configPath())
	return nil
}

func runWikiPublish(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if wikiRemote != "" {
		cfg.Publish.Remote = wikiRemote
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	publisher := wiki.NewPublisher(cfg.Publish, filepath.Join(workspace, cfg.WikiDir))
	message := fmt.Sprintf("Update AI documentation (%s)", time.Now().Format("2006-01-02 15:04"))
	if err := publisher.Publish(ctx, message); err != nil {
		if errors.Is(err, wiki.ErrNoRemote) {
			return fmt.Errorf("no wiki remote configured: pass --remote or set publish.remote in %s", configPath())
		}
		return err
	}
	fmt.Println("Wiki published.")
	return nil
}

func runWikiPreview(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	page := args[0]
	if filepath.Ext(page) != ".md" {
		page += ".md"
	}
	content, err := os.ReadFile(filepath.Join(workspace, cfg.WikiDir, page))
	if err != nil {
		return fmt.Errorf("failed to read page %s: %w", page, err)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to build renderer: %w", err)
	}
	out, err := renderer.Render(string(content))
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	fmt.Print(out)
	return nil
}

func init() {
	wikiGenerateCmd.Flags().BoolVar(&wikiSkipUnchanged, "skip-unchanged", false, "Skip files whose content hash matches the last run")
	wikiGenerateCmd.Flags().BoolVar(&wikiDryRun, "dry-run", false, "List pages that would be generated without calling the API")
	wikiGenerateCmd.Flags().BoolVar(&wikiWatch, "watch", false, "Keep running and regenerate on source changes")
	wikiGenerateCmd.Flags().BoolVar(&wikiNoPull, "no-pull", false, "Skip pulling the wiki remote before generating")
	wikiPublishCmd.Flags().StringVar(&wikiRemote, "remote", "", "Wiki git remote URL (overrides config)")
}
