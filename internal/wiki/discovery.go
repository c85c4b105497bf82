package wiki

import (
	"fmt"
	"path/filepath"
	"sort"

	"defectscope/internal/config"
	"defectscope/internal/logging"
)

// Discover scans the repository for file extensions named in the config's
// auto_discovery rules and appends a target for each extension that is
// present but not yet configured. Existing targets are never modified, so
// repeated runs are idempotent. The caller is responsible for saving the
// config when targets were added.
func Discover(cfg *config.Config, root string) ([]config.Target, error) {
	log := logging.Get(logging.CategoryWiki)

	if len(cfg.AutoDiscovery) == 0 {
		log.Info("no auto_discovery rules configured, nothing to do")
		return nil, nil
	}

	templates := NewTemplateStore(filepath.Join(root, cfg.TemplatesDir))

	extensions := make([]string, 0, len(cfg.AutoDiscovery))
	for ext := range cfg.AutoDiscovery {
		extensions = append(extensions, ext)
	}

	scanner := NewScanner(root, cfg.IgnorePatterns)
	found, err := scanner.ScanExtensions(extensions)
	if err != nil {
		return nil, fmt.Errorf("extension scan failed: %w", err)
	}

	existing := make(map[string]bool, len(cfg.Targets))
	for _, t := range cfg.Targets {
		existing[t.Name] = true
	}

	// Sorted iteration keeps the appended target order stable across runs.
	foundSorted := make([]string, 0, len(found))
	for ext := range found {
		foundSorted = append(foundSorted, ext)
	}
	sort.Strings(foundSorted)

	var added []config.Target
	for _, ext := range foundSorted {
		rule := cfg.AutoDiscovery[ext]

		if !templates.Exists(rule.Template) {
			log.Warn("template %q needed for %q not found in %s, skipping",
				rule.Template, ext, cfg.TemplatesDir)
			continue
		}

		name := rule.TargetName
		if name == "" {
			name = fmt.Sprintf("Files (%s)", ext)
		}
		if existing[name] {
			log.Debug("target %q already configured, skipping", name)
			continue
		}

		category := rule.Category
		if category == "" {
			category = "Uncategorized"
		}

		target := config.Target{
			Name:     name,
			Pattern:  "**/*" + ext,
			Template: rule.Template,
			Category: category,
		}
		cfg.Targets = append(cfg.Targets, target)
		existing[name] = true
		added = append(added, target)
		log.Info("added target %q for %s files", name, ext)
	}

	return added, nil
}
