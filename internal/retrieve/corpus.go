package retrieve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// loadCorpus reads every markdown file in dir, strips frontmatter and joins
// the documents with the same separators semantic retrieval uses. Files are
// ordered by name so the output is deterministic.
func loadCorpus(dir string) (string, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("read corpus directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "", 0, errors.New("no markdown files in corpus directory")
	}

	var parts []string
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("--- Document: %s ---\n%s", name, stripFrontmatter(string(raw))))
	}
	if len(parts) == 0 {
		return "", 0, errors.New("all corpus files failed to load")
	}
	return strings.Join(parts, "\n\n"), len(parts), nil
}
