// Package files persists generated guides as markdown in the knowledge-base
// directory, where the next sync picks them up for indexing.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/udaytamma/ProfessorGemini/internal/log"
)

// GuideInfo describes one saved guide file.
type GuideInfo struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Manager writes and reads guide files under a single directory.
type Manager struct {
	dir    string
	logger log.Logger
	now    func() time.Time
}

// NewManager creates a Manager rooted at dir.
func NewManager(dir string, logger log.Logger) *Manager {
	return &Manager{
		dir:    dir,
		logger: logger.With("component", "files"),
		now:    time.Now,
	}
}

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugSpacesRe   = regexp.MustCompile(`[\s_]+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// Slugify converts a title into a lowercase hyphenated file-name stem,
// capped at 80 characters.
func Slugify(title string) string {
	s := slugStripRe.ReplaceAllString(title, "")
	s = slugSpacesRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	s = strings.Trim(strings.ToLower(s), "-")
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}

// ExtractTitle returns the first H1 heading, minus boilerplate guide
// prefixes, falling back to the first non-empty line.
func ExtractTitle(content string) string {
	prefixes := []string{
		"The Principal TPM's Guide to ",
		"A Principal TPM's Guide to ",
		"Principal TPM's Guide to ",
		"Guide to ",
	}

	lines := strings.Split(strings.TrimSpace(content), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "# ") {
			continue
		}
		title := strings.TrimSpace(line[2:])
		for _, p := range prefixes {
			if strings.HasPrefix(title, p) {
				title = title[len(p):]
				break
			}
		}
		return title
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			if len(line) > 100 {
				line = line[:100]
			}
			return line
		}
	}
	return "Untitled Guide"
}

// SaveGuide writes content with a YAML frontmatter header and returns the
// full path of the new file. The write goes through a temp file and rename
// so a concurrent sync never sees a half-written guide.
func (m *Manager) SaveGuide(content, title string, lowConfidence int) (string, error) {
	if title == "" {
		title = ExtractTitle(content)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create guides directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.md", Slugify(title), m.now().Format("20060102-1504"))
	path := filepath.Join(m.dir, filename)
	full := m.frontmatter(title, lowConfidence) + "\n\n" + content

	tmp, err := os.CreateTemp(m.dir, ".guide-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(full); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write guide: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close guide: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename guide into place: %w", err)
	}

	m.logger.Info("guide saved", "file", filename, "chars", len(content))
	return path, nil
}

func (m *Manager) frontmatter(title string, lowConfidence int) string {
	lines := []string{
		"---",
		fmt.Sprintf("title: %q", title),
		fmt.Sprintf("generated_at: %q", m.now().Format("2006-01-02 15:04:05")),
		"source: Professor Gemini",
		fmt.Sprintf("low_confidence_sections: %d", lowConfidence),
	}
	if lowConfidence > 0 {
		lines = append(lines, "review_recommended: true")
	}
	lines = append(lines, "---")
	return strings.Join(lines, "\n")
}

// ListGuides returns saved guides, newest file name first.
func (m *Manager) ListGuides() ([]GuideInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read guides directory: %w", err)
	}

	var guides []GuideInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		guides = append(guides, GuideInfo{
			Filename:   entry.Name(),
			Path:       filepath.Join(m.dir, entry.Name()),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(guides, func(i, j int) bool { return guides[i].Filename > guides[j].Filename })
	return guides, nil
}

// ReadGuide returns the content of a saved guide by file name.
func (m *Manager) ReadGuide(filename string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return "", fmt.Errorf("read guide %s: %w", filename, err)
	}
	return string(raw), nil
}

// DeleteGuide removes a saved guide by file name.
func (m *Manager) DeleteGuide(filename string) error {
	if err := os.Remove(filepath.Join(m.dir, filename)); err != nil {
		return fmt.Errorf("delete guide %s: %w", filename, err)
	}
	m.logger.Info("guide deleted", "file", filename)
	return nil
}
