package syncer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// candidate is a document extracted from a source, ready to be hashed and
// compared against the index.
type candidate struct {
	DocID    string
	Title    string
	Content  string
	Metadata map[string]string
}

// extractTitle returns the first H1 heading, falling back to a title-cased
// form of the file name.
func extractTitle(content, filename string) string {
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	name := strings.TrimSuffix(filename, ".md")
	return titleCase(strings.ReplaceAll(name, "-", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// extractMetadata pulls a date line out of the document head when present.
func extractMetadata(content string) map[string]string {
	md := map[string]string{}
	lines := strings.Split(content, "\n")
	if len(lines) > 30 {
		lines = lines[:30]
	}
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "date:") {
			if _, after, ok := strings.Cut(line, ":"); ok {
				md["date"] = strings.Trim(strings.TrimSpace(after), "*")
			}
			break
		}
	}
	return md
}

func entryID(item map[string]any) string {
	switch v := item["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}

func entryString(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return s
}

func entryStrings(item map[string]any, key string) []string {
	raw, _ := item[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func truncateTitle(s string) string {
	r := []rune(s)
	if len(r) > 80 {
		return string(r[:80]) + "..."
	}
	return s
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

// questionDoc renders an interview question entry as a markdown document.
func questionDoc(item map[string]any, source string) (candidate, error) {
	id := entryID(item)
	question := entryString(item, "question")
	if id == "" || question == "" {
		return candidate{}, errors.New("entry missing id or question")
	}

	content := fmt.Sprintf(`# Interview Question

**Level:** %s
**Topics:** %s

## Question

%s

## Answer

%s
`,
		entryString(item, "level"),
		strings.Join(entryStrings(item, "topics"), ", "),
		question,
		entryString(item, "answer"))

	return candidate{
		DocID:    source + ":" + id,
		Title:    truncateTitle(question),
		Content:  content,
		Metadata: map[string]string{"item_id": id},
	}, nil
}

// blindspotDoc renders a blindspot entry, including interviewer guidance
// sections, as a markdown document.
func blindspotDoc(item map[string]any, source string) (candidate, error) {
	id := entryID(item)
	question := entryString(item, "question")
	if id == "" || question == "" {
		return candidate{}, errors.New("entry missing id or question")
	}

	content := fmt.Sprintf(`# Blindspot Question

**Category:** %s
**Difficulty:** %s
**Mastery Level:** %s

## Question

%s

## Why This Is Asked

%s

## Answer

%s

## Follow-up Questions

%s

## Red Flags (Poor Answers)

%s
`,
		entryString(item, "category"),
		entryString(item, "difficulty"),
		entryString(item, "masteryLevel"),
		question,
		entryString(item, "whyAsked"),
		entryString(item, "answer"),
		bulletList(entryStrings(item, "followUps")),
		bulletList(entryStrings(item, "redFlags")))

	return candidate{
		DocID:    source + ":" + id,
		Title:    truncateTitle(question),
		Content:  content,
		Metadata: map[string]string{"item_id": id},
	}, nil
}

// wikiDoc renders one wiki entry. provider and group come from the nested
// sections structure the entry was found in.
func wikiDoc(entry map[string]any, provider, group, source string) (candidate, error) {
	tool := entryString(entry, "tool")
	if tool == "" {
		return candidate{}, errors.New("entry missing tool")
	}

	costTier := entryString(entry, "costTier")
	if costTier == "" {
		costTier = "N/A"
	}
	decision := entryString(entry, "decision")
	if decision == "" {
		decision = "No specific guidance provided."
	}

	content := fmt.Sprintf(`# %s %s

**Category:** %s
**Adoption:** %s
**Cost Tier:** %s

## Summary

%s

## Mag7 Context

%s

## Decision Guidance

%s
`,
		provider, tool,
		group,
		entryString(entry, "adoption"),
		costTier,
		entryString(entry, "summary"),
		entryString(entry, "mag7"),
		decision)

	slug := strings.ReplaceAll(strings.ToLower(provider+"-"+tool), " ", "-")
	return candidate{
		DocID:    source + ":" + slug,
		Title:    provider + " " + tool,
		Content:  content,
		Metadata: map[string]string{"provider": provider, "group": group},
	}, nil
}

// flattenWiki walks the nested provider > group > entries structure and
// produces one candidate per entry. Malformed entries are returned as
// ParseErrors alongside the good candidates.
func flattenWiki(sections []map[string]any, source, path string) ([]candidate, []*ParseError) {
	var docs []candidate
	var failed []*ParseError
	for _, section := range sections {
		provider := entryString(section, "provider")
		if provider == "" {
			provider = "Unknown"
		}
		groups, _ := section["groups"].([]any)
		for _, g := range groups {
			group, ok := g.(map[string]any)
			if !ok {
				failed = append(failed, &ParseError{Path: path, Err: errors.New("group is not an object")})
				continue
			}
			groupName := entryString(group, "name")
			if groupName == "" {
				groupName = "Unknown"
			}
			entries, _ := group["entries"].([]any)
			for _, e := range entries {
				entry, ok := e.(map[string]any)
				if !ok {
					failed = append(failed, &ParseError{Path: path, Err: errors.New("entry is not an object")})
					continue
				}
				doc, err := wikiDoc(entry, provider, groupName, source)
				if err != nil {
					failed = append(failed, &ParseError{Path: path, Entry: entryString(entry, "tool"), Err: err})
					continue
				}
				docs = append(docs, doc)
			}
		}
	}
	return docs, failed
}
