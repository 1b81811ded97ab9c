package syncer

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// The structured sources are TypeScript data files maintained by hand. They
// are not JSON: entries use template literals, single quotes, unquoted
// property names, trailing commas and inline comments. parseTypeScriptArray
// extracts the named exported array and normalizes it into JSON before
// decoding, tolerating all of the above.

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`(?m)(^|\s)//[^\n]*`)
	templateRe     = regexp.MustCompile("(?s)`((?:[^`\\\\]|\\\\.)*)`")
	singleQuoteRe  = regexp.MustCompile(`(?m)(^|[\s:,\[\]{}(])'((?:[^'\\]|\\.)*)'`)
	bareKeyRe      = regexp.MustCompile(`([{\[,]\s*)([a-zA-Z_][a-zA-Z0-9_]*)(\s*:)`)
	trailingComma  = regexp.MustCompile(`,(\s*[}\]])`)
)

func parseTypeScriptArray(tsContent, arrayName, path string) ([]map[string]any, error) {
	declRe, err := regexp.Compile(`export const ` + regexp.QuoteMeta(arrayName) + `[^=]*=\s*\[`)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	loc := declRe.FindStringIndex(tsContent)
	if loc == nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("array %q not found", arrayName)}
	}

	// Scan forward from the opening bracket to its match. The count is
	// naive about brackets inside string literals, which in practice the
	// data files balance anyway.
	start := loc[1] - 1
	depth := 0
	end := start
	for i := start; i < len(tsContent); i++ {
		switch tsContent[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
		if end > start {
			break
		}
	}
	if end == start {
		return nil, &ParseError{Path: path, Err: errors.New("unterminated array literal")}
	}
	body := tsContent[start:end]

	body = blockCommentRe.ReplaceAllString(body, "")
	body = lineCommentRe.ReplaceAllString(body, "$1")

	// Template literals are lifted out first so the quote rewrites below
	// cannot touch their contents, then spliced back in JSON-encoded form.
	var templates []string
	body = templateRe.ReplaceAllStringFunc(body, func(m string) string {
		inner := strings.ReplaceAll(m[1:len(m)-1], "\\`", "`")
		enc, _ := json.Marshal(inner)
		templates = append(templates, string(enc))
		return fmt.Sprintf("__TPL_%d__", len(templates)-1)
	})

	// Single-quoted strings become double-quoted. The boundary group keeps
	// apostrophes inside prose (don't, it's) out of reach.
	body = singleQuoteRe.ReplaceAllStringFunc(body, func(m string) string {
		sub := singleQuoteRe.FindStringSubmatch(m)
		inner := sub[2]
		inner = strings.ReplaceAll(inner, `\"`, "__ESC_DQ__")
		inner = strings.ReplaceAll(inner, `"`, `\"`)
		inner = strings.ReplaceAll(inner, "__ESC_DQ__", `\"`)
		inner = strings.ReplaceAll(inner, `\'`, "'")
		return sub[1] + `"` + inner + `"`
	})

	body = bareKeyRe.ReplaceAllString(body, `$1"$2"$3`)
	body = trailingComma.ReplaceAllString(body, "$1")

	for i, enc := range templates {
		body = strings.Replace(body, fmt.Sprintf("__TPL_%d__", i), enc, 1)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("decode array %q: %w", arrayName, err)}
	}
	return items, nil
}
