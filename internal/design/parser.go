package design

import (
	"regexp"
	"strings"
)

// Artifact blocks are embedded in the model's freeform output as
//
//	<artifact title="Login Screen" type="app"> ...markup... </artifact>
//
// The grammar is a small custom vocabulary, not general nested markup, so
// text-level scanning is sufficient. The parser re-scans the full text on
// every call: the stream grows monotonically and rescanning keeps the parser
// stateless and safe to retry.

const closeMarker = "</artifact>"

var (
	openMarkerRe = regexp.MustCompile(`<artifact\b([^>]*)>`)
	attrRe       = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9_-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// ExtractArtifacts scans text for artifact blocks and returns them in
// first-seen order. A block whose closing marker has not arrived yet is
// returned with IsComplete=false and Content holding everything received so
// far. A later block with the same title supersedes the earlier one in
// place. Malformed open markers are skipped; one bad block never fails the
// scan. Pure function of its input.
func ExtractArtifacts(text string) []Artifact {
	var out []Artifact
	byTitle := map[string]int{}

	pos := 0
	for pos < len(text) {
		loc := openMarkerRe.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		openEnd := pos + loc[1]
		rawAttrs := text[pos+loc[2] : pos+loc[3]]

		title, typ, ok := parseAttrs(rawAttrs)

		body := ""
		complete := false
		next := openEnd
		if end := strings.Index(text[openEnd:], closeMarker); end >= 0 {
			body = text[openEnd : openEnd+end]
			complete = true
			next = openEnd + end + len(closeMarker)
		} else {
			body = text[openEnd:]
			next = len(text)
		}

		if ok {
			a := Artifact{
				Title:      title,
				Type:       typ,
				Content:    strings.TrimSpace(body),
				IsComplete: complete,
			}
			if i, seen := byTitle[title]; seen {
				// last-wins within one parse pass
				out[i] = a
			} else {
				byTitle[title] = len(out)
				out = append(out, a)
			}
		}

		pos = next
	}

	return out
}

// StripArtifacts returns the prose with every artifact block removed,
// including the unterminated tail of an in-progress block, for display as a
// clean assistant message.
func StripArtifacts(text string) string {
	var b strings.Builder
	pos := 0
	for pos < len(text) {
		loc := openMarkerRe.FindStringIndex(text[pos:])
		if loc == nil {
			b.WriteString(text[pos:])
			break
		}
		b.WriteString(text[pos : pos+loc[0]])
		openEnd := pos + loc[1]
		if end := strings.Index(text[openEnd:], closeMarker); end >= 0 {
			pos = openEnd + end + len(closeMarker)
		} else {
			pos = len(text)
		}
	}
	return strings.TrimSpace(collapseBlankLines(b.String()))
}

// parseAttrs extracts the title and type attributes. The block is rejected
// when the title is missing or empty, and when an unknown attribute is
// present: the attribute set is a closed vocabulary.
func parseAttrs(raw string) (title string, typ ArtifactType, ok bool) {
	typ = TypeOther
	matches := attrRe.FindAllStringSubmatch(raw, -1)
	for _, m := range matches {
		val := m[2]
		if val == "" {
			val = m[3]
		}
		switch strings.ToLower(m[1]) {
		case "title":
			title = strings.TrimSpace(val)
		case "type":
			typ = ParseArtifactType(strings.TrimSpace(val))
		default:
			return "", TypeOther, false
		}
	}
	if title == "" {
		return "", TypeOther, false
	}
	return title, typ, true
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

func collapseBlankLines(s string) string {
	return blankRunRe.ReplaceAllString(s, "\n\n")
}
