package render

import (
	"regexp"
	"strings"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// ParseMarkup turns text into paragraphs of runs. "**x**" becomes a bold run
// and a blank line starts a new paragraph. An unmatched "**" is kept as text.
func ParseMarkup(text string) []Paragraph {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var paragraphs []Paragraph
	for _, chunk := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		paragraphs = append(paragraphs, Paragraph{Runs: parseRuns(chunk)})
	}
	return paragraphs
}

func parseRuns(chunk string) []Run {
	var runs []Run
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(chunk, -1) {
		if m[0] > last {
			runs = append(runs, Run{Text: chunk[last:m[0]]})
		}
		if m[3] > m[2] {
			runs = append(runs, Run{Text: chunk[m[2]:m[3]], Bold: true})
		}
		last = m[1]
	}
	if last < len(chunk) {
		runs = append(runs, Run{Text: chunk[last:]})
	}
	return runs
}

func plainParagraph(text string) []Paragraph {
	if text == "" {
		return nil
	}
	return []Paragraph{{Runs: []Run{{Text: text}}}}
}
