package export

import (
	"strings"
	"time"
	"unicode"
)

// FileName builds carousel-<subject>-<YYYY-MM-DD>.pdf with the subject
// lowercased and each whitespace run replaced by a dash.
func FileName(subject string, now time.Time) string {
	slug := strings.Join(strings.FieldsFunc(strings.ToLower(subject), unicode.IsSpace), "-")
	slug = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '"' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, slug)
	if slug == "" {
		slug = "untitled"
	}
	return "carousel-" + slug + "-" + now.Format("2006-01-02") + ".pdf"
}
