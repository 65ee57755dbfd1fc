package encoding

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// ExcludedLanguageSpellings expands a configured language tag into the
// spellings container metadata may carry. Stream language tags mix ISO
// 639-2 and 639-1 codes ("rus" and "ru"), and a negative map must name
// each spelling to drop the stream.
func ExcludedLanguageSpellings(tag string) []string {
	trimmed := strings.ToLower(strings.TrimSpace(tag))
	if trimmed == "" {
		return nil
	}
	parsed, err := language.Parse(trimmed)
	if err != nil {
		return []string{trimmed}
	}
	base, confidence := parsed.Base()
	if confidence == language.No {
		return []string{trimmed}
	}
	spellings := make([]string, 0, 2)
	for _, spelling := range []string{base.ISO3(), base.String()} {
		if spelling == "" || slices.Contains(spellings, spelling) {
			continue
		}
		spellings = append(spellings, spelling)
	}
	if len(spellings) == 0 {
		return []string{trimmed}
	}
	return spellings
}
