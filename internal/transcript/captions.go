package transcript

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinLength is the shortest decoded caption text accepted as a transcript.
const MinLength = 50

var errCaptionsTooShort = errors.New("transcript too short or empty")

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// Decoding order matters: &amp; is expanded first, so "&amp;lt;" becomes "<".
var entityReplacer = []struct{ from, to string }{
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

// DecodeCaptions flattens a timed-text document into plain prose.
func DecodeCaptions(document string) (string, error) {
	text := markupPattern.ReplaceAllString(document, " ")
	for _, entity := range entityReplacer {
		text = strings.ReplaceAll(text, entity.from, entity.to)
	}
	text = strings.Join(strings.Fields(text), " ")
	text = norm.NFC.String(text)
	if utf8.RuneCountInString(text) < MinLength {
		return "", errCaptionsTooShort
	}
	return text, nil
}
