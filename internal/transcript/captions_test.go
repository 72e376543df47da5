package transcript

import (
	"testing"
	"unicode/utf8"
)

func TestDecodeCaptionsEntitiesAndWhitespace(t *testing.T) {
	doc := "<transcript>\n  <text>Tom &amp; Jerry say &quot;hi&quot;</text>\n" +
		"<text>\t1 &lt; 2 &gt; 0 and that&#39;s fine, really quite fine</text></transcript>"
	got, err := DecodeCaptions(doc)
	if err != nil {
		t.Fatalf("DecodeCaptions: %v", err)
	}
	want := `Tom & Jerry say "hi" 1 < 2 > 0 and that's fine, really quite fine`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestDecodeCaptionsNormalizesNFC(t *testing.T) {
	doc := "<text>Cafe\u0301 culture is the subject of this rather long caption track.</text>"
	got, err := DecodeCaptions(doc)
	if err != nil {
		t.Fatalf("DecodeCaptions: %v", err)
	}
	if want := "Caf\u00e9 culture is the subject of this rather long caption track."; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPlaceholderIsUsable(t *testing.T) {
	if utf8.RuneCountInString(Placeholder) < MinLength {
		t.Fatal("placeholder transcript is shorter than the minimum")
	}
}
