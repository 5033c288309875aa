package ingest

import "strings"

// junk holds characters that carry no phonetic content in ASJP
// transcriptions: morpheme separators, uncertainty marks, loan
// markers and stray brackets.
var junk = strings.NewReplacer(
	"-", "", " ", "", "%", "", "~", "", "*", "", "$", "",
	"\"", "", "|", "", ".", "", "+", "", "·", "", "?", "",
	"’", "", "]", "", "[", "", "=", "", "_", "", "<", "",
	">", "", "‐", "", "ᶢ", "",
)

// fold maps stray upper-case variants onto their canonical ASJP
// symbols.
var fold = strings.NewReplacer(
	"C", "c", "K", "k", "L", "l", "W", "w", "T", "t",
)

// CleanWord scrubs a raw transcription: junk characters are removed
// and off-alphabet case variants folded. The result may be empty, in
// which case the entry is skipped by the readers.
func CleanWord(s string) string {
	return fold.Replace(junk.Replace(s))
}

// Symbols segments a cleaned ASJP form into its symbols, one per
// rune.
func Symbols(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
