// Package sentence splits Turkish news text into sentences.
//
// A sentence ends at a cluster of terminal punctuation (. ! ? …), optionally
// followed by closing quotes or brackets, when whitespace and a sentence-initial
// rune follow. A blank line always ends a sentence. Dots after known
// abbreviations and single-letter initials never end a sentence.
package sentence

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"haberozet/internal/domain/entity"
)

// abbreviations holds Turkish abbreviations, lowercase and without the dot.
var abbreviations = map[string]bool{
	// titles
	"dr": true, "prof": true, "doç": true, "yrd": true, "uzm": true, "müh": true,
	"öğr": true, "arş": true, "hz": true, "bşk": true, "başk": true,
	// military ranks
	"alb": true, "korg": true, "tümg": true, "tuğg": true, "yzb": true,
	"ütğm": true, "tğm": true, "bnb": true, "amr": true,
	// addresses and companies
	"mah": true, "cad": true, "sok": true, "apt": true, "blv": true,
	"ltd": true, "şti": true,
	// references
	"vb": true, "vs": true, "vd": true, "bkz": true, "örn": true, "yy": true,
}

// homographs are abbreviations that are also ordinary words ("der", "kur",
// "gör"). Their dot ends a sentence unless a number follows ("No. 5",
// "s. 12") or they are written capitalized before a name ("Av. Ayşe").
var homographs = map[string]bool{
	"av": true, "op": true, "gör": true, "sn": true, "gen": true, "org": true,
	"kur": true, "no": true, "tel": true, "st": true, "çev": true, "haz": true,
	"der": true, "yay": true, "sy": true, "ed": true, "sf": true, "s": true,
}

// openers may start a sentence in addition to uppercase letters and digits.
const openers = "\"'“‘«([-–—"

// closers may trail terminal punctuation and stay with the sentence.
const closers = "\"'”’»)]"

// Split returns the trimmed, non-empty sentences of text in order.
func Split(text string) []string {
	var out []string
	emit := func(seg string) {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}

	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])

		if r == '\n' {
			if end, ok := blankLineEnd(text, i); ok {
				emit(text[start:i])
				start, i = end, end
				continue
			}
		}

		if isTerminal(r) {
			j := i
			for j < len(text) {
				nr, ns := utf8.DecodeRuneInString(text[j:])
				if !isTerminal(nr) {
					break
				}
				j += ns
			}
			single := r == '.' && j == i+size
			for j < len(text) {
				nr, ns := utf8.DecodeRuneInString(text[j:])
				if !strings.ContainsRune(closers, nr) {
					break
				}
				j += ns
			}

			if (!single || !suppressedDot(text, i)) && startsSentence(text, j) {
				emit(text[start:j])
				start = j
			}
			i = j
			continue
		}

		i += size
	}
	emit(text[start:])
	return out
}

// Segment splits text and keeps the sentences with at least
// entity.MinSentenceRunes runes. Indices are dense over the kept sentences.
func Segment(text string) ([]entity.Sentence, error) {
	parts := Split(text)
	sentences := make([]entity.Sentence, 0, len(parts))
	for _, p := range parts {
		if utf8.RuneCountInString(p) < entity.MinSentenceRunes {
			continue
		}
		sentences = append(sentences, entity.Sentence{Index: len(sentences), Raw: p})
	}
	if len(sentences) == 0 {
		return nil, entity.ErrEmptyInput
	}
	return sentences, nil
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

// blankLineEnd reports whether the newline at pos starts a blank line and
// returns the offset just past the run of blank lines.
func blankLineEnd(s string, pos int) (int, bool) {
	newlines := 0
	end := pos
	for j := pos; j < len(s); {
		r, size := utf8.DecodeRuneInString(s[j:])
		if r == '\n' {
			newlines++
			j += size
			end = j
			continue
		}
		if r == ' ' || r == '\t' || r == '\r' {
			j += size
			continue
		}
		break
	}
	return end, newlines >= 2
}

// startsSentence reports whether whitespace followed by a sentence-initial
// rune begins at pos.
func startsSentence(s string, pos int) bool {
	sawSpace := false
	for i := pos; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			sawSpace = true
			i += size
			continue
		}
		return sawSpace && (unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune(openers, r))
	}
	return false
}

// suppressedDot reports whether the dot at dotPos belongs to an abbreviation
// or an initial rather than ending a sentence.
func suppressedDot(s string, dotPos int) bool {
	word := wordBefore(s, dotPos)
	if word == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(word)
	if utf8.RuneCountInString(word) == 1 && unicode.IsUpper(first) {
		return true
	}
	lower := cases.Lower(language.Turkish).String(word)
	if abbreviations[lower] {
		return true
	}
	if !homographs[lower] {
		return false
	}
	next := nextRune(s, dotPos+1)
	return unicode.IsDigit(next) || (unicode.IsUpper(first) && unicode.IsUpper(next))
}

// nextRune returns the first non-space rune at or after pos, or 0.
func nextRune(s string, pos int) rune {
	for _, r := range s[pos:] {
		if !unicode.IsSpace(r) {
			return r
		}
	}
	return 0
}

// wordBefore returns the run of letters ending at pos.
func wordBefore(s string, pos int) string {
	i := pos
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		if !unicode.IsLetter(r) {
			break
		}
		i -= size
	}
	return s[i:pos]
}
