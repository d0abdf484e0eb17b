// Package moderation masks censored words in transcript content before
// it is delivered outside the temporary channel.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Redactor finds forbidden patterns with an Aho-Corasick automaton and
// replaces the matched characters while preserving spacing. Matching is
// done on a normalized view of the text (lowercased, leet speak mapped
// back, punctuation stripped) so trivial obfuscation does not leak
// through the transcript.
type Redactor struct {
	matcher     *goahocorasick.Machine
	maskChar    rune
	hasPatterns bool
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewRedactor builds the automaton from the censored word list. An empty
// list yields a redactor that passes everything through untouched.
func NewRedactor(censoredWords []string, maskChar rune) (*Redactor, error) {
	r := &Redactor{maskChar: maskChar}
	if len(censoredWords) == 0 {
		return r, nil
	}

	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		if normalized := normalizeRunes([]rune(word)); len(normalized) > 0 {
			patterns = append(patterns, normalized)
		}
	}
	if len(patterns) == 0 {
		return r, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	r.matcher = m
	r.hasPatterns = true
	return r, nil
}

// Sanitize masks every censored word occurrence in the original text and
// returns the masked text along with the normalized words that matched.
func (r *Redactor) Sanitize(original string) (string, []string) {
	if !r.hasPatterns {
		return original, nil
	}

	mapping := normalize(original)
	if len(mapping.normalized) == 0 {
		return original, nil
	}

	spans := r.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	origRunes := []rune(original)
	matched := make([]string, 0, len(spans))
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)
		if normStart < 0 || normEnd > len(mapping.origIdx) {
			continue
		}
		matched = append(matched, string(span.Word))

		origStart := mapping.origIdx[normStart]
		origEnd := mapping.origIdx[normEnd-1] + 1
		for i := origStart; i < origEnd; i++ {
			origRunes[i] = r.maskChar
		}
	}
	return string(origRunes), matched
}

// normalize transforms the input into a searchable form while tracking
// original rune positions, so masking can be applied back onto the
// untouched text.
func normalize(input string) textMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return textMapping{normalized: norm, origIdx: origIdx}
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common leet speak characters back to their standard
// alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
