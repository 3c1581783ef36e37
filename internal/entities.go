package internal

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// EntityExtractor turns text into an ordered set of salient entity
// strings. Pluggable so the rule set can be swapped without touching
// the rest of the engine.
type EntityExtractor func(text string) []string

var wordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9]*`)

// ExtractEntities recognizes capitalized proper nouns (including
// multi-word runs), all-caps acronyms of two or more letters, and
// CamelCase identifiers. Pure and deterministic; output is ordered by
// first occurrence with duplicates removed.
func ExtractEntities(text string) []string {
	locs := wordPattern.FindAllStringIndex(text, -1)

	type token struct {
		text          string
		start, end    int
		sentenceStart bool
	}

	tokens := make([]token, 0, len(locs))
	prevEnd := 0
	atSentenceStart := true
	for _, loc := range locs {
		gap := text[prevEnd:loc[0]]
		if prevEnd == 0 || strings.ContainsAny(gap, ".!?\n") {
			atSentenceStart = true
		}
		tokens = append(tokens, token{
			text:          text[loc[0]:loc[1]],
			start:         loc[0],
			end:           loc[1],
			sentenceStart: atSentenceStart,
		})
		atSentenceStart = false
		prevEnd = loc[1]
	}

	type found struct {
		text string
		pos  int
	}
	var hits []found

	// Acronyms and CamelCase identifiers are entities wherever they
	// appear; plain capitalized words only count outside sentence
	// starts, where capitalization alone is not a signal.
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		switch {
		case isAcronym(tok.text):
			hits = append(hits, found{tok.text, tok.start})
			i++
		case isCamelCase(tok.text):
			hits = append(hits, found{tok.text, tok.start})
			i++
		case isCapitalizedWord(tok.text):
			// Sentence-initial capitalization of a common word is
			// sentence case, not a proper-noun signal.
			if tok.sentenceStart && sentenceCaseWord(tok.text) {
				i++
				continue
			}
			j := i + 1
			for j < len(tokens) && isCapitalizedWord(tokens[j].text) &&
				!sentenceCaseWord(tokens[j].text) &&
				adjacentWords(text, tokens[j-1].end, tokens[j].start) {
				j++
			}
			if j-i >= 2 {
				parts := make([]string, 0, j-i)
				for _, t := range tokens[i:j] {
					parts = append(parts, t.text)
				}
				hits = append(hits, found{strings.Join(parts, " "), tok.start})
			} else {
				hits = append(hits, found{tok.text, tok.start})
			}
			i = j
		default:
			i++
		}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].pos < hits[b].pos })

	seen := make(map[string]bool, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if seen[h.text] {
			continue
		}
		seen[h.text] = true
		out = append(out, h.text)
	}
	return out
}

func isAcronym(s string) bool {
	if len(s) < 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isCamelCase(s string) bool {
	var upper, lower int
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}
	first := rune(s[0])
	return unicode.IsUpper(first) && upper >= 2 && lower >= 1
}

func isCapitalizedWord(s string) bool {
	if len(s) < 2 {
		return false
	}
	if !unicode.IsUpper(rune(s[0])) {
		return false
	}
	for _, r := range s[1:] {
		if !unicode.IsLower(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// adjacentWords reports whether only spacing separates two word
// boundaries, so "Alice   Smith" groups but "Alice. Smith" does not.
func adjacentWords(text string, end, start int) bool {
	return strings.TrimSpace(text[end:start]) == ""
}

// Function words, auxiliaries, and other words that routinely open a
// sentence in note-taking prose. Capitalization of these carries no
// entity signal.
var sentenceCaseWords = map[string]bool{
	"a": true, "an": true, "the": true, "this": true, "that": true,
	"these": true, "those": true, "it": true, "its": true, "i": true,
	"we": true, "he": true, "she": true, "they": true, "you": true,
	"my": true, "our": true, "his": true, "her": true, "their": true,
	"and": true, "but": true, "or": true, "so": true, "if": true,
	"when": true, "while": true, "after": true, "before": true,
	"during": true, "since": true, "until": true, "is": true,
	"was": true, "are": true, "were": true, "be": true, "been": true,
	"do": true, "did": true, "does": true, "have": true, "has": true,
	"had": true, "will": true, "would": true, "can": true,
	"could": true, "should": true, "must": true, "may": true,
	"met": true, "saw": true, "told": true, "asked": true,
	"decided": true, "agreed": true, "discussed": true, "noted": true,
	"remember": true, "today": true, "yesterday": true,
	"tomorrow": true, "also": true, "then": true, "now": true,
	"here": true, "there": true, "not": true, "no": true, "yes": true,
	"new": true, "some": true, "all": true, "for": true, "in": true,
	"on": true, "at": true, "to": true, "from": true, "with": true,
	"need": true, "needs": true, "use": true, "used": true,
	"talked": true, "spoke": true, "went": true, "got": true,
	"made": true, "found": true, "fixed": true, "added": true,
	"deployed": true, "compared": true, "checked": true,
	"reviewed": true, "finished": true, "started": true,
}

func sentenceCaseWord(s string) bool {
	return sentenceCaseWords[strings.ToLower(s)]
}
