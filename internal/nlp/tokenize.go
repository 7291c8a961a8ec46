package nlp

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	kindWord tokenKind = iota
	kindNumber
	kindPunct
)

// Token is a word, number or punctuation mark with its byte span in the
// source text.
type Token struct {
	Text  string
	Lower string
	Start int
	End   int
	Kind  tokenKind
	POS   string
	Lemma string
}

// capitalized reports whether the token starts with an upper-case letter.
func (t Token) capitalized() bool {
	r, _ := utf8.DecodeRuneInString(t.Text)
	return unicode.IsUpper(r)
}

var tokenRE = regexp.MustCompile(`\p{L}[\p{L}\p{M}]*(?:['’\-][\p{L}\p{M}]+)*|\p{N}+(?:[.,:/\-]\p{N}+)*|[^\s\p{L}\p{N}]`)

// tokenize splits s into tokens. A possessive 's ending is split off into its
// own token so "customer's" yields "customer" and "'s".
func tokenize(s string) []Token {
	locs := tokenRE.FindAllStringIndex(s, -1)
	out := make([]Token, 0, len(locs))
	for _, loc := range locs {
		text := s[loc[0]:loc[1]]
		r, _ := utf8.DecodeRuneInString(text)
		switch {
		case unicode.IsLetter(r):
			lower := strings.ToLower(text)
			if n := possessiveLen(lower); n > 0 && len(text) > n {
				cut := loc[1] - n
				out = append(out,
					Token{Text: s[loc[0]:cut], Lower: lower[:len(lower)-n], Start: loc[0], End: cut, Kind: kindWord},
					Token{Text: s[cut:loc[1]], Lower: "'s", Start: cut, End: loc[1], Kind: kindPunct, POS: posPart},
				)
				continue
			}
			out = append(out, Token{Text: text, Lower: lower, Start: loc[0], End: loc[1], Kind: kindWord})
		case unicode.IsDigit(r) || unicode.IsNumber(r):
			out = append(out, Token{Text: text, Lower: text, Start: loc[0], End: loc[1], Kind: kindNumber})
		default:
			out = append(out, Token{Text: text, Lower: text, Start: loc[0], End: loc[1], Kind: kindPunct})
		}
	}
	return out
}

func possessiveLen(lower string) int {
	switch {
	case strings.HasSuffix(lower, "'s"):
		return len("'s")
	case strings.HasSuffix(lower, "’s"):
		return len("’s")
	}
	return 0
}

// isAlnum reports whether every rune of s is a letter or digit.
func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
