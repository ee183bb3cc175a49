package utils

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// ProfanityFilter masks banned words with '*' of the same rune length.
// ASCII words match on word boundaries, case-insensitively; words with
// non-ASCII letters (e.g. Turkish ı, ş, ğ) match as substrings.
type ProfanityFilter struct {
	patterns []*regexp.Regexp
}

var (
	defaultFilter     *ProfanityFilter
	defaultFilterOnce sync.Once
)

// DefaultBannedWords is a starter list. PROFANITY_WORDS (comma-separated) extends it.
var DefaultBannedWords = []string{
	// English
	"fuck", "fucking", "fucker", "motherfucker", "shit", "bullshit",
	"bastard", "bitch", "dick", "cock", "pussy", "cunt", "asshole",
	"dumbass", "jackass", "retard", "slut", "whore", "wanker", "twat",
	"prick", "douchebag", "dipshit", "shithead",

	// Turkish
	"amk", "aq", "orospu", "piç", "yavşak", "şerefsiz", "göt", "gavat",
	"siktir", "sikerim", "pezevenk", "kahpe", "ibne", "salak", "gerizekalı",
	"aptal", "mal", "dangalak", "hıyar", "ananı", "amına",
}

// MaskProfanity masks profanity in s using the default filter.
func MaskProfanity(s string) string {
	if len(s) == 0 {
		return s
	}
	defaultFilterOnce.Do(func() {
		words := make([]string, 0, len(DefaultBannedWords))
		words = append(words, DefaultBannedWords...)
		if extra := strings.TrimSpace(os.Getenv("PROFANITY_WORDS")); extra != "" {
			for _, w := range strings.Split(extra, ",") {
				if w = strings.TrimSpace(w); w != "" {
					words = append(words, w)
				}
			}
		}
		defaultFilter = NewProfanityFilter(words)
	})
	return defaultFilter.Mask(s)
}

func NewProfanityFilter(words []string) *ProfanityFilter {
	uniq := make([]string, 0, len(words))
	seen := map[string]struct{}{}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		uniq = append(uniq, w)
	}
	// Longer words first so a short word never masks half of a longer one.
	sort.Slice(uniq, func(i, j int) bool {
		return len([]rune(uniq[i])) > len([]rune(uniq[j]))
	})
	pats := make([]*regexp.Regexp, 0, len(uniq))
	for _, w := range uniq {
		var pattern string
		if isASCIIWord(w) {
			pattern = `(?i)\b` + regexp.QuoteMeta(w) + `\b`
		} else {
			pattern = `(?i)` + regexp.QuoteMeta(w)
		}
		pats = append(pats, regexp.MustCompile(pattern))
	}
	return &ProfanityFilter{patterns: pats}
}

func (pf *ProfanityFilter) Mask(s string) string {
	if pf == nil || len(pf.patterns) == 0 || s == "" {
		return s
	}
	out := s
	for _, re := range pf.patterns {
		out = re.ReplaceAllStringFunc(out, func(m string) string {
			return strings.Repeat("*", len([]rune(m)))
		})
	}
	return out
}

func isASCIIWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
