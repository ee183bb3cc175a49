package utils

import (
	"regexp"
	"strings"
)

var hashtagRe = regexp.MustCompile(`#([\p{L}\p{M}0-9_]+)`)

// ExtractHashtags returns the distinct hashtags in text, lower-cased, in order
// of first appearance. Tags containing profanity are dropped.
func ExtractHashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	seen := map[string]struct{}{}
	for _, m := range matches {
		raw := m[1]
		if MaskProfanity(raw) != raw {
			continue
		}
		tag := strings.ToLower(raw)
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
