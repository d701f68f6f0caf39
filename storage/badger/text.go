package badger

import (
	"regexp"
	"strings"
)

// tokenize splits text into words, lowercases and trims punctuation.
func tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}·…“”‘’「」『』"))
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}

// titleMatches reports whether any phrase token matches a title word. A
// title word matches when it starts with the token, so Korean words with
// particles attached ("반도체가") still match their stem ("반도체").
// An empty phrase matches nothing.
func titleMatches(title string, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	titleWords := tokenize(title)
	for _, p := range phrase {
		for _, w := range titleWords {
			if strings.HasPrefix(w, p) {
				return true
			}
		}
	}
	return false
}

// compileLike turns a LIKE pattern into a matcher. % matches any run of
// characters and _ exactly one; everything else is literal.
func compileLike(pattern string) (func(string) bool, error) {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(`.*`)
		case '_':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	return re.MatchString, nil
}
