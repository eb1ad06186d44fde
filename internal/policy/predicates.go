package policy

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Each heuristic is an independent predicate so every rule can be tested
// on its own; the policy composes them in order.

const repeatedCharRun = 6

func isRepeatedChar(text string) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run >= repeatedCharRun {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}

	return false
}

func isAllCaps(text string) bool {
	if utf8.RuneCountInString(text) <= 10 {
		return false
	}

	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}

	return hasLetter
}

func isExcessivePunctuation(text string) bool {
	run := 0
	for _, r := range text {
		if r == '!' || r == '?' {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 0
		}
	}

	return false
}

var defaultBannedWords = []string{
	"死ね",
	"殺す",
	"キチガイ",
	"kys",
	"kill yourself",
}

func matchesBannedWord(text string, bannedWords []string) bool {
	lowered := strings.ToLower(text)
	for _, word := range bannedWords {
		if strings.Contains(lowered, strings.ToLower(word)) {
			return true
		}
	}

	return false
}

var spamSignatures = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://\S+`),
	regexp.MustCompile(`(?i)(discord\.gg|discord\.com/invite|t\.me)/\S+`),
	regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
	regexp.MustCompile(`\d{8,}`),
}

func matchesSpamSignature(text string) bool {
	for _, sig := range spamSignatures {
		if sig.MatchString(text) {
			return true
		}
	}

	return false
}
