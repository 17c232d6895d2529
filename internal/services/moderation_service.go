package services

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	reasonLanguage = "inappropriate_language"
	reasonURL      = "url_not_allowed"
	reasonSpam     = "spam_detected"
	reasonCaps     = "excessive_caps"
)

// BannedWords are matched as whole tokens after lower-casing.
var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "faggot", "retard",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
	"đm", "dm", "đcm", "dcm", "vcl", "vkl", "clgt",
	"địt", "đụ", "lồn", "cặc", "buồi", "đĩ", "óc chó",
}

var rejectionMessages = map[string]string{
	reasonLanguage: "Your message contains inappropriate language.",
	reasonURL:      "Links are not allowed here.",
	reasonSpam:     "Your message appears to be spam.",
	reasonCaps:     "Please avoid using excessive capital letters.",
}

// ContentFilter screens user text posted to songs and direct chat.
type ContentFilter struct {
	words   map[string]bool
	phrases []string
	url     *regexp.Regexp
	caps    *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		words: make(map[string]bool, len(BannedWords)),
		url:   regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		caps:  regexp.MustCompile(`\p{Lu}{5,}`),
	}
	for _, w := range BannedWords {
		if strings.Contains(w, " ") {
			f.phrases = append(f.phrases, w)
			continue
		}
		f.words[w] = true
	}
	return f
}

// Filter returns ok=false and a reason code when text breaks the rules.
func (f *ContentFilter) Filter(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	lower := normalizeText(text)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		if f.words[tok] {
			return false, reasonLanguage
		}
	}
	for _, p := range f.phrases {
		if strings.Contains(lower, p) {
			return false, reasonLanguage
		}
	}
	if f.url.MatchString(text) {
		return false, reasonURL
	}
	if hasRun(lower, 6) {
		return false, reasonSpam
	}
	if len(f.caps.FindAllString(text, -1)) > 2 {
		return false, reasonCaps
	}
	return true, ""
}

// hasRun reports whether any letter or !?. repeats n times in a row.
func hasRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev && (unicode.IsLetter(r) || strings.ContainsRune("!?.", r)) {
			run++
			if run >= n {
				return true
			}
			continue
		}
		prev, run = r, 1
	}
	return false
}

// Check is Filter as an ErrInvalidInput. A nil filter accepts everything.
func (f *ContentFilter) Check(text string) error {
	if f == nil {
		return nil
	}
	ok, reason := f.Filter(text)
	if ok {
		return nil
	}
	return invalid("%s", RejectionMessage(reason))
}

func RejectionMessage(reason string) string {
	if msg, ok := rejectionMessages[reason]; ok {
		return msg
	}
	return "Your message does not meet our content guidelines."
}
