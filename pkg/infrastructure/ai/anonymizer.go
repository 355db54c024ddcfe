package ai

import (
	"regexp"
	"strings"
)

var (
	nipPattern   = regexp.MustCompile(`\b\d{10}\b`)
	peselPattern = regexp.MustCompile(`\b\d{11}\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// Anonymizer masks tax ids, personal ids, e-mail addresses and registered
// terms before a prompt leaves the process
type Anonymizer struct {
	terms map[string]string
}

// NewAnonymizer creates an anonymizer with the built-in patterns only
func NewAnonymizer() *Anonymizer {
	return &Anonymizer{terms: make(map[string]string)}
}

// Mask registers a literal term, such as a vendor name, to be replaced
func (a *Anonymizer) Mask(term, replacement string) {
	if strings.TrimSpace(term) == "" {
		return
	}
	a.terms[term] = replacement
}

// Anonymize returns text with sensitive data replaced by placeholders
func (a *Anonymizer) Anonymize(text string) string {
	if text == "" {
		return ""
	}

	for term, replacement := range a.terms {
		text = strings.ReplaceAll(text, term, replacement)
	}
	text = nipPattern.ReplaceAllString(text, "[NIP]")
	text = peselPattern.ReplaceAllString(text, "[PESEL]")
	return emailPattern.ReplaceAllString(text, "[EMAIL]")
}
