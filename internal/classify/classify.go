// Package classify turns raw transcriptions and keypad digits into the small
// set of semantic categories the dialogue machine branches on.
package classify

import (
	"strings"
)

// Kind is the semantic category of one caller turn.
type Kind string

const (
	Affirmative  Kind = "affirmative"
	Negative     Kind = "negative"
	Digit        Kind = "digit"
	Unrecognized Kind = "unrecognized"
)

// Input is one classified caller turn. Text always holds the normalized
// utterance so keyword checks downstream see the same form the word-set
// matching saw.
type Input struct {
	Kind  Kind
	Digit string
	Text  string
}

var affirmativeWords = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "yup": {}, "ya": {},
	"sure": {}, "absolutely": {}, "correct": {}, "right": {}, "affirmative": {},
}

var negativeWords = map[string]struct{}{
	"no": {}, "nope": {}, "nah": {}, "not": {}, "never": {}, "negative": {},
}

// Normalize lowercases the utterance and strips everything except letters and
// whitespace. Digits and punctuation are discarded, so spoken numbers do not
// survive normalization. Normalize is idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || r == ' ' || r == '\t' || r == '\n' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Classify categorizes a normalized utterance. Affirmative is checked before
// negative, so an utterance matching both word sets ("yes no") classifies
// Affirmative. A single matching token anywhere triggers the category; there
// is no negation handling.
func Classify(normalized string) Input {
	in := Input{Kind: Unrecognized, Text: normalized}
	tokens := strings.Fields(normalized)
	for _, tok := range tokens {
		if _, ok := affirmativeWords[tok]; ok {
			in.Kind = Affirmative
			return in
		}
	}
	for _, tok := range tokens {
		if _, ok := negativeWords[tok]; ok {
			in.Kind = Negative
			return in
		}
	}
	return in
}

// Utterance normalizes and classifies raw transcription text.
func Utterance(text string) Input {
	return Classify(Normalize(text))
}

// FromDigits wraps a keypad capture. Only the first digit is significant; the
// gather is configured for a single digit.
func FromDigits(digits string) Input {
	return Input{Kind: Digit, Digit: digits}
}

// WantsReminder reports whether a follow-up utterance asks for a payment
// reminder. Substring containment on the normalized text, matching the
// single-keyword heuristic of the rest of the classifier.
func WantsReminder(in Input) bool {
	return strings.Contains(in.Text, "remind") || in.Kind == Affirmative
}

// WantsSettlement reports whether a follow-up utterance asks about settling
// for a lower amount.
func WantsSettlement(in Input) bool {
	return strings.Contains(in.Text, "settlement") || strings.Contains(in.Text, "lower amount")
}
