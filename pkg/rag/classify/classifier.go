package classify

import (
	"math/rand"
	"strings"
	"unicode"
)

// group pairs trigger keywords with canned response variants.
type group struct {
	keywords  []string
	responses []string
}

// Classifier short-circuits small talk before any embedding or LLM call is
// spent on it. Single-word keywords match whole words of the lower-cased
// question ("hi" matches "hi there" but not "which"); multi-word phrases
// match as substrings.
//
// Known limitation: a real question that contains a genuine greeting word
// ("hi, but what are your skills?") still short-circuits. An
// intent-confidence check would fix that but changes behavior, so word
// membership is where the matching stops.
type Classifier struct {
	groups []group
}

func NewClassifier() *Classifier {
	return &Classifier{
		groups: []group{
			{
				keywords: []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening", "what's up", "whats up"},
				responses: []string{
					"Hey there! Ask me anything about the owner of this portfolio.",
					"Hello! I can tell you about the owner's projects, certifications, and background.",
					"Hi! What would you like to know about the owner?",
				},
			},
			{
				keywords: []string{"bye", "goodbye", "see you", "see ya", "good night", "take care", "farewell"},
				responses: []string{
					"Goodbye! Feel free to come back anytime.",
					"Take care! Thanks for stopping by.",
					"See you around!",
				},
			},
			{
				keywords: []string{"thank", "thanks", "thx", "appreciate"},
				responses: []string{
					"You're welcome!",
					"Happy to help!",
					"Anytime! Anything else you'd like to know?",
				},
			},
		},
	}
}

// Classify returns a canned reply and true when the question is small talk,
// or ("", false) when the pipeline should proceed to retrieval.
func (c *Classifier) Classify(question string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return "", false
	}

	words := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	for _, g := range c.groups {
		for _, kw := range g.keywords {
			if matches(q, words, kw) {
				return g.responses[rand.Intn(len(g.responses))], true
			}
		}
	}
	return "", false
}

// matches checks a phrase keyword as a substring and a single-word keyword
// against whole words only, so short keywords like "hi" never fire inside
// unrelated words ("which", "this").
func matches(q string, words []string, kw string) bool {
	if strings.ContainsRune(kw, ' ') {
		return strings.Contains(q, kw)
	}
	for _, w := range words {
		if w == kw {
			return true
		}
	}
	return false
}
