// Package text implements the Text Analyzer (spec §4.D): a pure function
// of a transcript segment's text, combining five lexical/structural
// sub-metrics into a single [0,1] score.
package text

import (
	"regexp"
	"strings"
)

// Keywords and action verbs are mutable configuration (spec §4.D); callers
// can override the defaults via NewAnalyzer.
var DefaultKeywords = []string{
	"secret", "shocking", "never", "always", "proven", "instantly",
	"guaranteed", "unbelievable", "warning", "mistake", "truth", "finally",
}

var DefaultActionVerbs = []string{
	"watch", "stop", "try", "discover", "learn", "imagine", "start",
	"build", "create", "avoid", "unlock", "transform",
}

var emotionWords = map[string]bool{
	"amazing": true, "incredible": true, "shocking": true, "terrifying": true,
	"hilarious": true, "devastating": true, "thrilling": true, "heartbreaking": true,
	"love": true, "hate": true, "furious": true, "ecstatic": true,
}

// stopWords covers the two languages the teacher's plan prompts already
// parametrize over (Language field in openai.go): English and Spanish.
var stopWords = map[string]bool{
	// English
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "can": true, "her": true, "was": true, "one": true,
	"our": true, "out": true, "day": true, "get": true, "has": true, "him": true,
	"his": true, "how": true, "man": true, "new": true, "now": true, "old": true,
	"see": true, "two": true, "way": true, "who": true, "boy": true, "did": true,
	"its": true, "let": true, "put": true, "say": true, "she": true, "too": true,
	"use": true, "with": true, "that": true, "this": true, "have": true, "from": true,
	"they": true, "been": true, "were": true, "what": true, "your": true,
	// Spanish
	"que": true, "los": true, "las": true, "del": true, "con": true, "por": true,
	"para": true, "una": true, "uno": true, "como": true, "pero": true, "muy": true,
	"más": true, "esta": true, "este": true, "son": true, "han": true, "era": true,
}

var (
	wordRe = regexp.MustCompile(`[\p{L}\p{N}']+`)
)

// Analyzer scores transcript text on lexical/structural cues. Build one
// with Default (package keyword/action-verb lists) or NewAnalyzer (caller
// supplied lists); the zero value has no keywords, action verbs or
// question words, so those three sub-metrics always score 0.
type Analyzer struct {
	keywords    []string
	actionVerbs []string
	questionWords map[string]bool
}

// NewAnalyzer builds an Analyzer with the given keyword and action-verb
// lists, lower-cased for case-insensitive matching.
func NewAnalyzer(keywords, actionVerbs []string) *Analyzer {
	return &Analyzer{
		keywords:    lowerAll(keywords),
		actionVerbs: lowerAll(actionVerbs),
		questionWords: map[string]bool{
			"why": true, "how": true, "what": true, "when": true, "where": true,
			"who": true, "which": true, "por qué": true, "cómo": true, "qué": true,
		},
	}
}

// Default returns an Analyzer configured with DefaultKeywords/DefaultActionVerbs.
func Default() *Analyzer {
	return NewAnalyzer(DefaultKeywords, DefaultActionVerbs)
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

// Score computes the combined text score for a segment's text (spec §4.D).
// Empty input returns 0.
func (a *Analyzer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	e := a.emotionalIntensity(text)
	k := a.keywordDensity(text)
	i := a.informationDensity(text)
	q := a.questionScore(text)
	act := a.actionWords(text)

	combined := 0.25*e + 0.35*k + 0.20*i + 0.10*q + 0.10*act
	return clamp01(combined)
}

func (a *Analyzer) emotionalIntensity(text string) float64 {
	exclaim := strings.Count(text, "!")
	question := strings.Count(text, "?")

	words := wordRe.FindAllString(text, -1)
	emotionCount := 0
	allCaps := 0
	for _, w := range words {
		if emotionWords[strings.ToLower(w)] {
			emotionCount++
		}
		if len([]rune(w)) > 2 && isAllCaps(w) {
			allCaps++
		}
	}

	return clamp01(
		0.5*minf(1, float64(exclaim+question)/3) +
			0.3*minf(1, float64(emotionCount)/2) +
			0.2*minf(1, float64(allCaps)/3),
	)
}

func (a *Analyzer) keywordDensity(text string) float64 {
	lower := strings.ToLower(text)
	matches := 0
	for _, kw := range a.keywords {
		matches += strings.Count(lower, kw)
	}
	return clamp01(minf(1, float64(matches)/3))
}

func (a *Analyzer) informationDensity(text string) float64 {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	meaningful := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) > 2 && !stopWords[w] {
			meaningful = append(meaningful, w)
		}
	}
	if len(meaningful) == 0 {
		return 0
	}
	unique := map[string]bool{}
	for _, w := range meaningful {
		unique[w] = true
	}
	ratio := float64(len(unique)) / float64(len(meaningful))
	return clamp01(minf(1, ratio/0.7))
}

func (a *Analyzer) questionScore(text string) float64 {
	question := strings.Count(text, "?")
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	questionWordCount := 0
	for _, w := range words {
		if a.questionWords[w] {
			questionWordCount++
		}
	}
	return clamp01(minf(1, (float64(question)+0.5*float64(questionWordCount))/2))
}

func (a *Analyzer) actionWords(text string) float64 {
	lower := strings.ToLower(text)
	matches := 0
	for _, v := range a.actionVerbs {
		matches += strings.Count(lower, v)
	}
	return clamp01(minf(1, float64(matches)/2))
}

func isAllCaps(w string) bool {
	hasLetter := false
	for _, r := range w {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
