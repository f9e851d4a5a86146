package analysis

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"finlens/internal/domain"
)

const earningsSystemPrompt = "You are a precise earnings analyst. Extract EXACT information. No hallucinations."

// EarningsConfig returns the task that analyses an earnings call transcript.
func EarningsConfig(maxChars int) Config[domain.EarningsAnalysis] {
	return Config[domain.EarningsAnalysis]{
		Name:         "earnings",
		SystemPrompt: earningsSystemPrompt,
		BuildPrompt: func(text string, _ *domain.TableClassification) string {
			return BuildEarningsPrompt(text, maxChars)
		},
		Temperature: 0.1,
		MaxTokens:   3000,
		Normalize:   normalizeEarnings,
		Richness: func(a *domain.EarningsAnalysis) error {
			if !a.ManagementTone.Valid() {
				return fmt.Errorf("invalid management tone %q", a.ManagementTone)
			}
			if len(a.KeyPositives)+len(a.KeyConcerns) == 0 {
				return errors.New("no positives or concerns returned")
			}
			return nil
		},
		Fallback: func(text string, _ *domain.TableClassification) *domain.EarningsAnalysis {
			return EarningsFallback(text)
		},
	}
}

// BuildEarningsPrompt embeds at most maxChars of the transcript.
func BuildEarningsPrompt(text string, maxChars int) string {
	return `Analyze this earnings call transcript with PRECISION:

` + truncate(text, maxChars) + `

Extract EXACT information and respond with ONLY this JSON:

{
  "management_tone": "optimistic/cautious/neutral",
  "confidence_level": "high/medium/low",
  "tone_explanation": "explanation with direct quotes",
  "key_positives": ["positive 1 with numbers", "positive 2 with numbers"],
  "key_concerns": ["concern 1 with details", "concern 2 with details"],
  "forward_guidance": {
    "revenue": "exact numbers",
    "margin": "exact numbers",
    "capex": "exact numbers",
    "other": "other guidance"
  },
  "capacity_utilization": "exact percentage",
  "growth_initiatives": ["initiative 1", "initiative 2"],
  "notable_quotes": ["exact quote 1", "exact quote 2"],
  "analysis_confidence": "high/medium/low"
}`
}

func normalizeEarnings(a *domain.EarningsAnalysis) {
	a.ManagementTone = domain.ManagementTone(strings.ToLower(strings.TrimSpace(string(a.ManagementTone))))
	a.ConfidenceLevel = domain.Confidence(strings.ToLower(string(a.ConfidenceLevel)))
	a.AnalysisConfidence = domain.Confidence(strings.ToLower(string(a.AnalysisConfidence)))
	for _, list := range []*[]string{&a.KeyPositives, &a.KeyConcerns, &a.GrowthInitiatives, &a.NotableQuotes} {
		if *list == nil {
			*list = []string{}
		}
	}
}

const (
	maxQuotes      = 3
	maxSentences   = 3
	maxSentenceLen = 240
	seeTranscript  = "See transcript"
)

var (
	positiveWords = regexp.MustCompile(`(?i)\b(?:growth|grew|increase[ds]?|strong(?:er)?|record|exceed(?:ed|s)?|success(?:ful)?|improv(?:ed|ement)|robust)\b`)
	negativeWords = regexp.MustCompile(`(?i)\b(?:decline[ds]?|concerns?|challeng(?:e|es|ing)|decrease[ds]?|weak(?:er|ness)?|headwinds?|pressures?)\b`)

	figure = `((?:[$₹€]\s?|rs\.?\s?|inr\s?|usd\s?)?\d[\d,]*(?:\.\d+)?\s?(?:%|percent|million|billion|crores?|lakhs?|mn|bn|cr)?)`

	revenueFigure  = regexp.MustCompile(`(?i)\brevenues?\b[^.\n]{0,60}?` + figure)
	marginFigure   = regexp.MustCompile(`(?i)\bmargins?\b[^.\n]{0,60}?(\d+(?:\.\d+)?\s?(?:%|percent|bps|basis points))`)
	capacityFigure = regexp.MustCompile(`(?i)\bcapacity(?: utili[sz]ation)?\b[^.\n]{0,60}?(\d+(?:\.\d+)?\s?(?:%|percent))`)
	capexFigure    = regexp.MustCompile(`(?i)\b(?:capex|capital expenditure)\b[^.\n]{0,60}?` + figure)

	growthWords = regexp.MustCompile(`(?i)\b(?:expan(?:d|ding|sion)|launch(?:ed|es|ing)?|new (?:products?|plants?|facilit(?:y|ies)|markets?)|acqui(?:re|red|sition))\b`)

	quoted           = regexp.MustCompile(`"([^"\n]+)"|“([^”]+)”`)
	sentenceBoundary = regexp.MustCompile(`[.!?]+(?:\s+|$)|\n{2,}`)
)

// EarningsFallback analyses a transcript with keyword and pattern heuristics.
func EarningsFallback(text string) *domain.EarningsAnalysis {
	pos := len(positiveWords.FindAllStringIndex(text, -1))
	neg := len(negativeWords.FindAllStringIndex(text, -1))

	tone := domain.ToneNeutral
	switch {
	case pos > 0 && neg == 0:
		tone = domain.ToneOptimistic
	case neg > 0 && pos == 0:
		tone = domain.ToneCautious
	}

	revenue := firstGroup(revenueFigure, text)
	margin := firstGroup(marginFigure, text)
	capacity := firstGroup(capacityFigure, text)
	capex := firstGroup(capexFigure, text)

	var positives []string
	if revenue != "" {
		positives = append(positives, "Revenue: "+revenue)
	}
	if margin != "" {
		positives = append(positives, "Margin: "+margin)
	}
	if capacity != "" {
		positives = append(positives, "Capacity utilization: "+capacity)
	}
	if len(positives) == 0 {
		positives = []string{"Revenue growth mentioned", "Strong performance indicators"}
	}

	sentences := splitSentences(text)
	concerns := matchingSentences(sentences, negativeWords)
	if len(concerns) == 0 {
		concerns = []string{"Market challenges referenced", "Competitive pressures"}
	}
	initiatives := matchingSentences(sentences, growthWords)
	if len(initiatives) == 0 {
		initiatives = []string{"Expansion plans", "New products"}
	}

	utilization := "Discussed in transcript"
	if capacity != "" {
		utilization = capacity
	}

	return &domain.EarningsAnalysis{
		ManagementTone:  tone,
		ConfidenceLevel: domain.ConfidenceMedium,
		ToneExplanation: fmt.Sprintf("Pattern-based analysis: %d positive and %d negative keyword matches", pos, neg),
		KeyPositives:    positives,
		KeyConcerns:     concerns,
		ForwardGuidance: domain.ForwardGuidance{
			Revenue: orDefault(revenue, seeTranscript),
			Margin:  orDefault(margin, seeTranscript),
			Capex:   orDefault(capex, seeTranscript),
			Other:   seeTranscript,
		},
		CapacityUtilization: utilization,
		GrowthInitiatives:   initiatives,
		NotableQuotes:       Quotes(text, maxQuotes),
		AnalysisConfidence:  domain.ConfidenceMedium,
	}
}

// Quotes returns up to limit quoted passages, straight or curly.
func Quotes(text string, limit int) []string {
	out := []string{}
	for _, m := range quoted.FindAllStringSubmatch(text, -1) {
		if len(out) == limit {
			break
		}
		q := m[1]
		if q == "" {
			q = m[2]
		}
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceBoundary.Split(text, -1) {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func matchingSentences(sentences []string, re *regexp.Regexp) []string {
	var out []string
	for _, s := range sentences {
		if len(out) == maxSentences {
			break
		}
		if re.MatchString(s) {
			out = append(out, truncate(s, maxSentenceLen))
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
