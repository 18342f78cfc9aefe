package sentiment

import "strings"

// ------------------------------------------------------------------
// Finance-lexicon polarity scorer. Deterministic and offline; paired
// with the VADER scorer as the second independent polarity signal.
// ------------------------------------------------------------------

// bullish / bearish keyword dictionaries (lowercase).
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"buy": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beat": 0.5,
	"exceeds": 0.5, "beats estimate": 0.6, "expansion": 0.4,
	"profit": 0.3, "dividend": 0.4, "accumulate": 0.5,
	"soar": 0.7, "momentum": 0.4, "optimistic": 0.5, "resilient": 0.4,
	"cooling inflation": 0.6, "rate cut": 0.5, "soft landing": 0.5,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6,
	"negative": 0.4, "downgrade": 0.6, "underperform": 0.6,
	"sell": 0.5, "weak": 0.4, "decline": 0.5, "loss": 0.4,
	"selloff": 0.7, "fall": 0.4, "correction": 0.5,
	"default": 0.7, "fraud": 0.8, "scam": 0.8, "investigation": 0.5,
	"cut": 0.3, "miss": 0.5, "warning": 0.5, "concern": 0.3,
	"recession": 0.7, "stagflation": 0.7, "rate hike": 0.4,
	"layoffs": 0.6, "contraction": 0.5, "downturn": 0.6,
}

// lexiconScore returns a polarity score in [-1, 1] for the given text:
// the net bullish-vs-bearish keyword weight, normalized by the total
// matched weight. Text with no keyword matches scores 0.
func lexiconScore(text string) float64 {
	lower := strings.ToLower(text)

	bullScore := 0.0
	bearScore := 0.0

	for word, weight := range bullishWords {
		if strings.Contains(lower, word) {
			bullScore += weight
		}
	}
	for word, weight := range bearishWords {
		if strings.Contains(lower, word) {
			bearScore += weight
		}
	}

	total := bullScore + bearScore
	if total == 0 {
		return 0
	}
	return (bullScore - bearScore) / total
}
