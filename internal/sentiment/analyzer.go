// Package sentiment scores financial text with two independent polarity
// signals — a VADER-style intensity analyzer and a finance keyword lexicon —
// and aggregates them over batches, earnings-call transcripts, and topics.
package sentiment

import (
	"fmt"
	"math"

	"github.com/jonreiter/govader"

	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

// Analyzer combines the two polarity scorers. Safe for concurrent use; the
// underlying intensity analyzer is read-only after construction.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer creates an analyzer with a freshly built VADER model.
func NewAnalyzer() *Analyzer {
	return &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// AnalyzeText scores one text. The combined score is the arithmetic mean of
// the two signals; confidence reflects their agreement: 1 - |a-b|/2, so two
// identical scores give full confidence and maximally opposed ones give 0.
func (a *Analyzer) AnalyzeText(text string) models.SentimentResult {
	vaderScore := a.vader.PolarityScores(text).Compound
	lexScore := lexiconScore(text)

	combined := (vaderScore + lexScore) / 2
	confidence := 1 - math.Abs(vaderScore-lexScore)/2

	return models.SentimentResult{
		VaderScore:    round3(vaderScore),
		LexiconScore:  round3(lexScore),
		CombinedScore: round3(combined),
		Label:         ScoreLabel(combined),
		Confidence:    round3(confidence),
	}
}

// AnalyzeTexts aggregates per-text combined scores into a batch result:
// mean score, population standard deviation as the dispersion measure, and
// confidence 1 - min(std, 1). An empty batch is a defined zero result, not
// an error.
func (a *Analyzer) AnalyzeTexts(texts []string) models.BatchSentiment {
	if len(texts) == 0 {
		return models.BatchSentiment{
			SentimentScore: 0.0,
			SentimentLabel: models.LabelNeutral,
			Confidence:     0.0,
			SampleSize:     0,
		}
	}

	scores := make([]float64, len(texts))
	for i, t := range texts {
		scores[i] = a.AnalyzeText(t).CombinedScore
	}
	return aggregateScores(scores)
}

// AnalyzeEarningsCall segments a transcript into sentences, scores each one,
// and aggregates like AnalyzeTexts. Sentences are additionally grouped by
// extracted noun-phrase topics; topics mentioned at least three times are
// reported with their mean sentiment.
func (a *Analyzer) AnalyzeEarningsCall(transcript string) (*models.EarningsCallSentiment, error) {
	sentences, err := splitSentences(transcript)
	if err != nil {
		return nil, fmt.Errorf("segment transcript: %w", err)
	}

	scores := make([]float64, len(sentences))
	for i, s := range sentences {
		scores[i] = a.AnalyzeText(s).CombinedScore
	}

	topics, err := topicSentiments(sentences, scores)
	if err != nil {
		return nil, fmt.Errorf("extract topics: %w", err)
	}

	return &models.EarningsCallSentiment{
		Overall: aggregateScores(scores),
		Topics:  topics,
	}, nil
}

// ScoreLabel maps a combined or aggregate score to its label.
func ScoreLabel(score float64) string {
	switch {
	case score >= 0.05:
		return models.LabelBullish
	case score <= -0.05:
		return models.LabelBearish
	default:
		return models.LabelNeutral
	}
}

func aggregateScores(scores []float64) models.BatchSentiment {
	if len(scores) == 0 {
		return models.BatchSentiment{
			SentimentScore: 0.0,
			SentimentLabel: models.LabelNeutral,
			Confidence:     0.0,
			SampleSize:     0,
		}
	}

	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	std := populationStd(scores, mean)

	return models.BatchSentiment{
		SentimentScore: round3(mean),
		SentimentLabel: ScoreLabel(mean),
		Confidence:     round3(1 - math.Min(std, 1)),
		SampleSize:     len(scores),
	}
}

func populationStd(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
