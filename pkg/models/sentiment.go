package models

import "time"

// Sentiment direction labels shared by the sentiment and reaction services.
const (
	LabelBullish = "bullish"
	LabelNeutral = "neutral"
	LabelBearish = "bearish"
)

// SentimentResult is the outcome of scoring a single text with both
// polarity engines. It is ephemeral: results are embedded into the records
// below rather than persisted on their own.
type SentimentResult struct {
	LexiconScore  float64 `json:"lexicon_score"`
	VaderScore    float64 `json:"vader_score"`
	CombinedScore float64 `json:"combined_score"`
	Label         string  `json:"label"`
	Confidence    float64 `json:"confidence"` // 1 - |lexicon-vader|/2, in [0,1]
}

// BatchSentiment aggregates combined scores over a batch of texts.
type BatchSentiment struct {
	SentimentScore float64 `json:"sentiment_score"`
	SentimentLabel string  `json:"sentiment_label"`
	Confidence     float64 `json:"confidence"`
	SampleSize     int     `json:"sample_size"`
}

// TopicSentiment is the mean sentiment of sentences mentioning one topic.
type TopicSentiment struct {
	Topic    string  `json:"topic"`
	Score    float64 `json:"score"`
	Mentions int     `json:"mentions"`
}

// EarningsCallSentiment is the full analysis of a call transcript: overall
// sentence-level aggregate plus per-topic sentiment for recurring topics.
type EarningsCallSentiment struct {
	Overall BatchSentiment   `json:"overall_sentiment"`
	Topics  []TopicSentiment `json:"topic_sentiments"`
}

// SocialMediaPost is a scored social post stored for the dashboard.
type SocialMediaPost struct {
	ID             int64     `json:"id,omitempty"`
	Source         string    `json:"source"`
	Author         string    `json:"author,omitempty"`
	Content        string    `json:"content"`
	URL            string    `json:"url,omitempty"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel string    `json:"sentiment_label"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewsArticle is a scored news article stored for the dashboard.
type NewsArticle struct {
	ID             int64     `json:"id,omitempty"`
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary,omitempty"`
	URL            string    `json:"url,omitempty"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel string    `json:"sentiment_label"`
	Confidence     float64   `json:"confidence"`
	PublishedAt    time.Time `json:"published_at"`
}

// EarningsCall is a scored earnings-call transcript stored for the dashboard.
type EarningsCall struct {
	ID             int64            `json:"id,omitempty"`
	Company        string           `json:"company"`
	Ticker         string           `json:"ticker"`
	Quarter        string           `json:"quarter,omitempty"`
	Transcript     string           `json:"transcript,omitempty"`
	SentimentScore float64          `json:"sentiment_score"`
	SentimentLabel string           `json:"sentiment_label"`
	Confidence     float64          `json:"confidence"`
	Topics         []TopicSentiment `json:"topic_sentiments,omitempty"`
	CallDate       time.Time        `json:"call_date"`
}
