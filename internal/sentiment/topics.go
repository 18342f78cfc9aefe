package sentiment

import (
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

// minTopicMentions is the floor below which a noun phrase is treated as
// incidental rather than a discussion topic.
const minTopicMentions = 3

// splitSentences segments text into sentences with the NLP tokenizer.
func splitSentences(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return nil, err
	}
	var sentences []string
	for _, s := range doc.Sentences() {
		if t := strings.TrimSpace(s.Text); t != "" {
			sentences = append(sentences, t)
		}
	}
	return sentences, nil
}

// topicSentiments extracts noun-phrase topics per sentence and reports the
// mean sentiment of the sentences mentioning each topic, keeping only
// topics mentioned at least minTopicMentions times. Topics are returned
// sorted by mention count descending, ties broken alphabetically.
func topicSentiments(sentences []string, scores []float64) ([]models.TopicSentiment, error) {
	type acc struct {
		sum      float64
		mentions int
	}
	topics := make(map[string]*acc)

	for i, sentence := range sentences {
		phrases, err := nounPhrases(sentence)
		if err != nil {
			return nil, err
		}
		for _, phrase := range phrases {
			t, ok := topics[phrase]
			if !ok {
				t = &acc{}
				topics[phrase] = t
			}
			t.sum += scores[i]
			t.mentions++
		}
	}

	var out []models.TopicSentiment
	for topic, t := range topics {
		if t.mentions < minTopicMentions {
			continue
		}
		out = append(out, models.TopicSentiment{
			Topic:    topic,
			Score:    round3(t.sum / float64(t.mentions)),
			Mentions: t.mentions,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mentions != out[j].Mentions {
			return out[i].Mentions > out[j].Mentions
		}
		return out[i].Topic < out[j].Topic
	})
	return out, nil
}

// nounPhrases returns the lowercase noun phrases of one sentence: maximal
// runs of consecutive noun-tagged tokens.
func nounPhrases(sentence string) ([]string, error) {
	doc, err := prose.NewDocument(sentence, prose.WithSegmentation(false), prose.WithExtraction(false))
	if err != nil {
		return nil, err
	}

	var phrases []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			phrases = append(phrases, strings.ToLower(strings.Join(current, " ")))
			current = nil
		}
	}

	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "NN") {
			current = append(current, tok.Text)
			continue
		}
		flush()
	}
	flush()
	return phrases, nil
}
