package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

// RecordFilter narrows sentiment-record list queries. Zero values mean
// unfiltered; Days restricts to records from the last N days.
type RecordFilter struct {
	Source string
	Ticker string
	Days   int
	Limit  int
	Offset int
}

func (f RecordFilter) limit() int {
	if f.Limit <= 0 {
		return 50
	}
	return f.Limit
}

func (f RecordFilter) since() int64 {
	if f.Days <= 0 {
		return 0
	}
	return time.Now().AddDate(0, 0, -f.Days).Unix()
}

// SaveSocialPost persists a scored social media post and returns its ID.
func (s *Storage) SaveSocialPost(ctx context.Context, post *models.SocialMediaPost) (int64, error) {
	createdAt := post.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO social_media_posts
			(source, author, content, url, sentiment_score, sentiment_label, confidence, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		post.Source, post.Author, post.Content, post.URL,
		post.SentimentScore, post.SentimentLabel, post.Confidence, createdAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert social post: %w", err)
	}
	return res.LastInsertId()
}

// ListSocialPosts returns stored posts newest-first.
func (s *Storage) ListSocialPosts(ctx context.Context, filter RecordFilter) ([]models.SocialMediaPost, error) {
	query := `SELECT id, source, author, content, url, sentiment_score, sentiment_label, confidence, created_at
		FROM social_media_posts WHERE 1=1`
	var args []any
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	if since := filter.since(); since > 0 {
		query += ` AND created_at >= ?`
		args = append(args, since)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.limit(), filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query social posts: %w", err)
	}
	defer rows.Close()

	var out []models.SocialMediaPost
	for rows.Next() {
		var p models.SocialMediaPost
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Source, &p.Author, &p.Content, &p.URL,
			&p.SentimentScore, &p.SentimentLabel, &p.Confidence, &createdAt); err != nil {
			return nil, fmt.Errorf("scan social post: %w", err)
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveNewsArticle persists a scored news article and returns its ID.
func (s *Storage) SaveNewsArticle(ctx context.Context, art *models.NewsArticle) (int64, error) {
	publishedAt := art.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO news_articles
			(source, title, summary, url, sentiment_score, sentiment_label, confidence, published_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		art.Source, art.Title, art.Summary, art.URL,
		art.SentimentScore, art.SentimentLabel, art.Confidence, publishedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert news article: %w", err)
	}
	return res.LastInsertId()
}

// ListNewsArticles returns stored articles newest-first.
func (s *Storage) ListNewsArticles(ctx context.Context, filter RecordFilter) ([]models.NewsArticle, error) {
	query := `SELECT id, source, title, summary, url, sentiment_score, sentiment_label, confidence, published_at
		FROM news_articles WHERE 1=1`
	var args []any
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	if since := filter.since(); since > 0 {
		query += ` AND published_at >= ?`
		args = append(args, since)
	}
	query += ` ORDER BY published_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.limit(), filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query news articles: %w", err)
	}
	defer rows.Close()

	var out []models.NewsArticle
	for rows.Next() {
		var a models.NewsArticle
		var publishedAt int64
		if err := rows.Scan(&a.ID, &a.Source, &a.Title, &a.Summary, &a.URL,
			&a.SentimentScore, &a.SentimentLabel, &a.Confidence, &publishedAt); err != nil {
			return nil, fmt.Errorf("scan news article: %w", err)
		}
		a.PublishedAt = time.Unix(publishedAt, 0)
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveEarningsCall persists a scored earnings call and returns its ID.
func (s *Storage) SaveEarningsCall(ctx context.Context, call *models.EarningsCall) (int64, error) {
	callDate := call.CallDate
	if callDate.IsZero() {
		callDate = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO earnings_calls
			(company, ticker, quarter, transcript, sentiment_score, sentiment_label, confidence, topics, call_date)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		call.Company, call.Ticker, call.Quarter, call.Transcript,
		call.SentimentScore, call.SentimentLabel, call.Confidence,
		jsonString(call.Topics), callDate.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert earnings call: %w", err)
	}
	return res.LastInsertId()
}

// ListEarningsCalls returns stored calls newest-first, optionally filtered
// by ticker.
func (s *Storage) ListEarningsCalls(ctx context.Context, filter RecordFilter) ([]models.EarningsCall, error) {
	query := `SELECT id, company, ticker, quarter, transcript, sentiment_score, sentiment_label, confidence, topics, call_date
		FROM earnings_calls WHERE 1=1`
	var args []any
	if filter.Ticker != "" {
		query += ` AND ticker = ?`
		args = append(args, filter.Ticker)
	}
	if since := filter.since(); since > 0 {
		query += ` AND call_date >= ?`
		args = append(args, since)
	}
	query += ` ORDER BY call_date DESC LIMIT ? OFFSET ?`
	args = append(args, filter.limit(), filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query earnings calls: %w", err)
	}
	defer rows.Close()

	var out []models.EarningsCall
	for rows.Next() {
		var c models.EarningsCall
		var topicsJSON string
		var callDate int64
		if err := rows.Scan(&c.ID, &c.Company, &c.Ticker, &c.Quarter, &c.Transcript,
			&c.SentimentScore, &c.SentimentLabel, &c.Confidence, &topicsJSON, &callDate); err != nil {
			return nil, fmt.Errorf("scan earnings call: %w", err)
		}
		if err := json.Unmarshal([]byte(topicsJSON), &c.Topics); err != nil {
			c.Topics = nil
		}
		c.CallDate = time.Unix(callDate, 0)
		out = append(out, c)
	}
	return out, rows.Err()
}
