// Package api provides the HTTP REST API server for Investor GPS.
//
// It exposes endpoints for labor-statistics ingestion, the indicator
// dashboard, sentiment analysis, market reaction analysis, and WebSocket
// streaming of pipeline events.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/raghuchilukamari/investor-gps/internal/config"
	"github.com/raghuchilukamari/investor-gps/internal/macro"
	"github.com/raghuchilukamari/investor-gps/internal/macrometer"
	"github.com/raghuchilukamari/investor-gps/internal/news"
	"github.com/raghuchilukamari/investor-gps/internal/provider"
	"github.com/raghuchilukamari/investor-gps/internal/providers"
	"github.com/raghuchilukamari/investor-gps/internal/providers/bls"
	"github.com/raghuchilukamari/investor-gps/internal/reaction"
	"github.com/raghuchilukamari/investor-gps/internal/sentiment"
	"github.com/raghuchilukamari/investor-gps/internal/storage"
	"github.com/raghuchilukamari/investor-gps/pkg/models"
	"github.com/raghuchilukamari/investor-gps/pkg/utils"
)

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	store     *storage.Storage
	registry  *provider.Registry
	ingestor  *macro.Ingestor
	meter     *macrometer.Service
	reactions *reaction.Analyzer
	sentiment *sentiment.Analyzer
	collector *news.Collector
	wsHub     *WSHub
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("storage setup failed: %w", err)
	}

	registry := provider.NewRegistry()
	if err := providers.RegisterWithKeys(registry, cfg.Providers.BLSKey, cfg.Providers.FREDKey); err != nil {
		return nil, fmt.Errorf("provider setup failed: %w", err)
	}

	analyzer := sentiment.NewAnalyzer()

	srv := &Server{
		cfg:       cfg,
		store:     store,
		registry:  registry,
		ingestor:  macro.NewIngestor(registry, store),
		meter:     macrometer.NewService(registry, store),
		reactions: reaction.NewAnalyzer(registry, nil),
		sentiment: analyzer,
		collector: news.NewCollector(analyzer, store),
		wsHub:     NewWSHub(),
	}

	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Close releases the server's storage handle.
func (s *Server) Close() error {
	return s.store.Close()
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Labor statistics pipeline
		r.Post("/macro/ingest", s.handleMacroIngest)
		r.Get("/macro/matrix", s.handleMacroMatrix)
		r.Get("/macro/summary", s.handleMacroSummary)
		r.Get("/macro/series", s.handleMacroSeries)

		// Indicator dashboard
		r.Get("/macrometer", s.handleIndicatorList)
		r.Post("/macrometer", s.handleIndicatorCreate)
		r.Post("/macrometer/refresh", s.handleIndicatorRefresh)
		r.Get("/macrometer/{name}", s.handleIndicatorGet)
		r.Put("/macrometer/{name}", s.handleIndicatorUpdate)
		r.Delete("/macrometer/{name}", s.handleIndicatorDelete)

		// Sentiment analysis
		r.Post("/sentiment/analyze", s.handleSentimentAnalyze)
		r.Post("/sentiment/batch", s.handleSentimentBatch)
		r.Post("/sentiment/social", s.handleSocialPost)
		r.Get("/sentiment/social", s.handleSocialList)
		r.Post("/sentiment/news/collect", s.handleNewsCollect)
		r.Get("/sentiment/news", s.handleNewsList)
		r.Post("/sentiment/earnings", s.handleEarningsAnalyze)
		r.Get("/sentiment/earnings", s.handleEarningsList)

		// Market reaction analysis
		r.Post("/market-reaction/analyze", s.handleReactionAnalyze)
		r.Get("/market-reaction/events", s.handleReactionEvents)
		r.Get("/market-reaction/historical", s.handleReactionHistorical)
		r.Get("/market-reaction/historical/{event_type}", s.handleReactionHistorical)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// IngestRequest is the body for POST /api/v1/macro/ingest. An empty
// SeriesIDs list ingests the full named-series catalog; years default to
// the configured look-back window ending this year.
type IngestRequest struct {
	SeriesIDs []string `json:"series_ids,omitempty"`
	StartYear string   `json:"start_year,omitempty"`
	EndYear   string   `json:"end_year,omitempty"`
}

// AnalyzeTextRequest is the body for POST /api/v1/sentiment/analyze.
type AnalyzeTextRequest struct {
	Text string `json:"text"`
}

// AnalyzeBatchRequest is the body for POST /api/v1/sentiment/batch.
type AnalyzeBatchRequest struct {
	Texts []string `json:"texts"`
}

// SocialPostRequest is the body for POST /api/v1/sentiment/social.
type SocialPostRequest struct {
	Source  string `json:"source"`
	Author  string `json:"author,omitempty"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// EarningsRequest is the body for POST /api/v1/sentiment/earnings.
type EarningsRequest struct {
	Company    string `json:"company"`
	Ticker     string `json:"ticker"`
	Quarter    string `json:"quarter,omitempty"`
	Transcript string `json:"transcript"`
	CallDate   string `json:"call_date,omitempty"` // YYYY-MM-DD
}

// ReactionRequest is the body for POST /api/v1/market-reaction/analyze.
type ReactionRequest struct {
	EventType   string `json:"event_type"`
	Description string `json:"description,omitempty"`
	EventDate   string `json:"event_date"` // YYYY-MM-DD
}

// HistoricalReactionResponse wraps a historical scan. EventType echoes the
// requested route parameter; the scan itself covers all outsized moves in
// the window regardless of type.
type HistoricalReactionResponse struct {
	EventType  string                   `json:"event_type,omitempty"`
	WindowDays int                      `json:"window_days"`
	Moves      []models.SignificantMove `json:"moves"`
}

// ============================================================
// Health
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":    "ok",
			"version":   "dev",
			"providers": s.registry.List(),
			"time":      time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ============================================================
// Labor statistics handlers
// ============================================================

func (s *Server) handleMacroIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	ids := req.SeriesIDs
	if len(ids) == 0 {
		for _, id := range bls.SeriesMap {
			ids = append(ids, id)
		}
	}

	endYear := req.EndYear
	if endYear == "" {
		endYear = strconv.Itoa(time.Now().Year())
	}
	startYear := req.StartYear
	if startYear == "" {
		yearsBack := s.cfg.Macro.YearsBack
		if yearsBack <= 0 {
			yearsBack = 2
		}
		startYear = strconv.Itoa(time.Now().Year() - yearsBack)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.ingestor.Run(ctx, ids, startYear, endYear)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "ingest_complete",
		Data: map[string]interface{}{
			"series_stored":  len(result.SeriesStored),
			"series_skipped": len(result.SeriesSkipped),
			"matrix_rows":    result.MatrixRows,
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    result,
	})
}

func (s *Server) handleMacroMatrix(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListMatrixRows(r.Context(), r.URL.Query().Get("series"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    rows,
	})
}

func (s *Server) handleMacroSummary(w http.ResponseWriter, r *http.Request) {
	sums, err := s.store.ListSummaries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    sums,
	})
}

// handleMacroSeries lists the named series available for ingestion.
func (s *Server) handleMacroSeries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    bls.SeriesMap,
	})
}

// ============================================================
// Indicator dashboard handlers
// ============================================================

func (s *Server) handleIndicatorList(w http.ResponseWriter, r *http.Request) {
	list, err := s.meter.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    list,
	})
}

func (s *Server) handleIndicatorRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.meter.Refresh(ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "indicators_refreshed",
		Data: map[string]interface{}{
			"refreshed": len(result.Refreshed),
			"failed":    len(result.Failed),
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    result,
	})
}

func (s *Server) handleIndicatorGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap, err := s.meter.Get(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    snap,
	})
}

func (s *Server) handleIndicatorCreate(w http.ResponseWriter, r *http.Request) {
	var snap models.IndicatorSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.meter.Create(r.Context(), snap)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    created,
	})
}

func (s *Server) handleIndicatorUpdate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var upd models.IndicatorUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.meter.Update(r.Context(), name, upd)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    updated,
	})
}

func (s *Server) handleIndicatorDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.meter.Delete(r.Context(), name); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"deleted": name},
	})
}

// ============================================================
// Sentiment handlers
// ============================================================

func (s *Server) handleSentimentAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.sentiment.AnalyzeText(req.Text),
	})
}

func (s *Server) handleSentimentBatch(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.sentiment.AnalyzeTexts(req.Texts),
	})
}

func (s *Server) handleSocialPost(w http.ResponseWriter, r *http.Request) {
	var req SocialPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	res := s.sentiment.AnalyzeText(req.Content)
	post := models.SocialMediaPost{
		Source:         req.Source,
		Author:         req.Author,
		Content:        req.Content,
		URL:            req.URL,
		SentimentScore: res.CombinedScore,
		SentimentLabel: res.Label,
		Confidence:     res.Confidence,
		CreatedAt:      time.Now(),
	}
	id, err := s.store.SaveSocialPost(r.Context(), &post)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	post.ID = id

	writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    post,
	})
}

func (s *Server) handleSocialList(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListSocialPosts(r.Context(), recordFilterFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    posts,
	})
}

func (s *Server) handleNewsCollect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	var articles []models.NewsArticle
	var err error
	if r.URL.Query().Get("force") == "true" {
		articles, err = s.collector.ForceCollect(ctx, s.cfg.News.MaxArticles)
	} else {
		articles, err = s.collector.Collect(ctx, s.cfg.News.MaxArticles)
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "news_collected",
		Data: map[string]interface{}{"articles": len(articles)},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    articles,
	})
}

func (s *Server) handleNewsList(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.ListNewsArticles(r.Context(), recordFilterFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    articles,
	})
}

func (s *Server) handleEarningsAnalyze(w http.ResponseWriter, r *http.Request) {
	var req EarningsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Transcript == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	analysis, err := s.sentiment.AnalyzeEarningsCall(req.Transcript)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	call := models.EarningsCall{
		Company:        req.Company,
		Ticker:         req.Ticker,
		Quarter:        req.Quarter,
		Transcript:     req.Transcript,
		SentimentScore: analysis.Overall.SentimentScore,
		SentimentLabel: analysis.Overall.SentimentLabel,
		Confidence:     analysis.Overall.Confidence,
		Topics:         analysis.Topics,
	}
	if req.CallDate != "" {
		t, err := utils.ParseDateOnly(req.CallDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid call_date; use YYYY-MM-DD")
			return
		}
		call.CallDate = t
	}

	id, err := s.store.SaveEarningsCall(r.Context(), &call)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	call.ID = id

	writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"call":     call,
			"analysis": analysis,
		},
	})
}

func (s *Server) handleEarningsList(w http.ResponseWriter, r *http.Request) {
	calls, err := s.store.ListEarningsCalls(r.Context(), recordFilterFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    calls,
	})
}

// ============================================================
// Market reaction handlers
// ============================================================

func (s *Server) handleReactionAnalyze(w http.ResponseWriter, r *http.Request) {
	var req ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EventType == "" {
		writeError(w, http.StatusBadRequest, "event_type is required")
		return
	}
	eventDate, err := utils.ParseDateOnly(req.EventDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event_date; use YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	event, err := s.reactions.AnalyzeMarketReaction(ctx, eventDate, req.EventType, req.Description)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	id, err := s.store.SaveMarketEvent(ctx, event)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	event.ID = id

	s.wsHub.Broadcast(WSMessage{
		Type: "market_event_analyzed",
		Data: map[string]interface{}{
			"event_type": event.EventType,
			"direction":  event.AggregateReaction.Direction,
		},
	})

	writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    event,
	})
}

func (s *Server) handleReactionEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	events, err := s.store.ListMarketEvents(r.Context(), r.URL.Query().Get("type"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    events,
	})
}

func (s *Server) handleReactionHistorical(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", s.cfg.Reaction.HistoricalWindowDays)
	eventType := chi.URLParam(r, "event_type")

	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	moves, err := s.reactions.HistoricalReactions(ctx, days)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HistoricalReactionResponse{
			EventType:  eventType,
			WindowDays: days,
			Moves:      moves,
		},
	})
}

// ============================================================
// Helpers
// ============================================================

func recordFilterFromQuery(r *http.Request) storage.RecordFilter {
	return storage.RecordFilter{
		Source: r.URL.Query().Get("source"),
		Ticker: r.URL.Query().Get("ticker"),
		Days:   queryInt(r, "days", 0),
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; disconnect
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, client)
					close(client.send)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}
