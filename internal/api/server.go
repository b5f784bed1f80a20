// Package api is an HTTP embedding layer over a single-instrument
// engine.Engine. The engine has no knowledge of this package, no
// import of net/http, and nothing here participates in matching.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lobmatch/lobmatch/internal/book"
	"github.com/lobmatch/lobmatch/internal/engine"
)

// Server exposes one engine.Engine over HTTP. net/http runs each request
// on its own goroutine, and the engine offers no internal synchronization,
// so Server holds a coarse lock around every call into it — the same
// shape as a per-symbol sync.RWMutex, collapsed to one lock since this
// engine is single-instrument.
type Server struct {
	eng *engine.Engine
	log zerolog.Logger
	mux *http.ServeMux
	mu  sync.Mutex
}

// NewServer wires routes for the given engine and logger.
func NewServer(eng *engine.Engine, log zerolog.Logger) *Server {
	s := &Server{eng: eng, log: log, mux: http.NewServeMux()}
	s.registerRoutes()
	return s
}

// ServeHTTP allows Server to satisfy http.Handler, delegating to its mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/v1/orders", s.handleOrders)
	s.mux.HandleFunc("/api/v1/orders/", s.handleOrderByID)
	s.mux.HandleFunc("/api/v1/orderbook", s.handleOrderBook)
	s.mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
}

type createOrderRequest struct {
	ID        string `json:"id"`
	Side      string `json:"side"`
	Price     int64  `json:"price"`
	Size      int64  `json:"size"`
	Timestamp int64  `json:"timestamp"`
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.createOrder(w, r)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	side, err := parseSide(req.Side)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}

	s.mu.Lock()
	fills, err := s.eng.Insert(id, side, req.Price, req.Size, req.Timestamp)
	s.mu.Unlock()
	if err != nil {
		var ve *engine.ValidationError
		if errors.As(err, &ve) {
			s.log.Warn().Err(err).Str("order_id", id).Msg("order rejected")
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error().Err(err).Str("order_id", id).Msg("insert failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.log.Info().Str("order_id", id).Int("fills", len(fills)).Msg("order accepted")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"order_id": id,
		"fills":    fills,
	})
}

func (s *Server) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/orders/")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "order id required")
		return
	}
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.cancelOrder(w, id)
}

func (s *Server) cancelOrder(w http.ResponseWriter, id string) {
	s.mu.Lock()
	ok, err := s.eng.Cancel(id)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", id).Msg("cancel rejected")
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Info().Str("order_id", id).Bool("cancelled", ok).Msg("cancel processed")

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "order not found"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"order_id": id, "status": "CANCELLED"})
}

type aggregatedLevel struct {
	Price int64 `json:"price"`
	Size  int64 `json:"size"`
}

func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	depth := 0
	if v := r.URL.Query().Get("depth"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid depth")
			return
		}
		depth = parsed
	}

	s.mu.Lock()
	bids := aggregate(s.eng.Bids(), depth)
	asks := aggregate(s.eng.Asks(), depth)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"bids": bids,
		"asks": asks,
	})
}

// aggregate walks a book from best price, summing resting size at each
// level.
func aggregate(b *book.Book, depth int) []aggregatedLevel {
	var out []aggregatedLevel
	b.Walk(func(level *book.PriceLevel) bool {
		if depth > 0 && len(out) >= depth {
			return false
		}
		var size int64
		level.Walk(func(o *book.Order) bool {
			size += o.Size
			return true
		})
		out = append(out, aggregatedLevel{Price: level.Price, Size: size})
		return true
	})
	return out
}

func parseSide(s string) (book.Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(book.Buy):
		return book.Buy, nil
	case string(book.Sell):
		return book.Sell, nil
	default:
		return "", errors.New("side must be BUY or SELL")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
