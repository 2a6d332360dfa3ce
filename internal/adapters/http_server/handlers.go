package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"bank_reviews/internal/app"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/banks", h.listBanks)
	s.mux.Get("/v1/banks/{id}/reviews", h.listReviews)
	s.mux.Get("/v1/banks/{id}/keywords", h.keywords)
	s.mux.Get("/v1/stats/sentiment", h.sentimentStats)
	s.mux.Get("/v1/stats/themes", h.themeStats)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

type bankResp struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Reviews   int64    `json:"reviews"`
	AvgRating *float64 `json:"avg_rating"`
}

func (h *Handlers) listBanks(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Q.Banks(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	out := make([]bankResp, 0, len(bs))
	for _, b := range bs {
		out = append(out, bankResp{ID: b.ID, Name: b.Name, Reviews: b.Reviews, AvgRating: b.AvgRating})
	}
	writeJSON(w, r, out)
}

type reviewResp struct {
	ID             int64   `json:"id"`
	BankID         int64   `json:"bank_id"`
	Text           string  `json:"text"`
	Rating         int     `json:"rating"`
	Date           string  `json:"date"`
	SentimentLabel string  `json:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score"`
	Theme          string  `json:"theme"`
	Source         string  `json:"source"`
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}

	rs, err := h.Q.Reviews(r.Context(), id, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	out := make([]reviewResp, 0, len(rs))
	for _, rv := range rs {
		out = append(out, reviewResp{
			ID:             rv.ID,
			BankID:         rv.BankID,
			Text:           rv.Text,
			Rating:         rv.Rating,
			Date:           rv.Date.Format(time.DateOnly),
			SentimentLabel: rv.SentimentLabel,
			SentimentScore: rv.SentimentScore,
			Theme:          rv.Theme,
			Source:         rv.Source,
		})
	}
	writeJSON(w, r, out)
}

func (h *Handlers) keywords(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	k := 10
	if ks := r.URL.Query().Get("k"); ks != "" {
		n, err := strconv.Atoi(ks)
		if err != nil || n <= 0 || n > 50 {
			writeProblem(w, http.StatusBadRequest, "Invalid k", "k must be an integer between 1 and 50")
			return
		}
		k = n
	}
	kws, err := h.Q.Keywords(r.Context(), id, k)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	if kws == nil {
		kws = []string{} // small group: empty list, not null
	}
	writeJSON(w, r, map[string]any{"bank_id": id, "keywords": kws})
}

func (h *Handlers) sentimentStats(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Q.SentimentStats(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	type row struct {
		Bank  string `json:"bank"`
		Label string `json:"label"`
		Count int64  `json:"count"`
	}
	out := make([]row, 0, len(cs))
	for _, c := range cs {
		out = append(out, row{c.Bank, c.Label, c.Count})
	}
	writeJSON(w, r, out)
}

func (h *Handlers) themeStats(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("sentiment")
	cs, err := h.Q.ThemeStats(r.Context(), label)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	type row struct {
		Theme string `json:"theme"`
		Count int64  `json:"count"`
	}
	out := make([]row, 0, len(cs))
	for _, c := range cs {
		out = append(out, row{c.Theme, c.Count})
	}
	writeJSON(w, r, out)
}
