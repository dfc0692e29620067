package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/Ranker/internal/broker"
	"github.com/MikeSquared-Agency/Ranker/internal/ranking"
)

// QueryParam carries the JSON payload on GET requests.
const QueryParam = "json"

const maxBodyBytes = 1 << 20

type RankHandler struct {
	broker *broker.Broker
}

func NewRankHandler(b *broker.Broker) *RankHandler {
	return &RankHandler{broker: b}
}

// Query ranks the payload passed in the "json" query parameter.
// GET /?json={...}
func (h *RankHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var payload []byte
	if q.Has(QueryParam) {
		payload = []byte(q.Get(QueryParam))
	}
	h.rank(w, r, payload)
}

// Body ranks the payload sent as the request body.
// POST /api/v1/rank
func (h *RankHandler) Body(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(data) == 0 {
		data = nil
	}
	h.rank(w, r, data)
}

func (h *RankHandler) rank(w http.ResponseWriter, r *http.Request, payload []byte) {
	requestID := chiMiddleware.GetReqID(r.Context())
	records, err := h.broker.Rank(r.Context(), broker.TransportHTTP, requestID, payload)
	if err != nil {
		var ve *ranking.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, broker.Message(err))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, broker.ErrorBody(msg))
}
