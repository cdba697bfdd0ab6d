package asset

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdfund-escrow/internal/core/domain"
)

// TransferRequest is the body of POST /tokens/{token}/transfers and of
// POST /tokens/{token}/mint (where From is ignored).
type TransferRequest struct {
	From   domain.Address `json:"from,omitempty"`
	To     domain.Address `json:"to"`
	Amount domain.Amount  `json:"amount"`
}

// BalanceResponse is the body of GET /tokens/{token}/balances/{address}.
type BalanceResponse struct {
	Token   domain.Address `json:"token"`
	Address domain.Address `json:"address"`
	Balance domain.Amount  `json:"balance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler exposes a MemoryLedger over HTTP. Routes are relative and
// meant to be mounted under /tokens, which is where Client looks for them.
// Mounted in development setups so wallets and the seed command can fund
// accounts.
func NewHandler(m *MemoryLedger, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Route("/{token}", func(r chi.Router) {
		r.Post("/mint", func(w http.ResponseWriter, req *http.Request) {
			var body TransferRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
				return
			}
			if err := m.Mint(tokenParam(req), body.To, body.Amount); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
		r.Post("/transfers", func(w http.ResponseWriter, req *http.Request) {
			var body TransferRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
				return
			}
			err := m.Transfer(req.Context(), tokenParam(req), body.From, body.To, body.Amount)
			switch {
			case errors.Is(err, ErrInsufficientFunds):
				writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
			case err != nil:
				logger.Warn("asset transfer rejected", slog.Any("error", err))
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			default:
				w.WriteHeader(http.StatusNoContent)
			}
		})
		r.Get("/balances/{address}", func(w http.ResponseWriter, req *http.Request) {
			addr := domain.Address(chi.URLParam(req, "address"))
			bal, err := m.Balance(req.Context(), tokenParam(req), addr)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, BalanceResponse{Token: tokenParam(req), Address: addr, Balance: bal})
		})
	})
	return r
}

func tokenParam(r *http.Request) domain.Address {
	return domain.Address(chi.URLParam(r, "token"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
