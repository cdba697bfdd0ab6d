package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"crowdfund-escrow/internal/core/domain"
)

type errorResponse struct {
	Code     domain.Code       `json:"code"`
	Error    string            `json:"error"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// statusFor maps a ledger result code to an HTTP status.
func statusFor(code domain.Code) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeUnauthorized, domain.CodeNotWhitelisted:
		return http.StatusForbidden
	case domain.CodeInvalidArgument, domain.CodeInvalidAmount, domain.CodeInvalidLimit, domain.CodeInvalidHardCap:
		return http.StatusBadRequest
	case domain.CodeBelowMinimum, domain.CodeInsufficientBalance, domain.CodeOverflow:
		return http.StatusUnprocessableEntity
	case domain.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case domain.CodeAlreadyInitialized, domain.CodeCampaignEnded, domain.CodeCampaignStillActive,
		domain.CodeGoalNotReached, domain.CodeGoalReached, domain.CodeHardCapExceeded,
		domain.CodeContractPaused, domain.CodeNotActive:
		return http.StatusConflict
	case domain.CodeTransferFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"code","error"}. Internal failures are
// logged and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.CodeOf(err)
	status := statusFor(code)
	resp := errorResponse{Code: code, Error: err.Error()}

	var de *domain.Error
	if errors.As(err, &de) {
		resp.Error = de.Message
		resp.Metadata = de.Metadata
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		if status == http.StatusInternalServerError {
			resp = errorResponse{Code: domain.CodeInternal, Error: "internal error"}
		}
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; the status is already sent
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// decode reads a JSON body into v. A malformed body is reported to the
// client and false is returned.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, r, domain.Wrap(domain.CodeInvalidArgument, "invalid JSON", err))
		return false
	}
	return true
}

func campaignID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func addressParam(r *http.Request) domain.Address {
	return domain.Address(chi.URLParam(r, "address"))
}
