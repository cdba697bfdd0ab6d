package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"crowdfund-escrow/internal/core/port"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the campaign usecase to execute business logic and a logger for
// structured logging. Routes are registered on a chi.Router for convenient
// method handling.
type Handler struct {
	svc    port.CampaignUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. The given
// middlewares run before routing, after request ID assignment and panic
// recovery; authentication is expected to be one of them.
func NewHandler(svc port.CampaignUseCase, logger *slog.Logger, middlewares ...func(http.Handler) http.Handler) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(middlewares...)

	r.Route("/api/v1/campaigns", func(r chi.Router) {
		r.Post("/", h.handleInitialize)
		r.Get("/", h.handleListCampaigns)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetCampaign)
			r.Get("/stats", h.handleStats)
			r.Get("/escrow", h.handleEscrow)
			r.Get("/version", h.handleVersion)

			r.Post("/contributions", h.handleContribute)
			r.Post("/contributions/withdraw", h.handleWithdrawContribution)
			r.Get("/contributions/{address}", h.handleContribution)
			r.Get("/contributors", h.handleContributors)

			r.Post("/pledges", h.handlePledge)
			r.Post("/pledges/collect", h.handleCollectPledges)
			r.Get("/pledges/{address}", h.handlePledgeOf)

			r.Post("/withdraw", h.handleWithdraw)
			r.Post("/refund", h.handleRefund)
			r.Post("/refunds/{address}", h.handleRefundSingle)
			r.Post("/cancel", h.handleCancel)

			r.Put("/paused", h.handleSetPaused)
			r.Post("/whitelist", h.handleAddToWhitelist)
			r.Post("/reward-tiers", h.handleAddRewardTier)
			r.Get("/reward-tiers", h.handleRewardTiers)
			r.Get("/tiers/{address}", h.handleUserTier)
			r.Post("/stretch-goals", h.handleAddStretchGoal)
			r.Get("/stretch-goals/current", h.handleCurrentMilestone)
			r.Post("/roadmap", h.handleAddRoadmapItem)
			r.Get("/roadmap", h.handleRoadmap)
			r.Patch("/metadata", h.handleUpdateMetadata)
			r.Put("/deadline", h.handleUpdateDeadline)
			r.Post("/upgrade", h.handleUpgrade)
			r.Get("/referrals/{address}", h.handleReferrals)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
