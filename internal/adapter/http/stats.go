package httpadapter

import (
	"net/http"
	"strconv"

	"crowdfund-escrow/internal/core/domain"
	"crowdfund-escrow/internal/core/port"
)

const defaultPageSize = 50

type contributorsResponse struct {
	Contributors []domain.Address `json:"contributors"`
	Count        int              `json:"count"`
}

type balanceResponse struct {
	Address domain.Address `json:"address"`
	Amount  domain.Amount  `json:"amount"`
}

type tierResponse struct {
	Address domain.Address     `json:"address"`
	Tier    *domain.RewardTier `json:"tier"`
}

type milestoneResponse struct {
	Milestone domain.Amount `json:"milestone"`
}

// handleListCampaigns returns one page of campaign IDs. It accepts
// optional `limit` (1..500, default 50) and `offset` query parameters.
// Non-numeric values result in HTTP 400.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := defaultPageSize, 0
	var err error
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			h.writeError(w, r, domain.Wrap(domain.CodeInvalidArgument, "invalid 'limit'", err))
			return
		}
	}
	if s := q.Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil {
			h.writeError(w, r, domain.Wrap(domain.CodeInvalidArgument, "invalid 'offset'", err))
			return
		}
	}
	list, err := h.svc.ListCampaigns(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetCampaign(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// handleStats returns progress in basis points, the contributor count, the
// average and the largest contribution.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// handleEscrow reports the escrow balance held by the token service next to
// the ledger's total raised.
func (h *Handler) handleEscrow(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.ReconcileEscrow(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetCampaign(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, versionResponse{Version: view.Version})
}

func (h *Handler) handleContributors(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.svc.GetContributors(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, contributorsResponse{Contributors: addrs, Count: len(addrs)})
}

func (h *Handler) handleContribution(w http.ResponseWriter, r *http.Request) {
	h.writeBalance(w, r, func(acc *port.AccountView) domain.Amount { return acc.Contribution })
}

func (h *Handler) handlePledgeOf(w http.ResponseWriter, r *http.Request) {
	h.writeBalance(w, r, func(acc *port.AccountView) domain.Amount { return acc.Pledge })
}

func (h *Handler) handleReferrals(w http.ResponseWriter, r *http.Request) {
	h.writeBalance(w, r, func(acc *port.AccountView) domain.Amount { return acc.ReferralTotal })
}

// writeBalance answers with one per-address amount picked from the account
// view. Unknown addresses have a zero balance.
func (h *Handler) writeBalance(w http.ResponseWriter, r *http.Request, pick func(*port.AccountView) domain.Amount) {
	addr := addressParam(r)
	acc, err := h.svc.GetAccount(r.Context(), campaignID(r), addr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balanceResponse{Address: addr, Amount: pick(acc)})
}

func (h *Handler) handleRewardTiers(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetCampaign(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view.RewardTiers)
}

// handleUserTier answers with a null tier when the address qualifies for
// none.
func (h *Handler) handleUserTier(w http.ResponseWriter, r *http.Request) {
	addr := addressParam(r)
	tier, err := h.svc.GetUserTier(r.Context(), campaignID(r), addr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tierResponse{Address: addr, Tier: tier})
}

func (h *Handler) handleCurrentMilestone(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.CurrentMilestone(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, milestoneResponse{Milestone: m})
}

func (h *Handler) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetCampaign(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view.Roadmap)
}
