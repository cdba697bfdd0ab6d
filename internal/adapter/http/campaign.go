package httpadapter

import (
	"net/http"

	"crowdfund-escrow/internal/core/domain"
	"crowdfund-escrow/internal/core/port"
)

type pausedRequest struct {
	Paused bool `json:"paused"`
}

type whitelistRequest struct {
	Addresses []domain.Address `json:"addresses"`
}

type rewardTierRequest struct {
	Name      string        `json:"name"`
	MinAmount domain.Amount `json:"min_amount"`
}

type stretchGoalRequest struct {
	Milestone domain.Amount `json:"milestone"`
}

type roadmapRequest struct {
	Date        int64  `json:"date"`
	Description string `json:"description"`
}

type deadlineRequest struct {
	Deadline int64 `json:"deadline"`
}

type upgradeRequest struct {
	CodeHash string `json:"code_hash"`
}

type amountResponse struct {
	Amount domain.Amount `json:"amount"`
}

type versionResponse struct {
	Version uint32 `json:"version"`
}

// handleInitialize creates a campaign from a port.InitializeReq body and
// answers 201 with the campaign view.
func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req port.InitializeReq
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.svc.Initialize(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/campaigns/"+view.ID)
	h.writeJSON(w, http.StatusCreated, view)
}

// handleContribute moves funds into escrow and returns the receipt, whose
// accepted amount may be lower than requested when the hard cap clamps.
func (h *Handler) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req port.ContributeReq
	if !h.decode(w, r, &req) {
		return
	}
	req.CampaignID = campaignID(r)
	receipt, err := h.svc.Contribute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, receipt)
}

func (h *Handler) handleWithdrawContribution(w http.ResponseWriter, r *http.Request) {
	var req port.WithdrawContributionReq
	if !h.decode(w, r, &req) {
		return
	}
	req.CampaignID = campaignID(r)
	if err := h.svc.WithdrawContribution(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePledge(w http.ResponseWriter, r *http.Request) {
	var req port.PledgeReq
	if !h.decode(w, r, &req) {
		return
	}
	req.CampaignID = campaignID(r)
	if err := h.svc.Pledge(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCollectPledges(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.CollectPledges(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	payout, err := h.svc.Withdraw(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payout)
}

func (h *Handler) handleRefund(w http.ResponseWriter, r *http.Request) {
	refunded, err := h.svc.Refund(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, amountResponse{Amount: refunded})
}

// handleRefundSingle pays one contributor back. Repeating the call after
// a refund answers 200 with a zero amount.
func (h *Handler) handleRefundSingle(w http.ResponseWriter, r *http.Request) {
	refunded, err := h.svc.RefundSingle(r.Context(), campaignID(r), addressParam(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, amountResponse{Amount: refunded})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	refunded, err := h.svc.Cancel(r.Context(), campaignID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, amountResponse{Amount: refunded})
}

func (h *Handler) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	var req pausedRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.SetPaused(r.Context(), campaignID(r), req.Paused); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddToWhitelist(w http.ResponseWriter, r *http.Request) {
	var req whitelistRequest
	if !h.decode(w, r, &req) {
		return
	}
	added, err := h.svc.AddToWhitelist(r.Context(), campaignID(r), req.Addresses)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]domain.Address{"added": added})
}

func (h *Handler) handleAddRewardTier(w http.ResponseWriter, r *http.Request) {
	var req rewardTierRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.AddRewardTier(r.Context(), campaignID(r), req.Name, req.MinAmount); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddStretchGoal(w http.ResponseWriter, r *http.Request) {
	var req stretchGoalRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.AddStretchGoal(r.Context(), campaignID(r), req.Milestone); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddRoadmapItem(w http.ResponseWriter, r *http.Request) {
	var req roadmapRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.AddRoadmapItem(r.Context(), campaignID(r), req.Date, req.Description); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateMetadata applies a partial update; absent fields are kept.
func (h *Handler) handleUpdateMetadata(w http.ResponseWriter, r *http.Request) {
	var req domain.MetadataUpdate
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.UpdateMetadata(r.Context(), campaignID(r), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateDeadline(w http.ResponseWriter, r *http.Request) {
	var req deadlineRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.UpdateDeadline(r.Context(), campaignID(r), req.Deadline); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	var req upgradeRequest
	if !h.decode(w, r, &req) {
		return
	}
	version, err := h.svc.Upgrade(r.Context(), campaignID(r), req.CodeHash)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, versionResponse{Version: version})
}
