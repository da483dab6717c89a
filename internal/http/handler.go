package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/service"
	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/store"
)

// Settlement is the service surface this handler needs.
type Settlement interface {
	GetSummary(ctx context.Context, userID string) (*domain.Cart, error)
	ApplyGiftCard(ctx context.Context, userID, code string) (*service.DiscountResult, error)
	RemoveGiftCard(ctx context.Context, userID string) (*service.RemoveResult, error)
	Finalize(ctx context.Context, userID, notificationAddress string) (*service.FinalizeResult, error)
}

type SettlementHandler struct {
	settlement Settlement
	timeout    time.Duration
}

func NewSettlementHandler(settlement Settlement, timeout time.Duration) *SettlementHandler {
	return &SettlementHandler{
		settlement: settlement,
		timeout:    timeout,
	}
}

type ApplyDiscountRequestDTO struct {
	Code string `json:"code"`
}

type CheckoutRequestDTO struct {
	NotificationAddress string `json:"notification_address"`
}

func (h *SettlementHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user identity")
		return
	}

	summary, err := h.settlement.GetSummary(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *SettlementHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user identity")
		return
	}

	var req ApplyDiscountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_code", "code must not be empty")
		return
	}

	result, err := h.settlement.ApplyGiftCard(ctx, userID, req.Code)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *SettlementHandler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user identity")
		return
	}

	result, err := h.settlement.RemoveGiftCard(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *SettlementHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user identity")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.settlement.Finalize(ctx, userID, req.NotificationAddress)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// respondServiceError maps settlement errors onto HTTP statuses. Every
// terminal failure carries a specific reason so the caller knows whether to
// retry, pick another card, or give up.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart_not_found", "cart does not exist")
	case errors.Is(err, store.ErrGiftCardNotFound):
		respondError(w, http.StatusNotFound, "gift_card_not_found", "gift card does not exist")
	case errors.Is(err, service.ErrInvalidAddress):
		respondError(w, http.StatusBadRequest, "invalid_address", service.ErrInvalidAddress.Error())
	case errors.Is(err, service.ErrDiscountAlreadyApplied):
		respondError(w, http.StatusConflict, "discount_already_applied", service.ErrDiscountAlreadyApplied.Error())
	case errors.Is(err, service.ErrGiftCardInactive):
		respondError(w, http.StatusConflict, "gift_card_inactive", service.ErrGiftCardInactive.Error())
	case errors.Is(err, service.ErrGiftCardExpired):
		respondError(w, http.StatusConflict, "gift_card_expired", service.ErrGiftCardExpired.Error())
	case errors.Is(err, service.ErrGiftCardExhausted):
		respondError(w, http.StatusConflict, "gift_card_exhausted", service.ErrGiftCardExhausted.Error())
	case errors.Is(err, service.ErrNothingToApply):
		respondError(w, http.StatusConflict, "nothing_to_apply", service.ErrNothingToApply.Error())
	case errors.Is(err, service.ErrCartEmpty):
		respondError(w, http.StatusConflict, "cart_empty", service.ErrCartEmpty.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal", "operation failed, please retry")
	}
}
