package handlers

import (
	"net/http"
	"strconv"

	"github.com/screencraft/engine/internal/api/types"
	"github.com/screencraft/engine/internal/ledger"
)

type CreditsHandler struct {
	ledger *ledger.Service
}

func NewCreditsHandler(svc *ledger.Service) *CreditsHandler {
	return &CreditsHandler{ledger: svc}
}

// Balance returns the user's current credits; the read itself applies the
// lazy daily reset when the day has rolled over.
func (h *CreditsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return
	}
	led, err := h.ledger.Balance(r.Context(), userID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: map[string]any{
		"balance":       led.Balance,
		"last_reset_at": led.LastResetAt,
	}})
}

func (h *CreditsHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid user")
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 || days > 90 {
		days = 7
	}
	points, err := h.ledger.UsageHistory(r.Context(), userID, days)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: points})
}
