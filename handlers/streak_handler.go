package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"carcloutAPI/internal/types/activity"
	"carcloutAPI/middleware"
	"carcloutAPI/services"
)

type StreakHandler struct {
	streakService *services.StreakService
}

func NewStreakHandler(streakService *services.StreakService) *StreakHandler {
	return &StreakHandler{
		streakService: streakService,
	}
}

// GetStatus serves GET /activity/streak/status. Anonymous callers get a
// zeroed payload with a 401 so the response shape never changes with auth
// state.
func (h *StreakHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithJSON(w, http.StatusUnauthorized, &activity.StatusResponse{})
		return
	}

	status, err := h.streakService.GetStatus(ctx, clerkID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("GetStatus Handler: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get streak status")
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// Restore serves POST /activity/streak/restore. Eligibility and payment
// failures map to stable string codes for client-side branching.
func (h *StreakHandler) Restore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.streakService.Restore(ctx, clerkID)
	switch {
	case err == nil:
		middleware.CountRestore("restored")
		respondWithJSON(w, http.StatusOK, result)
	case errors.Is(err, services.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrNothingToRestore):
		middleware.CountRestore("NOTHING_TO_RESTORE")
		respondWithError(w, http.StatusBadRequest, "NOTHING_TO_RESTORE")
	case errors.Is(err, services.ErrRestoreWindowElapsed):
		middleware.CountRestore("RESTORE_WINDOW_ELAPSED")
		respondWithError(w, http.StatusBadRequest, "RESTORE_WINDOW_ELAPSED")
	case errors.Is(err, services.ErrNoLongerNeeded):
		middleware.CountRestore("NO_LONGER_NEEDED")
		respondWithError(w, http.StatusBadRequest, "NO_LONGER_NEEDED")
	case errors.Is(err, services.ErrInsufficientCredits):
		middleware.CountRestore("INSUFFICIENT_CREDITS")
		respondWithError(w, http.StatusPaymentRequired, "INSUFFICIENT_CREDITS")
	default:
		middleware.CountRestore("error")
		log.Printf("Restore Handler: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to restore streak")
	}
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
