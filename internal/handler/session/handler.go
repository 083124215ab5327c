package session

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Mayan-101/torc/internal/model/sim"
	"github.com/Mayan-101/torc/internal/service/scoring"
	sessionService "github.com/Mayan-101/torc/internal/service/session"
	"github.com/Mayan-101/torc/internal/store"
	"github.com/Mayan-101/torc/pkg/utils"
)

// Handler serves the participant session endpoints.
type Handler struct {
	svc *sessionService.Service
}

// New creates a session handler.
func New(svc *sessionService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/init", h.handleInit)
	r.Get("/participant/{sessionID}", h.handleGetParticipant)
	r.Post("/update-answers", h.handleUpdateAnswers)
	r.Post("/advance-phase", h.handleAdvancePhase)
}

type initResponse struct {
	SessionID string          `json:"sessionId"`
	NetWorth  float64         `json:"netWorth"`
	Phase     int             `json:"phase"`
	SalesData sim.SalesSeries `json:"salesData"`
}

func (h *Handler) handleInit(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Create(r.Context())
	if err != nil {
		log.Printf("[session] create failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, initResponse{
		SessionID: session.ID,
		NetWorth:  session.NetWorth,
		Phase:     session.CurrentPhase,
		SalesData: session.Sales,
	})
}

type participantResponse struct {
	SessionID    string          `json:"sessionId"`
	CurrentPhase int             `json:"currentPhase"`
	NetWorth     float64         `json:"netWorth"`
	SalesData    sim.SalesSeries `json:"salesData"`
}

func (h *Handler) handleGetParticipant(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.svc.Get(r.Context(), sessionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, participantResponse{
		SessionID:    session.ID,
		CurrentPhase: session.CurrentPhase,
		NetWorth:     session.NetWorth,
		SalesData:    session.Sales,
	})
}

func (h *Handler) handleUpdateAnswers(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string          `json:"sessionId"`
		Phase     int             `json:"phase"`
		Answers   json.RawMessage `json:"answers"`
		Launch    bool            `json:"launch"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if payload.Phase < 1 || payload.Phase > 3 {
		utils.RespondError(w, http.StatusBadRequest, "Invalid phase")
		return
	}

	// Unknown or non-numeric fields score as missing, they are not
	// rejected; the raw payload is still stored as the phase snapshot.
	var answers scoring.Answers
	if len(payload.Answers) > 0 {
		if err := json.Unmarshal(payload.Answers, &answers); err != nil {
			answers = scoring.Answers{}
		}
	}

	result, err := h.svc.SubmitAnswers(r.Context(), payload.SessionID, payload.Phase, answers, payload.Answers, payload.Launch)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleAdvancePhase(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	currentPhase, err := h.svc.AdvancePhase(r.Context(), payload.SessionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]int{"currentPhase": currentPhase})
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Session not found")
		return
	}
	log.Printf("[session] store error: %v", err)
	utils.RespondError(w, http.StatusInternalServerError, "internal error")
}
