package question

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	questionModel "github.com/Mayan-101/torc/internal/model/question"
	"github.com/Mayan-101/torc/pkg/utils"
)

// Handler serves the static per-phase question content.
type Handler struct {
	store         questionModel.Store
	phaseDuration int
}

// New creates a question handler. phaseDuration is the per-phase timer in
// seconds, surfaced alongside the content for the client countdown.
func New(store questionModel.Store, phaseDuration int) *Handler {
	return &Handler{store: store, phaseDuration: phaseDuration}
}

// RegisterRoutes mounts the question routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/questions/{phase}", h.handleGetQuestions)
}

type phaseResponse struct {
	questionModel.PhaseContent
	DurationSeconds int `json:"durationSeconds"`
}

func (h *Handler) handleGetQuestions(w http.ResponseWriter, r *http.Request) {
	phase, err := strconv.Atoi(chi.URLParam(r, "phase"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid phase")
		return
	}

	content, ok := h.store.FindByPhase(phase)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid phase")
		return
	}

	utils.RespondJSON(w, http.StatusOK, phaseResponse{
		PhaseContent:    content,
		DurationSeconds: h.phaseDuration,
	})
}
