package recommend

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/server"
)

// Handler exposes the recommendation service over HTTP.
type Handler struct {
	svc    *Service
	appCtx *app.AppContext
}

// NewHandler builds the HTTP handler for the recommendation route.
func NewHandler(appCtx *app.AppContext) *Handler {
	return &Handler{svc: NewService(appCtx), appCtx: appCtx}
}

// Register mounts the recommendation route.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/recommendations", h.list).Methods(http.MethodGet)
}

type listResponse struct {
	Recommendations []Candidate `json:"recommendations"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())

	candidates, err := h.svc.List(r.Context(), userID)
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusOK, listResponse{Recommendations: candidates})
}
