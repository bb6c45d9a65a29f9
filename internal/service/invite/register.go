package invite

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/server"
)

// Handler exposes the invite-code service over HTTP.
type Handler struct {
	svc    *Service
	appCtx *app.AppContext
}

// NewHandler builds the HTTP handler for the invite-code route.
func NewHandler(appCtx *app.AppContext) *Handler {
	return &Handler{svc: NewService(appCtx), appCtx: appCtx}
}

// Register mounts the invite-code route.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/room-invitations", h.issue).Methods(http.MethodPost)
}

type issueRequest struct {
	RoomID         string `json:"room_id"`
	ExpiresInHours int    `json:"expires_in_hours"`
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())

	var req issueRequest
	if err := server.Decode(r, &req); err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}

	view, err := h.svc.Issue(r.Context(), userID, req.RoomID, req.ExpiresInHours)
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusCreated, view)
}
