package message

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/server"
)

// Handler exposes the message-request service over HTTP.
type Handler struct {
	svc    *Service
	appCtx *app.AppContext
}

// NewHandler builds the HTTP handler for the message-request route.
func NewHandler(appCtx *app.AppContext) *Handler {
	return &Handler{svc: NewService(appCtx), appCtx: appCtx}
}

// Register mounts the message-request route.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/message-requests", h.send).Methods(http.MethodPost)
}

type sendRequest struct {
	RecipientID string `json:"recipient_id"`
	Message     string `json:"message"`
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())

	var req sendRequest
	if err := server.Decode(r, &req); err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}

	res, err := h.svc.Send(r.Context(), userID, req.RecipientID, req.Message)
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusCreated, res)
}
