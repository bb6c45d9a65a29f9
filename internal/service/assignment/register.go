package assignment

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/server"
)

// Handler exposes the room-assignment service over HTTP.
type Handler struct {
	svc    *Service
	appCtx *app.AppContext
}

// NewHandler builds the HTTP handler for the room-assignment routes.
func NewHandler(appCtx *app.AppContext) *Handler {
	return &Handler{svc: NewService(appCtx), appCtx: appCtx}
}

// Register mounts the room-assignment routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/room-assignments", h.get).Methods(http.MethodGet)
	r.HandleFunc("/room-assignments", h.offer).Methods(http.MethodPost)
	r.HandleFunc("/room-assignments/{id}", h.resolve).Methods(http.MethodPatch)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())

	view, err := h.svc.Get(r.Context(), userID, r.URL.Query().Get("match_id"))
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusOK, view)
}

type offerRequest struct {
	MatchID string `json:"match_id"`
	RoomID  string `json:"room_id"`
}

func (h *Handler) offer(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())

	var req offerRequest
	if err := server.Decode(r, &req); err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}

	view, err := h.svc.Offer(r.Context(), userID, req.MatchID, req.RoomID)
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusCreated, view)
}

type resolveRequest struct {
	Action string `json:"action"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())
	assignmentID := mux.Vars(r)["id"]

	var req resolveRequest
	if err := server.Decode(r, &req); err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}

	view, err := h.svc.Resolve(r.Context(), userID, assignmentID, req.Action)
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusOK, view)
}
