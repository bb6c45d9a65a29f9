package match

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/match"
	"github.com/homimatch/server/internal/server"
)

// Handler exposes the match service over HTTP.
type Handler struct {
	svc    *Service
	appCtx *app.AppContext
}

// NewHandler builds the HTTP handler for the match routes.
func NewHandler(appCtx *app.AppContext) *Handler {
	return &Handler{svc: NewService(appCtx), appCtx: appCtx}
}

// Register mounts the match routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/matches", h.list).Methods(http.MethodGet)
	r.HandleFunc("/matches", h.create).Methods(http.MethodPost)
	r.HandleFunc("/matches/{id}", h.updateStatus).Methods(http.MethodPatch)
}

type listResponse struct {
	Matches             []View  `json:"matches"`
	NextPaginationToken *string `json:"next_pagination_token,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())

	var token *string
	if raw := r.URL.Query().Get("pagination_token"); raw != "" {
		token = &raw
	}

	views, next, err := h.svc.List(r.Context(), userID, token)
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusOK, listResponse{Matches: views, NextPaginationToken: next})
}

type createRequest struct {
	RecipientID string `json:"recipient_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())

	var req createRequest
	if err := server.Decode(r, &req); err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}

	view, err := h.svc.Create(r.Context(), userID, req.RecipientID)
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusCreated, view)
}

type updateRequest struct {
	Status match.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())
	matchID := mux.Vars(r)["id"]

	var req updateRequest
	if err := server.Decode(r, &req); err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}

	view, err := h.svc.UpdateStatus(r.Context(), userID, matchID, req.Status)
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusOK, view)
}
