package swipe

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/server"
)

// Handler exposes the swipe service over HTTP.
type Handler struct {
	svc    *Service
	appCtx *app.AppContext
}

// NewHandler builds the HTTP handler for the swipe routes.
func NewHandler(appCtx *app.AppContext) *Handler {
	return &Handler{svc: NewService(appCtx), appCtx: appCtx}
}

// Register mounts the swipe routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/swipes", h.record).Methods(http.MethodPost)
	r.HandleFunc("/swipes", h.count).Methods(http.MethodGet)
}

type recordRequest struct {
	TargetID string `json:"target_id"`
	Action   string `json:"action"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())

	var req recordRequest
	if err := server.Decode(r, &req); err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}

	res, err := h.svc.Record(r.Context(), userID, req.TargetID, req.Action)
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusCreated, res)
}

type countResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	userID := server.UserID(r.Context())

	date, n, err := h.svc.Count(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		server.Error(w, h.appCtx.Logger, err)
		return
	}
	server.JSON(w, http.StatusOK, countResponse{Date: date, Count: n})
}
