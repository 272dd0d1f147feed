package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	customerrors "github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
)

type WallService interface {
	ListPosts(ctx context.Context, search, tag string) ([]*models.WallPost, error)
	GetPost(ctx context.Context, id int64) (*models.WallPost, error)
}

type WallHandler struct {
	service WallService
	logger  *slog.Logger
}

func NewWallHandler(service WallService, logger *slog.Logger) *WallHandler {
	return &WallHandler{
		service: service,
		logger:  logger,
	}
}

func (h *WallHandler) Register(r chi.Router) {
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{id}", h.GetPost)
}

func (h *WallHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	tag := r.URL.Query().Get("tag")

	posts, err := h.service.ListPosts(r.Context(), search, tag)
	if err != nil {
		h.logger.Error("Ошибка при получении ленты", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	h.writeJSON(w, http.StatusOK, posts)
}

func (h *WallHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid post id")

		return
	}

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, &customerrors.ErrPostNotFound{}) {
			h.writeError(w, http.StatusNotFound, "post not found")

			return
		}

		h.logger.Error("Ошибка при получении поста", "error", err, "post_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	h.writeJSON(w, http.StatusOK, post)
}

func (h *WallHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Ошибка при сериализации ответа", "error", err)
	}
}

func (h *WallHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
