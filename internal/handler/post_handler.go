package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"postboard/internal/models"
)

type PostsResponse struct {
	Topic string        `json:"topic"`
	Posts []models.Post `json:"posts"`
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req models.CreatePostInput
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), userID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetPost(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	post, err := h.PostService.LikePost(r.Context(), userID, mux.Vars(r)["postId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handlers) DislikePost(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	post, err := h.PostService.DislikePost(r.Context(), userID, mux.Vars(r)["postId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handlers) CommentOn(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req models.CommentInput
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	post, err := h.PostService.CommentOn(r.Context(), userID, mux.Vars(r)["postId"], req.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *Handlers) BrowseByTopic(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(mux.Vars(r)["topic"])

	posts, err := h.PostService.BrowseByTopic(r.Context(), topic)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PostsResponse{Topic: topic, Posts: posts})
}

func (h *Handlers) ListExpiredByTopic(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(mux.Vars(r)["topic"])

	posts, err := h.PostService.ListExpiredByTopic(r.Context(), topic)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PostsResponse{Topic: topic, Posts: posts})
}

func (h *Handlers) MostActiveByTopic(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.MostActiveByTopic(r.Context(), mux.Vars(r)["topic"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handlers) AddImage(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, models.Validationf("file is larger than %d bytes", h.Cfg.MaxUploadSize))
			return
		}
		h.fail(w, r, models.WrapError(models.KindValidation, "malformed multipart form", err))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.fail(w, r, models.WrapError(models.KindValidation, "form field \"image\" is required", err))
		return
	}
	defer file.Close()

	image, err := h.PostService.AddImage(r.Context(), userID, mux.Vars(r)["postId"], header.Filename, file, header.Size)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, image)
}

func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	vars := mux.Vars(r)
	if err := h.PostService.DeleteImage(r.Context(), userID, vars["postId"], vars["imageId"]); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
