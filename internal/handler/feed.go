package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/pkg/response"
)

type FeedHandler struct {
	service   FeedService
	validator *validator.Validate
}

func NewFeedHandler(service FeedService) *FeedHandler {
	return &FeedHandler{
		service:   service,
		validator: NewValidator(),
	}
}

func (h *FeedHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)

	posts, err := h.service.ListPosts(r.Context(), limit, offset)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, posts)
}

func (h *FeedHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var request domain.CreatePostRequest
	if err := decode(r, h.validator, &request); err != nil {
		response.BusinessError(w, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), CurrentUser(r.Context()).ID, &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, post)
}

func (h *FeedHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathUUID(r, "postId")
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	if err := h.service.DeletePost(r.Context(), CurrentUser(r.Context()).ID, postID); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]string{"id": postID.String()})
}

// React toggles the caller's like or dislike on a post.
func (h *FeedHandler) React(w http.ResponseWriter, r *http.Request) {
	postID, err := pathUUID(r, "postId")
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	var request domain.ReactRequest
	if err := decode(r, h.validator, &request); err != nil {
		response.BusinessError(w, err)
		return
	}

	result, err := h.service.ToggleReaction(r.Context(), CurrentUser(r.Context()).ID, postID, request.Type)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, result)
}
