// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/middleware"
	requestutil "github.com/hybridworkplace/theneighbourhood/internal/platform/request"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/respond"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/validate"
	"github.com/hybridworkplace/theneighbourhood/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements comment HTTP endpoints.
type Handler struct {
	commentService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{commentService: service}
}

// Routes returns a [chi.Router] configured with comment-specific routes.
//
// # Endpoints
//   - GET    /?post={id}  : Paginated comments of a post.
//   - GET    /{id}        : Single comment.
//   - POST   /            : Publish a comment (member-only).
//   - PATCH  /{id}        : Edit own comment.
//   - DELETE /{id}        : Delete (author or moderator).
//   - POST   /{id}/vote   : Vote up or down.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/", handler.create)
		r.Patch("/{id}", handler.update)
		r.Delete("/{id}", handler.remove)
		r.Post("/{id}/vote", handler.vote)
	})

	return router
}

// # Request Payloads

type createCommentRequest struct {
	Post            string  `json:"post"` // post ID
	ParentCommentID *string `json:"parent_comment_id"`
	Message         string  `json:"message"`
}

type updateCommentRequest struct {
	Message string `json:"message"`
}

type voteRequest struct {
	Direction string `json:"direction"` // "up" or "down"
}

/*
List returns a page of a post's comments, oldest first.

GET /api/v1/comments?post={id}&page=&limit=

Response:
  - 200: []Comment + pagination metadata
  - 400: ErrInvalidJSON: Missing post parameter
  - 404: ErrNotFound: Unknown post
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	postID := request.URL.Query().Get(FieldPost)
	if postID == "" {
		respond.Error(writer, request, validate.RequiredError(FieldPost, "Query parameter is required"))
		return
	}

	params := pagination.FromRequest(request)
	comments, total, err := handler.commentService.ListByPost(request.Context(), postID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comments, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Get returns a single comment.

GET /api/v1/comments/{id}

Response:
  - 200: Comment
  - 404: ErrNotFound
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	comment, err := handler.commentService.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}

/*
Create publishes a comment under a post.

POST /api/v1/comments

Request:
  - Body: createCommentRequest (Post, Message, optional ParentCommentID)

Response:
  - 201: Comment: Created entity
  - 403: ErrForbidden: Caller is not a member of the post's community
  - 400: ErrInvalidJSON: Validation failure or cross-post parent
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createCommentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldPost, input.Post).
		Required(FieldMessage, input.Message).
		MaxLen(FieldMessage, input.Message, MessageMaxLen)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.commentService.Create(request.Context(), userID, CreateInput{
		PostID:          input.Post,
		ParentCommentID: input.ParentCommentID,
		Message:         input.Message,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

/*
Update edits the caller's own comment.

PATCH /api/v1/comments/{id}

Request:
  - Body: updateCommentRequest (Message)

Response:
  - 200: Comment: Updated entity
  - 403: ErrForbidden: Caller is not the author
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateCommentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldMessage, input.Message).
		MaxLen(FieldMessage, input.Message, MessageMaxLen)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.commentService.Update(request.Context(),
		requestutil.Param(request, "id"), userID, input.Message)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}

/*
Remove deletes a comment.

DELETE /api/v1/comments/{id}

Response:
  - 204: No Content
  - 403: ErrForbidden: Caller is neither author nor moderator
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.commentService.Delete(request.Context(), requestutil.Param(request, "id"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Vote casts or switches the caller's vote on a comment.

POST /api/v1/comments/{id}/vote

Request:
  - Body: voteRequest (Direction: "up" or "down")

Response:
  - 200: Comment: Updated entity with new tally
  - 403: ErrForbidden: Caller is not a member
  - 409: ErrConflict: Identical vote already cast
*/
func (handler *Handler) vote(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input voteRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	direction, err := ParseVoteDirection(input.Direction)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.commentService.Vote(request.Context(),
		requestutil.Param(request, "id"), userID, direction)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}
