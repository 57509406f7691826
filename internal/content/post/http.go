// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package post

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

// Handler implements post HTTP endpoints.
type Handler struct {
	postService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{postService: service}
}

// Routes returns a [chi.Router] configured with post-specific routes.
//
// # Endpoints
//   - GET    /?community={slug} : Paginated posts of a community.
//   - GET    /{id}              : Single post.
//   - POST   /                  : Publish a post (member-only).
//   - PATCH  /{id}              : Edit own post.
//   - DELETE /{id}              : Delete (author or moderator).
//   - POST   /{id}/flag         : Report a post.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/", handler.create)
		r.Patch("/{id}", handler.update)
		r.Delete("/{id}", handler.remove)
		r.Post("/{id}/flag", handler.flag)
	})

	return router
}

// # Request Payloads

type createPostRequest struct {
	Community string   `json:"community"` // community slug
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
}

type updatePostRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

type flagPostRequest struct {
	Reason string `json:"reason"`
}

/*
List returns a page of a community's posts.

GET /api/v1/posts?community={slug}&page=&limit=

Response:
  - 200: []Post + pagination metadata
  - 400: ErrInvalidJSON: Missing community parameter
  - 404: ErrNotFound: Unknown community
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	communitySlug := request.URL.Query().Get(FieldCommunity)
	if communitySlug == "" {
		respond.Error(writer, request, validate.RequiredError(FieldCommunity, "Query parameter is required"))
		return
	}

	params := pagination.FromRequest(request)
	posts, total, err := handler.postService.ListByCommunity(request.Context(), communitySlug, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, posts, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Get returns a single post.

GET /api/v1/posts/{id}

Response:
  - 200: Post
  - 404: ErrNotFound
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	post, err := handler.postService.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

/*
Create publishes a new post into a community.

POST /api/v1/posts

Request:
  - Body: createPostRequest (Community, Title, Content, Tags)

Response:
  - 201: Post: Created entity
  - 403: ErrForbidden: Caller is not a member of the community
  - 400: ErrInvalidJSON: Validation failure or tag not in community list
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createPostRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCommunity, input.Community).
		Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, TitleMaxLen).
		Required(FieldContent, input.Content).
		MaxLen(FieldContent, input.Content, ContentMaxLen)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Create(request.Context(), userID, CreateInput{
		CommunitySlug: input.Community,
		Title:         input.Title,
		Content:       input.Content,
		Tags:          input.Tags,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, post)
}

/*
Update edits the caller's own post.

PATCH /api/v1/posts/{id}

Request:
  - Body: updatePostRequest (all fields optional)

Response:
  - 200: Post: Updated entity
  - 403: ErrForbidden: Caller is not the author
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updatePostRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Title != nil {
		validator.Required(FieldTitle, *input.Title).MaxLen(FieldTitle, *input.Title, TitleMaxLen)
	}
	if input.Content != nil {
		validator.Required(FieldContent, *input.Content).MaxLen(FieldContent, *input.Content, ContentMaxLen)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Update(request.Context(),
		requestutil.Param(request, "id"), userID, UpdateInput{
			Title:   input.Title,
			Content: input.Content,
			Tags:    input.Tags,
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

/*
Remove deletes a post.

DELETE /api/v1/posts/{id}

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

	if err := handler.postService.Delete(request.Context(), requestutil.Param(request, "id"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Flag reports a post with one of the community's flag reasons.

POST /api/v1/posts/{id}/flag

Request:
  - Body: flagPostRequest (Reason)

Response:
  - 204: No Content
  - 400: ErrInvalidJSON: Unknown flag reason
  - 409: ErrConflict: Already flagged by this user
*/
func (handler *Handler) flag(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input flagPostRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Reason == "" {
		respond.Error(writer, request, validate.RequiredError(FieldReason, "This field is required"))
		return
	}

	if err := handler.postService.RaiseFlag(request.Context(),
		requestutil.Param(request, "id"), userID, input.Reason); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
