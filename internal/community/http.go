// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package community

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

// Handler implements community and moderation HTTP endpoints.
type Handler struct {
	communityService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{communityService: service}
}

// Routes returns a [chi.Router] configured with community-specific routes.
//
// # Endpoints
//   - GET    /                                      : Paginated community list.
//   - GET    /{slug}                                : Full aggregate detail.
//   - POST   /                                      : Found a new community.
//   - PATCH  /{slug}                                : Edit description/rules/tags/flags.
//   - DELETE /{slug}                                : Delete (remove_community).
//   - POST   /{slug}/join                           : Join as member.
//   - POST   /{slug}/leave                          : Leave the community.
//   - PUT    /{slug}/moderators/{username}          : Promote a member.
//   - DELETE /{slug}/moderators/{username}          : Demote a moderator.
//   - PUT    /{slug}/moderators/{username}/permissions : Replace a permission set.
//   - POST   /{slug}/kick/{username}                : Kick/ban a member.
//
// Listing and detail are open to anonymous readers; every mutation requires
// authentication. Moderation checks happen in the service, not the router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{slug}", handler.get)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/", handler.create)
		r.Patch("/{slug}", handler.update)
		r.Delete("/{slug}", handler.remove)

		r.Post("/{slug}/join", handler.join)
		r.Post("/{slug}/leave", handler.leave)

		r.Put("/{slug}/moderators/{username}", handler.addModerator)
		r.Delete("/{slug}/moderators/{username}", handler.removeModerator)
		r.Put("/{slug}/moderators/{username}/permissions", handler.setPermissions)
		r.Post("/{slug}/kick/{username}", handler.kick)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Rules       []Rule   `json:"rules"`
	Tags        []string `json:"tags"`
	Flags       []string `json:"flags"`
}

type updateRequest struct {
	Description *string   `json:"description"`
	Rules       *[]Rule   `json:"rules"`
	Tags        *[]string `json:"tags"`
	Flags       *[]string `json:"flags"`
}

type setPermissionsRequest struct {
	Permissions []Permission `json:"permissions"`
}

type kickRequest struct {
	Period KickPeriod `json:"period"`
}

/*
List returns a page of community summaries.

GET /api/v1/communities?page=&limit=

Response:
  - 200: []Community + pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	communities, total, err := handler.communityService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, communities, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Get returns the full community aggregate.

GET /api/v1/communities/{slug}

Response:
  - 200: Community: Full aggregate
  - 404: ErrNotFound: Unknown slug
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	communitySlug := requestutil.Param(request, "slug")

	community, err := handler.communityService.GetBySlug(request.Context(), communitySlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, community)
}

/*
Create founds a new community with the caller as sole moderator.

POST /api/v1/communities

Request:
  - Body: createRequest (Title required; Rules/Tags/Flags optional)

Response:
  - 201: Community: Created aggregate
  - 400: ErrInvalidJSON: Malformed title or payload
  - 409: ErrConflict: Duplicate title
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MinLen(FieldTitle, input.Title, TitleMinLen).
		MaxLen(FieldTitle, input.Title, TitleMaxLen).
		MaxLen(FieldDescription, input.Description, DescriptionMaxLen)
	for _, rule := range input.Rules {
		validator.Required(FieldRules, rule.Rule).MaxLen(FieldRules, rule.Rule, RuleMaxLen)
	}
	for _, tag := range input.Tags {
		validator.Required(FieldTags, tag).MaxLen(FieldTags, tag, TagMaxLen)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	community, err := handler.communityService.Create(request.Context(), userID, CreateInput{
		Title:       input.Title,
		Description: input.Description,
		Rules:       input.Rules,
		Tags:        input.Tags,
		Flags:       input.Flags,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, community)
}

/*
Update edits the community's description, rules, tags, or flags.

PATCH /api/v1/communities/{slug}

Request:
  - Body: updateRequest (all fields optional)

Response:
  - 200: Community: Updated aggregate
  - 403: ErrForbidden: Caller is not a moderator
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Description != nil {
		validator.MaxLen(FieldDescription, *input.Description, DescriptionMaxLen)
	}
	if input.Rules != nil {
		for _, rule := range *input.Rules {
			validator.Required(FieldRules, rule.Rule).MaxLen(FieldRules, rule.Rule, RuleMaxLen)
		}
	}
	if input.Tags != nil {
		for _, tag := range *input.Tags {
			validator.Required(FieldTags, tag).MaxLen(FieldTags, tag, TagMaxLen)
		}
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	community, err := handler.communityService.Update(request.Context(),
		requestutil.Param(request, "slug"), userID, UpdateInput{
			Description: input.Description,
			Rules:       input.Rules,
			Tags:        input.Tags,
			Flags:       input.Flags,
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, community)
}

/*
Remove deletes the community outright.

DELETE /api/v1/communities/{slug}

Response:
  - 204: No Content
  - 403: ErrForbidden: Missing remove_community permission
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.communityService.Remove(request.Context(), requestutil.Param(request, "slug"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Membership Endpoints

/*
Join adds the caller to the community.

POST /api/v1/communities/{slug}/join

Response:
  - 204: No Content
  - 403: ErrForbidden: Already a member, or actively kicked
  - 404: ErrNotFound: Unknown slug
*/
func (handler *Handler) join(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.communityService.Join(request.Context(), requestutil.Param(request, "slug"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Leave removes the caller from the community.

POST /api/v1/communities/{slug}/leave

Response:
  - 204: No Content
  - 403: ErrForbidden: Not a member, or still a moderator
*/
func (handler *Handler) leave(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.communityService.Leave(request.Context(), requestutil.Param(request, "slug"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Moderation Endpoints

/*
AddModerator promotes a member to moderator (no permissions yet).

PUT /api/v1/communities/{slug}/moderators/{username}

Response:
  - 204: No Content
  - 403: ErrForbidden: Caller not a moderator, or target not a member
  - 409: ErrConflict: Target already a moderator
*/
func (handler *Handler) addModerator(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.communityService.AddModerator(request.Context(),
		requestutil.Param(request, "slug"), userID, requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
RemoveModerator demotes a moderator back to plain member.

DELETE /api/v1/communities/{slug}/moderators/{username}

Response:
  - 204: No Content
  - 403: ErrForbidden: Missing set_moderators, last-moderator guard,
    or sole-permission-holder guard
*/
func (handler *Handler) removeModerator(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.communityService.RemoveModerator(request.Context(),
		requestutil.Param(request, "slug"), userID, requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
SetPermissions replaces a moderator's permission set.

PUT /api/v1/communities/{slug}/moderators/{username}/permissions

Request:
  - Body: setPermissionsRequest (Permissions)

Response:
  - 204: No Content
  - 403: ErrForbidden: Missing set_permissions, or sole-holder self-strip
  - 400: ErrInvalidJSON: Unknown permission value
*/
func (handler *Handler) setPermissions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input setPermissionsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	err = handler.communityService.SetPermissions(request.Context(),
		requestutil.Param(request, "slug"), userID,
		requestutil.Param(request, "username"), input.Permissions)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Kick bans a member for the given period.

POST /api/v1/communities/{slug}/kick/{username}

Request:
  - Body: kickRequest (Period: "test"|"hour"|"day"|"week"|"forever")

Response:
  - 204: No Content
  - 403: ErrForbidden: Missing kick_members, or target is a moderator
  - 400: ErrInvalidJSON: Missing or unknown period
*/
func (handler *Handler) kick(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input kickRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	err = handler.communityService.Kick(request.Context(),
		requestutil.Param(request, "slug"), userID,
		requestutil.Param(request, "username"), input.Period)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
