// Copyright (c) 2026 theNeighbourhood. All rights reserved.

/*
Package api assembles the HTTP surface of theNeighbourhood.

It wires repositories, services, and handlers together, builds the chi
router with the full middleware chain, and owns the background kick-expiry
reconciler. The composition happens here so that cmd/api stays a thin
entrypoint concerned only with process lifecycle.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hybridworkplace/theneighbourhood/internal/community"
	"github.com/hybridworkplace/theneighbourhood/internal/content/comment"
	"github.com/hybridworkplace/theneighbourhood/internal/content/post"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/config"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/constants"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/middleware"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/sec"
	"github.com/hybridworkplace/theneighbourhood/internal/users/account"
	"github.com/hybridworkplace/theneighbourhood/internal/users/auth"
)

// # Definitions & Constructors

// Server bundles the composed router and the background jobs that share
// its lifecycle.
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *goredis.Client
	router     chi.Router
	reconciler *community.Reconciler
}

/*
New composes the full application.

Description: Builds every repository, service, and handler, assembles the
middleware chain, and prepares (without starting) the kick-expiry
reconciler.

Parameters:
  - context: context.Context (governs middleware background routines)
  - cfg: *config.Config
  - logger: *slog.Logger
  - pool: *pgxpool.Pool
  - redisClient: *goredis.Client
  - tokenService: *sec.TokenService

Returns:
  - *Server: Ready-to-serve application
*/
func New(
	context context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
	tokenService *sec.TokenService,
) *Server {

	// ── Repositories ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	communityRepository := community.NewRepository(pool)
	postRepository := post.NewRepository(pool)
	commentRepository := comment.NewRepository(pool)
	presenceStore := account.NewPresenceStore(redisClient)

	// ── Services ──────────────────────────────────────────────────────
	authService := auth.NewService(userRepository, tokenService)
	accountService := account.NewService(userRepository, presenceStore)
	communityService := community.NewService(communityRepository, &userDirectory{users: userRepository})
	postService := post.NewService(postRepository, communityService)
	commentService := comment.NewService(commentRepository, postService, communityService)

	// ── Handlers ──────────────────────────────────────────────────────
	authHandler := auth.NewHandler(authService)
	accountHandler := account.NewHandler(accountService)
	communityHandler := community.NewHandler(communityService)
	postHandler := post.NewHandler(postService)
	commentHandler := comment.NewHandler(commentService)

	server := &Server{
		config:     cfg,
		logger:     logger,
		pool:       pool,
		redis:      redisClient,
		reconciler: community.NewReconciler(communityRepository, cfg.KickSweepInterval, logger),
	}

	// ── Router Assembly ───────────────────────────────────────────────
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.PanicRecovery(logger))
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimit(context))
	router.Use(middleware.Authenticate(tokenService))

	router.Get("/healthz", server.liveness)
	router.Get("/readyz", server.readiness)

	router.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/users", accountHandler.Routes())
		r.Mount("/communities", communityHandler.Routes())
		r.Mount("/posts", postHandler.Routes())
		r.Mount("/comments", commentHandler.Routes())
	})

	server.router = router
	return server
}

// Router returns the composed HTTP handler.
func (server *Server) Router() http.Handler {
	return server.router
}

// StartJobs launches background jobs owned by the server.
func (server *Server) StartJobs(context context.Context) {
	server.reconciler.Start(context)
}

// StopJobs stops background jobs and waits for them to drain.
func (server *Server) StopJobs() {
	server.reconciler.Stop()
}

// # Adapters

// userDirectory adapts the auth user repository to the username resolution
// contract of the community service.
type userDirectory struct {
	users auth.UserRepository
}

func (directory *userDirectory) ResolveUsername(context context.Context, username string) (string, error) {
	user, err := directory.users.FindByUsername(context, username)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
