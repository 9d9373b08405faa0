package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/daap14/teamboard/internal/api/handler"
	"github.com/daap14/teamboard/internal/api/middleware"
	"github.com/daap14/teamboard/internal/authz"
	"github.com/daap14/teamboard/internal/membership"
	"github.com/daap14/teamboard/internal/project"
	"github.com/daap14/teamboard/internal/team"
	"github.com/daap14/teamboard/internal/user"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.DBPinger
	Version     string
	CORSOrigins []string
	Cookies     handler.CookieConfig
	OpenAPI     *handler.OpenAPIHandler

	Tokens      middleware.TokenParser
	Auth        handler.AuthService
	Users       user.Repository
	Teams       team.Repository
	Members     membership.Store
	Projects    project.Repository
	Authorizer  handler.ProjectAuthorizer
	Invitations handler.InvitationManager
	Tasks       handler.TaskService

	// Realtime serves the /ws upgrade; it also reports client counts to /health.
	Realtime interface {
		http.Handler
		handler.ClientCounter
	}
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var clients handler.ClientCounter
	if deps.Realtime != nil {
		clients = deps.Realtime
	}
	healthHandler := handler.NewHealthHandler(deps.DBPinger, clients, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if deps.OpenAPI != nil {
		r.Get("/openapi.json", deps.OpenAPI.ServeHTTP)
	}

	requireAuth := middleware.Auth(deps.Tokens)
	gate := func(p authz.Policy) func(http.Handler) http.Handler {
		return middleware.RequireTeamRole(deps.Members, p)
	}

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookies)
	teamHandler := handler.NewTeamHandler(deps.Teams, deps.Members, deps.Projects)
	memberHandler := handler.NewMemberHandler(deps.Members, deps.Users)
	invitationHandler := handler.NewInvitationHandler(deps.Invitations)
	projectHandler := handler.NewProjectHandler(deps.Projects, deps.Authorizer)
	taskHandler := handler.NewTaskHandler(deps.Tasks)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
			r.With(requireAuth).Get("/me", authHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/teams", func(r chi.Router) {
				r.Post("/", teamHandler.Create)
				r.Get("/", teamHandler.List)

				r.Route("/{teamId}", func(r chi.Router) {
					r.With(gate(authz.AnyMember)).Get("/", teamHandler.Get)
					r.With(gate(authz.OwnerOnly)).Patch("/", teamHandler.Update)
					r.With(gate(authz.OwnerOnly)).Delete("/", teamHandler.Delete)

					r.Route("/members", func(r chi.Router) {
						r.With(gate(authz.AnyMember)).Get("/", memberHandler.List)
						r.With(gate(authz.OwnerOrAdmin)).Post("/", memberHandler.Add)
						r.With(gate(authz.MemberRoleUpdate)).Patch("/{memberId}", memberHandler.UpdateRole)
						r.With(gate(authz.MemberRemoval)).Delete("/{memberId}", memberHandler.Remove)
					})

					r.Route("/invitations", func(r chi.Router) {
						r.Use(gate(authz.OwnerOrAdmin))
						r.Get("/", invitationHandler.List)
						r.Post("/", invitationHandler.Send)
						r.Delete("/{token}", invitationHandler.Cancel)
					})

					r.Route("/projects", func(r chi.Router) {
						r.Use(gate(authz.AnyMember))
						r.Get("/", projectHandler.List)
						r.Post("/", projectHandler.Create)
					})
				})
			})

			r.Post("/invitations/accept/{token}", invitationHandler.Accept)

			r.Route("/projects", func(r chi.Router) {
				r.Patch("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Get("/project/{projectId}", taskHandler.ListByProject)
				r.Patch("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
			})
		})
	})

	if deps.Realtime != nil {
		r.With(requireAuth).Get("/ws", deps.Realtime.ServeHTTP)
	}

	return r
}
