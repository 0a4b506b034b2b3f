package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/otaslabs/otas-api/internal/config"
	"github.com/otaslabs/otas-api/internal/database"
	"github.com/otaslabs/otas-api/internal/handlers"
	authmw "github.com/otaslabs/otas-api/internal/middleware"
	"github.com/otaslabs/otas-api/internal/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.UserTokenExpiry, cfg.AgentSessionExpiry)
	userService := services.NewUserService(db)
	projectService := services.NewProjectService(db)
	apiKeyService := services.NewAPIKeyService(db)
	agentService := services.NewAgentService(db)
	eventService := services.NewEventService(db)

	userHandler := handlers.NewUserHandler(userService, jwtService)
	projectHandler := handlers.NewProjectHandler(projectService)
	apiKeyHandler := handlers.NewAPIKeyHandler(apiKeyService)
	agentHandler := handlers.NewAgentHandler(agentService, jwtService)
	eventHandler := handlers.NewEventHandler(eventService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(driftmw.Recovery())
	app.Use(driftmw.CORSWithConfig(driftmw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			authmw.HeaderUserToken, authmw.HeaderProjectID,
			authmw.HeaderSDKKey, authmw.HeaderAgentKey, authmw.HeaderAgentSessionToken,
		},
		MaxAge: 86400,
	}))
	app.Use(driftmw.BodyParser())

	userAuth := authmw.UserAuth(jwtService, userService)
	userProjectAuth := authmw.UserProjectAuth(jwtService, userService, projectService)
	adminOnly := authmw.RequireAdmin()
	sdkKeyAuth := authmw.SDKKeyAuth(apiKeyService)
	agentKeyAuth := authmw.AgentKeyAuth(agentService)
	agentSessionAuth := authmw.AgentSessionAuth(jwtService)

	// Public endpoints.
	public := app.Group("/api/user")
	public.Post("/v1/create", userHandler.Create)
	public.Post("/v1/login", userHandler.Login)

	// User-session authenticated.
	user := app.Group("/api/user")
	user.Use(userAuth)
	user.Get("/v1/authenticate", userHandler.Authenticate)
	user.Post("/v1/edit", userHandler.Edit)
	user.Post("/v1/reset-password/update", userHandler.UpdatePassword)

	project := app.Group("/api/project")
	project.Use(userAuth)
	project.Post("/v1/create", projectHandler.Create)
	project.Get("/v1/list", projectHandler.List)

	// User+project authenticated, member or admin.
	projectMember := app.Group("/api/project")
	projectMember.Use(userProjectAuth)
	projectMember.Get("/v1/sdk/backend/key/list", apiKeyHandler.List)

	// User+project authenticated, admin only.
	projectAdmin := app.Group("/api/project")
	projectAdmin.Use(userProjectAuth)
	projectAdmin.Use(adminOnly)
	projectAdmin.Post("/v1/sdk/backend/key/create", apiKeyHandler.Create)
	projectAdmin.Post("/v1/sdk/backend/key/revoke", apiKeyHandler.Revoke)

	// SDK-key authenticated verify endpoint for sibling services.
	sdk := app.Group("/api/project")
	sdk.Use(sdkKeyAuth)
	sdk.Post("/v1/sdk/backend/key/authenticate", apiKeyHandler.Authenticate)

	agentMember := app.Group("/api/agent")
	agentMember.Use(userProjectAuth)
	agentMember.Get("/v1/list", agentHandler.List)
	agentMember.Get("/v1/sessions/list", agentHandler.ListSessions)

	agentAdmin := app.Group("/api/agent")
	agentAdmin.Use(userProjectAuth)
	agentAdmin.Use(adminOnly)
	agentAdmin.Post("/v1/create", agentHandler.Create)
	agentAdmin.Post("/v1/key/create", agentHandler.CreateKey)

	// Agent-key authenticated.
	agentKeyed := app.Group("/api/agent")
	agentKeyed.Use(agentKeyAuth)
	agentKeyed.Post("/v1/session/create", agentHandler.CreateSession)
	agentKeyed.Get("/v1/auth/verify", agentHandler.VerifyAuth)

	// Event capture requires the SDK key and the agent session token.
	events := app.Group("/api/events")
	events.Use(sdkKeyAuth)
	events.Use(agentSessionAuth)
	events.Post("/v1/capture", eventHandler.Capture)

	app.Get("/api/v1/health", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info().Str("addr", addr).Msg("server starting")
		if err := app.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
}
