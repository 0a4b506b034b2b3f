package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/otaslabs/otas-api/internal/config"
	"github.com/otaslabs/otas-api/internal/database"
	"github.com/otaslabs/otas-api/internal/models"
	"github.com/rs/zerolog/log"
)

// grant-admin gives a user Admin privilege on a project, creating the
// mapping if it does not exist.
func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: grant-admin <email> <project-id>")
		os.Exit(1)
	}

	email := os.Args[1]
	projectID, err := uuid.Parse(os.Args[2])
	if err != nil {
		log.Fatal().Err(err).Msg("invalid project id")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var userID uuid.UUID
	err = db.Pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&userID)
	if err != nil {
		log.Fatal().Str("email", email).Msg("no user found")
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO user_project_mapping (user_id, project_id, privilege)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, project_id)
		DO UPDATE SET privilege = $3, is_active = TRUE, updated_at = NOW()
	`, userID, projectID, models.PrivilegeAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to grant admin")
	}

	fmt.Printf("Granted admin on project %s to %s\n", projectID, email)
}
