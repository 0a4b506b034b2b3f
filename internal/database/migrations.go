package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		first_name VARCHAR(255) NOT NULL,
		middle_name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS project (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		description VARCHAR(300) NOT NULL DEFAULT '',
		created_by UUID NOT NULL REFERENCES users(id),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS user_project_mapping (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		project_id UUID NOT NULL REFERENCES project(id) ON DELETE CASCADE,
		privilege SMALLINT NOT NULL DEFAULT 2,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, project_id)
	)`,

	`CREATE TABLE IF NOT EXISTS backend_api_keys (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		prefix VARCHAR(255) NOT NULL,
		hashed_key TEXT NOT NULL,
		project_id UUID NOT NULL REFERENCES project(id) ON DELETE CASCADE,
		name VARCHAR(255),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		last_used_at TIMESTAMP WITH TIME ZONE,
		revoked_at TIMESTAMP WITH TIME ZONE,
		expires_at TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE TABLE IF NOT EXISTS agent (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		project_id UUID NOT NULL REFERENCES project(id) ON DELETE CASCADE,
		created_by UUID NOT NULL REFERENCES users(id),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS agent_key (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		prefix VARCHAR(255) NOT NULL,
		hashed_key TEXT NOT NULL,
		agent_id UUID NOT NULL REFERENCES agent(id) ON DELETE CASCADE,
		name VARCHAR(255),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		last_used_at TIMESTAMP WITH TIME ZONE,
		revoked_at TIMESTAMP WITH TIME ZONE,
		expires_at TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE TABLE IF NOT EXISTS agent_session (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		agent_id UUID NOT NULL REFERENCES agent(id) ON DELETE CASCADE,
		agent_key_id UUID REFERENCES agent_key(id) ON DELETE SET NULL,
		meta JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS backend_event (
		event_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		event_time TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		project_id VARCHAR(255) NOT NULL,
		agent_id VARCHAR(255),
		agent_session_id VARCHAR(255),
		path TEXT NOT NULL,
		method VARCHAR(20) NOT NULL,
		status_code INTEGER NOT NULL,
		latency_ms DOUBLE PRECISION NOT NULL,
		request_size_bytes INTEGER NOT NULL DEFAULT 0,
		response_size_bytes INTEGER NOT NULL DEFAULT 0,
		request_headers TEXT,
		request_body TEXT,
		query_params TEXT,
		post_data TEXT,
		response_headers TEXT,
		response_body TEXT,
		request_content_type VARCHAR(255),
		response_content_type VARCHAR(255),
		custom_properties JSONB,
		error TEXT,
		metadata JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_user_project_mapping_user_id ON user_project_mapping(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_project_mapping_project_id ON user_project_mapping(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_backend_api_keys_prefix ON backend_api_keys(prefix)`,
	`CREATE INDEX IF NOT EXISTS idx_backend_api_keys_project_id ON backend_api_keys(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_backend_api_keys_active ON backend_api_keys(active)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_project_id ON agent(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_key_prefix ON agent_key(prefix)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_key_agent_id ON agent_key(agent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_key_active ON agent_key(active)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_session_agent_id ON agent_session(agent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_backend_event_project_id ON backend_event(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_backend_event_agent_id ON backend_event(agent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_backend_event_agent_session_id ON backend_event(agent_session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_backend_event_event_time ON backend_event(event_time)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
