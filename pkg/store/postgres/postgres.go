// Package postgres provides a PostgreSQL-backed store. Definition bodies are
// stored as JSONB alongside the columns the scheduler queries on.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/store"
)

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(databaseURL string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	s := &Store{db: db, logger: logger.With("module", "postgres_store")}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS workflow_definitions (
			id             TEXT PRIMARY KEY,
			active         BOOLEAN NOT NULL DEFAULT FALSE,
			trigger_type   TEXT NOT NULL,
			body           JSONB NOT NULL,
			last_triggered TIMESTAMPTZ,
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_definitions_trigger
			ON workflow_definitions (trigger_type) WHERE active;

		CREATE TABLE IF NOT EXISTS workflow_executions (
			id          TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			status      TEXT NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			body        JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_executions_workflow
			ON workflow_executions (workflow_id, started_at);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run store migration: %w", err)
	}

	return nil
}

func (s *Store) ListDefinitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return s.queryDefinitions(ctx, `SELECT body FROM workflow_definitions ORDER BY id`)
}

func (s *Store) ListActiveDefinitions(ctx context.Context, triggerType models.TriggerType) ([]*models.WorkflowDefinition, error) {
	return s.queryDefinitions(ctx,
		`SELECT body FROM workflow_definitions WHERE active AND trigger_type = $1 ORDER BY id`,
		string(triggerType))
}

func (s *Store) queryDefinitions(ctx context.Context, query string, args ...any) ([]*models.WorkflowDefinition, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow definitions: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	var defs []*models.WorkflowDefinition

	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}

		var def models.WorkflowDefinition
		if err := json.Unmarshal(body, &def); err != nil {
			return nil, fmt.Errorf("failed to decode definition: %w", err)
		}

		defs = append(defs, &def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating definitions: %w", err)
	}

	return defs, nil
}

func (s *Store) GetDefinition(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	var body []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM workflow_definitions WHERE id = $1`, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDefinitionNotFound
		}

		return nil, fmt.Errorf("failed to get definition %s: %w", id, err)
	}

	var def models.WorkflowDefinition
	if err := json.Unmarshal(body, &def); err != nil {
		return nil, fmt.Errorf("failed to decode definition %s: %w", id, err)
	}

	return &def, nil
}

func (s *Store) SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error {
	body, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode definition %s: %w", def.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_definitions (id, active, trigger_type, body, last_triggered, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			active = EXCLUDED.active,
			trigger_type = EXCLUDED.trigger_type,
			body = EXCLUDED.body,
			last_triggered = EXCLUDED.last_triggered,
			updated_at = NOW()
	`, def.ID, def.Active, string(def.TriggerType), body, def.LastTriggeredAt)
	if err != nil {
		return fmt.Errorf("failed to save definition %s: %w", def.ID, err)
	}

	return nil
}

func (s *Store) DeleteDefinition(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM workflow_definitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete definition %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete definition %s: %w", id, err)
	}

	if affected == 0 {
		return store.ErrDefinitionNotFound
	}

	return nil
}

func (s *Store) UpdateDefinitionLastTriggered(ctx context.Context, id string, at time.Time) error {
	def, err := s.GetDefinition(ctx, id)
	if err != nil {
		return err
	}

	def.LastTriggeredAt = &at
	def.UpdatedAt = time.Now().UTC()

	return s.SaveDefinition(ctx, def)
}

func (s *Store) SaveExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	body, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("failed to encode execution %s: %w", execution.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_executions (id, workflow_id, status, started_at, body)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			body = EXCLUDED.body
	`, execution.ID, execution.WorkflowID, string(execution.Status), execution.StartedAt, body)
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", execution.ID, err)
	}

	return nil
}

func (s *Store) GetExecution(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	var body []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM workflow_executions WHERE id = $1`, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to get execution %s: %w", id, err)
	}

	var execution models.WorkflowExecution
	if err := json.Unmarshal(body, &execution); err != nil {
		return nil, fmt.Errorf("failed to decode execution %s: %w", id, err)
	}

	return &execution, nil
}

func (s *Store) ListExecutions(ctx context.Context, workflowID string, since time.Time) ([]*models.WorkflowExecution, error) {
	query := `SELECT body FROM workflow_executions WHERE workflow_id = $1`
	args := []any{workflowID}

	if !since.IsZero() {
		query += ` AND started_at >= $2`
		args = append(args, since)
	}

	query += ` ORDER BY started_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions for %s: %w", workflowID, err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	var executions []*models.WorkflowExecution

	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		var execution models.WorkflowExecution
		if err := json.Unmarshal(body, &execution); err != nil {
			return nil, fmt.Errorf("failed to decode execution: %w", err)
		}

		executions = append(executions, &execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
