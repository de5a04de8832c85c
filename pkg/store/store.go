// Package store abstracts durable storage for workflow definitions and
// execution records. The engine treats the store as the single source of
// truth for execution status and never assumes in-memory state survives a
// restart.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
)

var (
	ErrDefinitionNotFound = errors.New("workflow definition not found")
	ErrExecutionNotFound  = errors.New("workflow execution not found")
)

// Store is implemented by every persistence backend. SaveExecution has
// insert-or-update semantics; executions are never deleted by the engine.
type Store interface {
	ListDefinitions(ctx context.Context) ([]*models.WorkflowDefinition, error)
	ListActiveDefinitions(ctx context.Context, triggerType models.TriggerType) ([]*models.WorkflowDefinition, error)
	GetDefinition(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error
	DeleteDefinition(ctx context.Context, id string) error
	UpdateDefinitionLastTriggered(ctx context.Context, id string, at time.Time) error

	SaveExecution(ctx context.Context, execution *models.WorkflowExecution) error
	GetExecution(ctx context.Context, id string) (*models.WorkflowExecution, error)
	ListExecutions(ctx context.Context, workflowID string, since time.Time) ([]*models.WorkflowExecution, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
