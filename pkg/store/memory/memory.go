// Package memory provides an in-memory store for tests and local
// development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/store"
)

type Store struct {
	mu          sync.RWMutex
	definitions map[string]*models.WorkflowDefinition
	executions  map[string]*models.WorkflowExecution
}

func NewStore() *Store {
	return &Store{
		definitions: make(map[string]*models.WorkflowDefinition),
		executions:  make(map[string]*models.WorkflowExecution),
	}
}

func (s *Store) ListDefinitions(_ context.Context) ([]*models.WorkflowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make([]*models.WorkflowDefinition, 0, len(s.definitions))
	for _, def := range s.definitions {
		defs = append(defs, def.Snapshot())
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })

	return defs, nil
}

func (s *Store) ListActiveDefinitions(_ context.Context, triggerType models.TriggerType) ([]*models.WorkflowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var defs []*models.WorkflowDefinition

	for _, def := range s.definitions {
		if def.Active && def.TriggerType == triggerType {
			defs = append(defs, def.Snapshot())
		}
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })

	return defs, nil
}

func (s *Store) GetDefinition(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.definitions[id]
	if !ok {
		return nil, store.ErrDefinitionNotFound
	}

	return def.Snapshot(), nil
}

func (s *Store) SaveDefinition(_ context.Context, def *models.WorkflowDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.definitions[def.ID] = def.Snapshot()

	return nil
}

func (s *Store) DeleteDefinition(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.definitions[id]; !ok {
		return store.ErrDefinitionNotFound
	}

	delete(s.definitions, id)

	return nil
}

func (s *Store) UpdateDefinitionLastTriggered(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.definitions[id]
	if !ok {
		return store.ErrDefinitionNotFound
	}

	def.LastTriggeredAt = &at
	def.UpdatedAt = time.Now().UTC()

	return nil
}

func (s *Store) SaveExecution(_ context.Context, execution *models.WorkflowExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *execution
	cp.Log = append([]models.ExecutionLogEntry(nil), execution.Log...)
	s.executions[execution.ID] = &cp

	return nil
}

func (s *Store) GetExecution(_ context.Context, id string) (*models.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	execution, ok := s.executions[id]
	if !ok {
		return nil, store.ErrExecutionNotFound
	}

	cp := *execution
	cp.Log = append([]models.ExecutionLogEntry(nil), execution.Log...)

	return &cp, nil
}

func (s *Store) ListExecutions(_ context.Context, workflowID string, since time.Time) ([]*models.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var executions []*models.WorkflowExecution

	for _, execution := range s.executions {
		if execution.WorkflowID != workflowID {
			continue
		}

		if !since.IsZero() && execution.StartedAt.Before(since) {
			continue
		}

		cp := *execution
		executions = append(executions, &cp)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.Before(executions[j].StartedAt)
	})

	return executions, nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
