// Package file provides a JSON-file backed store. Each definition and
// execution is one document under the root directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/store"
)

const dirPerm = 0o755

type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

func (s *Store) definitionsDir() string {
	return filepath.Join(s.root, "definitions")
}

func (s *Store) executionsDir() string {
	return filepath.Join(s.root, "executions")
}

func (s *Store) ListDefinitions(_ context.Context) ([]*models.WorkflowDefinition, error) {
	entries, err := os.ReadDir(s.definitionsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read definitions directory: %w", err)
	}

	var defs []*models.WorkflowDefinition

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		def, err := s.readDefinition(filepath.Join(s.definitionsDir(), entry.Name()))
		if err != nil {
			return nil, err
		}

		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })

	return defs, nil
}

func (s *Store) ListActiveDefinitions(ctx context.Context, triggerType models.TriggerType) ([]*models.WorkflowDefinition, error) {
	all, err := s.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	var defs []*models.WorkflowDefinition

	for _, def := range all {
		if def.Active && def.TriggerType == triggerType {
			defs = append(defs, def)
		}
	}

	return defs, nil
}

func (s *Store) GetDefinition(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	def, err := s.readDefinition(filepath.Join(s.definitionsDir(), id+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.ErrDefinitionNotFound
		}

		return nil, err
	}

	return def, nil
}

func (s *Store) SaveDefinition(_ context.Context, def *models.WorkflowDefinition) error {
	if err := os.MkdirAll(s.definitionsDir(), dirPerm); err != nil {
		return fmt.Errorf("failed to create definitions directory: %w", err)
	}

	return writeJSON(filepath.Join(s.definitionsDir(), def.ID+".json"), def)
}

func (s *Store) DeleteDefinition(_ context.Context, id string) error {
	err := os.Remove(filepath.Join(s.definitionsDir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return store.ErrDefinitionNotFound
		}

		return fmt.Errorf("failed to delete definition %s: %w", id, err)
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

func (s *Store) SaveExecution(_ context.Context, execution *models.WorkflowExecution) error {
	if err := os.MkdirAll(s.executionsDir(), dirPerm); err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	return writeJSON(filepath.Join(s.executionsDir(), execution.ID+".json"), execution)
}

func (s *Store) GetExecution(_ context.Context, id string) (*models.WorkflowExecution, error) {
	data, err := os.ReadFile(filepath.Join(s.executionsDir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to read execution %s: %w", id, err)
	}

	var execution models.WorkflowExecution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("failed to decode execution %s: %w", id, err)
	}

	return &execution, nil
}

func (s *Store) ListExecutions(_ context.Context, workflowID string, since time.Time) ([]*models.WorkflowExecution, error) {
	entries, err := os.ReadDir(s.executionsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read executions directory: %w", err)
	}

	var executions []*models.WorkflowExecution

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.executionsDir(), entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read execution file %s: %w", entry.Name(), err)
		}

		var execution models.WorkflowExecution
		if err := json.Unmarshal(data, &execution); err != nil {
			return nil, fmt.Errorf("failed to decode execution file %s: %w", entry.Name(), err)
		}

		if execution.WorkflowID != workflowID {
			continue
		}

		if !since.IsZero() && execution.StartedAt.Before(since) {
			continue
		}

		executions = append(executions, &execution)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.Before(executions[j].StartedAt)
	})

	return executions, nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

func (s *Store) readDefinition(path string) (*models.WorkflowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var def models.WorkflowDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode definition %s: %w", path, err)
	}

	return &def, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return os.Rename(tmp, path)
}
