// Package redis provides a redis-backed store. Definitions and executions
// are JSON values; per-workflow sets index execution IDs.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/store"
)

const (
	definitionKeyPrefix = "cascade:definition:"
	definitionIndexKey  = "cascade:definitions"
	executionKeyPrefix  = "cascade:execution:"
	executionIndexKey   = "cascade:executions:" // + workflow id
)

type Store struct {
	client redis.UniversalClient
}

func NewStore(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	return &Store{client: redis.NewClient(opts)}, nil
}

// NewStoreWithClient wires an existing client, used by tests.
func NewStoreWithClient(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) ListDefinitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	ids, err := s.client.SMembers(ctx, definitionIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list definition ids: %w", err)
	}

	defs := make([]*models.WorkflowDefinition, 0, len(ids))

	for _, id := range ids {
		def, err := s.GetDefinition(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrDefinitionNotFound) {
				continue
			}

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

func (s *Store) GetDefinition(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	data, err := s.client.Get(ctx, definitionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrDefinitionNotFound
		}

		return nil, fmt.Errorf("failed to get definition %s: %w", id, err)
	}

	var def models.WorkflowDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode definition %s: %w", id, err)
	}

	return &def, nil
}

func (s *Store) SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode definition %s: %w", def.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, definitionKeyPrefix+def.ID, data, 0)
	pipe.SAdd(ctx, definitionIndexKey, def.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save definition %s: %w", def.ID, err)
	}

	return nil
}

func (s *Store) DeleteDefinition(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, definitionKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete definition %s: %w", id, err)
	}

	if removed == 0 {
		return store.ErrDefinitionNotFound
	}

	if err := s.client.SRem(ctx, definitionIndexKey, id).Err(); err != nil {
		return fmt.Errorf("failed to unindex definition %s: %w", id, err)
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
	data, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("failed to encode execution %s: %w", execution.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, executionKeyPrefix+execution.ID, data, 0)
	pipe.SAdd(ctx, executionIndexKey+execution.WorkflowID, execution.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save execution %s: %w", execution.ID, err)
	}

	return nil
}

func (s *Store) GetExecution(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	data, err := s.client.Get(ctx, executionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to get execution %s: %w", id, err)
	}

	var execution models.WorkflowExecution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("failed to decode execution %s: %w", id, err)
	}

	return &execution, nil
}

func (s *Store) ListExecutions(ctx context.Context, workflowID string, since time.Time) ([]*models.WorkflowExecution, error) {
	ids, err := s.client.SMembers(ctx, executionIndexKey+workflowID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list execution ids for %s: %w", workflowID, err)
	}

	var executions []*models.WorkflowExecution

	for _, id := range ids {
		execution, err := s.GetExecution(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrExecutionNotFound) {
				continue
			}

			return nil, err
		}

		if !since.IsZero() && execution.StartedAt.Before(since) {
			continue
		}

		executions = append(executions, execution)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.Before(executions[j].StartedAt)
	})

	return executions, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}
