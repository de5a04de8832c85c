package mocks

import (
	"context"
	"log/slog"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

// StubActionFactory registers under an arbitrary action type and returns a
// StubAction, for driving executor tests without real integrations.
type StubActionFactory struct {
	ActionType models.ActionType
	Err        error
	Data       map[string]any
}

func (f *StubActionFactory) ID() models.ActionType {
	return f.ActionType
}

func (f *StubActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return &StubAction{Config: config, Err: f.Err, Data: f.Data}, nil
}

type StubAction struct {
	Config map[string]any
	Err    error
	Data   map[string]any
}

func (a *StubAction) Execute(_ context.Context, _ *models.ExecutionContext, _ *slog.Logger) (map[string]any, error) {
	if a.Err != nil {
		return nil, a.Err
	}

	if a.Data != nil {
		return a.Data, nil
	}

	return map[string]any{"stub": true}, nil
}

// PanicActionFactory returns an action that panics, for testing dispatcher
// isolation.
type PanicActionFactory struct {
	ActionType models.ActionType
}

func (f *PanicActionFactory) ID() models.ActionType {
	return f.ActionType
}

func (f *PanicActionFactory) Create(_ map[string]any) (protocol.Action, error) {
	return panicAction{}, nil
}

type panicAction struct{}

func (panicAction) Execute(_ context.Context, _ *models.ExecutionContext, _ *slog.Logger) (map[string]any, error) {
	panic("boom")
}
