// Package script provides the custom_script action: a capability-limited
// JavaScript sandbox with a hard deadline. Scripts see a read-only context
// object and nothing else: no host, no I/O, no environment.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dop251/goja"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const defaultTimeout = 5 * time.Second

var errScriptTimeout = errors.New("script execution timed out")

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() models.ActionType {
	return models.ActionTypeCustomScript
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	source, _ := config["script"].(string)
	if source == "" {
		return nil, fmt.Errorf("custom_script action requires a script setting")
	}

	timeout := defaultTimeout
	if seconds, ok := config["timeout_seconds"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	program, err := goja.Compile("custom_script", source, true)
	if err != nil {
		return nil, fmt.Errorf("failed to compile script: %w", err)
	}

	return &Action{program: program, timeout: timeout}, nil
}

type Action struct {
	program *goja.Program
	timeout time.Duration
}

func (a *Action) Execute(ctx context.Context, executionCtx *models.ExecutionContext, logger *slog.Logger) (result map[string]any, err error) {
	logger.Info("Executing custom script", "timeout", a.timeout)

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	if err := vm.Set("context", executionCtx.AsMap()); err != nil {
		return nil, fmt.Errorf("failed to seed script context: %w", err)
	}

	timer := time.AfterFunc(a.timeout, func() {
		vm.Interrupt(errScriptTimeout)
	})
	defer timer.Stop()

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	// Script panics (including stack overflows inside goja) become action
	// failures, never executor crashes.
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("script panicked: %v", recovered)
			result = nil
		}
	}()

	value, err := vm.RunProgram(a.program)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return nil, errScriptTimeout
		}

		return nil, fmt.Errorf("script failed: %w", err)
	}

	return exportResult(value), nil
}

func exportResult(value goja.Value) map[string]any {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return map[string]any{}
	}

	exported := value.Export()
	if m, ok := exported.(map[string]any); ok {
		return m
	}

	return map[string]any{"value": exported}
}
