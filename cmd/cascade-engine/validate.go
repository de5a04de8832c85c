package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/cascadehq/cascade/pkg/cmd"
	"github.com/cascadehq/cascade/pkg/models"
)

var ErrInvalidDefinitions = errors.New("invalid workflow definitions found")

// NewValidateCommand validates every stored workflow definition against the
// definition schema and the model constraints, without starting the engine.
func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate stored workflow definitions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := slog.With(
				"module", "cascade-engine",
				"action", "validate",
			)

			st, err := cmd.NewStore(command.String("database-url"), logger)
			if err != nil {
				return fmt.Errorf("failed to create store: %w", err)
			}

			defer func() {
				if err := st.Close(ctx); err != nil {
					return
				}
			}()

			definitions, err := st.ListDefinitions(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch workflow definitions: %w", err)
			}

			logger.Info("Validating workflow definitions", "definitions", len(definitions))

			_, _ = fmt.Fprintln(os.Stdout, "Workflow Definition Validation Results:")
			_, _ = fmt.Fprintln(os.Stdout, "========================================")

			valid := 0
			invalid := 0

			for _, def := range definitions {
				_, _ = fmt.Fprintf(os.Stdout, "\nWorkflow: %s (%s)\n", def.Name, def.ID)

				if err := validateDefinition(def); err != nil {
					_, _ = fmt.Fprintf(os.Stdout, "  INVALID: %v\n", err)
					invalid++

					continue
				}

				_, _ = fmt.Fprintf(os.Stdout, "  VALID\n")
				valid++
			}

			_, _ = fmt.Fprintf(os.Stdout, "\nSummary: %d valid, %d invalid\n", valid, invalid)

			if invalid > 0 {
				return fmt.Errorf("%w: %d", ErrInvalidDefinitions, invalid)
			}

			return nil
		},
	}
}

func validateDefinition(def *models.WorkflowDefinition) error {
	document, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	if err := models.ValidateDefinitionDocument(document); err != nil {
		return err
	}

	return def.Validate()
}
