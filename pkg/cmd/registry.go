// Package cmd provides common initialization for the command-line binaries.
package cmd

import (
	"log/slog"

	"github.com/cascadehq/cascade/pkg/actions/commerce"
	"github.com/cascadehq/cascade/pkg/actions/delay"
	"github.com/cascadehq/cascade/pkg/actions/escalation"
	"github.com/cascadehq/cascade/pkg/actions/notification"
	"github.com/cascadehq/cascade/pkg/actions/record"
	"github.com/cascadehq/cascade/pkg/actions/script"
	"github.com/cascadehq/cascade/pkg/actions/webhook"
	"github.com/cascadehq/cascade/pkg/connectors"
	"github.com/cascadehq/cascade/pkg/registry"
)

// NewRegistry builds an action registry with every built-in action wired to
// the given connector registry.
func NewRegistry(logger *slog.Logger, conns *connectors.Registry) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(delay.NewFactory())
	reg.RegisterAction(webhook.NewFactory())
	reg.RegisterAction(script.NewFactory())
	reg.RegisterAction(notification.NewFactory(conns))
	reg.RegisterAction(record.NewCreateFactory(conns))
	reg.RegisterAction(record.NewUpdateFactory(conns))
	reg.RegisterAction(commerce.NewFactory(conns))
	reg.RegisterAction(escalation.NewFactory(conns))

	return reg
}
