// Package mocks provides test doubles shared across package tests.
package mocks

import (
	"context"
	"sync"

	"github.com/cascadehq/cascade/pkg/eventbus"
)

// CapturingPublisher records every published event, for asserting on the
// lifecycle events a component emits.
type CapturingPublisher struct {
	mu     sync.Mutex
	Events []eventbus.Event
}

func (p *CapturingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Events = append(p.Events, event)

	return nil
}

func (p *CapturingPublisher) Published() []eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]eventbus.Event(nil), p.Events...)
}
