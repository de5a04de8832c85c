// Package connectors defines the adapter contracts for the external systems
// actions call into. Implementations live with each integration; the engine
// only depends on these interfaces.
package connectors

import (
	"context"
	"fmt"
	"sync"
)

// NotificationConnector delivers a message through a messaging system.
type NotificationConnector interface {
	SendNotification(ctx context.Context, config map[string]any) (map[string]any, error)
}

// CRMConnector reads and writes records in a CRM.
type CRMConnector interface {
	CreateRecord(ctx context.Context, objectType string, properties map[string]any) (map[string]any, error)
	UpdateRecord(ctx context.Context, objectType, id string, properties map[string]any) (map[string]any, error)
}

// CommerceConnector updates orders in an e-commerce system.
type CommerceConnector interface {
	UpdateOrder(ctx context.Context, orderID string, properties map[string]any) (map[string]any, error)
}

// EscalationConnector creates an escalation record for a human operator.
type EscalationConnector interface {
	Escalate(ctx context.Context, config map[string]any) (map[string]any, error)
}

// Registry holds the configured connector per capability. Actions resolve
// their connector at execution time so integrations can be swapped without
// touching the engine.
type Registry struct {
	mu           sync.RWMutex
	notification NotificationConnector
	crm          CRMConnector
	commerce     CommerceConnector
	escalation   EscalationConnector
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) RegisterNotification(c NotificationConnector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notification = c
}

func (r *Registry) RegisterCRM(c CRMConnector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.crm = c
}

func (r *Registry) RegisterCommerce(c CommerceConnector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commerce = c
}

func (r *Registry) RegisterEscalation(c EscalationConnector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.escalation = c
}

func (r *Registry) Notification() (NotificationConnector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.notification == nil {
		return nil, fmt.Errorf("no notification connector registered")
	}

	return r.notification, nil
}

func (r *Registry) CRM() (CRMConnector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.crm == nil {
		return nil, fmt.Errorf("no crm connector registered")
	}

	return r.crm, nil
}

func (r *Registry) Commerce() (CommerceConnector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.commerce == nil {
		return nil, fmt.Errorf("no commerce connector registered")
	}

	return r.commerce, nil
}

func (r *Registry) Escalation() (EscalationConnector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.escalation == nil {
		return nil, fmt.Errorf("no escalation connector registered")
	}

	return r.escalation, nil
}
