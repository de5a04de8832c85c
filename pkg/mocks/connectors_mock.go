package mocks

import (
	"context"
	"sync"
)

// ConnectorCall records one invocation of a fake connector.
type ConnectorCall struct {
	Method string
	Args   map[string]any
}

// FakeConnector satisfies every connector interface. It records calls and
// returns the configured response, or Err when set.
type FakeConnector struct {
	mu       sync.Mutex
	Calls    []ConnectorCall
	Response map[string]any
	Err      error
}

func (f *FakeConnector) record(method string, args map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, ConnectorCall{Method: method, Args: args})

	if f.Err != nil {
		return nil, f.Err
	}

	if f.Response != nil {
		return f.Response, nil
	}

	return map[string]any{"ok": true}, nil
}

func (f *FakeConnector) SendNotification(_ context.Context, config map[string]any) (map[string]any, error) {
	return f.record("SendNotification", config)
}

func (f *FakeConnector) CreateRecord(_ context.Context, objectType string, properties map[string]any) (map[string]any, error) {
	return f.record("CreateRecord", map[string]any{"object_type": objectType, "properties": properties})
}

func (f *FakeConnector) UpdateRecord(_ context.Context, objectType, id string, properties map[string]any) (map[string]any, error) {
	return f.record("UpdateRecord", map[string]any{"object_type": objectType, "id": id, "properties": properties})
}

func (f *FakeConnector) UpdateOrder(_ context.Context, orderID string, properties map[string]any) (map[string]any, error) {
	return f.record("UpdateOrder", map[string]any{"order_id": orderID, "properties": properties})
}

func (f *FakeConnector) Escalate(_ context.Context, config map[string]any) (map[string]any, error) {
	return f.record("Escalate", config)
}

func (f *FakeConnector) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.Calls)
}
