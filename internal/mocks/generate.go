// Package mocks provides mock implementations for testing the fleet UI gateway.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the auth ports. The mocks are generated using go:generate directives and
// provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockSessionStore(ctrl)
//	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for SessionStore interface from internal/ports.
// This creates MockSessionStore with methods Save, Get, Delete.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/fleetyard/fleet-ui-api/internal/ports SessionStore

// Generate mock for OperatorRecorder interface from internal/ports.
// This creates MockOperatorRecorder with method RecordLogin.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=operator_recorder_mock.go github.com/fleetyard/fleet-ui-api/internal/ports OperatorRecorder
