// Package mocks provides generated test doubles for the client's ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. The mocks are generated using go:generate directives
// and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mirror := mocks.NewMockMirror(ctrl)
//	mirror.EXPECT().Read(gomock.Any(), "csrf").Return("tok-1", nil)
package mocks

// Generate mock for the Mirror interface from internal/ports.
// This creates MockMirror with methods for all Mirror interface methods:
// Read, Write, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=mirror_mock.go github.com/k5602/Vulnera-Frontend-sub001/internal/ports Mirror

// Generate mock for the SSOProvider interface from internal/ports.
// This creates MockSSOProvider with methods for all SSOProvider interface methods:
// Begin, Exchange
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=sso_provider_mock.go github.com/k5602/Vulnera-Frontend-sub001/internal/ports SSOProvider

// Generate mock for the CallbackListener interface from internal/ports.
// This creates MockCallbackListener with methods for all CallbackListener interface methods:
// RedirectURL, Wait, Close
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=callback_listener_mock.go github.com/k5602/Vulnera-Frontend-sub001/internal/ports CallbackListener
