package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"coursechat/app/client/backend"

	"github.com/samber/do"
)

// Service resolves the caller's identity exactly once per mount. Absence of
// identity is a normal state; a transport failure is kept around separately so
// the caller can tell "not logged in" from "backend unreachable".
type Service struct {
	backendClient *backend.Client

	mu       sync.RWMutex
	probed   bool
	user     *backend.UserIdentity
	probeErr error
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		backendClient: do.MustInvoke[*backend.Client](di),
	}, nil
}

// Probe issues the identity read. Repeated calls are no-ops until Reset; there
// are no automatic retries.
func (s *Service) Probe(ctx context.Context) error {
	s.mu.Lock()
	if s.probed {
		s.mu.Unlock()
		return nil
	}
	s.probed = true
	s.mu.Unlock()

	user, err := s.backendClient.Me(ctx)

	s.mu.Lock()
	s.user = user
	s.probeErr = err
	s.mu.Unlock()

	if err != nil {
		slog.Warn("Identity probe failed", "error", err)
		return fmt.Errorf("identity probe: %w", err)
	}

	if user == nil {
		slog.Info("No active session, chatting requires login")
	} else {
		slog.Info("Identity resolved", "name", user.Name)
	}

	return nil
}

// Reset clears the cached result so the next Probe hits the backend again,
// e.g. after returning from a login redirect.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.probed = false
	s.user = nil
	s.probeErr = nil
}

// User returns nil when unauthenticated or when the probe has not run yet.
func (s *Service) User() *backend.UserIdentity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.user
}

// LastError reports the transport failure of the most recent probe, if any.
func (s *Service) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.probeErr
}
