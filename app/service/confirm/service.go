package confirm

import (
	"context"
	"sync"

	"coursechat/app/service/session"

	"github.com/samber/do"
)

// Phase of the clear-all confirmation gate.
type Phase int

const (
	// PhaseHidden: no confirmation pending.
	PhaseHidden Phase = iota
	// PhaseAwaiting: the modal is up, waiting for confirm or cancel.
	PhaseAwaiting
	// PhaseBusy: confirmed, the clear-all request is outstanding.
	PhaseBusy
)

// Service gates the destructive clear-all behind an explicit confirmation.
// The destructive call fires at most once per confirmation, and every path,
// including failure, ends with the modal dismissed.
type Service struct {
	sessionSvc *session.Service

	mu    sync.Mutex
	phase Phase
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		sessionSvc: do.MustInvoke[*session.Service](di),
	}, nil
}

func (s *Service) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

// Request opens the confirmation. A no-op while one is already in progress.
func (s *Service) Request() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseHidden {
		s.phase = PhaseAwaiting
	}
}

// Cancel dismisses the modal without issuing any request. Cancelling while
// the request is already outstanding is ignored; completion dismisses.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseAwaiting {
		s.phase = PhaseHidden
	}
}

// Confirm fires the clear-all exactly once. Repeated confirms while the
// request is outstanding are ignored.
func (s *Service) Confirm(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseAwaiting {
		s.mu.Unlock()
		return nil
	}
	s.phase = PhaseBusy
	s.mu.Unlock()

	err := s.sessionSvc.ClearAll(ctx)

	s.mu.Lock()
	s.phase = PhaseHidden
	s.mu.Unlock()

	return err
}
