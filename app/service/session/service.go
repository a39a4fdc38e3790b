package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"coursechat/app/client/backend"
	"coursechat/app/service/directory"
	"coursechat/app/service/exchange"
	"coursechat/app/service/identity"
	"coursechat/app/service/notify"

	"github.com/samber/do"
)

// Service is the single owner of the active-conversation state and of the
// monotonic view tag. The directory and the exchange engine never talk to
// each other directly; every cross-component consequence runs through here.
//
// The view tag increments on every StartNew/Select. Async results carry the
// tag they were issued under and are ignored when it no longer matches, which
// is the only cancellation semantics the client needs.
type Service struct {
	identitySvc  *identity.Service
	directorySvc *directory.Service
	exchangeSvc  *exchange.Service
	notifySvc    *notify.Service

	mu     sync.Mutex
	view   uint64
	active ActiveState
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		identitySvc:  do.MustInvoke[*identity.Service](di),
		directorySvc: do.MustInvoke[*directory.Service](di),
		exchangeSvc:  do.MustInvoke[*exchange.Service](di),
		notifySvc:    do.MustInvoke[*notify.Service](di),
	}, nil
}

// Bootstrap probes the identity and loads the initial conversation list.
// Both are best-effort: an unreachable backend leaves the client usable with
// the last-known list and no identity.
func (s *Service) Bootstrap(ctx context.Context) {
	if err := s.identitySvc.Probe(ctx); err != nil {
		slog.Warn("Bootstrap identity probe failed", "error", err)
	}

	if err := s.directorySvc.Refresh(ctx); err != nil {
		slog.Warn("Bootstrap list refresh failed", "error", err)
	}
}

// Active returns the current active-conversation state.
func (s *Service) Active() ActiveState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// StartNew switches to an empty view with no conversation. The directory
// list is left alone.
func (s *Service) StartNew() {
	s.mu.Lock()
	s.view++
	view := s.view
	s.active = ActiveState{Kind: ActiveNone}
	s.mu.Unlock()

	s.exchangeSvc.ResetView(view)
}

// Select activates an existing conversation and loads its history.
func (s *Service) Select(ctx context.Context, id backend.ConversationID) error {
	s.mu.Lock()
	s.view++
	view := s.view
	s.active = ActiveState{Kind: ActiveExisting, ID: id}
	s.mu.Unlock()

	s.exchangeSvc.ResetView(view)

	if err := s.exchangeSvc.LoadHistory(ctx, view, id); err != nil {
		return fmt.Errorf("select conversation: %w", err)
	}

	return nil
}

// Send runs one exchange on the current view. A send with no conversation
// marks the view PendingCreation until the server-assigned id arrives and is
// adopted; the adoption is dropped if the user has switched views meanwhile.
func (s *Service) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	view := s.view
	var active *backend.ConversationID
	markedPending := false

	switch s.active.Kind {
	case ActiveExisting:
		id := s.active.ID
		active = &id
	case ActiveNone:
		s.active = ActiveState{Kind: ActivePendingCreation}
		markedPending = true
	case ActivePendingCreation:
		// The first send of this view is still in flight; the engine
		// rejects the second one as busy.
	}
	s.mu.Unlock()

	response, err := s.exchangeSvc.Send(ctx, view, text, active)
	if err != nil {
		if markedPending {
			s.revertPending(view)
		}
		return err
	}

	if active == nil && response != nil {
		s.adopt(ctx, view, response.ConversationID)
	}

	return nil
}

func (s *Service) revertPending(view uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if view == s.view && s.active.Kind == ActivePendingCreation {
		s.active = ActiveState{Kind: ActiveNone}
	}
}

func (s *Service) adopt(ctx context.Context, view uint64, id backend.ConversationID) {
	s.mu.Lock()
	if view != s.view || s.active.Kind != ActivePendingCreation {
		s.mu.Unlock()
		slog.Debug("Ignoring adoption for a superseded view", "id", id)
		return
	}
	s.active = ActiveState{Kind: ActiveExisting, ID: id}
	s.mu.Unlock()

	slog.Info("Adopted new conversation", "id", id)

	// The new conversation must show up in the list without a manual reload.
	if err := s.directorySvc.Refresh(ctx); err != nil {
		slog.Warn("List refresh after adoption failed", "error", err)
	}
}

// Delete removes one conversation. Deleting the active one forces StartNew
// semantics; deleting any other leaves the message buffer alone. The check
// runs after the backend confirms, so a response arriving after the user has
// already switched views cannot resurrect the deleted conversation.
func (s *Service) Delete(ctx context.Context, id backend.ConversationID) error {
	if err := s.directorySvc.Delete(ctx, id); err != nil {
		s.notifySvc.Publish(notify.LevelWarn, "Failed to delete conversation")
		return err
	}

	s.mu.Lock()
	wasActive := s.active.Kind == ActiveExisting && s.active.ID == id
	s.mu.Unlock()

	if wasActive {
		s.StartNew()
	}

	if err := s.directorySvc.Refresh(ctx); err != nil {
		slog.Warn("List refresh after delete failed", "error", err)
	}

	return nil
}

// ClearAll removes every conversation and unconditionally clears the active
// one on success. Callers are expected to have gone through the confirmation
// flow first.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.directorySvc.ClearAll(ctx); err != nil {
		s.notifySvc.Publish(notify.LevelWarn, "Failed to clear conversations")
		return err
	}

	s.StartNew()
	s.notifySvc.Publish(notify.LevelInfo, "All conversations cleared")

	return nil
}
