package directory

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"coursechat/app/client/backend"
	"coursechat/app/config"
	"coursechat/app/service/identity"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// Service owns the conversation list and nothing else. Cross-component
// consequences of deletes (clearing the active conversation, history reloads)
// are the session coordinator's job; this service never reaches across.
type Service struct {
	backendClient *backend.Client
	identitySvc   *identity.Service
	cachePath     string

	mu            sync.Mutex
	refreshSeq    uint64
	conversations []backend.ConversationSummary
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{
		backendClient: do.MustInvoke[*backend.Client](di),
		identitySvc:   do.MustInvoke[*identity.Service](di),
		cachePath:     filepath.Join(cfg.DataDir, cacheFileName),
	}

	if cached, err := loadCache(s.cachePath); err != nil {
		slog.Warn("Failed to load cached conversation list", "error", err)
	} else {
		s.conversations = cached
	}

	return s, nil
}

// Refresh fetches the conversation list. With a confirmed anonymous identity
// the list is forced empty and no request is made; an unreachable backend
// keeps the last-known list instead. Concurrent refreshes apply
// last-issued-wins: a response belonging to a superseded refresh is discarded.
func (s *Service) Refresh(ctx context.Context) error {
	tag := s.beginRefresh()

	if s.identitySvc.User() == nil {
		if probeErr := s.identitySvc.LastError(); probeErr != nil {
			// The probe never reached the backend, so "no user" proves
			// nothing. Degrade to the last-known list.
			slog.Warn("Skipping list refresh, identity unknown", "error", probeErr)
			return nil
		}

		s.finishRefresh(tag, nil)
		return nil
	}

	list, err := s.backendClient.ListConversations(ctx)
	if err != nil {
		// Reads degrade to the last-known list.
		slog.Warn("Conversation list refresh failed", "error", err)
		return fmt.Errorf("refresh conversations: %w", err)
	}

	if s.finishRefresh(tag, list) {
		slog.Debug("Conversation list refreshed", "count", len(list))
	}

	return nil
}

func (s *Service) beginRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshSeq++
	return s.refreshSeq
}

func (s *Service) finishRefresh(tag uint64, list []backend.ConversationSummary) bool {
	s.mu.Lock()

	if tag != s.refreshSeq {
		s.mu.Unlock()
		return false
	}

	s.conversations = list
	s.mu.Unlock()

	s.persist(list)
	return true
}

// Delete removes one conversation on the backend and drops it from the local
// list on success. Failures leave the list unchanged; no retry.
func (s *Service) Delete(ctx context.Context, id backend.ConversationID) error {
	if err := s.backendClient.DeleteConversation(ctx, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	s.mu.Lock()
	s.conversations = pie.Filter(s.conversations, func(c backend.ConversationSummary) bool {
		return c.ID != id
	})
	list := s.conversations
	s.mu.Unlock()

	s.persist(list)

	slog.Info("Deleted conversation", "id", id)
	return nil
}

// ClearAll removes every conversation on the backend. Only the confirmation
// flow is supposed to call this (through the coordinator).
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.backendClient.DeleteAllConversations(ctx); err != nil {
		return fmt.Errorf("clear conversations: %w", err)
	}

	s.mu.Lock()
	s.conversations = nil
	s.mu.Unlock()

	s.persist(nil)

	slog.Info("Cleared all conversations")
	return nil
}

// Conversations returns a snapshot of the current list in backend order.
func (s *Service) Conversations() []backend.ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]backend.ConversationSummary, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Contains reports whether the list currently shows the given id.
func (s *Service) Contains(id backend.ConversationID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return pie.FindFirstUsing(s.conversations, func(c backend.ConversationSummary) bool {
		return c.ID == id
	}) >= 0
}

func (s *Service) persist(list []backend.ConversationSummary) {
	if err := saveCache(s.cachePath, list); err != nil {
		slog.Warn("Failed to persist conversation list", "error", err)
	}
}
