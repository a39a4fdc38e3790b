package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"coursechat/app/client/backend"
	"coursechat/app/service/identity"

	"github.com/samber/do"
)

// Service keeps the message buffer for the active conversation view and
// serializes exchanges against the ask endpoint. Every operation is tagged
// with the view it was issued for; results arriving after the view has moved
// on are dropped, not merged (last-view-wins).
type Service struct {
	backendClient *backend.Client
	identitySvc   *identity.Service

	mu         sync.Mutex
	view       uint64
	state      State
	messages   []backend.Message
	historySeq uint64
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		backendClient: do.MustInvoke[*backend.Client](di),
		identitySvc:   do.MustInvoke[*identity.Service](di),
	}, nil
}

// ResetView makes view the current one with an empty buffer. Any in-flight
// exchange or history load for a previous view keeps running but its result
// will not be applied.
func (s *Service) ResetView(view uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = view
	s.state = StateIdle
	s.messages = nil
	s.historySeq++
}

// LoadHistory replaces the buffer with the server-side message list of id.
// The load is sequence-tagged: only the last-issued load for the current view
// applies.
func (s *Service) LoadHistory(ctx context.Context, view uint64, id backend.ConversationID) error {
	s.mu.Lock()
	if view != s.view {
		s.mu.Unlock()
		return ErrStaleView
	}
	s.historySeq++
	tag := s.historySeq
	s.mu.Unlock()

	messages, err := s.backendClient.GetConversation(ctx, id)
	if err != nil {
		// Reads degrade: the buffer stays as it is, no user-facing dialog.
		slog.Warn("History load failed", "id", id, "error", err)
		return fmt.Errorf("load history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if view != s.view || tag != s.historySeq {
		slog.Debug("Dropping stale history response", "id", id)
		return nil
	}

	s.messages = messages
	return nil
}

// Send runs one exchange: optimistic user append, the ask request, then
// exactly one bot append (the answer, or the fixed failure notice). The
// user's message survives failure; nothing is retried. active is nil for the
// first message of a brand-new conversation, in which case the response
// carries the server-assigned id for the coordinator to adopt.
func (s *Service) Send(ctx context.Context, view uint64, text string, active *backend.ConversationID) (*backend.AskResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	if s.identitySvc.User() == nil {
		return nil, ErrNotAuthenticated
	}

	s.mu.Lock()
	if view != s.view {
		s.mu.Unlock()
		return nil, ErrStaleView
	}
	if s.state == StateSending {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.state = StateSending
	s.messages = append(s.messages, backend.Message{Role: backend.RoleUser, Content: text})
	s.mu.Unlock()

	response, err := s.backendClient.Ask(ctx, text, active)

	s.mu.Lock()
	if view != s.view {
		// The user switched views mid-flight. The buffer belongs to the new
		// view now; this result is only interesting for id adoption, which
		// the coordinator will reject by tag anyway.
		s.mu.Unlock()
		return response, err
	}

	if err != nil {
		s.messages = append(s.messages, backend.Message{Role: backend.RoleBot, Content: FailureNotice})
		s.state = StateIdle
		s.mu.Unlock()
		return nil, fmt.Errorf("ask: %w", err)
	}

	s.messages = append(s.messages, backend.Message{
		Role:    backend.RoleBot,
		Content: response.Answer,
		Sources: response.Sources,
	})
	s.state = StateIdle
	s.mu.Unlock()

	return response, nil
}

// Messages returns a snapshot of the buffer in append order.
func (s *Service) Messages() []backend.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]backend.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}
