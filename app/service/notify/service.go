package notify

import (
	"log/slog"

	"github.com/samber/do"
)

const bufferSize = 16

type Level int

const (
	LevelInfo Level = iota
	LevelWarn
)

type Notice struct {
	Level Level
	Text  string
}

var _ do.Shutdownable = (*Service)(nil)

// Service is a bounded queue of transient user-facing notices. Publishing
// never blocks; notices are dropped with a warning when the consumer falls
// behind.
type Service struct {
	queue chan Notice
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Notice, bufferSize),
	}, nil
}

func (s *Service) Publish(level Level, text string) {
	defer func() {
		if r := recover(); r != nil {
			// publishing after shutdown is harmless
		}
	}()

	select {
	case s.queue <- Notice{level, text}:
	default:
		slog.Warn("notice queue is full", "text", text)
	}
}

func (s *Service) Channel() <-chan Notice {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
