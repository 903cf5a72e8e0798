package queue

import (
	"log/slog"

	"metbot/app/client/telegram"

	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

// Service buffers inbound messages between the transport poller and the
// serialized controller loop.
type Service struct {
	queue chan telegram.Inbound
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan telegram.Inbound, bufferSize),
	}, nil
}

func (s *Service) Add(msg telegram.Inbound) {
	defer func() {
		if r := recover(); r != nil {

		}
	}()

	select {
	case s.queue <- msg:
	default:
		slog.Warn("message queue is full", "message_id", msg.ID)
	}
}

func (s *Service) Channel() <-chan telegram.Inbound {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
