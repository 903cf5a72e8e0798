package session

import (
	"sync"
	"time"

	"metbot/app/config"
	"metbot/app/service/contact"

	"github.com/samber/do"
)

// Pending is the per-sender interaction awaiting a scheduling reply. It is
// immutable once installed: Begin replaces it wholesale, never merges.
type Pending struct {
	Sender    int64
	Contact   contact.Draft
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Service struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	pending map[int64]Pending
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewWithTTL(cfg.SessionTTL()), nil
}

func NewWithTTL(ttl time.Duration) *Service {
	return &Service{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[int64]Pending),
	}
}

// Begin installs a new pending interaction for the sender, unconditionally
// replacing any existing one.
func (s *Service) Begin(sender int64, draft contact.Draft, message string) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[sender] = Pending{
		Sender:    sender,
		Contact:   draft,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
}

// Peek returns the sender's pending interaction if one exists and has not
// expired. Expired entries are removed as a side effect; an entry past its
// expiry is never observable regardless of sweep timing.
func (s *Service) Peek(sender int64) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[sender]
	if !ok {
		return Pending{}, false
	}

	if !s.now().Before(p.ExpiresAt) {
		delete(s.pending, sender)
		return Pending{}, false
	}

	return p, true
}

// End removes the sender's pending interaction. Idempotent.
func (s *Service) End(sender int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, sender)
}
