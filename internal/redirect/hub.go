package redirect

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/ports"
)

// ErrLaunchURLConsumed is returned when the launch URL is requested twice in one app start.
var ErrLaunchURLConsumed = errors.New("launch url already consumed")

// Handler receives deep links delivered while the process is running.
type Handler = ports.RedirectHandler

var _ ports.RedirectSource = (*Hub)(nil)

// Hub surfaces every deep link the application receives: the URL the process was
// launched with, and URLs published while it is running. It retains nothing across events.
type Hub struct {
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64

	launchOnce  sync.Once
	launchReady chan struct{}
	launchURL   string
	launchTaken bool
}

// NewHub creates an empty hub. The host must report the launch URL through
// SetLaunchURL or SetNoLaunchURL.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:      logger,
		now:         time.Now,
		subs:        make(map[uint64]*Subscription),
		launchReady: make(chan struct{}),
	}
}

// SetLaunchURL records the URL that started the process. An empty URL means the
// process was started normally. Only the first call has an effect.
func (h *Hub) SetLaunchURL(rawURL string) {
	h.launchOnce.Do(func() {
		h.launchURL = rawURL
		close(h.launchReady)
	})
}

// SetNoLaunchURL records that the process was started without a deep link.
func (h *Hub) SetNoLaunchURL() {
	h.SetLaunchURL("")
}

// LaunchURL returns the URL that started the process, if any. It waits until the host
// has reported it or ctx is done; a ctx expiry is reported as a timeout error.
// It may be called once per app start.
func (h *Hub) LaunchURL(ctx context.Context) (string, bool, error) {
	h.mu.Lock()
	if h.launchTaken {
		h.mu.Unlock()
		return "", false, ErrLaunchURLConsumed
	}
	h.launchTaken = true
	h.mu.Unlock()

	select {
	case <-h.launchReady:
	case <-ctx.Done():
		return "", false, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeTimeout, "wait for launch url")
	}

	if h.launchURL == "" {
		return "", false, nil
	}
	return h.launchURL, true, nil
}

// Subscribe registers handler for every subsequently published URL.
// The returned Subscription must be removed when the owner is torn down.
func (h *Hub) Subscribe(handler Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{hub: h, id: h.nextID, handler: handler, active: true}
	h.subs[sub.id] = sub
	return sub
}

// Listen subscribes handler for the lifetime of ctx. The subscription is released
// when ctx is done or the returned release func is called, whichever happens first.
func (h *Hub) Listen(ctx context.Context, handler Handler) (release func()) {
	sub := h.Subscribe(handler)
	stop := context.AfterFunc(ctx, sub.Remove)
	return func() {
		stop()
		sub.Remove()
	}
}

// Publish delivers rawURL to every live subscriber in registration order and
// returns the event that was delivered.
func (h *Hub) Publish(ctx context.Context, rawURL string) domainsession.RedirectEvent {
	ev := domainsession.RedirectEvent{
		ID:         uuid.New(),
		URL:        rawURL,
		Source:     domainsession.SourceLive,
		ReceivedAt: h.now(),
	}

	for _, sub := range h.snapshot() {
		sub.deliver(ctx, ev)
	}
	return ev
}

// Subscribers returns the number of registered handlers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) snapshot() []*Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]*Subscription, 0, len(h.subs))
	for id := uint64(1); id <= h.nextID; id++ {
		if sub, ok := h.subs[id]; ok {
			out = append(out, sub)
		}
	}
	return out
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// Subscription is a registered handler. After Remove returns the handler is
// never invoked again. Remove must not be called from inside the handler itself.
type Subscription struct {
	hub     *Hub
	id      uint64
	handler Handler

	mu     sync.Mutex
	active bool
}

// Remove unregisters the handler, waiting for an in-flight delivery to finish.
// It is safe to call more than once.
func (s *Subscription) Remove() {
	s.hub.remove(s.id)
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

func (s *Subscription) deliver(ctx context.Context, ev domainsession.RedirectEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.hub.logger.ErrorContext(ctx, "redirect handler panicked",
				"event_id", ev.ID.String(),
				"panic", r)
		}
	}()
	s.handler(ctx, ev)
}
