package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/brayohmurithidev/donatehub-landing/refstore"
)

// Defaults for the polling schedule and banner lifetimes.
const (
	DefaultPollInterval    = 5 * time.Second
	DefaultTrackingTimeout = 600 * time.Second
	DefaultSuccessTTL      = 10 * time.Second
	DefaultErrorTTL        = 5 * time.Second
	DefaultCardTTL         = 5 * time.Second
)

type settings struct {
	clock      clockwork.Clock
	logger     *slog.Logger
	interval   time.Duration
	timeout    time.Duration
	table      StatusTable
	successTTL time.Duration
	errorTTL   time.Duration
	cardTTL    time.Duration
}

// maxPolls is how many scheduled polls fit in the tracking timeout.
func (s *settings) maxPolls() int {
	n := int(s.timeout / s.interval)
	if s.timeout%s.interval != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

type Option func(*settings)

func WithClock(c clockwork.Clock) Option {
	return func(s *settings) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func WithPollInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTrackingTimeout bounds how long a donation is polled before the form
// comes back.
func WithTrackingTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithStatusTable(t StatusTable) Option {
	return func(s *settings) { s.table = t }
}

// WithNoticeTTLs sets how long success, error and card banners stay up.
func WithNoticeTTLs(success, failure, card time.Duration) Option {
	return func(s *settings) {
		s.successTTL = success
		s.errorTTL = failure
		s.cardTTL = card
	}
}

// Session is one page load: it owns the mounted trackers and remembers
// which campaigns had their history cleared. Closing it is the page unload.
type Session struct {
	api   API
	store refstore.Store
	cfg   *settings

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	trackers map[string]*Tracker

	clearedMu sync.Mutex
	cleared   map[string]bool
}

func NewSession(api API, store refstore.Store, opts ...Option) *Session {
	cfg := &settings{
		clock:      clockwork.NewRealClock(),
		logger:     slog.Default(),
		interval:   DefaultPollInterval,
		timeout:    DefaultTrackingTimeout,
		table:      DefaultStatusTable(),
		successTTL: DefaultSuccessTTL,
		errorTTL:   DefaultErrorTTL,
		cardTTL:    DefaultCardTTL,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		api:      api,
		store:    store,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		trackers: make(map[string]*Tracker),
		cleared:  make(map[string]bool),
	}
}

// Mount returns the tracker for campaignID, creating it on first use. A new
// tracker resumes any stored donation reference and checks its status
// once before the first scheduled poll.
func (s *Session) Mount(ctx context.Context, campaignID string) (*Tracker, error) {
	s.mu.Lock()
	if t, ok := s.trackers[campaignID]; ok {
		s.mu.Unlock()
		return t, nil
	}
	t := &Tracker{
		campaignID: campaignID,
		session:    s,
		api:        s.api,
		store:      s.store,
		cfg:        s.cfg,
		state:      StateForm,
	}
	s.trackers[campaignID] = t
	s.mu.Unlock()

	if err := t.mount(ctx); err != nil {
		return t, err
	}
	return t, nil
}

// Lookup returns the mounted tracker for campaignID.
func (s *Session) Lookup(campaignID string) (*Tracker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trackers[campaignID]
	return t, ok
}

// FindDonation returns the mounted tracker following donationID.
func (s *Session) FindDonation(donationID string) (*Tracker, bool) {
	s.mu.Lock()
	trackers := make([]*Tracker, 0, len(s.trackers))
	for _, t := range s.trackers {
		trackers = append(trackers, t)
	}
	s.mu.Unlock()

	for _, t := range trackers {
		if t.Snapshot().DonationID == donationID {
			return t, true
		}
	}
	return nil, false
}

// Unmount unloads the tracker for campaignID and forgets it. The cleared
// history flag outlives the tracker.
func (s *Session) Unmount(ctx context.Context, campaignID string) error {
	s.mu.Lock()
	t, ok := s.trackers[campaignID]
	delete(s.trackers, campaignID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return t.Unload(ctx)
}

// Close unloads every tracker and stops all polling.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	trackers := s.trackers
	s.trackers = make(map[string]*Tracker)
	s.mu.Unlock()

	var errs []error
	for _, t := range trackers {
		if err := t.Unload(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.cancel()
	return errors.Join(errs...)
}

func (s *Session) historyCleared(campaignID string) bool {
	s.clearedMu.Lock()
	defer s.clearedMu.Unlock()
	return s.cleared[campaignID]
}

func (s *Session) markCleared(campaignID string) {
	s.clearedMu.Lock()
	defer s.clearedMu.Unlock()
	s.cleared[campaignID] = true
}
