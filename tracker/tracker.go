// Package tracker follows one in-flight donation per campaign: it submits
// the donation, remembers the reference, polls the payment status until it
// settles and offers the manual recovery actions.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/brayohmurithidev/donatehub-landing/apiclient"
	"github.com/brayohmurithidev/donatehub-landing/models"
	"github.com/brayohmurithidev/donatehub-landing/refstore"
)

// State is where the donation flow for a campaign currently is.
type State string

const (
	StateForm       State = "FORM"
	StateSubmitting State = "SUBMITTING"
	StateTracking   State = "TRACKING"
	StateSuccess    State = "TERMINAL_SUCCESS"
	StateFailure    State = "TERMINAL_FAILURE"
)

func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

// API is the part of the backend client the tracker uses.
type API interface {
	CreateDonation(ctx context.Context, req models.DonationRequest) (*models.CreateDonationResponse, error)
	GetPaymentStatus(ctx context.Context, donationID string) (*models.PaymentStatus, error)
	ListCampaignDonations(ctx context.Context, campaignID string) ([]models.DonationRecord, error)
}

var (
	// ErrBusy is returned when a donation is already being submitted or
	// tracked for the campaign.
	ErrBusy = errors.New("a donation is already in progress for this campaign")
	// ErrNotTracking is returned by status checks when no donation is
	// being followed.
	ErrNotTracking = errors.New("no donation is being tracked for this campaign")
	// ErrDonationNotFound means the fallback lookup did not find the donation.
	ErrDonationNotFound = errors.New("donation not found among campaign donations")
)

// SubmissionError is a failed create-donation call, carrying the text to
// show the donor.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// SubmitResult describes what happened after the donation was created.
type SubmitResult struct {
	DonationID          string `json:"donation_id,omitempty"`
	PaymentStatus       string `json:"payment_status"`
	Message             string `json:"message,omitempty"`
	RequiresCardPayment bool   `json:"requires_card_payment"`
	Tracking            bool   `json:"tracking"`
}

// Snapshot is a consistent view of a tracker.
type Snapshot struct {
	CampaignID      string  `json:"campaign_id"`
	State           State   `json:"state"`
	DonationID      string  `json:"donation_id,omitempty"`
	Status          string  `json:"status,omitempty"`
	TransactionCode string  `json:"transaction_code,omitempty"`
	Polls           int     `json:"polls"`
	Notice          *Notice `json:"notice,omitempty"`
	HistoryCleared  bool    `json:"history_cleared"`
}

// pollRun is the cancellation token of one poller. Terminal status, the
// tracking timeout, Reset, ClearHistory and Unload all cancel through it.
type pollRun struct {
	donationID string
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	count      int
}

// Tracker owns the donation flow of one campaign. Create it through a
// Session.
type Tracker struct {
	campaignID string
	session    *Session
	api        API
	store      refstore.Store
	cfg        *settings

	mu              sync.Mutex
	state           State
	donationID      string
	status          string
	transactionCode string
	phone           string
	notice          *Notice
	issued          uint64
	applied         uint64
	poll            *pollRun
	unloaded        bool
}

func (t *Tracker) CampaignID() string { return t.campaignID }

func (t *Tracker) log() *slog.Logger {
	return t.cfg.logger.With("campaign_id", t.campaignID)
}

// mount resumes tracking of a stored reference unless the donor cleared
// the history earlier in this session.
func (t *Tracker) mount(ctx context.Context) error {
	if t.session.historyCleared(t.campaignID) {
		return nil
	}
	donationID, ok, err := t.store.Get(ctx, t.campaignID)
	if err != nil {
		return fmt.Errorf("reading stored donation reference: %w", err)
	}
	if !ok || donationID == "" {
		return nil
	}

	t.mu.Lock()
	if t.state != StateForm || t.unloaded {
		t.mu.Unlock()
		return nil
	}
	t.donationID = donationID
	t.status = "PENDING"
	t.state = StateTracking
	seq := t.nextSeqLocked()
	t.mu.Unlock()

	t.log().Info("resuming payment tracking", "donation_id", donationID)

	st, err := t.api.GetPaymentStatus(ctx, donationID)
	if err != nil {
		t.log().Warn("initial payment status check failed", "donation_id", donationID, "err", err)
	} else {
		t.apply(ctx, donationID, seq, st.Status, st.TransactionCode, statusPayload(st))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// the page may have been left while the first check was in flight
	if !t.unloaded && t.state == StateTracking && t.donationID == donationID && t.poll == nil {
		t.startPollingLocked()
	}
	return nil
}

// Submit validates the form, creates the donation and, for an initiated
// mobile-money payment, starts tracking it. Validation failures are
// returned as models.ValidationErrors before any network call.
func (t *Tracker) Submit(ctx context.Context, req models.DonationRequest) (*SubmitResult, error) {
	req.CampaignID = t.campaignID
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.state != StateForm {
		t.mu.Unlock()
		return nil, ErrBusy
	}
	t.state = StateSubmitting
	t.notice = nil
	t.mu.Unlock()

	resp, err := t.api.CreateDonation(apiclient.WithIdempotencyKey(ctx, uuid.NewString()), req)
	if err != nil {
		msg := apiclient.Detail(err)
		if msg == "" {
			msg = genericSubmissionFailure
		}
		t.log().Error("donation failed", "err", err)
		t.fail(msg)
		return nil, &SubmissionError{Message: msg, Err: err}
	}

	result := &SubmitResult{
		DonationID:    resp.ID(),
		PaymentStatus: resp.PaymentStatus,
		Message:       resp.Message,
	}

	switch {
	case req.Method == models.MethodMobileMoney && resp.PaymentStatus == models.PaymentInitiated:
		if result.DonationID == "" {
			t.log().Error("initiated donation has no id", "payment_status", resp.PaymentStatus)
			t.fail(genericSubmissionFailure)
			return nil, &SubmissionError{Message: genericSubmissionFailure, Err: errors.New("response carries no donation id")}
		}
		if err := t.store.Set(ctx, t.campaignID, result.DonationID); err != nil {
			// tracking still works for this session, it just won't resume
			t.log().Error("failed to store donation reference", "donation_id", result.DonationID, "err", err)
		}
		t.mu.Lock()
		t.donationID = result.DonationID
		t.status = "PENDING"
		t.transactionCode = ""
		t.phone = req.DonorPhone
		t.state = StateTracking
		t.applied = t.issued
		t.setNoticeLocked(NoticeSuccess, initiatedText(resp.Message), t.cfg.successTTL)
		if !t.unloaded {
			t.startPollingLocked()
		}
		t.mu.Unlock()
		result.Tracking = true
		t.log().Info("payment initiated, tracking donation", "donation_id", result.DonationID)

	case resp.PaymentStatus == models.PaymentFailed:
		msg := resp.Message
		if msg == "" {
			msg = genericSubmissionFailure
		}
		t.fail(msg)
		return nil, &SubmissionError{Message: msg}

	case resp.RequiresStripePayment || req.Method == models.MethodCard:
		result.RequiresCardPayment = true
		t.mu.Lock()
		t.state = StateForm
		t.setNoticeLocked(NoticeSuccess, cardText, t.cfg.cardTTL)
		t.mu.Unlock()

	default:
		t.mu.Lock()
		t.state = StateForm
		if resp.Message != "" {
			t.setNoticeLocked(NoticeInfo, resp.Message, t.cfg.successTTL)
		}
		t.mu.Unlock()
	}
	return result, nil
}

func (t *Tracker) fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateForm
	t.setNoticeLocked(NoticeError, msg, t.cfg.errorTTL)
}

// CheckNow fetches the status once, outside the polling schedule. When the
// status endpoint fails it looks the donation up among the campaign's
// donations, by id or by the donor's phone number. phone overrides the
// number remembered from the submission.
func (t *Tracker) CheckNow(ctx context.Context, phone string) (Snapshot, error) {
	t.mu.Lock()
	donationID := t.donationID
	if phone == "" {
		phone = t.phone
	}
	seq := t.nextSeqLocked()
	t.mu.Unlock()

	if donationID == "" {
		return t.Snapshot(), ErrNotTracking
	}

	st, err := t.api.GetPaymentStatus(ctx, donationID)
	if err == nil {
		t.apply(ctx, donationID, seq, st.Status, st.TransactionCode, statusPayload(st))
		return t.Snapshot(), nil
	}
	t.log().Info("payment status endpoint failed, trying campaign donations", "donation_id", donationID, "err", err)

	records, listErr := t.api.ListCampaignDonations(ctx, t.campaignID)
	if listErr != nil {
		return t.Snapshot(), fmt.Errorf("checking payment status: %w", errors.Join(err, listErr))
	}
	rec, ok := matchDonation(records, donationID, phone)
	if !ok {
		return t.Snapshot(), ErrDonationNotFound
	}
	target := donationID
	if rec.ID != "" && rec.ID != donationID {
		if !t.adopt(ctx, donationID, rec.ID) {
			return t.Snapshot(), ErrNotTracking
		}
		target = rec.ID
	}
	code := ""
	if rec.PaymentReference != nil {
		code = *rec.PaymentReference
	}
	t.apply(ctx, target, seq, rec.Status, code, map[string]interface{}{
		"status":      rec.Status,
		"source":      "campaign_donations",
		"donation_id": rec.ID,
	})
	return t.Snapshot(), nil
}

// adopt switches tracking from one donation to the one the fallback lookup
// found, in memory and in the store. A running poller follows the new id
// and keeps its poll count. It reports false if tracking moved on meanwhile.
func (t *Tracker) adopt(ctx context.Context, from, to string) bool {
	t.mu.Lock()
	if t.donationID != from {
		t.mu.Unlock()
		return false
	}
	t.donationID = to
	if run := t.poll; run != nil && !t.unloaded {
		count := run.count
		t.startPollingLocked()
		t.poll.count = count
	}
	t.mu.Unlock()

	if err := t.store.Set(ctx, t.campaignID, to); err != nil {
		t.log().Error("failed to store donation reference", "donation_id", to, "err", err)
	}
	t.log().Info("following donation found by phone number", "previous_donation_id", from, "donation_id", to)
	return true
}

// Refresh re-reads the status of donationID if it is the donation being
// tracked. Used when the backend announces a change.
func (t *Tracker) Refresh(ctx context.Context, donationID string) (Snapshot, error) {
	t.mu.Lock()
	if donationID == "" || donationID != t.donationID {
		t.mu.Unlock()
		return t.Snapshot(), ErrNotTracking
	}
	seq := t.nextSeqLocked()
	t.mu.Unlock()

	st, err := t.api.GetPaymentStatus(ctx, donationID)
	if err != nil {
		return t.Snapshot(), err
	}
	t.apply(ctx, donationID, seq, st.Status, st.TransactionCode, statusPayload(st))
	return t.Snapshot(), nil
}

// matchDonation prefers an exact id match, then the newest donation made
// from the same phone number.
func matchDonation(records []models.DonationRecord, donationID, phone string) (models.DonationRecord, bool) {
	for _, r := range records {
		if r.ID == donationID {
			return r, true
		}
	}
	if phone == "" {
		return models.DonationRecord{}, false
	}
	var matches []models.DonationRecord
	for _, r := range records {
		if r.DonorPhone == phone || models.SamePhone(r.DonorPhone, phone) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return models.DonationRecord{}, false
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	return matches[0], true
}

// Reset backs out of a finished (or abandoned) donation: "make another
// donation" and "try again" both land here.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	t.stopPollingLocked()
	t.clearLocked()
	t.mu.Unlock()
	return t.store.Remove(ctx, t.campaignID)
}

// ClearHistory forgets the stored reference and keeps it from being resumed
// again until the session ends.
func (t *Tracker) ClearHistory(ctx context.Context) error {
	t.session.markCleared(t.campaignID)
	t.mu.Lock()
	t.stopPollingLocked()
	t.clearLocked()
	t.mu.Unlock()
	if err := t.store.Remove(ctx, t.campaignID); err != nil {
		return fmt.Errorf("removing stored donation reference: %w", err)
	}
	t.log().Info("payment history cleared")
	return nil
}

// Unload tears the tracker down when the donor leaves the page. A settled
// donation's reference is dropped; an unsettled one is kept so tracking
// resumes next time.
func (t *Tracker) Unload(ctx context.Context) error {
	t.mu.Lock()
	t.unloaded = true
	run := t.poll
	t.stopPollingLocked()
	terminal := t.state.Terminal()
	t.mu.Unlock()

	if run != nil {
		<-run.done
	}
	if terminal {
		return t.store.Remove(ctx, t.campaignID)
	}
	return nil
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := Snapshot{
		CampaignID:      t.campaignID,
		State:           t.state,
		DonationID:      t.donationID,
		Status:          t.status,
		TransactionCode: t.transactionCode,
		HistoryCleared:  t.session.historyCleared(t.campaignID),
	}
	if t.poll != nil {
		snap.Polls = t.poll.count
	}
	if !t.notice.expired(t.cfg.clock.Now()) {
		n := *t.notice
		snap.Notice = &n
	}
	return snap
}

// ----------------- Polling -----------------

// startPollingLocked starts the single poller for the current donation.
// The ticker is created here so the schedule begins now, not whenever the
// goroutine gets to run.
func (t *Tracker) startPollingLocked() {
	t.stopPollingLocked()
	ctx, cancel := context.WithCancel(t.session.ctx)
	run := &pollRun{
		donationID: t.donationID,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	t.poll = run
	ticker := t.cfg.clock.NewTicker(t.cfg.interval)
	go t.runPoller(run, ticker)
}

// stopPollingLocked cancels the active poller, if any. Safe to call any
// number of times.
func (t *Tracker) stopPollingLocked() {
	if t.poll == nil {
		return
	}
	t.poll.cancel()
	t.poll = nil
}

func (t *Tracker) runPoller(run *pollRun, ticker clockwork.Ticker) {
	defer close(run.done)
	defer ticker.Stop()
	for {
		select {
		case <-run.ctx.Done():
			return
		case <-ticker.Chan():
			if !t.pollOnce(run) {
				return
			}
		}
	}
}

// pollOnce performs one scheduled status check and reports whether polling
// should continue. Transport failures are only logged.
func (t *Tracker) pollOnce(run *pollRun) bool {
	t.mu.Lock()
	if t.poll != run {
		t.mu.Unlock()
		return false
	}
	run.count++
	n := run.count
	seq := t.nextSeqLocked()
	t.mu.Unlock()

	st, err := t.api.GetPaymentStatus(run.ctx, run.donationID)
	switch {
	case run.ctx.Err() != nil:
		return false
	case err != nil:
		t.log().Warn("payment status poll failed", "donation_id", run.donationID, "poll", n, "err", err)
	default:
		t.log().Debug("payment status polled", "donation_id", run.donationID, "poll", n, "status", st.Status)
		if t.apply(run.ctx, run.donationID, seq, st.Status, st.TransactionCode, statusPayload(st)) {
			return false
		}
	}

	if n >= t.cfg.maxPolls() {
		t.expire(run)
		return false
	}
	return true
}

// expire gives up on a donation that never settled: polling stops and the
// form comes back. The reference is kept so the donor can still check it.
func (t *Tracker) expire(run *pollRun) {
	t.mu.Lock()
	if t.poll != run {
		t.mu.Unlock()
		return
	}
	t.stopPollingLocked()
	expired := t.state == StateTracking
	if expired {
		t.state = StateForm
		t.setNoticeLocked(NoticeInfo, trackingTimedText, 0)
	}
	donationID, status := t.donationID, t.status
	t.mu.Unlock()

	if expired {
		t.log().Warn("payment tracking timed out", "donation_id", donationID, "polls", run.count, "status", status)
		t.record(context.Background(), donationID, status, "", false, nil)
	}
}

// apply folds a status reading into the tracker and reports whether the
// donation is now settled. Readings for another donation, or issued before
// a reading already applied, are dropped. A settled donation never goes
// back to pending.
func (t *Tracker) apply(ctx context.Context, donationID string, seq uint64, status, code string, payload map[string]interface{}) bool {
	t.mu.Lock()
	if donationID != t.donationID {
		t.mu.Unlock()
		return false
	}
	if seq <= t.applied {
		terminal, applied := t.state.Terminal(), t.applied
		t.mu.Unlock()
		t.log().Debug("discarding stale status", "donation_id", donationID, "seq", seq, "applied", applied)
		return terminal
	}
	t.applied = seq

	if t.state.Terminal() {
		t.mu.Unlock()
		return true
	}

	t.status = status
	if code != "" {
		t.transactionCode = code
	}
	outcome := t.cfg.table.Classify(status)
	switch outcome {
	case OutcomeSuccess:
		t.state = StateSuccess
		t.stopPollingLocked()
		t.setNoticeLocked(NoticeSuccess, paidText(t.transactionCode), 0)
	case OutcomeFailure:
		t.state = StateFailure
		t.stopPollingLocked()
		t.setNoticeLocked(NoticeError, failedText, 0)
	}
	tracking := t.state == StateTracking
	txCode := t.transactionCode
	t.mu.Unlock()

	if outcome != OutcomePending {
		t.log().Info("payment settled", "donation_id", donationID, "status", status, "outcome", outcome.String())
	}
	t.record(ctx, donationID, status, txCode, tracking, payload)
	return outcome != OutcomePending
}

func (t *Tracker) record(ctx context.Context, donationID, status, code string, tracking bool, payload map[string]interface{}) {
	rec, ok := t.store.(refstore.StatusRecorder)
	if !ok {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	obs := refstore.Observation{
		DonationID:      donationID,
		Status:          status,
		TransactionCode: code,
		Tracking:        tracking,
		Payload:         payload,
	}
	if err := rec.RecordStatus(ctx, t.campaignID, obs); err != nil {
		t.log().Warn("failed to record payment status", "donation_id", donationID, "err", err)
	}
}

func (t *Tracker) nextSeqLocked() uint64 {
	t.issued++
	return t.issued
}

func (t *Tracker) clearLocked() {
	t.state = StateForm
	t.donationID = ""
	t.status = ""
	t.transactionCode = ""
	t.phone = ""
	t.notice = nil
	t.applied = t.issued
}

// setNoticeLocked replaces the banner. A zero ttl keeps it until replaced.
func (t *Tracker) setNoticeLocked(kind NoticeKind, text string, ttl time.Duration) {
	n := &Notice{Kind: kind, Text: text}
	if ttl > 0 {
		n.ExpiresAt = t.cfg.clock.Now().Add(ttl)
	}
	t.notice = n
}

func statusPayload(st *models.PaymentStatus) map[string]interface{} {
	p := map[string]interface{}{"status": st.Status}
	if st.TransactionCode != "" {
		p["transaction_code"] = st.TransactionCode
	}
	return p
}
