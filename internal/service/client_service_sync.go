package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/go-bill-keeper/internal/adapter"
	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/ledger"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	maxRetryDelay         = 30 * time.Second

	// maxFlightRounds bounds how many requests one flight sends back to back.
	maxFlightRounds = 8
	// maxParallelBills bounds SyncPending fan-out.
	maxParallelBills = 4
)

// flight is one running sync of a bill. Callers arriving while it runs set
// resubmit and share its result.
type flight struct {
	done     chan struct{}
	resubmit bool
	result   models.SyncResult
	err      error
}

type clientSyncService struct {
	ledger  *ledger.Store
	adapter adapter.ServerAdapter

	attempts  int
	baseDelay time.Duration

	mu      sync.Mutex
	flights map[string]*flight
	fetches singleflight.Group

	logger *logger.Logger
}

// NewClientSyncService returns the Sync Client of the local ledger. Zero
// values in cfg fall back to 3 attempts with a 500ms base delay.
func NewClientSyncService(ledgerStore *ledger.Store, serverAdapter adapter.ServerAdapter, cfg config.ClientSync, logger *logger.Logger) ClientSyncService {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}
	return &clientSyncService{
		ledger:    ledgerStore,
		adapter:   serverAdapter,
		attempts:  cfg.RetryAttempts,
		baseDelay: cfg.RetryBaseDelay,
		flights:   make(map[string]*flight),
		logger:    logger,
	}
}

// Sync implements ClientSyncService.
func (s *clientSyncService) Sync(ctx context.Context, billLocalID string) (models.SyncResult, error) {
	return s.join(ctx, billLocalID, s.syncRounds)
}

// Refresh implements ClientSyncService.
func (s *clientSyncService) Refresh(ctx context.Context, billLocalID string) (models.SyncResult, error) {
	return s.join(ctx, billLocalID, s.refresh)
}

// Retry implements ClientSyncService.
func (s *clientSyncService) Retry(ctx context.Context, billLocalID string) (models.SyncResult, error) {
	bill, err := s.ledger.Get(billLocalID)
	if err != nil {
		return models.SyncResult{}, err
	}
	if bill.SyncStatus != models.SyncStatusError {
		return models.SyncResult{}, fmt.Errorf("%w: %s", ErrNotInErrorState, bill.SyncStatus)
	}
	if _, err = s.ledger.ClearError(ctx, billLocalID); err != nil {
		return models.SyncResult{}, err
	}

	s.logger.Info().Str("func", "clientSyncService.Retry").Str("bill_id", billLocalID).Msg("retrying failed bill")
	return s.Sync(ctx, billLocalID)
}

// SyncPending implements ClientSyncService. A failing bill does not stop the
// others; all failures are joined into the returned error.
func (s *clientSyncService) SyncPending(ctx context.Context) ([]models.SyncResult, error) {
	var (
		g       errgroup.Group
		mu      sync.Mutex
		results []models.SyncResult
		errs    []error
	)
	g.SetLimit(maxParallelBills)

	for _, bill := range s.ledger.List() {
		if bill.SyncStatus != models.SyncStatusLocal && bill.SyncStatus != models.SyncStatusModified {
			continue
		}
		id := bill.LocalID
		g.Go(func() error {
			res, err := s.Sync(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("bill %s: %w", id, err))
				return nil
			}
			results = append(results, res)
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		s.logger.Warn().Str("func", "clientSyncService.SyncPending").Int("failed", len(errs)).Int("synced", len(results)).Msg("some bills failed to sync")
	}
	return results, errors.Join(errs...)
}

// join runs fn as the flight of billLocalID, or waits for the running one.
func (s *clientSyncService) join(ctx context.Context, billLocalID string, fn func(context.Context, string, *flight) (models.SyncResult, error)) (models.SyncResult, error) {
	s.mu.Lock()
	if f, ok := s.flights[billLocalID]; ok {
		f.resubmit = true
		s.mu.Unlock()

		select {
		case <-f.done:
			return f.result, f.err
		case <-ctx.Done():
			return models.SyncResult{}, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	s.flights[billLocalID] = f
	s.mu.Unlock()

	f.result, f.err = fn(ctx, billLocalID, f)

	s.mu.Lock()
	delete(s.flights, billLocalID)
	s.mu.Unlock()
	close(f.done)

	return f.result, f.err
}

// takeResubmit reads and resets the resubmit flag of f.
func (s *clientSyncService) takeResubmit(f *flight) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	again := f.resubmit
	f.resubmit = false
	return again
}

// syncRounds sends requests until the bill has nothing unsent and nobody
// asked for another round.
func (s *clientSyncService) syncRounds(ctx context.Context, billLocalID string, f *flight) (models.SyncResult, error) {
	bill, err := s.ledger.Get(billLocalID)
	if err != nil {
		return models.SyncResult{}, err
	}
	if bill.SyncStatus == models.SyncStatusError {
		return models.SyncResult{BillLocalID: billLocalID}, fmt.Errorf("%w: %s", ErrBillNotSyncable, bill.SyncError)
	}

	total := models.SyncResult{BillLocalID: billLocalID, Outcome: models.SyncOutcomeSkipped, Mode: models.SyncModeNone}
	for total.Rounds < maxFlightRounds {
		s.takeResubmit(f)

		res, err := s.round(ctx, billLocalID)
		total = combine(total, res)
		if err != nil {
			return total, err
		}
		if res.Outcome == models.SyncOutcomeSkipped {
			return total, nil
		}

		bill, err = s.ledger.Get(billLocalID)
		if err != nil {
			return total, err
		}
		if !bill.HasUnsent() && !s.takeResubmit(f) {
			return total, nil
		}
	}

	s.logger.Warn().Str("func", "clientSyncService.syncRounds").Str("bill_id", billLocalID).
		Int("rounds", total.Rounds).Msg("flight stopped with changes left for the next sync")
	return total, nil
}

// refresh adopts the server state of a bill after a peer changed it. A bill
// with unsent changes is synced instead; the server answer brings the peer
// changes along.
func (s *clientSyncService) refresh(ctx context.Context, billLocalID string, f *flight) (models.SyncResult, error) {
	bill, err := s.ledger.Get(billLocalID)
	if err != nil {
		return models.SyncResult{}, err
	}
	if bill.RemoteID == "" || bill.HasUnsent() {
		return s.syncRounds(ctx, billLocalID, f)
	}

	server, err := s.fetchBill(ctx, bill.RemoteID)
	if err != nil {
		return models.SyncResult{BillLocalID: billLocalID}, err
	}

	res := models.SyncResult{
		BillLocalID: billLocalID,
		RemoteID:    bill.RemoteID,
		Mode:        models.SyncModeNone,
		Outcome:     models.SyncOutcomeSkipped,
		Version:     bill.Version,
	}
	if server.Version <= bill.Version {
		return res, nil
	}

	if _, err = s.ledger.RebaseFromServer(ctx, billLocalID, server, models.NewIDMappings()); err != nil {
		return res, err
	}
	res.Outcome = models.SyncOutcomeMerged
	res.Version = server.Version

	s.logger.Info().Str("func", "clientSyncService.refresh").Str("bill_id", billLocalID).
		Int64("version", server.Version).Msg("bill refreshed from server")

	if s.takeResubmit(f) {
		more, err := s.syncRounds(ctx, billLocalID, f)
		return combine(res, more), err
	}
	return res, nil
}

func (s *clientSyncService) fetchBill(ctx context.Context, remoteID string) (models.Bill, error) {
	v, err, _ := s.fetches.Do(remoteID, func() (any, error) {
		return s.adapter.GetBill(ctx, remoteID)
	})
	if err != nil {
		return models.Bill{}, fmt.Errorf("fetch bill %s: %w", remoteID, err)
	}
	return v.(models.Bill), nil
}

// round sends one request and records its outcome in the ledger.
func (s *clientSyncService) round(ctx context.Context, billLocalID string) (models.SyncResult, error) {
	log := s.logger.With().Str("func", "clientSyncService.round").Str("bill_id", billLocalID).Logger()

	bill, err := s.ledger.BeginSync(ctx, billLocalID, prepareSyncRequest)
	if errors.Is(err, ledger.ErrNothingToSync) {
		bill, err = s.ledger.MarkSyncedEmpty(ctx, billLocalID)
		return models.SyncResult{
			BillLocalID: billLocalID,
			RemoteID:    bill.RemoteID,
			Mode:        models.SyncModeNone,
			Outcome:     models.SyncOutcomeSkipped,
			Version:     bill.Version,
		}, err
	}
	if err != nil {
		return models.SyncResult{BillLocalID: billLocalID}, err
	}

	flightReq := bill.InFlight
	res := models.SyncResult{BillLocalID: billLocalID, RemoteID: bill.RemoteID, Mode: flightReq.Mode, Rounds: 1}

	var (
		fullResp  models.FullSyncResponse
		deltaResp models.DeltaSyncResponse
	)
	send := func(ctx context.Context) error {
		var err error
		switch flightReq.Mode {
		case models.SyncModeFull:
			fullResp, err = s.adapter.FullSync(ctx, flightReq.Request)
		default:
			deltaResp, err = s.adapter.DeltaSync(ctx, bill.RemoteID, flightReq.Request)
		}
		if isRetryable(err) {
			log.Debug().Err(err).Msg("sync attempt failed, backing off")
			return retry.RetryableError(err)
		}
		return err
	}

	if err = retry.Do(ctx, s.backoff(), send); err != nil {
		return res, s.fail(ctx, billLocalID, err)
	}

	switch flightReq.Mode {
	case models.SyncModeFull:
		err = s.acceptFull(ctx, billLocalID, fullResp, &res)
	default:
		err = s.acceptDelta(ctx, billLocalID, bill.RemoteID, deltaResp, &res)
	}
	if err != nil {
		return res, err
	}

	log.Debug().Str("mode", string(res.Mode)).Str("outcome", string(res.Outcome)).
		Int64("version", res.Version).Int("conflicts", len(res.Conflicts)).Msg("sync round done")
	return res, nil
}

func (s *clientSyncService) acceptFull(ctx context.Context, billLocalID string, resp models.FullSyncResponse, res *models.SyncResult) error {
	if resp.Conflict && resp.Bill != nil {
		return s.rebase(ctx, billLocalID, *resp.Bill, resp.IDMappings, nil, res)
	}
	if resp.RemoteID == "" {
		return s.fail(ctx, billLocalID, ErrEmptyResponse)
	}

	if _, err := s.ledger.ApplySyncSuccess(ctx, billLocalID, ledger.SyncSuccess{
		RemoteID:  resp.RemoteID,
		ShareCode: resp.ShareCode,
		Version:   resp.Version,
		Mappings:  resp.IDMappings,
	}); err != nil {
		return err
	}
	res.RemoteID = resp.RemoteID
	res.Version = resp.Version
	res.Outcome = models.SyncOutcomeSynced
	return nil
}

func (s *clientSyncService) acceptDelta(ctx context.Context, billLocalID, remoteID string, resp models.DeltaSyncResponse, res *models.SyncResult) error {
	if resp.Bill != nil {
		return s.rebase(ctx, billLocalID, *resp.Bill, resp.IDMappings, resp.Conflicts, res)
	}
	if !resp.Success && resp.Version == 0 {
		return s.fail(ctx, billLocalID, ErrEmptyResponse)
	}

	if _, err := s.ledger.ApplySyncSuccess(ctx, billLocalID, ledger.SyncSuccess{
		RemoteID: remoteID,
		Version:  resp.Version,
		Mappings: resp.IDMappings,
	}); err != nil {
		return err
	}
	res.Version = resp.Version
	res.Outcome = models.SyncOutcomeSynced
	return nil
}

func (s *clientSyncService) rebase(ctx context.Context, billLocalID string, server models.Bill, mappings models.IDMappings, conflicts []models.Conflict, res *models.SyncResult) error {
	if _, err := s.ledger.RebaseFromServer(ctx, billLocalID, server, mappings); err != nil {
		return err
	}
	res.RemoteID = server.ID
	res.Version = server.Version
	res.Conflicts = conflicts
	res.Outcome = models.SyncOutcomeMerged

	s.logger.Info().Str("func", "clientSyncService.rebase").Str("bill_id", billLocalID).
		Int64("version", server.Version).Int("conflicts", len(conflicts)).Msg("server state adopted")
	return nil
}

// fail records a failed round. When the server provably applied nothing the
// in-flight changes go back to pending; otherwise the request is kept and
// resent verbatim. A cancelled context only releases the bill.
func (s *clientSyncService) fail(ctx context.Context, billLocalID string, cause error) error {
	log := s.logger.With().Str("func", "clientSyncService.fail").Str("bill_id", billLocalID).Logger()

	if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		// the ledger write must outlive the cancelled caller
		if _, err := s.ledger.ReleaseSync(context.WithoutCancel(ctx), billLocalID); err != nil {
			log.Err(err).Msg("error releasing bill")
		}
		return cause
	}

	keep := !rejected(cause)
	if _, err := s.ledger.MarkError(ctx, billLocalID, cause.Error(), keep); err != nil {
		log.Err(err).Msg("error marking bill as failed")
		return errors.Join(cause, err)
	}

	log.Warn().Err(cause).Bool("request_kept", keep).Msg("bill sync failed")
	return fmt.Errorf("%w: %w", ErrSyncFailed, cause)
}

func (s *clientSyncService) backoff() retry.Backoff {
	b := retry.NewExponential(s.baseDelay)
	b = retry.WithCappedDuration(maxRetryDelay, b)
	return retry.WithMaxRetries(uint64(s.attempts-1), b)
}

// isRetryable reports whether a transport failure may succeed when the same
// request is sent again. A 409 only answers a bill creation that lost a
// commit race on the server, which turns version races of existing bills into
// conflict responses. Every attempt carries the identical request, so the
// resend is replayed from the receipt of the create that won and is never
// applied twice.
func isRetryable(err error) bool {
	return errors.Is(err, adapter.ErrNetwork) ||
		errors.Is(err, adapter.ErrServer) ||
		errors.Is(err, adapter.ErrVersionConflict)
}

// rejected reports whether the server answered err without applying
// anything.
func rejected(err error) bool {
	return errors.Is(err, adapter.ErrUnauthorized) ||
		errors.Is(err, adapter.ErrValidation) ||
		errors.Is(err, adapter.ErrNotFound)
}

// combine folds the result of a later round into acc.
func combine(acc, next models.SyncResult) models.SyncResult {
	acc.Rounds += next.Rounds
	if next.Outcome == models.SyncOutcomeSkipped {
		if acc.Version == 0 {
			acc.Version = next.Version
		}
		if acc.RemoteID == "" {
			acc.RemoteID = next.RemoteID
		}
		return acc
	}

	if acc.Mode == models.SyncModeNone || acc.Mode == "" {
		acc.Mode = next.Mode
	}
	if next.RemoteID != "" {
		acc.RemoteID = next.RemoteID
	}
	acc.Version = next.Version
	acc.Conflicts = append(acc.Conflicts, next.Conflicts...)
	if acc.Outcome != models.SyncOutcomeMerged {
		acc.Outcome = next.Outcome
	}
	return acc
}
