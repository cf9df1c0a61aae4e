package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/metrics"
	"github.com/MKhiriev/go-bill-keeper/internal/notify"
	"github.com/MKhiriev/go-bill-keeper/internal/store"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
	"github.com/MKhiriev/go-bill-keeper/models"
)

// maxCreateAttempts bounds the share code allocation of a new bill.
const maxCreateAttempts = 3

type syncService struct {
	storage  store.BillStorage
	notifier notify.Notifier
	recorder metrics.Recorder
	ids      IDGenerator

	logger *logger.Logger
}

func NewSyncService(storage store.BillStorage, notifier notify.Notifier, recorder metrics.Recorder, ids IDGenerator, logger *logger.Logger) SyncService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &syncService{
		storage:  storage,
		notifier: notifier,
		recorder: recorder,
		ids:      ids,
		logger:   logger,
	}
}

// txResult is what a sync transaction reports back to its caller.
type txResult struct {
	billID    string
	version   int64
	applied   int
	replayed  bool
	conflicts []models.Conflict
}

func (s *syncService) ApplyFullSync(ctx context.Context, actor models.Actor, req models.FullSyncRequest) (models.FullSyncResponse, error) {
	log := logger.FromContext(ctx).With().Str("func", "syncService.ApplyFullSync").Logger()
	start := time.Now()

	fingerprint, err := requestFingerprint(models.SyncModeFull, req.RemoteID, req)
	if err != nil {
		return models.FullSyncResponse{}, err
	}

	var (
		resp models.FullSyncResponse
		res  txResult
	)
	if req.RemoteID == "" {
		resp, res, err = s.createBill(ctx, actor, fingerprint, req)
	} else {
		resp, res, err = s.replaceBill(ctx, fingerprint, req)
	}

	if errors.Is(err, store.ErrConcurrentWrite) && req.RemoteID != "" {
		s.recorder.IncConcurrencyFaults()
		log.Warn().Err(err).Str("bill_id", req.RemoteID).Msg("concurrent write, answering with the current bill")

		var fresh models.Bill
		if fresh, err = s.currentBill(ctx, req.RemoteID); err == nil {
			resp = fullConflictResponse(fresh)
			res = txResult{billID: fresh.ID, version: fresh.Version, conflicts: []models.Conflict{versionConflict(fresh.ID, req.BaseVersion, fresh.Version)}}
		}
	}
	if err != nil {
		s.observe(models.SyncModeFull, err, res, start)
		return models.FullSyncResponse{}, err
	}

	s.observe(models.SyncModeFull, nil, res, start)
	s.announce(actor, res)

	log.Debug().
		Str("bill_id", resp.RemoteID).
		Int64("version", resp.Version).
		Bool("conflict", resp.Conflict).
		Bool("replayed", res.replayed).
		Msg("full sync handled")
	return resp, nil
}

func (s *syncService) ApplyDelta(ctx context.Context, actor models.Actor, billID string, req models.DeltaSyncRequest) (models.DeltaSyncResponse, error) {
	log := logger.FromContext(ctx).With().Str("func", "syncService.ApplyDelta").Str("bill_id", billID).Logger()
	start := time.Now()

	if !utils.IsUUID(billID) {
		return models.DeltaSyncResponse{}, ErrBillNotFound
	}

	fingerprint, err := requestFingerprint(models.SyncModeDelta, billID, req)
	if err != nil {
		return models.DeltaSyncResponse{}, err
	}

	var (
		resp models.DeltaSyncResponse
		res  txResult
	)
	err = s.storage.InTx(ctx, func(ctx context.Context, tx store.BillTx) error {
		res = txResult{billID: billID}

		replay, found, err := findReceipt[models.DeltaSyncResponse](ctx, tx, fingerprint)
		if err != nil {
			return err
		}
		if found {
			resp, res.version, res.replayed = replay, replay.Version, true
			return nil
		}

		current, err := tx.LockBill(ctx, billID)
		if err != nil {
			return err
		}

		if req.BaseVersion > current.Version {
			resp = deltaConflictResponse(current, []models.Conflict{versionConflict(billID, req.BaseVersion, current.Version)})
			res.version, res.conflicts = current.Version, resp.Conflicts
			return nil
		}

		m := newDeltaMerge(tx, s.ids, current, req.BaseVersion)
		if err = m.apply(ctx, req); err != nil {
			return err
		}

		res.version = current.Version
		if m.applied > 0 {
			if err = tx.BumpVersion(ctx, billID, current.Version, m.version); err != nil {
				return err
			}
			res.version = m.version
		}
		res.applied, res.conflicts = m.applied, m.conflicts

		resp = models.DeltaSyncResponse{
			Success:    len(m.conflicts) == 0,
			Version:    res.version,
			IDMappings: m.mappings,
			Conflicts:  m.conflicts,
		}
		if len(m.conflicts) > 0 {
			merged := m.bill.Clone()
			merged.Version = res.version
			resp.Bill = &merged
		}

		if m.applied == 0 {
			return nil
		}
		return saveReceipt(ctx, tx, fingerprint, billID, resp)
	})

	if errors.Is(err, store.ErrConcurrentWrite) {
		s.recorder.IncConcurrencyFaults()
		log.Warn().Err(err).Msg("concurrent write, answering with the current bill")

		var fresh models.Bill
		if fresh, err = s.currentBill(ctx, billID); err == nil {
			resp = deltaConflictResponse(fresh, []models.Conflict{versionConflict(billID, req.BaseVersion, fresh.Version)})
			res = txResult{billID: billID, version: fresh.Version, conflicts: resp.Conflicts}
		}
	}
	if err != nil {
		err = mapStoreError(err)
		s.observe(models.SyncModeDelta, err, res, start)
		return models.DeltaSyncResponse{}, err
	}

	s.observe(models.SyncModeDelta, nil, res, start)
	s.announce(actor, res)

	log.Debug().
		Int64("version", resp.Version).
		Int("applied", res.applied).
		Int("conflicts", len(resp.Conflicts)).
		Bool("replayed", res.replayed).
		Msg("delta sync handled")
	return resp, nil
}

// createBill inserts a new bill. A colliding share code is regenerated.
func (s *syncService) createBill(ctx context.Context, actor models.Actor, fingerprint string, req models.FullSyncRequest) (models.FullSyncResponse, txResult, error) {
	var (
		resp models.FullSyncResponse
		res  txResult
		err  error
	)
	for range maxCreateAttempts {
		err = s.storage.InTx(ctx, func(ctx context.Context, tx store.BillTx) error {
			replay, found, err := findReceipt[models.FullSyncResponse](ctx, tx, fingerprint)
			if err != nil {
				return err
			}
			if found {
				resp = replay
				res = txResult{billID: replay.RemoteID, version: replay.Version, replayed: true}
				return nil
			}

			shareCode, err := utils.GenerateShareCode()
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			bill := models.Bill{
				ID:          s.ids.Generate(),
				Name:        req.Name,
				ShareCode:   shareCode,
				Version:     1,
				NameVersion: 1,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if actor.UserID != "" {
				bill.OwnerID = &actor.UserID
			}
			if err = tx.CreateBill(ctx, bill); err != nil {
				return err
			}

			r := newFullReplace(tx, s.ids, bill)
			if err = r.apply(ctx, req); err != nil {
				return err
			}

			resp = models.FullSyncResponse{
				RemoteID:   bill.ID,
				ShareCode:  bill.ShareCode,
				Version:    bill.Version,
				IDMappings: r.mappings,
			}
			res = txResult{billID: bill.ID, version: bill.Version, applied: 1}
			return saveReceipt(ctx, tx, fingerprint, bill.ID, resp)
		})
		// a lost receipt race is answered by the replay on the next attempt
		if !errors.Is(err, store.ErrShareCodeTaken) && !errors.Is(err, store.ErrConcurrentWrite) {
			break
		}
		logger.FromContext(ctx).Debug().Err(err).Str("func", "syncService.createBill").Msg("retrying bill creation")
	}

	switch {
	case errors.Is(err, store.ErrShareCodeTaken):
		return models.FullSyncResponse{}, res, ErrShareCodeExhausted
	case err != nil:
		return models.FullSyncResponse{}, res, mapStoreError(err)
	}
	return resp, res, nil
}

// replaceBill reconciles the whole bill against the request when the base
// version still matches.
func (s *syncService) replaceBill(ctx context.Context, fingerprint string, req models.FullSyncRequest) (models.FullSyncResponse, txResult, error) {
	if !utils.IsUUID(req.RemoteID) {
		return models.FullSyncResponse{}, txResult{}, ErrBillNotFound
	}

	var (
		resp models.FullSyncResponse
		res  txResult
	)
	err := s.storage.InTx(ctx, func(ctx context.Context, tx store.BillTx) error {
		res = txResult{billID: req.RemoteID}

		replay, found, err := findReceipt[models.FullSyncResponse](ctx, tx, fingerprint)
		if err != nil {
			return err
		}
		if found {
			resp, res.version, res.replayed = replay, replay.Version, true
			return nil
		}

		current, err := tx.LockBill(ctx, req.RemoteID)
		if err != nil {
			return err
		}

		if current.Version != req.BaseVersion {
			resp = fullConflictResponse(current)
			res.version = current.Version
			res.conflicts = []models.Conflict{versionConflict(current.ID, req.BaseVersion, current.Version)}
			return nil
		}

		next := current.Version + 1
		if err = tx.BumpVersion(ctx, current.ID, current.Version, next); err != nil {
			return err
		}
		current.Version = next

		r := newFullReplace(tx, s.ids, current)
		if err = r.apply(ctx, req); err != nil {
			return err
		}

		resp = models.FullSyncResponse{
			RemoteID:   current.ID,
			ShareCode:  current.ShareCode,
			Version:    next,
			IDMappings: r.mappings,
		}
		res.version, res.applied = next, 1
		return saveReceipt(ctx, tx, fingerprint, current.ID, resp)
	})
	if err != nil && !errors.Is(err, store.ErrConcurrentWrite) {
		err = mapStoreError(err)
	}
	return resp, res, err
}

func (s *syncService) currentBill(ctx context.Context, billID string) (models.Bill, error) {
	bill, err := s.storage.GetBill(ctx, billID)
	if err != nil {
		return models.Bill{}, mapStoreError(err)
	}
	return bill, nil
}

// announce tells peers about an accepted write.
func (s *syncService) announce(actor models.Actor, res txResult) {
	if res.applied == 0 || res.replayed {
		return
	}
	s.notifier.NotifyBillUpdated(res.billID, res.version, actor.ID())
}

func (s *syncService) observe(mode models.SyncMode, err error, res txResult, start time.Time) {
	outcome := metrics.OutcomeApplied
	switch {
	case errors.Is(err, ErrValidation):
		outcome = metrics.OutcomeRejected
	case err != nil:
		outcome = metrics.OutcomeFailed
	case res.replayed:
		outcome = metrics.OutcomeReplayed
	case len(res.conflicts) > 0:
		outcome = metrics.OutcomeConflict
	}
	s.recorder.ObserveSync(string(mode), outcome, time.Since(start))

	counts := make(map[[2]string]int)
	for _, c := range res.conflicts {
		counts[[2]string{string(c.EntityType), string(c.Resolution)}]++
	}
	for key, n := range counts {
		s.recorder.AddConflicts(key[0], key[1], n)
	}
}

func requestFingerprint(mode models.SyncMode, billID string, req any) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("error encoding sync request: %w", err)
	}
	return utils.Fingerprint([]byte(mode), []byte(billID), body), nil
}

func findReceipt[T any](ctx context.Context, tx store.BillTx, fingerprint string) (T, bool, error) {
	var resp T

	receipt, err := tx.FindReceipt(ctx, fingerprint)
	if errors.Is(err, store.ErrReceiptNotFound) {
		return resp, false, nil
	}
	if err != nil {
		return resp, false, err
	}

	if err = json.Unmarshal(receipt.Response, &resp); err != nil {
		return resp, false, fmt.Errorf("error decoding sync receipt: %w", err)
	}
	return resp, true, nil
}

func saveReceipt(ctx context.Context, tx store.BillTx, fingerprint, billID string, resp any) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error encoding sync receipt: %w", err)
	}
	return tx.SaveReceipt(ctx, models.SyncReceipt{
		Fingerprint: fingerprint,
		BillID:      billID,
		Response:    body,
		CreatedAt:   time.Now().UTC(),
	})
}

func fullConflictResponse(bill models.Bill) models.FullSyncResponse {
	return models.FullSyncResponse{
		RemoteID:   bill.ID,
		ShareCode:  bill.ShareCode,
		Version:    bill.Version,
		IDMappings: models.NewIDMappings(),
		Conflict:   true,
		Bill:       &bill,
	}
}

func deltaConflictResponse(bill models.Bill, conflicts []models.Conflict) models.DeltaSyncResponse {
	return models.DeltaSyncResponse{
		Version:    bill.Version,
		IDMappings: models.NewIDMappings(),
		Conflicts:  conflicts,
		Bill:       &bill,
	}
}

func versionConflict(billID string, local, server int64) models.Conflict {
	return models.Conflict{
		EntityType:  models.EntityBill,
		EntityID:    billID,
		Field:       models.FieldVersion,
		LocalValue:  rawJSON(local),
		ServerValue: rawJSON(server),
		Resolution:  models.ResolutionServerWins,
	}
}

// mapStoreError translates storage sentinels into service errors. Unknown
// errors pass through.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBillNotFound):
		return err
	case errors.Is(err, store.ErrBillNotFound):
		return fmt.Errorf("%w: %w", ErrBillNotFound, err)
	case errors.Is(err, store.ErrMemberAlreadyClaimed):
		return fmt.Errorf("%w: %w", ErrValidation, ErrMemberAlreadyClaimed)
	default:
		return err
	}
}

func rawJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
