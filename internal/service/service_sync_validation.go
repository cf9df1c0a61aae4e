package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/validators"
	"github.com/MKhiriev/go-bill-keeper/models"
)

// SyncValidationService rejects malformed sync requests before they reach
// storage.
type SyncValidationService struct {
	inner     SyncService
	validator validators.Validator
}

func NewSyncValidationService() SyncServiceWrapper {
	return &SyncValidationService{
		validator: validators.NewSyncRequestValidator(),
	}
}

func (v *SyncValidationService) ApplyFullSync(ctx context.Context, actor models.Actor, req models.FullSyncRequest) (models.FullSyncResponse, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		logger.FromContext(ctx).Debug().Err(err).Str("func", "SyncValidationService.ApplyFullSync").Msg("full sync request rejected")
		return models.FullSyncResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return v.inner.ApplyFullSync(ctx, actor, req)
}

func (v *SyncValidationService) ApplyDelta(ctx context.Context, actor models.Actor, billID string, req models.DeltaSyncRequest) (models.DeltaSyncResponse, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		logger.FromContext(ctx).Debug().Err(err).Str("func", "SyncValidationService.ApplyDelta").Msg("delta sync request rejected")
		return models.DeltaSyncResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return v.inner.ApplyDelta(ctx, actor, billID, req)
}

func (v *SyncValidationService) Wrap(wrapped SyncService) SyncService {
	v.inner = wrapped
	return v
}
