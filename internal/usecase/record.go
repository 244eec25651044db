package usecase

import (
	"context"

	"github.com/seedora/registry/internal/domain"
)

type RecordUsecase struct {
	repo  RecordRepository
	store ContentStore
}

func NewRecordUsecase(repo RecordRepository, store ContentStore) *RecordUsecase {
	return &RecordUsecase{repo: repo, store: store}
}

func (uc *RecordUsecase) Get(ctx context.Context, id string) (domain.Registration, error) {
	return uc.repo.GetByID(ctx, id)
}

// GetWithPinStatus decorates a record with the live pinning state of its
// content. A status lookup failure does not fail the read; the record is
// authoritative, the pin status is advisory.
func (uc *RecordUsecase) GetWithPinStatus(ctx context.Context, id string) (domain.Registration, *domain.PinStatus, error) {
	rec, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Registration{}, nil, err
	}

	if uc.store == nil || rec.CID == "" {
		return rec, nil, nil
	}

	status, err := uc.store.Status(ctx, rec.CID)
	if err != nil {
		return rec, nil, nil
	}
	return rec, &status, nil
}
