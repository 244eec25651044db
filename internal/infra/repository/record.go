package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"

	"github.com/seedora/registry/internal/domain"
	"github.com/seedora/registry/internal/infra/database/models"
)

const recordCacheTTL = 60 // seconds

// RecordRepository persists registration records. Records are written once
// on confirmation and never updated, so reads are safe to cache.
type RecordRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewRecordRepository(db *gorm.DB, mc *memcache.Client) *RecordRepository {
	return &RecordRepository{db: db, mc: mc}
}

// Insert writes the record as a single row, all or nothing. A failure after
// a confirmed transaction surfaces the transaction id for reconciliation.
func (r *RecordRepository) Insert(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	row := models.Registration{
		ID:           reg.ID,
		OwnerID:      reg.OwnerID,
		OwnerAccount: reg.OwnerAccount,
		CID:          reg.CID,
		GatewayURL:   reg.GatewayURL,
		TxID:         reg.TxID,
		Name:         reg.Name,
		Description:  reg.Description,
		Category:     reg.Category,
		FounderName:  reg.FounderName,
		Checksum:     reg.Checksum,
		CDate:        reg.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Registration{}, domain.PersistenceError{TxID: reg.TxID, Cause: err}
	}

	return toDomain(row), nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id string) (domain.Registration, error) {
	if r.mc != nil {
		if item, err := r.mc.Get(cacheKey(id)); err == nil {
			var reg domain.Registration
			if err := json.Unmarshal(item.Value, &reg); err == nil {
				return reg, nil
			}
		}
	}

	var row models.Registration
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Registration{}, domain.NotFoundError{Resource: "registration"}
		}
		return domain.Registration{}, err
	}

	reg := toDomain(row)

	if r.mc != nil {
		if encoded, err := json.Marshal(reg); err == nil {
			r.mc.Set(&memcache.Item{
				Key:        cacheKey(id),
				Value:      encoded,
				Expiration: recordCacheTTL,
			})
		}
	}

	return reg, nil
}

func cacheKey(id string) string {
	return "registration:" + id
}

func toDomain(row models.Registration) domain.Registration {
	return domain.Registration{
		ID:           row.ID,
		OwnerID:      row.OwnerID,
		OwnerAccount: row.OwnerAccount,
		CID:          row.CID,
		GatewayURL:   row.GatewayURL,
		TxID:         row.TxID,
		Name:         row.Name,
		Description:  row.Description,
		Category:     row.Category,
		FounderName:  row.FounderName,
		Checksum:     row.Checksum,
		CreatedAt:    row.CDate,
	}
}
