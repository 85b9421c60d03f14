package repository

import (
	"context"
	"errors"
	"time"

	"gestorpdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContaFilter narrows receivable listings. Zero values mean "no filter".
type ContaFilter struct {
	Status   string
	VenceAte *time.Time
	Page     int
	Limit    int
}

type ContaReceberRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, contas []model.ContaReceber) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ContaReceber, error)
	List(ctx context.Context, filter ContaFilter) ([]model.ContaReceber, int64, error)
	// MarcarRecebida flips pendente → recebida; returns the rows affected so
	// the service can detect a lost race against another settlement.
	MarcarRecebida(ctx context.Context, id uuid.UUID, quando time.Time) (int64, error)
	CancelarPorVendaTx(tx *gorm.DB, vendaID uuid.UUID) error
}

type contaReceberRepo struct{ db *gorm.DB }

func NewContaReceberRepository(db *gorm.DB) ContaReceberRepository {
	return &contaReceberRepo{db: db}
}

func (r *contaReceberRepo) CreateBatch(ctx context.Context, tx *gorm.DB, contas []model.ContaReceber) error {
	if len(contas) == 0 {
		return nil
	}
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(&contas).Error
}

func (r *contaReceberRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ContaReceber, error) {
	var c model.ContaReceber
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contaReceberRepo) List(ctx context.Context, filter ContaFilter) ([]model.ContaReceber, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ContaReceber{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.VenceAte != nil {
		q = q.Where("data_vencimento <= ?", *filter.VenceAte)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contas []model.ContaReceber
	err := q.Order("data_vencimento ASC, numero_parcela ASC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&contas).Error
	return contas, total, err
}

func (r *contaReceberRepo) MarcarRecebida(ctx context.Context, id uuid.UUID, quando time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.ContaReceber{}).
		Where("id = ? AND status = ?", id, model.ContaPendente).
		Updates(map[string]interface{}{"status": model.ContaRecebida, "recebida_em": quando})
	return res.RowsAffected, res.Error
}

func (r *contaReceberRepo) CancelarPorVendaTx(tx *gorm.DB, vendaID uuid.UUID) error {
	return tx.Model(&model.ContaReceber{}).
		Where("venda_id = ? AND status = ?", vendaID, model.ContaPendente).
		Update("status", model.ContaCancelada).Error
}
