package repository

import (
	"context"
	"errors"
	"time"

	"gestorpdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VendaFilter narrows sale listings. Zero values mean "no filter".
type VendaFilter struct {
	Desde  *time.Time
	Ate    *time.Time
	Estado string
	Page   int
	Limit  int
}

type VendaRepository interface {
	// DB exposes the underlying handle for multi-repository transactions
	// (nil in unit-test mode; see service.runTx).
	DB() *gorm.DB
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, v *model.Venda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string, motivo *string) error
	List(ctx context.Context, filter VendaFilter) ([]model.Venda, int64, error)
}

type vendaRepo struct{ db *gorm.DB }

func NewVendaRepository(db *gorm.DB) VendaRepository { return &vendaRepo{db: db} }

func (r *vendaRepo) DB() *gorm.DB { return r.db }

func (r *vendaRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.WithContext(ctx).Raw("SELECT nextval('venda_ticket_seq')").Scan(&n).Error
	return n, err
}

func (r *vendaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venda) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(v).Error
}

func (r *vendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Produto").
		Preload("Metodo").
		First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vendaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string, motivo *string) error {
	updates := map[string]interface{}{"estado": estado}
	if motivo != nil {
		updates["motivo_anulacao"] = *motivo
	}
	return tx.Model(&model.Venda{}).Where("id = ?", id).Updates(updates).Error
}

func (r *vendaRepo) List(ctx context.Context, filter VendaFilter) ([]model.Venda, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Venda{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Desde != nil {
		q = q.Where("created_at >= ?", *filter.Desde)
	}
	if filter.Ate != nil {
		q = q.Where("created_at < ?", *filter.Ate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vendas []model.Venda
	err := q.Preload("Items").Preload("Items.Produto").Preload("Metodo").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&vendas).Error
	return vendas, total, err
}
