package repository

import (
	"context"
	"errors"

	"gestorpdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MetodoPagamentoRepository interface {
	Create(ctx context.Context, m *model.MetodoPagamento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MetodoPagamento, error)
	// ListAtivos returns active methods in the administrator-defined display
	// order; ties break by name so the order is stable across restarts.
	ListAtivos(ctx context.Context) ([]model.MetodoPagamento, error)
	ListAll(ctx context.Context) ([]model.MetodoPagamento, error)
	Update(ctx context.Context, m *model.MetodoPagamento) error
	Desativar(ctx context.Context, id uuid.UUID) error
}

type metodoPagamentoRepo struct{ db *gorm.DB }

func NewMetodoPagamentoRepository(db *gorm.DB) MetodoPagamentoRepository {
	return &metodoPagamentoRepo{db: db}
}

func (r *metodoPagamentoRepo) Create(ctx context.Context, m *model.MetodoPagamento) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *metodoPagamentoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MetodoPagamento, error) {
	var m model.MetodoPagamento
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *metodoPagamentoRepo) ListAtivos(ctx context.Context) ([]model.MetodoPagamento, error) {
	var metodos []model.MetodoPagamento
	err := r.db.WithContext(ctx).
		Where("ativo = true").
		Order("ordem_exibicao ASC, nome ASC").
		Find(&metodos).Error
	return metodos, err
}

func (r *metodoPagamentoRepo) ListAll(ctx context.Context) ([]model.MetodoPagamento, error) {
	var metodos []model.MetodoPagamento
	err := r.db.WithContext(ctx).Order("ordem_exibicao ASC, nome ASC").Find(&metodos).Error
	return metodos, err
}

func (r *metodoPagamentoRepo) Update(ctx context.Context, m *model.MetodoPagamento) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *metodoPagamentoRepo) Desativar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.MetodoPagamento{}).
		Where("id = ?", id).Update("ativo", false).Error
}
