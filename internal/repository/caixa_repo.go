package repository

import (
	"context"
	"errors"

	"gestorpdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CaixaRepository persists cash sessions. Session transitions (open, close,
// sale posting) must run inside WithTx so the check-and-set is atomic:
//   - Abrir takes the per-operator lock via LockOperador before checking for
//     an existing open session, so two concurrent opens serialize.
//   - Fechar and sale posting load the session via FindSessaoByIDForUpdate,
//     so a sale racing a close either lands before the close reads the totals
//     or observes status=fechada and is rejected.
//
// Locks are transaction-scoped: released on commit or rollback, including
// rollbacks triggered by validation failures inside fn.
type CaixaRepository interface {
	WithTx(ctx context.Context, fn func(tx CaixaRepository) error) error
	LockOperador(ctx context.Context, operadorID uuid.UUID) error
	CreateSessao(ctx context.Context, s *model.SessaoCaixa) error
	FindSessaoAbertaPorOperador(ctx context.Context, operadorID uuid.UUID) (*model.SessaoCaixa, error)
	FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error)
	FindSessaoByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error)
	UpdateSessao(ctx context.Context, s *model.SessaoCaixa) error
	ListSessoesFechadas(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error)
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) WithTx(ctx context.Context, fn func(tx CaixaRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&caixaRepo{db: tx})
	})
}

// LockOperador takes a transaction-scoped advisory lock keyed by the operator
// id. pg_advisory_xact_lock blocks until the lock is free and releases it
// automatically at commit/rollback, so there is no unlock path to forget.
func (r *caixaRepo) LockOperador(ctx context.Context, operadorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtextextended(?::text, 0))", operadorID.String()).Error
}

func (r *caixaRepo) CreateSessao(ctx context.Context, s *model.SessaoCaixa) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *caixaRepo) FindSessaoAbertaPorOperador(ctx context.Context, operadorID uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).
		Where("operador_id = ? AND status = ?", operadorID, model.SessaoAberta).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) UpdateSessao(ctx context.Context, s *model.SessaoCaixa) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *caixaRepo) ListSessoesFechadas(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error) {
	var sessoes []model.SessaoCaixa
	var total int64
	q := r.db.WithContext(ctx).Model(&model.SessaoCaixa{}).Where("status = ?", model.SessaoFechada)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("closed_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessoes).Error
	return sessoes, total, err
}
