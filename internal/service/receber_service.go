package service

import (
	"context"
	"time"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/dto"
	"gestorpdv/internal/model"
	"gestorpdv/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReceberService expands a settlement quote into receivable rows for the
// financial ledger and handles their settlement (baixa).
type ReceberService interface {
	// Programar creates one ContaReceber per installment of the quote, in
	// ascending due-date order, status pendente. Runs inside the caller's
	// transaction (tx may be nil in unit-test mode).
	Programar(ctx context.Context, tx *gorm.DB, cotacao *CotacaoLiquidacao, vendaID uuid.UUID) ([]model.ContaReceber, error)
	// CancelarPorVenda flips the sale's pending receivables to cancelada.
	// Runs inside the caller's transaction; received installments stay as-is.
	CancelarPorVenda(tx *gorm.DB, vendaID uuid.UUID) error
	Listar(ctx context.Context, filter repository.ContaFilter) (*dto.ContaReceberListResponse, error)
	RegistrarRecebimento(ctx context.Context, id uuid.UUID) (*dto.ContaReceberResponse, error)
}

type receberService struct {
	repo  repository.ContaReceberRepository
	agora func() time.Time
}

func NewReceberService(repo repository.ContaReceberRepository) ReceberService {
	return &receberService{repo: repo, agora: time.Now}
}

func (s *receberService) Programar(ctx context.Context, tx *gorm.DB, cotacao *CotacaoLiquidacao, vendaID uuid.UUID) ([]model.ContaReceber, error) {
	// The quote's installments are already in ascending due-date order
	// (30-day cycles); the mapping preserves it.
	contas := make([]model.ContaReceber, 0, len(cotacao.Recebiveis))
	for _, p := range cotacao.Recebiveis {
		contas = append(contas, model.ContaReceber{
			VendaID:        vendaID,
			NumeroParcela:  p.Numero,
			Valor:          p.Valor,
			DataVencimento: p.Vencimento,
			Status:         model.ContaPendente,
		})
	}
	if err := s.repo.CreateBatch(ctx, tx, contas); err != nil {
		return nil, err
	}
	return contas, nil
}

func (s *receberService) CancelarPorVenda(tx *gorm.DB, vendaID uuid.UUID) error {
	return s.repo.CancelarPorVendaTx(tx, vendaID)
}

func (s *receberService) Listar(ctx context.Context, filter repository.ContaFilter) (*dto.ContaReceberListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}
	contas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ContaReceberResponse, 0, len(contas))
	for i := range contas {
		data = append(data, *contaToResponse(&contas[i]))
	}
	return &dto.ContaReceberListResponse{
		Data: data, Total: total, Page: filter.Page, Limit: filter.Limit,
	}, nil
}

func (s *receberService) RegistrarRecebimento(ctx context.Context, id uuid.UUID) (*dto.ContaReceberResponse, error) {
	conta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conta == nil {
		return nil, apperror.NotFound(apperror.CodeReceivableNotFound, "Conta a receber não encontrada")
	}
	quando := s.agora().UTC()
	afetadas, err := s.repo.MarcarRecebida(ctx, id, quando)
	if err != nil {
		return nil, err
	}
	if afetadas == 0 {
		// Guarded update touched nothing: the row left pendente since the read.
		return nil, apperror.Conflict(apperror.CodeReceivableNotPending,
			"Conta a receber não está pendente")
	}
	conta.Status = model.ContaRecebida
	conta.RecebidaEm = &quando
	return contaToResponse(conta), nil
}

func contaToResponse(c *model.ContaReceber) *dto.ContaReceberResponse {
	resp := &dto.ContaReceberResponse{
		ID:             c.ID.String(),
		VendaID:        c.VendaID.String(),
		NumeroParcela:  c.NumeroParcela,
		Valor:          c.Valor,
		DataVencimento: c.DataVencimento.Format("2006-01-02"),
		Status:         c.Status,
	}
	if c.RecebidaEm != nil {
		t := c.RecebidaEm.UTC().Format(time.RFC3339)
		resp.RecebidaEm = &t
	}
	return resp
}
