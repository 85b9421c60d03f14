package service

import (
	"context"
	"encoding/json"
	"time"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/dto"
	"gestorpdv/internal/model"
	"gestorpdv/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	metodosCacheKey = "metodos_pagamento:ativos"
	metodosCacheTTL = 4 * time.Hour
)

// PagamentoService is the payment-method registry plus the settlement quote
// entry point. Reads are cache-backed and lock-free; the calculator itself is
// pure (see liquidacao.go).
type PagamentoService interface {
	ListarAtivos(ctx context.Context) ([]dto.MetodoPagamentoResponse, error)
	Simular(ctx context.Context, req dto.SimularPagamentoRequest) (*dto.CotacaoResponse, error)
	// ObterMetodo resolves an active method for checkout; NotFound otherwise.
	ObterMetodo(ctx context.Context, id uuid.UUID) (*model.MetodoPagamento, error)
	Criar(ctx context.Context, req dto.CriarMetodoRequest) (*dto.MetodoPagamentoResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarMetodoRequest) (*dto.MetodoPagamentoResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
}

type pagamentoService struct {
	repo  repository.MetodoPagamentoRepository
	rdb   *redis.Client
	agora func() time.Time
}

// NewPagamentoService builds the registry service. rdb may be nil (unit
// tests); listing then always hits the repository.
func NewPagamentoService(repo repository.MetodoPagamentoRepository, rdb *redis.Client) PagamentoService {
	return &pagamentoService{repo: repo, rdb: rdb, agora: time.Now}
}

// ── ListarAtivos ─────────────────────────────────────────────────────────────
// Read-through Redis cache; the admin CRUD below invalidates it on any write.

func (s *pagamentoService) ListarAtivos(ctx context.Context) ([]dto.MetodoPagamentoResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, metodosCacheKey).Bytes(); err == nil {
			var resp []dto.MetodoPagamentoResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return resp, nil
			}
		}
	}

	metodos, err := s.repo.ListAtivos(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MetodoPagamentoResponse, 0, len(metodos))
	for i := range metodos {
		resp = append(resp, *metodoToResponse(&metodos[i]))
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, metodosCacheKey, data, metodosCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("pagamento: falha ao gravar cache de métodos")
			}
		}
	}
	return resp, nil
}

// ── Simular ──────────────────────────────────────────────────────────────────

func (s *pagamentoService) Simular(ctx context.Context, req dto.SimularPagamentoRequest) (*dto.CotacaoResponse, error) {
	metodoID, err := uuid.Parse(req.MetodoID)
	if err != nil {
		return nil, apperror.Validation(apperror.CodeMethodNotFound, "metodo_id", "metodo_id inválido")
	}
	metodo, err := s.ObterMetodo(ctx, metodoID)
	if err != nil {
		return nil, err
	}
	cotacao, err := CalcularLiquidacao(req.Valor, metodo, req.Parcelas, s.agora())
	if err != nil {
		return nil, err
	}
	return cotacaoToResponse(cotacao), nil
}

func (s *pagamentoService) ObterMetodo(ctx context.Context, id uuid.UUID) (*model.MetodoPagamento, error) {
	metodo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if metodo == nil || !metodo.Ativo {
		return nil, apperror.NotFound(apperror.CodeMethodNotFound, "Método de pagamento não encontrado")
	}
	return metodo, nil
}

// ── Admin CRUD ───────────────────────────────────────────────────────────────

func (s *pagamentoService) Criar(ctx context.Context, req dto.CriarMetodoRequest) (*dto.MetodoPagamentoResponse, error) {
	metodo := &model.MetodoPagamento{
		Nome:                     req.Nome,
		TaxaPercentual:           req.TaxaPercentual,
		TaxaFixa:                 req.TaxaFixa,
		PermiteParcelamento:      req.PermiteParcelamento,
		MaxParcelas:              req.MaxParcelas,
		DiasRecebimentoBase:      req.DiasRecebimentoBase,
		DiasIncrementoPorParcela: req.DiasIncrementoPorParcela,
		OrdemExibicao:            req.OrdemExibicao,
		Ativo:                    true,
	}
	normalizarMetodo(metodo)
	if err := validarConfiguracaoTaxas(metodo); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, metodo); err != nil {
		return nil, err
	}
	s.invalidarCache(ctx)
	return metodoToResponse(metodo), nil
}

func (s *pagamentoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarMetodoRequest) (*dto.MetodoPagamentoResponse, error) {
	metodo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if metodo == nil {
		return nil, apperror.NotFound(apperror.CodeMethodNotFound, "Método de pagamento não encontrado")
	}
	if req.Nome != nil {
		metodo.Nome = *req.Nome
	}
	if req.TaxaPercentual != nil {
		metodo.TaxaPercentual = *req.TaxaPercentual
	}
	if req.TaxaFixa != nil {
		metodo.TaxaFixa = *req.TaxaFixa
	}
	if req.PermiteParcelamento != nil {
		metodo.PermiteParcelamento = *req.PermiteParcelamento
	}
	if req.MaxParcelas != nil {
		metodo.MaxParcelas = *req.MaxParcelas
	}
	if req.DiasRecebimentoBase != nil {
		metodo.DiasRecebimentoBase = *req.DiasRecebimentoBase
	}
	if req.DiasIncrementoPorParcela != nil {
		metodo.DiasIncrementoPorParcela = *req.DiasIncrementoPorParcela
	}
	if req.OrdemExibicao != nil {
		metodo.OrdemExibicao = *req.OrdemExibicao
	}
	normalizarMetodo(metodo)
	if err := validarConfiguracaoTaxas(metodo); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, metodo); err != nil {
		return nil, err
	}
	s.invalidarCache(ctx)
	return metodoToResponse(metodo), nil
}

func (s *pagamentoService) Desativar(ctx context.Context, id uuid.UUID) error {
	metodo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if metodo == nil {
		return apperror.NotFound(apperror.CodeMethodNotFound, "Método de pagamento não encontrado")
	}
	if err := s.repo.Desativar(ctx, id); err != nil {
		return err
	}
	s.invalidarCache(ctx)
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// normalizarMetodo enforces the registry invariant: without parcelamento the
// maximum is always a single parcel.
func normalizarMetodo(m *model.MetodoPagamento) {
	if !m.PermiteParcelamento {
		m.MaxParcelas = 1
	}
}

func validarConfiguracaoTaxas(m *model.MetodoPagamento) error {
	if m.TaxaPercentual.IsNegative() || m.TaxaPercentual.GreaterThanOrEqual(cem) {
		return apperror.Validation(apperror.CodeInvalidFeeConfig, "taxa_percentual",
			"Taxa percentual deve estar no intervalo [0, 100)")
	}
	if m.TaxaFixa.IsNegative() {
		return apperror.Validation(apperror.CodeInvalidFeeConfig, "taxa_fixa",
			"Taxa fixa não pode ser negativa")
	}
	if m.MaxParcelas < 1 {
		return apperror.Validation(apperror.CodeInvalidInstallmentCount, "max_parcelas",
			"Máximo de parcelas deve ser no mínimo 1")
	}
	return nil
}

func (s *pagamentoService) invalidarCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, metodosCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("pagamento: falha ao invalidar cache de métodos")
	}
}

func metodoToResponse(m *model.MetodoPagamento) *dto.MetodoPagamentoResponse {
	return &dto.MetodoPagamentoResponse{
		ID:                       m.ID.String(),
		Nome:                     m.Nome,
		TaxaPercentual:           m.TaxaPercentual,
		TaxaFixa:                 m.TaxaFixa,
		PermiteParcelamento:      m.PermiteParcelamento,
		MaxParcelas:              m.MaxParcelas,
		DiasRecebimentoBase:      m.DiasRecebimentoBase,
		DiasIncrementoPorParcela: m.DiasIncrementoPorParcela,
		OrdemExibicao:            m.OrdemExibicao,
		Ativo:                    m.Ativo,
	}
}

func cotacaoToResponse(c *CotacaoLiquidacao) *dto.CotacaoResponse {
	parcelas := make([]dto.ParcelaResponse, 0, len(c.Recebiveis))
	for _, p := range c.Recebiveis {
		parcelas = append(parcelas, dto.ParcelaResponse{
			NumeroParcela:  p.Numero,
			Valor:          p.Valor,
			DataVencimento: p.Vencimento.Format("2006-01-02"),
		})
	}
	return &dto.CotacaoResponse{
		ValorBruto:   c.ValorBruto,
		Parcelas:     c.Parcelas,
		TaxaTotal:    c.TaxaTotal,
		ValorLiquido: c.ValorLiquido,
		Recebiveis:   parcelas,
	}
}
