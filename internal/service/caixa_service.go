package service

import (
	"context"
	"strings"
	"time"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/dto"
	"gestorpdv/internal/model"
	"gestorpdv/internal/repository"
	"gestorpdv/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// toleranciaDiferenca is the one-cent allowance between counted and expected
// cash before a closing justification becomes mandatory.
var toleranciaDiferenca = decimal.New(1, -2)

type CaixaService interface {
	Abrir(ctx context.Context, operadorID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error)
	// RegistrarVenda posts a completed sale total into the open session.
	// Called by VendaService on every confirmed sale.
	RegistrarVenda(ctx context.Context, sessaoID uuid.UUID, valor decimal.Decimal) error
	// EstornarVenda backs a previously posted total out of a still-open
	// session (sale rollback or anulação).
	EstornarVenda(ctx context.Context, sessaoID uuid.UUID, valor decimal.Decimal) error
	ObterAtual(ctx context.Context, operadorID uuid.UUID) (*dto.SessaoCaixaResponse, error)
	ObterSessao(ctx context.Context, id uuid.UUID) (*dto.SessaoCaixaResponse, error)
	Fechar(ctx context.Context, req dto.FecharCaixaRequest) (*dto.SessaoCaixaResponse, error)
	Historico(ctx context.Context, page, limit int) (*dto.HistoricoCaixaResponse, error)
}

type caixaService struct {
	repo       repository.CaixaRepository
	dispatcher *worker.Dispatcher
}

// NewCaixaService builds the session manager. dispatcher may be nil (unit
// tests); the closing report job is then skipped.
func NewCaixaService(repo repository.CaixaRepository, dispatcher *worker.Dispatcher) CaixaService {
	return &caixaService{repo: repo, dispatcher: dispatcher}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *caixaService) Abrir(ctx context.Context, operadorID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error) {
	if req.ValorInicial.IsNegative() {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, "valor_inicial",
			"Valor inicial não pode ser negativo")
	}

	var sessao *model.SessaoCaixa
	err := s.repo.WithTx(ctx, func(tx repository.CaixaRepository) error {
		// The advisory lock serializes concurrent opens for this operator;
		// the check below is therefore race-free. Released on commit/rollback.
		if err := tx.LockOperador(ctx, operadorID); err != nil {
			return err
		}
		existente, err := tx.FindSessaoAbertaPorOperador(ctx, operadorID)
		if err != nil {
			return err
		}
		if existente != nil {
			return apperror.Conflict(apperror.CodeSessionAlreadyOpen,
				"Já existe um caixa aberto para este operador")
		}
		sessao = &model.SessaoCaixa{
			OperadorID:          operadorID,
			ValorInicial:        req.ValorInicial,
			Status:              model.SessaoAberta,
			TotalVendas:         decimal.Zero,
			ObservacoesAbertura: req.Observacoes,
			OpenedAt:            time.Now().UTC(),
		}
		return tx.CreateSessao(ctx, sessao)
	})
	if err != nil {
		return nil, err
	}
	return sessaoToResponse(sessao), nil
}

// ── RegistrarVenda / EstornarVenda ───────────────────────────────────────────
// Both take the session row lock, so sale postings serialize against Fechar:
// a posting either lands before the close reads the totals or sees
// status=fechada and fails with SESSION_CLOSED. The reverse ordering (a sale
// slipping in after the close read) is structurally impossible.

func (s *caixaService) RegistrarVenda(ctx context.Context, sessaoID uuid.UUID, valor decimal.Decimal) error {
	if !valor.IsPositive() {
		return apperror.Validation(apperror.CodeInvalidAmount, "valor",
			"Valor da venda deve ser maior que zero")
	}
	return s.repo.WithTx(ctx, func(tx repository.CaixaRepository) error {
		sessao, err := tx.FindSessaoByIDForUpdate(ctx, sessaoID)
		if err != nil {
			return err
		}
		if sessao == nil {
			return apperror.NotFound(apperror.CodeSessionNotFound, "Sessão de caixa não encontrada")
		}
		if !sessao.Aberta() {
			return apperror.Conflict(apperror.CodeSessionClosed,
				"Sessão de caixa já está fechada")
		}
		sessao.TotalVendas = sessao.TotalVendas.Add(valor)
		sessao.QuantidadeVendas++
		return tx.UpdateSessao(ctx, sessao)
	})
}

func (s *caixaService) EstornarVenda(ctx context.Context, sessaoID uuid.UUID, valor decimal.Decimal) error {
	if !valor.IsPositive() {
		return apperror.Validation(apperror.CodeInvalidAmount, "valor",
			"Valor do estorno deve ser maior que zero")
	}
	return s.repo.WithTx(ctx, func(tx repository.CaixaRepository) error {
		sessao, err := tx.FindSessaoByIDForUpdate(ctx, sessaoID)
		if err != nil {
			return err
		}
		if sessao == nil {
			return apperror.NotFound(apperror.CodeSessionNotFound, "Sessão de caixa não encontrada")
		}
		if !sessao.Aberta() {
			return apperror.Conflict(apperror.CodeSessionClosed,
				"Sessão de caixa já está fechada; estorno não permitido")
		}
		sessao.TotalVendas = sessao.TotalVendas.Sub(valor)
		sessao.QuantidadeVendas--
		return tx.UpdateSessao(ctx, sessao)
	})
}

// ── ObterAtual ───────────────────────────────────────────────────────────────
// The PDV front end calls this before allowing sales; NO_OPEN_SESSION is the
// signal that forces the operator through Abrir first.

func (s *caixaService) ObterAtual(ctx context.Context, operadorID uuid.UUID) (*dto.SessaoCaixaResponse, error) {
	sessao, err := s.repo.FindSessaoAbertaPorOperador(ctx, operadorID)
	if err != nil {
		return nil, err
	}
	if sessao == nil {
		return nil, apperror.NotFound(apperror.CodeNoOpenSession,
			"Nenhum caixa aberto para este operador")
	}
	return sessaoToResponse(sessao), nil
}

func (s *caixaService) ObterSessao(ctx context.Context, id uuid.UUID) (*dto.SessaoCaixaResponse, error) {
	sessao, err := s.repo.FindSessaoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sessao == nil {
		return nil, apperror.NotFound(apperror.CodeSessionNotFound, "Sessão de caixa não encontrada")
	}
	return sessaoToResponse(sessao), nil
}

// ── Fechar ───────────────────────────────────────────────────────────────────

func (s *caixaService) Fechar(ctx context.Context, req dto.FecharCaixaRequest) (*dto.SessaoCaixaResponse, error) {
	sessaoID, err := uuid.Parse(req.SessaoID)
	if err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, "sessao_id", "sessao_id inválido")
	}
	if req.ValorFinal.IsNegative() {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, "valor_final",
			"Valor final não pode ser negativo")
	}

	var sessao *model.SessaoCaixa
	err = s.repo.WithTx(ctx, func(tx repository.CaixaRepository) error {
		sessao, err = tx.FindSessaoByIDForUpdate(ctx, sessaoID)
		if err != nil {
			return err
		}
		if sessao == nil {
			return apperror.NotFound(apperror.CodeSessionNotFound, "Sessão de caixa não encontrada")
		}
		if !sessao.Aberta() {
			return apperror.Conflict(apperror.CodeAlreadyClosed,
				"Sessão de caixa já foi fechada")
		}

		diferenca := req.ValorFinal.Sub(sessao.ValorEsperado())
		if diferenca.Abs().GreaterThan(toleranciaDiferenca) && justificativaVazia(req.Observacoes) {
			return apperror.Validation(apperror.CodeMissingJustification, "observacoes",
				"Diferença de caixa exige justificativa no fechamento")
		}

		agora := time.Now().UTC()
		sessao.Status = model.SessaoFechada
		sessao.ValorFinal = &req.ValorFinal
		sessao.Diferenca = &diferenca
		sessao.ObservacoesFechamento = req.Observacoes
		sessao.ClosedAt = &agora
		return tx.UpdateSessao(ctx, sessao)
	})
	if err != nil {
		return nil, err
	}

	// Closing report job — best effort, the close itself already committed.
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueFechamento(ctx, worker.FechamentoJobPayload{
			SessaoID: sessao.ID.String(),
		}); err != nil {
			log.Warn().Err(err).Str("sessao_id", sessao.ID.String()).
				Msg("caixa: falha ao enfileirar relatório de fechamento")
		}
	}

	return sessaoToResponse(sessao), nil
}

// ── Historico ────────────────────────────────────────────────────────────────

func (s *caixaService) Historico(ctx context.Context, page, limit int) (*dto.HistoricoCaixaResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessoes, total, err := s.repo.ListSessoesFechadas(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SessaoCaixaResponse, 0, len(sessoes))
	for i := range sessoes {
		data = append(data, *sessaoToResponse(&sessoes[i]))
	}
	return &dto.HistoricoCaixaResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func justificativaVazia(obs *string) bool {
	return obs == nil || strings.TrimSpace(*obs) == ""
}

func sessaoToResponse(s *model.SessaoCaixa) *dto.SessaoCaixaResponse {
	resp := &dto.SessaoCaixaResponse{
		ID:                    s.ID.String(),
		OperadorID:            s.OperadorID.String(),
		Status:                s.Status,
		ValorInicial:          s.ValorInicial,
		TotalVendas:           s.TotalVendas,
		QuantidadeVendas:      s.QuantidadeVendas,
		ValorEsperado:         s.ValorEsperado(),
		ValorFinal:            s.ValorFinal,
		Diferenca:             s.Diferenca,
		ObservacoesAbertura:   s.ObservacoesAbertura,
		ObservacoesFechamento: s.ObservacoesFechamento,
		OpenedAt:              s.OpenedAt.UTC().Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
