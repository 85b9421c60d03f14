package service

import (
	"context"
	"fmt"
	"time"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/dto"
	"gestorpdv/internal/model"
	"gestorpdv/internal/repository"
	"gestorpdv/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VendaService interface {
	Registrar(ctx context.Context, operadorID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	Anular(ctx context.Context, id uuid.UUID, motivo string) error
	Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error)
	Listar(ctx context.Context, filter repository.VendaFilter) (*dto.VendaListResponse, error)
}

type vendaService struct {
	repo        repository.VendaRepository
	produtoRepo repository.ProdutoRepository
	caixa       CaixaService
	pagamento   PagamentoService
	receber     ReceberService
	dispatcher  *worker.Dispatcher
	agora       func() time.Time
}

func NewVendaService(
	repo repository.VendaRepository,
	produtoRepo repository.ProdutoRepository,
	caixa CaixaService,
	pagamento PagamentoService,
	receber ReceberService,
	dispatcher *worker.Dispatcher,
) VendaService {
	return &vendaService{
		repo:        repo,
		produtoRepo: produtoRepo,
		caixa:       caixa,
		pagamento:   pagamento,
		receber:     receber,
		dispatcher:  dispatcher,
		agora:       time.Now,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Registrar ────────────────────────────────────────────────────────────────
// PDV checkout:
//  1. resolve products and compute the gross total (pre-flight, outside TX)
//  2. quote the settlement for the chosen method/parcelas
//  3. post the total into the cash session — the accept/reject point; a
//     closed session rejects the sale here and nothing was written yet
//  4. TX: next ticket, persist venda + items, schedule receivables
//  5. on TX failure, back the posting out of the session (compensation)
//  6. enqueue the receipt email (best effort)

func (s *vendaService) Registrar(ctx context.Context, operadorID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	sessaoID, err := uuid.Parse(req.SessaoID)
	if err != nil {
		return nil, apperror.Validation(apperror.CodeSessionNotFound, "sessao_id", "sessao_id inválido")
	}
	metodoID, err := uuid.Parse(req.MetodoID)
	if err != nil {
		return nil, apperror.Validation(apperror.CodeMethodNotFound, "metodo_id", "metodo_id inválido")
	}

	type itemResolvido struct {
		produtoID uuid.UUID
		nome      string
		preco     decimal.Decimal
		qtd       int
		subtotal  decimal.Decimal
	}

	resolvidos := make([]itemResolvido, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProdutoID)
		if err != nil {
			return nil, apperror.Validation(apperror.CodeInvalidAmount, "produto_id", "produto_id inválido")
		}
		p, err := s.produtoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if p == nil || !p.Ativo {
			return nil, apperror.NotFound(apperror.CodeProductNotFound,
				fmt.Sprintf("Produto %s não encontrado ou inativo", item.ProdutoID))
		}
		subtotal := p.PrecoVenda.Mul(decimal.NewFromInt(int64(item.Quantidade)))
		total = total.Add(subtotal)
		resolvidos = append(resolvidos, itemResolvido{
			produtoID: pid, nome: p.Nome, preco: p.PrecoVenda,
			qtd: item.Quantidade, subtotal: subtotal,
		})
	}

	metodo, err := s.pagamento.ObterMetodo(ctx, metodoID)
	if err != nil {
		return nil, err
	}
	cotacao, err := CalcularLiquidacao(total, metodo, req.Parcelas, s.agora())
	if err != nil {
		return nil, err
	}

	// Accept/reject point: the session takes the sale atomically or rejects
	// it with SESSION_CLOSED before anything else is written.
	if err := s.caixa.RegistrarVenda(ctx, sessaoID, total); err != nil {
		return nil, err
	}

	var venda model.Venda
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticket, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}
		venda = model.Venda{
			NumeroTicket: ticket,
			SessaoID:     sessaoID,
			OperadorID:   operadorID,
			MetodoID:     metodoID,
			ValorBruto:   cotacao.ValorBruto,
			TaxaTotal:    cotacao.TaxaTotal,
			ValorLiquido: cotacao.ValorLiquido,
			Parcelas:     cotacao.Parcelas,
			Estado:       "concluida",
			ClienteEmail: req.ClienteEmail,
		}
		for _, r := range resolvidos {
			venda.Items = append(venda.Items, model.VendaItem{
				ProdutoID:     r.produtoID,
				Quantidade:    r.qtd,
				PrecoUnitario: r.preco,
				Subtotal:      r.subtotal,
			})
		}
		if err := s.repo.Create(ctx, tx, &venda); err != nil {
			return err
		}
		_, err = s.receber.Programar(ctx, tx, cotacao, venda.ID)
		return err
	})
	if txErr != nil {
		// Compensate the session posting; the session may have closed in the
		// meantime, in which case only the log remains to reconcile manually.
		if compErr := s.caixa.EstornarVenda(ctx, sessaoID, total); compErr != nil {
			log.Error().Err(compErr).Str("sessao_id", sessaoID.String()).
				Msg("venda: estorno de compensação falhou")
		}
		return nil, txErr
	}

	if s.dispatcher != nil && req.ClienteEmail != nil && *req.ClienteEmail != "" {
		if err := s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
			ToEmail: *req.ClienteEmail,
			Subject: fmt.Sprintf("Comprovante de compra — ticket %d", venda.NumeroTicket),
			Body:    fmt.Sprintf("Sua compra no valor de R$ %s foi registrada.", total.StringFixed(2)),
		}); err != nil {
			log.Warn().Err(err).Msg("venda: falha ao enfileirar e-mail de comprovante")
		}
	}

	resp := vendaToResponse(&venda, cotacao)
	for i, r := range resolvidos {
		resp.Items[i].Produto = r.nome
	}
	resp.Metodo = metodo.Nome
	return resp, nil
}

// ── Anular ───────────────────────────────────────────────────────────────────
// Reverses a completed sale: the posting is backed out of the session first
// (rejected with SESSION_CLOSED once the drawer closed — voiding then needs a
// supervisor ledger adjustment, out of band), then the sale is voided and its
// pending receivables cancelled.

func (s *vendaService) Anular(ctx context.Context, id uuid.UUID, motivo string) error {
	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if venda == nil {
		return apperror.NotFound(apperror.CodeSaleNotFound, "Venda não encontrada")
	}
	if venda.Estado == "anulada" {
		return apperror.Conflict(apperror.CodeSaleAlreadyVoided, "Venda já está anulada")
	}

	if err := s.caixa.EstornarVenda(ctx, venda.SessaoID, venda.ValorBruto); err != nil {
		return err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateEstadoTx(tx, id, "anulada", &motivo); err != nil {
			return err
		}
		return s.receber.CancelarPorVenda(tx, id)
	})
	if txErr != nil {
		// Re-post to keep the session consistent with the still-valid sale.
		if compErr := s.caixa.RegistrarVenda(ctx, venda.SessaoID, venda.ValorBruto); compErr != nil {
			log.Error().Err(compErr).Str("venda_id", id.String()).
				Msg("venda: reposição após falha de anulação falhou")
		}
		return txErr
	}
	return nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *vendaService) Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if venda == nil {
		return nil, apperror.NotFound(apperror.CodeSaleNotFound, "Venda não encontrada")
	}
	return vendaToResponse(venda, nil), nil
}

func (s *vendaService) Listar(ctx context.Context, filter repository.VendaFilter) (*dto.VendaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}
	vendas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VendaResponse, 0, len(vendas))
	for i := range vendas {
		data = append(data, *vendaToResponse(&vendas[i], nil))
	}
	return &dto.VendaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func vendaToResponse(v *model.Venda, cotacao *CotacaoLiquidacao) *dto.VendaResponse {
	items := make([]dto.ItemVendaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nome := ""
		if item.Produto != nil {
			nome = item.Produto.Nome
		}
		items = append(items, dto.ItemVendaResponse{
			Produto:       nome,
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
			Subtotal:      item.Subtotal,
		})
	}
	resp := &dto.VendaResponse{
		ID:           v.ID.String(),
		NumeroTicket: v.NumeroTicket,
		SessaoID:     v.SessaoID.String(),
		Parcelas:     v.Parcelas,
		ValorBruto:   v.ValorBruto,
		TaxaTotal:    v.TaxaTotal,
		ValorLiquido: v.ValorLiquido,
		Estado:       v.Estado,
		Items:        items,
		CreatedAt:    v.CreatedAt.UTC().Format(time.RFC3339),
	}
	if v.Metodo != nil {
		resp.Metodo = v.Metodo.Nome
	}
	if cotacao != nil {
		parcelas := make([]dto.ParcelaResponse, 0, len(cotacao.Recebiveis))
		for _, p := range cotacao.Recebiveis {
			parcelas = append(parcelas, dto.ParcelaResponse{
				NumeroParcela:  p.Numero,
				Valor:          p.Valor,
				DataVencimento: p.Vencimento.Format("2006-01-02"),
			})
		}
		resp.Recebiveis = parcelas
	}
	return resp
}
