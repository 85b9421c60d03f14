package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/dto"
	"gestorpdv/internal/model"
	"gestorpdv/internal/repository"
	"gestorpdv/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaixaRepo guarda as sessões em memória. O mutex cumpre o papel da
// transação do Postgres: WithTx serializa todas as mutações, exatamente como
// o advisory lock e o row lock fazem em produção.
type fakeCaixaRepo struct {
	mu      sync.Mutex
	sessoes map[uuid.UUID]*model.SessaoCaixa
}

var _ repository.CaixaRepository = (*fakeCaixaRepo)(nil)
var _ repository.CaixaRepository = caixaTx{}

func newFakeCaixaRepo() *fakeCaixaRepo {
	return &fakeCaixaRepo{sessoes: make(map[uuid.UUID]*model.SessaoCaixa)}
}

func (f *fakeCaixaRepo) WithTx(ctx context.Context, fn func(tx repository.CaixaRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(caixaTx{f})
}

func (f *fakeCaixaRepo) LockOperador(ctx context.Context, operadorID uuid.UUID) error {
	return nil
}

func (f *fakeCaixaRepo) CreateSessao(ctx context.Context, s *model.SessaoCaixa) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return caixaTx{f}.CreateSessao(ctx, s)
}

func (f *fakeCaixaRepo) FindSessaoAbertaPorOperador(ctx context.Context, operadorID uuid.UUID) (*model.SessaoCaixa, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return caixaTx{f}.FindSessaoAbertaPorOperador(ctx, operadorID)
}

func (f *fakeCaixaRepo) FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return caixaTx{f}.FindSessaoByID(ctx, id)
}

func (f *fakeCaixaRepo) FindSessaoByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return caixaTx{f}.FindSessaoByID(ctx, id)
}

func (f *fakeCaixaRepo) UpdateSessao(ctx context.Context, s *model.SessaoCaixa) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return caixaTx{f}.UpdateSessao(ctx, s)
}

func (f *fakeCaixaRepo) ListSessoesFechadas(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return caixaTx{f}.ListSessoesFechadas(ctx, page, limit)
}

// caixaTx é a visão "dentro da transação": acessa o mapa sem travar de novo,
// pois WithTx já segura o mutex.
type caixaTx struct{ f *fakeCaixaRepo }

func (t caixaTx) WithTx(ctx context.Context, fn func(tx repository.CaixaRepository) error) error {
	return fn(t)
}

func (t caixaTx) LockOperador(ctx context.Context, operadorID uuid.UUID) error { return nil }

func (t caixaTx) CreateSessao(ctx context.Context, s *model.SessaoCaixa) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	t.f.sessoes[s.ID] = &cp
	return nil
}

func (t caixaTx) FindSessaoAbertaPorOperador(ctx context.Context, operadorID uuid.UUID) (*model.SessaoCaixa, error) {
	for _, s := range t.f.sessoes {
		if s.OperadorID == operadorID && s.Status == model.SessaoAberta {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (t caixaTx) FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	s, ok := t.f.sessoes[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (t caixaTx) FindSessaoByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	return t.FindSessaoByID(ctx, id)
}

func (t caixaTx) UpdateSessao(ctx context.Context, s *model.SessaoCaixa) error {
	cp := *s
	t.f.sessoes[s.ID] = &cp
	return nil
}

func (t caixaTx) ListSessoesFechadas(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error) {
	var fechadas []model.SessaoCaixa
	for _, s := range t.f.sessoes {
		if s.Status == model.SessaoFechada {
			fechadas = append(fechadas, *s)
		}
	}
	total := int64(len(fechadas))
	ini := (page - 1) * limit
	if ini >= len(fechadas) {
		return nil, total, nil
	}
	fim := ini + limit
	if fim > len(fechadas) {
		fim = len(fechadas)
	}
	return fechadas[ini:fim], total, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func abrirSessao(t *testing.T, svc service.CaixaService, operadorID uuid.UUID, valorInicial string) *dto.SessaoCaixaResponse {
	t.Helper()
	v, err := decimal.NewFromString(valorInicial)
	require.NoError(t, err)
	resp, err := svc.Abrir(context.Background(), operadorID, dto.AbrirCaixaRequest{ValorInicial: v})
	require.NoError(t, err)
	return resp
}

func strPtr(s string) *string { return &s }

// ─── Abrir ───────────────────────────────────────────────────────────────────

func TestCaixa_Abrir(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	operador := uuid.New()

	resp := abrirSessao(t, svc, operador, "150.00")

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, operador.String(), resp.OperadorID)
	assert.Equal(t, model.SessaoAberta, resp.Status)
	assert.Equal(t, "150.00", resp.ValorInicial.StringFixed(2))
	assert.Equal(t, "150.00", resp.ValorEsperado.StringFixed(2))
	assert.Equal(t, 0, resp.QuantidadeVendas)
	assert.NotEmpty(t, resp.OpenedAt)
	assert.Nil(t, resp.ClosedAt)
}

func TestCaixa_AbrirValorInicialNegativo(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		ValorInicial: decimal.NewFromInt(-1),
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidAmount))
}

func TestCaixa_AbrirDuasVezesConflita(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	operador := uuid.New()

	abrirSessao(t, svc, operador, "100.00")

	_, err := svc.Abrir(context.Background(), operador, dto.AbrirCaixaRequest{
		ValorInicial: decimal.NewFromInt(50),
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeSessionAlreadyOpen))
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestCaixa_OutroOperadorPodeAbrir(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)

	abrirSessao(t, svc, uuid.New(), "100.00")
	abrirSessao(t, svc, uuid.New(), "200.00")
}

func TestCaixa_AberturasConcorrentes(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	operador := uuid.New()

	const n = 16
	var wg sync.WaitGroup
	resultados := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Abrir(context.Background(), operador, dto.AbrirCaixaRequest{
				ValorInicial: decimal.NewFromInt(100),
			})
			resultados <- err
		}()
	}
	wg.Wait()
	close(resultados)

	sucessos, conflitos := 0, 0
	for err := range resultados {
		switch {
		case err == nil:
			sucessos++
		case apperror.IsCode(err, apperror.CodeSessionAlreadyOpen):
			conflitos++
		default:
			t.Fatalf("erro inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, sucessos, "exatamente uma abertura deve vencer")
	assert.Equal(t, n-1, conflitos)
}

// ─── RegistrarVenda / EstornarVenda ─────────────────────────────────────────

func TestCaixa_RegistrarVendaAcumulaTotais(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	operador := uuid.New()
	resp := abrirSessao(t, svc, operador, "100.00")
	sessaoID := uuid.MustParse(resp.ID)

	require.NoError(t, svc.RegistrarVenda(context.Background(), sessaoID, decimal.NewFromInt(150)))
	require.NoError(t, svc.RegistrarVenda(context.Background(), sessaoID, decimal.NewFromInt(100)))

	atual, err := svc.ObterAtual(context.Background(), operador)
	require.NoError(t, err)
	assert.Equal(t, "250.00", atual.TotalVendas.StringFixed(2))
	assert.Equal(t, 2, atual.QuantidadeVendas)
	assert.Equal(t, "350.00", atual.ValorEsperado.StringFixed(2))
}

func TestCaixa_RegistrarVendaValorInvalido(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	resp := abrirSessao(t, svc, uuid.New(), "100.00")

	err := svc.RegistrarVenda(context.Background(), uuid.MustParse(resp.ID), decimal.Zero)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidAmount))
}

func TestCaixa_RegistrarVendaSessaoInexistente(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)

	err := svc.RegistrarVenda(context.Background(), uuid.New(), decimal.NewFromInt(10))
	assert.True(t, apperror.IsCode(err, apperror.CodeSessionNotFound))
}

func TestCaixa_EstornarVendaReverteTotais(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	operador := uuid.New()
	resp := abrirSessao(t, svc, operador, "100.00")
	sessaoID := uuid.MustParse(resp.ID)

	require.NoError(t, svc.RegistrarVenda(context.Background(), sessaoID, decimal.NewFromInt(80)))
	require.NoError(t, svc.EstornarVenda(context.Background(), sessaoID, decimal.NewFromInt(80)))

	atual, err := svc.ObterAtual(context.Background(), operador)
	require.NoError(t, err)
	assert.Equal(t, "0.00", atual.TotalVendas.StringFixed(2))
	assert.Equal(t, 0, atual.QuantidadeVendas)
}

// ─── Fechar ──────────────────────────────────────────────────────────────────

func TestCaixa_FecharComDiferencaExigeJustificativa(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	resp := abrirSessao(t, svc, uuid.New(), "100.00")
	sessaoID := uuid.MustParse(resp.ID)

	require.NoError(t, svc.RegistrarVenda(context.Background(), sessaoID, decimal.NewFromInt(250)))

	// esperado 350.00; contado 345.00 → diferença -5.00
	_, err := svc.Fechar(context.Background(), dto.FecharCaixaRequest{
		SessaoID:   resp.ID,
		ValorFinal: decimal.NewFromInt(345),
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeMissingJustification))

	fechada, err := svc.Fechar(context.Background(), dto.FecharCaixaRequest{
		SessaoID:    resp.ID,
		ValorFinal:  decimal.NewFromInt(345),
		Observacoes: strPtr("Troco entregue a maior durante o turno"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessaoFechada, fechada.Status)
	require.NotNil(t, fechada.Diferenca)
	assert.Equal(t, "-5.00", fechada.Diferenca.StringFixed(2))
	require.NotNil(t, fechada.ValorFinal)
	assert.Equal(t, "345.00", fechada.ValorFinal.StringFixed(2))
	assert.NotNil(t, fechada.ClosedAt)
}

func TestCaixa_FecharDentroDaTolerancia(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	resp := abrirSessao(t, svc, uuid.New(), "100.00")

	// diferença de exatamente 0.01 dispensa justificativa
	v, _ := decimal.NewFromString("100.01")
	fechada, err := svc.Fechar(context.Background(), dto.FecharCaixaRequest{
		SessaoID:   resp.ID,
		ValorFinal: v,
	})
	require.NoError(t, err)
	require.NotNil(t, fechada.Diferenca)
	assert.Equal(t, "0.01", fechada.Diferenca.StringFixed(2))
}

func TestCaixa_FecharExato(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	resp := abrirSessao(t, svc, uuid.New(), "100.00")

	fechada, err := svc.Fechar(context.Background(), dto.FecharCaixaRequest{
		SessaoID:   resp.ID,
		ValorFinal: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.NotNil(t, fechada.Diferenca)
	assert.True(t, fechada.Diferenca.IsZero())
}

func TestCaixa_FecharDuasVezes(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	resp := abrirSessao(t, svc, uuid.New(), "100.00")
	req := dto.FecharCaixaRequest{SessaoID: resp.ID, ValorFinal: decimal.NewFromInt(100)}

	_, err := svc.Fechar(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), req)
	assert.True(t, apperror.IsCode(err, apperror.CodeAlreadyClosed))
}

func TestCaixa_VendaAposFechamento(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	resp := abrirSessao(t, svc, uuid.New(), "100.00")
	sessaoID := uuid.MustParse(resp.ID)

	_, err := svc.Fechar(context.Background(), dto.FecharCaixaRequest{
		SessaoID: resp.ID, ValorFinal: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	err = svc.RegistrarVenda(context.Background(), sessaoID, decimal.NewFromInt(50))
	assert.True(t, apperror.IsCode(err, apperror.CodeSessionClosed))

	err = svc.EstornarVenda(context.Background(), sessaoID, decimal.NewFromInt(50))
	assert.True(t, apperror.IsCode(err, apperror.CodeSessionClosed))
}

// ─── Consultas ───────────────────────────────────────────────────────────────

func TestCaixa_ObterAtualSemSessao(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)

	_, err := svc.ObterAtual(context.Background(), uuid.New())
	assert.True(t, apperror.IsCode(err, apperror.CodeNoOpenSession))
}

func TestCaixa_ObterSessaoInexistente(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)

	_, err := svc.ObterSessao(context.Background(), uuid.New())
	assert.True(t, apperror.IsCode(err, apperror.CodeSessionNotFound))
}

func TestCaixa_HistoricoSoListaFechadas(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)

	aberta := abrirSessao(t, svc, uuid.New(), "100.00")
	fechavel := abrirSessao(t, svc, uuid.New(), "200.00")
	_, err := svc.Fechar(context.Background(), dto.FecharCaixaRequest{
		SessaoID: fechavel.ID, ValorFinal: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	hist, err := svc.Historico(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), hist.Total)
	require.Len(t, hist.Data, 1)
	assert.Equal(t, fechavel.ID, hist.Data[0].ID)
	assert.NotEqual(t, aberta.ID, hist.Data[0].ID)

	// timestamps de fechamento preenchidos no histórico
	assert.NotNil(t, hist.Data[0].ClosedAt)
	if hist.Data[0].ClosedAt != nil {
		_, perr := time.Parse(time.RFC3339, *hist.Data[0].ClosedAt)
		assert.NoError(t, perr)
	}
}
