package service_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"gestorpdv/internal/apperror"
	"gestorpdv/internal/model"
	"gestorpdv/internal/repository"
	"gestorpdv/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeContaRepo struct {
	contas map[uuid.UUID]*model.ContaReceber
}

var _ repository.ContaReceberRepository = (*fakeContaRepo)(nil)

func newFakeContaRepo() *fakeContaRepo {
	return &fakeContaRepo{contas: make(map[uuid.UUID]*model.ContaReceber)}
}

func (f *fakeContaRepo) CreateBatch(ctx context.Context, tx *gorm.DB, contas []model.ContaReceber) error {
	for i := range contas {
		if contas[i].ID == uuid.Nil {
			contas[i].ID = uuid.New()
		}
		cp := contas[i]
		f.contas[cp.ID] = &cp
	}
	return nil
}

func (f *fakeContaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ContaReceber, error) {
	c, ok := f.contas[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContaRepo) List(ctx context.Context, filter repository.ContaFilter) ([]model.ContaReceber, int64, error) {
	var out []model.ContaReceber
	for _, c := range f.contas {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.VenceAte != nil && c.DataVencimento.After(*filter.VenceAte) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DataVencimento.Equal(out[j].DataVencimento) {
			return out[i].DataVencimento.Before(out[j].DataVencimento)
		}
		return out[i].NumeroParcela < out[j].NumeroParcela
	})
	total := int64(len(out))
	ini := (filter.Page - 1) * filter.Limit
	if ini >= len(out) {
		return nil, total, nil
	}
	fim := ini + filter.Limit
	if fim > len(out) {
		fim = len(out)
	}
	return out[ini:fim], total, nil
}

func (f *fakeContaRepo) MarcarRecebida(ctx context.Context, id uuid.UUID, quando time.Time) (int64, error) {
	c, ok := f.contas[id]
	if !ok || c.Status != model.ContaPendente {
		return 0, nil
	}
	c.Status = model.ContaRecebida
	c.RecebidaEm = &quando
	return 1, nil
}

func (f *fakeContaRepo) CancelarPorVendaTx(tx *gorm.DB, vendaID uuid.UUID) error {
	for _, c := range f.contas {
		if c.VendaID == vendaID && c.Status == model.ContaPendente {
			c.Status = model.ContaCancelada
		}
	}
	return nil
}

func programarContas(t *testing.T, svc service.ReceberService, vendaID uuid.UUID, parcelas int) []model.ContaReceber {
	t.Helper()
	cotacao, err := service.CalcularLiquidacao(decimal.NewFromInt(300), metodoCredito(), parcelas, hoje)
	require.NoError(t, err)
	contas, err := svc.Programar(context.Background(), nil, cotacao, vendaID)
	require.NoError(t, err)
	return contas
}

func TestReceber_ProgramarCriaParcelasPendentes(t *testing.T) {
	repo := newFakeContaRepo()
	svc := service.NewReceberService(repo)
	vendaID := uuid.New()

	contas := programarContas(t, svc, vendaID, 3)
	require.Len(t, contas, 3)

	soma := decimal.Zero
	for i, c := range contas {
		assert.Equal(t, vendaID, c.VendaID)
		assert.Equal(t, i+1, c.NumeroParcela)
		assert.Equal(t, model.ContaPendente, c.Status)
		soma = soma.Add(c.Valor)
		if i > 0 {
			assert.True(t, contas[i-1].DataVencimento.Before(c.DataVencimento),
				"vencimentos devem ser crescentes")
		}
	}
	// líquido de 300 com taxa 3% + 0.30: 290.70
	assert.Equal(t, "290.70", soma.StringFixed(2))
}

func TestReceber_ListarFiltros(t *testing.T) {
	repo := newFakeContaRepo()
	svc := service.NewReceberService(repo)
	programarContas(t, svc, uuid.New(), 3)

	lista, err := svc.Listar(context.Background(), repository.ContaFilter{Status: model.ContaPendente})
	require.NoError(t, err)
	assert.Equal(t, int64(3), lista.Total)

	// só a primeira parcela vence até hoje+40d (vencimentos em +34, +64, +94)
	ate := hoje.AddDate(0, 0, 40)
	lista, err = svc.Listar(context.Background(), repository.ContaFilter{VenceAte: &ate})
	require.NoError(t, err)
	assert.Equal(t, int64(1), lista.Total)
	require.Len(t, lista.Data, 1)
	assert.Equal(t, 1, lista.Data[0].NumeroParcela)
}

func TestReceber_RegistrarRecebimento(t *testing.T) {
	repo := newFakeContaRepo()
	svc := service.NewReceberService(repo)
	contas := programarContas(t, svc, uuid.New(), 2)

	resp, err := svc.RegistrarRecebimento(context.Background(), contas[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContaRecebida, resp.Status)
	require.NotNil(t, resp.RecebidaEm)

	// segunda baixa na mesma conta perde a corrida do update guardado
	_, err = svc.RegistrarRecebimento(context.Background(), contas[0].ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeReceivableNotPending))
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestReceber_RegistrarRecebimentoInexistente(t *testing.T) {
	svc := service.NewReceberService(newFakeContaRepo())

	_, err := svc.RegistrarRecebimento(context.Background(), uuid.New())
	assert.True(t, apperror.IsCode(err, apperror.CodeReceivableNotFound))
}

func TestReceber_CancelarPorVendaPreservaRecebidas(t *testing.T) {
	repo := newFakeContaRepo()
	svc := service.NewReceberService(repo)
	vendaID := uuid.New()
	contas := programarContas(t, svc, vendaID, 3)

	// primeira parcela já recebida antes da anulação
	_, err := svc.RegistrarRecebimento(context.Background(), contas[0].ID)
	require.NoError(t, err)

	require.NoError(t, svc.CancelarPorVenda(nil, vendaID))

	recebida, err := repo.FindByID(context.Background(), contas[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContaRecebida, recebida.Status)

	for _, id := range []uuid.UUID{contas[1].ID, contas[2].ID} {
		c, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.ContaCancelada, c.Status)
	}
}
