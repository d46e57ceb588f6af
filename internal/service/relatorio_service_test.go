package service_test

import (
	"context"
	"testing"
	"time"

	"caixapos/internal/model"
	"caixapos/internal/repository"
	"caixapos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelatorioRepo struct {
	sessoes   repository.LinhaSessoes
	fluxo     repository.LinhaFluxo
	operators []repository.LinhaOperador
	metodos   []repository.LinhaMetodo
}

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func (r *fakeRelatorioRepo) ContarSessoes(_ context.Context, _, _ time.Time, _ *uuid.UUID) (repository.LinhaSessoes, error) {
	return r.sessoes, nil
}

func (r *fakeRelatorioRepo) FluxoPeriodo(_ context.Context, _, _ time.Time, _ *uuid.UUID) (repository.LinhaFluxo, error) {
	return r.fluxo, nil
}

func (r *fakeRelatorioRepo) FluxoPorOperador(_ context.Context, _, _ time.Time) ([]repository.LinhaOperador, error) {
	return r.operators, nil
}

func (r *fakeRelatorioRepo) EntradasPorMetodo(_ context.Context, _, _ time.Time, _ *uuid.UUID) ([]repository.LinhaMetodo, error) {
	return r.metodos, nil
}

func TestConsolidado(t *testing.T) {
	operador := uuid.New()
	repo := &fakeRelatorioRepo{
		sessoes: repository.LinhaSessoes{Total: 3, Abertas: 1, Fechadas: 2},
		fluxo:   repository.LinhaFluxo{Entradas: nd("150.00"), Saidas: nd("30.00")},
		operators: []repository.LinhaOperador{
			{OperadorID: operador, Sessoes: 3, Entradas: nd("150.00"), Saidas: nd("30.00")},
		},
		metodos: []repository.LinhaMetodo{
			{Metodo: model.MetodoDinheiro, Entradas: nd("90.00")},
			{Metodo: model.MetodoPix, Entradas: nd("60.00")},
		},
	}
	svc := service.NewRelatorioService(repo, nil, 0)

	de := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	resp, err := svc.Consolidar(context.Background(), de, ate, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.Totais.Sessoes)
	assert.Equal(t, int64(1), resp.Totais.SessoesAbertas)
	assert.Equal(t, int64(2), resp.Totais.SessoesFechadas)
	assert.True(t, resp.Totais.TotalEntradas.Equal(d("150.00")))
	assert.True(t, resp.Totais.TotalSaidas.Equal(d("30.00")))
	assert.True(t, resp.Totais.SaldoLiquido.Equal(d("120.00")))

	require.Len(t, resp.PorOperador, 1)
	assert.Equal(t, operador.String(), resp.PorOperador[0].OperadorID)
	assert.True(t, resp.PorOperador[0].SaldoLiquido.Equal(d("120.00")))

	require.Len(t, resp.PorMetodo, 2)
	assert.True(t, resp.PorMetodo[0].Percentual.Equal(d("60")))
	assert.True(t, resp.PorMetodo[1].Percentual.Equal(d("40")))

	soma := decimal.Zero
	for _, m := range resp.PorMetodo {
		soma = soma.Add(m.Percentual)
	}
	assert.True(t, soma.Equal(d("100")), "percentuais somam 100%%")
}

func TestConsolidadoSemEntradas(t *testing.T) {
	repo := &fakeRelatorioRepo{
		sessoes: repository.LinhaSessoes{Total: 1, Abertas: 1},
		fluxo:   repository.LinhaFluxo{},
		metodos: []repository.LinhaMetodo{
			{Metodo: model.MetodoDinheiro, Entradas: decimal.NullDecimal{}},
		},
	}
	svc := service.NewRelatorioService(repo, nil, 0)

	resp, err := svc.Consolidar(context.Background(), time.Now().Add(-time.Hour), time.Now(), nil)
	require.NoError(t, err)

	assert.True(t, resp.Totais.TotalEntradas.IsZero())
	assert.True(t, resp.Totais.SaldoLiquido.IsZero())
	require.Len(t, resp.PorMetodo, 1)
	assert.True(t, resp.PorMetodo[0].Percentual.IsZero(), "sem entradas, percentual é 0 e não erro de divisão")
}

func TestConsolidadoFiltradoPorOperador(t *testing.T) {
	operador := uuid.New()
	repo := &fakeRelatorioRepo{
		sessoes: repository.LinhaSessoes{Total: 2, Fechadas: 2},
		fluxo:   repository.LinhaFluxo{Entradas: nd("80.00"), Saidas: nd("20.00")},
		operators: []repository.LinhaOperador{
			{OperadorID: operador, Sessoes: 2, Entradas: nd("80.00"), Saidas: nd("20.00")},
		},
	}
	svc := service.NewRelatorioService(repo, nil, 0)

	resp, err := svc.Consolidar(context.Background(), time.Now().Add(-time.Hour), time.Now(), &operador)
	require.NoError(t, err)

	require.NotNil(t, resp.OperadorID)
	assert.Equal(t, operador.String(), *resp.OperadorID)
	// A quebra por operador só existe na visão sem filtro
	assert.Empty(t, resp.PorOperador)
	assert.True(t, resp.Totais.SaldoLiquido.Equal(d("60.00")))
}
