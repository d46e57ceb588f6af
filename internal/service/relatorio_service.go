package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"caixapos/internal/dto"
	"caixapos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var cem = decimal.NewFromInt(100)

type RelatorioService interface {
	Consolidar(ctx context.Context, de, ate time.Time, operadorID *uuid.UUID) (*dto.ConsolidadoResponse, error)
}

type relatorioService struct {
	repo     repository.RelatorioRepository
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewRelatorioService builds the read-only consolidation engine. rdb may be
// nil (unit tests) — caching is then disabled.
func NewRelatorioService(repo repository.RelatorioRepository, rdb *redis.Client, cacheTTL time.Duration) RelatorioService {
	return &relatorioService{repo: repo, rdb: rdb, cacheTTL: cacheTTL}
}

// Consolidar aggregates sessions and movements for the period. It is a pure
// read: gross entradas/saidas across every session in the window, never
// adjusted by any session's opening balance.
func (s *relatorioService) Consolidar(ctx context.Context, de, ate time.Time, operadorID *uuid.UUID) (*dto.ConsolidadoResponse, error) {
	cacheKey := s.cacheKey(de, ate, operadorID)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	sessoes, err := s.repo.ContarSessoes(ctx, de, ate, operadorID)
	if err != nil {
		return nil, err
	}
	fluxo, err := s.repo.FluxoPeriodo(ctx, de, ate, operadorID)
	if err != nil {
		return nil, err
	}

	entradas := fluxo.Entradas.Decimal
	saidas := fluxo.Saidas.Decimal

	resp := &dto.ConsolidadoResponse{
		De:  de.UTC().Format(time.RFC3339),
		Ate: ate.UTC().Format(time.RFC3339),
		Totais: dto.TotaisConsolidados{
			Sessoes:         sessoes.Total,
			SessoesAbertas:  sessoes.Abertas,
			SessoesFechadas: sessoes.Fechadas,
			TotalEntradas:   entradas,
			TotalSaidas:     saidas,
			SaldoLiquido:    entradas.Sub(saidas),
		},
		PorOperador: []dto.TotalPorOperador{},
		PorMetodo:   []dto.TotalPorMetodo{},
	}
	if operadorID != nil {
		id := operadorID.String()
		resp.OperadorID = &id
	}

	// Per-operator breakdown only makes sense for the unfiltered view
	if operadorID == nil {
		porOperador, err := s.repo.FluxoPorOperador(ctx, de, ate)
		if err != nil {
			return nil, err
		}
		for _, linha := range porOperador {
			e := linha.Entradas.Decimal
			sd := linha.Saidas.Decimal
			resp.PorOperador = append(resp.PorOperador, dto.TotalPorOperador{
				OperadorID:   linha.OperadorID.String(),
				Sessoes:      linha.Sessoes,
				Entradas:     e,
				Saidas:       sd,
				SaldoLiquido: e.Sub(sd),
			})
		}
	}

	porMetodo, err := s.repo.EntradasPorMetodo(ctx, de, ate, operadorID)
	if err != nil {
		return nil, err
	}
	for _, linha := range porMetodo {
		valor := linha.Entradas.Decimal
		// totalEntradas = 0 yields 0% for every bucket, never a division error
		percentual := decimal.Zero
		if entradas.IsPositive() {
			percentual = valor.Div(entradas).Mul(cem).Round(2)
		}
		resp.PorMetodo = append(resp.PorMetodo, dto.TotalPorMetodo{
			Metodo:     linha.Metodo,
			Entradas:   valor,
			Percentual: percentual,
		})
	}

	s.toCache(ctx, cacheKey, resp)
	return resp, nil
}

func (s *relatorioService) cacheKey(de, ate time.Time, operadorID *uuid.UUID) string {
	op := "todos"
	if operadorID != nil {
		op = operadorID.String()
	}
	return fmt.Sprintf("relatorio:consolidado:%d:%d:%s", de.Unix(), ate.Unix(), op)
}

func (s *relatorioService) fromCache(ctx context.Context, key string) *dto.ConsolidadoResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil // miss or redis down — fall through to the DB
	}
	var resp dto.ConsolidadoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *relatorioService) toCache(ctx context.Context, key string, resp *dto.ConsolidadoResponse) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("relatorio: cache write failed")
	}
}
