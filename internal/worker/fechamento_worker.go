package worker

// fechamento_worker.go
// Processes closing-summary jobs from QueueFechamento: mails the supervisor
// the apurado/declarado difference of a just-closed cash session.

import (
	"context"
	"encoding/json"
	"fmt"

	"caixapos/internal/infra"

	"github.com/rs/zerolog/log"
)

// FechamentoWorker sends the closing summary email for each closed session.
type FechamentoWorker struct {
	mailer *infra.Mailer
	to     string
}

// NewFechamentoWorker creates the worker. to is the supervisor address; when
// empty, jobs are acknowledged without sending.
func NewFechamentoWorker(mailer *infra.Mailer, to string) *FechamentoWorker {
	return &FechamentoWorker{mailer: mailer, to: to}
}

func (w *FechamentoWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload FechamentoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("fechamento_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}
	if w.to == "" {
		log.Debug().Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: no supervisor email configured — skipping")
		return nil
	}

	subject := fmt.Sprintf("Fechamento de caixa %s (%s)", payload.SessaoID, payload.Classificacao)
	body := fmt.Sprintf(
		"Sessão: %s\nOperador: %s\nSaldo apurado: %s\nDiferença: %s (%s)\n",
		payload.SessaoID, payload.OperadorID,
		payload.SaldoApurado, payload.Diferenca, payload.Classificacao,
	)

	if err := w.mailer.Send(w.to, subject, body); err != nil {
		log.Error().Err(err).Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: failed to send email")
		return err
	}
	log.Info().Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: summary sent")
	return nil
}
