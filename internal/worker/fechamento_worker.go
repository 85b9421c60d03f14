package worker

// fechamento_worker.go
// Processes closing-report jobs from QueueFechamento: renders the session
// closing report as PDF and mails it to the supervisor. SMTP is the flaky
// dependency here, so the send is retried with backoff and dead-lettered
// when exhausted.

import (
	"context"
	"encoding/json"
	"fmt"

	"gestorpdv/internal/infra"
	"gestorpdv/internal/model"
	"gestorpdv/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// FechamentoJobPayload is the job envelope sent to QueueFechamento.
type FechamentoJobPayload struct {
	SessaoID string `json:"sessao_id"`
}

// FechamentoWorker builds and delivers the closing report of a cash session.
type FechamentoWorker struct {
	caixaRepo       repository.CaixaRepository
	mailer          *infra.Mailer
	rdb             *redis.Client
	storagePath     string
	supervisorEmail string
}

func NewFechamentoWorker(
	caixaRepo repository.CaixaRepository,
	mailer *infra.Mailer,
	rdb *redis.Client,
	storagePath string,
	supervisorEmail string,
) *FechamentoWorker {
	return &FechamentoWorker{
		caixaRepo:       caixaRepo,
		mailer:          mailer,
		rdb:             rdb,
		storagePath:     storagePath,
		supervisorEmail: supervisorEmail,
	}
}

// Process handles a single fechamento job:
//  1. Parse FechamentoJobPayload from the job envelope
//  2. Fetch the closed session from DB
//  3. Render the closing report PDF
//  4. Mail it to the supervisor, 3 attempts with backoff, DLQ on exhaustion
func (w *FechamentoWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload FechamentoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("fechamento_worker: invalid payload")
		return
	}

	sessaoID, err := uuid.Parse(payload.SessaoID)
	if err != nil {
		log.Error().Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: invalid sessao_id")
		return
	}

	sessao, err := w.caixaRepo.FindSessaoByID(ctx, sessaoID)
	if err != nil || sessao == nil {
		log.Error().Err(err).Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: sessao not found")
		return
	}
	if sessao.Aberta() {
		// The close may have rolled back after the enqueue raced it.
		log.Warn().Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: sessao still open — skipping")
		return
	}

	pdfPath, err := infra.GenerateFechamentoPDF(sessao, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: PDF generation failed")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: PDF generated")

	if w.supervisorEmail == "" {
		return
	}

	subject := fmt.Sprintf("Fechamento de caixa — sessão %s", shortID(sessao.ID))
	body := fmt.Sprintf(
		"Sessão fechada pelo operador %s.\nTotal de vendas: R$ %s\nDiferença: R$ %s\nRelatório completo em anexo.",
		sessao.OperadorID, sessao.TotalVendas.StringFixed(2), diferencaStr(sessao))

	sendErr := withRetry(ctx, 3, func(attempt int) error {
		if err := w.mailer.SendComprovante(w.supervisorEmail, subject, body, pdfPath); err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).
				Str("sessao_id", payload.SessaoID).
				Msg("fechamento_worker: email attempt failed, retrying")
			return err
		}
		return nil
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("sessao_id", payload.SessaoID).
			Msg("fechamento_worker: email failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueFechamento, "fechamento", raw, sendErr.Error(), 3)
		return
	}
	log.Info().Str("to", w.supervisorEmail).Str("sessao_id", payload.SessaoID).
		Msg("fechamento_worker: closing report sent")
}

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[:8]
}

func diferencaStr(s *model.SessaoCaixa) string {
	if s.Diferenca == nil {
		return "0.00"
	}
	return s.Diferenca.StringFixed(2)
}
