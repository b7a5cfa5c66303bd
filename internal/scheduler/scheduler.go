package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/freitasmatheusrn/supplier-sync/internal/email"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ConstantsRefresher reloads the cached formula constants
type ConstantsRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// IdentifierSource lists the EANs and item ids already present in master data
type IdentifierSource interface {
	UsedIdentifiers(ctx context.Context) (eans []string, itemIDs []int, err error)
}

type Config struct {
	AlertRecipients []string
	ItemIDMin       int
	ItemIDMax       int
	// CapacityThreshold is the share of the item id range that triggers an
	// alert, between 0 and 1.
	CapacityThreshold float64
}

type Scheduler struct {
	cron        *cron.Cron
	constants   ConstantsRefresher
	identifiers IdentifierSource
	logger      *zap.Logger
	email       email.Email
	cfg         Config
}

func NewScheduler(constants ConstantsRefresher, identifiers IdentifierSource, logger *zap.Logger, e email.Email, cfg Config) *Scheduler {
	if cfg.CapacityThreshold <= 0 || cfg.CapacityThreshold > 1 {
		cfg.CapacityThreshold = 0.9
	}
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		constants:   constants,
		identifiers: identifiers,
		logger:      logger,
		email:       e,
		cfg:         cfg,
	}
}

// Start registers the maintenance job and starts the cron loop.
// cronExpr uses 6 fields: seconds, minutes, hours, day of month, month, day of week
// Example: "0 */10 * * * *" runs every ten minutes
func (s *Scheduler) Start(cronExpr string) error {
	_, err := s.cron.AddFunc(cronExpr, s.runMaintenanceJob)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("cron_expression", cronExpr))

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping scheduler")
	return s.cron.Stop()
}

// RunNow executes the maintenance job immediately (for manual triggers)
func (s *Scheduler) RunNow() {
	go s.runMaintenanceJob()
}

// IdentifierUsage is how much of the item id range master data occupies.
type IdentifierUsage struct {
	EANs     int
	ItemIDs  int
	Capacity int
}

func (u IdentifierUsage) Ratio() float64 {
	if u.Capacity <= 0 {
		return 0
	}
	return float64(u.ItemIDs) / float64(u.Capacity)
}

// runMaintenanceJob refreshes the constants cache and checks how close the
// item id range is to exhaustion. A failing step does not skip the next one.
func (s *Scheduler) runMaintenanceJob() {
	s.logger.Info("starting maintenance job")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := s.constants.Refresh(ctx)
	if err != nil {
		s.notifyError("failed to refresh constants cache", err)
	} else {
		s.logger.Info("constants cache refreshed", zap.Int("count", count))
	}

	usage, err := s.identifierUsage(ctx)
	if err != nil {
		s.notifyError("failed to load used identifiers", err)
		return
	}

	s.logger.Info("maintenance job completed",
		zap.Int("eans", usage.EANs),
		zap.Int("item_ids", usage.ItemIDs),
		zap.Int("capacity", usage.Capacity),
		zap.Duration("duration", time.Since(startTime)),
	)

	if usage.Capacity > 0 && usage.Ratio() >= s.cfg.CapacityThreshold {
		s.sendCapacityEmail(usage)
	}
}

// identifierUsage counts the distinct item ids inside the configured range.
func (s *Scheduler) identifierUsage(ctx context.Context) (IdentifierUsage, error) {
	eans, ids, err := s.identifiers.UsedIdentifiers(ctx)
	if err != nil {
		return IdentifierUsage{}, err
	}

	inRange := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id >= s.cfg.ItemIDMin && id <= s.cfg.ItemIDMax {
			inRange[id] = struct{}{}
		}
	}
	return IdentifierUsage{
		EANs:     len(eans),
		ItemIDs:  len(inRange),
		Capacity: s.cfg.ItemIDMax - s.cfg.ItemIDMin + 1,
	}, nil
}

// sendCapacityEmail warns the alert recipients that new items will soon fail
// to get an id.
func (s *Scheduler) sendCapacityEmail(usage IdentifierUsage) {
	if len(s.cfg.AlertRecipients) == 0 {
		s.logger.Warn("no email recipients configured, skipping capacity notification",
			zap.Float64("ratio", usage.Ratio()),
		)
		return
	}

	subject := "Faixa de IDs de itens quase esgotada"
	percent := usage.Ratio() * 100

	textBody := fmt.Sprintf("A faixa de IDs de itens (%d a %d) esta %.1f%% ocupada.\nIDs em uso: %d de %d\n",
		s.cfg.ItemIDMin, s.cfg.ItemIDMax, percent, usage.ItemIDs, usage.Capacity)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: Arial, sans-serif; }
		table { border-collapse: collapse; width: 100%%; margin-top: 20px; }
		th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
		th { background-color: #4CAF50; color: white; }
		h2 { color: #333; }
	</style>
</head>
<body>
	<h2>Faixa de IDs quase esgotada</h2>
	<p>Novos itens deixarao de receber ID quando a faixa acabar.</p>
	<table>
		<tr>
			<th>Faixa</th>
			<th>Em uso</th>
			<th>Ocupacao</th>
		</tr>
		<tr>
			<td>%d - %d</td>
			<td>%d de %d</td>
			<td>%.1f%%</td>
		</tr>
	</table>
</body>
</html>`, s.cfg.ItemIDMin, s.cfg.ItemIDMax, usage.ItemIDs, usage.Capacity, percent)

	if err := s.email.Send(subject, textBody, htmlBody, s.cfg.AlertRecipients); err != nil {
		s.logger.Error("failed to send capacity email",
			zap.Error(err),
			zap.Float64("ratio", usage.Ratio()),
		)
		return
	}

	s.logger.Info("capacity email sent successfully",
		zap.Float64("ratio", usage.Ratio()),
		zap.Int("recipients_count", len(s.cfg.AlertRecipients)),
	)
}

// notifyError logs the error and sends an email notification to alert recipients
func (s *Scheduler) notifyError(context string, err error) {
	s.logger.Error(context, zap.Error(err))

	if len(s.cfg.AlertRecipients) == 0 {
		return
	}

	subject := "⚠️ Erro no Scheduler - " + context
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	textBody := fmt.Sprintf("Contexto: %s\nErro: %v\nHorário: %s", context, err, timestamp)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: Arial, sans-serif; }
		.error-box { background-color: #ffebee; border-left: 4px solid #f44336; padding: 16px; margin: 20px 0; }
		.label { font-weight: bold; color: #333; }
		.value { color: #666; }
	</style>
</head>
<body>
	<h2 style="color: #f44336;">⚠️ Erro no Scheduler</h2>
	<div class="error-box">
		<p><span class="label">Contexto:</span> <span class="value">%s</span></p>
		<p><span class="label">Erro:</span> <span class="value">%v</span></p>
		<p><span class="label">Horário:</span> <span class="value">%s</span></p>
	</div>
</body>
</html>`, context, err, timestamp)

	if sendErr := s.email.Send(subject, textBody, htmlBody, s.cfg.AlertRecipients); sendErr != nil {
		s.logger.Error("failed to send error notification email",
			zap.Error(sendErr),
			zap.String("original_error_context", context),
		)
	}
}
