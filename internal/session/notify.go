package session

import (
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxReportedFailures caps the failure rows listed in one alert email.
const maxReportedFailures = 50

// notifyFailure emails a submission report to the alert recipients. Delivery
// problems are logged and never fail the submission.
func (s *svc) notifyFailure(title string, sess *Session, out *SubmitOutput) {
	if s.Email == nil || len(s.cfg.AlertRecipients) == 0 {
		return
	}

	parent := ""
	if sess.Parent != nil {
		parent = sess.Parent.ParentNoDE
	}
	subject := fmt.Sprintf("⚠️ %s - %s", title, parent)
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	var text strings.Builder
	fmt.Fprintf(&text, "Sessao: %s\nProduto pai: %s\nResultado: %s\nTotal: %d\nSucesso: %d\nFalhas: %d\nHorario: %s\n",
		sess.ID, parent, out.Outcome, out.Total, out.Succeeded, out.Failed, timestamp)
	if out.Error != "" {
		fmt.Fprintf(&text, "Erro: %s\n", out.Error)
	}

	var rows strings.Builder
	for i, f := range out.Failures {
		if i == maxReportedFailures {
			fmt.Fprintf(&text, "... e mais %d falhas\n", len(out.Failures)-i)
			break
		}
		fmt.Fprintf(&text, "  #%d %s: %s\n", f.Index+1, f.Key, f.Error)
		fmt.Fprintf(&rows, "<tr><td>%d</td><td>%s</td><td>%s</td></tr>",
			f.Index+1, html.EscapeString(f.Key), html.EscapeString(f.Error))
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: Arial, sans-serif; }
		.error-box { background-color: #ffebee; border-left: 4px solid #f44336; padding: 16px; margin: 20px 0; }
		.label { font-weight: bold; color: #333; }
		table { border-collapse: collapse; width: 100%%; margin-top: 20px; }
		th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
		th { background-color: #548235; color: white; }
	</style>
</head>
<body>
	<h2 style="color: #f44336;">%s</h2>
	<div class="error-box">
		<p><span class="label">Sessao:</span> %s</p>
		<p><span class="label">Produto pai:</span> %s</p>
		<p><span class="label">Resultado:</span> %s (%d de %d com sucesso)</p>
		<p><span class="label">Erro:</span> %s</p>
		<p><span class="label">Horario:</span> %s</p>
	</div>
	<table>
		<tr><th>#</th><th>Item</th><th>Erro</th></tr>
		%s
	</table>
</body>
</html>`,
		html.EscapeString(title), sess.ID, html.EscapeString(parent), out.Outcome, out.Succeeded, out.Total,
		html.EscapeString(out.Error), timestamp, rows.String())

	if err := s.Email.Send(subject, text.String(), htmlBody, s.cfg.AlertRecipients); err != nil {
		s.Logger.Error("failed to send submission report",
			zap.Error(err),
			zap.String("session", sess.ID),
		)
		return
	}
	s.Logger.Info("submission report sent",
		zap.String("session", sess.ID),
		zap.Int("recipients_count", len(s.cfg.AlertRecipients)),
	)
}
