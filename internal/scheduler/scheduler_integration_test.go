//go:build integration

package scheduler

import (
	"errors"
	"os"
	"strconv"
	"testing"

	"github.com/freitasmatheusrn/supplier-sync/internal/email/smtp"
	"go.uber.org/zap"
)

// TestSendRealEmail_Integration sends the scheduler alerts through a real
// SMTP server to check their formatting.
// Run with: go test -v -tags=integration ./internal/scheduler/... -run TestSendRealEmail_Integration
//
// Required environment variables:
//   - SMTP_HOST
//   - SMTP_PORT
//   - SMTP_USER
//   - SMTP_PASS
//   - TEST_EMAIL_RECIPIENT
func TestSendRealEmail_Integration(t *testing.T) {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	recipient := os.Getenv("TEST_EMAIL_RECIPIENT")

	if smtpHost == "" || smtpUser == "" || smtpPass == "" || recipient == "" {
		t.Skip("Skipping: Set SMTP_HOST, SMTP_USER, SMTP_PASS and TEST_EMAIL_RECIPIENT")
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = smtpUser
	}

	logger, _ := zap.NewDevelopment()
	s := &Scheduler{
		logger: logger,
		email:  smtp.New(from, smtpHost, smtpUser, smtpPass, smtpPort),
		cfg: Config{
			AlertRecipients: []string{recipient},
			ItemIDMin:       1,
			ItemIDMax:       9999,
		},
	}

	s.sendCapacityEmail(IdentifierUsage{ItemIDs: 9500, Capacity: 9999})
	s.notifyError("integration test", errors.New("sample failure"))

	t.Log("Emails sent - check inbox at:", recipient)
}
