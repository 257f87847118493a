// Package notify delivers pipeline results and alerts to operators by
// email. Message construction is separated from SMTP delivery so it can
// be tested without a mail server.
package notify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matthew-michal/apartment-rental-nj-2025/config"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// Mailer sends pipeline email through a single SMTP account.
type Mailer struct {
	host     string
	port     string
	sender   string
	password string
	logger   *utils.Logger
}

// NewMailer creates a Mailer from config.
func NewMailer(cfg *config.Config, logger *utils.Logger) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		sender:   cfg.SenderEmail,
		password: cfg.SenderPassword,
		logger:   logger,
	}
}

// Configured reports whether sending is possible; runs without SMTP
// credentials skip email rather than fail.
func (m *Mailer) Configured() bool {
	return m.sender != "" && m.password != ""
}

// SendPredictions mails the daily predictions summary with the CSV
// snapshot attached.
func (m *Mailer) SendPredictions(recipients []string, snapshotPath string, total int, avgPredicted float64) error {
	body := fmt.Sprintf(
		"Hi,\n\nPlease find attached the apartment rent predictions generated on %s.\n\n"+
			"Summary:\n- Total predictions: %d\n- Average predicted rent: $%.2f\n\nBest regards",
		time.Now().Format("2006-01-02 15:04"), total, avgPredicted)

	attachment, err := os.ReadFile(snapshotPath)
	if err != nil {
		return fmt.Errorf("notify: read attachment %q: %w", snapshotPath, err)
	}

	subject := fmt.Sprintf("Apartment Rent Predictions - %s", time.Now().Format("2006-01-02"))
	msg, err := BuildMessage(m.sender, recipients, subject, body, filepath.Base(snapshotPath), attachment)
	if err != nil {
		return err
	}
	return m.send(recipients, msg)
}

// SendAlert mails a plain-text alert.
func (m *Mailer) SendAlert(recipients []string, subject, body string) error {
	msg, err := BuildMessage(m.sender, recipients, subject, body, "", nil)
	if err != nil {
		return err
	}
	return m.send(recipients, msg)
}

func (m *Mailer) send(recipients []string, msg []byte) error {
	if !m.Configured() {
		return fmt.Errorf("notify: smtp credentials not configured")
	}
	if len(recipients) == 0 {
		return fmt.Errorf("notify: no recipients configured")
	}

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.sender, m.password, m.host)

	// smtp.SendMail negotiates STARTTLS when the server offers it.
	if err := smtp.SendMail(addr, auth, m.sender, recipients, msg); err != nil {
		return fmt.Errorf("notify: send via %s: %w", addr, err)
	}

	m.logger.Info("[notify] Email sent to %d recipient(s)", len(recipients))
	return nil
}

// BuildMessage assembles an RFC 5322 message, multipart when an attachment
// is present.
func BuildMessage(sender string, recipients []string, subject, body, attachmentName string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", sender)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")

	if attachment == nil {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(body)
		return buf.Bytes(), nil
	}

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("notify: build text part: %w", err)
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, fmt.Errorf("notify: write text part: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", "application/octet-stream")
	fileHeader.Set("Content-Transfer-Encoding", "base64")
	fileHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachmentName))
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("notify: build attachment part: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(attachment)
	// Wrap base64 at 76 columns per RFC 2045.
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(filePart, "%s\r\n", encoded[:76]); err != nil {
			return nil, fmt.Errorf("notify: write attachment: %w", err)
		}
		encoded = encoded[76:]
	}
	if _, err := fmt.Fprintf(filePart, "%s\r\n", encoded); err != nil {
		return nil, fmt.Errorf("notify: write attachment: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("notify: finalize message: %w", err)
	}
	return buf.Bytes(), nil
}
