// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
)

// Mailer delivers a rendered report. The attachment may be nil.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string, attachment []byte, filename string) error
}

// SMTP delivers mail through a plain SMTP server.
type SMTP struct {
	addr string
	from string
}

func NewSMTP(addr, from string) *SMTP {
	return &SMTP{addr: addr, from: from}
}

func (m *SMTP) Send(ctx context.Context, to, subject, body string, attachment []byte, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := buildMessage(m.from, to, subject, body, attachment, filename)
	if err != nil {
		return err
	}

	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// buildMessage assembles an RFC 5322 message, multipart when an attachment
// is present.
func buildMessage(from, to, subject, body string, attachment []byte, filename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")

	if attachment == nil {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(body)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mw.Boundary())

	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create text part: %w", err)
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, fmt.Errorf("failed to write text part: %w", err)
	}

	filePart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/csv"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", filename)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment part: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(attachment)
	if _, err := filePart.Write([]byte(encoded)); err != nil {
		return nil, fmt.Errorf("failed to write attachment part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize message: %w", err)
	}
	return buf.Bytes(), nil
}

// Log is the no-transport Mailer used when SMTP is unconfigured. Reports
// are logged instead of delivered, which keeps local development working
// without a mail server.
type Log struct{}

func (Log) Send(ctx context.Context, to, subject, body string, attachment []byte, filename string) error {
	slog.Info("report delivery (smtp unconfigured, logging instead)",
		"to", to,
		"subject", subject,
		"attachment", filename,
		"attachment_bytes", len(attachment),
	)
	return nil
}
