package services

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/vwmedia/siteutil/pkg/mail"
)

const (
	testEmailSubjectPrefix = "Site Utility: This is a test mail from Site Utility "
	testEmailBody          = "This test email has been successfully sent using your SMTP settings - Congrats!"
)

// TestEmailResult reports the outcome of a test delivery together with the
// SMTP transcript captured while sending.
type TestEmailResult struct {
	Result bool     `json:"result"`
	Debug  []string `json:"debug"`
	Error  string   `json:"error,omitempty"`
}

// TestEmailService sends a fixed message through the configured transport.
type TestEmailService struct {
	mailer mail.Mailer
}

// NewTestEmailService constructs the service once a mailer is supplied.
func NewTestEmailService(mailer mail.Mailer) (*TestEmailService, error) {
	if mailer == nil {
		return nil, errors.New("test email service: mailer is required")
	}
	return &TestEmailService{mailer: mailer}, nil
}

// Send delivers the test message to addr. Delivery failures are reported in
// the result rather than as an error.
func (s *TestEmailService) Send(ctx context.Context, addr string) TestEmailResult {
	addr = strings.TrimSpace(addr)

	var transcript bytes.Buffer
	err := s.mailer.Send(ensureContext(ctx), mail.Message{
		To:      []string{addr},
		Subject: testEmailSubjectPrefix + addr,
		Body:    testEmailBody,
	}, mail.WithTranscript(&transcript))

	result := TestEmailResult{
		Result: err == nil,
		Debug:  splitLines(transcript.String()),
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

func splitLines(value string) []string {
	lines := []string{}
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
