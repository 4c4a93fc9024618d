package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTestEmailServiceSendsFixedMessage(t *testing.T) {
	mailer := &recordingMailer{transcript: "SERVER: 220 ready\r\nCLIENT: EHLO localhost\n\n"}
	svc, err := NewTestEmailService(mailer)
	require.NoError(t, err)

	result := svc.Send(context.Background(), " admin@example.com ")
	require.True(t, result.Result)
	require.Empty(t, result.Error)
	require.Equal(t, []string{"SERVER: 220 ready", "CLIENT: EHLO localhost"}, result.Debug)

	sent := mailer.sent()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"admin@example.com"}, sent[0].To)
	require.Equal(t, "Site Utility: This is a test mail from Site Utility admin@example.com", sent[0].Subject)
	require.Equal(t, "This test email has been successfully sent using your SMTP settings - Congrats!", sent[0].Body)
}

func TestTestEmailServiceReportsFailure(t *testing.T) {
	svc, err := NewTestEmailService(&recordingMailer{err: errors.New("smtp: dial refused")})
	require.NoError(t, err)

	result := svc.Send(context.Background(), "admin@example.com")
	require.False(t, result.Result)
	require.Equal(t, "smtp: dial refused", result.Error)
	require.NotNil(t, result.Debug)
	require.Empty(t, result.Debug)
}
