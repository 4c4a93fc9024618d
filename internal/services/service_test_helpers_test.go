package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/vwmedia/siteutil/pkg/mail"
)

type recordingMailer struct {
	mu         sync.Mutex
	messages   []mail.Message
	transcript string
	err        error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message, opts ...mail.SendOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msg)
	if options := mail.ResolveSendOptions(opts...); options.Transcript != nil && m.transcript != "" {
		_, _ = fmt.Fprint(options.Transcript, m.transcript)
	}
	return m.err
}

func (m *recordingMailer) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}
