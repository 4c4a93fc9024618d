package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vwmedia/siteutil/pkg/logger"
	"github.com/vwmedia/siteutil/pkg/metrics"
)

// ErrSMTPDisabled signals that the fallback relay is disabled and no hook
// switched the transport into SMTP mode.
var ErrSMTPDisabled = errors.New("smtp: delivery disabled")

const defaultTimeout = 10 * time.Second

// Mailer defines behaviour for sending email messages.
type Mailer interface {
	Send(ctx context.Context, msg Message, opts ...SendOption) error
}

// Hook mutates the transport immediately before a message is delivered.
type Hook func(ctx context.Context, t *Transport)

// SMTPSettings configure the fallback relay used while a transport stays in
// ModeMail.
type SMTPSettings struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Security string
	Timeout  time.Duration
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the module logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithHooks registers pre-send hooks at construction time.
func WithHooks(hooks ...Hook) Option {
	return func(d *Dispatcher) {
		for _, hook := range hooks {
			if hook != nil {
				d.hooks = append(d.hooks, hook)
			}
		}
	}
}

// SendOption customises a single delivery.
type SendOption func(*SendOptions)

// SendOptions is the resolved set of per-delivery options.
type SendOptions struct {
	Transcript io.Writer
}

// WithTranscript copies the SMTP debug transcript to w when the transport has
// Debug enabled.
func WithTranscript(w io.Writer) SendOption {
	return func(o *SendOptions) {
		o.Transcript = w
	}
}

// ResolveSendOptions applies opts in order. Mailer implementations use it to
// honour per-delivery options.
func ResolveSendOptions(opts ...SendOption) SendOptions {
	var options SendOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

// Dispatcher builds a default transport per message, runs the registered
// hooks against it and then delivers over SMTP.
type Dispatcher struct {
	fallback SMTPSettings
	hooks    []Hook

	dialFn smtpDialFunc
	authFn smtpAuthFunc
	log    *zap.Logger
}

// NewDispatcher validates the fallback relay and returns a ready dispatcher.
func NewDispatcher(fallback SMTPSettings, opts ...Option) (*Dispatcher, error) {
	if err := validateSMTPConfig(fallback); err != nil {
		return nil, err
	}
	if fallback.Timeout <= 0 {
		fallback.Timeout = defaultTimeout
	}

	d := &Dispatcher{
		fallback: fallback,
		dialFn:   defaultDialFunc,
		authFn:   defaultAuthFunc,
		log:      logger.WithModule("mail"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Prepare returns the transport a message would be sent with, after every
// hook has run.
func (d *Dispatcher) Prepare(ctx context.Context, msg Message) Transport {
	if ctx == nil {
		ctx = context.Background()
	}

	t := Transport{
		Mode:     ModeMail,
		From:     d.fallback.From,
		FromName: d.fallback.FromName,
	}

	if from := strings.TrimSpace(msg.From); from != "" {
		if addr, err := mail.ParseAddress(from); err == nil {
			t.From = addr.Address
			if addr.Name != "" {
				t.FromName = addr.Name
			}
		} else {
			t.From = from
		}
	}

	for _, hook := range d.hooks {
		hook(ctx, &t)
	}
	return t
}

// Send delivers msg, reporting the outcome to the mail metrics.
func (d *Dispatcher) Send(ctx context.Context, msg Message, opts ...SendOption) error {
	if ctx == nil {
		ctx = context.Background()
	}

	t := d.Prepare(ctx, msg)
	err := d.deliver(ctx, t, msg, ResolveSendOptions(opts...))

	result := "success"
	if err != nil {
		result = "failure"
		d.log.Warn("mail delivery failed",
			zap.String("mode", string(t.Mode)),
			zap.String("host", t.Host),
			zap.Error(err),
		)
	}
	metrics.MailDeliveries.WithLabelValues(string(t.Mode), result).Inc()
	return err
}

func (d *Dispatcher) deliver(ctx context.Context, t Transport, msg Message, options SendOptions) error {
	recipients := uniqueAddresses(msg.To)
	if len(recipients) == 0 {
		return errors.New("smtp: at least one recipient is required")
	}

	from := strings.TrimSpace(t.From)
	if from == "" {
		return errors.New("smtp: sender address is required")
	}
	if _, err := mail.ParseAddress(from); err != nil {
		return fmt.Errorf("smtp: invalid from address: %w", err)
	}
	for _, rcpt := range recipients {
		if _, err := mail.ParseAddress(rcpt); err != nil {
			return fmt.Errorf("smtp: invalid recipient address %q: %w", rcpt, err)
		}
	}

	ep, err := d.resolve(t)
	if err != nil {
		return err
	}
	ep.Transcript = options.Transcript

	conn, client, err := d.dialFn(ctx, ep, d.log)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer client.Close()

	if err := d.authFn(client, ep); err != nil {
		return err
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp: rcpt to %s: %w", rcpt, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: data command: %w", err)
	}

	content := formatMessage(formatSender(from, t.FromName), msg.ReplyTo, recipients, msg.Subject, msg.Body)
	if _, err := io.WriteString(wc, content); err != nil {
		_ = wc.Close()
		return fmt.Errorf("smtp: write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp: close data writer: %w", err)
	}

	return client.Quit()
}

// endpoint is the resolved connection target for one delivery.
type endpoint struct {
	Host       string
	Port       int
	Security   string
	Username   string
	Password   string
	Debug      bool
	Timeout    time.Duration
	Transcript io.Writer
}

func (d *Dispatcher) resolve(t Transport) (endpoint, error) {
	if t.IsSMTP() {
		host := strings.TrimSpace(t.Host)
		if host == "" {
			return endpoint{}, errors.New("smtp: host is required")
		}
		port, err := strconv.Atoi(strings.TrimSpace(t.Port))
		if err != nil || port <= 0 || port > 65535 {
			return endpoint{}, fmt.Errorf("smtp: invalid port %q", t.Port)
		}
		return endpoint{
			Host:     host,
			Port:     port,
			Security: normaliseSecurity(t.Security),
			Username: t.Username,
			Password: t.Password,
			Debug:    t.Debug,
			Timeout:  d.fallback.Timeout,
		}, nil
	}

	if !d.fallback.Enabled {
		return endpoint{}, ErrSMTPDisabled
	}
	return endpoint{
		Host:     d.fallback.Host,
		Port:     d.fallback.Port,
		Security: normaliseSecurity(d.fallback.Security),
		Username: d.fallback.Username,
		Password: d.fallback.Password,
		Debug:    t.Debug,
		Timeout:  d.fallback.Timeout,
	}, nil
}

func validateSMTPConfig(cfg SMTPSettings) error {
	if !cfg.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return errors.New("smtp: host is required when enabled")
	}
	if cfg.Port == 0 {
		return errors.New("smtp: port is required when enabled")
	}
	return nil
}

type smtpClient interface {
	Mail(string) error
	Rcpt(string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
	StartTLS(*tls.Config) error
	Auth(smtp.Auth) error
	Extension(string) (bool, string)
}

type smtpDialFunc func(ctx context.Context, ep endpoint, log *zap.Logger) (net.Conn, smtpClient, error)
type smtpAuthFunc func(client smtpClient, ep endpoint) error

func defaultDialFunc(ctx context.Context, ep endpoint, log *zap.Logger) (net.Conn, smtpClient, error) {
	address := net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))
	dialer := &net.Dialer{Timeout: ep.Timeout}

	var (
		conn net.Conn
		err  error
	)

	if ep.Security == SecuritySSL {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: ep.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", address)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", address)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("smtp: dial %s: %w", address, err)
	}

	var transcript *transcriptConn
	if ep.Debug {
		transcript = newTranscriptConn(conn, log, ep.Transcript)
		conn = transcript
	}

	client, err := smtp.NewClient(conn, ep.Host)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("smtp: new client: %w", err)
	}

	if ep.Security != SecuritySSL {
		ok, _ := client.Extension("STARTTLS")
		switch {
		case ok:
			if transcript != nil {
				transcript.pause("STARTTLS negotiated, transcript stops")
			}
			if err := client.StartTLS(&tls.Config{ServerName: ep.Host}); err != nil {
				_ = client.Close()
				_ = conn.Close()
				return nil, nil, fmt.Errorf("smtp: start tls: %w", err)
			}
		case ep.Security == SecurityTLS:
			_ = client.Close()
			_ = conn.Close()
			return nil, nil, errors.New("smtp: server does not support STARTTLS")
		}
	}

	return conn, &realSMTPClient{Client: client}, nil
}

// defaultAuthFunc runs PLAIN auth when a username is set. The stored
// smtp_authentication flag is not consulted.
func defaultAuthFunc(client smtpClient, ep endpoint) error {
	if strings.TrimSpace(ep.Username) == "" {
		return nil
	}
	auth := smtp.PlainAuth("", ep.Username, ep.Password, ep.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp: auth: %w", err)
	}
	return nil
}

type realSMTPClient struct {
	*smtp.Client
}
