package mail

import "strings"

// Mode selects how a Transport hands messages off.
type Mode string

const (
	// ModeMail delivers through the service's fallback relay.
	ModeMail Mode = "mail"
	// ModeSMTP delivers directly to the relay named on the transport.
	ModeSMTP Mode = "smtp"
)

// Security values understood by the dialer. Any other value falls back to
// opportunistic STARTTLS.
const (
	SecuritySSL = "ssl"
	SecurityTLS = "tls"
)

// Transport is the mutable connection handle passed to pre-send hooks.
// Port is kept as text because it comes straight from stored settings.
type Transport struct {
	Mode     Mode
	Host     string
	Port     string
	Debug    bool
	Username string
	Password string
	Security string
	From     string
	FromName string
}

// UseSMTP switches the transport into direct SMTP mode.
func (t *Transport) UseSMTP() {
	t.Mode = ModeSMTP
}

// IsSMTP reports whether the transport dials its own relay.
func (t *Transport) IsSMTP() bool {
	return t.Mode == ModeSMTP
}

func normaliseSecurity(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case SecuritySSL:
		return SecuritySSL
	case SecurityTLS:
		return SecurityTLS
	default:
		return ""
	}
}
