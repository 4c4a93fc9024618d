package mail

import (
	"mime"
	"net/mail"
	"strings"
	"time"
)

// Message represents an outbound plain-text email. From, when set, overrides
// the transport's sender before hooks run.
type Message struct {
	From    string
	ReplyTo string
	To      []string
	Subject string
	Body    string
}

// uniqueAddresses trims addresses and drops blanks and repeats, keeping order.
func uniqueAddresses(addresses []string) []string {
	var result []string
	seen := make(map[string]bool, len(addresses))
	for _, addr := range addresses {
		if addr = strings.TrimSpace(addr); addr != "" && !seen[addr] {
			seen[addr] = true
			result = append(result, addr)
		}
	}
	return result
}

func formatSender(address, name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}

// formatMessage renders RFC 5322 headers and body. Header values are folded
// onto one line and non-ASCII subjects are Q-encoded.
func formatMessage(from, replyTo string, to []string, subject, body string) string {
	var b strings.Builder
	header := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(singleLine(value))
		b.WriteString("\r\n")
	}

	header("From", from)
	header("To", strings.Join(to, ", "))
	if replyTo = strings.TrimSpace(replyTo); replyTo != "" {
		header("Reply-To", replyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", singleLine(subject)))
	header("Date", time.Now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

func singleLine(value string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
}
