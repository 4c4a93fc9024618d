package settings

import "regexp"

// Kind controls how a raw value is coerced into the record.
type Kind int

const (
	// KindFlag stores 1 when the key is present and filled, else 0.
	KindFlag Kind = iota
	// KindText stores sanitized text when the key is filled, else "".
	KindText
	// KindFreeText stores sanitized text regardless of emptiness.
	KindFreeText
	// KindURL stores the sanitized URL regardless of emptiness.
	KindURL
)

// Rule reports whether a non-empty sanitized value is acceptable.
type Rule func(value string) bool

// Field is one entry of the settings schema.
type Field struct {
	Name string
	Kind Kind

	// EnabledBy names the raw-input flag that switches Required and Rule on.
	EnabledBy string
	Required  bool
	Rule      Rule

	Message string
}

// Code is the identifier reported with a validation error on this field.
func (f Field) Code() string {
	return f.Name + "_texterror"
}

var (
	emailShape = regexp.MustCompile(`(?i)^([a-z0-9_.-]+@[\da-z.-]+\.[a-z.]{2,6})`)
	portShape  = regexp.MustCompile(`\d{2,4}`)
)

// EmailShape accepts values that start with local@domain.tld. Only the
// prefix is checked.
func EmailShape(value string) bool {
	return emailShape.MatchString(value)
}

// PortShape accepts values containing a run of 2 to 4 digits anywhere.
func PortShape(value string) bool {
	return portShape.MatchString(value)
}

const smtpSupport = "smtp_support"

// Schema is the ordered list of settings fields. Evaluation order is the
// order validation errors are reported in.
var Schema = []Field{
	{Name: "cleanup", Kind: KindFlag},
	{Name: "comments_css_cleanup", Kind: KindFlag},
	{Name: "gallery_css_cleanup", Kind: KindFlag},
	{Name: "body_class_slug", Kind: KindFlag},
	{Name: "prettify_search", Kind: KindFlag},
	{Name: "css_js_versions", Kind: KindFlag},
	{Name: "jquery_cdn", Kind: KindFlag},
	{Name: "cdn_provider", Kind: KindURL},
	{Name: "hide_admin_bar", Kind: KindFlag},
	{Name: "write_log_fn", Kind: KindFlag},
	{Name: "yoast_comments_cleanup", Kind: KindFlag},

	{Name: smtpSupport, Kind: KindFlag},
	{Name: "smtp_from_name", Kind: KindText, EnabledBy: smtpSupport, Required: true, Message: "Please enter a name"},
	{Name: "smtp_from_email", Kind: KindText, EnabledBy: smtpSupport, Rule: EmailShape, Message: "Please enter a valid email address"},
	{Name: "smtp_authentication", Kind: KindFlag},
	{Name: "smtp_port", Kind: KindText, EnabledBy: smtpSupport, Rule: PortShape, Message: "Please enter a valid port number"},
	{Name: "smtp_host", Kind: KindText, EnabledBy: smtpSupport, Required: true, Message: "Please enter a smtp hostname"},
	{Name: "smtp_encryption", Kind: KindFreeText},
	{Name: "smtp_username", Kind: KindText, EnabledBy: smtpSupport, Required: true, Message: "Please enter a username"},
	{Name: "smtp_password", Kind: KindText, EnabledBy: smtpSupport, Required: true, Message: "Please enter a password"},
	{Name: "smtp_debug", Kind: KindFlag},
}
