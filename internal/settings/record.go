package settings

// OptionName is the key the record is persisted under.
const OptionName = "siteutil"

// Record is the persisted settings blob. Flags hold exactly 0 or 1; text
// fields hold sanitized plain text or "".
type Record struct {
	Cleanup              int    `json:"cleanup" mapstructure:"cleanup"`
	CommentsCSSCleanup   int    `json:"comments_css_cleanup" mapstructure:"comments_css_cleanup"`
	GalleryCSSCleanup    int    `json:"gallery_css_cleanup" mapstructure:"gallery_css_cleanup"`
	BodyClassSlug        int    `json:"body_class_slug" mapstructure:"body_class_slug"`
	PrettifySearch       int    `json:"prettify_search" mapstructure:"prettify_search"`
	CSSJSVersions        int    `json:"css_js_versions" mapstructure:"css_js_versions"`
	JQueryCDN            int    `json:"jquery_cdn" mapstructure:"jquery_cdn"`
	CDNProvider          string `json:"cdn_provider" mapstructure:"cdn_provider"`
	HideAdminBar         int    `json:"hide_admin_bar" mapstructure:"hide_admin_bar"`
	WriteLogFn           int    `json:"write_log_fn" mapstructure:"write_log_fn"`
	YoastCommentsCleanup int    `json:"yoast_comments_cleanup" mapstructure:"yoast_comments_cleanup"`

	SMTPSupport        int    `json:"smtp_support" mapstructure:"smtp_support"`
	SMTPFromName       string `json:"smtp_from_name" mapstructure:"smtp_from_name"`
	SMTPFromEmail      string `json:"smtp_from_email" mapstructure:"smtp_from_email"`
	// SMTPAuthentication is stored and echoed back but gates nothing: the
	// dispatcher authenticates whenever a username is present.
	SMTPAuthentication int    `json:"smtp_authentication" mapstructure:"smtp_authentication"`
	SMTPPort           string `json:"smtp_port" mapstructure:"smtp_port"`
	SMTPHost           string `json:"smtp_host" mapstructure:"smtp_host"`
	SMTPEncryption     string `json:"smtp_encryption" mapstructure:"smtp_encryption"`
	SMTPUsername       string `json:"smtp_username" mapstructure:"smtp_username"`
	SMTPPassword       string `json:"smtp_password" mapstructure:"smtp_password"`
	SMTPDebug          int    `json:"smtp_debug" mapstructure:"smtp_debug"`
}

// Default returns the record written on first start-up.
func Default() Record {
	return Record{}
}

// PasswordMask replaces the stored SMTP password in API responses.
const PasswordMask = "********"

// Masked returns a copy safe to hand to API consumers.
func (r Record) Masked() Record {
	if r.SMTPPassword != "" {
		r.SMTPPassword = PasswordMask
	}
	return r
}
