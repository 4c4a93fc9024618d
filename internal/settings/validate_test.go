package settings

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateSupportEnabledReportsRequiredFields(t *testing.T) {
	record, errs := Validate(RawInput{"smtp_support": "1"})

	require.Equal(t, 1, record.SMTPSupport)
	require.Equal(t, []string{"smtp_from_name", "smtp_host", "smtp_username", "smtp_password"}, errs.Fields())
	require.Equal(t, "smtp_from_name_texterror", errs[0].Code)
	require.Equal(t, "Please enter a name", errs[0].Message)
	require.Equal(t, "Please enter a smtp hostname", errs[1].Message)
	require.Equal(t, "Please enter a username", errs[2].Message)
	require.Equal(t, "Please enter a password", errs[3].Message)
}

func TestValidateSupportDisabledNeverErrors(t *testing.T) {
	record, errs := Validate(RawInput{
		"smtp_from_email": "not-an-email",
		"smtp_port":       "abc",
	})

	require.Empty(t, errs)
	require.Equal(t, 0, record.SMTPSupport)
	require.Equal(t, "not-an-email", record.SMTPFromEmail)
	require.Equal(t, "abc", record.SMTPPort)
}

func TestValidateFlagsAreZeroOrOne(t *testing.T) {
	record, errs := Validate(RawInput{
		"cleanup":         "on",
		"jquery_cdn":      "0",
		"hide_admin_bar":  "",
		"prettify_search": "yes",
	})

	require.Empty(t, errs)
	require.Equal(t, 1, record.Cleanup)
	require.Equal(t, 0, record.JQueryCDN)
	require.Equal(t, 0, record.HideAdminBar)
	require.Equal(t, 1, record.PrettifySearch)
	require.Equal(t, 0, record.WriteLogFn)
	require.Equal(t, 0, record.SMTPDebug)
}

func TestValidateZeroSupportFlagDisablesChecks(t *testing.T) {
	_, errs := Validate(RawInput{"smtp_support": "0"})
	require.Empty(t, errs)
}

func TestValidatePortShape(t *testing.T) {
	cases := []struct {
		port    string
		invalid bool
	}{
		{port: "587"},
		{port: "12x"},
		{port: "x25"},
		{port: "a", invalid: true},
		{port: "5", invalid: true},
		{port: ""},
	}

	for _, tc := range cases {
		t.Run(tc.port, func(t *testing.T) {
			_, errs := Validate(fullSMTPInput(map[string]string{"smtp_port": tc.port}))
			if tc.invalid {
				require.Equal(t, []string{"smtp_port"}, errs.Fields())
				require.Equal(t, "Please enter a valid port number", errs[0].Message)
				return
			}
			require.Empty(t, errs)
		})
	}
}

func TestValidateEmailShape(t *testing.T) {
	cases := []struct {
		email   string
		invalid bool
	}{
		{email: "a@b.co"},
		{email: "Admin.Ops@Example.COM"},
		{email: "a@b.co trailing junk"},
		{email: "not-an-email", invalid: true},
		{email: "@example.com", invalid: true},
		{email: ""},
	}

	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			_, errs := Validate(fullSMTPInput(map[string]string{"smtp_from_email": tc.email}))
			if tc.invalid {
				require.Equal(t, []string{"smtp_from_email"}, errs.Fields())
				require.Equal(t, "smtp_from_email_texterror", errs[0].Code)
				return
			}
			require.Empty(t, errs)
		})
	}
}

func TestValidateSanitizesText(t *testing.T) {
	record, errs := Validate(fullSMTPInput(map[string]string{
		"smtp_from_name": "  <b>Site</b>\n\tOwner ",
		"smtp_host":      "<script>alert(1)</script>",
	}))

	require.Equal(t, "Site Owner", record.SMTPFromName)
	require.Equal(t, "", record.SMTPHost)
	require.Equal(t, []string{"smtp_host"}, errs.Fields())
}

func TestValidateEncryptionAlwaysWritten(t *testing.T) {
	record, _ := Validate(RawInput{"smtp_encryption": "0"})
	require.Equal(t, "0", record.SMTPEncryption)

	record, _ = Validate(RawInput{"smtp_encryption": " tls "})
	require.Equal(t, "tls", record.SMTPEncryption)
}

func TestValidateCDNProviderAlwaysWritten(t *testing.T) {
	record, errs := Validate(RawInput{"cdn_provider": "cdn.example.com/jquery.js?v=1&min=1"})
	require.Empty(t, errs)
	require.Equal(t, "http://cdn.example.com/jquery.js?v=1&#038;min=1", record.CDNProvider)

	record, _ = Validate(RawInput{"cdn_provider": "javascript:alert(1)"})
	require.Equal(t, "", record.CDNProvider)
}

func TestValidateIsIdempotentOnOwnOutput(t *testing.T) {
	first, _ := Validate(fullSMTPInput(nil))

	values, err := first.ToMap()
	require.NoError(t, err)

	again := RawInput{}
	for key, value := range values {
		switch v := value.(type) {
		case int:
			if v == 1 {
				again[key] = "1"
			}
		case string:
			again[key] = v
		}
	}

	second, errs := Validate(again)
	require.Empty(t, errs)
	require.Equal(t, first, second)
}

func TestFromValuesKeepsFirstValue(t *testing.T) {
	input := FromValues(url.Values{
		"smtp_host": {"mail.example.com", "ignored"},
		"empty":     {},
	})

	require.Equal(t, "mail.example.com", input["smtp_host"])
	_, ok := input["empty"]
	require.False(t, ok)
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "smtp_host", Code: "smtp_host_texterror", Message: "Please enter a smtp hostname"},
		{Field: "smtp_port", Code: "smtp_port_texterror", Message: "Please enter a valid port number"},
	}
	require.Equal(t, "smtp_host: Please enter a smtp hostname; smtp_port: Please enter a valid port number", errs.Error())
}

func TestSchemaMatchesRecordFields(t *testing.T) {
	values, err := Default().ToMap()
	require.NoError(t, err)
	require.Len(t, values, len(Schema))
	for _, field := range Schema {
		_, ok := values[field.Name]
		require.True(t, ok, field.Name)
	}
}

func fullSMTPInput(overrides map[string]string) RawInput {
	input := RawInput{
		"smtp_support":    "1",
		"smtp_from_name":  "Site",
		"smtp_from_email": "admin@example.com",
		"smtp_port":       "587",
		"smtp_host":       "smtp.example.com",
		"smtp_encryption": "tls",
		"smtp_username":   "mailer",
		"smtp_password":   "secret",
	}
	for key, value := range overrides {
		input[key] = value
	}
	return input
}

func TestValidateStripsControlCharacters(t *testing.T) {
	record, errs := Validate(RawInput{
		"smtp_support":   "1",
		"smtp_from_name": "Site\x00Owner",
		"smtp_host":      "smtp\x1b.example.com",
		"smtp_username":  "mail\x07er",
		"smtp_password":  "pa\x7fss",
		"smtp_port":      "5\x0087",
	})

	require.Empty(t, errs)
	require.Equal(t, "SiteOwner", record.SMTPFromName)
	require.Equal(t, "smtp.example.com", record.SMTPHost)
	require.Equal(t, "mailer", record.SMTPUsername)
	require.Equal(t, "pass", record.SMTPPassword)
	require.Equal(t, "587", record.SMTPPort)
}

func TestValidateControlOnlyValueCountsAsMissing(t *testing.T) {
	record, errs := Validate(RawInput{
		"smtp_support":   "1",
		"smtp_from_name": "Site",
		"smtp_host":      "\x00\x1b",
		"smtp_username":  "u",
		"smtp_password":  "p",
	})

	require.Equal(t, []string{"smtp_host"}, errs.Fields())
	require.Empty(t, record.SMTPHost)
}
