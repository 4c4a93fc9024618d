package settings

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"plain":                         "plain",
		"  padded\t":                    "padded",
		"two\n\nlines":                  "two lines",
		"<em>bold</em> move":            "bold move",
		"<style>p{}</style>after":       "after",
		"a < b":                         "a &lt; b",
		"100%41off":                     "100off",
		"smtp.example.com":              "smtp.example.com",
		string([]byte{0xff, 0xfe, 'a'}): "",
		"Site\x00Owner":                 "SiteOwner",
		"smtp\x1b[31m.example.com":      "smtp[31m.example.com",
		"a\x07b":                        "ab",
		"x\x7fy":                        "xy",
		"c1\u0085ctl":                   "c1ctl",
		"tab\tkept\vgone":               "tab keptgone",
		"<b>\x00bold</b>":               "bold",
	}

	for in, want := range cases {
		require.Equal(t, want, SanitizeText(in), "input %q", in)
	}
}

func TestSanitizeURL(t *testing.T) {
	cases := map[string]string{
		"":                               "",
		"https://code.jquery.com/j.js":   "https://code.jquery.com/j.js",
		"code.jquery.com/j.js":           "http://code.jquery.com/j.js",
		"/local/jquery.js":               "/local/jquery.js",
		"https://x.test/a b":             "https://x.test/a%20b",
		"https://x.test/?a=1&b='2'":      "https://x.test/?a=1&#038;b=&#039;2&#039;",
		"https://x.test/?a=1&amp;b=2":    "https://x.test/?a=1&#038;b=2",
		"javascript:alert(1)":            "",
		"https://x.test/%0d%0aSet-Cookie": "https://x.test/Set-Cookie",
	}

	for in, want := range cases {
		require.Equal(t, want, SanitizeURL(in), "input %q", in)
	}
}

func TestStripTagsKeepsLineBreaks(t *testing.T) {
	require.Equal(t, "Hello\nworld", StripTags("<p>Hello</p>\n<script>x()</script>world"))
	require.Equal(t, "plain", StripTags("  plain "))
}
