package settings

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
)

var (
	lessThanRun     = regexp.MustCompile(`<[^<>]*>?`)
	whitespaceRun   = regexp.MustCompile(`[\r\n\t ]+`)
	spaceRun        = regexp.MustCompile(` +`)
	percentOctet    = regexp.MustCompile(`(?i)%[a-f0-9]{2}`)
	urlDisallowed   = regexp.MustCompile(`(?i)[^a-z0-9\-~+_.?#=!&;,/:%@$|*'()\[\]\x{80}-\x{10FFFF}]`)
	ampersandEntity = regexp.MustCompile(`&(?:#[0-9]+;|#[xX][0-9a-fA-F]+;|[A-Za-z][A-Za-z0-9]*;)?`)
	phpFileRef      = regexp.MustCompile(`(?i)^[a-z0-9-]+?\.php`)
)

const phpTrimSet = " \t\n\r\x00\x0b"

// allowedSchemes lists the URL schemes SanitizeURL keeps.
var allowedSchemes = map[string]struct{}{
	"http": {}, "https": {}, "ftp": {}, "ftps": {}, "mailto": {}, "news": {},
	"irc": {}, "irc6": {}, "ircs": {}, "gopher": {}, "nntp": {}, "feed": {},
	"telnet": {}, "mms": {}, "rtsp": {}, "sms": {}, "svn": {}, "tel": {},
	"fax": {}, "xmpp": {}, "webcal": {}, "urn": {},
}

// SanitizeText reduces a submitted value to a single line of plain text:
// invalid UTF-8 yields "", control characters are dropped, markup is stripped (script and style bodies
// included), stray "<" is escaped, whitespace runs collapse to one space and
// percent-encoded octets are removed.
func SanitizeText(value string) string {
	if !utf8.ValidString(value) {
		return ""
	}

	filtered := stripControl(value)
	if strings.Contains(filtered, "<") {
		filtered = escapeStrayLessThan(filtered)
		filtered = stripTags(filtered)
		filtered = strings.ReplaceAll(filtered, "<\n", "&lt;\n")
	}

	filtered = whitespaceRun.ReplaceAllString(filtered, " ")
	filtered = strings.Trim(filtered, phpTrimSet)

	found := false
	for {
		match := percentOctet.FindString(filtered)
		if match == "" {
			break
		}
		filtered = strings.ReplaceAll(filtered, match, "")
		found = true
	}
	if found {
		filtered = strings.Trim(spaceRun.ReplaceAllString(filtered, " "), phpTrimSet)
	}

	return filtered
}

// stripControl drops control characters other than the whitespace runes the
// collapse step folds into single spaces.
func stripControl(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, value)
}

// SanitizeURL cleans a URL for storage and display. Unknown schemes yield "",
// bare hosts get an http:// prefix, and ampersands and single quotes are
// entity-encoded.
func SanitizeURL(value string) string {
	if value == "" {
		return ""
	}

	url := strings.ReplaceAll(strings.TrimLeft(value, phpTrimSet), " ", "%20")
	url = urlDisallowed.ReplaceAllString(url, "")
	if url == "" {
		return ""
	}

	if !strings.HasPrefix(strings.ToLower(url), "mailto:") {
		url = deepReplace(url, "%0d", "%0a", "%0D", "%0A")
	}
	url = strings.ReplaceAll(url, ";//", "://")
	if url == "" {
		return ""
	}

	if !strings.Contains(url, ":") && !strings.ContainsRune("/#?", rune(url[0])) && !phpFileRef.MatchString(url) {
		url = "http://" + url
	}

	url = ampersandEntity.ReplaceAllStringFunc(url, func(m string) string {
		if m == "&" || m == "&amp;" {
			return "&#038;"
		}
		return m
	})
	url = strings.ReplaceAll(url, "'", "&#039;")

	if url[0] == '/' {
		return url
	}
	if !hasAllowedScheme(url) {
		return ""
	}
	return url
}

func hasAllowedScheme(url string) bool {
	colon := strings.Index(url, ":")
	if colon < 0 {
		return true
	}
	prefix := url[:colon]
	if strings.ContainsAny(prefix, "/?#") {
		return true
	}
	_, ok := allowedSchemes[strings.ToLower(prefix)]
	return ok
}

func deepReplace(value string, search ...string) string {
	for {
		changed := false
		for _, s := range search {
			if strings.Contains(value, s) {
				value = strings.ReplaceAll(value, s, "")
				changed = true
			}
		}
		if !changed {
			return value
		}
	}
}

// escapeStrayLessThan escapes any "<" that does not open a complete tag so
// the tag stripper leaves the surrounding text alone.
func escapeStrayLessThan(value string) string {
	return lessThanRun.ReplaceAllStringFunc(value, func(m string) string {
		if strings.HasSuffix(m, ">") {
			return m
		}
		return html.EscapeString(m)
	})
}

// StripTags removes markup from value, dropping script and style bodies, and
// keeps line breaks intact.
func StripTags(value string) string {
	if !strings.Contains(value, "<") {
		return strings.Trim(value, phpTrimSet)
	}
	return stripTags(value)
}

func stripTags(value string) string {
	var (
		b    strings.Builder
		skip string
	)

	z := xhtml.NewTokenizer(strings.NewReader(value))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return strings.Trim(b.String(), phpTrimSet)
		case xhtml.TextToken:
			if skip == "" {
				b.Write(z.Raw())
			}
		case xhtml.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); skip == "" && (tag == "script" || tag == "style") {
				skip = tag
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if skip != "" && string(name) == skip {
				skip = ""
			}
		}
	}
}
