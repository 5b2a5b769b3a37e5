package storage

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxDownloadNameLen bounds suggested download names to keep the
// Content-Disposition header within sane limits.
const maxDownloadNameLen = 120

// downloadNameChars matches characters disallowed in a suggested download
// name. More permissive than object-key sanitizing: spaces and parentheses
// are common in human-facing file names.
var downloadNameChars = regexp.MustCompile(`[^A-Za-z0-9._\- ()]+`)

// SafeDownloadName sanitizes a suggested download file name. If the name has
// no extension, fallbackExt (e.g. ".pdf") is appended.
func SafeDownloadName(name, fallbackExt string) string {
	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		name = "download"
	}
	name = downloadNameChars.ReplaceAllString(name, "_")
	if fallbackExt != "" && path.Ext(name) == "" {
		name += fallbackExt
	}
	if len(name) > maxDownloadNameLen {
		// Cut at a rune boundary so the name stays valid UTF-8.
		cut := maxDownloadNameLen
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	if name == "" {
		return "download" + fallbackExt
	}
	return name
}

// ContentDisposition builds an RFC 5987 compatible header value with an
// ASCII fallback filename and a percent-encoded UTF-8 filename*, so
// non-ASCII names display correctly in capable clients while older ones
// still get a usable name. disposition is "inline" or "attachment".
func ContentDisposition(disposition, name string) string {
	var b strings.Builder
	b.WriteString(disposition)
	b.WriteString(`; filename="`)
	b.WriteString(asciiFallback(name))
	b.WriteString(`"; filename*=UTF-8''`)
	b.WriteString(percentEncode(name))
	return b.String()
}

// asciiFallback drops non-ASCII runes and quotes from name.
func asciiFallback(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "download"
	}
	return b.String()
}

// percentEncode encodes name per RFC 5987: every byte outside the
// unreserved set becomes %XX.
func percentEncode(name string) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xf])
		}
	}
	return b.String()
}
