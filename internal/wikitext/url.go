package wikitext

import "strings"

var bracketSchemes = []string{
	"http://", "https://", "ftp://", "ftps://", "sftp://", "irc://", "ircs://",
	"gopher://", "git://", "svn://", "news:", "mailto:", "urn:", "tel:", "//",
}

var bareSchemes = []string{"http://", "https://", "ftp://"}

// bracketedURLEnd recognizes [scheme://target optional text] starting at i.
func bracketedURLEnd(text string, i int) (int, bool) {
	rest := text[i+1:]
	scheme := matchScheme(rest, bracketSchemes)
	if scheme == "" || len(rest) == len(scheme) || isURLStop(rest[len(scheme)]) {
		return 0, false
	}
	for j := i + 1 + len(scheme); j < len(text); j++ {
		switch text[j] {
		case ']':
			return j + 1, true
		case '\n', '[':
			return 0, false
		}
	}
	return 0, false
}

// bareURLEnd recognizes a free-standing URL such as https://example.org/a_(b).
func bareURLEnd(text string, i int) (int, bool) {
	if i > 0 && isWordByte(text[i-1]) {
		return 0, false
	}
	scheme := matchScheme(text[i:], bareSchemes)
	if scheme == "" {
		return 0, false
	}
	end := i + len(scheme)
	for end < len(text) && !isURLStop(text[end]) {
		end++
	}
	url := text[i:end]
	for len(url) > len(scheme) {
		last := url[len(url)-1]
		if strings.IndexByte(".,;:!?'", last) >= 0 || (last == ')' && !strings.Contains(url, "(")) {
			url = url[:len(url)-1]
			continue
		}
		break
	}
	if len(url) == len(scheme) {
		return 0, false
	}
	return i + len(url), true
}

func matchScheme(s string, schemes []string) string {
	for _, sc := range schemes {
		if len(s) >= len(sc) && strings.EqualFold(s[:len(sc)], sc) {
			return sc
		}
	}
	return ""
}

func isURLStop(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '[', ']', '<', '>', '{', '}', '|', '"':
		return true
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
