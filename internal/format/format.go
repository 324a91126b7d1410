// Package format renders text for Telegram MarkdownV2 and keeps messages under the size limit.
package format

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// MaxMessageLength leaves headroom under Telegram's 4096 unit cap
const MaxMessageLength = 4000

// Placeholder is shown for missing values
const Placeholder = "-"

const specialChars = "_*[]()~`>#+-=|{}.!\\"

// Escape prefixes every MarkdownV2 special character with a backslash
func Escape(s string) string {
	if !strings.ContainsAny(s, specialChars) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Unescape reverses Escape
func Unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// Value escapes v, rendering empty as the placeholder
func Value(v string) string {
	if v == "" {
		return Escape(Placeholder)
	}
	return Escape(v)
}

// Code renders v as inline code. Inside code entities only ` and \ need escaping.
func Code(v string) string {
	r := strings.NewReplacer("\\", "\\\\", "`", "\\`")
	return "`" + r.Replace(v) + "`"
}

// Bold escapes v and wraps it in bold markers
func Bold(v string) string {
	return "*" + Escape(v) + "*"
}

// Length counts UTF-16 code units, which is what Telegram limits
func Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Chunk splits s into pieces of at most limit units. Splits happen only at
// line boundaries, except for a single line that alone exceeds limit.
// Concatenating the result yields s. An empty s yields no chunks.
func Chunk(s string, limit int) []string {
	if s == "" {
		return nil
	}
	if limit <= 0 {
		limit = MaxMessageLength
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(s, "\n") {
		if line == "" {
			continue
		}
		n := Length(line)
		if n > limit {
			flush()
			chunks = append(chunks, splitLine(line, limit)...)
			continue
		}
		if curLen+n > limit {
			flush()
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return chunks
}

// splitLine hard-splits one overlong line without cutting an escape sequence
// or a surrogate pair. Cuts are byte offsets, so invalid UTF-8 survives intact.
func splitLine(line string, limit int) []string {
	var out []string
	for len(line) > 0 {
		units, cut, slashes := 0, 0, 0
		for cut < len(line) {
			r, size := utf8.DecodeRuneInString(line[cut:])
			w := utf16.RuneLen(r)
			if w < 0 {
				w = 1
			}
			if units+w > limit {
				break
			}
			units += w
			if r == '\\' {
				slashes++
			} else {
				slashes = 0
			}
			cut += size
		}
		// an unpaired trailing backslash moves to the next chunk
		if cut < len(line) && cut > 1 && slashes%2 == 1 {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(line)
		}
		out = append(out, line[:cut])
		line = line[cut:]
	}
	return out
}
