package bot

import (
	"strings"
	"unicode"
)

// aliases maps common misspellings onto real commands
var aliases = map[string]string{
	"/star": "/start",
}

type token struct {
	text string
	end  int // byte offset just past the token in the argument string
}

// command is one parsed slash command
type command struct {
	name string
	args []string
	toks []token
	raw  string // argument string after the command word
}

// parseCommand splits "/cmd@bot arg1 "two words" arg3". A command addressed
// to another bot is not ours and yields ok=false.
func parseCommand(text, botUsername string) (command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return command{}, false
	}

	head := text
	raw := ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, raw = text[:i], strings.TrimLeftFunc(text[i:], unicode.IsSpace)
	}

	name := head
	if at := strings.IndexByte(head, '@'); at >= 0 {
		target := head[at+1:]
		if botUsername != "" && !strings.EqualFold(target, botUsername) {
			return command{}, false
		}
		name = head[:at]
	}
	name = strings.ToLower(name)
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	if len(name) < 2 {
		return command{}, false
	}

	toks := tokenize(raw)
	args := make([]string, len(toks))
	for i, t := range toks {
		args[i] = t.text
	}
	return command{name: name, args: args, toks: toks, raw: raw}, true
}

// tokenize splits on whitespace; double quotes group words into one argument
func tokenize(s string) []token {
	var (
		toks    []token
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for i, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				toks = append(toks, token{text: cur.String(), end: i})
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		toks = append(toks, token{text: cur.String(), end: len(s)})
	}
	return toks
}

// rest returns everything after the first n arguments. When exactly one
// argument remains it is returned unquoted; otherwise the raw text is kept
// so that spaces inside SSIDs and passwords survive.
func (c command) rest(n int) string {
	if n >= len(c.toks) {
		return ""
	}
	if len(c.toks) == n+1 {
		return c.args[n]
	}
	start := 0
	if n > 0 {
		start = c.toks[n-1].end
	}
	return strings.TrimSpace(c.raw[start:])
}
