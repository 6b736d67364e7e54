package parser

import (
	"errors"
	"strings"
	"unicode"
)

// Sigil marks a console line as a command.
const Sigil = '$'

// Parser errors. Parse wraps them so callers can tell the failure apart.
var (
	ErrMissingSigil      = errors.New("missing command sigil")
	ErrUnterminatedQuote = errors.New("unterminated quote")
	ErrUnknownGroup      = errors.New("unknown command group")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrArity             = errors.New("wrong argument count")
)

// Token is one positional word of a command line.
type Token struct {
	Value string
	// Quoted is true when the token was written between double quotes.
	Quoted bool
}

// Line is a command line split into its parts.
type Line struct {
	Group   string
	Command string
	Args    []Token
}

// SplitLine trims line, checks the sigil and splits it into group, command
// and arguments. It reports ErrMissingSigil or ErrUnterminatedQuote. An
// all-whitespace line yields a zero Line and no error.
func SplitLine(line string) (Line, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Line{}, nil
	}
	if line[0] != Sigil {
		return Line{}, ErrMissingSigil
	}

	group, rest := cut(strings.TrimSpace(line[1:]))
	if strings.EqualFold(group, helpGroup) {
		// help ignores whatever follows it
		return Line{Group: group}, nil
	}
	tokens, err := Tokenize(rest)
	if err != nil {
		return Line{Group: group}, err
	}

	parsed := Line{Group: group}
	if len(tokens) > 0 {
		parsed.Command = tokens[0].Value
		parsed.Args = tokens[1:]
	}
	return parsed, nil
}

// Tokenize splits s on whitespace. A double quote opens a token that runs
// to the next double quote; the quotes are dropped and the token is marked
// Quoted.
func Tokenize(s string) ([]Token, error) {
	var tokens []Token
	pos := 0
	for pos < len(s) {
		for pos < len(s) && isSpace(s[pos]) {
			pos++
		}
		if pos >= len(s) {
			break
		}

		if s[pos] == '"' {
			end := strings.IndexByte(s[pos+1:], '"')
			if end < 0 {
				return nil, ErrUnterminatedQuote
			}
			tokens = append(tokens, Token{Value: s[pos+1 : pos+1+end], Quoted: true})
			pos += end + 2
			continue
		}

		start := pos
		for pos < len(s) && !isSpace(s[pos]) {
			pos++
		}
		tokens = append(tokens, Token{Value: s[start:pos]})
	}
	return tokens, nil
}

// JoinArgs re-serializes tokens with single spaces, re-quoting any quoted
// token that contains whitespace so handlers can split it again.
func JoinArgs(tokens []Token) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		if tok.Quoted && strings.IndexFunc(tok.Value, unicode.IsSpace) >= 0 {
			b.WriteByte('"')
			b.WriteString(tok.Value)
			b.WriteByte('"')
			continue
		}
		b.WriteString(tok.Value)
	}
	return b.String()
}

// SplitArgs tokenizes a handler's argument string and returns the values.
// Handlers use it for their own secondary parsing.
func SplitArgs(args string) ([]string, error) {
	tokens, err := Tokenize(args)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(tokens))
	for i, tok := range tokens {
		values[i] = tok.Value
	}
	return values, nil
}

func cut(s string) (head, tail string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}
