package shell

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrParse is returned for lines that cannot be tokenized or bound
var ErrParse = errors.New("parse error")

// Tokenize splits a line on whitespace. Double quotes group text into one
// token and may start mid-token (name:"my vm"); inside quotes a doubled
// quote is a literal quote.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inToken bool
		quoted  bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quoted:
			if r != '"' {
				cur.WriteRune(r)
				continue
			}
			if i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				i++
				continue
			}
			quoted = false
		case r == '"':
			quoted, inToken = true, true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}

	if quoted {
		return nil, fmt.Errorf("%w: unterminated quote", ErrParse)
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
