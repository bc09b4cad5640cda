// Package output renders API results, usage and alias listings as text.
package output

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Format selects how a result is printed
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatJSONPretty
	FormatPNG
)

var formatNames = map[Format]string{
	FormatText:       "text",
	FormatJSON:       "json",
	FormatJSONPretty: "json-pretty",
	FormatPNG:        "png",
}

// FormatNames lists the accepted --output values
var FormatNames = []string{"text", "json", "json-pretty", "png"}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "unknown"
}

// ParseFormat parses an --output value, case-insensitive
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatText, nil
	}
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return FormatText, fmt.Errorf("invalid output %q, must be one of %s", s, strings.Join(FormatNames, ", "))
}

// FormatFlag adapts Format to pflag.Value
type FormatFlag struct {
	Format Format
}

var _ pflag.Value = (*FormatFlag)(nil)

func (f *FormatFlag) String() string {
	return f.Format.String()
}

func (f *FormatFlag) Set(s string) error {
	v, err := ParseFormat(s)
	if err != nil {
		return err
	}
	f.Format = v
	return nil
}

func (f *FormatFlag) Type() string {
	return "format"
}
