package rewrite

import (
	"fmt"
	"strconv"
	"strings"
)

// positionalFormat converts a Delphi format string ("%s", "%-8.2f",
// "%1:d") into a composite format string ("{0}", "{0,-8:F2}", "{1}").
// Arguments are numbered in order of appearance; an explicit index resets
// the counter the way Format does. Literal braces are doubled.
func positionalFormat(format string) (string, error) {
	var sb strings.Builder
	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch c {
		case '{', '}':
			sb.WriteByte(c)
			sb.WriteByte(c)
			continue
		case '%':
		default:
			sb.WriteByte(c)
			continue
		}

		i++
		if i >= len(format) {
			return "", fmt.Errorf("format %q ends inside a specifier", format)
		}
		if format[i] == '%' {
			sb.WriteByte('%')
			continue
		}

		spec, n, err := parseSpec(format[i:])
		if err != nil {
			return "", fmt.Errorf("format %q: %w", format, err)
		}
		i += n - 1

		if spec.index >= 0 {
			next = spec.index
		}
		sb.WriteByte('{')
		sb.WriteString(strconv.Itoa(next))
		next++
		if spec.width != "" {
			sb.WriteByte(',')
			if spec.left {
				sb.WriteByte('-')
			}
			sb.WriteString(spec.width)
		}
		if f := spec.netFormat(); f != "" {
			sb.WriteByte(':')
			sb.WriteString(f)
		}
		sb.WriteByte('}')
	}
	return sb.String(), nil
}

type formatSpec struct {
	index     int
	left      bool
	width     string
	precision string
	verb      byte
}

// parseSpec reads [index ":"] ["-"] [width] ["." prec] verb from s, which
// starts right after the percent sign. It returns the number of bytes
// consumed.
func parseSpec(s string) (formatSpec, int, error) {
	spec := formatSpec{index: -1}
	i := 0
	digits := func() string {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return s[start:i]
	}

	if d := digits(); d != "" {
		if i < len(s) && s[i] == ':' {
			spec.index, _ = strconv.Atoi(d)
			i++
		} else {
			i -= len(d)
		}
	}
	if i < len(s) && s[i] == '-' {
		spec.left = true
		i++
	}
	if i < len(s) && s[i] == '*' {
		return spec, 0, fmt.Errorf("width taken from arguments is not supported")
	}
	spec.width = digits()
	if i < len(s) && s[i] == '.' {
		i++
		spec.precision = digits()
	}
	if i >= len(s) {
		return spec, 0, fmt.Errorf("missing format verb")
	}

	spec.verb = s[i] | 0x20 // lower case
	switch spec.verb {
	case 'd', 'u', 'e', 'f', 'g', 'n', 'm', 'p', 'x':
	case 's':
		if spec.precision != "" {
			return spec, 0, fmt.Errorf("string precision %%.%ss is not supported", spec.precision)
		}
	default:
		return spec, 0, fmt.Errorf("unknown format verb %q", s[i])
	}
	return spec, i + 1, nil
}

var netFormats = map[byte]string{
	'd': "D",
	'u': "D",
	'e': "E",
	'f': "F",
	'g': "G",
	'n': "N",
	'm': "C",
	'x': "X",
	'p': "X8",
}

// netFormat returns the format suffix of the composite item, if any.
func (f formatSpec) netFormat() string {
	base := netFormats[f.verb]
	switch {
	case base == "":
		return ""
	case f.verb == 'p':
		return base
	case f.precision != "":
		return base + f.precision
	case f.verb == 'd', f.verb == 'u', f.verb == 'g':
		return ""
	}
	return base
}
