package pyio

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// codec converts between bytes and text for one encoding and error policy.
// UTF-8 and ASCII are handled directly; everything else goes through an
// x/text encoding looked up by IANA name.
type codec struct {
	name    string
	errors  string
	enc     encoding.Encoding
	decoder *encoding.Decoder
}

var encodingAliases = map[string]string{
	"utf8":     "utf-8",
	"u8":       "utf-8",
	"latin-1":  "iso-8859-1",
	"latin1":   "iso-8859-1",
	"l1":       "iso-8859-1",
	"ascii":    "ascii",
	"us-ascii": "ascii",
	"646":      "ascii",
}

func normalizeEncoding(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	if alias, ok := encodingAliases[n]; ok {
		return alias
	}
	return n
}

func newCodec(name, errs string) (*codec, error) {
	switch errs {
	case "":
		errs = "strict"
	case "strict", "replace", "ignore":
	default:
		return nil, runtime.Errorf(runtime.LookupError, "unknown error handler name '%s'", errs)
	}
	if name == "" {
		name = "utf-8"
	}
	c := &codec{name: normalizeEncoding(name), errors: errs}
	switch c.name {
	case "utf-8", "ascii":
		return c, nil
	}
	enc, err := ianaindex.IANA.Encoding(c.name)
	if err != nil || enc == nil {
		return nil, runtime.Errorf(runtime.LookupError, "unknown encoding: %s", name)
	}
	c.enc = enc
	c.decoder = enc.NewDecoder()
	return c, nil
}

func (c *codec) reset() {
	if c.enc != nil {
		c.decoder = c.enc.NewDecoder()
	}
}

func (c *codec) decodeError(b byte, pos int, reason string) error {
	return runtime.Errorf(runtime.UnicodeDecodeError,
		"'%s' codec can't decode byte 0x%02x in position %d: %s", c.name, b, pos, reason)
}

// decode converts data, returning the text and the undecodable tail that
// must wait for more input. At EOF nothing is held back.
func (c *codec) decode(data []byte, eof bool) (string, []byte, error) {
	switch c.name {
	case "utf-8":
		return c.decodeUTF8(data, eof)
	case "ascii":
		return c.decodeASCII(data)
	}
	var out []byte
	dst := make([]byte, 4*len(data)+16)
	src := data
	for {
		nDst, nSrc, err := c.decoder.Transform(dst, src, eof)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]
		switch {
		case err == nil:
			return c.clean(string(out)), nil, nil
		case errors.Is(err, transform.ErrShortDst):
			continue
		case errors.Is(err, transform.ErrShortSrc):
			return c.clean(string(out)), append([]byte(nil), src...), nil
		default:
			if c.errors == "strict" && len(src) > 0 {
				return "", nil, c.decodeError(src[0], len(data)-len(src), err.Error())
			}
			return c.clean(string(out)), nil, nil
		}
	}
}

func (c *codec) clean(s string) string {
	if c.errors == "ignore" {
		return strings.ReplaceAll(s, string(utf8.RuneError), "")
	}
	return s
}

func (c *codec) decodeUTF8(data []byte, eof bool) (string, []byte, error) {
	var b strings.Builder
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r != utf8.RuneError || size > 1 {
			b.WriteRune(r)
			i += size
			continue
		}
		if !eof && !utf8.FullRune(data[i:]) {
			return b.String(), append([]byte(nil), data[i:]...), nil
		}
		switch c.errors {
		case "strict":
			return "", nil, c.decodeError(data[i], i, "invalid start byte")
		case "replace":
			b.WriteRune(utf8.RuneError)
		}
		i++
	}
	return b.String(), nil, nil
}

func (c *codec) decodeASCII(data []byte) (string, []byte, error) {
	var b strings.Builder
	for i, ch := range data {
		if ch < 0x80 {
			b.WriteByte(ch)
			continue
		}
		switch c.errors {
		case "strict":
			return "", nil, c.decodeError(ch, i, "ordinal not in range(128)")
		case "replace":
			b.WriteRune(utf8.RuneError)
		}
	}
	return b.String(), nil, nil
}

// encode converts text one character at a time so that unencodable
// characters are handled by the error policy.
func (c *codec) encode(s string) ([]byte, error) {
	if c.name == "utf-8" {
		return []byte(s), nil
	}
	var encoder *encoding.Encoder
	if c.enc != nil {
		encoder = c.enc.NewEncoder()
	}
	var out []byte
	pos := 0
	for _, r := range s {
		ok := true
		var enc []byte
		if encoder == nil {
			ok = r < 0x80
			enc = []byte{byte(r)}
		} else {
			b, err := encoder.Bytes([]byte(string(r)))
			ok = err == nil
			enc = b
		}
		if ok {
			out = append(out, enc...)
		} else {
			switch c.errors {
			case "strict":
				return nil, runtime.Errorf(runtime.UnicodeEncodeError,
					"'%s' codec can't encode character '\\u%04x' in position %d: ordinal not in range", c.name, r, pos)
			case "replace":
				out = append(out, '?')
			}
		}
		pos++
	}
	return out, nil
}
