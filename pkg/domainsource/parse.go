package domainsource

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"mailguard/pkg/domain"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Format selects how a list body is parsed.
type Format string

const (
	// FormatText is one domain per line; blank lines and lines starting with
	// "#" are ignored.
	FormatText Format = "text"
	// FormatJSON is a JSON array of domain strings.
	FormatJSON Format = "json"
	// FormatAuto picks FormatJSON when the body starts with "[" and FormatText otherwise.
	FormatAuto Format = "auto"
)

// maxListSize caps how much of a list body is read.
const maxListSize = 64 << 20

// ErrListTooLarge is returned for list bodies over the size cap. Such a list is
// rejected whole rather than truncated.
var ErrListTooLarge = errors.New("domain list is too large")

// Parse reads a domain list in the given format. An empty result is reported
// as ErrEmptyList.
func Parse(r io.Reader, format Format) (*domain.DomainSet, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxListSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read list")
	}
	if len(body) > maxListSize {
		return nil, ErrListTooLarge
	}

	if format == FormatAuto || format == "" {
		format = FormatText
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
			format = FormatJSON
		}
	}

	var domains []string
	switch format {
	case FormatText:
		domains, err = parseText(body)
	case FormatJSON:
		domains, err = parseJSON(body)
	default:
		return nil, errors.Errorf("unknown list format %q", format)
	}
	if err != nil {
		return nil, err
	}

	set := domain.NewDomainSet(domains...)
	if set.Len() == 0 {
		return nil, ErrEmptyList
	}

	return set, nil
}

func parseText(body []byte) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan text list")
	}

	return out, nil
}

func parseJSON(body []byte) ([]string, error) {
	var out []string
	d := jx.DecodeBytes(body)
	if err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)

		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode json list")
	}

	return out, nil
}
