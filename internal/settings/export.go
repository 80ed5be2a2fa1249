package settings

import (
	"encoding/json"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/nsm/internal/errors"
)

// Format is an export encoding.
type Format string

// Supported export formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatYAML, FormatTOML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.Wrapf(errors.ErrInvalidConfig, "unknown format %q (want yaml, toml or json)", s)
	}
}

// Export encodes the full mapping in the given format. Keys are emitted in
// sorted order by every encoder.
func (s *Settings) Export(f Format) ([]byte, error) {
	m := s.Map()
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatYAML:
		data, err = yaml.Marshal(m)
	case FormatTOML:
		data, err = toml.Marshal(m)
	case FormatJSON:
		data, err = json.MarshalIndent(m, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown format %q", f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encoding settings as %s", f)
	}
	return data, nil
}
