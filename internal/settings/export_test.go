package settings

import (
	"encoding/json"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExport(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.Set("custom", "value"))
	want := s.Map()

	decoders := map[Format]func([]byte, any) error{
		FormatYAML: yaml.Unmarshal,
		FormatTOML: toml.Unmarshal,
		FormatJSON: json.Unmarshal,
	}
	for f, decode := range decoders {
		t.Run(string(f), func(t *testing.T) {
			data, err := s.Export(f)
			require.NoError(t, err)

			var got map[string]string
			require.NoError(t, decode(data, &got))
			assert.Equal(t, want, got)
		})
	}

	_, err := s.Export("xml")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"YML", FormatYAML, false},
		{" toml ", FormatTOML, false},
		{"json", FormatJSON, false},
		{"ini", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
