package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		wantOut []string
		noOut   []string
	}{
		{
			name:    "default version",
			version: "0.1.0",
			wantOut: []string{"sqlgrain v0.1.0"},
			noOut:   []string{"commit:"},
		},
		{
			name:    "with commit",
			version: "1.2.3",
			commit:  "abc123",
			wantOut: []string{"sqlgrain v1.2.3", "commit: abc123"},
		},
		{
			name:    "dev version",
			version: "dev",
			wantOut: []string{"sqlgrain vdev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version, tt.commit)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			require.NoError(t, cmd.Execute())

			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
			for _, no := range tt.noOut {
				assert.NotContains(t, buf.String(), no)
			}
		})
	}
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand("test", "")
	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}
