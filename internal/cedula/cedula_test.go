package cedula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain digits", raw: "00113918205", want: "00113918205"},
		{name: "dashed", raw: "001-1391820-5", want: "00113918205"},
		{name: "spaces and dashes", raw: " 001 1391820-5 ", want: "00113918205"},
		{name: "too short", raw: "123", wantErr: true},
		{name: "too long", raw: "001139182055", wantErr: true},
		{name: "letters only", raw: "abcdefghijk", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "ten digits plus letter", raw: "0011391820X", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ced, err := Parse(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ced.String())
		})
	}
}

func TestSegments(t *testing.T) {
	ced, err := Parse("001-1391820-5")
	require.NoError(t, err)

	assert.Equal(t, "001", ced.Municipality())
	assert.Equal(t, "1391820", ced.Sequence())
	assert.Equal(t, "5", ced.CheckDigit())
	assert.Equal(t, "001-1391820-5", ced.Formatted())
}
