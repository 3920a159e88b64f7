package config

import (
	"testing"

	"github.com/retroenv/kdlmap/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		opts    options.Program
		want    options.Program
		wantErr string
	}{
		{
			name: "defaults",
			want: options.Program{Flags: options.Flags{Scale: DefaultScale}},
		},
		{
			name: "game is lower cased",
			opts: options.Program{Flags: options.Flags{Game: " KDL1 ", Scale: 2}},
			want: options.Program{Flags: options.Flags{Game: "kdl1", Scale: 2}},
		},
		{
			name:    "unknown game",
			opts:    options.Program{Flags: options.Flags{Game: "kdl3"}},
			wantErr: "unsupported game 'kdl3'. Valid options: kdl2, kdl1",
		},
		{
			name:    "scale too large",
			opts:    options.Program{Flags: options.Flags{Scale: MaxScale + 1}},
			wantErr: "scale 9 out of range",
		},
		{
			name:    "negative level",
			opts:    options.Program{Flags: options.Flags{Level: -1}},
			wantErr: "invalid level index -1",
		},
		{
			name:    "negative workers",
			opts:    options.Program{Flags: options.Flags{Workers: -2}},
			wantErr: "invalid worker count -2",
		},
		{
			name:    "all and list",
			opts:    options.Program{Flags: options.Flags{All: true, List: true}},
			wantErr: "exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := Normalize(&opts)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, opts)
		})
	}
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}
