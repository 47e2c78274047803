package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    command
		wantErr bool
	}{
		{name: "default up", args: []string{"migrator"}, want: command{name: "up"}},
		{name: "down", args: []string{"migrator", "down"}, want: command{name: "down"}},
		{name: "version", args: []string{"migrator", "version"}, want: command{name: "version"}},
		{name: "mongo", args: []string{"migrator", "mongo-indexes"}, want: command{name: "mongo-indexes"}},
		{name: "force", args: []string{"migrator", "force", "1"}, want: command{name: "force", version: 1}},
		{name: "force nil version", args: []string{"migrator", "force", "-1"}, want: command{name: "force", version: -1}},
		{name: "force missing version", args: []string{"migrator", "force"}, wantErr: true},
		{name: "force bad version", args: []string{"migrator", "force", "x"}, wantErr: true},
		{name: "unknown", args: []string{"migrator", "seed"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
