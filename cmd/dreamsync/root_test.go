package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUser(t *testing.T) {
	valid := uuid.New()

	tests := []struct {
		name    string
		raw     string
		want    uuid.UUID
		wantErr error
	}{
		{name: "valid", raw: valid.String(), want: valid},
		{name: "padded", raw: "  " + valid.String() + "\n", want: valid},
		{name: "empty", raw: "", wantErr: errNoUser},
		{name: "nil uuid", raw: uuid.Nil.String(), wantErr: errNoUser},
		{name: "garbage", raw: "not-a-uuid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseUser(tt.raw)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.want == uuid.Nil:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseRecordedAt(t *testing.T) {
	now := time.Date(2026, 10, 15, 7, 0, 0, 0, time.UTC)

	got, err := parseRecordedAt("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = parseRecordedAt("2026-10-14T06:30:00+02:00", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 10, 14, 4, 30, 0, 0, time.UTC)))

	_, err = parseRecordedAt("yesterday", now)
	assert.Error(t, err)
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	want := []string{"process", "sync", "queue", "discard", "report", "dreams", "enrich", "serve", "migrate"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, cmd.Name())
		}
	}
}

func TestRootCmd_ArgValidation(t *testing.T) {
	tests := []struct {
		args []string
	}{
		{[]string{"process"}},
		{[]string{"discard"}},
		{[]string{"enrich", "a", "b"}},
		{[]string{"sync", "extra"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			root := newRootCmd()
			// Skip config loading; argument validation runs before it.
			root.PersistentPreRunE = nil
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(&out)
			root.SetArgs(tt.args)

			assert.Error(t, root.Execute())
		})
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, captureSummary{Persisted: 1, Errors: []string{"boom"}}))
	assert.Contains(t, buf.String(), `"persisted": 1`)
	assert.Contains(t, buf.String(), `"errors": [`)

	buf.Reset()
	require.NoError(t, printJSON(&buf, captureSummary{}))
	assert.False(t, strings.Contains(buf.String(), "errors"), "empty errors should be omitted")
}

func TestErrNoUser_NamesEnv(t *testing.T) {
	assert.Contains(t, errNoUser.Error(), userEnv)
}
