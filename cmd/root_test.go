package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3")

	cmd := newVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "outlookmail version 1.2.3\n", buf.String())
}

func TestMessagesListCmd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer env-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"value":[
			{"id": "m1", "subject": "Hello", "isRead": false,
			 "sender": {"emailAddress": {"name": "Anna", "address": "anna@example.com"}}},
			{"id": "m2", "subject": "World", "isRead": true}
		]}`)
	}))
	t.Cleanup(server.Close)

	t.Setenv("OUTLOOK_TOKEN", "env-token")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")

	oldBase := baseURLFlag
	baseURLFlag = server.URL
	t.Cleanup(func() { baseURLFlag = oldBase })

	cmd := newMessagesListCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--limit", "2"})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "Anna (anna@example.com)")
	// Unread messages are marked
	assert.Contains(t, out, "* m1")
}

func TestSendCmd_MissingToken(t *testing.T) {
	t.Setenv("OUTLOOK_TOKEN", "")

	cmd := newSendCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--to", "ben@example.com", "--subject", "hi"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTLOOK_TOKEN")
}
