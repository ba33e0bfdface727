package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRowConversion(t *testing.T) {
	session := sampleSession("+15551234567", "2024-03-05")

	row, err := rowFromSession(session)
	require.NoError(t, err)
	assert.Equal(t, "call_sessions", row.TableName())
	assert.Equal(t, "voice", row.InputMode)

	back, err := row.toSession()
	require.NoError(t, err)
	assert.Equal(t, session.Key(), back.Key())
	assert.Equal(t, session.Counter, back.Counter)
	require.Len(t, back.Turns, 3)
	assert.JSONEq(t, string(session.Turns[1].ToolCall.Arguments), string(back.Turns[1].ToolCall.Arguments))
}

func TestSessionRowRejectsCorruptTurns(t *testing.T) {
	_, err := sessionRow{CallerID: "c", Date: "2024-03-05", Turns: "{"}.toSession()
	assert.Error(t, err)
}
