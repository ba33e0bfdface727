// Package domain defines the core domain models for the dialog engine.
package domain

import "strings"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// InputMode is how the caller talks to the bot. It is fixed when a session is created.
type InputMode string

const (
	InputModeText  InputMode = "text"
	InputModeVoice InputMode = "voice"
)

// ParseInputMode maps a front-end input mode string onto an InputMode.
// Lex reports "Text", "Speech" or "DTMF"; anything that is not text is voice.
func ParseInputMode(s string) (InputMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return InputModeText, true
	case "voice", "speech", "dtmf":
		return InputModeVoice, true
	}
	return "", false
}

// Valid reports whether m is a known input mode.
func (m InputMode) Valid() bool {
	return m == InputModeText || m == InputModeVoice
}

// OutcomeKind is the externally visible result of one turn.
type OutcomeKind string

const (
	OutcomeContinue OutcomeKind = "continue"
	OutcomeTransfer OutcomeKind = "transfer"
	OutcomeEnd      OutcomeKind = "end"
)

// Carried attribute keys shared with the dialog front-end.
const (
	AttrBlankCounter   = "blankCounter"
	AttrTransferNumber = "transferNumber"
	AttrBotResponse    = "botResponse"
)

// Reserved signaling tool names.
const (
	ToolTransferCall = "transfer_call"
	ToolHangupCall   = "hangup_call"
)
