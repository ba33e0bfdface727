package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestKeyForUsesReferenceZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}

	// 03:30 UTC on Jan 2 is still Jan 1 in Chicago.
	now := time.Date(2024, 1, 2, 3, 30, 0, 0, time.UTC)
	if got := KeyFor("+15551234567", now, chicago).Date; got != "2024-01-01" {
		t.Fatalf("expected 2024-01-01, got %s", got)
	}
	if got := KeyFor("+15551234567", now, time.UTC).Date; got != "2024-01-02" {
		t.Fatalf("expected 2024-01-02, got %s", got)
	}
}

func TestSessionTurns(t *testing.T) {
	s := NewSession(SessionKey{CallerID: "+15551234567", Date: "2024-01-01"}, InputModeVoice, time.Now())
	call := &ToolCall{ID: "call_1", Name: ToolHangupCall}

	s.AddUser("bye")
	s.AddAssistant("", call)
	s.AddToolResult(call, "The call will be ended.")

	if len(s.Turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(s.Turns))
	}
	if s.Turns[1].ToolCall == nil || s.Turns[1].Role != RoleAssistant {
		t.Fatalf("expected assistant tool call turn, got %+v", s.Turns[1])
	}
	if s.Turns[2].ToolCallID != "call_1" || s.Turns[2].Name != ToolHangupCall {
		t.Fatalf("tool result not linked to its call: %+v", s.Turns[2])
	}
	if s.Key() != (SessionKey{CallerID: "+15551234567", Date: "2024-01-01"}) {
		t.Fatalf("unexpected key %+v", s.Key())
	}
}

func TestAttributesClone(t *testing.T) {
	var nilAttrs Attributes
	if c := nilAttrs.Clone(); c == nil {
		t.Fatalf("expected empty bag from nil")
	}

	orig := Attributes{AttrBlankCounter: "1"}
	c := orig.Clone()
	c[AttrBlankCounter] = "2"
	if orig[AttrBlankCounter] != "1" {
		t.Fatalf("clone shares storage with original")
	}
}

func TestParseInputMode(t *testing.T) {
	cases := map[string]InputMode{"Text": InputModeText, "Speech": InputModeVoice, "DTMF": InputModeVoice, " voice ": InputModeVoice}
	for in, want := range cases {
		got, ok := ParseInputMode(in)
		if !ok || got != want {
			t.Fatalf("ParseInputMode(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseInputMode("fax"); ok {
		t.Fatalf("expected fax to be rejected")
	}
}

func TestIsRecoverableToolError(t *testing.T) {
	recoverable := []error{
		&ToolNotFoundError{Name: "x"},
		fmt.Errorf("wrapped: %w", &SchemaMismatchError{Tool: "x", Reason: "bad"}),
		&PolicyBlockedError{Tool: "x"},
	}
	for _, err := range recoverable {
		if !IsRecoverableToolError(err) {
			t.Fatalf("expected %v to be recoverable", err)
		}
	}

	execErr := &ToolExecutionError{Tool: "x", Err: ErrBackendTimeout}
	if IsRecoverableToolError(execErr) {
		t.Fatalf("execution errors are not recoverable")
	}
	if !errors.Is(execErr, ErrBackendTimeout) {
		t.Fatalf("expected execution error to unwrap")
	}
}
