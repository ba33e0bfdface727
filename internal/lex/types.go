// Package lex maps Amazon Lex V2 fulfilment events onto turn requests and
// turn outcomes back onto Lex V2 responses.
package lex

// Event is the Lex V2 code hook input.
type Event struct {
	MessageVersion      string            `json:"messageVersion"`
	InvocationSource    string            `json:"invocationSource"`
	InputMode           string            `json:"inputMode"`
	ResponseContentType string            `json:"responseContentType,omitempty"`
	SessionID           string            `json:"sessionId"`
	InputTranscript     string            `json:"inputTranscript"`
	Bot                 Bot               `json:"bot"`
	Interpretations     []Interpretation  `json:"interpretations,omitempty"`
	RequestAttributes   map[string]string `json:"requestAttributes,omitempty"`
	SessionState        SessionState      `json:"sessionState"`
}

// Bot identifies the invoking bot.
type Bot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AliasID  string `json:"aliasId,omitempty"`
	LocaleID string `json:"localeId"`
	Version  string `json:"version"`
}

// Interpretation is one intent candidate recognized by Lex.
type Interpretation struct {
	Intent            Intent   `json:"intent"`
	NLUConfidence     *float64 `json:"nluConfidence,omitempty"`
	InterpretationSrc string   `json:"interpretationSource,omitempty"`
}

// SessionState is shared by events and responses.
type SessionState struct {
	SessionAttributes    map[string]string `json:"sessionAttributes"`
	DialogAction         *DialogAction     `json:"dialogAction,omitempty"`
	Intent               *Intent           `json:"intent,omitempty"`
	OriginatingRequestID string            `json:"originatingRequestId,omitempty"`
}

// DialogAction tells Lex what to do next.
type DialogAction struct {
	Type         string `json:"type"`
	SlotToElicit string `json:"slotToElicit,omitempty"`
}

// Intent is a Lex intent and its fulfilment state.
type Intent struct {
	Name              string         `json:"name"`
	State             string         `json:"state,omitempty"`
	ConfirmationState string         `json:"confirmationState,omitempty"`
	Slots             map[string]any `json:"slots,omitempty"`
}

// Message is a response message.
type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Response is the Lex V2 code hook output.
type Response struct {
	SessionState      SessionState      `json:"sessionState"`
	Messages          []Message         `json:"messages,omitempty"`
	RequestAttributes map[string]string `json:"requestAttributes,omitempty"`
}

// Dialog action types, intent names and states used in responses.
const (
	ActionElicitIntent = "ElicitIntent"
	ActionDelegate     = "Delegate"

	IntentTransfer = "Transfer"
	IntentQuit     = "Quit"

	StateReadyForFulfillment = "ReadyForFulfillment"

	ContentTypePlainText = "PlainText"
	InputModeText        = "Text"
)
