package ws

// Message types from client to server
const (
	TypeHello = "hello"
	TypeTurn  = "turn"
)

// Message types from server to client
const (
	TypeHelloAck = "hello_ack"
	TypeReply    = "reply"
	TypeTransfer = "transfer"
	TypeEnd      = "end"
	TypeError    = "error"
)

// Error codes
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeHelloRequired  = "hello_required"
	ErrorCodeInternal       = "internal_error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type string `json:"type"`
	Ts   int64  `json:"ts"`
}

// HelloMessage binds the connection to a caller.
type HelloMessage struct {
	BaseMessage
	CallerID  string `json:"caller_id"`
	InputMode string `json:"input_mode,omitempty"`
}

// HelloAckMessage confirms the caller binding.
type HelloAckMessage struct {
	BaseMessage
	CallerID  string `json:"caller_id"`
	InputMode string `json:"input_mode"`
}

// TurnMessage carries one utterance. Empty text counts as silence.
type TurnMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// ReplyMessage is the bot's answer when the dialog continues.
type ReplyMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// TransferMessage asks the client to hand the caller to a person.
type TransferMessage struct {
	BaseMessage
	PhoneNumber string `json:"phone_number"`
	Note        string `json:"note,omitempty"`
}

// EndMessage ends the conversation.
type EndMessage struct {
	BaseMessage
}

// ErrorMessage reports a protocol error.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}
