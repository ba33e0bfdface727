package domain

// TurnRequest is one caller utterance delivered by the front-end.
type TurnRequest struct {
	CallerID   string     `json:"caller_id"`
	Utterance  string     `json:"utterance"`
	InputMode  InputMode  `json:"input_mode"`
	Attributes Attributes `json:"attributes,omitempty"`
}

// TurnOutcome is the single result of processing a TurnRequest.
type TurnOutcome struct {
	Kind OutcomeKind `json:"kind"`
	// Reply is the text to speak or display for OutcomeContinue.
	Reply string `json:"reply,omitempty"`
	// TransferNumber and Note are set for OutcomeTransfer.
	TransferNumber string     `json:"transfer_number,omitempty"`
	Note           string     `json:"note,omitempty"`
	Attributes     Attributes `json:"attributes"`
}

// Continue builds a continue-dialog outcome.
func Continue(reply string, attrs Attributes) *TurnOutcome {
	return &TurnOutcome{Kind: OutcomeContinue, Reply: reply, Attributes: attrs}
}

// Transfer builds a transfer-call outcome.
func Transfer(number, note string, attrs Attributes) *TurnOutcome {
	return &TurnOutcome{Kind: OutcomeTransfer, TransferNumber: number, Note: note, Attributes: attrs}
}

// End builds an end-call outcome.
func End(attrs Attributes) *TurnOutcome {
	return &TurnOutcome{Kind: OutcomeEnd, Attributes: attrs}
}
