package service

import (
	"regexp"
	"strings"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// shapeOutcome turns the loop result into the turn's single outcome. A
// transfer takes precedence over a hangup.
func (s *Service) shapeOutcome(session *domain.Session, res loopResult, attrs domain.Attributes) *domain.TurnOutcome {
	switch {
	case res.transferTo != "":
		return domain.Transfer(res.transferTo, sanitizeNote(res.reply, res.transferTo), attrs)
	case res.hangup:
		return domain.End(attrs)
	}

	reply := strings.TrimSpace(res.reply)
	if session.InputMode == domain.InputModeVoice && !strings.HasSuffix(reply, "?") {
		reply += VoiceFollowUp
	}
	return domain.Continue(reply, attrs)
}

// sanitizeNote removes signaling tool names and the destination number from
// the model's closing text and keeps its first non-empty line.
func sanitizeNote(reply, number string) string {
	out := reply
	for _, token := range []string{domain.ToolTransferCall, domain.ToolHangupCall, number} {
		if token == "" {
			continue
		}
		out = regexp.MustCompile("(?i)"+regexp.QuoteMeta(token)).ReplaceAllString(out, "")
	}
	for _, line := range strings.Split(out, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			return line
		}
	}
	return ""
}
