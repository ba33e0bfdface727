// Package service implements the dialog engine's turn processing.
package service

import (
	"time"

	"github.com/xiaot623/gogo/callbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/callbot/internal/config"
	"github.com/xiaot623/gogo/callbot/internal/repository"
	"github.com/xiaot623/gogo/callbot/internal/tools"
	"github.com/xiaot623/gogo/callbot/policy"
)

// Fixed replies.
const (
	RepromptReply    = "I'm sorry, I didn't catch that, if your done, simply say good bye, otherwise tell me how I can help?"
	VoiceFollowUp    = "  What else can I help you with?"
	TimeoutReply     = "The operation timed out, please ask your question again"
	UnhandledReply   = "Sorry, I'm having a problem fulfilling your request. Please try again later."
	toolFailureReply = "Sorry, I ran into a problem with %s, please try again."
)

type Service struct {
	store        store.Store
	llmClient    llm.LLMClient
	registry     *tools.Registry
	policyEngine *policy.Engine
	config       *config.Config
	loc          *time.Location
	now          func() time.Time
}

func New(store store.Store, llmClient llm.LLMClient, registry *tools.Registry, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		llmClient:    llmClient,
		registry:     registry,
		policyEngine: policyEngine,
		config:       cfg,
		loc:          cfg.Location(),
		now:          time.Now,
	}
}

// SetClock replaces the wall clock used for session keys and timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Location returns the reference time zone for session days.
func (s *Service) Location() *time.Location {
	return s.loc
}
