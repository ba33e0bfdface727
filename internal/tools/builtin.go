package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// Deps are the collaborators the built-in tools need.
type Deps struct {
	DirectionsURL string
	Hours         *Schedule
	Location      *time.Location
	SMS           SMSSender
	Now           func() time.Time
}

// RegisterBuiltins adds the built-in tools to r. Names already present are
// skipped, so calling it more than once is harmless.
func RegisterBuiltins(r *Registry, deps Deps) error {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	for _, e := range builtinEntries(deps) {
		if _, ok := r.Lookup(e.Name, modeOf(e)); ok {
			continue
		}
		if err := r.Register(e); err != nil {
			return err
		}
	}
	return nil
}

func modeOf(e Entry) domain.InputMode {
	if len(e.Modes) == 0 {
		return domain.InputModeText
	}
	return e.Modes[0]
}

func builtinEntries(deps Deps) []Entry {
	return []Entry{
		{
			Name:        domain.ToolTransferCall,
			Description: "Transfer the caller to a person. Use the store's main number unless the caller asked for a specific team member.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"phone_number": map[string]any{
						"type":        "string",
						"description": "Destination number in E.164 format, e.g. +13205551234",
					},
				},
				"required": []string{"phone_number"},
			},
			Execute: Func(func(ctx context.Context, call Call, args TransferArgs) (string, error) {
				return fmt.Sprintf("Transferring the caller to %s.", args.PhoneNumber), nil
			}),
		},
		{
			Name:        domain.ToolHangupCall,
			Description: "End the call when the caller is done or says good bye.",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			// Any arguments the model attaches are ignored.
			Execute: func(ctx context.Context, call Call) (string, error) {
				return "The call will be ended.", nil
			},
		},
		{
			Name:        "driving_directions",
			Description: "Get a link with driving directions to the store.",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			Modes:       []domain.InputMode{domain.InputModeText},
			Execute: Func(func(ctx context.Context, call Call, args struct{}) (string, error) {
				return fmt.Sprintf("Driving directions: %s", deps.DirectionsURL), nil
			}),
		},
		{
			Name:        "driving_directions",
			Description: "Text the caller a link with driving directions to the store.",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			Modes:       []domain.InputMode{domain.InputModeVoice},
			Execute: Func(func(ctx context.Context, call Call, args struct{}) (string, error) {
				if deps.SMS == nil {
					return "", fmt.Errorf("text messaging is not configured")
				}
				if _, err := deps.SMS.SendSMS(ctx, call.CallerID, "Driving directions: "+deps.DirectionsURL); err != nil {
					return "", err
				}
				return "A text message with driving directions was sent to the caller.", nil
			}),
		},
		{
			Name:        "store_hours",
			Description: "Get the store's opening hours and whether it is open right now.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"day": map[string]any{
						"type":        "string",
						"description": "Optional weekday to ask about, e.g. monday",
					},
				},
			},
			Execute: Func(func(ctx context.Context, call Call, args HoursArgs) (string, error) {
				if deps.Hours == nil {
					return "", fmt.Errorf("store hours are not configured")
				}
				now := deps.Now().In(deps.Location)
				if args.Day != "" {
					day, _ := parseWeekday(args.Day)
					return deps.Hours.Describe(day), nil
				}
				status := "closed"
				if deps.Hours.IsOpen(now) {
					status = "open"
				}
				return fmt.Sprintf("The store is currently %s. Today's hours: %s. Weekly hours: %s.",
					status, deps.Hours.Describe(now.Weekday()), deps.Hours.String()), nil
			}),
		},
	}
}

var phoneNumberPattern = regexp.MustCompile(`^\+?[1-9][0-9]{6,14}$`)

// TransferArgs are the arguments of the transfer signaling tool.
type TransferArgs struct {
	PhoneNumber string `json:"phone_number"`
}

// Validate implements Validator.
func (a *TransferArgs) Validate() error {
	a.PhoneNumber = strings.TrimSpace(a.PhoneNumber)
	if a.PhoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	if !phoneNumberPattern.MatchString(a.PhoneNumber) {
		return fmt.Errorf("phone_number %q is not a valid phone number", a.PhoneNumber)
	}
	return nil
}

// HoursArgs are the arguments of the store_hours tool.
type HoursArgs struct {
	Day string `json:"day,omitempty"`
}

// Validate implements Validator.
func (a *HoursArgs) Validate() error {
	if a.Day == "" {
		return nil
	}
	if _, ok := parseWeekday(a.Day); !ok {
		return fmt.Errorf("day %q is not a weekday", a.Day)
	}
	return nil
}
