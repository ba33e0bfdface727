// Package tools holds the catalog of functions the model may call during a turn.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// ExecutorFunc runs a tool call and returns the text handed back to the model.
type ExecutorFunc func(ctx context.Context, call Call) (string, error)

// Call is a tool invocation in the context of one caller's turn.
type Call struct {
	ID        string
	Name      string
	Arguments json.RawMessage
	CallerID  string
	InputMode domain.InputMode
}

// Entry is one registered tool.
type Entry struct {
	Name        string
	Description string
	// Parameters is the JSON schema advertised to the model.
	Parameters map[string]any
	// Modes limits the entry to sessions in these input modes. Empty means all.
	Modes   []domain.InputMode
	Execute ExecutorFunc
}

func (e *Entry) availableIn(mode domain.InputMode) bool {
	if len(e.Modes) == 0 {
		return true
	}
	for _, m := range e.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Definition is the schema of a tool as sent to the model backend.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Registry stores tool entries keyed by name. The same name may be registered
// once per input mode.
type Registry struct {
	mu      sync.RWMutex
	entries map[string][]*Entry
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string][]*Entry),
	}
}

// Register adds a new entry.
func (r *Registry) Register(entry Entry) error {
	if entry.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if entry.Execute == nil {
		return fmt.Errorf("executor is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries[entry.Name] {
		if overlaps(existing, &entry) {
			return fmt.Errorf("executor already registered for %s", entry.Name)
		}
	}
	e := entry
	r.entries[entry.Name] = append(r.entries[entry.Name], &e)
	return nil
}

// MustRegister adds an entry or panics.
func (r *Registry) MustRegister(entry Entry) {
	if err := r.Register(entry); err != nil {
		panic(err)
	}
}

// Definitions returns the tool schemas available to a session in mode, sorted by name.
func (r *Registry) Definitions(mode domain.InputMode) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.entries))
	for _, list := range r.entries {
		for _, e := range list {
			if e.availableIn(mode) {
				out = append(out, Definition{Name: e.Name, Description: e.Description, Parameters: e.Parameters})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup resolves name for a session in mode.
func (r *Registry) Lookup(name string, mode domain.InputMode) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries[name] {
		if e.availableIn(mode) {
			return e, true
		}
	}
	return nil, false
}

// Execute resolves the call and runs its executor. Failures raised by the
// executor itself come back as *domain.ToolExecutionError; lookup and
// argument failures keep their own types.
func (r *Registry) Execute(ctx context.Context, call Call) (string, error) {
	if call.Name == "" {
		return "", &domain.ToolNotFoundError{Name: call.Name}
	}
	entry, ok := r.Lookup(call.Name, call.InputMode)
	if !ok {
		return "", &domain.ToolNotFoundError{Name: call.Name}
	}
	out, err := entry.Execute(ctx, call)
	if err != nil {
		var mismatch *domain.SchemaMismatchError
		if errors.As(err, &mismatch) {
			return "", err
		}
		return "", &domain.ToolExecutionError{Tool: call.Name, Err: err}
	}
	return out, nil
}

func overlaps(a, b *Entry) bool {
	if len(a.Modes) == 0 || len(b.Modes) == 0 {
		return true
	}
	for _, m := range a.Modes {
		if b.availableIn(m) {
			return true
		}
	}
	return false
}

// Validator is implemented by argument types that check their own fields.
type Validator interface {
	Validate() error
}

// Func adapts a typed behavior into an ExecutorFunc. Arguments are decoded
// strictly into T and validated before fn runs.
func Func[T any](fn func(ctx context.Context, call Call, args T) (string, error)) ExecutorFunc {
	return func(ctx context.Context, call Call) (string, error) {
		var args T
		if err := DecodeArgs(call.Name, call.Arguments, &args); err != nil {
			return "", err
		}
		return fn(ctx, call, args)
	}
}

// DecodeArgs decodes raw into dst, rejecting unknown fields and trailing data.
func DecodeArgs(tool string, raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &domain.SchemaMismatchError{Tool: tool, Reason: err.Error()}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return &domain.SchemaMismatchError{Tool: tool, Reason: "unexpected data after arguments"}
	}
	if v, ok := dst.(Validator); ok {
		if err := v.Validate(); err != nil {
			return &domain.SchemaMismatchError{Tool: tool, Reason: err.Error()}
		}
	}
	return nil
}
