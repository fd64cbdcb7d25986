package llm

import (
	"context"
	"errors"
	"sync"
)

// Reply is one canned answer of a Scripted model.
type Reply struct {
	Text string
	Err  error
}

// Call records a request received by a Scripted model.
type Call struct {
	Profile Profile
	Parts   []Part
}

// Scripted is a lightweight model for local testing without API calls. It
// answers each call with the next queued reply, or with Responder when set.
type Scripted struct {
	mu        sync.Mutex
	replies   []Reply
	calls     []Call
	Responder func(profile Profile, prompt string) (string, error)
}

var ErrScriptExhausted = errors.New("scripted model has no reply left")

func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

func (s *Scripted) Generate(ctx context.Context, profile Profile, parts []Part) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkParts(profile, parts); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.calls = append(s.calls, Call{Profile: profile, Parts: parts})
	if s.Responder != nil {
		responder := s.Responder
		s.mu.Unlock()
		return responder(profile, joinText(parts))
	}
	defer s.mu.Unlock()
	if len(s.replies) == 0 {
		return "", ErrScriptExhausted
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.Text, r.Err
}

// Calls returns a copy of every call received so far.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// PromptText returns the joined text parts of call i.
func (c Call) PromptText() string {
	return joinText(c.Parts)
}

var _ Model = (*Scripted)(nil)
