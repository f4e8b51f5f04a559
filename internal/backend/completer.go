// Package backend produces answer text from a language-model provider.
//
// Completer is the one capability the answer pipeline needs. Two providers
// implement it: OpenAICompleter speaks the OpenAI-compatible chat
// completions protocol (the default points at a local gateway), and
// GeminiCompleter uses the Google GenAI SDK.
package backend

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is a single chat completion. Provider names an upstream provider
// for gateways that route between several; backends that do not route
// ignore it.
type Request struct {
	Model     string
	Provider  string
	Messages  []Message
	WebSearch bool
}

type Response struct {
	Text  string
	Model string
}

type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// split returns the concatenated system messages and the rest.
func split(msgs []Message) (string, []Message) {
	var sys string
	rest := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if sys != "" {
				sys += "\n\n"
			}
			sys += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return sys, rest
}
