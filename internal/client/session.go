package client

import (
	"github.com/examassist/waecrag/internal/domain/ragModel"
)

// Session keeps the turns of one interactive conversation so the chat
// client can redisplay history. Turns are local to the client; the server
// is stateless between questions.
type Session struct {
	turns []ragModel.ConversationTurn
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) AddTurn(role ragModel.Role, text string) {
	s.turns = append(s.turns, ragModel.ConversationTurn{Role: role, Content: text})
}

// Turns returns a copy of the conversation so far, oldest first.
func (s *Session) Turns() []ragModel.ConversationTurn {
	out := make([]ragModel.ConversationTurn, len(s.turns))
	copy(out, s.turns)
	return out
}
