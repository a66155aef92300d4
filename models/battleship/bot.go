package battleship

import (
	"github.com/google/uuid"
)

const BotName = "Bot"

// NewBotPlayer builds the automated opponent for single play. The bot
// needs no wire delivery; the dispatcher watches turn events and drives
// its attacks through the same AutoAttack path a human randomAttack
// uses.
func NewBotPlayer() *Player {
	p := NewPlayer(uuid.NewString(), BotName, discardMessenger{})
	p.bot = true
	return p
}

type discardMessenger struct{}

func (discardMessenger) Deliver(Event) {}
