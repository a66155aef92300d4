package battleship

import (
	"sync"
)

// Messenger delivers one outbound notification to whatever sits behind
// the player: a live websocket session or a bot. The core never knows
// which.
type Messenger interface {
	Deliver(e Event)
}

type Player struct {
	uuid string
	name string
	bot  bool

	// mu guards wins, incremented by the game the player just won and
	// read by leaderboard broadcasts, and messenger, swapped on
	// re-registration while the opponent may be delivering.
	mu        sync.Mutex
	messenger Messenger
	wins      int
}

func NewPlayer(uuid, name string, messenger Messenger) *Player {
	return &Player{
		uuid:      uuid,
		name:      name,
		messenger: messenger,
	}
}

func (p *Player) Uuid() string {
	return p.uuid
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) IsBot() bool {
	return p.bot
}

func (p *Player) Wins() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wins
}

func (p *Player) AddWin() {
	p.mu.Lock()
	p.wins++
	p.mu.Unlock()
}

// SetMessenger swaps the delivery capability. Only the connection
// collaborator calls this, at authentication time; the opponent's
// goroutine may be delivering at the same moment.
func (p *Player) SetMessenger(m Messenger) {
	p.mu.Lock()
	p.messenger = m
	p.mu.Unlock()
}

func (p *Player) Deliver(e Event) {
	p.mu.Lock()
	m := p.messenger
	p.mu.Unlock()

	if m != nil {
		m.Deliver(e)
	}
}
