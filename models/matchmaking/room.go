package matchmaking

import (
	"sync"

	cerr "github.com/seabattlehq/seabattle-backend/internal/error"
	mb "github.com/seabattlehq/seabattle-backend/models/battleship"
)

const roomCapacity = 2

// Room is the pre-game holding area for up to two players. The
// registry owns its lifecycle; a room is discarded the moment it is
// consumed into a game. Membership carries its own lock because
// broadcasts read rooms after the registry lock is released.
type Room struct {
	mu      sync.RWMutex
	uuid    string
	players []*mb.Player
}

func NewRoom(uuid string) *Room {
	return &Room{
		uuid:    uuid,
		players: make([]*mb.Player, 0, roomCapacity),
	}
}

func (r *Room) Uuid() string {
	return r.uuid
}

// Players returns a copy of the seated players in insertion order.
func (r *Room) Players() []*mb.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make([]*mb.Player, len(r.players))
	copy(players, r.players)
	return players
}

func (r *Room) HasPlayer(p *mb.Player) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasPlayer(p)
}

func (r *Room) hasPlayer(p *mb.Player) bool {
	for _, seated := range r.players {
		if seated == p {
			return true
		}
	}
	return false
}

// AddPlayer seats a player. Seating the same player twice is a no-op;
// a third distinct player is rejected.
func (r *Room) AddPlayer(p *mb.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasPlayer(p) {
		return nil
	}
	if len(r.players) == roomCapacity {
		return cerr.ErrRoomFull
	}
	r.players = append(r.players, p)
	return nil
}

func (r *Room) RemovePlayer(p *mb.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, seated := range r.players {
		if seated == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return
		}
	}
}

func (r *Room) IsFull() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players) == roomCapacity
}

// BuildGame constructs a game from the two seated players. The caller
// is expected to drop the room right after.
func (r *Room) BuildGame() (*mb.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.players) != roomCapacity {
		return nil, cerr.ErrInsufficientPlayers
	}
	return mb.NewGame(r.players[0], r.players[1]), nil
}
