package matchmaking

import (
	"sync"

	cerr "github.com/seabattlehq/seabattle-backend/internal/error"
	mb "github.com/seabattlehq/seabattle-backend/models/battleship"
)

type Registry interface {
	AddPlayer(p *mb.Player)
	RemovePlayer(p *mb.Player)
	Player(playerUuid string) (*mb.Player, error)
	Players() []*mb.Player

	CreateRoom(owner *mb.Player) *Room
	Rooms() []*Room

	JoinRoom(roomUuid string, p *mb.Player) (*mb.Game, error)
	StartSoloGame(p *mb.Player) (*mb.Game, error)

	Game(gameUuid string) (*mb.Game, error)
	GameOf(p *mb.Player) (*mb.Game, error)
	RemoveGame(gameUuid string)
}

// MatchRegistry is the process-wide index of connected players, open
// rooms and live games. It is constructed once in cmd and passed down;
// there are no ambient globals.
type MatchRegistry struct {
	mu sync.RWMutex

	players      map[string]*mb.Player
	rooms        map[string]*Room
	games        map[string]*mb.Game
	gameByPlayer map[string]string
}

var _ Registry = (*MatchRegistry)(nil)

func NewMatchRegistry() *MatchRegistry {
	return &MatchRegistry{
		players:      make(map[string]*mb.Player, 10),
		rooms:        make(map[string]*Room, 10),
		games:        make(map[string]*mb.Game, 10),
		gameByPlayer: make(map[string]string, 10),
	}
}

func (mr *MatchRegistry) AddPlayer(p *mb.Player) {
	mr.mu.Lock()
	mr.players[p.Uuid()] = p
	mr.mu.Unlock()
}

// RemovePlayer drops a disconnected player and every room membership
// they held. Any game they were part of stays until the caller settles
// it (forfeit) and removes it.
func (mr *MatchRegistry) RemovePlayer(p *mb.Player) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	delete(mr.players, p.Uuid())
	mr.detachFromRooms(p)
}

func (mr *MatchRegistry) Player(playerUuid string) (*mb.Player, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	player, prs := mr.players[playerUuid]
	if !prs {
		return nil, cerr.ErrPlayerNotExist(playerUuid)
	}
	return player, nil
}

func (mr *MatchRegistry) Players() []*mb.Player {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	players := make([]*mb.Player, 0, len(mr.players))
	for _, p := range mr.players {
		players = append(players, p)
	}
	return players
}

// CreateRoom opens a room keyed by its owner, with the owner already
// seated. Repeated requests from the same owner return the existing
// room instead of spawning duplicates.
func (mr *MatchRegistry) CreateRoom(owner *mb.Player) *Room {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if room, prs := mr.rooms[owner.Uuid()]; prs {
		return room
	}

	room := NewRoom(owner.Uuid())
	_ = room.AddPlayer(owner)
	mr.rooms[owner.Uuid()] = room
	return room
}

func (mr *MatchRegistry) Rooms() []*Room {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	rooms := make([]*Room, 0, len(mr.rooms))
	for _, r := range mr.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// JoinRoom seats the player. When the room fills up it is consumed on
// the spot: the game is built and indexed, the room is dropped, and
// every other room membership of the two seated players is cleared.
// The returned game is nil while the room is still short a player.
func (mr *MatchRegistry) JoinRoom(roomUuid string, p *mb.Player) (*mb.Game, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if _, busy := mr.gameByPlayer[p.Uuid()]; busy {
		return nil, cerr.ErrPlayerAlreadyInGame(p.Uuid())
	}

	room, prs := mr.rooms[roomUuid]
	if !prs {
		return nil, cerr.ErrRoomNotExists(roomUuid)
	}

	// The owner may have wandered into a game since opening the room.
	for _, seated := range room.Players() {
		if _, busy := mr.gameByPlayer[seated.Uuid()]; busy {
			return nil, cerr.ErrPlayerAlreadyInGame(seated.Uuid())
		}
	}

	if err := room.AddPlayer(p); err != nil {
		return nil, err
	}
	if !room.IsFull() {
		return nil, nil
	}

	game, err := room.BuildGame()
	if err != nil {
		return nil, err
	}

	mr.games[game.Uuid()] = game
	delete(mr.rooms, roomUuid)
	for _, seated := range game.Players() {
		mr.detachFromRooms(seated)
		mr.gameByPlayer[seated.Uuid()] = game.Uuid()
	}
	return game, nil
}

// StartSoloGame builds a game between the player and a fresh bot,
// clearing the player's pending room memberships first. A player
// already in a live game must finish it before starting another.
func (mr *MatchRegistry) StartSoloGame(p *mb.Player) (*mb.Game, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if _, busy := mr.gameByPlayer[p.Uuid()]; busy {
		return nil, cerr.ErrPlayerAlreadyInGame(p.Uuid())
	}

	mr.detachFromRooms(p)

	game := mb.NewGame(p, mb.NewBotPlayer())
	mr.games[game.Uuid()] = game
	mr.gameByPlayer[p.Uuid()] = game.Uuid()
	return game, nil
}

func (mr *MatchRegistry) Game(gameUuid string) (*mb.Game, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	game, prs := mr.games[gameUuid]
	if !prs {
		return nil, cerr.ErrGameNotExists(gameUuid)
	}
	return game, nil
}

func (mr *MatchRegistry) GameOf(p *mb.Player) (*mb.Game, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	gameUuid, prs := mr.gameByPlayer[p.Uuid()]
	if !prs {
		return nil, cerr.ErrGameNotExists("")
	}

	game, prs := mr.games[gameUuid]
	if !prs {
		return nil, cerr.ErrGameNotExists(gameUuid)
	}
	return game, nil
}

func (mr *MatchRegistry) RemoveGame(gameUuid string) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	game, prs := mr.games[gameUuid]
	if !prs {
		return
	}
	for _, p := range game.Players() {
		if mr.gameByPlayer[p.Uuid()] == gameUuid {
			delete(mr.gameByPlayer, p.Uuid())
		}
	}
	delete(mr.games, gameUuid)
}

// detachFromRooms must run under the write lock.
func (mr *MatchRegistry) detachFromRooms(p *mb.Player) {
	for uuid, room := range mr.rooms {
		room.RemovePlayer(p)
		if len(room.Players()) == 0 {
			delete(mr.rooms, uuid)
		}
	}
}
