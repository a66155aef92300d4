package battleship

import (
	"sync"

	"github.com/google/uuid"

	cerr "github.com/seabattlehq/seabattle-backend/internal/error"
)

type GameState uint8

const (
	GameStateAwaitingBoards GameState = iota
	GameStateActive
	GameStateFinished
)

// Game owns exactly two players, one board per player, and the
// turn/attack state machine. Every mutating call is serialized by the
// game mutex and returns the ordered events it produced; the caller
// delivers them synchronously.
type Game struct {
	mu sync.Mutex

	uuid    string
	players [2]*Player
	boards  map[string]*Board
	turn    *Player
	state   GameState
}

func NewGame(first, second *Player) *Game {
	return &Game{
		uuid:    uuid.NewString(),
		players: [2]*Player{first, second},
		boards:  make(map[string]*Board, 2),
		state:   GameStateAwaitingBoards,
	}
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Players returns both players in construction order.
func (g *Game) Players() []*Player {
	return []*Player{g.players[0], g.players[1]}
}

func (g *Game) HasPlayer(p *Player) bool {
	return p == g.players[0] || p == g.players[1]
}

func (g *Game) Opponent(p *Player) *Player {
	if p == g.players[0] {
		return g.players[1]
	}
	return g.players[0]
}

func (g *Game) TurnHolder() *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.turn
}

// Board returns the board holding the given player's fleet, the one
// their opponent attacks.
func (g *Game) Board(p *Player) *Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.boards[p.Uuid()]
}

// AddBoard attaches a board to the player's slot. A nil fleet means
// the board is generated. Once both slots are filled the game becomes
// active: each player is told their own layout, then the turn goes to
// the first player in construction order.
func (g *Game) AddBoard(p *Player, fleet []*Ship) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.HasPlayer(p) {
		return nil, cerr.ErrPlayerNotInGame(p.Uuid(), g.uuid)
	}
	if g.state != GameStateAwaitingBoards {
		return nil, cerr.ErrGameNotAwaitingBoards(g.uuid)
	}
	if _, prs := g.boards[p.Uuid()]; prs {
		return nil, cerr.ErrBoardAlreadySubmitted(p.Uuid())
	}

	board := NewBoard()
	if fleet == nil {
		if err := board.GenerateFleet(); err != nil {
			return nil, err
		}
	} else {
		if err := board.PlaceFleet(fleet); err != nil {
			return nil, err
		}
	}
	g.boards[p.Uuid()] = board

	if len(g.boards) < 2 {
		return nil, nil
	}

	g.state = GameStateActive
	g.turn = g.players[0]

	events := make([]Event, 0, 3)
	for _, player := range g.players {
		events = append(events, Event{
			Kind:  EventGameStarted,
			To:    []*Player{player},
			Fleet: g.boards[player.Uuid()].Fleet(),
		})
	}
	events = append(events, newTurnEvent(g.Players(), g.turn))
	return events, nil
}

// Attack resolves one attack by the given player against the
// opponent's board.
//
// A stale request from the player not holding the turn does not
// mutate anything; the canonical turn is simply re-broadcast. A repeat
// attack on an already-tried cell is a silent no-op.
func (g *Game) Attack(attacker *Player, x, y int) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attack(attacker, x, y)
}

// AutoAttack picks a uniformly random untried coordinate on the
// opponent's board and attacks it.
func (g *Game) AutoAttack(attacker *Player) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.HasPlayer(attacker) {
		return nil, cerr.ErrPlayerNotInGame(attacker.Uuid(), g.uuid)
	}
	if g.state != GameStateActive {
		return nil, cerr.ErrGameNotActive(g.uuid)
	}

	target, err := g.boards[g.Opponent(attacker).Uuid()].RandomUnattacked()
	if err != nil {
		return nil, err
	}
	return g.attack(attacker, target.X, target.Y)
}

func (g *Game) attack(attacker *Player, x, y int) ([]Event, error) {
	if !g.HasPlayer(attacker) {
		return nil, cerr.ErrPlayerNotInGame(attacker.Uuid(), g.uuid)
	}
	if g.state != GameStateActive {
		return nil, cerr.ErrGameNotActive(g.uuid)
	}

	if attacker != g.turn {
		return []Event{newTurnEvent(g.Players(), g.turn)}, nil
	}

	defender := g.Opponent(attacker)
	board := g.boards[defender.Uuid()]

	status, sunk, err := board.Attack(x, y)
	if err != nil {
		return nil, err
	}

	recipients := g.Players()
	target := NewCoordinates(x, y)

	switch status {
	case AttackStatusRepeat:
		return nil, nil

	case AttackStatusMiss:
		g.turn = defender
		return []Event{
			newAttackResultEvent(recipients, attacker, target, AttackStatusMiss),
			newTurnEvent(recipients, g.turn),
		}, nil

	case AttackStatusShot:
		return []Event{
			newAttackResultEvent(recipients, attacker, target, AttackStatusShot),
			newTurnEvent(recipients, g.turn),
		}, nil

	default: // AttackStatusKilled
		events := make([]Event, 0, 2+2*sunk.Length()+6)
		events = append(events, newAttackResultEvent(recipients, attacker, target, AttackStatusKilled))

		// Disclose the sunk ship's perimeter as misses so the client
		// never has to probe those cells.
		for _, c := range board.CellsAround(sunk) {
			board.MarkAttacked(c)
			events = append(events, newAttackResultEvent(recipients, attacker, c, AttackStatusMiss))
		}

		if !board.HasSurvivingShips() {
			g.state = GameStateFinished
			g.turn = nil
			attacker.AddWin()
			events = append(events, Event{Kind: EventGameFinished, To: recipients, Winner: attacker})
			return events, nil
		}

		events = append(events, newTurnEvent(recipients, g.turn))
		return events, nil
	}
}

// Forfeit ends an unfinished game in favor of the quitter's opponent.
// This is the disconnect policy: a player leaving mid-match loses.
func (g *Game) Forfeit(quitter *Player) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.HasPlayer(quitter) {
		return nil, cerr.ErrPlayerNotInGame(quitter.Uuid(), g.uuid)
	}
	if g.state == GameStateFinished {
		return nil, nil
	}

	winner := g.Opponent(quitter)
	g.state = GameStateFinished
	g.turn = nil
	winner.AddWin()

	return []Event{{Kind: EventGameFinished, To: []*Player{winner}, Winner: winner}}, nil
}
