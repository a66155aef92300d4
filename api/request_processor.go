package api

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/seabattlehq/seabattle-backend/db"
	cerr "github.com/seabattlehq/seabattle-backend/internal/error"
	mb "github.com/seabattlehq/seabattle-backend/models/battleship"
	mc "github.com/seabattlehq/seabattle-backend/models/connection"
)

// dispatch routes one inbound envelope. Failures while handling one
// player's message only ever answer that player; they never unwind
// another session's loop.
func (s *Session) dispatch(e mc.Envelope) {
	log.Debug().Str("session_id", s.id).Str("type", e.Type).Msg("received command")

	if e.Type != mc.TypeReg && s.player == nil {
		s.writeError("register first")
		return
	}

	switch e.Type {
	case mc.TypeReg:
		s.handleReg(e)

	case mc.TypeCreateRoom:
		s.handleCreateRoom()

	case mc.TypeAddUserToRoom:
		s.handleAddUserToRoom(e)

	case mc.TypeSinglePlay:
		s.handleSinglePlay()

	case mc.TypeAddShips:
		s.handleAddShips(e)

	case mc.TypeAttack:
		s.handleAttack(e)

	case mc.TypeRandomAttack:
		s.handleRandomAttack(e)

	default:
		s.writeError("unknown message type: " + e.Type)
	}
}

func (s *Session) handleReg(e mc.Envelope) {
	var req mc.ReqReg
	if err := e.DecodePayload(&req); err != nil {
		s.writeError("reg payload must contain name and password")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.writeEnvelope(mc.MustEnvelope(mc.TypeReg, mc.RespReg{Name: req.Name, Error: true, ErrorText: "name must not be empty"}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), db.QuerierCtxTimeout)
	defer cancel()

	user, err := s.server.users.Authenticate(ctx, req.Name, req.Password)
	if err != nil {
		s.writeEnvelope(mc.MustEnvelope(mc.TypeReg, mc.RespReg{Name: req.Name, Error: true, ErrorText: err.Error()}))
		return
	}

	// A returning identity keeps its player (and win counter) and is
	// simply rebound to this connection.
	player, ferr := s.server.registry.Player(user.Uuid)
	if ferr != nil {
		player = mb.NewPlayer(user.Uuid, user.Name, s)
		s.server.registry.AddPlayer(player)
	} else {
		player.SetMessenger(s)
	}
	s.player = player
	s.server.bindPlayerSession(player, s)

	s.writeEnvelope(mc.MustEnvelope(mc.TypeReg, mc.RespReg{Name: player.Name(), Index: player.Uuid()}))
	s.server.broadcastRooms()
	s.server.broadcastWinners()
}

func (s *Session) handleCreateRoom() {
	room := s.server.registry.CreateRoom(s.player)
	log.Info().Str("room_id", room.Uuid()).Str("player", s.player.Name()).Msg("room open")
	s.server.broadcastRooms()
}

func (s *Session) handleAddUserToRoom(e mc.Envelope) {
	var req mc.ReqAddUserToRoom
	if err := e.DecodePayload(&req); err != nil {
		s.writeError("add_user_to_room payload must contain indexRoom")
		return
	}

	game, err := s.server.registry.JoinRoom(req.IndexRoom, s.player)
	if err != nil {
		s.writeError(err.Error())
		return
	}

	if game != nil {
		s.server.countGameCreated(false)
		log.Info().Str("game_id", game.Uuid()).Msg("game created")
		for _, p := range game.Players() {
			s.server.sendToPlayer(p, mc.MustEnvelope(mc.TypeCreateGame, mc.RespCreateGame{
				IdGame:   game.Uuid(),
				IdPlayer: p.Uuid(),
			}))
		}
	}

	s.server.broadcastRooms()
}

func (s *Session) handleSinglePlay() {
	game, err := s.server.registry.StartSoloGame(s.player)
	if err != nil {
		s.writeError(err.Error())
		return
	}
	s.server.countGameCreated(true)
	log.Info().Str("game_id", game.Uuid()).Str("player", s.player.Name()).Msg("solo game created")

	s.writeEnvelope(mc.MustEnvelope(mc.TypeCreateGame, mc.RespCreateGame{
		IdGame:   game.Uuid(),
		IdPlayer: s.player.Uuid(),
	}))

	// The bot board goes in right away so the game starts the moment
	// the human submits ships.
	bot := game.Opponent(s.player)
	if _, err := game.AddBoard(bot, nil); err != nil {
		s.abortGame(game, err)
		return
	}

	s.server.broadcastRooms()
}

func (s *Session) handleAddShips(e mc.Envelope) {
	var req mc.ReqAddShips
	if err := e.DecodePayload(&req); err != nil {
		s.writeError("add_ships payload must contain gameId and ships")
		return
	}

	game, err := s.server.registry.Game(req.GameId)
	if err != nil {
		s.writeError(err.Error())
		return
	}

	// An empty ships list asks the server to generate the fleet.
	var fleet []*mb.Ship
	if len(req.Ships) != 0 {
		fleet, err = wireShipsToFleet(req.Ships)
		if err != nil {
			s.writeError(err.Error())
			return
		}
	}

	events, err := game.AddBoard(s.player, fleet)
	if err != nil {
		if errors.Is(err, cerr.ErrPlacementExhausted) {
			s.abortGame(game, err)
			return
		}
		s.writeError(err.Error())
		return
	}

	deliverEvents(events)
	s.driveBot(game)
}

func (s *Session) handleAttack(e mc.Envelope) {
	var req mc.ReqAttack
	if err := e.DecodePayload(&req); err != nil {
		s.writeError("attack payload must contain gameId, x and y")
		return
	}

	game, err := s.server.registry.Game(req.GameId)
	if err != nil {
		s.writeError(err.Error())
		return
	}

	events, err := game.Attack(s.player, req.X, req.Y)
	if err != nil {
		s.writeError(err.Error())
		return
	}

	deliverEvents(events)
	s.driveBot(game)
}

func (s *Session) handleRandomAttack(e mc.Envelope) {
	var req mc.ReqRandomAttack
	if err := e.DecodePayload(&req); err != nil {
		s.writeError("randomAttack payload must contain gameId")
		return
	}

	game, err := s.server.registry.Game(req.GameId)
	if err != nil {
		s.writeError(err.Error())
		return
	}

	events, err := game.AutoAttack(s.player)
	if err != nil {
		if errors.Is(err, cerr.ErrNoAvailableCells) {
			s.abortGame(game, err)
			return
		}
		s.writeError(err.Error())
		return
	}

	deliverEvents(events)
	s.driveBot(game)
}

// driveBot plays the automated opponent for as long as it holds the
// turn, then settles the game if it is over. A bot hit retains the
// turn like any other, so this loops until a miss or the finish.
func (s *Session) driveBot(game *mb.Game) {
	for game.State() == mb.GameStateActive {
		turn := game.TurnHolder()
		if turn == nil || !turn.IsBot() {
			break
		}

		events, err := game.AutoAttack(turn)
		if err != nil {
			s.abortGame(game, err)
			return
		}
		deliverEvents(events)
	}
	s.settleIfFinished(game)
}

func (s *Session) settleIfFinished(game *mb.Game) {
	if game.State() != mb.GameStateFinished {
		return
	}
	s.server.registry.RemoveGame(game.Uuid())
	s.server.broadcastWinners()
}

// abortGame tears a game down after an exhaustion failure rather than
// leaving it in an inconsistent state.
func (s *Session) abortGame(game *mb.Game, cause error) {
	log.Error().Err(cause).Str("game_id", game.Uuid()).Msg("aborting game")

	for _, p := range game.Players() {
		s.server.sendToPlayer(p, mc.MustEnvelope(mc.TypeError, mc.RespErr{Message: "game aborted: " + cause.Error()}))
	}
	s.server.registry.RemoveGame(game.Uuid())
}

func wireShipsToFleet(ships []mc.Ship) ([]*mb.Ship, error) {
	fleet := make([]*mb.Ship, 0, len(ships))
	for _, ws := range ships {
		ship, err := mb.NewShip(mb.ShipType(ws.Type), mb.NewCoordinates(ws.Position.X, ws.Position.Y), ws.Direction)
		if err != nil {
			return nil, err
		}
		fleet = append(fleet, ship)
	}
	return fleet, nil
}
