package api

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	mb "github.com/seabattlehq/seabattle-backend/models/battleship"
	mc "github.com/seabattlehq/seabattle-backend/models/connection"
)

const (
	maxWriteWsRetries = 2
	backOffFactor     = 2
)

const (
	connLoopBreak uint8 = iota
	connLoopRetry
	connLoopContinue
)

// Session owns one websocket connection and, after registration, the
// player behind it. It is the Messenger delivering domain events onto
// the wire.
type Session struct {
	id        string
	conn      *websocket.Conn
	server    *Server
	player    *mb.Player
	createdAt time.Time

	// events for this conn may arrive from the opponent's goroutine
	// too; writes must not interleave
	wmu sync.Mutex
}

var _ mb.Messenger = (*Session)(nil)

func NewSession(id string, conn *websocket.Conn, server *Server) *Session {
	return &Session{
		id:        id,
		conn:      conn,
		server:    server,
		createdAt: time.Now(),
	}
}

func (s *Session) run() {
	defer s.terminate()

	var retries int
sessionLoop:
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			switch onConnErr(err) {
			case connLoopRetry:
				if retries < maxWriteWsRetries {
					retries++
					log.Warn().Str("remote_addr", s.conn.RemoteAddr().String()).Int("retry", retries).Msg("failed to read from ws conn; retrying")
					time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
					continue sessionLoop
				}
				break sessionLoop

			default:
				log.Info().Str("remote_addr", s.conn.RemoteAddr().String()).Err(err).Msg("breaking ws conn loop")
				break sessionLoop
			}
		}

		retries = 0
		var envelope mc.Envelope
		if err := json.Unmarshal(payload, &envelope); err != nil {
			s.writeError("incoming message must be a valid envelope with a 'type' field")
			continue sessionLoop
		}

		s.dispatch(envelope)
	}
}

// terminate settles the player's match (forfeit), unregisters them and
// tells everyone else about the changed rooms and score table.
func (s *Session) terminate() {
	_ = s.conn.Close()
	log.Info().Str("session_id", s.id).Dur("lifetime", time.Since(s.createdAt)).Msg("session closed")

	if s.player == nil {
		s.server.dropSession(s)
		return
	}

	if game, err := s.server.registry.GameOf(s.player); err == nil {
		events, ferr := game.Forfeit(s.player)
		if ferr == nil {
			deliverEvents(events)
		}
		s.server.registry.RemoveGame(game.Uuid())
	}

	s.server.registry.RemovePlayer(s.player)
	s.server.dropSession(s)

	s.server.broadcastRooms()
	s.server.broadcastWinners()
}

// Deliver implements battleship.Messenger for a human player.
func (s *Session) Deliver(e mb.Event) {
	s.writeEnvelope(s.eventEnvelope(e))
}

func (s *Session) eventEnvelope(e mb.Event) mc.Envelope {
	switch e.Kind {
	case mb.EventGameStarted:
		return mc.MustEnvelope(mc.TypeStartGame, mc.RespStartGame{
			Ships:              fleetToWire(e.Fleet),
			CurrentPlayerIndex: s.player.Uuid(),
		})

	case mb.EventTurn:
		return mc.MustEnvelope(mc.TypeTurn, mc.RespTurn{CurrentPlayer: e.Current.Uuid()})

	case mb.EventAttackResult:
		return mc.MustEnvelope(mc.TypeAttack, mc.RespAttack{
			Position:      mc.Position{X: e.Target.X, Y: e.Target.Y},
			CurrentPlayer: e.Attacker.Uuid(),
			Status:        e.Status.String(),
		})

	default: // mb.EventGameFinished
		return mc.MustEnvelope(mc.TypeFinish, mc.RespFinish{WinPlayer: e.Winner.Uuid()})
	}
}

func (s *Session) writeError(message string) {
	s.writeEnvelope(mc.MustEnvelope(mc.TypeError, mc.RespErr{Message: message}))
}

// writeEnvelope writes to the session connection, retrying transient
// failures with backoff.
func (s *Session) writeEnvelope(e mc.Envelope) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	var retries int
	for {
		err := s.conn.WriteJSON(e)
		if err == nil {
			return
		}

		if onConnErr(err) == connLoopRetry && retries < maxWriteWsRetries {
			retries++
			log.Warn().Str("remote_addr", s.conn.RemoteAddr().String()).Int("retry", retries).Msg("writing json to ws failed; retrying")
			time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
			continue
		}

		log.Warn().Str("remote_addr", s.conn.RemoteAddr().String()).Err(err).Msg("dropping outbound message")
		return
	}
}

// deliverEvents fans one ordered event batch out to its recipients, in
// exactly the order the game produced it.
func deliverEvents(events []mb.Event) {
	for _, e := range events {
		for _, recipient := range e.To {
			recipient.Deliver(e)
		}
	}
}

func onConnErr(err error) uint8 {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return connLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		return connLoopRetry
	}

	return connLoopBreak
}

func fleetToWire(fleet []*mb.Ship) []mc.Ship {
	ships := make([]mc.Ship, 0, len(fleet))
	for _, sh := range fleet {
		ships = append(ships, mc.Ship{
			Position:  mc.Position{X: sh.Anchor().X, Y: sh.Anchor().Y},
			Direction: sh.IsVertical(),
			Length:    sh.Length(),
			Type:      string(sh.Type()),
		})
	}
	return ships
}
