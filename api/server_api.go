package api

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sqlc-dev/pqtype"

	"github.com/seabattlehq/seabattle-backend/db"
	mb "github.com/seabattlehq/seabattle-backend/models/battleship"
	mc "github.com/seabattlehq/seabattle-backend/models/connection"
	mm "github.com/seabattlehq/seabattle-backend/models/matchmaking"
)

const (
	StageProd = "prod"
	StageDev  = "dev"
)

var (
	defaultPort = "3000"

	upgrader = websocket.Upgrader{
		HandshakeTimeout: time.Second * 5,
		ReadBufferSize:   2048,
		WriteBufferSize:  2048,
		CheckOrigin:      func(r *http.Request) bool { return true },
	}
)

type Server struct {
	port  string
	stage string

	users     db.UserStore
	analytics *db.AnalyticsManager
	registry  mm.Registry
	ipnet     net.IPNet

	mu             sync.RWMutex
	sessions       map[string]*Session
	playerSessions map[string]*Session
}

type Option func(*Server) error

func NewServer(registry mm.Registry, users db.UserStore, optFuncs ...Option) *Server {
	server := Server{
		registry:       registry,
		users:          users,
		sessions:       make(map[string]*Session, 10),
		playerSessions: make(map[string]*Session, 10),
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}
	if server.port == "" {
		server.port = defaultPort
	}

	return &server
}

func WithPort(port string) Option {
	return func(s *Server) error {
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != StageProd && stage != StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

func WithDb(database *sql.DB) Option {
	return func(s *Server) error {
		s.analytics = db.NewAnalyticsManager(database)
		ipnet, err := serverIpNet()
		if err != nil {
			return err
		}
		s.ipnet = ipnet
		return nil
	}
}

func (s *Server) Port() string {
	return s.port
}

func (s *Server) HandleWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		http.Error(w, "could not open websocket connection", http.StatusBadRequest)
		return
	}

	session := NewSession(uuid.NewString(), conn, s)
	s.mu.Lock()
	s.sessions[session.id] = session
	s.mu.Unlock()

	log.Info().Str("remote_addr", conn.RemoteAddr().String()).Msg("new connection established")
	go session.run()
}

func (s *Server) bindPlayerSession(p *mb.Player, session *Session) {
	s.mu.Lock()
	s.playerSessions[p.Uuid()] = session
	s.mu.Unlock()
}

func (s *Server) dropSession(session *Session) {
	s.mu.Lock()
	delete(s.sessions, session.id)
	if session.player != nil && s.playerSessions[session.player.Uuid()] == session {
		delete(s.playerSessions, session.player.Uuid())
	}
	s.mu.Unlock()
}

func (s *Server) sendToPlayer(p *mb.Player, e mc.Envelope) {
	if p.IsBot() {
		return
	}

	s.mu.RLock()
	session, prs := s.playerSessions[p.Uuid()]
	s.mu.RUnlock()
	if prs {
		session.writeEnvelope(e)
	}
}

// broadcastRooms pushes the open-room list to every connected player.
func (s *Server) broadcastRooms() {
	rooms := s.registry.Rooms()
	payload := make([]mc.RespRoom, 0, len(rooms))
	for _, room := range rooms {
		users := make([]mc.RespRoomUser, 0, len(room.Players()))
		for _, p := range room.Players() {
			users = append(users, mc.RespRoomUser{Name: p.Name(), Index: p.Uuid()})
		}
		payload = append(payload, mc.RespRoom{RoomId: room.Uuid(), RoomUsers: users})
	}
	sort.Slice(payload, func(i, j int) bool { return payload[i].RoomId < payload[j].RoomId })

	s.broadcast(mc.MustEnvelope(mc.TypeUpdateRoom, payload))
}

// broadcastWinners pushes the score table to every connected player.
func (s *Server) broadcastWinners() {
	players := s.registry.Players()
	payload := make([]mc.RespWinner, 0, len(players))
	for _, p := range players {
		payload = append(payload, mc.RespWinner{Name: p.Name(), Wins: p.Wins()})
	}
	sort.Slice(payload, func(i, j int) bool {
		if payload[i].Wins != payload[j].Wins {
			return payload[i].Wins > payload[j].Wins
		}
		return payload[i].Name < payload[j].Name
	})

	s.broadcast(mc.MustEnvelope(mc.TypeUpdateWinners, payload))
}

func (s *Server) broadcast(e mc.Envelope) {
	s.mu.RLock()
	receivers := make([]*Session, 0, len(s.playerSessions))
	for _, session := range s.playerSessions {
		receivers = append(receivers, session)
	}
	s.mu.RUnlock()

	for _, session := range receivers {
		session.writeEnvelope(e)
	}
}

func (s *Server) countGameCreated(botGame bool) {
	if s.analytics == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), db.QuerierCtxTimeout)
	defer cancel()

	inet := pqtype.Inet{IPNet: s.ipnet, Valid: true}
	var err error
	if botGame {
		err = s.analytics.IncrementBotGamesCreatedCount(ctx, inet)
	} else {
		err = s.analytics.IncrementGamesCreatedCount(ctx, inet)
	}
	if err != nil {
		// A missed counter is not worth a player's game.
		log.Warn().Err(err).Msg("failed to increment games created count")
	}
}

func serverIpNet() (net.IPNet, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return net.IPNet{}, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			return net.IPNet{}, err
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil && !ipnet.IP.IsLoopback() {
				return *ipnet, nil
			}
		}
	}
	return net.IPNet{}, fmt.Errorf("no usable network interface found")
}
