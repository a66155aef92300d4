package error

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions the callers branch on.
var (
	ErrPlacementExhausted  = errors.New("no valid position remains for a required ship")
	ErrNoAvailableCells    = errors.New("no unattacked cells remain on the board")
	ErrRoomFull            = errors.New("room already has two seated players")
	ErrInsufficientPlayers = errors.New("room must be full to build a game")
	ErrWrongPassword       = errors.New("password does not match this name")
)

func ErrGameNotExists(gameUuid string) error {
	return fmt.Errorf("game with this uuid does not exist, uuid: %s", gameUuid)
}

func ErrRoomNotExists(roomUuid string) error {
	return fmt.Errorf("room with this uuid does not exist, uuid: %s", roomUuid)
}

func ErrPlayerNotExist(playerUuid string) error {
	return fmt.Errorf("player with this uuid does not exist, uuid: %s", playerUuid)
}

func ErrPlayerAlreadyInGame(playerUuid string) error {
	return fmt.Errorf("player %s is already in a live game", playerUuid)
}

func ErrPlayerNotInGame(playerUuid, gameUuid string) error {
	return fmt.Errorf("player %s is not part of game %s", playerUuid, gameUuid)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("incoming x or y is out of game grid bound\tx: %d\ty: %d", x, y)
}

func ErrInvalidFleet(reason string) error {
	return fmt.Errorf("invalid fleet: %s", reason)
}

func ErrInvalidShipType(shipType string) error {
	return fmt.Errorf("unknown ship type: %s", shipType)
}

func ErrGameNotAwaitingBoards(gameUuid string) error {
	return fmt.Errorf("game %s is not accepting boards anymore", gameUuid)
}

func ErrGameNotActive(gameUuid string) error {
	return fmt.Errorf("game %s is not active", gameUuid)
}

func ErrBoardAlreadySubmitted(playerUuid string) error {
	return fmt.Errorf("player %s already submitted a board", playerUuid)
}
