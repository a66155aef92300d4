package battleship

import (
	cerr "github.com/seabattlehq/seabattle-backend/internal/error"
)

type ShipType string

const (
	ShipTypeSmall  ShipType = "small"
	ShipTypeMedium ShipType = "medium"
	ShipTypeLarge  ShipType = "large"
	ShipTypeHuge   ShipType = "huge"
)

// fleetConfig is ordered by descending ship size. The placement
// generator relies on this order: big ships go first while the
// board is still mostly empty.
var fleetConfig = []struct {
	shipType ShipType
	length   int
	count    int
}{
	{ShipTypeHuge, 4, 1},
	{ShipTypeLarge, 3, 2},
	{ShipTypeMedium, 2, 3},
	{ShipTypeSmall, 1, 4},
}

// FleetSize is the total number of ships in a complete fleet.
const FleetSize = 10

func ShipTypeLength(shipType ShipType) (int, error) {
	for _, cfg := range fleetConfig {
		if cfg.shipType == shipType {
			return cfg.length, nil
		}
	}
	return 0, cerr.ErrInvalidShipType(string(shipType))
}

type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

type Ship struct {
	shipType ShipType
	anchor   Coordinates
	vertical bool
	length   int
	hits     int
}

func NewShip(shipType ShipType, anchor Coordinates, vertical bool) (*Ship, error) {
	length, err := ShipTypeLength(shipType)
	if err != nil {
		return nil, err
	}

	return &Ship{
		shipType: shipType,
		anchor:   anchor,
		vertical: vertical,
		length:   length,
	}, nil
}

func (sh *Ship) Type() ShipType {
	return sh.shipType
}

func (sh *Ship) Anchor() Coordinates {
	return sh.anchor
}

func (sh *Ship) IsVertical() bool {
	return sh.vertical
}

func (sh *Ship) Length() int {
	return sh.length
}

// Cells returns the footprint of the ship: length cells starting
// at the anchor, extending right or down depending on orientation.
func (sh *Ship) Cells() []Coordinates {
	cells := make([]Coordinates, 0, sh.length)
	for i := 0; i < sh.length; i++ {
		if sh.vertical {
			cells = append(cells, NewCoordinates(sh.anchor.X, sh.anchor.Y+i))
		} else {
			cells = append(cells, NewCoordinates(sh.anchor.X+i, sh.anchor.Y))
		}
	}
	return cells
}

func (sh *Ship) GotHit() {
	sh.hits++
}

func (sh *Ship) IsSunk() bool {
	return sh.hits == sh.length
}
