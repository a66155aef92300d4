package battleship

import (
	"math/rand/v2"
	"sort"

	cerr "github.com/seabattlehq/seabattle-backend/internal/error"
)

const (
	GridSize        = 10
	ValidLowerBound = 0
	ValidUpperBound = GridSize - 1
)

// The generator is best-effort, not a backtracking solver. It gives
// up on a ship after this many random anchor picks, which is rare
// enough at 10 ships on 100 cells to be acceptable.
const maxPlacementAttempts = 250

type AttackStatus uint8

const (
	AttackStatusMiss AttackStatus = iota
	AttackStatusShot
	AttackStatusKilled
	AttackStatusRepeat
)

func (s AttackStatus) String() string {
	switch s {
	case AttackStatusMiss:
		return "miss"
	case AttackStatusShot:
		return "shot"
	case AttackStatusKilled:
		return "killed"
	default:
		return "repeat"
	}
}

// Board owns one player's fleet layout and the history of attacks
// against that fleet.
type Board struct {
	ships    []*Ship
	shipAt   map[Coordinates]*Ship
	attacked map[Coordinates]bool
}

func NewBoard() *Board {
	return &Board{
		ships:    make([]*Ship, 0, FleetSize),
		shipAt:   make(map[Coordinates]*Ship, 2*FleetSize),
		attacked: make(map[Coordinates]bool, GridSize*GridSize),
	}
}

func inBounds(x, y int) bool {
	return x >= ValidLowerBound && x <= ValidUpperBound && y >= ValidLowerBound && y <= ValidUpperBound
}

// PlaceFleet validates and installs a caller-supplied fleet. The fleet
// must hold the exact type counts, stay in bounds, and keep a one-cell
// buffer around every ship (no touching, not even diagonally).
func (b *Board) PlaceFleet(ships []*Ship) error {
	if len(b.ships) != 0 {
		return cerr.ErrInvalidFleet("board already holds a fleet")
	}
	if len(ships) != FleetSize {
		return cerr.ErrInvalidFleet("fleet must hold exactly 10 ships")
	}

	counts := make(map[ShipType]int, len(fleetConfig))
	for _, sh := range ships {
		counts[sh.Type()]++
	}
	for _, cfg := range fleetConfig {
		if counts[cfg.shipType] != cfg.count {
			return cerr.ErrInvalidFleet("wrong count for ship type " + string(cfg.shipType))
		}
	}

	shipAt := make(map[Coordinates]*Ship, 2*FleetSize)
	for _, sh := range ships {
		for _, c := range sh.Cells() {
			if !inBounds(c.X, c.Y) {
				return cerr.ErrInvalidFleet("ship cell out of grid bounds")
			}
			if _, taken := shipAt[c]; taken {
				return cerr.ErrInvalidFleet("two ships share a cell")
			}
			shipAt[c] = sh
		}
	}

	for _, sh := range ships {
		for _, c := range neighborCells(sh) {
			if other, prs := shipAt[c]; prs && other != sh {
				return cerr.ErrInvalidFleet("ships must not touch each other")
			}
		}
	}

	b.ships = append(b.ships, ships...)
	b.shipAt = shipAt
	return nil
}

// GenerateFleet produces a valid random fleet. For each ship type in
// descending size order it keeps picking a uniformly random anchor from
// the still-available cells and tries both orientations in random
// order; a fit is valid only if every occupied cell is still available.
// A placed ship removes its footprint plus its one-cell buffer from the
// available set.
func (b *Board) GenerateFleet() error {
	if len(b.ships) != 0 {
		return cerr.ErrInvalidFleet("board already holds a fleet")
	}

	available := make(map[Coordinates]bool, GridSize*GridSize)
	for x := 0; x < GridSize; x++ {
		for y := 0; y < GridSize; y++ {
			available[NewCoordinates(x, y)] = true
		}
	}

	for _, cfg := range fleetConfig {
		for n := 0; n < cfg.count; n++ {
			ship, err := placeRandomShip(cfg.shipType, available)
			if err != nil {
				return err
			}

			b.ships = append(b.ships, ship)
			for _, c := range ship.Cells() {
				b.shipAt[c] = ship
				delete(available, c)
			}
			for _, c := range neighborCells(ship) {
				delete(available, c)
			}
		}
	}
	return nil
}

func placeRandomShip(shipType ShipType, available map[Coordinates]bool) (*Ship, error) {
	free := make([]Coordinates, 0, len(available))
	for c := range available {
		free = append(free, c)
	}

	for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
		if len(free) == 0 {
			break
		}
		anchor := free[rand.IntN(len(free))]

		vertical := rand.IntN(2) == 0
		for _, orient := range [2]bool{vertical, !vertical} {
			ship, err := NewShip(shipType, anchor, orient)
			if err != nil {
				return nil, err
			}
			if shipFits(ship, available) {
				return ship, nil
			}
		}
	}
	return nil, cerr.ErrPlacementExhausted
}

func shipFits(ship *Ship, available map[Coordinates]bool) bool {
	for _, c := range ship.Cells() {
		if !inBounds(c.X, c.Y) || !available[c] {
			return false
		}
	}
	return true
}

// Attack resolves a single-cell attack against this board's fleet.
// Repeated attacks on the same cell are idempotent no-ops. The sunk
// ship is returned alongside AttackStatusKilled so the caller can
// disclose its perimeter.
func (b *Board) Attack(x, y int) (AttackStatus, *Ship, error) {
	if !inBounds(x, y) {
		return AttackStatusMiss, nil, cerr.ErrXorYOutOfGridBound(x, y)
	}

	c := NewCoordinates(x, y)
	if b.attacked[c] {
		return AttackStatusRepeat, nil, nil
	}
	b.attacked[c] = true

	ship, prs := b.shipAt[c]
	if !prs {
		return AttackStatusMiss, nil, nil
	}

	ship.GotHit()
	if ship.IsSunk() {
		return AttackStatusKilled, ship, nil
	}
	return AttackStatusShot, nil, nil
}

// MarkAttacked records a cell as attacked without resolving it. Used
// for perimeter disclosure after a kill so clients never get a fresh
// outcome for those cells.
func (b *Board) MarkAttacked(c Coordinates) {
	if inBounds(c.X, c.Y) {
		b.attacked[c] = true
	}
}

func (b *Board) IsAttacked(c Coordinates) bool {
	return b.attacked[c]
}

// CellsAround returns the one-cell perimeter of a ship's footprint,
// clipped to the board, in deterministic row-major order.
func (b *Board) CellsAround(ship *Ship) []Coordinates {
	footprint := make(map[Coordinates]bool, ship.Length())
	for _, c := range ship.Cells() {
		footprint[c] = true
	}

	seen := make(map[Coordinates]bool)
	perimeter := make([]Coordinates, 0, 2*ship.Length()+6)
	for _, c := range ship.Cells() {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				n := NewCoordinates(c.X+dx, c.Y+dy)
				if !inBounds(n.X, n.Y) || footprint[n] || seen[n] {
					continue
				}
				seen[n] = true
				perimeter = append(perimeter, n)
			}
		}
	}

	sort.Slice(perimeter, func(i, j int) bool {
		if perimeter[i].Y != perimeter[j].Y {
			return perimeter[i].Y < perimeter[j].Y
		}
		return perimeter[i].X < perimeter[j].X
	})
	return perimeter
}

func (b *Board) HasSurvivingShips() bool {
	for _, sh := range b.ships {
		if !sh.IsSunk() {
			return true
		}
	}
	return false
}

func (b *Board) Fleet() []*Ship {
	return b.ships
}

// RandomUnattacked picks a uniformly random coordinate that has not
// been attacked yet.
func (b *Board) RandomUnattacked() (Coordinates, error) {
	free := make([]Coordinates, 0, GridSize*GridSize-len(b.attacked))
	for x := 0; x < GridSize; x++ {
		for y := 0; y < GridSize; y++ {
			if c := NewCoordinates(x, y); !b.attacked[c] {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return Coordinates{}, cerr.ErrNoAvailableCells
	}
	return free[rand.IntN(len(free))], nil
}

// neighborCells is the unclipped one-cell buffer around a ship. Out of
// bounds entries are harmless for set deletion; validation clips where
// it matters.
func neighborCells(ship *Ship) []Coordinates {
	footprint := make(map[Coordinates]bool, ship.Length())
	for _, c := range ship.Cells() {
		footprint[c] = true
	}

	seen := make(map[Coordinates]bool)
	cells := make([]Coordinates, 0, 2*ship.Length()+6)
	for _, c := range ship.Cells() {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				n := NewCoordinates(c.X+dx, c.Y+dy)
				if footprint[n] || seen[n] {
					continue
				}
				seen[n] = true
				cells = append(cells, n)
			}
		}
	}
	return cells
}
