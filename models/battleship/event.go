package battleship

type EventKind uint8

const (
	// EventGameStarted carries the recipient's own fleet layout.
	EventGameStarted EventKind = iota
	// EventTurn names the player currently permitted to attack.
	EventTurn
	// EventAttackResult reports one resolved cell: the direct attack
	// outcome or a disclosed perimeter miss after a kill.
	EventAttackResult
	// EventGameFinished names the winner. Terminal, nothing follows it.
	EventGameFinished
)

// Event is one outbound notification produced by a mutating Game call.
// Events come back as an ordered slice and must be delivered to the
// listed recipients in exactly that order.
type Event struct {
	Kind EventKind
	To   []*Player

	Fleet    []*Ship
	Current  *Player
	Attacker *Player
	Target   Coordinates
	Status   AttackStatus
	Winner   *Player
}

func newTurnEvent(recipients []*Player, current *Player) Event {
	return Event{Kind: EventTurn, To: recipients, Current: current}
}

func newAttackResultEvent(recipients []*Player, attacker *Player, target Coordinates, status AttackStatus) Event {
	return Event{Kind: EventAttackResult, To: recipients, Attacker: attacker, Target: target, Status: status}
}
