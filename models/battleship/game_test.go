package battleship

import (
	"testing"
)

func newActiveGame(t *testing.T) (*Game, *Player, *Player) {
	t.Helper()

	first := NewPlayer("p1-uuid", "alice", nil)
	second := NewPlayer("p2-uuid", "bob", nil)
	game := NewGame(first, second)

	events, err := game.AddBoard(first, testFleet(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("first board must not emit events, got %d", len(events))
	}
	if game.State() != GameStateAwaitingBoards {
		t.Fatal("game must wait for the second board")
	}

	events, err = game.AddBoard(second, testFleet(t))
	if err != nil {
		t.Fatal(err)
	}

	// Both players learn their own layout, then the first player in
	// construction order gets the turn.
	if len(events) != 3 {
		t.Fatalf("expected 3 start events, got %d", len(events))
	}
	for i, p := range []*Player{first, second} {
		if events[i].Kind != EventGameStarted || len(events[i].To) != 1 || events[i].To[0] != p {
			t.Fatalf("event %d: expected start event for %s", i, p.Name())
		}
		if len(events[i].Fleet) != FleetSize {
			t.Fatalf("start event must carry the player's own fleet")
		}
	}
	if events[2].Kind != EventTurn || events[2].Current != first {
		t.Fatalf("expected turn event for %s, got %+v", first.Name(), events[2])
	}

	if game.State() != GameStateActive {
		t.Fatal("game must be active after both boards")
	}
	return game, first, second
}

func TestAddBoardTwice(t *testing.T) {
	first := NewPlayer("p1-uuid", "alice", nil)
	second := NewPlayer("p2-uuid", "bob", nil)
	game := NewGame(first, second)

	if _, err := game.AddBoard(first, testFleet(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := game.AddBoard(first, testFleet(t)); err == nil {
		t.Fatal("expected rejection of a second board for the same player")
	}
}

func TestAddBoardGenerated(t *testing.T) {
	first := NewPlayer("p1-uuid", "alice", nil)
	second := NewPlayer("p2-uuid", "bob", nil)
	game := NewGame(first, second)

	if _, err := game.AddBoard(first, nil); err != nil {
		t.Fatal(err)
	}
	assertFleetValid(t, game.Board(first).Fleet())
}

func TestAttackNotYourTurn(t *testing.T) {
	game, first, second := newActiveGame(t)

	events, err := game.Attack(second, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventTurn || events[0].Current != first {
		t.Fatalf("expected a lone turn re-broadcast, got %+v", events)
	}
	if game.Board(first).IsAttacked(NewCoordinates(0, 0)) {
		t.Fatal("a stale attack must not mutate the board")
	}
}

func TestAttackMissPassesTurn(t *testing.T) {
	game, first, second := newActiveGame(t)

	events, err := game.Attack(first, 9, 9)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected attack result + turn, got %d events", len(events))
	}
	if events[0].Kind != EventAttackResult || events[0].Status != AttackStatusMiss || events[0].Attacker != first {
		t.Fatalf("expected miss by %s, got %+v", first.Name(), events[0])
	}
	if events[1].Kind != EventTurn || events[1].Current != second {
		t.Fatal("a miss must pass the turn")
	}
	if game.TurnHolder() != second {
		t.Fatal("turn holder must be the defender after a miss")
	}
}

func TestAttackShotRetainsTurn(t *testing.T) {
	game, first, _ := newActiveGame(t)

	events, err := game.Attack(first, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if events[0].Status != AttackStatusShot {
		t.Fatalf("expected shot, got %v", events[0].Status)
	}
	if events[1].Kind != EventTurn || events[1].Current != first {
		t.Fatal("a shot must retain the turn")
	}
	if game.TurnHolder() != first {
		t.Fatal("turn holder changed after a shot")
	}
}

func TestAttackRepeatIsSilent(t *testing.T) {
	game, first, _ := newActiveGame(t)

	if _, err := game.Attack(first, 0, 0); err != nil {
		t.Fatal(err)
	}
	events, err := game.Attack(first, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("repeat attack must emit nothing, got %+v", events)
	}
	if game.TurnHolder() != first {
		t.Fatal("repeat attack must not change the turn")
	}
}

func TestKillDisclosesPerimeter(t *testing.T) {
	game, first, second := newActiveGame(t)

	// Sink the lone small ship at (3,4).
	events, err := game.Attack(first, 3, 4)
	if err != nil {
		t.Fatal(err)
	}

	if events[0].Kind != EventAttackResult || events[0].Status != AttackStatusKilled {
		t.Fatalf("expected killed first, got %+v", events[0])
	}

	// Eight perimeter cells disclosed as misses, then the turn stays
	// with the attacker.
	perimeter := events[1 : len(events)-1]
	if len(perimeter) != 8 {
		t.Fatalf("expected 8 disclosed cells, got %d", len(perimeter))
	}
	board := game.Board(second)
	for _, e := range perimeter {
		if e.Kind != EventAttackResult || e.Status != AttackStatusMiss {
			t.Fatalf("disclosed cell must be a miss, got %+v", e)
		}
		if !board.IsAttacked(e.Target) {
			t.Fatalf("disclosed cell %+v must be marked attacked", e.Target)
		}
	}

	last := events[len(events)-1]
	if last.Kind != EventTurn || last.Current != first {
		t.Fatal("a non-final kill must retain the turn")
	}

	// Disclosed cells behave as already-attacked from now on.
	repeatEvents, err := game.Attack(first, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(repeatEvents) != 0 {
		t.Fatal("attacking a disclosed cell must be a silent repeat")
	}
}

func TestFinishNamesWinnerAndCountsWin(t *testing.T) {
	game, first, second := newActiveGame(t)

	var lastEvents []Event
	for _, sh := range game.Board(second).Fleet() {
		for _, c := range sh.Cells() {
			events, err := game.Attack(first, c.X, c.Y)
			if err != nil {
				t.Fatal(err)
			}
			if len(events) != 0 {
				lastEvents = events
			}
		}
	}

	if game.State() != GameStateFinished {
		t.Fatal("sinking the whole fleet must finish the game")
	}
	if game.Board(second).HasSurvivingShips() {
		t.Fatal("defender fleet must be destroyed")
	}

	last := lastEvents[len(lastEvents)-1]
	if last.Kind != EventGameFinished || last.Winner != first {
		t.Fatalf("expected finish naming %s, got %+v", first.Name(), last)
	}
	for _, e := range lastEvents[:len(lastEvents)-1] {
		if e.Kind == EventTurn {
			t.Fatal("no turn event may follow the finishing kill")
		}
	}

	if first.Wins() != 1 {
		t.Fatalf("winner must have 1 win, got %d", first.Wins())
	}
	if second.Wins() != 0 {
		t.Fatalf("loser must have 0 wins, got %d", second.Wins())
	}

	// Terminal: further attacks fail.
	if _, err := game.Attack(first, 9, 9); err == nil {
		t.Fatal("attacks on a finished game must fail")
	}
}

func TestAttackOutOfBoundsDoesNotMutate(t *testing.T) {
	game, first, _ := newActiveGame(t)

	if _, err := game.Attack(first, 10, 0); err == nil {
		t.Fatal("expected out-of-bounds failure")
	}
	if game.TurnHolder() != first {
		t.Fatal("failed attack must not change the turn")
	}
	if game.State() != GameStateActive {
		t.Fatal("failed attack must not change the state")
	}
}

func TestAutoAttack(t *testing.T) {
	game, first, second := newActiveGame(t)

	events, err := game.AutoAttack(first)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) == 0 {
		t.Fatal("auto attack on a fresh board can never be a repeat")
	}
	if events[0].Kind != EventAttackResult || events[0].Attacker != first {
		t.Fatalf("expected an attack result by %s, got %+v", first.Name(), events[0])
	}
	if !game.Board(second).IsAttacked(events[0].Target) {
		t.Fatal("auto attack target must be marked attacked")
	}
}

func TestForfeit(t *testing.T) {
	game, first, second := newActiveGame(t)

	events, err := game.Forfeit(first)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventGameFinished || events[0].Winner != second {
		t.Fatalf("expected finish naming %s, got %+v", second.Name(), events)
	}
	if game.State() != GameStateFinished {
		t.Fatal("forfeit must finish the game")
	}
	if second.Wins() != 1 {
		t.Fatal("forfeit must count as a win for the opponent")
	}

	// Idempotent on a finished game.
	events, err = game.Forfeit(second)
	if err != nil || len(events) != 0 {
		t.Fatalf("forfeit on a finished game must be a no-op, got %+v %v", events, err)
	}
}
