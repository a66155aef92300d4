package connection

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Ship is the wire shape of one ship, shared between add_ships
// requests and start_game responses. Direction true means vertical.
type Ship struct {
	Position  Position `json:"position"`
	Direction bool     `json:"direction"`
	Length    int      `json:"length"`
	Type      string   `json:"type"`
}

type ReqReg struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type ReqAddUserToRoom struct {
	IndexRoom string `json:"indexRoom"`
}

type ReqAddShips struct {
	GameId      string `json:"gameId"`
	Ships       []Ship `json:"ships"`
	IndexPlayer string `json:"indexPlayer"`
}

type ReqAttack struct {
	GameId      string `json:"gameId"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	IndexPlayer string `json:"indexPlayer"`
}

type ReqRandomAttack struct {
	GameId      string `json:"gameId"`
	IndexPlayer string `json:"indexPlayer"`
}
