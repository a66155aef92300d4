package connection

type RespReg struct {
	Name      string `json:"name"`
	Index     string `json:"index"`
	Error     bool   `json:"error"`
	ErrorText string `json:"errorText"`
}

type RespRoomUser struct {
	Name  string `json:"name"`
	Index string `json:"index"`
}

type RespRoom struct {
	RoomId    string         `json:"roomId"`
	RoomUsers []RespRoomUser `json:"roomUsers"`
}

type RespWinner struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

type RespCreateGame struct {
	IdGame   string `json:"idGame"`
	IdPlayer string `json:"idPlayer"`
}

type RespStartGame struct {
	Ships              []Ship `json:"ships"`
	CurrentPlayerIndex string `json:"currentPlayerIndex"`
}

type RespTurn struct {
	CurrentPlayer string `json:"currentPlayer"`
}

type RespAttack struct {
	Position      Position `json:"position"`
	CurrentPlayer string   `json:"currentPlayer"`
	Status        string   `json:"status"`
}

type RespFinish struct {
	WinPlayer string `json:"winPlayer"`
}

type RespErr struct {
	Message string `json:"message"`
}
