package connection

import "encoding/json"

// Inbound message types.
const (
	TypeReg           = "reg"
	TypeCreateRoom    = "create_room"
	TypeAddUserToRoom = "add_user_to_room"
	TypeAddShips      = "add_ships"
	TypeAttack        = "attack"
	TypeRandomAttack  = "randomAttack"
	TypeSinglePlay    = "single_play"
)

// Outbound message types. TypeAttack doubles as the attack-result
// broadcast, exactly as the client protocol defines it.
const (
	TypeUpdateRoom    = "update_room"
	TypeUpdateWinners = "update_winners"
	TypeCreateGame    = "create_game"
	TypeStartGame     = "start_game"
	TypeTurn          = "turn"
	TypeFinish        = "finish"
	TypeError         = "error"
)

// Envelope is the wire frame. Data is double-encoded: a JSON string
// that itself contains JSON, as the client protocol requires.
type Envelope struct {
	Type string `json:"type"`
	Data string `json:"data"`
	Id   int    `json:"id"`
}

func NewEnvelope(msgType string, payload any) (Envelope, error) {
	e := Envelope{Type: msgType}
	if payload == nil {
		return e, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return e, err
	}
	e.Data = string(raw)
	return e, nil
}

// MustEnvelope wraps payloads whose marshaling cannot fail: plain
// structs of strings and numbers built by this package.
func MustEnvelope(msgType string, payload any) Envelope {
	e, err := NewEnvelope(msgType, payload)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Envelope) DecodePayload(v any) error {
	return json.Unmarshal([]byte(e.Data), v)
}
