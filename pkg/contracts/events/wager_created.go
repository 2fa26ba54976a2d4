package events

type WagerCreated struct {
	WagerID         string  `json:"wager_id"`
	CreatorIdentity string  `json:"creator_identity"`
	GameID          string  `json:"game_id"`
	League          string  `json:"league"`
	ChosenSideID    string  `json:"chosen_side_id"`
	Spread          float64 `json:"spread"`
	MaxStake        float64 `json:"max_stake"`
	TsUnixMs        int64   `json:"ts_unix_ms"`
}
