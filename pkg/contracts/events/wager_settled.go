package events

// Evento emitido após a liquidação de uma aposta.
// WinningSideID vazio indica push (empate contra o spread).
type WagerSettled struct {
	WagerID       string `json:"wager_id"`
	GameID        string `json:"game_id"`
	Outcome       string `json:"outcome"` // "win" | "loss" | "push"
	WinningSideID string `json:"winning_side_id,omitempty"`
	HomeScore     int    `json:"home_score"`
	AwayScore     int    `json:"away_score"`
	TsUnixMs      int64  `json:"ts_unix_ms"`
}
