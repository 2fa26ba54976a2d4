package domain

import "time"

// Status do ciclo de vida de uma aposta. A única transição é open→settled.
const (
	StatusOpen    = "open"
	StatusSettled = "settled"
)

// Outcome é o resultado da aposta contra o spread
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// User é a identidade normalizada (E.164) com nome de exibição.
// Criado/atualizado a cada interação, nunca removido.
type User struct {
	Identity  string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// Wager é uma aposta proposta, imutável após liquidação.
type Wager struct {
	ID              string
	CreatorIdentity string
	GameID          string
	GameName        string
	GameDate        time.Time
	GameLeague      string
	ChosenSide      string
	ChosenSideID    string
	Spread          float64
	MaxStake        float64
	Status          string
	CreatedAt       time.Time
}

// WagerWithCreator junta a aposta com o nome de exibição do criador
type WagerWithCreator struct {
	Wager
	CreatorFirstName string
	CreatorLastName  string
}

// Acceptance é o compromisso de uma contraparte contra uma aposta.
// No máximo uma por (wager, acceptor); imutável depois de criada.
type Acceptance struct {
	ID               int64
	WagerID          string
	AcceptorIdentity string
	Amount           float64
	AcceptedAt       time.Time
}

// AcceptanceWithUser junta o aceite com o nome de exibição do aceitante
type AcceptanceWithUser struct {
	Acceptance
	FirstName string
	LastName  string
}

// Result é o registro de liquidação de uma aposta, único por wager.
// WinningSideID nil indica push.
type Result struct {
	ID            int64
	WagerID       string
	WinningSideID *string
	HomeScore     int
	AwayScore     int
	SettledAt     time.Time
}

// IOU é uma dívida derivada da liquidação. Nunca é persistida: é sempre
// recalculada a partir do resultado e da lista de aceites.
type IOU struct {
	Debtor   string  `json:"debtor"`
	Creditor string  `json:"creditor"`
	Amount   float64 `json:"amount"`
}

// AcceptedWager é um aceite junto com a aposta correspondente
type AcceptedWager struct {
	Acceptance Acceptance
	Wager      Wager
}

// CreatedWagerView é a visão do criador: aposta, resultado (se houver)
// e a lista de aceites em ordem de aceite
type CreatedWagerView struct {
	Wager       Wager
	Result      *Result
	Acceptances []AcceptanceWithUser
}

// AcceptedWagerView é a visão do aceitante: aceite, aposta e resultado
type AcceptedWagerView struct {
	Acceptance Acceptance
	Wager      Wager
	Result     *Result
}
