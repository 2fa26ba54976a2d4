package dto

import "time"

type CreateWagerRequest struct {
	Identity  string `json:"identity"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	GameID   string    `json:"gameId"`
	GameName string    `json:"gameName"`
	GameDate time.Time `json:"gameDate"`
	League   string    `json:"league"`

	ChosenSide   string  `json:"chosenSide"`
	ChosenSideID string  `json:"chosenSideId"`
	Spread       float64 `json:"spread"` // negativo favorece o lado escolhido
	MaxStake     float64 `json:"maxStake"`
}

type AcceptWagerRequest struct {
	Identity  string  `json:"identity"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Amount    float64 `json:"amount"`
}

type SessionRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}
