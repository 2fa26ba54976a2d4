package dto

import (
	"time"

	"github.com/joewaltman/sidebet/internal/schedule"
	"github.com/joewaltman/sidebet/internal/wager-service/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type Team struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Logo         string `json:"logo,omitempty"`
}

type Game struct {
	ID         string    `json:"id"`
	League     string    `json:"league"`
	HomeTeam   Team      `json:"homeTeam"`
	AwayTeam   Team      `json:"awayTeam"`
	Date       time.Time `json:"date"`
	HomeSpread *float64  `json:"homeSpread,omitempty"`
	AwaySpread *float64  `json:"awaySpread,omitempty"`
}

type ListGamesResponse struct {
	Games []Game `json:"games"`
}

type CreateWagerResponse struct {
	WagerID   string `json:"wagerId"`
	ShareLink string `json:"shareLink"`
}

type Wager struct {
	ID               string    `json:"id"`
	CreatorIdentity  string    `json:"creatorIdentity"`
	CreatorFirstName string    `json:"creatorFirstName,omitempty"`
	CreatorLastName  string    `json:"creatorLastName,omitempty"`
	GameID           string    `json:"gameId"`
	GameName         string    `json:"gameName"`
	GameDate         time.Time `json:"gameDate"`
	League           string    `json:"league"`
	ChosenSide       string    `json:"chosenSide"`
	ChosenSideID     string    `json:"chosenSideId"`
	Spread           float64   `json:"spread"`
	MaxStake         float64   `json:"maxStake"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Result de liquidação. WinningSideID null indica push — nunca string vazia,
// pra não colidir com um id legitimamente falsy.
type Result struct {
	ID            int64     `json:"id"`
	WagerID       string    `json:"wagerId"`
	WinningSideID *string   `json:"winningSideId"`
	HomeScore     int       `json:"homeScore"`
	AwayScore     int       `json:"awayScore"`
	SettledAt     time.Time `json:"settledAt"`
}

type GetWagerResponse struct {
	Wager  Wager   `json:"wager"`
	Result *Result `json:"result"`
}

type Acceptance struct {
	ID                int64     `json:"id"`
	WagerID           string    `json:"wagerId"`
	AcceptorIdentity  string    `json:"acceptorIdentity"`
	AcceptorFirstName string    `json:"acceptorFirstName,omitempty"`
	AcceptorLastName  string    `json:"acceptorLastName,omitempty"`
	Amount            float64   `json:"amount"`
	AcceptedAt        time.Time `json:"acceptedAt"`
}

type AcceptWagerResponse struct {
	Success    bool       `json:"success"`
	Acceptance Acceptance `json:"acceptance"`
}

type SettleWagerResponse struct {
	Result  *Result      `json:"result"`
	Outcome string       `json:"outcome"`
	IOUs    []domain.IOU `json:"ious"`
	Message string       `json:"message"`
}

type CreatedWager struct {
	Wager
	Result      *Result      `json:"result"`
	Acceptances []Acceptance `json:"acceptances"`
}

type AcceptedWager struct {
	Acceptance
	Wager  Wager   `json:"wager"`
	Result *Result `json:"result"`
}

type MyWagersResponse struct {
	Created  []CreatedWager  `json:"created"`
	Accepted []AcceptedWager `json:"accepted"`
}

type SessionResponse struct {
	NormalizedIdentity string `json:"normalizedIdentity"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
}

// FromGame mapeia o shape canônico do schedule para o contrato da API
func FromGame(g schedule.Game) Game {
	return Game{
		ID:     g.ID,
		League: g.League,
		HomeTeam: Team{
			ID:           g.HomeTeam.ID,
			Name:         g.HomeTeam.Name,
			Abbreviation: g.HomeTeam.Abbreviation,
			Logo:         g.HomeTeam.Logo,
		},
		AwayTeam: Team{
			ID:           g.AwayTeam.ID,
			Name:         g.AwayTeam.Name,
			Abbreviation: g.AwayTeam.Abbreviation,
			Logo:         g.AwayTeam.Logo,
		},
		Date:       g.Date,
		HomeSpread: g.HomeSpread,
		AwaySpread: g.AwaySpread,
	}
}

func FromWager(w domain.Wager) Wager {
	return Wager{
		ID:              w.ID,
		CreatorIdentity: w.CreatorIdentity,
		GameID:          w.GameID,
		GameName:        w.GameName,
		GameDate:        w.GameDate,
		League:          w.GameLeague,
		ChosenSide:      w.ChosenSide,
		ChosenSideID:    w.ChosenSideID,
		Spread:          w.Spread,
		MaxStake:        w.MaxStake,
		Status:          w.Status,
		CreatedAt:       w.CreatedAt,
	}
}

func FromWagerWithCreator(w domain.WagerWithCreator) Wager {
	out := FromWager(w.Wager)
	out.CreatorFirstName = w.CreatorFirstName
	out.CreatorLastName = w.CreatorLastName
	return out
}

func FromResult(r *domain.Result) *Result {
	if r == nil {
		return nil
	}
	return &Result{
		ID:            r.ID,
		WagerID:       r.WagerID,
		WinningSideID: r.WinningSideID,
		HomeScore:     r.HomeScore,
		AwayScore:     r.AwayScore,
		SettledAt:     r.SettledAt,
	}
}

func FromAcceptance(a domain.Acceptance) Acceptance {
	return Acceptance{
		ID:               a.ID,
		WagerID:          a.WagerID,
		AcceptorIdentity: a.AcceptorIdentity,
		Amount:           a.Amount,
		AcceptedAt:       a.AcceptedAt,
	}
}

func FromAcceptanceWithUser(a domain.AcceptanceWithUser) Acceptance {
	out := FromAcceptance(a.Acceptance)
	out.AcceptorFirstName = a.FirstName
	out.AcceptorLastName = a.LastName
	return out
}
