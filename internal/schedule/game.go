package schedule

import (
	"fmt"
	"time"

	"github.com/joewaltman/sidebet/internal/schedule/espn"
	"github.com/joewaltman/sidebet/internal/schedule/oddsapi"
)

// Leagues suportadas
const (
	LeagueNFL = "nfl"
	LeagueNBA = "nba"
)

// ValidLeague valida o filtro de liga vindo da API
func ValidLeague(league string) bool {
	return league == LeagueNFL || league == LeagueNBA
}

// Team é um lado de um jogo na visão canônica do engine.
type Team struct {
	ID           string
	Name         string
	Abbreviation string
	Logo         string
	Score        *int
}

// Game é a visão canônica de um jogo externo. Toda lógica do engine opera
// sobre este shape; os shapes dos providers ficam nos pacotes espn/oddsapi.
type Game struct {
	ID         string
	League     string
	Date       time.Time
	Status     string
	HomeTeam   Team
	AwayTeam   Team
	HomeSpread *float64
	AwaySpread *float64
}

// Upcoming indica que o jogo ainda não começou segundo o provider
func (g Game) Upcoming() bool {
	switch g.Status {
	case "pre", "scheduled", "status_scheduled":
		return true
	}
	return false
}

// Completed indica que o provider reporta o jogo como encerrado
func (g Game) Completed() bool {
	switch g.Status {
	case "post", "final", "status_final":
		return true
	}
	return false
}

// Spread é o par de spreads do provider secundário na visão canônica.
type Spread struct {
	GameID       string
	HomeTeam     string
	AwayTeam     string
	HomeSpread   float64
	AwaySpread   float64
	CommenceTime time.Time
}

// fromESPN mapeia o shape do provider primário para o canônico
func fromESPN(g espn.Game) Game {
	return Game{
		ID:     g.ID,
		League: g.League,
		Date:   g.Date,
		Status: g.Status,
		HomeTeam: Team{
			ID:           g.HomeTeam.ID,
			Name:         g.HomeTeam.Name,
			Abbreviation: g.HomeTeam.Abbreviation,
			Logo:         g.HomeTeam.Logo,
			Score:        g.HomeTeam.Score,
		},
		AwayTeam: Team{
			ID:           g.AwayTeam.ID,
			Name:         g.AwayTeam.Name,
			Abbreviation: g.AwayTeam.Abbreviation,
			Logo:         g.AwayTeam.Logo,
			Score:        g.AwayTeam.Score,
		},
		HomeSpread: g.HomeSpread,
		AwaySpread: g.AwaySpread,
	}
}

// fromOddsAPI mapeia o shape do provider secundário para o canônico
func fromOddsAPI(s oddsapi.Spread) Spread {
	return Spread{
		GameID:       s.GameID,
		HomeTeam:     s.HomeTeam,
		AwayTeam:     s.AwayTeam,
		HomeSpread:   s.HomeSpread,
		AwaySpread:   s.AwaySpread,
		CommenceTime: s.CommenceTime,
	}
}

// FormatSpread formata um spread para exibição (ex: "-7.5", "+3.5")
func FormatSpread(spread float64) string {
	if spread > 0 {
		return fmt.Sprintf("+%v", spread)
	}
	return fmt.Sprintf("%v", spread)
}
