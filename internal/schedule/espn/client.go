package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client consome o scoreboard do provider primário (formato ESPN).
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Team é o lado de um jogo já mapeado do payload do provider.
// Score só é preenchido quando o provider reporta placar.
type Team struct {
	ID           string
	Name         string
	Abbreviation string
	Logo         string
	Score        *int
}

// Game é a visão do provider primário de um jogo, já com spreads assinados.
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

// sportPath resolve o caminho do esporte na URL do scoreboard
func sportPath(league string) (string, error) {
	switch league {
	case "nfl":
		return "football", nil
	case "nba":
		return "basketball", nil
	default:
		return "", fmt.Errorf("unknown league %q", league)
	}
}

// shapes crus da resposta do provider — nunca saem deste pacote
type scoreboardResponse struct {
	Events []struct {
		ID     string `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Type struct {
				Name  string `json:"name"`
				State string `json:"state"`
			} `json:"type"`
		} `json:"status"`
		Competitions []struct {
			Competitors []struct {
				ID   string `json:"id"`
				Team struct {
					ID          string `json:"id"`
					DisplayName string `json:"displayName"`
					Abbrev      string `json:"abbreviation"`
					Logo        string `json:"logo"`
				} `json:"team"`
				HomeAway string `json:"homeAway"`
				Score    string `json:"score"`
			} `json:"competitors"`
			Odds []oddsEntry `json:"odds"`
		} `json:"competitions"`
	} `json:"events"`
}

type oddsEntry struct {
	Provider struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"provider"`
	Spread       *float64 `json:"spread"`
	HomeTeamOdds *struct {
		Favorite bool `json:"favorite"`
	} `json:"homeTeamOdds"`
	AwayTeamOdds *struct {
		Favorite bool `json:"favorite"`
	} `json:"awayTeamOdds"`
}

// LeagueGames busca o scoreboard completo de uma liga e mapeia para Game.
// Não aplica filtro de status; quem chama decide o recorte.
func (c *Client) LeagueGames(ctx context.Context, league string) ([]Game, error) {
	sport, err := sportPath(league)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/%s/scoreboard", c.BaseURL, sport, league)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("espn request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("espn api error: %s", resp.Status)
	}

	var sb scoreboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&sb); err != nil {
		return nil, fmt.Errorf("espn decode: %w", err)
	}

	games := make([]Game, 0, len(sb.Events))
	for _, ev := range sb.Events {
		if len(ev.Competitions) == 0 {
			continue
		}
		comp := ev.Competitions[0]

		g := Game{
			ID:     ev.ID,
			League: league,
			Status: strings.ToLower(ev.Status.Type.Name),
		}
		if t, err := time.Parse(time.RFC3339, ev.Date); err == nil {
			g.Date = t
		}

		for _, cp := range comp.Competitors {
			team := Team{
				ID:           cp.Team.ID,
				Name:         cp.Team.DisplayName,
				Abbreviation: cp.Team.Abbrev,
				Logo:         cp.Team.Logo,
			}
			if cp.Score != "" {
				if n, err := strconv.Atoi(cp.Score); err == nil {
					s := n
					team.Score = &s
				}
			}
			switch cp.HomeAway {
			case "home":
				g.HomeTeam = team
			case "away":
				g.AwayTeam = team
			}
		}
		if g.HomeTeam.ID == "" || g.AwayTeam.ID == "" {
			return nil, fmt.Errorf("espn: invalid competition data for event %s", ev.ID)
		}

		g.HomeSpread, g.AwaySpread = pickSpreads(comp.Odds)

		games = append(games, g)
	}

	return games, nil
}

// pickSpreads extrai o spread da entrada preferida de odds.
// Preferência: provider "38" (Caesars) ou nome contendo "consensus";
// senão a primeira entrada. O favorito recebe o spread negativo.
func pickSpreads(odds []oddsEntry) (home, away *float64) {
	if len(odds) == 0 {
		return nil, nil
	}

	chosen := odds[0]
	for _, o := range odds {
		if o.Provider.ID == "38" || strings.Contains(strings.ToLower(o.Provider.Name), "consensus") {
			chosen = o
			break
		}
	}

	if chosen.Spread == nil {
		return nil, nil
	}

	mag := math.Abs(*chosen.Spread)
	neg, pos := -mag, mag
	if chosen.HomeTeamOdds != nil && chosen.HomeTeamOdds.Favorite {
		return &neg, &pos
	}
	return &pos, &neg
}
