package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client consome o provider secundário de spreads (formato The Odds API).
// Usado apenas como fallback quando o provider primário não traz spread.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Spread é o par de spreads de um jogo segundo o provider secundário.
type Spread struct {
	GameID       string
	HomeTeam     string
	AwayTeam     string
	HomeSpread   float64
	AwaySpread   float64
	CommenceTime time.Time
}

// sportKeys do provider secundário
var sportKeys = map[string]string{
	"nfl": "americanfootball_nfl",
	"nba": "basketball_nba",
}

// shape cru da resposta — nunca sai deste pacote
type oddsResponse struct {
	ID           string `json:"id"`
	SportKey     string `json:"sport_key"`
	CommenceTime string `json:"commence_time"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	Bookmakers   []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string   `json:"name"`
				Point *float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// LeagueSpreads busca os spreads de uma liga.
// Jogos sem mercado de spreads completo são ignorados.
func (c *Client) LeagueSpreads(ctx context.Context, league string) ([]Spread, error) {
	key, ok := sportKeys[league]
	if !ok {
		return nil, fmt.Errorf("unknown league %q", league)
	}

	url := fmt.Sprintf("%s/%s/odds?apiKey=%s&regions=us&markets=spreads&oddsFormat=american", c.BaseURL, key, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odds api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds api error: %s", resp.Status)
	}

	var games []oddsResponse
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, fmt.Errorf("odds api decode: %w", err)
	}

	spreads := make([]Spread, 0, len(games))
	for _, g := range games {
		if len(g.Bookmakers) == 0 {
			continue
		}

		// usa o primeiro bookmaker (tipicamente DraftKings ou FanDuel)
		var home, away *float64
		for _, m := range g.Bookmakers[0].Markets {
			if m.Key != "spreads" {
				continue
			}
			for _, o := range m.Outcomes {
				switch o.Name {
				case g.HomeTeam:
					home = o.Point
				case g.AwayTeam:
					away = o.Point
				}
			}
		}
		if home == nil || away == nil {
			continue
		}

		s := Spread{
			GameID:     g.ID,
			HomeTeam:   g.HomeTeam,
			AwayTeam:   g.AwayTeam,
			HomeSpread: *home,
			AwaySpread: *away,
		}
		if t, err := time.Parse(time.RFC3339, g.CommenceTime); err == nil {
			s.CommenceTime = t
		}
		spreads = append(spreads, s)
	}

	return spreads, nil
}
