package schedule

import (
	"strings"
	"time"
)

const matchWindow = 24 * time.Hour

// matchSpreads casa jogos do provider primário com spreads do secundário.
// Heurística: substring case-insensitive nos dois sentidos para os nomes dos
// times da casa E visitante, e diferença de horário menor que 24h.
// O primeiro spread que casar vence; empates não são desambiguados.
func matchSpreads(games []Game, spreads []Spread) map[string]Spread {
	matches := make(map[string]Spread)

	for _, g := range games {
		for _, s := range spreads {
			if teamNameMatch(s.HomeTeam, g.HomeTeam.Name) &&
				teamNameMatch(s.AwayTeam, g.AwayTeam.Name) &&
				absDuration(g.Date.Sub(s.CommenceTime)) < matchWindow {
				matches[g.ID] = s
				break
			}
		}
	}

	return matches
}

// teamNameMatch testa substring case-insensitive nos dois sentidos
func teamNameMatch(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
