package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/joewaltman/sidebet/internal/schedule/espn"
	"github.com/joewaltman/sidebet/internal/schedule/oddsapi"
)

// Service é a visão cacheada e mesclada dos dois providers externos.
// O provider primário fornece jogos e spreads; o secundário só entra como
// fallback de spread e é opcional (nil quando não há credencial).
type Service struct {
	log       *zap.Logger
	primary   *espn.Client
	secondary *oddsapi.Client

	games   *memoryCache[[]Game]
	spreads *memoryCache[[]Spread]
}

func NewService(log *zap.Logger, primary *espn.Client, secondary *oddsapi.Client, ttl time.Duration) *Service {
	return &Service{
		log:       log,
		primary:   primary,
		secondary: secondary,
		games:     newMemoryCache[[]Game](ttl),
		spreads:   newMemoryCache[[]Spread](ttl),
	}
}

// ListUpcoming retorna os jogos ainda não iniciados, ordenados por data.
// league vazio busca todas as ligas. O resultado filtrado fica em cache pelo
// TTL; um hit não gera nenhum acesso de rede. Falha de fetch propaga o erro
// sem tocar na entrada anterior.
func (s *Service) ListUpcoming(ctx context.Context, league string) ([]Game, error) {
	key := league
	if key == "" {
		key = "all"
	}

	games, ok := s.games.get(key)
	if !ok {
		fetched, err := s.fetchUpcoming(ctx, league)
		if err != nil {
			return nil, err
		}
		s.games.set(key, fetched)
		games = fetched
	}

	return s.withFallbackSpreads(ctx, league, games), nil
}

func (s *Service) fetchUpcoming(ctx context.Context, league string) ([]Game, error) {
	leagues := []string{LeagueNFL, LeagueNBA}
	if league != "" {
		leagues = []string{league}
	}

	var games []Game
	for _, lg := range leagues {
		raw, err := s.primary.LeagueGames(ctx, lg)
		if err != nil {
			return nil, fmt.Errorf("fetch %s games: %w", lg, err)
		}
		for _, g := range raw {
			cg := fromESPN(g)
			if cg.Upcoming() {
				games = append(games, cg)
			}
		}
	}

	sort.Slice(games, func(i, j int) bool { return games[i].Date.Before(games[j].Date) })

	return games, nil
}

// Resolve busca um jogo direto no provider primário, sem passar pelo cache
// de próximos jogos (um jogo encerrado já teria sido filtrado dele).
// Retorna nil quando o jogo não existe no feed da liga.
func (s *Service) Resolve(ctx context.Context, gameID, league string) (*Game, error) {
	raw, err := s.primary.LeagueGames(ctx, league)
	if err != nil {
		return nil, fmt.Errorf("resolve game %s: %w", gameID, err)
	}

	for _, g := range raw {
		if g.ID == gameID {
			cg := fromESPN(g)
			return &cg, nil
		}
	}
	return nil, nil
}

// withFallbackSpreads preenche spreads faltantes com o provider secundário.
// Qualquer falha aqui degrada para "sem spread de fallback", apenas logada.
func (s *Service) withFallbackSpreads(ctx context.Context, league string, games []Game) []Game {
	if s.secondary == nil {
		return games
	}

	spreads, err := s.listSpreads(ctx, league)
	if err != nil {
		s.log.Warn("secondary spread fetch failed", zap.Error(err))
		return games
	}
	if len(spreads) == 0 {
		return games
	}

	matches := matchSpreads(games, spreads)

	out := make([]Game, len(games))
	copy(out, games)
	for i := range out {
		if out[i].HomeSpread != nil && out[i].AwaySpread != nil {
			continue
		}
		if m, ok := matches[out[i].ID]; ok {
			hs, as := m.HomeSpread, m.AwaySpread
			out[i].HomeSpread = &hs
			out[i].AwaySpread = &as
		}
	}
	return out
}

func (s *Service) listSpreads(ctx context.Context, league string) ([]Spread, error) {
	key := league
	if key == "" {
		key = "all"
	}

	if cached, ok := s.spreads.get(key); ok {
		return cached, nil
	}

	leagues := []string{LeagueNFL, LeagueNBA}
	if league != "" {
		leagues = []string{league}
	}

	var spreads []Spread
	for _, lg := range leagues {
		raw, err := s.secondary.LeagueSpreads(ctx, lg)
		if err != nil {
			return nil, err
		}
		for _, sp := range raw {
			spreads = append(spreads, fromOddsAPI(sp))
		}
	}

	s.spreads.set(key, spreads)
	return spreads, nil
}
