package settle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/joewaltman/sidebet/internal/schedule"
	"github.com/joewaltman/sidebet/internal/wager-service/domain"
)

// Store é o subconjunto de persistência que o engine de liquidação usa
type Store interface {
	GetWager(ctx context.Context, wagerID string) (*domain.Wager, error)
	GetResult(ctx context.Context, wagerID string) (*domain.Result, error)
	GetUser(ctx context.Context, identity string) (*domain.User, error)
	ListAcceptancesWithUsers(ctx context.Context, wagerID string) ([]domain.AcceptanceWithUser, error)
	SettleWager(ctx context.Context, wagerID string, winningSideID *string, homeScore, awayScore int) (*domain.Result, bool, error)
}

// GameResolver re-resolve um jogo direto no provider, sem cache.
// A liquidação nunca confia no cache de próximos jogos.
type GameResolver interface {
	Resolve(ctx context.Context, gameID, league string) (*schedule.Game, error)
}

// Engine executa a única transição do ciclo de vida: open → settled.
// A transição é idempotente: a unicidade do resultado no banco decide quem
// liquida; todo mundo recebe o mesmo resultado e a mesma lista de IOUs.
type Engine struct {
	log   *zap.Logger
	store Store
	games GameResolver
}

func NewEngine(log *zap.Logger, store Store, games GameResolver) *Engine {
	return &Engine{log: log, store: store, games: games}
}

// Settlement é o resultado completo de uma chamada de liquidação
type Settlement struct {
	Wager          *domain.Wager
	Result         *domain.Result
	Outcome        domain.Outcome
	IOUs           []domain.IOU
	AlreadySettled bool
}

// Settle liquida uma aposta. Chamadas repetidas (ou concorrentes) devolvem
// o resultado já gravado e os IOUs re-derivados deterministicamente.
func (e *Engine) Settle(ctx context.Context, wagerID string) (*Settlement, error) {
	w, err := e.store.GetWager(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("load wager: %w", err)
	}
	if w == nil {
		return nil, domain.E(domain.KindNotFound, "wager not found")
	}

	// atalho idempotente: resultado já existe
	if res, err := e.store.GetResult(ctx, wagerID); err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	} else if res != nil {
		return e.fromResult(ctx, w, res)
	}

	game, err := e.games.Resolve(ctx, w.GameID, w.GameLeague)
	if err != nil {
		return nil, fmt.Errorf("resolve game: %w", err)
	}
	if game == nil {
		// jogo sumiu do feed: a aposta continua open e a liquidação
		// pode ser tentada de novo quando o feed voltar
		return nil, domain.E(domain.KindNotFound, "game not found")
	}
	if !game.Completed() {
		return nil, domain.E(domain.KindGameNotFinished, "game is not yet completed")
	}

	outcome, err := Decide(game, w.ChosenSideID, w.Spread)
	if err != nil {
		return nil, err
	}

	var winningSideID *string
	switch outcome {
	case domain.OutcomeWin:
		winningSideID = &w.ChosenSideID
	case domain.OutcomeLoss:
		other := game.AwayTeam.ID
		if game.AwayTeam.ID == w.ChosenSideID {
			other = game.HomeTeam.ID
		}
		winningSideID = &other
	}

	res, inserted, err := e.store.SettleWager(ctx, wagerID, winningSideID, *game.HomeTeam.Score, *game.AwayTeam.Score)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// perdeu a corrida: devolve o resultado do vencedor
		return e.fromResult(ctx, w, res)
	}

	ious, err := e.ious(ctx, w, outcome)
	if err != nil {
		return nil, err
	}

	e.log.Info("wager settled",
		zap.String("wagerId", wagerID),
		zap.String("outcome", string(outcome)),
		zap.Int("homeScore", res.HomeScore),
		zap.Int("awayScore", res.AwayScore),
	)

	return &Settlement{Wager: w, Result: res, Outcome: outcome, IOUs: ious}, nil
}

// fromResult re-deriva outcome e IOUs a partir do resultado persistido
func (e *Engine) fromResult(ctx context.Context, w *domain.Wager, res *domain.Result) (*Settlement, error) {
	outcome := OutcomeFromResult(w, res)
	ious, err := e.ious(ctx, w, outcome)
	if err != nil {
		return nil, err
	}
	return &Settlement{Wager: w, Result: res, Outcome: outcome, IOUs: ious, AlreadySettled: true}, nil
}

// Decide aplica o spread ao placar final do jogo.
// coverDiff = (placar do lado escolhido - placar do oponente) - spread;
// positivo cobre (win), negativo não cobre (loss), zero exato é push.
func Decide(game *schedule.Game, chosenSideID string, spread float64) (domain.Outcome, error) {
	if game.HomeTeam.Score == nil || game.AwayTeam.Score == nil {
		return "", domain.E(domain.KindGameNotFinished, "game does not have final scores")
	}

	chosenScore, opponentScore := *game.AwayTeam.Score, *game.HomeTeam.Score
	if game.HomeTeam.ID == chosenSideID {
		chosenScore, opponentScore = *game.HomeTeam.Score, *game.AwayTeam.Score
	}

	actualDiff := float64(chosenScore - opponentScore)
	coverDiff := actualDiff - spread

	switch {
	case coverDiff > 0:
		return domain.OutcomeWin, nil
	case coverDiff < 0:
		return domain.OutcomeLoss, nil
	default:
		return domain.OutcomePush, nil
	}
}

// OutcomeFromResult reconstrói o outcome a partir do resultado persistido
func OutcomeFromResult(w *domain.Wager, r *domain.Result) domain.Outcome {
	switch {
	case r.WinningSideID == nil:
		return domain.OutcomePush
	case *r.WinningSideID == w.ChosenSideID:
		return domain.OutcomeWin
	default:
		return domain.OutcomeLoss
	}
}

// ious deriva as dívidas da liquidação. Em win os aceitantes devem ao
// criador; em loss o criador deve aos aceitantes; em push não há dívidas.
// A ordem segue a ordem de aceite, então a lista é determinística.
func (e *Engine) ious(ctx context.Context, w *domain.Wager, outcome domain.Outcome) ([]domain.IOU, error) {
	if outcome == domain.OutcomePush {
		return nil, nil
	}

	acceptances, err := e.store.ListAcceptancesWithUsers(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("load acceptances: %w", err)
	}

	creator, err := e.store.GetUser(ctx, w.CreatorIdentity)
	if err != nil {
		return nil, fmt.Errorf("load creator: %w", err)
	}
	if creator == nil {
		return nil, fmt.Errorf("creator %s not found", w.CreatorIdentity)
	}
	creatorName := creator.FirstName + " " + creator.LastName

	ious := make([]domain.IOU, 0, len(acceptances))
	for _, a := range acceptances {
		acceptorName := a.FirstName + " " + a.LastName
		iou := domain.IOU{Debtor: acceptorName, Creditor: creatorName, Amount: a.Amount}
		if outcome == domain.OutcomeLoss {
			iou.Debtor, iou.Creditor = creatorName, acceptorName
		}
		ious = append(ious, iou)
	}

	return ious, nil
}
