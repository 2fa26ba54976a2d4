package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/joewaltman/sidebet/internal/identity"
	"github.com/joewaltman/sidebet/internal/schedule"
	"github.com/joewaltman/sidebet/internal/wager-service/domain"
)

// Store é o subconjunto de persistência que o ledger usa
type Store interface {
	UpsertUser(ctx context.Context, identity, firstName, lastName string) error
	CreateWager(ctx context.Context, w *domain.Wager) (string, error)
	GetWager(ctx context.Context, wagerID string) (*domain.Wager, error)
	GetWagerWithCreator(ctx context.Context, wagerID string) (*domain.WagerWithCreator, error)
	CreateAcceptance(ctx context.Context, wagerID, acceptorIdentity string, amount float64) (*domain.Acceptance, error)
	ListAcceptancesWithUsers(ctx context.Context, wagerID string) ([]domain.AcceptanceWithUser, error)
	GetResult(ctx context.Context, wagerID string) (*domain.Result, error)
	ListWagersCreatedBy(ctx context.Context, identity string) ([]domain.Wager, error)
	ListWagersAcceptedBy(ctx context.Context, identity string) ([]domain.AcceptedWager, error)
}

// Service aplica as regras de criação e aceite de apostas sobre o Store.
// As invariantes de unicidade ficam nas constraints do banco; aqui ficam as
// regras de estado (aposta aberta, jogo não iniciado, stake válido).
type Service struct {
	log   *zap.Logger
	store Store
	now   func() time.Time
}

func NewService(log *zap.Logger, store Store) *Service {
	return &Service{log: log, store: store, now: time.Now}
}

// OpenParams são os dados para criar uma aposta
type OpenParams struct {
	Identity  string
	FirstName string
	LastName  string

	GameID     string
	GameName   string
	GameDate   time.Time
	GameLeague string

	ChosenSide   string
	ChosenSideID string
	Spread       float64
	MaxStake     float64
}

// Open cria uma aposta com status open e faz o upsert da identidade do
// criador como efeito colateral. Não há limite superior para o spread.
func (s *Service) Open(ctx context.Context, p OpenParams) (*domain.Wager, error) {
	if p.Identity == "" || p.FirstName == "" || p.LastName == "" ||
		p.GameID == "" || p.GameName == "" || p.GameDate.IsZero() ||
		p.GameLeague == "" || p.ChosenSide == "" || p.ChosenSideID == "" {
		return nil, domain.E(domain.KindValidation, "missing required fields")
	}
	if p.MaxStake <= 0 {
		return nil, domain.E(domain.KindValidation, "max stake must be greater than 0")
	}

	creator, err := identity.Normalize(p.Identity)
	if err != nil {
		return nil, domain.E(domain.KindValidation, "invalid phone number")
	}

	if err := s.store.UpsertUser(ctx, creator, p.FirstName, p.LastName); err != nil {
		return nil, fmt.Errorf("upsert creator: %w", err)
	}

	w := &domain.Wager{
		CreatorIdentity: creator,
		GameID:          p.GameID,
		GameName:        p.GameName,
		GameDate:        p.GameDate,
		GameLeague:      p.GameLeague,
		ChosenSide:      p.ChosenSide,
		ChosenSideID:    p.ChosenSideID,
		Spread:          p.Spread,
		MaxStake:        p.MaxStake,
		Status:          domain.StatusOpen,
	}
	if w.ID, err = s.store.CreateWager(ctx, w); err != nil {
		return nil, fmt.Errorf("create wager: %w", err)
	}

	s.log.Info("wager opened",
		zap.String("wagerId", w.ID),
		zap.String("game", p.GameName),
		zap.String("side", p.ChosenSide+" "+schedule.FormatSpread(p.Spread)),
	)

	return w, nil
}

// AcceptParams são os dados para aceitar uma aposta
type AcceptParams struct {
	Identity  string
	FirstName string
	LastName  string
	Amount    float64
}

// Accept registra o aceite de uma contraparte. Cada pré-condição falha com
// uma categoria própria; o duplicado é decidido pela constraint do banco,
// nunca só por um check prévio na aplicação.
func (s *Service) Accept(ctx context.Context, wagerID string, p AcceptParams) (*domain.Acceptance, error) {
	if p.Identity == "" || p.FirstName == "" || p.LastName == "" {
		return nil, domain.E(domain.KindValidation, "missing required fields")
	}

	acceptor, err := identity.Normalize(p.Identity)
	if err != nil {
		return nil, domain.E(domain.KindValidation, "invalid phone number")
	}

	w, err := s.store.GetWager(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("load wager: %w", err)
	}
	if w == nil {
		return nil, domain.E(domain.KindNotFound, "wager not found")
	}

	if w.Status != domain.StatusOpen {
		return nil, domain.E(domain.KindWagerClosed, "wager is no longer open")
	}

	// o aceite fecha no instante do início do jogo, independente do
	// status reportado pelo provider
	if !w.GameDate.After(s.now()) {
		return nil, domain.E(domain.KindGameStarted, "game has already started")
	}

	if p.Amount <= 0 {
		return nil, domain.E(domain.KindInvalidStake, "amount must be greater than 0")
	}
	if p.Amount > w.MaxStake {
		return nil, domain.E(domain.KindInvalidStake,
			fmt.Sprintf("amount cannot exceed max stake of $%v", w.MaxStake))
	}

	if acceptor == w.CreatorIdentity {
		return nil, domain.E(domain.KindSelfAcceptance, "you cannot accept your own wager")
	}

	if err := s.store.UpsertUser(ctx, acceptor, p.FirstName, p.LastName); err != nil {
		return nil, fmt.Errorf("upsert acceptor: %w", err)
	}

	a, err := s.store.CreateAcceptance(ctx, wagerID, acceptor, p.Amount)
	if err != nil {
		return nil, err
	}

	s.log.Info("wager accepted",
		zap.String("wagerId", wagerID),
		zap.Float64("amount", p.Amount),
	)

	return a, nil
}

// WagerDetails retorna a aposta com o nome do criador e o resultado, se houver
func (s *Service) WagerDetails(ctx context.Context, wagerID string) (*domain.WagerWithCreator, *domain.Result, error) {
	w, err := s.store.GetWagerWithCreator(ctx, wagerID)
	if err != nil {
		return nil, nil, fmt.Errorf("load wager: %w", err)
	}
	if w == nil {
		return nil, nil, domain.E(domain.KindNotFound, "wager not found")
	}

	r, err := s.store.GetResult(ctx, wagerID)
	if err != nil {
		return nil, nil, fmt.Errorf("load result: %w", err)
	}
	return w, r, nil
}

// MyWagers retorna as apostas criadas e aceitas por uma identidade, cada uma
// com seu resultado (e, para criadas, a lista de aceites)
func (s *Service) MyWagers(ctx context.Context, rawIdentity string) ([]domain.CreatedWagerView, []domain.AcceptedWagerView, error) {
	ident, err := identity.Normalize(rawIdentity)
	if err != nil {
		return nil, nil, domain.E(domain.KindValidation, "invalid phone number")
	}

	wagers, err := s.store.ListWagersCreatedBy(ctx, ident)
	if err != nil {
		return nil, nil, fmt.Errorf("list created: %w", err)
	}

	created := make([]domain.CreatedWagerView, 0, len(wagers))
	for _, w := range wagers {
		view := domain.CreatedWagerView{Wager: w}
		if w.Status == domain.StatusSettled {
			if view.Result, err = s.store.GetResult(ctx, w.ID); err != nil {
				return nil, nil, fmt.Errorf("load result: %w", err)
			}
		}
		if view.Acceptances, err = s.store.ListAcceptancesWithUsers(ctx, w.ID); err != nil {
			return nil, nil, fmt.Errorf("load acceptances: %w", err)
		}
		created = append(created, view)
	}

	acceptedWagers, err := s.store.ListWagersAcceptedBy(ctx, ident)
	if err != nil {
		return nil, nil, fmt.Errorf("list accepted: %w", err)
	}

	accepted := make([]domain.AcceptedWagerView, 0, len(acceptedWagers))
	for _, aw := range acceptedWagers {
		view := domain.AcceptedWagerView{Acceptance: aw.Acceptance, Wager: aw.Wager}
		if aw.Wager.Status == domain.StatusSettled {
			if view.Result, err = s.store.GetResult(ctx, aw.Wager.ID); err != nil {
				return nil, nil, fmt.Errorf("load result: %w", err)
			}
		}
		accepted = append(accepted, view)
	}

	return created, accepted, nil
}
