package settle

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/joewaltman/sidebet/internal/schedule"
	"github.com/joewaltman/sidebet/internal/wager-service/domain"
)

type fakeStore struct {
	wagers      map[string]*domain.Wager
	results     map[string]*domain.Result
	users       map[string]*domain.User
	acceptances map[string][]domain.AcceptanceWithUser

	nextResultID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		wagers:      map[string]*domain.Wager{},
		results:     map[string]*domain.Result{},
		users:       map[string]*domain.User{},
		acceptances: map[string][]domain.AcceptanceWithUser{},
	}
}

func (f *fakeStore) GetWager(_ context.Context, wagerID string) (*domain.Wager, error) {
	return f.wagers[wagerID], nil
}

func (f *fakeStore) GetResult(_ context.Context, wagerID string) (*domain.Result, error) {
	return f.results[wagerID], nil
}

func (f *fakeStore) GetUser(_ context.Context, identity string) (*domain.User, error) {
	return f.users[identity], nil
}

func (f *fakeStore) ListAcceptancesWithUsers(_ context.Context, wagerID string) ([]domain.AcceptanceWithUser, error) {
	return f.acceptances[wagerID], nil
}

func (f *fakeStore) SettleWager(_ context.Context, wagerID string, winningSideID *string, homeScore, awayScore int) (*domain.Result, bool, error) {
	if existing, ok := f.results[wagerID]; ok {
		return existing, false, nil
	}
	f.nextResultID++
	res := &domain.Result{
		ID:            f.nextResultID,
		WagerID:       wagerID,
		WinningSideID: winningSideID,
		HomeScore:     homeScore,
		AwayScore:     awayScore,
		SettledAt:     time.Now(),
	}
	f.results[wagerID] = res
	if w, ok := f.wagers[wagerID]; ok {
		w.Status = domain.StatusSettled
	}
	return res, true, nil
}

type fakeResolver struct {
	games map[string]*schedule.Game
}

func (f *fakeResolver) Resolve(_ context.Context, gameID, _ string) (*schedule.Game, error) {
	return f.games[gameID], nil
}

func intPtr(n int) *int { return &n }

func finishedGame(home, away int) *schedule.Game {
	return &schedule.Game{
		ID:     "game-1",
		League: schedule.LeagueNFL,
		Status: "status_final",
		HomeTeam: schedule.Team{
			ID: "home-1", Name: "Kansas City Chiefs", Score: intPtr(home),
		},
		AwayTeam: schedule.Team{
			ID: "away-1", Name: "Buffalo Bills", Score: intPtr(away),
		},
	}
}

func seedWager(f *fakeStore, chosenSideID string, spread float64) *domain.Wager {
	w := &domain.Wager{
		ID:              "wager-1",
		CreatorIdentity: "+12025550100",
		GameID:          "game-1",
		GameName:        "Chiefs vs Bills",
		GameLeague:      schedule.LeagueNFL,
		ChosenSide:      "Kansas City Chiefs",
		ChosenSideID:    chosenSideID,
		Spread:          spread,
		MaxStake:        100,
		Status:          domain.StatusOpen,
	}
	f.wagers[w.ID] = w
	f.users[w.CreatorIdentity] = &domain.User{
		Identity: w.CreatorIdentity, FirstName: "Joe", LastName: "Creator",
	}
	return w
}

func addAcceptance(f *fakeStore, wagerID, identity, first, last string, amount float64) {
	f.users[identity] = &domain.User{Identity: identity, FirstName: first, LastName: last}
	f.acceptances[wagerID] = append(f.acceptances[wagerID], domain.AcceptanceWithUser{
		Acceptance: domain.Acceptance{
			ID:               int64(len(f.acceptances[wagerID]) + 1),
			WagerID:          wagerID,
			AcceptorIdentity: identity,
			Amount:           amount,
			AcceptedAt:       time.Now(),
		},
		FirstName: first,
		LastName:  last,
	})
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		home, away   int
		chosenSideID string
		spread       float64
		want         domain.Outcome
	}{
		// favorito vence por 7 contra spread -6.5 / -7 / -7.5
		{"favorite covers", 24, 17, "home-1", -6.5, domain.OutcomeWin},
		{"favorite pushes", 24, 17, "home-1", -7, domain.OutcomePush},
		{"favorite falls short", 24, 17, "home-1", -7.5, domain.OutcomeLoss},

		{"underdog covers with cushion", 17, 24, "home-1", 7.5, domain.OutcomeWin},
		{"underdog loses outright beyond spread", 17, 28, "home-1", 7.5, domain.OutcomeLoss},
		{"away side covers", 20, 27, "away-1", -3.5, domain.OutcomeWin},
		{"pick em tie is a push", 21, 21, "home-1", 0, domain.OutcomePush},
		{"zero-zero final is a valid push", 0, 0, "home-1", 0, domain.OutcomePush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(finishedGame(tt.home, tt.away), tt.chosenSideID, tt.spread)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Decide(%d-%d, side=%s, spread=%v) = %s, want %s",
					tt.home, tt.away, tt.chosenSideID, tt.spread, got, tt.want)
			}
		})
	}
}

func TestDecideMissingScores(t *testing.T) {
	g := finishedGame(24, 17)
	g.HomeTeam.Score = nil

	_, err := Decide(g, "home-1", -6.5)
	if domain.KindOf(err) != domain.KindGameNotFinished {
		t.Errorf("expected GAME_NOT_FINISHED, got %v", err)
	}
}

func TestSettleWin(t *testing.T) {
	store := newFakeStore()
	seedWager(store, "home-1", -6.5)
	addAcceptance(store, "wager-1", "+12025550101", "Ann", "Acceptor", 50)
	addAcceptance(store, "wager-1", "+12025550102", "Bob", "Backer", 25)

	eng := NewEngine(zap.NewNop(), store, &fakeResolver{games: map[string]*schedule.Game{
		"game-1": finishedGame(24, 17),
	}})

	st, err := eng.Settle(context.Background(), "wager-1")
	if err != nil {
		t.Fatal(err)
	}

	if st.AlreadySettled {
		t.Error("first settle must not report already settled")
	}
	if st.Outcome != domain.OutcomeWin {
		t.Fatalf("outcome = %s, want win", st.Outcome)
	}
	if st.Result.WinningSideID == nil || *st.Result.WinningSideID != "home-1" {
		t.Errorf("winning side = %v, want home-1", st.Result.WinningSideID)
	}
	if st.Result.HomeScore != 24 || st.Result.AwayScore != 17 {
		t.Errorf("scores = %d-%d, want 24-17", st.Result.HomeScore, st.Result.AwayScore)
	}

	// aceitantes devem ao criador, em ordem de aceite
	if len(st.IOUs) != 2 {
		t.Fatalf("expected 2 ious, got %d", len(st.IOUs))
	}
	want := []domain.IOU{
		{Debtor: "Ann Acceptor", Creditor: "Joe Creator", Amount: 50},
		{Debtor: "Bob Backer", Creditor: "Joe Creator", Amount: 25},
	}
	for i, iou := range st.IOUs {
		if iou != want[i] {
			t.Errorf("iou[%d] = %+v, want %+v", i, iou, want[i])
		}
	}

	if store.wagers["wager-1"].Status != domain.StatusSettled {
		t.Error("wager should be settled after the first settle")
	}
}

func TestSettleLossFlipsIOUs(t *testing.T) {
	store := newFakeStore()
	seedWager(store, "home-1", -7.5)
	addAcceptance(store, "wager-1", "+12025550101", "Ann", "Acceptor", 50)

	eng := NewEngine(zap.NewNop(), store, &fakeResolver{games: map[string]*schedule.Game{
		"game-1": finishedGame(24, 17),
	}})

	st, err := eng.Settle(context.Background(), "wager-1")
	if err != nil {
		t.Fatal(err)
	}

	if st.Outcome != domain.OutcomeLoss {
		t.Fatalf("outcome = %s, want loss", st.Outcome)
	}
	if st.Result.WinningSideID == nil || *st.Result.WinningSideID != "away-1" {
		t.Errorf("winning side = %v, want away-1", st.Result.WinningSideID)
	}
	if len(st.IOUs) != 1 {
		t.Fatalf("expected 1 iou, got %d", len(st.IOUs))
	}
	if st.IOUs[0].Debtor != "Joe Creator" || st.IOUs[0].Creditor != "Ann Acceptor" {
		t.Errorf("loss iou = %+v, want creator owing acceptor", st.IOUs[0])
	}
}

func TestSettlePushHasNoIOUs(t *testing.T) {
	store := newFakeStore()
	seedWager(store, "home-1", -7)
	addAcceptance(store, "wager-1", "+12025550101", "Ann", "Acceptor", 50)

	eng := NewEngine(zap.NewNop(), store, &fakeResolver{games: map[string]*schedule.Game{
		"game-1": finishedGame(24, 17),
	}})

	st, err := eng.Settle(context.Background(), "wager-1")
	if err != nil {
		t.Fatal(err)
	}

	if st.Outcome != domain.OutcomePush {
		t.Fatalf("outcome = %s, want push", st.Outcome)
	}
	if st.Result.WinningSideID != nil {
		t.Errorf("push must persist a nil winning side, got %q", *st.Result.WinningSideID)
	}
	if len(st.IOUs) != 0 {
		t.Errorf("push must not produce ious, got %d", len(st.IOUs))
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	store := newFakeStore()
	seedWager(store, "home-1", -6.5)
	addAcceptance(store, "wager-1", "+12025550101", "Ann", "Acceptor", 50)

	eng := NewEngine(zap.NewNop(), store, &fakeResolver{games: map[string]*schedule.Game{
		"game-1": finishedGame(24, 17),
	}})
	ctx := context.Background()

	first, err := eng.Settle(ctx, "wager-1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Settle(ctx, "wager-1")
	if err != nil {
		t.Fatal(err)
	}

	if !second.AlreadySettled {
		t.Error("second settle must report already settled")
	}
	if second.Result.ID != first.Result.ID {
		t.Errorf("result id changed between settles: %d vs %d", first.Result.ID, second.Result.ID)
	}
	if second.Outcome != first.Outcome {
		t.Errorf("outcome changed between settles: %s vs %s", first.Outcome, second.Outcome)
	}
	if len(second.IOUs) != len(first.IOUs) {
		t.Fatalf("iou count changed between settles: %d vs %d", len(first.IOUs), len(second.IOUs))
	}
	for i := range second.IOUs {
		if second.IOUs[i] != first.IOUs[i] {
			t.Errorf("iou[%d] changed between settles: %+v vs %+v", i, first.IOUs[i], second.IOUs[i])
		}
	}
}

func TestSettleRaceLoserGetsWinnersResult(t *testing.T) {
	store := newFakeStore()
	seedWager(store, "home-1", -6.5)

	// outra chamada já inseriu o resultado entre o GetResult e o SettleWager
	winningSide := "home-1"
	existing := &domain.Result{
		ID: 7, WagerID: "wager-1", WinningSideID: &winningSide,
		HomeScore: 24, AwayScore: 17, SettledAt: time.Now(),
	}
	raced := &racingStore{fakeStore: store, existing: existing}

	eng := NewEngine(zap.NewNop(), raced, &fakeResolver{games: map[string]*schedule.Game{
		"game-1": finishedGame(24, 17),
	}})

	st, err := eng.Settle(context.Background(), "wager-1")
	if err != nil {
		t.Fatal(err)
	}
	if !st.AlreadySettled {
		t.Error("race loser must report already settled")
	}
	if st.Result.ID != 7 {
		t.Errorf("race loser got result id %d, want the winner's 7", st.Result.ID)
	}
}

// racingStore simula o concorrente que grava o resultado primeiro: o
// atalho de GetResult ainda vê nada, mas o insert perde a corrida.
type racingStore struct {
	*fakeStore
	existing *domain.Result
}

func (r *racingStore) GetResult(_ context.Context, _ string) (*domain.Result, error) {
	return nil, nil
}

func (r *racingStore) SettleWager(_ context.Context, _ string, _ *string, _, _ int) (*domain.Result, bool, error) {
	return r.existing, false, nil
}

func TestSettleWagerNotFound(t *testing.T) {
	eng := NewEngine(zap.NewNop(), newFakeStore(), &fakeResolver{games: map[string]*schedule.Game{}})

	_, err := eng.Settle(context.Background(), "missing")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestSettleGameMissingKeepsWagerOpen(t *testing.T) {
	store := newFakeStore()
	seedWager(store, "home-1", -6.5)

	eng := NewEngine(zap.NewNop(), store, &fakeResolver{games: map[string]*schedule.Game{}})

	_, err := eng.Settle(context.Background(), "wager-1")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	if store.wagers["wager-1"].Status != domain.StatusOpen {
		t.Error("wager must stay open when the game cannot be resolved")
	}
}

func TestSettleGameNotFinished(t *testing.T) {
	store := newFakeStore()
	seedWager(store, "home-1", -6.5)

	g := finishedGame(0, 0)
	g.Status = "in"
	g.HomeTeam.Score = nil
	g.AwayTeam.Score = nil

	eng := NewEngine(zap.NewNop(), store, &fakeResolver{games: map[string]*schedule.Game{"game-1": g}})

	_, err := eng.Settle(context.Background(), "wager-1")
	if domain.KindOf(err) != domain.KindGameNotFinished {
		t.Errorf("expected GAME_NOT_FINISHED, got %v", err)
	}
	if store.wagers["wager-1"].Status != domain.StatusOpen {
		t.Error("wager must stay open until the game completes")
	}
}

func TestOutcomeFromResult(t *testing.T) {
	w := &domain.Wager{ChosenSideID: "home-1"}
	home, away := "home-1", "away-1"

	tests := []struct {
		name    string
		winning *string
		want    domain.Outcome
	}{
		{"chosen side won", &home, domain.OutcomeWin},
		{"other side won", &away, domain.OutcomeLoss},
		{"nil winning side is push", nil, domain.OutcomePush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutcomeFromResult(w, &domain.Result{WinningSideID: tt.winning}); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
