package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joewaltman/sidebet/internal/wager-service/domain"
)

// Postgres implementa a persistência do ledger de apostas.
// As invariantes de unicidade (um aceite por (wager, acceptor), um resultado
// por wager) são garantidas por constraints no banco, não por check-then-insert
// na aplicação.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const pqUniqueViolation = "23505"

// UpsertUser cria ou atualiza o nome de exibição de uma identidade
func (p *Postgres) UpsertUser(ctx context.Context, identity, firstName, lastName string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (identity, first_name, last_name)
		VALUES ($1,$2,$3)
		ON CONFLICT (identity) DO UPDATE SET first_name=$2, last_name=$3`,
		identity, firstName, lastName,
	)
	return err
}

// GetUser retorna nil quando a identidade não existe
func (p *Postgres) GetUser(ctx context.Context, identity string) (*domain.User, error) {
	var u domain.User
	err := p.db.QueryRowContext(ctx, `
		SELECT identity, first_name, last_name, created_at
		FROM users WHERE identity=$1`, identity,
	).Scan(&u.Identity, &u.FirstName, &u.LastName, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateWager insere uma nova aposta com status open e id gerado
func (p *Postgres) CreateWager(ctx context.Context, w *domain.Wager) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO wagers (id, creator_identity, game_id, game_name, game_date, game_league,
			chosen_side, chosen_side_id, spread, max_stake, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'open')`,
		id, w.CreatorIdentity, w.GameID, w.GameName, w.GameDate, w.GameLeague,
		w.ChosenSide, w.ChosenSideID, w.Spread, w.MaxStake,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

const wagerColumns = `id, creator_identity, game_id, game_name, game_date, game_league,
	chosen_side, chosen_side_id, spread, max_stake, status, created_at`

func scanWager(row interface{ Scan(...any) error }, w *domain.Wager) error {
	return row.Scan(&w.ID, &w.CreatorIdentity, &w.GameID, &w.GameName, &w.GameDate, &w.GameLeague,
		&w.ChosenSide, &w.ChosenSideID, &w.Spread, &w.MaxStake, &w.Status, &w.CreatedAt)
}

// GetWager retorna nil quando a aposta não existe
func (p *Postgres) GetWager(ctx context.Context, wagerID string) (*domain.Wager, error) {
	var w domain.Wager
	err := scanWager(p.db.QueryRowContext(ctx,
		`SELECT `+wagerColumns+` FROM wagers WHERE id=$1`, wagerID), &w)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWagerWithCreator junta a aposta com o nome do criador
func (p *Postgres) GetWagerWithCreator(ctx context.Context, wagerID string) (*domain.WagerWithCreator, error) {
	var w domain.WagerWithCreator
	err := p.db.QueryRowContext(ctx, `
		SELECT w.id, w.creator_identity, w.game_id, w.game_name, w.game_date, w.game_league,
			w.chosen_side, w.chosen_side_id, w.spread, w.max_stake, w.status, w.created_at,
			u.first_name, u.last_name
		FROM wagers w
		JOIN users u ON w.creator_identity = u.identity
		WHERE w.id=$1`, wagerID,
	).Scan(&w.ID, &w.CreatorIdentity, &w.GameID, &w.GameName, &w.GameDate, &w.GameLeague,
		&w.ChosenSide, &w.ChosenSideID, &w.Spread, &w.MaxStake, &w.Status, &w.CreatedAt,
		&w.CreatorFirstName, &w.CreatorLastName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateAcceptance insere um aceite. Tentativas concorrentes para o mesmo
// (wager, acceptor) disputam a constraint UNIQUE; a violação vira
// DuplicateAcceptance aqui.
func (p *Postgres) CreateAcceptance(ctx context.Context, wagerID, acceptorIdentity string, amount float64) (*domain.Acceptance, error) {
	a := domain.Acceptance{
		WagerID:          wagerID,
		AcceptorIdentity: acceptorIdentity,
		Amount:           amount,
	}
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO acceptances (wager_id, acceptor_identity, amount)
		VALUES ($1,$2,$3)
		RETURNING id, accepted_at`,
		wagerID, acceptorIdentity, amount,
	).Scan(&a.ID, &a.AcceptedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return nil, domain.E(domain.KindDuplicateAcceptance, "you have already accepted this wager")
		}
		return nil, err
	}
	return &a, nil
}

// ListAcceptancesWithUsers retorna os aceites de uma aposta com os nomes
// dos aceitantes, na ordem de aceite
func (p *Postgres) ListAcceptancesWithUsers(ctx context.Context, wagerID string) ([]domain.AcceptanceWithUser, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT a.id, a.wager_id, a.acceptor_identity, a.amount, a.accepted_at,
			u.first_name, u.last_name
		FROM acceptances a
		JOIN users u ON a.acceptor_identity = u.identity
		WHERE a.wager_id=$1
		ORDER BY a.accepted_at`, wagerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AcceptanceWithUser
	for rows.Next() {
		var a domain.AcceptanceWithUser
		if err := rows.Scan(&a.ID, &a.WagerID, &a.AcceptorIdentity, &a.Amount, &a.AcceptedAt,
			&a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetResult retorna nil quando a aposta ainda não tem resultado
func (p *Postgres) GetResult(ctx context.Context, wagerID string) (*domain.Result, error) {
	var r domain.Result
	err := p.db.QueryRowContext(ctx, `
		SELECT id, wager_id, winning_side_id, home_score, away_score, settled_at
		FROM results WHERE wager_id=$1`, wagerID,
	).Scan(&r.ID, &r.WagerID, &r.WinningSideID, &r.HomeScore, &r.AwayScore, &r.SettledAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SettleWager grava o resultado e marca a aposta como settled numa única
// transação. O lock na linha da aposta serializa liquidações concorrentes:
// quem perde a corrida enxerga o resultado já gravado e o recebe de volta
// com inserted=false, sem erro.
func (p *Postgres) SettleWager(ctx context.Context, wagerID string, winningSideID *string, homeScore, awayScore int) (*domain.Result, bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var id string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM wagers WHERE id=$1 FOR UPDATE`, wagerID).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, domain.E(domain.KindNotFound, "wager not found")
		}
		return nil, false, err
	}

	var existing domain.Result
	err = tx.QueryRowContext(ctx, `
		SELECT id, wager_id, winning_side_id, home_score, away_score, settled_at
		FROM results WHERE wager_id=$1`, wagerID,
	).Scan(&existing.ID, &existing.WagerID, &existing.WinningSideID,
		&existing.HomeScore, &existing.AwayScore, &existing.SettledAt)
	if err == nil {
		return &existing, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	r := domain.Result{
		WagerID:       wagerID,
		WinningSideID: winningSideID,
		HomeScore:     homeScore,
		AwayScore:     awayScore,
	}
	if err = tx.QueryRowContext(ctx, `
		INSERT INTO results (wager_id, winning_side_id, home_score, away_score)
		VALUES ($1,$2,$3,$4)
		RETURNING id, settled_at`,
		wagerID, winningSideID, homeScore, awayScore,
	).Scan(&r.ID, &r.SettledAt); err != nil {
		return nil, false, fmt.Errorf("insert result: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wagers SET status='settled' WHERE id=$1`, wagerID); err != nil {
		return nil, false, fmt.Errorf("mark settled: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, false, err
	}
	return &r, true, nil
}

// ListWagersCreatedBy retorna as apostas criadas pela identidade,
// mais recentes primeiro
func (p *Postgres) ListWagersCreatedBy(ctx context.Context, identity string) ([]domain.Wager, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+wagerColumns+` FROM wagers WHERE creator_identity=$1 ORDER BY created_at DESC`, identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Wager
	for rows.Next() {
		var w domain.Wager
		if err := scanWager(rows, &w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ListWagersAcceptedBy retorna os aceites da identidade junto com a aposta,
// mais recentes primeiro
func (p *Postgres) ListWagersAcceptedBy(ctx context.Context, identity string) ([]domain.AcceptedWager, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT a.id, a.wager_id, a.acceptor_identity, a.amount, a.accepted_at,
			w.id, w.creator_identity, w.game_id, w.game_name, w.game_date, w.game_league,
			w.chosen_side, w.chosen_side_id, w.spread, w.max_stake, w.status, w.created_at
		FROM acceptances a
		JOIN wagers w ON a.wager_id = w.id
		WHERE a.acceptor_identity=$1
		ORDER BY a.accepted_at DESC`, identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AcceptedWager
	for rows.Next() {
		var aw domain.AcceptedWager
		if err := rows.Scan(&aw.Acceptance.ID, &aw.Acceptance.WagerID, &aw.Acceptance.AcceptorIdentity,
			&aw.Acceptance.Amount, &aw.Acceptance.AcceptedAt,
			&aw.Wager.ID, &aw.Wager.CreatorIdentity, &aw.Wager.GameID, &aw.Wager.GameName,
			&aw.Wager.GameDate, &aw.Wager.GameLeague, &aw.Wager.ChosenSide, &aw.Wager.ChosenSideID,
			&aw.Wager.Spread, &aw.Wager.MaxStake, &aw.Wager.Status, &aw.Wager.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, aw)
	}
	return out, rows.Err()
}
