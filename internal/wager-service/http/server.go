package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/joewaltman/sidebet/internal/identity"
	"github.com/joewaltman/sidebet/internal/schedule"
	"github.com/joewaltman/sidebet/internal/wager-service/domain"
	"github.com/joewaltman/sidebet/internal/wager-service/dto"
	"github.com/joewaltman/sidebet/internal/wager-service/ledger"
	"github.com/joewaltman/sidebet/internal/wager-service/settle"
	"github.com/joewaltman/sidebet/pkg/contracts/events"
)

// Publisher emite eventos do ciclo de vida. nil desabilita a publicação.
type Publisher interface {
	PublishWagerCreated(ctx context.Context, e events.WagerCreated) error
	PublishWagerSettled(ctx context.Context, e events.WagerSettled) error
}

// Server expõe a API REST do serviço
type Server struct {
	log     *zap.Logger
	games   *schedule.Service
	ledger  *ledger.Service
	engine  *settle.Engine
	publ    Publisher
	baseURL string
}

func NewServer(log *zap.Logger, games *schedule.Service, lg *ledger.Service, engine *settle.Engine, publ Publisher, baseURL string) *Server {
	return &Server{log: log, games: games, ledger: lg, engine: engine, publ: publ, baseURL: baseURL}
}

// Router monta o roteador com os endpoints públicos
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/v1/games", s.listGames)
	r.Post("/v1/wagers", s.createWager)
	r.Get("/v1/wagers/{id}", s.getWager)
	r.Post("/v1/wagers/{id}/accept", s.acceptWager)
	r.Post("/v1/wagers/{id}/settle", s.settleWager)
	r.Get("/v1/my-wagers", s.myWagers)
	r.Post("/v1/session", s.session)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mapeia a categoria do erro de domínio para o status HTTP
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)

	status := http.StatusBadRequest
	switch kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindInternal:
		status = http.StatusInternalServerError
		s.log.Error("internal failure", zap.Error(err))
	}

	writeJSON(w, status, dto.ErrorResponse{Error: err.Error(), Kind: string(kind)})
}

// listGames retorna os próximos jogos (com spreads quando disponíveis)
func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	league := r.URL.Query().Get("league")
	if league != "" && !schedule.ValidLeague(league) {
		s.writeError(w, domain.E(domain.KindValidation, "unknown league"))
		return
	}

	games, err := s.games.ListUpcoming(r.Context(), league)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]dto.Game, 0, len(games))
	for _, g := range games {
		out = append(out, dto.FromGame(g))
	}
	writeJSON(w, http.StatusOK, dto.ListGamesResponse{Games: out})
}

// createWager abre uma aposta e devolve o link compartilhável
func (s *Server) createWager(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.E(domain.KindValidation, "bad json"))
		return
	}

	wager, err := s.ledger.Open(r.Context(), ledger.OpenParams{
		Identity:     req.Identity,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		GameID:       req.GameID,
		GameName:     req.GameName,
		GameDate:     req.GameDate,
		GameLeague:   req.League,
		ChosenSide:   req.ChosenSide,
		ChosenSideID: req.ChosenSideID,
		Spread:       req.Spread,
		MaxStake:     req.MaxStake,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.publ != nil {
		if err := s.publ.PublishWagerCreated(r.Context(), events.WagerCreated{
			WagerID:         wager.ID,
			CreatorIdentity: wager.CreatorIdentity,
			GameID:          wager.GameID,
			League:          wager.GameLeague,
			ChosenSideID:    wager.ChosenSideID,
			Spread:          wager.Spread,
			MaxStake:        wager.MaxStake,
		}); err != nil {
			s.log.Warn("publish wager_created failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, dto.CreateWagerResponse{
		WagerID:   wager.ID,
		ShareLink: s.baseURL + "/bet/" + wager.ID,
	})
}

// getWager retorna a aposta com o criador e o resultado, se já liquidada
func (s *Server) getWager(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	wager, result, err := s.ledger.WagerDetails(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.GetWagerResponse{
		Wager:  dto.FromWagerWithCreator(*wager),
		Result: dto.FromResult(result),
	})
}

// acceptWager registra o aceite de uma contraparte
func (s *Server) acceptWager(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.AcceptWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.E(domain.KindValidation, "bad json"))
		return
	}

	a, err := s.ledger.Accept(r.Context(), id, ledger.AcceptParams{
		Identity:  req.Identity,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Amount:    req.Amount,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AcceptWagerResponse{
		Success:    true,
		Acceptance: dto.FromAcceptance(*a),
	})
}

// settleWager dispara a liquidação; chamadas repetidas devolvem o mesmo
// resultado e a mesma lista de IOUs
func (s *Server) settleWager(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := s.engine.Settle(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !st.AlreadySettled && s.publ != nil {
		ev := events.WagerSettled{
			WagerID:   id,
			GameID:    st.Wager.GameID,
			Outcome:   string(st.Outcome),
			HomeScore: st.Result.HomeScore,
			AwayScore: st.Result.AwayScore,
		}
		if st.Result.WinningSideID != nil {
			ev.WinningSideID = *st.Result.WinningSideID
		}
		if err := s.publ.PublishWagerSettled(r.Context(), ev); err != nil {
			s.log.Warn("publish wager_settled failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, dto.SettleWagerResponse{
		Result:  dto.FromResult(st.Result),
		Outcome: string(st.Outcome),
		IOUs:    st.IOUs,
		Message: settleMessage(st),
	})
}

func settleMessage(st *settle.Settlement) string {
	if st.AlreadySettled {
		return "Wager already settled"
	}
	switch st.Outcome {
	case domain.OutcomeWin:
		return "Creator won!"
	case domain.OutcomeLoss:
		return "Acceptors won!"
	default:
		return "Push - exact spread, no winner"
	}
}

// myWagers retorna as apostas criadas e aceitas pela identidade
func (s *Server) myWagers(w http.ResponseWriter, r *http.Request) {
	ident := r.URL.Query().Get("identity")
	if ident == "" {
		s.writeError(w, domain.E(domain.KindValidation, "identity is required"))
		return
	}

	created, accepted, err := s.ledger.MyWagers(r.Context(), ident)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := dto.MyWagersResponse{
		Created:  make([]dto.CreatedWager, 0, len(created)),
		Accepted: make([]dto.AcceptedWager, 0, len(accepted)),
	}
	for _, v := range created {
		cw := dto.CreatedWager{
			Wager:       dto.FromWager(v.Wager),
			Result:      dto.FromResult(v.Result),
			Acceptances: make([]dto.Acceptance, 0, len(v.Acceptances)),
		}
		for _, a := range v.Acceptances {
			cw.Acceptances = append(cw.Acceptances, dto.FromAcceptanceWithUser(a))
		}
		resp.Created = append(resp.Created, cw)
	}
	for _, v := range accepted {
		resp.Accepted = append(resp.Accepted, dto.AcceptedWager{
			Acceptance: dto.FromAcceptance(v.Acceptance),
			Wager:      dto.FromWager(v.Wager),
			Result:     dto.FromResult(v.Result),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// session normaliza a identidade informada (não persiste nada)
func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	var req dto.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.E(domain.KindValidation, "bad json"))
		return
	}
	if req.PhoneNumber == "" || req.FirstName == "" || req.LastName == "" {
		s.writeError(w, domain.E(domain.KindValidation, "missing required fields"))
		return
	}

	normalized, err := identity.Normalize(req.PhoneNumber)
	if err != nil {
		s.writeError(w, domain.E(domain.KindValidation, "invalid phone number"))
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		NormalizedIdentity: normalized,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
	})
}
