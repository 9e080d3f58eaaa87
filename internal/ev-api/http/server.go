package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/radieske/sports-ev-scanner/internal/engine/scan"
	"github.com/radieske/sports-ev-scanner/internal/ev-api/dto"
	"github.com/radieske/sports-ev-scanner/internal/ev-api/repo"
	"github.com/radieske/sports-ev-scanner/internal/ev-api/ws"
	"github.com/radieske/sports-ev-scanner/internal/scan-worker/live"
	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// API expõe os endpoints REST de consulta do scanner: ciclo live,
// histórico de oportunidades, estatísticas e registro de apostas.
type API struct {
	ReadRepo         *repo.ReadRepo
	Live             *live.Store
	Hub              *ws.Hub
	StartingBankroll float64
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/opportunities/live", a.liveOpportunities)  // ciclo corrente
	r.Get("/v1/opportunities/history", a.history)         // histórico filtrável
	r.Get("/v1/stats", a.stats)                           // bankroll e performance
	r.Post("/v1/bets", a.placeBet)                        // registra aposta manual
	r.Get("/v1/bets", a.listBets)                         // apostas recentes
	r.Get("/v1/bets/{id}", a.getBet)                      // aposta por id
	r.Get("/ws", a.Hub.HandleWS)                          // stream de ciclos
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// liveOpportunities retorna o ciclo live corrente do Redis; quando o
// Redis não tem o ciclo (expirado ou fora do ar), reconstrói o mais
// recente do Postgres.
func (a *API) liveOpportunities(w http.ResponseWriter, r *http.Request) {
	cycle, ok, err := a.Live.Get(r.Context())
	if err == nil && ok {
		writeJSON(w, http.StatusOK, cycle)
		return
	}

	cycle, ok, err = a.ReadRepo.LatestCycle(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !ok {
		cycle = events.LiveCycle{Opportunities: []events.OpportunityFound{}}
	}
	writeJSON(w, http.StatusOK, cycle)
}

// history retorna oportunidades passadas; ?hours= define a janela (24 por
// padrão) e ?min_ev= o piso de EV%.
func (a *API) history(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}
	minEV := 0.0
	if v := r.URL.Query().Get("min_ev"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			minEV = f
		}
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	opps, err := a.ReadRepo.OpportunityHistory(r.Context(), since, minEV)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if opps == nil {
		opps = []events.OpportunityFound{}
	}
	writeJSON(w, http.StatusOK, opps)
}

// stats retorna bankroll, ROI, win rate e CLV médio
func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	st, err := a.ReadRepo.Stats(r.Context(), a.StartingBankroll)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// placeBet registra uma aposta manual. O EV na colocação é calculado
// contra o benchmark do ciclo live para a mesma proposta; sem benchmark
// live não há como qualificar a aposta e o registro é recusado.
func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	if req.GameID == "" || req.Venue == "" || req.Market == "" || req.Selection == "" ||
		req.Price <= 1.0 || req.Stake <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing or invalid fields"})
		return
	}

	cycle, ok, err := a.Live.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	bench, found := findBenchmark(cycle, req)
	if !ok || !found {
		writeJSON(w, http.StatusUnprocessableEntity,
			map[string]string{"error": "no live benchmark for this proposition"})
		return
	}

	ev := scan.EVPercent(req.Price, bench.FairProbability)
	edge := scan.EdgePercent(req.Price, bench.BenchmarkPrice)

	id := uuid.NewString()
	placedAt := time.Now().UTC()
	if err := a.ReadRepo.InsertBet(r.Context(), id, req, ev, edge, placedAt); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, dto.BetResponse{
		ID:              id,
		GameID:          req.GameID,
		Venue:           req.Venue,
		Market:          req.Market,
		Selection:       req.Selection,
		Point:           req.Point,
		PlayerName:      req.PlayerName,
		Price:           req.Price,
		Stake:           req.Stake,
		EVAtPlacement:   ev,
		EdgeAtPlacement: edge,
		PlacedAt:        placedAt,
		Outcome:         "pending",
	})
}

// getBet retorna uma aposta pelo id
func (a *API) getBet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bet, err := a.ReadRepo.GetBet(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, bet)
}

// listBets retorna as apostas mais recentes
func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	bets, err := a.ReadRepo.ListBets(r.Context(), 100)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if bets == nil {
		bets = []dto.BetResponse{}
	}
	writeJSON(w, http.StatusOK, bets)
}

// findBenchmark localiza no ciclo live uma oportunidade com a mesma
// proposta da aposta (jogo, mercado, seleção, linha exata e jogador),
// independentemente da casa.
func findBenchmark(cycle events.LiveCycle, req dto.PlaceBetRequest) (events.OpportunityFound, bool) {
	for _, o := range cycle.Opportunities {
		if o.EventID != req.GameID || o.Market != req.Market ||
			o.Selection != req.Selection || o.PlayerName != req.PlayerName {
			continue
		}
		if !samePoint(o.Point, req.Point) {
			continue
		}
		return o, true
	}
	return events.OpportunityFound{}, false
}

// Linhas só casam em igualdade exata; 20.5 e 21.0 são propostas distintas
func samePoint(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
