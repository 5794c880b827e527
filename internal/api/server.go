package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cashbot/internal/auth"
	"cashbot/internal/config"
	"cashbot/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const userContextKey contextKey = "user"

// UserHeader names the account the authenticated caller acts for.
const UserHeader = "X-User-ID"

type UserContext struct {
	UserID string
}

type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	auth *auth.TokenVerifier
	game *game.Service
	mux  *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, verifier *auth.TokenVerifier, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		auth: verifier,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.requestLog)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/me", s.handleMe)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Post("/bank/deposit", s.handleDeposit)
		r.Post("/bank/withdraw", s.handleWithdraw)
		r.Post("/pay", s.handlePay)

		r.Post("/earn/work", s.handleEarn(s.game.Work))
		r.Post("/earn/crime", s.handleEarn(s.game.Crime))
		r.Post("/earn/hustle", s.handleEarn(s.game.Hustle))
		r.Get("/cooldowns", s.handleCooldowns)

		r.Post("/rob", s.handleRob)
		r.Get("/robberies", s.handleRobberies)

		r.Post("/games/roulette", s.handleRoulette)
		r.Post("/games/dice", s.handleDice)

		r.Post("/blackjack", s.handleBlackjackStart)
		r.Get("/blackjack/{id}", s.handleBlackjackState)
		r.Post("/blackjack/{id}/hit", s.handleBlackjackHit)
		r.Post("/blackjack/{id}/stand", s.handleBlackjackStand)

		r.Post("/rps", s.handleDuelChallenge)
		r.Get("/rps/{id}", s.handleDuelState)
		r.Post("/rps/{id}/accept", s.handleDuelAccept)
		r.Post("/rps/{id}/decline", s.handleDuelDecline)
		r.Post("/rps/{id}/choose", s.handleDuelChoose)

		r.Get("/lottery", s.handleLotteryStatus)
		r.Get("/lottery/tickets", s.handleMyTickets)
		r.Post("/lottery/tickets", s.handleBuyTickets)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.auth.Authenticate(bearerToken(r.Header.Get("Authorization")), r.Header.Get(UserHeader))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, UserContext{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func userFromContext(ctx context.Context) (UserContext, error) {
	user, ok := ctx.Value(userContextKey).(UserContext)
	if !ok || user.UserID == "" {
		return UserContext{}, errors.New("missing user context")
	}
	return user, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	blackjack, duels := s.game.ActiveSessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"sessions": map[string]int{"blackjack": blackjack, "rps": duels},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	out, err := s.game.Money(r.Context(), user.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	out, err := s.game.Leaderboard(r.Context(), pageParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type amountRequest struct {
	Amount json.RawMessage `json:"amount"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleBankMove(w, r, s.game.Deposit)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleBankMove(w, r, s.game.Withdraw)
}

func (s *Server) handleBankMove(w http.ResponseWriter, r *http.Request, move func(context.Context, string, game.Amount) (game.Account, error)) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in amountRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	amt, err := parseAmount(in.Amount, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	acct, err := move(r.Context(), user.UserID, amt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		To     string          `json:"to"`
		Amount json.RawMessage `json:"amount"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	to, err := auth.UserID(in.To)
	if err != nil {
		writeDomainError(w, game.ErrInvalidTarget)
		return
	}
	amt, err := parseAmount(in.Amount, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out, err := s.game.Pay(r.Context(), user.UserID, to, amt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEarn(action func(context.Context, string) (game.EarningResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := userFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		out, err := action(r.Context(), user.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleCooldowns(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	out := make(map[string]int64, 2)
	for _, kind := range []game.CooldownKind{game.CooldownWork, game.CooldownCrime} {
		left, err := s.game.Cooldown(r.Context(), user.UserID, kind)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out[string(kind)] = secondsCeil(left)
	}
	writeJSON(w, http.StatusOK, map[string]any{"remaining_seconds": out})
}

func (s *Server) handleRob(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		Target string `json:"target"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	target, err := auth.UserID(in.Target)
	if err != nil {
		writeDomainError(w, game.ErrInvalidTarget)
		return
	}
	out, err := s.game.Rob(r.Context(), user.UserID, target)
	if errors.Is(err, game.ErrNothingToSteal) {
		// The failed attempt is still recorded, so the result is returned too.
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "result": out})
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRobberies(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	out, err := s.game.Robberies(r.Context(), user.UserID, pageParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRoulette(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		Amount json.RawMessage `json:"amount"`
		Bet    string          `json:"bet"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	amt, err := parseAmount(in.Amount, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	bet, err := game.ParseRouletteBet(in.Bet)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out, err := s.game.PlayRoulette(r.Context(), user.UserID, amt, bet)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDice(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		Amount json.RawMessage `json:"amount"`
		Number int             `json:"number"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	amt, err := parseAmount(in.Amount, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out, err := s.game.PlayDice(r.Context(), user.UserID, amt, in.Number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBlackjackStart(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in amountRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	amt, err := parseAmount(in.Amount, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out, err := s.game.StartBlackjack(r.Context(), user.UserID, amt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleBlackjackState(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	out, err := s.game.BlackjackRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if out.Owner != user.UserID {
		writeDomainError(w, game.ErrNotYourGame)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBlackjackHit(w http.ResponseWriter, r *http.Request) {
	s.handleBlackjackAction(w, r, s.game.Hit)
}

func (s *Server) handleBlackjackStand(w http.ResponseWriter, r *http.Request) {
	s.handleBlackjackAction(w, r, s.game.Stand)
}

func (s *Server) handleBlackjackAction(w http.ResponseWriter, r *http.Request, act func(context.Context, string, string) (game.BlackjackView, error)) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	out, err := act(r.Context(), chi.URLParam(r, "id"), user.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDuelChallenge(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		Opponent string          `json:"opponent"`
		Amount   json.RawMessage `json:"amount,omitempty"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	opponent, err := auth.UserID(in.Opponent)
	if err != nil {
		writeDomainError(w, game.ErrInvalidTarget)
		return
	}
	amt, err := parseAmount(in.Amount, true)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out, err := s.game.Challenge(r.Context(), user.UserID, opponent, amt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleDuelState(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	out, err := s.game.DuelState(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if out.Challenger != user.UserID && out.Opponent != user.UserID {
		writeDomainError(w, game.ErrNotYourGame)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDuelAccept(w http.ResponseWriter, r *http.Request) {
	s.handleDuelAction(w, r, s.game.Accept)
}

func (s *Server) handleDuelDecline(w http.ResponseWriter, r *http.Request) {
	s.handleDuelAction(w, r, s.game.Decline)
}

func (s *Server) handleDuelAction(w http.ResponseWriter, r *http.Request, act func(context.Context, string, string) (game.DuelView, error)) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	out, err := act(r.Context(), chi.URLParam(r, "id"), user.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDuelChoose(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		Hand string `json:"hand"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	hand, err := game.ParseHand(in.Hand)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out, err := s.game.Choose(r.Context(), chi.URLParam(r, "id"), user.UserID, hand)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLotteryStatus(w http.ResponseWriter, r *http.Request) {
	out, err := s.game.LotteryStatus(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             out,
		"next_draw_in_human": out.NextDrawIn.Round(time.Second).String(),
	})
}

func (s *Server) handleMyTickets(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	tickets, err := s.game.MyTickets(r.Context(), user.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if tickets == nil {
		tickets = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tickets": tickets})
}

func (s *Server) handleBuyTickets(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		Count int `json:"count"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := s.game.BuyTickets(r.Context(), user.UserID, in.Count)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// parseAmount accepts either a JSON number or a string such as "all" or
// "1,500". An absent amount is only valid when zeroOK is set.
func parseAmount(raw json.RawMessage, zeroOK bool) (game.Amount, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		if zeroOK {
			return game.Amount{}, nil
		}
		return game.Amount{}, game.ErrInvalidAmount
	}
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return game.Amount{}, game.ErrInvalidAmount
		}
	}
	if zeroOK && strings.TrimSpace(text) == "0" {
		return game.Amount{}, nil
	}
	return game.ParseAmount(text)
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func secondsCeil(d time.Duration) int64 {
	return int64(math.Ceil(d.Seconds()))
}

func writeDomainError(w http.ResponseWriter, err error) {
	var cooldown *game.CooldownError
	switch {
	case errors.As(err, &cooldown):
		retry := secondsCeil(cooldown.Remaining)
		w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":               err.Error(),
			"kind":                cooldown.Kind,
			"retry_after_seconds": retry,
		})
	case errors.Is(err, game.ErrInvalidAmount), errors.Is(err, game.ErrInvalidChoice), errors.Is(err, game.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, game.ErrNotYourGame):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrSessionEnded), errors.Is(err, game.ErrAlreadyActed),
		errors.Is(err, game.ErrNotAccepted), errors.Is(err, game.ErrNothingToSteal):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
