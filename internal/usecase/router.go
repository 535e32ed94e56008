package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rocketscienceinc/chatgames-backend/internal/apperror"
	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
	"github.com/rocketscienceinc/chatgames-backend/internal/game"
)

const (
	cmdGameOn  = "/gameon"
	cmdGameOff = "/gameoff"
	cmdList    = "/list"
	cmdGoAway  = "/goaway"
	cmdStats   = "/stats"
)

const statsLimit = 5

const (
	msgGoodbye        = "Goodbye! Say /gameon whenever you want to play again."
	msgStatsDisabled  = "Game history is not enabled."
	msgStatsEmpty     = "No games have been recorded in this chat yet."
	msgStatsHeader    = "Recent games:"
	msgStatsScoreLine = "%d. %s - score %s (%s)"
	msgStatsLine      = "%d. %s - %s (%s)"
)

type sessionRepo interface {
	Get(ctx context.Context, groupID string) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, groupID string) error
}

type membershipRepo interface {
	GroupOf(ctx context.Context, userID string) (string, error)
	Claim(ctx context.Context, userID, groupID string) (bool, error)
	Release(ctx context.Context, userID, groupID string) error
	Members(ctx context.Context, groupID string) ([]string, error)
	ReleaseGroup(ctx context.Context, groupID string) error
}

type resultRecorder interface {
	Record(ctx context.Context, record *entity.GameRecord) error
	Recent(ctx context.Context, groupID string, limit int) ([]entity.GameRecord, error)
}

// Router - binds chat groups to game sessions and users to the group they play in.
type Router struct {
	logger   *slog.Logger
	games    *game.Registry
	sessions sessionRepo
	members  membershipRepo
	results  resultRecorder
	locks    *groupLocks
	now      func() time.Time
}

func NewRouter(logger *slog.Logger, games *game.Registry, sessions sessionRepo, members membershipRepo) *Router {
	return &Router{
		logger: logger.With("component", "router"),

		games:    games,
		sessions: sessions,
		members:  members,
		locks:    newGroupLocks(),
		now:      time.Now,
	}
}

// WithHistory - records finished rounds and enables /stats. Without it /stats reports history as disabled.
func (that *Router) WithHistory(results resultRecorder) *Router {
	that.results = results
	return that
}

// Route - handles one inbound chat event. An empty result means the bot stays silent.
func (that *Router) Route(ctx context.Context, in entity.Input) (*entity.Result, error) {
	fields := strings.Fields(in.Text)

	command := ""
	if len(fields) > 0 {
		command = strings.ToLower(fields[0])
	}

	switch command {
	case cmdGameOn:
		kind := ""
		if len(fields) > 1 {
			kind = strings.ToLower(fields[1])
		}
		return that.startGame(ctx, in, kind)
	case cmdGameOff:
		return that.stopGame(ctx, in)
	case cmdList:
		return reply(that.games.List()), nil
	case cmdGoAway:
		return that.goAway(ctx, in)
	case cmdStats:
		return that.stats(ctx, in)
	default:
		return that.forward(ctx, in)
	}
}

func (that *Router) startGame(ctx context.Context, in entity.Input, kind string) (*entity.Result, error) {
	log := that.logger.With("method", "startGame", "group_id", in.GroupID, "user_id", in.UserID)

	unlock := that.locks.Lock(in.GroupID)
	defer unlock()

	playing, err := that.activeGroupOf(ctx, in.UserID, in.GroupID)
	if err != nil {
		return nil, err
	}

	if playing != "" {
		log.Debug("user already plays elsewhere", "playing_in", playing)
		return &entity.Result{}, nil
	}

	if !that.games.Has(kind) {
		return reply(that.games.Usage()), nil
	}

	_, err = that.sessions.Get(ctx, in.GroupID)
	if err == nil {
		log.Debug("group already has a game")
		return &entity.Result{}, nil
	}

	if !errors.Is(err, apperror.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// players of an expired session must not carry over into the new one
	if err = that.members.ReleaseGroup(ctx, in.GroupID); err != nil {
		return nil, fmt.Errorf("failed to release group members: %w", err)
	}

	claimed, err := that.members.Claim(ctx, in.UserID, in.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim membership: %w", err)
	}

	if !claimed {
		log.Debug("membership claimed concurrently")
		return &entity.Result{}, nil
	}

	instance, err := that.games.New(kind)
	if err != nil {
		that.release(ctx, in.UserID, in.GroupID)
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	result := instance.Start(ctx)
	if seater, ok := instance.(game.Seater); ok {
		seater.Seat(in.UserID, in.DisplayName)
	}

	if err = that.save(ctx, in.GroupID, instance); err != nil {
		that.release(ctx, in.UserID, in.GroupID)
		return nil, err
	}

	log.Info("game started", "kind", kind)

	return &result, nil
}

func (that *Router) stopGame(ctx context.Context, in entity.Input) (*entity.Result, error) {
	log := that.logger.With("method", "stopGame", "group_id", in.GroupID, "user_id", in.UserID)

	unlock := that.locks.Lock(in.GroupID)
	defer unlock()

	groupID, err := that.members.GroupOf(ctx, in.UserID)
	if errors.Is(err, apperror.ErrMemberNotFound) {
		log.Debug("stop ignored, user is not a member")
		return &entity.Result{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	if groupID != in.GroupID {
		log.Debug("stop ignored, user plays elsewhere", "playing_in", groupID)
		return &entity.Result{}, nil
	}

	instance, err := that.load(ctx, in.GroupID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		if err = that.removeSession(ctx, in.GroupID); err != nil {
			return nil, err
		}
		return &entity.Result{}, nil
	}

	if err != nil {
		return nil, err
	}

	result := instance.End()

	if err = that.removeSession(ctx, in.GroupID); err != nil {
		return nil, err
	}

	log.Info("game stopped", "kind", instance.Kind())

	return &result, nil
}

func (that *Router) goAway(ctx context.Context, in entity.Input) (*entity.Result, error) {
	unlock := that.locks.Lock(in.GroupID)
	defer unlock()

	log := that.logger.With("method", "goAway", "group_id", in.GroupID, "user_id", in.UserID)

	_, err := that.sessions.Get(ctx, in.GroupID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return reply(msgGoodbye), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	groupID, err := that.members.GroupOf(ctx, in.UserID)
	if err != nil && !errors.Is(err, apperror.ErrMemberNotFound) {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	if groupID != in.GroupID {
		log.Debug("goaway ignored, user is not a member")
		return &entity.Result{}, nil
	}

	if err = that.removeSession(ctx, in.GroupID); err != nil {
		return nil, err
	}

	log.Info("game dismissed")

	return reply(msgGoodbye), nil
}

func (that *Router) stats(ctx context.Context, in entity.Input) (*entity.Result, error) {
	if that.results == nil {
		return reply(msgStatsDisabled), nil
	}

	records, err := that.results.Recent(ctx, in.GroupID, statsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent games: %w", err)
	}

	if len(records) == 0 {
		return reply(msgStatsEmpty), nil
	}

	now := that.now()

	lines := []string{msgStatsHeader}
	for i, record := range records {
		when := humanize.RelTime(record.CreatedAt, now, "ago", "from now")
		if record.Outcome == entity.OutcomeScore {
			lines = append(lines, fmt.Sprintf(msgStatsScoreLine, i+1, record.Kind, humanize.FtoaWithDigits(record.Score, 2), when))
			continue
		}
		lines = append(lines, fmt.Sprintf(msgStatsLine, i+1, record.Kind, record.Outcome, when))
	}

	return reply(strings.Join(lines, "\n")), nil
}

// forward - hands the input to the game of the group, a personal chat falls back to the group the user plays in.
func (that *Router) forward(ctx context.Context, in entity.Input) (*entity.Result, error) {
	result, handled, err := that.forwardTo(ctx, in.GroupID, in)
	if err != nil || handled || !in.IsPersonal() {
		return result, err
	}

	groupID, err := that.members.GroupOf(ctx, in.UserID)
	if errors.Is(err, apperror.ErrMemberNotFound) {
		return &entity.Result{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	if groupID == in.GroupID {
		return &entity.Result{}, nil
	}

	result, _, err = that.forwardTo(ctx, groupID, in)

	return result, err
}

func (that *Router) forwardTo(ctx context.Context, groupID string, in entity.Input) (*entity.Result, bool, error) {
	unlock := that.locks.Lock(groupID)
	defer unlock()

	instance, err := that.load(ctx, groupID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return &entity.Result{}, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	result := instance.ParseAndReply(ctx, in)

	if result.JoinGame {
		admitted, err := that.admit(ctx, groupID, in.UserID)
		if err != nil {
			return nil, true, err
		}

		if !admitted {
			that.logger.Debug("interaction dropped, user plays elsewhere", "method", "forwardTo", "group_id", groupID, "user_id", in.UserID)
			return &entity.Result{}, true, nil
		}
	}

	if err = that.apply(ctx, groupID, in, instance, result); err != nil {
		return nil, true, err
	}

	return &result, true, nil
}

// apply - persists what the interaction changed.
func (that *Router) apply(ctx context.Context, groupID string, in entity.Input, instance game.Game, result entity.Result) error {
	log := that.logger.With("method", "apply", "group_id", groupID, "user_id", in.UserID)

	if result.Outcome != nil {
		that.record(ctx, groupID, instance.Kind(), *result.Outcome)
	}

	if result.EndGame {
		log.Info("game ended", "kind", instance.Kind())
		return that.removeSession(ctx, groupID)
	}

	if result.LeaveGame {
		if err := that.members.Release(ctx, in.UserID, groupID); err != nil {
			return fmt.Errorf("failed to release membership: %w", err)
		}

		members, err := that.members.Members(ctx, groupID)
		if err != nil {
			return fmt.Errorf("failed to get members: %w", err)
		}

		if len(members) == 0 {
			log.Info("last member left", "kind", instance.Kind())
			return that.removeSession(ctx, groupID)
		}
	}

	return that.save(ctx, groupID, instance)
}

// admit - binds the user to groupID, false when they already play in another live group.
// The caller holds the lock of groupID.
func (that *Router) admit(ctx context.Context, groupID, userID string) (bool, error) {
	playing, err := that.activeGroupOf(ctx, userID, groupID)
	if err != nil {
		return false, err
	}

	if playing == groupID {
		return true, nil
	}

	if playing != "" {
		return false, nil
	}

	claimed, err := that.members.Claim(ctx, userID, groupID)
	if err != nil {
		return false, fmt.Errorf("failed to claim membership: %w", err)
	}

	return claimed, nil
}

// activeGroupOf - group the user plays in, a membership without a live session is dropped.
// heldGroup is the group already locked by the caller.
func (that *Router) activeGroupOf(ctx context.Context, userID, heldGroup string) (string, error) {
	groupID, err := that.members.GroupOf(ctx, userID)
	if errors.Is(err, apperror.ErrMemberNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to get membership: %w", err)
	}

	if groupID != heldGroup {
		unlock, ok := that.locks.TryLock(groupID)
		if !ok {
			// the other group is busy, so its game is alive for now
			return groupID, nil
		}
		defer unlock()
	}

	_, err = that.sessions.Get(ctx, groupID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		that.logger.Debug("stale memberships dropped", "user_id", userID, "group_id", groupID)
		if err = that.members.ReleaseGroup(ctx, groupID); err != nil {
			return "", fmt.Errorf("failed to release group members: %w", err)
		}
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	return groupID, nil
}

func (that *Router) load(ctx context.Context, groupID string) (game.Game, error) {
	session, err := that.sessions.Get(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	instance, err := that.games.Restore(session.Kind, session.State)
	if err != nil {
		that.logger.Error("dropping unreadable session", "group_id", groupID, "kind", session.Kind, "error", err)

		if err = that.removeSession(ctx, groupID); err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", apperror.ErrSessionNotFound, apperror.ErrSessionCorrupted)
	}

	return instance, nil
}

func (that *Router) save(ctx context.Context, groupID string, instance game.Game) error {
	state, err := json.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	session := &entity.Session{
		GroupID:   groupID,
		Kind:      instance.Kind(),
		State:     state,
		UpdatedAt: that.now(),
	}

	if err = that.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// removeSession - deletes the session together with every membership pointing at the group.
func (that *Router) removeSession(ctx context.Context, groupID string) error {
	if err := that.sessions.Delete(ctx, groupID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err := that.members.ReleaseGroup(ctx, groupID); err != nil {
		return fmt.Errorf("failed to release group members: %w", err)
	}

	return nil
}

func (that *Router) release(ctx context.Context, userID, groupID string) {
	if err := that.members.Release(ctx, userID, groupID); err != nil {
		that.logger.Error("failed to release membership", "user_id", userID, "group_id", groupID, "error", err)
	}
}

func (that *Router) record(ctx context.Context, groupID, kind string, outcome entity.Outcome) {
	if that.results == nil {
		return
	}

	if err := that.results.Record(ctx, entity.NewGameRecord(groupID, kind, outcome)); err != nil {
		that.logger.Error("failed to record game", "group_id", groupID, "kind", kind, "error", err)
	}
}

func reply(text string) *entity.Result {
	result := entity.NewResult(entity.NewText(text))
	return &result
}
