package games

import (
	"context"
	"fmt"
)

// GameService owns game-level lifecycle: starting the game (role assignment, config freeze),
// ending it (assassination phase and the final winner determination), and the assassin's shot.
type GameService struct {
	store   Store
	events  *EventService
	players *PlayerService
}

// NewGameService wires a GameService to its Store, EventService, and PlayerService collaborators.
func NewGameService(store Store, events *EventService, players *PlayerService) *GameService {
	return &GameService{store: store, events: events, players: players}
}

// HandleStartGame enforces the player-count bounds, validates that the payload's player_ids match
// the game's joined players exactly, freezes the game's config (payload overrides falling back to
// BuildConfig's defaults), assigns roles via PlayerService.AssignRoles, sets the initial leader to
// the last player in join order (so that RoundService's leader-rotation logic makes
// player_ids[0] the leader of the game's first round), marks the game InProgress, and emits one
// targeted GameStarted event per player.
func (s *GameService) HandleStartGame(ctx context.Context, game *Game, action *Action) error {
	if game.Status != StatusNotStarted {
		return NewConflictError("game %s has already started", game.ID)
	}
	players, err := s.store.GetPlayers(ctx, game.ID)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return NewInvalidError("game requires between %d and %d players, has %d", MinPlayers, MaxPlayers, len(players))
	}
	if err := checkPlayerIDsMatch(players, action.Payload["player_ids"]); err != nil {
		return err
	}

	roles, knownRoles, assassinationAttempts := parseStartGameOverrides(action.Payload)
	config := BuildConfig(len(players), roles, knownRoles, assassinationAttempts)
	if len(config.Roles) > len(players) {
		return NewInvalidError("role list has %d roles for %d players", len(config.Roles), len(players))
	}

	assigned, err := s.players.AssignRoles(ctx, game.ID, players, config.Roles, config.KnownRoles)
	if err != nil {
		return err
	}

	playerIDs := make([]string, len(players))
	for i, p := range players {
		playerIDs[i] = p.ID
	}

	game.Config = config
	game.PlayerIDs = playerIDs
	game.LeaderID = playerIDs[len(playerIDs)-1]
	game.CurrentQuestNumber = 1
	game.CurrentRoundNumber = 1
	game.AssassinationAttempts = config.AssassinationAttempts
	game.Status = StatusInProgress
	if err := s.store.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("persist game start: %w", err)
	}
	return s.events.EmitGameStarted(ctx, game.ID, assigned)
}

// checkPlayerIDsMatch enforces that the StartGame payload's player_ids names exactly the set of
// players who have actually joined the game, order ignored, so a client holding a stale or
// otherwise wrong roster cannot start the game out from under the players who actually joined.
func checkPlayerIDsMatch(players []*Player, rawPlayerIDs interface{}) error {
	raw, ok := rawPlayerIDs.([]interface{})
	if !ok {
		return NewInvalidError("player_ids is required")
	}
	given := make(map[string]bool, len(raw))
	for _, v := range raw {
		id, ok := v.(string)
		if !ok {
			return NewInvalidError("player_ids must be a list of player ids")
		}
		given[id] = true
	}
	actual := make(map[string]bool, len(players))
	for _, p := range players {
		actual[p.ID] = true
	}
	if len(given) != len(actual) {
		return NewInvalidError("player_ids does not match the game's joined players")
	}
	for id := range given {
		if !actual[id] {
			return NewInvalidError("player_ids does not match the game's joined players")
		}
	}
	return nil
}

// parseStartGameOverrides extracts optional StartGame payload overrides. assassinationAttempts is
// -1 (meaning "use the default") unless the payload explicitly set it, in which case 0 is honored
// as "assassination phase disabled" rather than being mistaken for "not specified". known_roles
// maps a role name to the list of role names a player assigned that role should be told about.
func parseStartGameOverrides(payload map[string]interface{}) (roles []Role, knownRoles map[Role][]Role, assassinationAttempts int) {
	if raw, ok := payload["roles"].([]interface{}); ok {
		for _, v := range raw {
			if name, ok := v.(string); ok {
				roles = append(roles, Role(name))
			}
		}
	}
	if raw, ok := payload["known_roles"].(map[string]interface{}); ok {
		knownRoles = make(map[Role][]Role, len(raw))
		for role, v := range raw {
			list, ok := v.([]interface{})
			if !ok {
				continue
			}
			known := make([]Role, 0, len(list))
			for _, r := range list {
				if name, ok := r.(string); ok {
					known = append(known, Role(name))
				}
			}
			knownRoles[Role(role)] = known
		}
	}
	assassinationAttempts = -1
	if n, ok := payload["assassination_attempts"].(float64); ok {
		assassinationAttempts = int(n)
	}
	return roles, knownRoles, assassinationAttempts
}

// OnEnterEndGame is invoked when the state machine enters EndGame off the back of a quest-majority
// result. When the game's config disables the assassination phase (AssassinationAttempts == 0) it
// ends the game immediately with the majority-derived winner. Otherwise, regardless of which
// majority (Pass or Fail) triggered EndGame, it starts the assassination phase: only a successful
// assassination can still hand Evil the win once three quests have passed, and a fourth failed
// Evil quest is already a loss the assassin cannot reverse by missing — so the assassination phase
// always runs, and the eventual winner is decided entirely by its outcome (see
// HandleSubmitAssassinationTarget).
func (s *GameService) OnEnterEndGame(ctx context.Context, game *Game, majorityWinner Winner) error {
	if game.AssassinationAttempts <= 0 {
		return s.HandleGameEnded(ctx, game, majorityWinner)
	}
	return s.events.EmitAssassinationStarted(ctx, game.ID)
}

// RequestAssassinationTarget emits AssassinationTargetRequested to the assassin. Callers invoke
// this once per remaining attempt, immediately after OnEnterEndGame and again after each missed
// shot that leaves attempts remaining.
func (s *GameService) RequestAssassinationTarget(ctx context.Context, game *Game, players []*Player) error {
	assassinID := findPlayerByRole(players, RoleAssassin)
	if assassinID == "" {
		return s.HandleGameEnded(ctx, game, WinnerGood)
	}
	return s.events.EmitAssassinationTargetRequested(ctx, game.ID, assassinID)
}

// HandleSubmitAssassinationTarget resolves one assassination attempt. A shot on Merlin ends the
// game for Evil. A miss decrements the attempt counter; once attempts are exhausted the game ends
// for Good, otherwise the caller should request another target. The winner passed to
// HandleGameEnded is always derived from the assassination outcome alone, never from which quest
// majority triggered EndGame.
func (s *GameService) HandleSubmitAssassinationTarget(ctx context.Context, game *Game, players []*Player, action *Action) (decided bool, err error) {
	targetID, _ := action.Payload["target_id"].(string)
	if targetID == "" {
		return false, NewInvalidError("target_id is required")
	}
	target := findPlayer(players, targetID)
	if target == nil {
		return false, NewInvalidError("player %s is not in this game", targetID)
	}

	if target.Role == RoleMerlin {
		if err := s.events.EmitAssassinationSucceeded(ctx, game.ID, targetID); err != nil {
			return false, err
		}
		return true, s.HandleGameEnded(ctx, game, WinnerEvil)
	}

	if err := s.events.EmitAssassinationFailed(ctx, game.ID, targetID); err != nil {
		return false, err
	}
	game.AssassinationAttempts--
	if err := s.store.UpdateGame(ctx, game); err != nil {
		return false, fmt.Errorf("persist remaining assassination attempts: %w", err)
	}
	if game.AssassinationAttempts <= 0 {
		return true, s.HandleGameEnded(ctx, game, WinnerGood)
	}
	return false, nil
}

// HandleGameEnded freezes the game's final result, marks it Finished, and emits GameEnded
// carrying the full role map.
func (s *GameService) HandleGameEnded(ctx context.Context, game *Game, winner Winner) error {
	game.Result = winner
	game.Status = StatusFinished
	if err := s.store.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("persist game result: %w", err)
	}
	players, err := s.store.GetPlayers(ctx, game.ID)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	roles := make(map[string]Role, len(players))
	for _, p := range players {
		roles[p.ID] = p.Role
	}
	return s.events.EmitGameEnded(ctx, game.ID, winner, roles)
}

func findPlayerByRole(players []*Player, role Role) string {
	for _, p := range players {
		if p.Role == role {
			return p.ID
		}
	}
	return ""
}

func findPlayer(players []*Player, id string) *Player {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerSummary is the join-time-visible view of a Player: never role or secret.
type PlayerSummary struct {
	ID   string `json:"player_id"`
	Name string `json:"name"`
}

// GameSummary is a read-only projection of a Game used by the admin surface and by clients
// reconnecting before a game starts: config, quest team sizes, the known-roles table, and the
// joined players' ids and names, never roles or secrets.
type GameSummary struct {
	ID      string          `json:"game_id"`
	Status  GameStatus      `json:"status"`
	State   StateName       `json:"state"`
	Config  *GameConfig     `json:"config,omitempty"`
	Players []PlayerSummary `json:"players"`
}

// GetGameSummary loads a game and its joined players and projects them into a GameSummary,
// deliberately omitting every field (role, secret) that is set once at game start and never safe
// to reveal to every caller.
func (s *GameService) GetGameSummary(ctx context.Context, gameID string) (*GameSummary, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	players, err := s.store.GetPlayers(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	summary := &GameSummary{
		ID:      game.ID,
		Status:  game.Status,
		State:   game.State,
		Config:  game.Config,
		Players: make([]PlayerSummary, len(players)),
	}
	for i, p := range players {
		summary.Players[i] = PlayerSummary{ID: p.ID, Name: p.Name}
	}
	return summary, nil
}
