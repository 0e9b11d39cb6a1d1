package games

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PlayerService handles player creation and the one-time role assignment at game start.
type PlayerService struct {
	store  Store
	events *EventService
}

// NewPlayerService wires a PlayerService to its Store and EventService collaborators.
func NewPlayerService(store Store, events *EventService) *PlayerService {
	return &PlayerService{store: store, events: events}
}

// generateSecret returns a random hex secret used as the player's authentication token.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HandleJoinGame enforces NotStarted, allocates a server-side secret, persists a Player with
// empty role/known, and emits PlayerJoined. Returns the created player and the plaintext secret,
// which the caller must surface to the joining client exactly once.
func (s *PlayerService) HandleJoinGame(ctx context.Context, action *Action) (player *Player, secret string, err error) {
	game, err := s.store.GetGame(ctx, action.GameID)
	if err != nil {
		return nil, "", err
	}
	if game.Status != StatusNotStarted {
		return nil, "", NewConflictError("game %s has already started", action.GameID)
	}
	name, _ := action.Payload["name"].(string)
	if name == "" {
		return nil, "", NewInvalidError("name is required")
	}

	secret, err = generateSecret()
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash player secret: %w", err)
	}

	player = &Player{
		ID:         uuid.NewString(),
		GameID:     action.GameID,
		Name:       name,
		SecretHash: string(hash),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.PutPlayer(ctx, player); err != nil {
		return nil, "", fmt.Errorf("persist player: %w", err)
	}
	if err := s.events.EmitPlayerJoined(ctx, action.GameID, player.ID, player.Name); err != nil {
		return nil, "", err
	}
	return player, secret, nil
}

// VerifySecret reports whether secret matches the player's stored (hashed) secret.
func VerifySecret(player *Player, secret string) bool {
	if player == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(player.SecretHash), []byte(secret)) == nil
}

// GetEventsForPlayer returns every event visible to playerID, after verifying secret against the
// player's stored secret hash. It fails closed with an InvalidError on any mismatch (wrong
// player, wrong secret, or a game/player that does not exist) rather than distinguishing those
// cases, so a caller cannot use this endpoint to probe which player ids exist in a game.
func (s *PlayerService) GetEventsForPlayer(ctx context.Context, gameID, playerID, secret string) ([]*Event, error) {
	player, err := s.store.GetPlayer(ctx, gameID, playerID)
	if err != nil {
		return nil, NewInvalidError("invalid player or secret")
	}
	if !VerifySecret(player, secret) {
		return nil, NewInvalidError("invalid player or secret")
	}
	return s.store.GetEvents(ctx, gameID, playerID)
}

// AssignRoles is invoked exactly once at game start. It shuffles the persisted players with a
// uniform random permutation, assigns roles[i] to the shuffled player at index i (any player past
// the end of roles receives RoleVillager), computes each player's known_player_ids as the union
// over knownRoles[player.role] of every other player's id bearing one of those roles, and persists
// each mutated player. It returns the players in their shuffled (assignment) order.
func (s *PlayerService) AssignRoles(ctx context.Context, gameID string, players []*Player, roles []Role, knownRoles map[Role][]Role) ([]*Player, error) {
	shuffled := make([]*Player, len(players))
	copy(shuffled, players)
	if err := shuffleInPlace(shuffled); err != nil {
		return nil, err
	}

	for i, p := range shuffled {
		if i < len(roles) {
			p.Role = roles[i]
		} else {
			p.Role = RoleVillager
		}
	}

	for _, p := range shuffled {
		wanted := make(map[Role]bool, len(knownRoles[p.Role]))
		for _, r := range knownRoles[p.Role] {
			wanted[r] = true
		}
		known := make([]string, 0)
		for _, other := range shuffled {
			if other.ID == p.ID {
				continue
			}
			if wanted[other.Role] {
				known = append(known, other.ID)
			}
		}
		p.KnownPlayerIDs = known
	}

	for _, p := range shuffled {
		if err := s.store.UpdatePlayer(ctx, p); err != nil {
			return nil, fmt.Errorf("persist assigned role for player %s: %w", p.ID, err)
		}
	}
	return shuffled, nil
}

// shuffleInPlace applies a uniformly random Fisher-Yates shuffle using crypto/rand, without
// depending on math/rand's global state. The random source cannot be seeded or substituted, so
// the resulting order is not reproducible, in tests or otherwise.
func shuffleInPlace(players []*Player) error {
	for i := len(players) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("shuffle players: %w", err)
		}
		j := int(jBig.Int64())
		players[i], players[j] = players[j], players[i]
	}
	return nil
}
