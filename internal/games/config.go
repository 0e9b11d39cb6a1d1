package games

// DefaultQuestTeamSize is the classic Avalon team-size table, keyed by total
// player count then by quest_number (1..5).
var DefaultQuestTeamSize = map[int]map[int]int{
	5:  {1: 2, 2: 3, 3: 2, 4: 3, 5: 3},
	6:  {1: 2, 2: 3, 3: 4, 4: 3, 5: 4},
	7:  {1: 2, 2: 3, 3: 3, 4: 4, 5: 4},
	8:  {1: 3, 2: 4, 3: 4, 4: 5, 5: 5},
	9:  {1: 3, 2: 4, 3: 4, 4: 5, 5: 5},
	10: {1: 3, 2: 4, 3: 4, 4: 5, 5: 5},
}

// DefaultRolesByPlayerCount is the default role list assigned at StartGame when
// the caller does not override it. Any player past the end of the list gets RoleVillager.
var DefaultRolesByPlayerCount = map[int][]Role{
	5:  {RoleMerlin, RolePercival, RoleAssassin, RoleMorgana},
	6:  {RoleMerlin, RolePercival, RoleAssassin, RoleMorgana},
	7:  {RoleMerlin, RolePercival, RoleAssassin, RoleMorgana, RoleMordred},
	8:  {RoleMerlin, RolePercival, RoleAssassin, RoleMorgana, RoleMordred},
	9:  {RoleMerlin, RolePercival, RoleAssassin, RoleMorgana, RoleMordred, RoleOberon},
	10: {RoleMerlin, RolePercival, RoleAssassin, RoleMorgana, RoleMordred, RoleOberon},
}

// DefaultKnownRoles maps a role to the roles whose holders are revealed to it at
// game start (see PlayerService.AssignRoles).
var DefaultKnownRoles = map[Role][]Role{
	RoleMerlin:   {RoleMorgana, RoleAssassin, RoleOberon},
	RolePercival: {RoleMerlin, RoleMorgana},
	RoleMordred:  {RoleMorgana, RoleAssassin, RoleOberon},
	RoleMorgana:  {RoleMordred, RoleAssassin, RoleOberon},
	RoleAssassin: {RoleMordred, RoleMorgana, RoleOberon},
	RoleOberon:   {},
	RoleVillager: {},
}

// DefaultAssassinationAttempts is used when StartGame's payload omits it.
const DefaultAssassinationAttempts = 1

// MinPlayers and MaxPlayers bound the supported player count.
const (
	MinPlayers = 5
	MaxPlayers = 10
)

// TenPlayerFifthQuestTolerance is the number of Fail quest votes the fifth quest of a
// ten-player game tolerates while still resulting in Pass.
const TenPlayerFifthQuestTolerance = 1

// QuestFailTolerance returns how many Fail quest votes a quest of the given number,
// in a game with the given total player count, tolerates while still passing.
func QuestFailTolerance(questNumber, playerCount int) int {
	if questNumber == 5 && playerCount == 10 {
		return TenPlayerFifthQuestTolerance
	}
	return 0
}

// BuildConfig assembles a GameConfig from StartGame payload overrides, falling back to
// the defaults for the given player count. assassinationAttempts < 0 means "not specified by the
// caller"; 0 is a valid override meaning the assassination phase is disabled entirely.
func BuildConfig(playerCount int, roles []Role, knownRoles map[Role][]Role, assassinationAttempts int) *GameConfig {
	if roles == nil {
		roles = DefaultRolesByPlayerCount[playerCount]
	}
	if knownRoles == nil {
		knownRoles = DefaultKnownRoles
	}
	if assassinationAttempts < 0 {
		assassinationAttempts = DefaultAssassinationAttempts
	}
	teamSize := make(map[int]int, len(DefaultQuestTeamSize[playerCount]))
	for k, v := range DefaultQuestTeamSize[playerCount] {
		teamSize[k] = v
	}
	return &GameConfig{
		QuestTeamSize:         teamSize,
		Roles:                 roles,
		KnownRoles:            knownRoles,
		AssassinationAttempts: assassinationAttempts,
	}
}
