package games

import "testing"

func TestQuestFailTolerance(t *testing.T) {
	cases := []struct {
		questNumber, playerCount, want int
	}{
		{5, 10, 1},
		{5, 7, 0},
		{4, 10, 0},
		{1, 5, 0},
	}
	for _, c := range cases {
		if got := QuestFailTolerance(c.questNumber, c.playerCount); got != c.want {
			t.Errorf("QuestFailTolerance(%d, %d) = %d, want %d", c.questNumber, c.playerCount, got, c.want)
		}
	}
}

func TestBuildConfig_DefaultsWhenUnset(t *testing.T) {
	cfg := BuildConfig(5, nil, nil, -1)
	if cfg.AssassinationAttempts != DefaultAssassinationAttempts {
		t.Errorf("expected default assassination attempts, got %d", cfg.AssassinationAttempts)
	}
	if len(cfg.Roles) != len(DefaultRolesByPlayerCount[5]) {
		t.Errorf("expected default role list for 5 players, got %v", cfg.Roles)
	}
	if cfg.QuestTeamSize[1] != 2 {
		t.Errorf("expected quest 1 team size 2, got %d", cfg.QuestTeamSize[1])
	}
}

func TestBuildConfig_ExplicitZeroDisablesAssassination(t *testing.T) {
	cfg := BuildConfig(5, nil, nil, 0)
	if cfg.AssassinationAttempts != 0 {
		t.Errorf("expected assassination disabled, got %d attempts", cfg.AssassinationAttempts)
	}
}

func TestBuildConfig_MutatingReturnedTeamSizeDoesNotAffectDefaults(t *testing.T) {
	cfg := BuildConfig(5, nil, nil, -1)
	cfg.QuestTeamSize[1] = 99
	if DefaultQuestTeamSize[5][1] != 2 {
		t.Error("BuildConfig must copy the team size table, not alias it")
	}
}
