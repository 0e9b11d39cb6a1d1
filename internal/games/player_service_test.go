package games

import (
	"context"
	"testing"
)

func TestHandleJoinGame_RejectsEmptyName(t *testing.T) {
	h := newTestHarness(newSetupGame("g1"))
	_, _, err := h.players.HandleJoinGame(context.Background(), &Action{
		GameID: "g1", Payload: map[string]interface{}{},
	})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	if _, ok := err.(*InvalidError); !ok {
		t.Errorf("expected InvalidError, got %T", err)
	}
}

func TestHandleJoinGame_ReturnsVerifiableSecret(t *testing.T) {
	h := newTestHarness(newSetupGame("g1"))
	player, secret, err := h.players.HandleJoinGame(context.Background(), &Action{
		GameID: "g1", Payload: map[string]interface{}{"name": "alice"},
	})
	if err != nil {
		t.Fatalf("join game: %v", err)
	}
	if !VerifySecret(player, secret) {
		t.Error("expected secret to verify against the stored hash")
	}
	if VerifySecret(player, "wrong-secret") {
		t.Error("expected a wrong secret not to verify")
	}
}

func TestAssignRoles_MerlinSeesMorganaAssassinAndOberonNotVillagers(t *testing.T) {
	h := newTestHarness(newSetupGame("g1"))
	ids := joinPlayers(h, "g1", "p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9")
	players, err := h.store.GetPlayers(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	config := BuildConfig(9, nil, nil, -1)

	assigned, err := h.players.AssignRoles(context.Background(), "g1", players, config.Roles, config.KnownRoles)
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	if len(assigned) != len(ids) {
		t.Fatalf("expected %d assigned players, got %d", len(ids), len(assigned))
	}

	byRole := map[Role]*Player{}
	for _, p := range assigned {
		byRole[p.Role] = p
	}
	merlin, ok := byRole[RoleMerlin]
	if !ok {
		t.Fatal("expected a Merlin to be assigned")
	}
	wantKnown := map[string]bool{
		byRole[RoleMorgana].ID:  true,
		byRole[RoleAssassin].ID: true,
		byRole[RoleOberon].ID:   true,
	}
	if len(merlin.KnownPlayerIDs) != len(wantKnown) {
		t.Fatalf("expected merlin to know exactly %d players, got %d: %v", len(wantKnown), len(merlin.KnownPlayerIDs), merlin.KnownPlayerIDs)
	}
	for _, id := range merlin.KnownPlayerIDs {
		if !wantKnown[id] {
			t.Errorf("merlin should not know player %s", id)
		}
	}

	villager, hasVillager := byRole[RoleVillager]
	if hasVillager && len(villager.KnownPlayerIDs) != 0 {
		t.Errorf("villagers should know no one, got %v", villager.KnownPlayerIDs)
	}
}

func TestAssignRoles_AssignsVillagerPastEndOfRoleList(t *testing.T) {
	h := newTestHarness(newSetupGame("g1"))
	joinPlayers(h, "g1", "p1", "p2", "p3", "p4", "p5")
	players, err := h.store.GetPlayers(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	roles := []Role{RoleMerlin, RoleAssassin}
	assigned, err := h.players.AssignRoles(context.Background(), "g1", players, roles, DefaultKnownRoles)
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	villagerCount := 0
	for _, p := range assigned {
		if p.Role == RoleVillager {
			villagerCount++
		}
	}
	if villagerCount != 3 {
		t.Errorf("expected 3 villagers (5 players - 2 named roles), got %d", villagerCount)
	}
}
