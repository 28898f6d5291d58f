package resolution_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ProfessorProf/valor-bot-discord/internal/dice"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/attributes"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/scenes"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/character"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/ledger"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/resolution"
	techsvc "github.com/ProfessorProf/valor-bot-discord/internal/services/technique"
	"github.com/ProfessorProf/valor-bot-discord/internal/testutils"
)

type resolutionSuite struct {
	suite.Suite

	ctx       context.Context
	attrRepo  attributes.Repository
	sceneRepo scenes.Repository
	roller    *dice.MockRoller
	service   resolution.Service
}

func (s *resolutionSuite) SetupTest() {
	s.ctx = context.Background()
	s.attrRepo = attributes.NewInMemoryRepository()
	s.sceneRepo = scenes.NewInMemoryRepository()
	s.roller = dice.NewMockRoller()

	characterService := character.NewService(&character.ServiceConfig{AttributeRepo: s.attrRepo})
	techniqueService := techsvc.NewService(&techsvc.ServiceConfig{AttributeRepo: s.attrRepo})
	ledgerService := ledger.NewService(&ledger.ServiceConfig{AttributeRepo: s.attrRepo})

	s.service = resolution.NewService(&resolution.ServiceConfig{
		SceneRepo:        s.sceneRepo,
		AttributeRepo:    s.attrRepo,
		CharacterService: characterService,
		TechniqueService: techniqueService,
		Ledger:           ledgerService,
		Roller:           s.roller,
	})
}

func TestResolutionSuite(t *testing.T) {
	suite.Run(t, new(resolutionSuite))
}

// seedScene stores a scene with one token per named entity and returns it
func (s *resolutionSuite) seedScene(entityIDs ...string) *scene.Scene {
	tokens := make([]*scene.Token, 0, len(entityIDs))
	for _, id := range entityIDs {
		tokens = append(tokens, testutils.CreateTestToken("tok-"+id, id))
	}
	sc := testutils.CreateTestScene("scene-1", "chan-1", tokens...)
	s.Require().NoError(s.sceneRepo.Create(s.ctx, sc))
	return sc
}

func (s *resolutionSuite) reload() *scene.Scene {
	sc, err := s.sceneRepo.Get(s.ctx, "scene-1")
	s.Require().NoError(err)
	return sc
}

func (s *resolutionSuite) TestInvoke_DamageScenario() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", map[string]string{"rollbonus": "0", "atkrollbonus": "0"})
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "bob", map[string]string{"defense": "3"})
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Crushing Fist", "core": "damage", "stat": "str",
		"cost": "0", "corelvl": "2", "techlvl": "2",
	})
	s.seedScene("alice", "bob")
	s.roller.SetNextRoll(5)

	result, err := s.service.Invoke(s.ctx, &resolution.InvokeInput{
		SceneID:        "scene-1",
		ActorTokenID:   "tok-alice",
		Query:          "crush",
		TargetTokenIDs: []string{"tok-bob"},
	})
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State)

	// (2+3)*5 + mus 5 = 30, minus defense 3 = 27
	s.Equal(30, result.Damage)
	s.Require().Len(result.Targets, 1)
	s.Equal(27, result.Targets[0].Net)

	sc := s.reload()
	target, _ := sc.Token("tok-bob")
	s.Equal(3, target.HP.Value)
}

func (s *resolutionSuite) TestInvoke_StaminaBlockedLeavesStateAlone() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Big Swing", "core": "damage", "stat": "str", "cost": "4",
	})
	sc := s.seedScene("alice")
	token, _ := sc.Token("tok-alice")
	token.Stamina.Value = 3
	s.Require().NoError(s.sceneRepo.Update(s.ctx, sc))

	result, err := s.service.Invoke(s.ctx, &resolution.InvokeInput{
		SceneID:      "scene-1",
		ActorTokenID: "tok-alice",
		Query:        "big",
	})
	s.Require().NoError(err)
	s.Equal(resolution.StateRejectedBlocked, result.State)
	s.Require().Len(result.Violations, 1)
	s.Contains(result.Violations[0], "Stamina")

	reloaded := s.reload()
	token, _ = reloaded.Token("tok-alice")
	s.Equal(3, token.Stamina.Value, "a blocked invocation spends nothing")
	s.Equal(0, reloaded.UseCount("alice", "Big Swing"))
}

func (s *resolutionSuite) TestInvoke_OverrideBypassesChecks() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Big Swing", "core": "damage", "stat": "str", "cost": "40",
	})
	s.seedScene("alice")
	s.roller.SetNextRoll(4)

	result, err := s.service.Invoke(s.ctx, &resolution.InvokeInput{
		SceneID:      "scene-1",
		ActorTokenID: "tok-alice",
		Query:        "big",
		Override:     true,
	})
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State)

	token, _ := s.reload().Token("tok-alice")
	s.Equal(-25, token.Stamina.Value, "overridden costs still apply, unfloored")
}

func (s *resolutionSuite) TestInvoke_UndoRoundTrip() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Blood Price", "core": "damage", "stat": "str",
		"cost": "10", "limits": "Health 1",
	})
	s.seedScene("alice")
	s.roller.SetNextRoll(6)

	result, err := s.service.Invoke(s.ctx, &resolution.InvokeInput{
		SceneID:      "scene-1",
		ActorTokenID: "tok-alice",
		Query:        "blood",
	})
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State)
	s.Equal(10, result.StaminaCost)
	s.Equal(5, result.HPCost)

	sc := s.reload()
	token, _ := sc.Token("tok-alice")
	s.Equal(5, token.Stamina.Value)
	s.Equal(25, token.HP.Value)
	s.Equal(1, sc.UseCount("alice", "Blood Price"))

	undone, err := s.service.Undo(s.ctx, "scene-1")
	s.Require().NoError(err)
	s.Equal("Blood Price", undone.TechniqueName)

	sc = s.reload()
	token, _ = sc.Token("tok-alice")
	s.Equal(15, token.Stamina.Value)
	s.Equal(30, token.HP.Value)
	s.Equal(0, sc.UseCount("alice", "Blood Price"),
		"the refund and the history rewind happen together")
}

func (s *resolutionSuite) TestUndo_EmptyStackIsNoOp() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	s.seedScene("alice")

	_, err := s.service.Undo(s.ctx, "scene-1")
	s.Require().Error(err)
	s.Contains(err.Error(), "nothing to undo")
}

func (s *resolutionSuite) TestInvoke_CooldownWindow() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Gale Slash", "core": "damage", "stat": "agi",
		"cost": "0", "limits": "Cooldown 2",
	})
	s.seedScene("alice")
	s.roller.SetRolls([]int{4, 4})

	input := &resolution.InvokeInput{SceneID: "scene-1", ActorTokenID: "tok-alice", Query: "gale"}

	result, err := s.service.Invoke(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State)

	// rounds 2 and 3 are inside the cooldown window
	for _, round := range []int{2, 3} {
		s.setRound(round)
		result, err = s.service.Invoke(s.ctx, input)
		s.Require().NoError(err)
		s.Equal(resolution.StateRejectedBlocked, result.State, "round %d", round)
	}

	s.setRound(4)
	result, err = s.service.Invoke(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State)
}

func (s *resolutionSuite) setRound(round int) {
	sc := s.reload()
	sc.Round = round
	s.Require().NoError(s.sceneRepo.Update(s.ctx, sc))
}

func (s *resolutionSuite) TestInvoke_AmmunitionBudgetAndUndoRefund() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Last Arrow", "core": "damage", "stat": "dex",
		"cost": "0", "limits": "Ammunition 3",
	})
	s.seedScene("alice")
	s.roller.SetRolls([]int{3, 3})

	input := &resolution.InvokeInput{SceneID: "scene-1", ActorTokenID: "tok-alice", Query: "last"}

	// level 3 leaves a single round in the quiver
	result, err := s.service.Invoke(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State)

	result, err = s.service.Invoke(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(resolution.StateRejectedBlocked, result.State)
	s.Contains(result.Violations, "out of ammunition")

	_, err = s.service.Undo(s.ctx, "scene-1")
	s.Require().NoError(err)

	result, err = s.service.Invoke(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State, "undo restores one unit of ammunition")
}

func (s *resolutionSuite) TestInvoke_InjuryBoundary() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Desperation", "core": "damage", "stat": "str",
		"cost": "0", "limits": "Injury 2",
	})
	sc := s.seedScene("alice")

	// threshold for max 30, level 2: ceil(30/5*3) = 18
	token, _ := sc.Token("tok-alice")
	token.HP.Value = 19
	s.Require().NoError(s.sceneRepo.Update(s.ctx, sc))

	input := &resolution.InvokeInput{SceneID: "scene-1", ActorTokenID: "tok-alice", Query: "desp"}

	result, err := s.service.Invoke(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(resolution.StateRejectedBlocked, result.State)

	sc = s.reload()
	token, _ = sc.Token("tok-alice")
	token.HP.Value = 18
	s.Require().NoError(s.sceneRepo.Update(s.ctx, sc))
	s.roller.SetNextRoll(2)

	result, err = s.service.Invoke(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State, "exactly at the threshold is usable")
}

func (s *resolutionSuite) TestInvoke_FailedMimicRejectedBeforeCosts() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "bob", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "bob", "row1", map[string]string{
		"name": "Inferno", "core": "damage", "stat": "spr",
		"cost": "0", "corelvl": "2", "techlvl": "3",
	})
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Copycat", "core": "mimic", "stat": "mnd",
		"cost": "8", "corelvl": "1", "techlvl": "1", "mimic": "Inferno",
	})
	s.seedScene("alice")

	result, err := s.service.Invoke(s.ctx, &resolution.InvokeInput{
		SceneID:      "scene-1",
		ActorTokenID: "tok-alice",
		Query:        "copy",
	})
	s.Require().NoError(err)
	s.Equal(resolution.StateRejectedMimicFailed, result.State)

	token, _ := s.reload().Token("tok-alice")
	s.Equal(15, token.Stamina.Value, "a failed mimic pays no cost")
}

func (s *resolutionSuite) TestInvoke_MimicOfMimicResolvesTheChain() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "bob", nil)
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "carol", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "bob", "row1", map[string]string{
		"name": "Inferno", "core": "damage", "stat": "spr",
		"cost": "0", "corelvl": "2", "techlvl": "3",
	})
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "carol", "row1", map[string]string{
		"name": "Echo", "core": "mimic", "stat": "mnd",
		"cost": "0", "corelvl": "4", "techlvl": "5", "mimic": "Inferno",
	})
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Copycat", "core": "mimic", "stat": "mnd",
		"cost": "8", "corelvl": "5", "techlvl": "5", "mimic": "Echo",
	})
	s.seedScene("alice", "bob")
	s.roller.SetNextRoll(5)

	result, err := s.service.Invoke(s.ctx, &resolution.InvokeInput{
		SceneID:        "scene-1",
		ActorTokenID:   "tok-alice",
		Query:          "copy",
		TargetTokenIDs: []string{"tok-bob"},
	})
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State)

	// Echo lands on Inferno's damage core at 4-(3-2)=3; Copycat chains
	// through it at 5-(5-3)=3. (3+3)*5 + int 3 = 33, minus resistance 2.
	s.Equal(33, result.Damage)
	s.Require().Len(result.Targets, 1)
	s.Equal(31, result.Targets[0].Net)

	sc := s.reload()
	actor, _ := sc.Token("tok-alice")
	s.Equal(7, actor.Stamina.Value)
	target, _ := sc.Token("tok-bob")
	s.Equal(-1, target.HP.Value)
}

func (s *resolutionSuite) TestInvoke_UltimateOncePerScene() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Final Judgment", "core": "ultDamage", "stat": "spr", "cost": "0",
	})
	s.seedScene("alice")
	s.roller.SetNextRoll(7)

	input := &resolution.InvokeInput{SceneID: "scene-1", ActorTokenID: "tok-alice", Query: "final"}

	result, err := s.service.Invoke(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State)

	result, err = s.service.Invoke(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(resolution.StateRejectedBlocked, result.State)
	s.Contains(result.Violations, "Ultimate already used this scene")
}

func (s *resolutionSuite) TestInvoke_UnknownTechnique() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	s.seedScene("alice")

	result, err := s.service.Invoke(s.ctx, &resolution.InvokeInput{
		SceneID:      "scene-1",
		ActorTokenID: "tok-alice",
		Query:        "nonexistent",
	})
	s.Require().NoError(err)
	s.Equal(resolution.StateRejectedNotFound, result.State)
}

func (s *resolutionSuite) TestInvoke_HealingAndShield() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", map[string]string{"aur": "6"})
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "bob", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Mending Light", "core": "healing", "stat": "spr",
		"cost": "0", "corelvl": "2", "techlvl": "2",
	})
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row2", map[string]string{
		"name": "Aegis", "core": "shield", "stat": "spr",
		"cost": "0", "corelvl": "1", "techlvl": "1", "shieldtype": "energy",
	})
	sc := s.seedScene("alice", "bob")
	target, _ := sc.Token("tok-bob")
	target.HP.Value = 10
	s.Require().NoError(s.sceneRepo.Update(s.ctx, sc))

	// healing: (2+3)*3 + ceil(6/2) = 18
	result, err := s.service.Invoke(s.ctx, &resolution.InvokeInput{
		SceneID:        "scene-1",
		ActorTokenID:   "tok-alice",
		Query:          "mend",
		TargetTokenIDs: []string{"tok-bob"},
	})
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State)
	s.Equal(18, result.Healing)

	target, _ = s.reload().Token("tok-bob")
	s.Equal(28, target.HP.Value)

	// shield: (1+3)*4 + aur 6 = 22
	result, err = s.service.Invoke(s.ctx, &resolution.InvokeInput{
		SceneID:        "scene-1",
		ActorTokenID:   "tok-alice",
		Query:          "aegis",
		TargetTokenIDs: []string{"tok-bob"},
	})
	s.Require().NoError(err)
	s.Equal(22, result.Shield)

	target, _ = s.reload().Token("tok-bob")
	s.Require().NotNil(target.Shields["energy"])
	s.Equal(22, target.Shields["energy"].Value)
}

func (s *resolutionSuite) TestInvoke_HealingTargetsEntityAcrossTokens() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", map[string]string{"aur": "6"})
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "bob", map[string]string{"hp": "10"})
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Mending Light", "core": "healing", "stat": "spr",
		"cost": "0", "corelvl": "2", "techlvl": "2",
	})

	healer := testutils.CreateTestToken("tok-alice", "alice")
	body := testutils.CreateTestToken("tok-bob", "bob")
	double := testutils.CreateTestToken("tok-bob2", "bob")
	sc := testutils.CreateTestScene("scene-1", "chan-1", healer, body, double)
	s.Require().NoError(s.sceneRepo.Create(s.ctx, sc))

	// the target is a character, not a token: the heal lands on the
	// sheet and both of bob's tokens
	result, err := s.service.Invoke(s.ctx, &resolution.InvokeInput{
		SceneID:        "scene-1",
		ActorTokenID:   "tok-alice",
		Query:          "mend",
		TargetTokenIDs: []string{"bob"},
	})
	s.Require().NoError(err)
	s.Equal(resolution.StateSuccess, result.State)
	s.Equal(18, result.Healing) // (2+3)*3 + ceil(6/2)

	sheetHP, err := s.attrRepo.Get(s.ctx, "bob", "hp")
	s.Require().NoError(err)
	s.Equal("28", sheetHP)

	reloaded := s.reload()
	one, _ := reloaded.Token("tok-bob")
	two, _ := reloaded.Token("tok-bob2")
	s.Equal(28, one.HP.Value)
	s.Equal(28, two.HP.Value)
}

func (s *resolutionSuite) TestEligibility_ListsViolationsPerTechnique() {
	testutils.SeedSheet(s.T(), s.ctx, s.attrRepo, "alice", nil)
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row1", map[string]string{
		"name": "Jab", "core": "damage", "stat": "str", "cost": "2",
	})
	testutils.SeedTechniqueRow(s.T(), s.ctx, s.attrRepo, "alice", "row2", map[string]string{
		"name": "Valor Burst", "core": "damage", "stat": "gut",
		"cost": "0", "limits": "Valor 5",
	})
	s.seedScene("alice")

	statuses, err := s.service.Eligibility(s.ctx, "scene-1", "alice")
	s.Require().NoError(err)
	s.Require().Len(statuses, 2)

	s.Empty(statuses[0].Violations)
	s.Require().Len(statuses[1].Violations, 1)
	s.Contains(statuses[1].Violations[0], "Valor Limit")
}
