package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"crimson-db/internal/db"

	"gorm.io/gorm"
)

var (
	alice = Principal{UserID: "user-alice", Email: "alice@example.com"}
	bob   = Principal{UserID: "user-bob", Email: "bob@example.com"}
)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	conn, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db.NewStore(conn)
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	return New(store, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func createTestGame(t *testing.T, svc *Service, title string) *Game {
	t.Helper()
	game, err := svc.CreateGame(context.Background(), alice, GameInput{Title: title, ReleaseDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return game
}

func expectKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

func TestParseID(t *testing.T) {
	cases := map[string]bool{
		"1":            true,
		" 42 ":         true,
		"":             false,
		"0":            false,
		"-3":           false,
		"not-a-number": false,
		"1.5":          false,
	}
	for raw, ok := range cases {
		id, err := ParseID(raw, "game")
		if ok && (err != nil || id <= 0) {
			t.Fatalf("expected %q to parse, got %d, %v", raw, id, err)
		}
		if !ok {
			expectKind(t, err, InvalidIdentifier)
			if Message(err) != "Invalid game ID" {
				t.Fatalf("unexpected message %q", Message(err))
			}
		}
	}
}

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		InvalidIdentifier:    400,
		MissingRequiredField: 400,
		EmptyUpdate:          400,
		InvalidReference:     400,
		Unauthorized:         401,
		Forbidden:            403,
		NotFound:             404,
		Conflict:             409,
		InternalError:        500,
	}
	for kind, status := range cases {
		if got := Status(kind); got != status {
			t.Fatalf("kind %s: expected %d, got %d", kind, status, got)
		}
	}
	if KindOf(errors.New("boom")) != InternalError {
		t.Fatalf("plain errors should be internal")
	}
}

func TestClassify(t *testing.T) {
	expectKind(t, classify(gorm.ErrRecordNotFound, "Game"), NotFound)
	expectKind(t, classify(errors.New("UNIQUE constraint failed: ratings.user_id"), "Rating"), Conflict)
	expectKind(t, classify(errors.New("FOREIGN KEY constraint failed"), "Map"), InvalidReference)
	expectKind(t, classify(errors.New("permission denied for table games"), "Game"), Forbidden)
	expectKind(t, classify(errors.New("connection reset"), "Game"), InternalError)
	if Message(classify(gorm.ErrRecordNotFound, "Story arc")) != "Story arc not found" {
		t.Fatalf("unexpected not found message")
	}
}

func TestFlattenCharacterDefaults(t *testing.T) {
	got := flattenCharacter(db.GameCharacter{GameID: 1, CharacterID: 9})
	want := CharacterSummary{CharacterID: 9, CharacterName: "Unknown"}
	if got != want {
		t.Fatalf("expected %#v, got %#v", want, got)
	}

	got = flattenCharacter(db.GameCharacter{
		GameID:      1,
		CharacterID: 9,
		Character:   &db.Character{CharacterID: 9, CharacterName: "Miriam", Backstory: "Orphan", EnglishVA: "Erica"},
	})
	if got.CharacterName != "Miriam" || got.Backstory != "Orphan" || got.EnglishVA != "Erica" {
		t.Fatalf("unexpected summary %#v", got)
	}
}

func TestFlattenContributorDefaults(t *testing.T) {
	got := flattenContributor(db.GameContributor{GameID: 1, ContributorID: 3, RoleID: 2})
	want := ContributorSummary{ContributorID: 3, ContributorName: "Unknown", RoleID: 2, RoleName: "Unknown"}
	if got != want {
		t.Fatalf("expected %#v, got %#v", want, got)
	}

	got = flattenContributor(db.GameContributor{
		ContributorID: 3,
		RoleID:        2,
		Contributor:   &db.Contributor{ContributorName: "Koji", Specialization: "Producer"},
		Role:          &db.Role{RoleID: 2, RoleName: "Director"},
	})
	if got.ContributorName != "Koji" || got.RoleName != "Director" || got.Specialization != "Producer" {
		t.Fatalf("unexpected summary %#v", got)
	}
}

func TestTranslatePatch(t *testing.T) {
	columns, err := gameFields.translate(map[string]any{
		"title":              " Foo ",
		"multiplayerSupport": true,
		"releaseDate":        "2020-02-02",
	})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if columns["title"] != "Foo" || columns["multiplayer_support"] != true {
		t.Fatalf("unexpected columns %#v", columns)
	}
	if _, ok := columns["release_date"]; !ok {
		t.Fatalf("expected release_date column")
	}

	_, err = gameFields.translate(map[string]any{})
	expectKind(t, err, EmptyUpdate)

	_, err = gameFields.translate(map[string]any{"gameid": 4})
	expectKind(t, err, MissingRequiredField)

	_, err = gameFields.translate(map[string]any{"title": "  "})
	expectKind(t, err, MissingRequiredField)

	_, err = gameFields.translate(map[string]any{"multiplayerSupport": "yes"})
	expectKind(t, err, MissingRequiredField)

	_, err = mapFields.translate(map[string]any{"gameID": 1.5})
	expectKind(t, err, MissingRequiredField)

	columns, err = storyArcFields.translate(map[string]any{"parentArcID": nil, "arcOrder": 2.5})
	if err != nil {
		t.Fatalf("translate arc: %v", err)
	}
	if v, ok := columns["parent_arc_id"]; !ok || v != nil {
		t.Fatalf("expected explicit nil parent, got %#v", columns)
	}
	if columns["arc_order"] != 2.5 {
		t.Fatalf("expected arc order 2.5, got %#v", columns["arc_order"])
	}
}

func TestGameRoundTrip(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()

	created, err := svc.CreateGame(ctx, alice, GameInput{
		Title:              "Foo",
		ReleaseDate:        "2024-01-01",
		PlotSummary:        "A castle appears.",
		GameCoverURL:       "https://img.example/cover.png",
		MultiplayerSupport: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.GameID == 0 {
		t.Fatalf("expected generated gameID")
	}

	detail, err := svc.GetGame(ctx, created.GameID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Game != *created {
		t.Fatalf("expected %#v, got %#v", *created, detail.Game)
	}
	if detail.ReleaseDate != "2024-01-01" {
		t.Fatalf("expected release date 2024-01-01, got %q", detail.ReleaseDate)
	}
	if detail.Characters == nil || detail.Maps == nil || detail.Mobs == nil || detail.StoryArcs == nil || detail.Contributors == nil {
		t.Fatalf("expected non-nil collections, got %#v", detail)
	}
}

func TestGetGameAssemblesRelations(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(t, store)
	ctx := context.Background()
	game := createTestGame(t, svc, "Bloodstained")

	character, err := svc.CreateCharacter(ctx, alice, CharacterInput{CharacterName: "Miriam", Backstory: "Shardbinder"})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	if _, err := svc.LinkCharacter(ctx, alice, game.GameID, character.CharacterID); err != nil {
		t.Fatalf("link character: %v", err)
	}
	if _, err := svc.CreateMap(ctx, alice, MapInput{MapName: "Galleon Minerva", GameID: game.GameID}); err != nil {
		t.Fatalf("create map: %v", err)
	}
	if _, err := svc.CreateMob(ctx, alice, MobInput{MobName: "Morte", GameID: game.GameID}); err != nil {
		t.Fatalf("create mob: %v", err)
	}
	if _, err := svc.CreateStoryArc(ctx, alice, StoryArcInput{ArcTitle: "Prologue", GameID: game.GameID, IsMainArc: true}); err != nil {
		t.Fatalf("create arc: %v", err)
	}
	if err := db.EnsureRoles(store.Conn(), "Producer"); err != nil {
		t.Fatalf("roles: %v", err)
	}
	roles, err := svc.ListRoles(ctx)
	if err != nil || len(roles) != 1 {
		t.Fatalf("expected one role, got %#v, %v", roles, err)
	}
	contributor, err := svc.CreateContributor(ctx, alice, ContributorInput{ContributorName: "Koji", Specialization: "Castlevania"})
	if err != nil {
		t.Fatalf("create contributor: %v", err)
	}
	if _, err := svc.LinkContributor(ctx, alice, game.GameID, ContributorLinkInput{ContributorID: contributor.ContributorID, RoleID: roles[0].RoleID}); err != nil {
		t.Fatalf("link contributor: %v", err)
	}

	detail, err := svc.GetGame(ctx, game.GameID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Characters) != 1 || detail.Characters[0].CharacterName != "Miriam" {
		t.Fatalf("unexpected characters %#v", detail.Characters)
	}
	if len(detail.Maps) != 1 || len(detail.Mobs) != 1 || len(detail.StoryArcs) != 1 {
		t.Fatalf("unexpected relations %#v", detail)
	}
	if len(detail.Contributors) != 1 || detail.Contributors[0].RoleName != "Producer" || detail.Contributors[0].ContributorName != "Koji" {
		t.Fatalf("unexpected contributors %#v", detail.Contributors)
	}
}

type countingStore struct {
	*db.Store
	secondaryCalls int
}

func (s *countingStore) GameMaps(ctx context.Context, id int64) ([]db.Map, error) {
	s.secondaryCalls++
	return s.Store.GameMaps(ctx, id)
}

func TestGetGameMissingSkipsSecondaryLookups(t *testing.T) {
	store := &countingStore{Store: newTestStore(t)}
	svc := newTestService(t, store)

	_, err := svc.GetGame(context.Background(), 404)
	expectKind(t, err, NotFound)
	if Message(err) != "Game not found" {
		t.Fatalf("unexpected message %q", Message(err))
	}
	if store.secondaryCalls != 0 {
		t.Fatalf("expected no secondary lookups, got %d", store.secondaryCalls)
	}
}

type failingStore struct {
	*db.Store
}

func (failingStore) GameCharacters(context.Context, int64) ([]db.GameCharacter, error) {
	return nil, errors.New("relation does not exist")
}

func (failingStore) GameMobs(ctx context.Context, _ int64) ([]db.Mob, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestGetGameDegradesFailedLookups(t *testing.T) {
	base := newTestStore(t)
	svc := New(failingStore{Store: base}, 50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	game, err := svc.CreateGame(ctx, alice, GameInput{Title: "Foo", ReleaseDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateMap(ctx, alice, MapInput{MapName: "Entrance", GameID: game.GameID}); err != nil {
		t.Fatalf("create map: %v", err)
	}

	detail, err := svc.GetGame(ctx, game.GameID)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if detail.Characters == nil || len(detail.Characters) != 0 {
		t.Fatalf("expected empty characters, got %#v", detail.Characters)
	}
	if detail.Mobs == nil || len(detail.Mobs) != 0 {
		t.Fatalf("expected empty mobs after timeout, got %#v", detail.Mobs)
	}
	if len(detail.Maps) != 1 {
		t.Fatalf("expected maps to survive sibling failures, got %#v", detail.Maps)
	}
}

func TestMutationsRequirePrincipal(t *testing.T) {
	store := &countingStore{Store: newTestStore(t)}
	svc := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.CreateGame(ctx, Principal{}, GameInput{Title: "Foo", ReleaseDate: "2024-01-01"})
	expectKind(t, err, Unauthorized)
	_, err = svc.UpdateRating(ctx, Principal{}, 1, map[string]any{"rating": 3})
	expectKind(t, err, Unauthorized)
	_, err = svc.DeleteMap(ctx, Principal{}, 1)
	expectKind(t, err, Unauthorized)

	games, err := svc.ListGames(ctx, ListOptions{})
	if err != nil || len(games) != 0 {
		t.Fatalf("expected no games inserted, got %#v, %v", games, err)
	}
}

func TestCreateValidatesBeforeInsert(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()

	_, err := svc.CreateGame(ctx, alice, GameInput{ReleaseDate: "2024-01-01"})
	expectKind(t, err, MissingRequiredField)
	if Message(err) != "Title and release date required" {
		t.Fatalf("unexpected message %q", Message(err))
	}
	_, err = svc.CreateGame(ctx, alice, GameInput{Title: "Foo", ReleaseDate: "January"})
	expectKind(t, err, MissingRequiredField)
	_, err = svc.CreateCharacter(ctx, alice, CharacterInput{CharacterName: " "})
	expectKind(t, err, MissingRequiredField)
	_, err = svc.CreateMob(ctx, alice, MobInput{MobName: "Slime"})
	expectKind(t, err, MissingRequiredField)

	games, err := svc.ListGames(ctx, ListOptions{})
	if err != nil || len(games) != 0 {
		t.Fatalf("expected no inserts, got %#v, %v", games, err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()
	game := createTestGame(t, svc, "Foo")

	updated, err := svc.UpdateGame(ctx, alice, game.GameID, map[string]any{"title": "Bar", "multiplayerSupport": true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Bar" || !updated.MultiplayerSupport || updated.ReleaseDate != "2024-01-01" {
		t.Fatalf("unexpected update %#v", updated)
	}

	_, err = svc.UpdateGame(ctx, alice, game.GameID, map[string]any{})
	expectKind(t, err, EmptyUpdate)
	_, err = svc.UpdateGame(ctx, alice, game.GameID+99, map[string]any{"title": "Nope"})
	expectKind(t, err, NotFound)

	result, err := svc.DeleteGame(ctx, alice, game.GameID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !result.Success || result.Count != 1 || result.Deleted == nil || result.Deleted.Title != "Bar" {
		t.Fatalf("unexpected delete result %#v", result)
	}

	result, err = svc.DeleteGame(ctx, alice, game.GameID)
	if err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if !result.Success || result.Count != 0 || result.Deleted != nil {
		t.Fatalf("expected empty delete result, got %#v", result)
	}
}

func TestListFiltersByGame(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()
	first := createTestGame(t, svc, "First")
	second := createTestGame(t, svc, "Second")
	for _, gameID := range []int64{first.GameID, first.GameID, second.GameID} {
		if _, err := svc.CreateMap(ctx, alice, MapInput{MapName: "Room", GameID: gameID}); err != nil {
			t.Fatalf("create map: %v", err)
		}
	}

	maps, err := svc.ListMaps(ctx, ListOptions{GameID: first.GameID})
	if err != nil || len(maps) != 2 {
		t.Fatalf("expected 2 maps, got %#v, %v", maps, err)
	}
	page, err := svc.ListMaps(ctx, ListOptions{Page: 2, PerPage: 2})
	if err != nil || len(page) != 1 {
		t.Fatalf("expected 1 map on page 2, got %#v, %v", page, err)
	}
}

func TestRatingsAreOwnerScoped(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(t, store)
	ctx := context.Background()
	game := createTestGame(t, svc, "Foo")

	score := 9.0
	rating, err := svc.CreateRating(ctx, alice, RatingInput{Rating: &score, GameID: game.GameID, Review: "Great"})
	if err != nil {
		t.Fatalf("create rating: %v", err)
	}
	if rating.UserID != alice.UserID {
		t.Fatalf("expected author %q, got %q", alice.UserID, rating.UserID)
	}

	_, err = svc.CreateRating(ctx, alice, RatingInput{Rating: &score, GameID: game.GameID})
	expectKind(t, err, Conflict)
	var count int64
	if err := store.Conn().Model(&db.Rating{}).Where("user_id = ? AND game_id = ?", alice.UserID, game.GameID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one rating row, got %d", count)
	}

	_, err = svc.UpdateRating(ctx, bob, rating.RatingID, map[string]any{"rating": 1.0})
	expectKind(t, err, Forbidden)
	_, err = svc.DeleteRating(ctx, bob, rating.RatingID)
	expectKind(t, err, Forbidden)
	_, err = svc.UpdateRating(ctx, alice, rating.RatingID, map[string]any{"userID": bob.UserID})
	expectKind(t, err, MissingRequiredField)

	updated, err := svc.UpdateRating(ctx, alice, rating.RatingID, map[string]any{"rating": 7.5})
	if err != nil {
		t.Fatalf("update rating: %v", err)
	}
	if updated.Rating != 7.5 || updated.UserID != alice.UserID {
		t.Fatalf("unexpected rating %#v", updated)
	}

	fetched, err := svc.GetRating(ctx, rating.RatingID)
	if err != nil {
		t.Fatalf("get rating: %v", err)
	}
	if *fetched != *updated {
		t.Fatalf("expected %#v, got %#v", *updated, *fetched)
	}

	result, err := svc.DeleteRating(ctx, alice, rating.RatingID)
	if err != nil || result.Count != 1 {
		t.Fatalf("expected rating deleted, got %#v, %v", result, err)
	}
}

func TestStoryArcParentMustShareGame(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()
	first := createTestGame(t, svc, "First")
	second := createTestGame(t, svc, "Second")

	root, err := svc.CreateStoryArc(ctx, alice, StoryArcInput{ArcTitle: "Root", GameID: first.GameID})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, err := svc.CreateStoryArc(ctx, alice, StoryArcInput{ArcTitle: "Child", GameID: first.GameID, ParentArcID: &root.ArcID, ArcOrder: 1.5})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.ParentArcID == nil || *child.ParentArcID != root.ArcID {
		t.Fatalf("expected parent %d, got %#v", root.ArcID, child.ParentArcID)
	}

	_, err = svc.CreateStoryArc(ctx, alice, StoryArcInput{ArcTitle: "Stray", GameID: second.GameID, ParentArcID: &root.ArcID})
	expectKind(t, err, InvalidReference)

	missing := int64(9999)
	_, err = svc.CreateStoryArc(ctx, alice, StoryArcInput{ArcTitle: "Orphan", GameID: first.GameID, ParentArcID: &missing})
	expectKind(t, err, InvalidReference)

	_, err = svc.UpdateStoryArc(ctx, alice, root.ArcID, map[string]any{"parentArcID": float64(root.ArcID)})
	expectKind(t, err, InvalidReference)

	other, err := svc.CreateStoryArc(ctx, alice, StoryArcInput{ArcTitle: "Elsewhere", GameID: second.GameID})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	_, err = svc.UpdateStoryArc(ctx, alice, child.ArcID, map[string]any{"parentArcID": float64(other.ArcID)})
	expectKind(t, err, InvalidReference)
	if Message(err) != "Parent story arc belongs to another game" {
		t.Fatalf("unexpected message %q", Message(err))
	}
	_, err = svc.UpdateStoryArc(ctx, alice, child.ArcID, map[string]any{"parentArcID": float64(424242)})
	expectKind(t, err, InvalidReference)

	grandchild, err := svc.CreateStoryArc(ctx, alice, StoryArcInput{ArcTitle: "Grandchild", GameID: first.GameID, ParentArcID: &child.ArcID})
	if err != nil {
		t.Fatalf("create grandchild: %v", err)
	}
	_, err = svc.UpdateStoryArc(ctx, alice, root.ArcID, map[string]any{"parentArcID": float64(grandchild.ArcID)})
	expectKind(t, err, InvalidReference)
	if Message(err) != "Story arc parents cannot form a cycle" {
		t.Fatalf("unexpected message %q", Message(err))
	}
	_, err = svc.UpdateStoryArc(ctx, alice, root.ArcID, map[string]any{"gameID": float64(second.GameID)})
	expectKind(t, err, InvalidReference)

	stored, err := svc.GetStoryArc(ctx, root.ArcID)
	if err != nil {
		t.Fatalf("get root: %v", err)
	}
	if stored.ParentArcID != nil || stored.GameID != first.GameID {
		t.Fatalf("rejected updates should leave the arc unchanged, got %#v", stored)
	}

	moved, err := svc.UpdateStoryArc(ctx, alice, grandchild.ArcID, map[string]any{"gameID": float64(second.GameID), "parentArcID": float64(other.ArcID)})
	if err != nil {
		t.Fatalf("move leaf arc: %v", err)
	}
	if moved.GameID != second.GameID || moved.ParentArcID == nil || *moved.ParentArcID != other.ArcID {
		t.Fatalf("unexpected moved arc %#v", moved)
	}
	cleared, err := svc.UpdateStoryArc(ctx, alice, child.ArcID, map[string]any{"parentArcID": nil})
	if err != nil || cleared.ParentArcID != nil {
		t.Fatalf("expected parent cleared, got %#v, %v", cleared, err)
	}
}

func TestChildRecordsRequireExistingGame(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.CreateMap(ctx, alice, MapInput{MapName: "Nowhere", GameID: 999})
	expectKind(t, err, InvalidReference)
	score := 5.0
	_, err = svc.CreateRating(ctx, alice, RatingInput{Rating: &score, GameID: 999})
	expectKind(t, err, InvalidReference)
	_, err = svc.CreateMob(ctx, alice, MobInput{MobName: "Bat", GameID: 999})
	expectKind(t, err, InvalidReference)

	var count int64
	if err := store.Conn().Model(&db.Map{}).Count(&count).Error; err != nil || count != 0 {
		t.Fatalf("expected no orphan maps, got %d, %v", count, err)
	}
}

func TestDeleteGameCascades(t *testing.T) {
	store := newTestStore(t)
	svc := newTestService(t, store)
	ctx := context.Background()
	game := createTestGame(t, svc, "Doomed")

	if _, err := svc.CreateMap(ctx, alice, MapInput{MapName: "Keep", GameID: game.GameID}); err != nil {
		t.Fatalf("create map: %v", err)
	}
	if _, err := svc.CreateStoryArc(ctx, alice, StoryArcInput{ArcTitle: "Prologue", GameID: game.GameID}); err != nil {
		t.Fatalf("create arc: %v", err)
	}
	score := 8.0
	if _, err := svc.CreateRating(ctx, alice, RatingInput{Rating: &score, GameID: game.GameID}); err != nil {
		t.Fatalf("create rating: %v", err)
	}
	character, err := svc.CreateCharacter(ctx, alice, CharacterInput{CharacterName: "Shanoa"})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	if _, err := svc.LinkCharacter(ctx, alice, game.GameID, character.CharacterID); err != nil {
		t.Fatalf("link: %v", err)
	}

	if _, err := svc.DeleteGame(ctx, alice, game.GameID); err != nil {
		t.Fatalf("delete game: %v", err)
	}
	for _, model := range []any{&db.Map{}, &db.StoryArc{}, &db.Rating{}, &db.GameCharacter{}} {
		var count int64
		if err := store.Conn().Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if count != 0 {
			t.Fatalf("expected %T rows removed with the game, got %d", model, count)
		}
	}
	if _, err := svc.GetCharacter(ctx, character.CharacterID); err != nil {
		t.Fatalf("character should outlive the game: %v", err)
	}
}

func TestLinkCharacterChecksParents(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()
	game := createTestGame(t, svc, "Foo")

	_, err := svc.LinkCharacter(ctx, alice, game.GameID, 77)
	expectKind(t, err, NotFound)

	character, err := svc.CreateCharacter(ctx, alice, CharacterInput{CharacterName: "Gebel"})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	if _, err := svc.LinkCharacter(ctx, alice, game.GameID, character.CharacterID); err != nil {
		t.Fatalf("link: %v", err)
	}
	_, err = svc.LinkCharacter(ctx, alice, game.GameID, character.CharacterID)
	expectKind(t, err, Conflict)

	result, err := svc.UnlinkCharacter(ctx, alice, game.GameID, character.CharacterID)
	if err != nil || result.Count != 1 {
		t.Fatalf("expected one unlinked row, got %#v, %v", result, err)
	}
	result, err = svc.UnlinkCharacter(ctx, alice, game.GameID, character.CharacterID)
	if err != nil || !result.Success || result.Count != 0 {
		t.Fatalf("expected idempotent unlink, got %#v, %v", result, err)
	}
}
