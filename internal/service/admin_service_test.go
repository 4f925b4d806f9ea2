package service

import (
	"context"
	"errors"
	"testing"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/moderation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type adminFixture struct {
	svc      *AdminService
	users    *fakeUsers
	badges   *fakeBadges
	words    *fakeWords
	filter   *moderation.Filter
	stats    *fakeStats
	schedule *fakeSchedule
	notes    *fakeNotifications
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		users:    newFakeUsers(),
		badges:   newFakeBadges(),
		words:    newFakeWords(),
		filter:   moderation.NewFilter(nil),
		stats:    &fakeStats{},
		schedule: newFakeSchedule(),
		notes:    &fakeNotifications{},
	}
	c := newMemCache()
	badgeSvc := NewBadgeService(f.badges, c)
	if err := badgeSvc.Seed(context.Background()); err != nil {
		t.Fatal(err)
	}
	f.svc = NewAdminService(f.users, badgeSvc, f.words, f.filter, f.stats, f.schedule, NewNotificationService(f.notes), c)
	return f
}

func TestAdminService_BanRules(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	admin := f.users.add("Root", true)
	user := f.users.add("Troll", false)
	actor := Actor{ID: admin.ID, IsAdmin: true}

	if _, err := f.svc.Ban(ctx, actor, admin.ID, BanInput{Reason: "oops"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("self ban err = %v", err)
	}
	u, err := f.svc.Ban(ctx, actor, user.ID, BanInput{Reason: " spam "})
	if err != nil || !u.IsBanned || u.BannedReason != "spam" {
		t.Fatalf("Ban = %+v, %v", u, err)
	}
	if _, err := f.svc.Ban(ctx, actor, primitive.NewObjectID(), BanInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("ban missing err = %v", err)
	}
	u, err = f.svc.Unban(ctx, actor, user.ID)
	if err != nil || u.IsBanned || u.BannedReason != "" {
		t.Errorf("Unban = %+v, %v", u, err)
	}

	if _, err := f.svc.SetAdmin(ctx, actor, admin.ID, false); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("self demotion err = %v", err)
	}
	if u, err = f.svc.SetAdmin(ctx, actor, user.ID, true); err != nil || !u.IsAdmin {
		t.Errorf("promote = %+v, %v", u, err)
	}
}

func TestAdminService_CommunityRole(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	user := f.users.add("Fan", false)

	u, err := f.svc.SetCommunityRole(ctx, user.ID, " VIP ")
	if err != nil || u.CommunityRole != "vip" {
		t.Fatalf("SetCommunityRole = %+v, %v", u, err)
	}
	if _, err := f.svc.SetCommunityRole(ctx, user.ID, "overlord"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown role err = %v", err)
	}
}

func TestAdminService_StatsCached(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	for i := 0; i < 3; i++ {
		st, err := f.svc.Stats(ctx)
		if err != nil || st.TotalUsers != 1 {
			t.Fatalf("Stats = %+v, %v", st, err)
		}
	}
	if f.stats.calls != 1 {
		t.Errorf("collector called %d times, want 1", f.stats.calls)
	}
}

func TestAdminService_BannedWords(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	admin := f.users.add("Root", true)

	if err := f.svc.LoadBannedWords(ctx, []string{"Spam", "spam", ""}); err != nil {
		t.Fatal(err)
	}
	if words := f.filter.Words(); len(words) != 1 || words[0] != "spam" {
		t.Fatalf("filter after load = %v", words)
	}

	if _, err := f.svc.AddBannedWord(ctx, Actor{ID: admin.ID}, " Scam "); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.AddBannedWord(ctx, Actor{ID: admin.ID}, "scam"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate word err = %v", err)
	}
	if _, ok := f.filter.Check("total scam"); !ok {
		t.Error("filter not updated after add")
	}
	if err := f.svc.RemoveBannedWord(ctx, "SCAM"); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.filter.Check("total scam"); ok {
		t.Error("filter not updated after remove")
	}
	if err := f.svc.RemoveBannedWord(ctx, "never-added"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove missing err = %v", err)
	}
}

func TestAdminService_Notifications(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	admin := f.users.add("Root", true)
	fan := f.users.add("Fan", false)
	troll := f.users.add("Troll", false)
	_ = f.users.SetBanned(ctx, troll.ID, true, "", admin.CreatedAt)

	n, err := f.svc.Broadcast(ctx, Actor{ID: admin.ID, IsAdmin: true}, BroadcastInput{Message: "Maintenance tonight"})
	if err != nil || n != 2 {
		t.Fatalf("Broadcast = %d, %v", n, err)
	}
	if got := f.notes.forUser(troll.ID); len(got) != 0 {
		t.Errorf("banned user notified: %+v", got)
	}

	_ = f.schedule.Insert(ctx, &models.ScheduleSubscription{UserID: fan.ID, AnimeID: "21"})
	n, err = f.svc.NotifyEpisode(ctx, EpisodeNoticeInput{AnimeID: "21", EpisodeNumber: 1100, AnimeTitle: "One Piece"})
	if err != nil || n != 1 {
		t.Fatalf("NotifyEpisode = %d, %v", n, err)
	}
	got := f.notes.forUser(fan.ID)
	last := got[len(got)-1]
	if last.Type != models.NotificationEpisode || last.Link != "/watch/21?ep=1100" {
		t.Errorf("episode notification = %+v", last)
	}
}

func TestBadgeService(t *testing.T) {
	ctx := context.Background()
	store := newFakeBadges()
	svc := NewBadgeService(store, newMemCache())
	if err := svc.Seed(ctx); err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != len(models.SystemBadges()) {
		t.Fatalf("List = %d, %v", len(list), err)
	}
	_, _ = svc.List(ctx)
	if store.list != 1 {
		t.Errorf("store listed %d times, want 1 (cached)", store.list)
	}

	b, err := svc.Create(ctx, BadgeInput{RoleID: "Super-Fan", Name: "Super Fan", Order: 5})
	if err != nil || b.RoleID != "super-fan" || !b.IsActive {
		t.Fatalf("Create = %+v, %v", b, err)
	}
	if _, err := svc.Create(ctx, BadgeInput{RoleID: "super-fan", Name: "Again"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate roleId err = %v", err)
	}
	if _, err := svc.Create(ctx, BadgeInput{RoleID: "bad id!", Name: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad roleId err = %v", err)
	}
	if list, _ = svc.List(ctx); len(list) != len(models.SystemBadges())+1 {
		t.Errorf("cache not invalidated after create: %d", len(list))
	}

	admin, _ := store.FindByRoleID(ctx, "admin")
	if err := svc.Delete(ctx, admin.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete system badge err = %v", err)
	}
	if _, err := svc.Update(ctx, admin.ID, BadgeInput{RoleID: "root", Name: "Admin"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("rename system roleId err = %v", err)
	}
	if _, err := svc.Update(ctx, admin.ID, BadgeInput{RoleID: "admin", Name: "Staff", Color: "red"}); err != nil {
		t.Errorf("restyle system badge: %v", err)
	}
	if err := svc.Delete(ctx, b.ID); err != nil {
		t.Errorf("delete custom badge: %v", err)
	}
}
