package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/moderation"
	"aniwatch-api/internal/repository"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory implementations of the store interfaces. They copy on the way in
// and out so services cannot mutate stored state by accident.

func setLikeIn(likes models.LikeSet, userID primitive.ObjectID, like bool) models.LikeSet {
	out := models.LikeSet{}
	for _, v := range likes {
		if v != userID {
			out = append(out, v)
		}
	}
	if like {
		out = append(out, userID)
	}
	return out
}

type fakeUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.UserDoc
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[primitive.ObjectID]models.UserDoc{}}
}

func (f *fakeUsers) add(name string, admin bool) *models.UserDoc {
	u := models.UserDoc{ID: primitive.NewObjectID(), Name: name, Email: strings.ToLower(name) + "@example.com", IsAdmin: admin}
	f.mu.Lock()
	f.byID[u.ID] = u
	f.mu.Unlock()
	return &u
}

func (f *fakeUsers) Insert(_ context.Context, u *models.UserDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.byID {
		if v.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.UserDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.byID {
		if v.Email == email {
			return &v, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.UserDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.byID[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (f *fakeUsers) mutate(id primitive.ObjectID, fn func(u *models.UserDoc)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, p repository.ProfileUpdate) error {
	return f.mutate(id, func(u *models.UserDoc) {
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.Avatar != nil {
			u.Avatar = *p.Avatar
		}
		if p.Bio != nil {
			u.Bio = *p.Bio
		}
	})
}

func (f *fakeUsers) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return f.mutate(id, func(u *models.UserDoc) { u.PasswordHash = hash })
}

func (f *fakeUsers) TouchLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return f.mutate(id, func(u *models.UserDoc) { u.LastLoginAt = &at })
}

func (f *fakeUsers) SetBanned(_ context.Context, id primitive.ObjectID, banned bool, reason string, at time.Time) error {
	return f.mutate(id, func(u *models.UserDoc) {
		u.IsBanned = banned
		u.BannedReason = reason
		if banned {
			u.BannedAt = &at
		} else {
			u.BannedAt = nil
		}
	})
}

func (f *fakeUsers) SetAdmin(_ context.Context, id primitive.ObjectID, admin bool) error {
	return f.mutate(id, func(u *models.UserDoc) { u.IsAdmin = admin })
}

func (f *fakeUsers) SetCommunityRole(_ context.Context, id primitive.ObjectID, role string) error {
	return f.mutate(id, func(u *models.UserDoc) { u.CommunityRole = role })
}

func (f *fakeUsers) Search(_ context.Context, flt models.UserFilter) ([]models.UserDoc, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.UserDoc{}
	for _, u := range f.byID {
		if flt.Status == "banned" && !u.IsBanned || flt.Status == "admin" && !u.IsAdmin {
			continue
		}
		if flt.Query != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(flt.Query)) {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) ActiveIDs(context.Context) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []primitive.ObjectID
	for id, u := range f.byID {
		if !u.IsBanned {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeComments struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{byID: map[primitive.ObjectID]models.Comment{}}
}

func (f *fakeComments) Insert(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeComments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byID[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeComments) List(_ context.Context, flt models.CommentFilter) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.byID {
		if c.IsDeleted || flt.AnimeID != "" && c.AnimeID != flt.AnimeID {
			continue
		}
		if flt.ParentID != nil && (c.ParentID == nil || *c.ParentID != *flt.ParentID) {
			continue
		}
		if flt.TopLevel && c.ParentID != nil {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeComments) UpdateContent(_ context.Context, id primitive.ObjectID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Content, c.IsEdited = content, true
	f.byID[id] = c
	return nil
}

func (f *fakeComments) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsDeleted = true
	f.byID[id] = c
	return nil
}

func (f *fakeComments) SetLike(_ context.Context, id, userID primitive.ObjectID, like bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok || c.IsDeleted {
		return 0, repository.ErrNotFound
	}
	c.Likes = setLikeIn(c.Likes, userID, like)
	f.byID[id] = c
	return len(c.Likes), nil
}

type fakeDiscussions struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Discussion
}

func newFakeDiscussions() *fakeDiscussions {
	return &fakeDiscussions{byID: map[primitive.ObjectID]models.Discussion{}}
}

func (f *fakeDiscussions) Insert(_ context.Context, d *models.Discussion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	f.byID[d.ID] = *d
	return nil
}

func (f *fakeDiscussions) FindByID(_ context.Context, id primitive.ObjectID) (*models.Discussion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.byID[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *fakeDiscussions) List(_ context.Context, flt models.DiscussionFilter) ([]models.Discussion, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Discussion{}
	for _, d := range f.byID {
		if d.IsDeleted || flt.Category != "" && d.Category != flt.Category {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, int64(len(out)), nil
}

func (f *fakeDiscussions) mutate(id primitive.ObjectID, fn func(d *models.Discussion)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&d)
	f.byID[id] = d
	return nil
}

func (f *fakeDiscussions) Update(_ context.Context, id primitive.ObjectID, u repository.DiscussionUpdate) error {
	return f.mutate(id, func(d *models.Discussion) {
		if u.Title != nil {
			d.Title = *u.Title
		}
		if u.Content != nil {
			d.Content = *u.Content
		}
		if u.Category != nil {
			d.Category = *u.Category
		}
		if u.Tags != nil {
			d.Tags = u.Tags
		}
		d.IsEdited = true
	})
}

func (f *fakeDiscussions) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	return f.mutate(id, func(d *models.Discussion) { d.IsDeleted = true })
}

func (f *fakeDiscussions) IncViews(_ context.Context, id primitive.ObjectID) error {
	return f.mutate(id, func(d *models.Discussion) { d.Views++ })
}

func (f *fakeDiscussions) AdjustReplyCount(_ context.Context, id primitive.ObjectID, delta int) error {
	return f.mutate(id, func(d *models.Discussion) { d.ReplyCount += delta })
}

func (f *fakeDiscussions) SetPinned(_ context.Context, id primitive.ObjectID, pinned bool) error {
	return f.mutate(id, func(d *models.Discussion) { d.IsPinned = pinned })
}

func (f *fakeDiscussions) SetLocked(_ context.Context, id primitive.ObjectID, locked bool) error {
	return f.mutate(id, func(d *models.Discussion) { d.IsLocked = locked })
}

func (f *fakeDiscussions) SetLike(_ context.Context, id, userID primitive.ObjectID, like bool) (int, error) {
	n := 0
	err := f.mutate(id, func(d *models.Discussion) {
		d.Likes = setLikeIn(d.Likes, userID, like)
		n = len(d.Likes)
	})
	return n, err
}

type fakeReplies struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.DiscussionReply
}

func newFakeReplies() *fakeReplies {
	return &fakeReplies{byID: map[primitive.ObjectID]models.DiscussionReply{}}
}

func (f *fakeReplies) Insert(_ context.Context, r *models.DiscussionReply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	f.byID[r.ID] = *r
	return nil
}

func (f *fakeReplies) FindByID(_ context.Context, id primitive.ObjectID) (*models.DiscussionReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byID[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeReplies) ListByDiscussion(_ context.Context, discussionID primitive.ObjectID) ([]models.DiscussionReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.DiscussionReply{}
	for _, r := range f.byID {
		if !r.IsDeleted && r.DiscussionID == discussionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReplies) mutate(id primitive.ObjectID, fn func(r *models.DiscussionReply)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&r)
	f.byID[id] = r
	return nil
}

func (f *fakeReplies) UpdateContent(_ context.Context, id primitive.ObjectID, content string) error {
	return f.mutate(id, func(r *models.DiscussionReply) { r.Content, r.IsEdited = content, true })
}

func (f *fakeReplies) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	return f.mutate(id, func(r *models.DiscussionReply) { r.IsDeleted = true })
}

func (f *fakeReplies) SoftDeleteByDiscussion(_ context.Context, discussionID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, r := range f.byID {
		if r.DiscussionID == discussionID && !r.IsDeleted {
			r.IsDeleted = true
			f.byID[id] = r
			n++
		}
	}
	return n, nil
}

func (f *fakeReplies) SetLike(_ context.Context, id, userID primitive.ObjectID, like bool) (int, error) {
	n := 0
	err := f.mutate(id, func(r *models.DiscussionReply) {
		r.Likes = setLikeIn(r.Likes, userID, like)
		n = len(r.Likes)
	})
	return n, err
}

type fakeReviews struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{byID: map[primitive.ObjectID]models.Review{}}
}

func (f *fakeReviews) Insert(_ context.Context, r *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.byID {
		if !ex.IsDeleted && ex.UserID == r.UserID && ex.AnimeID == r.AnimeID {
			return repository.ErrDuplicate
		}
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	f.byID[r.ID] = *r
	return nil
}

func (f *fakeReviews) FindByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byID[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeReviews) FindLive(_ context.Context, userID primitive.ObjectID, animeID string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byID {
		if !r.IsDeleted && r.UserID == userID && r.AnimeID == animeID {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeReviews) List(_ context.Context, flt models.ReviewFilter) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Review{}
	for _, r := range f.byID {
		if r.IsDeleted || flt.AnimeID != "" && r.AnimeID != flt.AnimeID {
			continue
		}
		if flt.UserID != nil && r.UserID != *flt.UserID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReviews) mutate(id primitive.ObjectID, fn func(r *models.Review)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&r)
	f.byID[id] = r
	return nil
}

func (f *fakeReviews) Update(_ context.Context, id primitive.ObjectID, u repository.ReviewUpdate) error {
	return f.mutate(id, func(r *models.Review) {
		if u.Rating != nil {
			r.Rating = *u.Rating
		}
		if u.Title != nil {
			r.Title = *u.Title
		}
		if u.Content != nil {
			r.Content = *u.Content
		}
		if u.HasSpoilers != nil {
			r.HasSpoilers = *u.HasSpoilers
		}
		r.IsEdited = true
	})
}

func (f *fakeReviews) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	return f.mutate(id, func(r *models.Review) { r.IsDeleted = true })
}

func (f *fakeReviews) SetLike(_ context.Context, id, userID primitive.ObjectID, like bool) (int, error) {
	n := 0
	err := f.mutate(id, func(r *models.Review) {
		r.Likes = setLikeIn(r.Likes, userID, like)
		n = len(r.Likes)
	})
	return n, err
}

type fakeAnimeStats struct {
	mu   sync.Mutex
	byID map[string]models.AnimeStats
	tops int
}

func newFakeAnimeStats() *fakeAnimeStats {
	return &fakeAnimeStats{byID: map[string]models.AnimeStats{}}
}

func (f *fakeAnimeStats) Get(_ context.Context, animeID string) (*models.AnimeStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byID[animeID]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeAnimeStats) IncRating(_ context.Context, animeID, animeTitle string, sumDelta, countDelta int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.byID[animeID]
	s.AnimeID = animeID
	if animeTitle != "" {
		s.AnimeTitle = animeTitle
	}
	rs := &s.RatingStats
	rs.Sum += sumDelta
	rs.Count += countDelta
	if rs.Count <= 0 {
		rs.Sum, rs.Count, rs.Average = 0, 0, 0
	} else {
		rs.Average = float64(rs.Sum) / float64(rs.Count)
	}
	rs.LastRatedAt = &at
	f.byID[animeID] = s
	return nil
}

func (f *fakeAnimeStats) IncCommentCount(_ context.Context, animeID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.byID[animeID]
	s.AnimeID = animeID
	s.CommentCount += delta
	f.byID[animeID] = s
	return nil
}

func (f *fakeAnimeStats) Top(_ context.Context, metric string, limit int) ([]models.AnimeStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tops++
	out := []models.AnimeStats{}
	for _, s := range f.byID {
		if s.RatingStats.Count > 0 {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if metric == "rating" {
			return out[i].RatingStats.Average > out[j].RatingStats.Average
		}
		return out[i].RatingStats.Count > out[j].RatingStats.Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeBadges struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Badge
	list int
}

func newFakeBadges() *fakeBadges {
	return &fakeBadges{byID: map[primitive.ObjectID]models.Badge{}}
}

func (f *fakeBadges) List(_ context.Context, activeOnly bool) ([]models.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list++
	out := []models.Badge{}
	for _, b := range f.byID {
		if activeOnly && !b.IsActive {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeBadges) FindByID(_ context.Context, id primitive.ObjectID) (*models.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.byID[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (f *fakeBadges) FindByRoleID(_ context.Context, roleID string) (*models.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byID {
		if b.RoleID == roleID {
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeBadges) Insert(_ context.Context, b *models.Badge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.byID {
		if v.RoleID == b.RoleID {
			return repository.ErrDuplicate
		}
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	f.byID[b.ID] = *b
	return nil
}

func (f *fakeBadges) Replace(_ context.Context, b *models.Badge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[b.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[b.ID] = *b
	return nil
}

func (f *fakeBadges) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeBadges) SeedSystem(ctx context.Context, badges []models.Badge) (int, error) {
	n := 0
	for _, b := range badges {
		b.IsSystem, b.IsActive = true, true
		if err := f.Insert(ctx, &b); err == nil {
			n++
		}
	}
	return n, nil
}

type fakeNotifications struct {
	mu   sync.Mutex
	list []models.Notification
}

func (f *fakeNotifications) Insert(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	f.list = append(f.list, *n)
	return nil
}

func (f *fakeNotifications) InsertMany(ctx context.Context, ns []models.Notification) (int, error) {
	for i := range ns {
		_ = f.Insert(ctx, &ns[i])
	}
	return len(ns), nil
}

func (f *fakeNotifications) forUser(userID primitive.ObjectID) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.list {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeNotifications) List(_ context.Context, userID primitive.ObjectID, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range f.forUser(userID) {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotifications) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var c int64
	for _, n := range f.forUser(userID) {
		if !n.IsRead {
			c++
		}
	}
	return c, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.list {
		if n.ID == id && n.UserID == userID {
			f.list[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var c int64
	for i, n := range f.list {
		if n.UserID == userID && !n.IsRead {
			f.list[i].IsRead = true
			c++
		}
	}
	return c, nil
}

func (f *fakeNotifications) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.list {
		if n.ID == id && n.UserID == userID {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeNotifications) DeleteAll(_ context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.list[:0]
	var c int64
	for _, n := range f.list {
		if n.UserID == userID {
			c++
			continue
		}
		kept = append(kept, n)
	}
	f.list = kept
	return c, nil
}

type scheduleKey struct {
	user  primitive.ObjectID
	anime string
}

type fakeSchedule struct {
	mu   sync.Mutex
	subs map[scheduleKey]models.ScheduleSubscription
}

func newFakeSchedule() *fakeSchedule {
	return &fakeSchedule{subs: map[scheduleKey]models.ScheduleSubscription{}}
}

func (f *fakeSchedule) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.ScheduleSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ScheduleSubscription{}
	for k, s := range f.subs {
		if k.user == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSchedule) Find(_ context.Context, userID primitive.ObjectID, animeID string) (*models.ScheduleSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.subs[scheduleKey{userID, animeID}]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSchedule) Insert(_ context.Context, s *models.ScheduleSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := scheduleKey{s.UserID, s.AnimeID}
	if _, ok := f.subs[k]; ok {
		return repository.ErrDuplicate
	}
	f.subs[k] = *s
	return nil
}

func (f *fakeSchedule) Delete(_ context.Context, userID primitive.ObjectID, animeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := scheduleKey{userID, animeID}
	_, ok := f.subs[k]
	delete(f.subs, k)
	return ok, nil
}

func (f *fakeSchedule) SubscriberIDs(_ context.Context, animeID string) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []primitive.ObjectID
	for k := range f.subs {
		if k.anime == animeID {
			ids = append(ids, k.user)
		}
	}
	return ids, nil
}

type progressKey struct {
	user  primitive.ObjectID
	anime string
	ep    int
}

type fakeProgress struct {
	mu sync.Mutex
	m  map[progressKey]models.WatchProgress
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{m: map[progressKey]models.WatchProgress{}}
}

func (f *fakeProgress) Upsert(_ context.Context, p *models.WatchProgress) (*models.WatchProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := progressKey{p.UserID, p.AnimeID, p.EpisodeNumber}
	stored := *p
	if prev, ok := f.m[k]; ok {
		stored.ID = prev.ID
	} else {
		stored.ID = primitive.NewObjectID()
	}
	f.m[k] = stored
	return &stored, nil
}

func (f *fakeProgress) ListRecent(_ context.Context, userID primitive.ObjectID, limit int) ([]models.WatchProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.WatchProgress{}
	for k, p := range f.m {
		if k.user == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProgress) ListByAnime(_ context.Context, userID primitive.ObjectID, animeID string) ([]models.WatchProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.WatchProgress{}
	for k, p := range f.m {
		if k.user == userID && k.anime == animeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProgress) Get(_ context.Context, userID primitive.ObjectID, animeID string, episode int) (*models.WatchProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.m[progressKey{userID, animeID, episode}]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeProgress) DeleteByAnime(_ context.Context, userID primitive.ObjectID, animeID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.m {
		if k.user == userID && k.anime == animeID {
			delete(f.m, k)
			n++
		}
	}
	return n, nil
}

// fakeInteractions stores JSON so nothing is shared between calls.
type fakeInteractions struct {
	mu sync.Mutex
	m  map[primitive.ObjectID][]byte
}

func newFakeInteractions() *fakeInteractions {
	return &fakeInteractions{m: map[primitive.ObjectID][]byte{}}
}

func (f *fakeInteractions) Get(_ context.Context, userID primitive.ObjectID) (*models.AnimeInteraction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.m[userID]
	if !ok {
		return nil, nil
	}
	var a models.AnimeInteraction
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	a.Normalize()
	return &a, nil
}

func (f *fakeInteractions) Save(_ context.Context, a *models.AnimeInteraction) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.m[a.UserID] = raw
	f.mu.Unlock()
	return nil
}

type fakeWords struct {
	mu    sync.Mutex
	words map[string]models.BannedWord
}

func newFakeWords() *fakeWords {
	return &fakeWords{words: map[string]models.BannedWord{}}
}

func (f *fakeWords) List(context.Context) ([]models.BannedWord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.BannedWord{}
	for _, w := range f.words {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out, nil
}

func (f *fakeWords) Insert(_ context.Context, w *models.BannedWord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.words[w.Word]; ok {
		return repository.ErrDuplicate
	}
	f.words[w.Word] = *w
	return nil
}

func (f *fakeWords) Delete(_ context.Context, word string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.words[word]; !ok {
		return repository.ErrNotFound
	}
	delete(f.words, word)
	return nil
}

type fakeStats struct {
	calls int
}

func (f *fakeStats) Collect(_ context.Context, now time.Time) (*models.AdminStats, error) {
	f.calls++
	return &models.AdminStats{TotalUsers: int64(f.calls), GeneratedAt: now}, nil
}

// memCache is a map-backed cache.Store.
type memCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{m: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	raw, ok := c.m[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.m[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.m, k)
	}
	return nil
}

func newGuard(words ...string) *ContentGuard {
	return NewContentGuard(moderation.NewFilter(words))
}
