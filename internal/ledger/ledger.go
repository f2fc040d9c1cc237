// Package ledger keeps the per-user record of recipe interactions: which
// recipes were viewed, cooked and marked as favorite, and when.
//
// A Ledger mirrors its records to a storage.KV under a single key after
// every mutation. Storage problems are logged and never returned: a ledger
// whose store fails keeps working in memory for the rest of its life.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/runnerr0/recipeledger/internal/storage"
)

// DefaultKey is the storage key the ledger payload lives under.
const DefaultKey = "recipeHistory"

// DefaultTopN is the number of entries in UsageStats.TopRecipes.
const DefaultTopN = 5

// ErrInvalidRecipeID is returned for an empty or blank recipe id.
var ErrInvalidRecipeID = errors.New("recipe id must not be empty")

// Auditor receives one entry per successful mutation.
type Auditor interface {
	RecordAudit(ctx context.Context, entry storage.AuditEntry) error
}

// Ledger is the usage ledger. It is safe for concurrent use; every
// operation, including its storage write, runs under one lock.
type Ledger struct {
	mu      sync.Mutex
	records []UsageRecord
	index   map[string]int

	kv       storage.KV
	key      string
	degraded bool

	auditor   Auditor
	log       logrus.FieldLogger
	now       func() time.Time
	topN      int
	favUpsert bool
	sessionID string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithKey sets the storage key.
func WithKey(key string) Option {
	return func(l *Ledger) { l.key = key }
}

// WithLogger sets the logger used for swallowed storage errors.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithTopN sets how many recipes UsageStats ranks.
func WithTopN(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.topN = n
		}
	}
}

// WithFavoriteCreatesRecord controls whether ToggleFavorite on an unknown
// recipe creates a record (true, the default) or does nothing.
func WithFavoriteCreatesRecord(create bool) Option {
	return func(l *Ledger) { l.favUpsert = create }
}

// WithAuditor records every mutation with a.
func WithAuditor(a Auditor) Option {
	return func(l *Ledger) { l.auditor = a }
}

// New builds a ledger backed by kv and loads whatever is stored under its
// key. A nil kv gives a memory-only ledger. A corrupt payload is logged
// and ignored; a failing store puts the ledger in memory-only mode.
func New(ctx context.Context, kv storage.KV, opts ...Option) *Ledger {
	l := &Ledger{
		index:     make(map[string]int),
		kv:        kv,
		key:       DefaultKey,
		now:       time.Now,
		topN:      DefaultTopN,
		favUpsert: true,
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logrus.StandardLogger()
	}
	l.log = l.log.WithField("session_id", l.sessionID)

	if kv == nil {
		l.degraded = true
		return l
	}
	l.load(ctx)
	return l
}

func (l *Ledger) load(ctx context.Context) {
	log := l.log.WithField("key", l.key)

	data, ok, err := l.kv.Get(ctx, l.key)
	if err != nil {
		// Writing after a failed read would clobber whatever is stored.
		log.WithError(err).Error("Failed to read usage ledger, continuing in memory only")
		l.degraded = true
		return
	}
	if !ok {
		return
	}

	records, version, err := decode(data)
	if err != nil {
		log.WithError(err).Warn("Stored usage ledger is unreadable, starting empty")
		return
	}
	if version != payloadVersion {
		log.WithField("version", version).Info("Loaded legacy usage ledger; it will be rewritten on the next change")
	}

	l.records = records
	l.reindex()
}

func (l *Ledger) reindex() {
	l.index = make(map[string]int, len(l.records))
	for i, r := range l.records {
		l.index[r.RecipeID] = i
	}
}

// persist writes the whole ledger. Must be called with mu held.
func (l *Ledger) persist(ctx context.Context) {
	if l.degraded {
		return
	}
	data, err := encode(l.records)
	if err == nil {
		err = l.kv.Put(ctx, l.key, data)
	}
	if err != nil {
		l.log.WithField("key", l.key).WithError(err).Error("Failed to save usage ledger, continuing in memory only")
		l.degraded = true
	}
}

func (l *Ledger) audit(ctx context.Context, action, recipeID, detail string) {
	if l.auditor == nil {
		return
	}
	err := l.auditor.RecordAudit(ctx, storage.AuditEntry{
		Action:    action,
		RecipeID:  recipeID,
		Detail:    detail,
		SessionID: l.sessionID,
		Timestamp: l.now(),
	})
	if err != nil {
		l.log.WithField("recipe_id", recipeID).WithError(err).Warn("Failed to record audit entry")
	}
}

func normalizeID(recipeID string) (string, error) {
	id := strings.TrimSpace(recipeID)
	if id == "" {
		return "", ErrInvalidRecipeID
	}
	return id, nil
}

// touch refreshes the recency and title of r. LastViewed never moves
// backward.
func touch(r *UsageRecord, title string, now time.Time) {
	if now.After(r.LastViewed) {
		r.LastViewed = now
	}
	if t := strings.TrimSpace(title); t != "" {
		r.Title = t
	}
}

// upsert returns the record for id, creating it with ViewCount 1 if it
// does not exist. The pointer is valid until the next append.
func (l *Ledger) upsert(id, title string, now time.Time) (*UsageRecord, bool) {
	if i, ok := l.index[id]; ok {
		rec := &l.records[i]
		touch(rec, title, now)
		return rec, false
	}
	l.records = append(l.records, UsageRecord{
		RecipeID:   id,
		Title:      strings.TrimSpace(title),
		LastViewed: now,
		ViewCount:  1,
	})
	l.index[id] = len(l.records) - 1
	return &l.records[len(l.records)-1], true
}

// TrackView records that the recipe was viewed.
func (l *Ledger) TrackView(ctx context.Context, recipeID, title string) (UsageRecord, error) {
	id, err := normalizeID(recipeID)
	if err != nil {
		return UsageRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, created := l.upsert(id, title, l.now())
	if !created {
		rec.ViewCount++
	}
	out := *rec

	l.persist(ctx)
	l.audit(ctx, ActionView, id, out.Title)
	return out, nil
}

// TrackCooked records that the recipe was cooked. A recipe cooked before
// it was ever viewed counts as viewed once.
func (l *Ledger) TrackCooked(ctx context.Context, recipeID, title string) (UsageRecord, error) {
	id, err := normalizeID(recipeID)
	if err != nil {
		return UsageRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, _ := l.upsert(id, title, l.now())
	rec.CookCount++
	rec.Cooked = true
	out := *rec

	l.persist(ctx)
	l.audit(ctx, ActionCook, id, out.Title)
	return out, nil
}

// ToggleFavorite flips the favorite flag and returns the new value. For an
// unknown recipe it either creates a favorited record or, if the ledger
// was built with WithFavoriteCreatesRecord(false), does nothing and
// returns false.
func (l *Ledger) ToggleFavorite(ctx context.Context, recipeID string) (bool, error) {
	id, err := normalizeID(recipeID)
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var rec *UsageRecord
	if i, ok := l.index[id]; ok {
		rec = &l.records[i]
		rec.Favorite = !rec.Favorite
	} else {
		if !l.favUpsert {
			return false, nil
		}
		rec, _ = l.upsert(id, "", l.now())
		rec.Favorite = true
	}
	fav := rec.Favorite

	l.persist(ctx)
	action := ActionFavorite
	if !fav {
		action = ActionUnfavorite
	}
	l.audit(ctx, action, id, "")
	return fav, nil
}

// Forget removes a single recipe from the ledger and reports whether it
// was present.
func (l *Ledger) Forget(ctx context.Context, recipeID string) (bool, error) {
	id, err := normalizeID(recipeID)
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[id]
	if !ok {
		return false, nil
	}
	l.records = slices.Delete(l.records, i, i+1)
	l.reindex()

	l.persist(ctx)
	l.audit(ctx, ActionForget, id, "")
	return true, nil
}

// ClearHistory removes every record and the stored payload.
func (l *Ledger) ClearHistory(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.records)
	l.records = nil
	l.reindex()

	if !l.degraded {
		if err := l.kv.Delete(ctx, l.key); err != nil {
			l.log.WithField("key", l.key).WithError(err).Error("Failed to delete usage ledger, continuing in memory only")
			l.degraded = true
		}
	}
	l.audit(ctx, ActionClear, "", fmt.Sprintf("%d records", n))
}

// Get returns the record for recipeID.
func (l *Ledger) Get(recipeID string) (UsageRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[strings.TrimSpace(recipeID)]
	if !ok {
		return UsageRecord{}, false
	}
	return l.records[i], true
}

// History returns every record, most recently viewed first. Records with
// the same LastViewed keep the order they were first seen in.
func (l *Ledger) History() []UsageRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return byRecency(slices.Clone(l.records))
}

// Favorites returns the favorited records in the order they were first seen.
func (l *Ledger) Favorites() []UsageRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return lo.Filter(l.records, func(r UsageRecord, _ int) bool { return r.Favorite })
}

// RecentlyCooked returns the cooked records, most recent first.
func (l *Ledger) RecentlyCooked() []UsageRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return byRecency(lo.Filter(l.records, func(r UsageRecord, _ int) bool { return r.Cooked }))
}

// UsageStats aggregates the ledger.
func (l *Ledger) UsageStats() UsageStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	ranked := slices.Clone(l.records)
	slices.SortStableFunc(ranked, func(a, b UsageRecord) int { return b.ViewCount - a.ViewCount })
	if len(ranked) > l.topN {
		ranked = ranked[:l.topN]
	}

	return UsageStats{
		TotalViews:      lo.SumBy(l.records, func(r UsageRecord) int { return r.ViewCount }),
		TotalCooks:      lo.SumBy(l.records, func(r UsageRecord) int { return r.CookCount }),
		DistinctRecipes: len(l.records),
		FavoriteCount:   lo.CountBy(l.records, func(r UsageRecord) bool { return r.Favorite }),
		TopRecipes: lo.Map(ranked, func(r UsageRecord, _ int) RecipeCount {
			return RecipeCount{RecipeID: r.RecipeID, Title: r.Title, ViewCount: r.ViewCount, CookCount: r.CookCount}
		}),
	}
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Degraded reports whether the ledger has stopped writing to storage.
func (l *Ledger) Degraded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.degraded
}

// SessionID identifies this ledger instance in audit entries and logs.
func (l *Ledger) SessionID() string {
	return l.sessionID
}

func byRecency(records []UsageRecord) []UsageRecord {
	if records == nil {
		records = []UsageRecord{}
	}
	slices.SortStableFunc(records, func(a, b UsageRecord) int { return b.LastViewed.Compare(a.LastViewed) })
	return records
}
