package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"chefsnap/internal/logger"
)

// StorageKey is the key under which the whole mapping is persisted.
const StorageKey = "allRecipes"

// KeyValue is the durable string-keyed storage the Store writes through to.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store owns the mapping from recipe name to Recipe. Content is replaced
// on regeneration while likes, flags and comments carry over. Every
// mutation is written through to the KeyValue backend.
type Store struct {
	mu      sync.RWMutex
	recipes map[string]Recipe
	order   []string // first-insertion order, for stable listings
	active  string
	kv      KeyValue
	now     func() time.Time
	log     *logger.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the clock used to stamp comments.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore creates an empty Store backed by kv. Call Load to restore
// previously persisted recipes.
func NewStore(kv KeyValue, opts ...StoreOption) *Store {
	s := &Store{
		recipes: make(map[string]Recipe),
		kv:      kv,
		now:     time.Now,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory mapping with the persisted one. A missing
// key or a corrupt blob leaves the Store empty; only a backend failure
// is returned as an error.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("failed to read stored recipes: %w", err)
	}

	loaded := make(map[string]Recipe)
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			s.log.Warn("discarding corrupt stored recipes: %v", err)
			loaded = nil
		}
	}
	if loaded == nil {
		loaded = make(map[string]Recipe)
	}

	names := make([]string, 0, len(loaded))
	for name, r := range loaded {
		if name == "" || r.RecipeName != name {
			s.log.Warn("discarding stored recipe with mismatched key %q", name)
			delete(loaded, name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = loaded
	s.order = names
	s.active = ""
	s.log.Debug("restored %d recipes", len(loaded))
	return nil
}

// UpsertGenerated stores freshly generated content. A new name starts
// with zero interaction state; an existing name keeps its likes, flags
// and comments. The result becomes the active recipe.
func (s *Store) UpsertGenerated(ctx context.Context, c Content) (Recipe, error) {
	c.Normalize()
	if c.RecipeName == "" {
		return Recipe{}, fmt.Errorf("%w: missing recipeName", ErrInvalidRecipe)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *Recipe
	if r, ok := s.recipes[c.RecipeName]; ok {
		existing = &r
	} else {
		s.order = append(s.order, c.RecipeName)
	}
	merged := Merge(c, existing)
	s.recipes[merged.RecipeName] = merged
	s.active = merged.RecipeName
	s.log.Debug("upserted recipe %q (existing=%t)", merged.RecipeName, existing != nil)

	return merged.Clone(), s.persistLocked(ctx)
}

// ToggleLike flips the liked flag and moves the counter with it. The
// counter never goes below zero. The bool is false when name is unknown,
// in which case nothing changes.
func (s *Store) ToggleLike(ctx context.Context, name string) (Recipe, bool, error) {
	return s.update(ctx, name, func(r *Recipe) error {
		r.IsLiked = !r.IsLiked
		if r.IsLiked {
			r.Likes++
		} else {
			r.Likes = max(0, r.Likes-1)
		}
		return nil
	})
}

// ToggleSave flips the saved flag only.
func (s *Store) ToggleSave(ctx context.Context, name string) (Recipe, bool, error) {
	return s.update(ctx, name, func(r *Recipe) error {
		r.IsSaved = !r.IsSaved
		return nil
	})
}

// AddComment appends a comment stamped with the current time. Existing
// comments are never touched.
func (s *Store) AddComment(ctx context.Context, name, author, text string) (Recipe, bool, error) {
	author = strings.TrimSpace(author)
	text = strings.TrimSpace(text)
	if author == "" {
		return Recipe{}, false, ErrAnonymousComment
	}
	if text == "" {
		return Recipe{}, false, ErrEmptyComment
	}
	return s.update(ctx, name, func(r *Recipe) error {
		r.Comments = append(r.Comments, NewComment(author, text, s.now()))
		return nil
	})
}

func (s *Store) update(ctx context.Context, name string, fn func(*Recipe) error) (Recipe, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.recipes[name]
	if !ok {
		s.log.Debug("ignoring update for unknown recipe %q", name)
		return Recipe{}, false, nil
	}

	updated := current.Clone()
	if err := fn(&updated); err != nil {
		return current.Clone(), true, err
	}
	s.recipes[name] = updated

	return updated.Clone(), true, s.persistLocked(ctx)
}

// ListSaved returns every saved recipe in first-insertion order.
func (s *Store) ListSaved() []Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saved := make([]Recipe, 0)
	for _, name := range s.order {
		if r := s.recipes[name]; r.IsSaved {
			saved = append(saved, r.Clone())
		}
	}
	return saved
}

// List returns every recipe in first-insertion order.
func (s *Store) List() []Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Recipe, 0, len(s.order))
	for _, name := range s.order {
		all = append(all, s.recipes[name].Clone())
	}
	return all
}

// GetByName looks up a recipe without side effects.
func (s *Store) GetByName(name string) (Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[name]
	if !ok {
		return Recipe{}, false
	}
	return r.Clone(), true
}

// Active returns the recipe currently on display, looked up fresh from
// the mapping on every call.
func (s *Store) Active() (Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == "" {
		return Recipe{}, false
	}
	r, ok := s.recipes[s.active]
	if !ok {
		return Recipe{}, false
	}
	return r.Clone(), true
}

// SetActive points the active recipe at name. It reports false, and
// leaves the active recipe unchanged, when name is unknown.
func (s *Store) SetActive(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[name]; !ok {
		return false
	}
	s.active = name
	return true
}

// ClearActive removes the active recipe.
func (s *Store) ClearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
}

// Snapshot returns a deep copy of the whole mapping.
func (s *Store) Snapshot() map[string]Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Recipe, len(s.recipes))
	for name, r := range s.recipes {
		out[name] = r.Clone()
	}
	return out
}

// Len returns the number of stored recipes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes)
}

// persistLocked writes the mapping through to the backend. An empty
// mapping is never written so it cannot clobber data that has not been
// loaded yet. Callers must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	if len(s.recipes) == 0 {
		return nil
	}
	data, err := json.Marshal(s.recipes)
	if err != nil {
		return fmt.Errorf("failed to marshal recipes: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		s.log.Error("failed to persist recipes: %v", err)
		return fmt.Errorf("failed to persist recipes: %w", err)
	}
	return nil
}
