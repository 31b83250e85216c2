package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/cache"
	"github.com/stemsi/university-api/internal/config"
	"github.com/stemsi/university-api/internal/model"
	"github.com/stemsi/university-api/internal/repository"
	"github.com/stemsi/university-api/internal/validator"
)

// relations loads the faculty and group rows that other entities point to.
// Single-row lookups go through the cache; batch lookups and reference
// checks before a write hit the store.
type relations struct {
	store repository.Store
	cache cache.Cache
	log   zerolog.Logger
}

func (r *relations) faculty(ctx context.Context, id int) (*model.Faculty, error) {
	key := config.CacheKey.FacultyKey(id)
	var f model.Faculty
	if hit, err := r.cache.Get(ctx, key, &f); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if hit {
		return &f, nil
	}

	found, err := r.store.Faculties().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, found); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return found, nil
}

func (r *relations) group(ctx context.Context, id int) (*model.Group, error) {
	key := config.CacheKey.GroupKey(id)
	var g model.Group
	if hit, err := r.cache.Get(ctx, key, &g); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if hit {
		return &g, nil
	}

	found, err := r.store.Groups().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, found); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return found, nil
}

// optional turns ErrNotFound into a nil relation.
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (r *relations) facultiesByID(ctx context.Context, ids []int) (map[int]*model.Faculty, error) {
	rows, err := r.store.Faculties().ListByIDs(ctx, unique(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[int]*model.Faculty, len(rows))
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *relations) groupsByID(ctx context.Context, ids []int) (map[int]*model.Group, error) {
	rows, err := r.store.Groups().ListByIDs(ctx, unique(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[int]*model.Group, len(rows))
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// checkFaculty records an "exists" failure under field when the faculty is missing.
func (r *relations) checkFaculty(ctx context.Context, errs validator.Errors, field string, id int) error {
	f, err := optional(r.store.Faculties().GetByID(ctx, id))
	if err != nil {
		return err
	}
	errs.Check(field, strconv.Itoa(id), validator.Exists(func() bool { return f != nil }))
	return nil
}

// checkGroup records an "exists" failure under field when the group is missing.
func (r *relations) checkGroup(ctx context.Context, errs validator.Errors, field string, id int) error {
	g, err := optional(r.store.Groups().GetByID(ctx, id))
	if err != nil {
		return err
	}
	errs.Check(field, strconv.Itoa(id), validator.Exists(func() bool { return g != nil }))
	return nil
}

func (r *relations) evictFaculties(ctx context.Context, ids ...int) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, config.CacheKey.FacultyKey(id))
	}
	r.evict(ctx, keys)
}

func (r *relations) evictGroups(ctx context.Context, ids ...int) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, config.CacheKey.GroupKey(id))
	}
	r.evict(ctx, keys)
}

func (r *relations) evict(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.log.Warn().Err(err).Strs("keys", keys).Msg("cache eviction failed")
	}
}

func unique(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
