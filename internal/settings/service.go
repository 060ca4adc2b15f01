package settings

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/repository"
	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/segyhp/xp-lending/pkg/logger"
	"github.com/segyhp/xp-lending/pkg/metrics"
)

// Service resolves admin overrides into snapshots and manages the override store.
type Service struct {
	repo  repository.SettingRepository
	cache repository.SettingsCache
	now   func() time.Time
	// generation advances on every Set so a Snapshot that read the database
	// before the write can tell its cache fill is stale
	generation atomic.Uint64
}

// NewService builds a settings service; cache may be nil.
func NewService(repo repository.SettingRepository, cache repository.SettingsCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// Snapshot returns every stored override as of now. Cache failures fall back to the database.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	if s.cache != nil {
		values, found, err := s.cache.Load(ctx)
		switch {
		case err != nil:
			metrics.RecordSettingsCache("error")
			logger.Warn("Settings cache unavailable, reading from database", logger.ErrorField(err))
		case found:
			metrics.RecordSettingsCache("hit")
			return Snapshot(values), nil
		default:
			metrics.RecordSettingsCache("miss")
		}
	}

	generation := s.generation.Load()

	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	snap := make(Snapshot, len(rows))
	for _, row := range rows {
		snap[row.Key] = row.Value
	}

	if s.cache != nil {
		if err := s.cache.Store(ctx, snap); err != nil {
			logger.Warn("Failed to populate settings cache", logger.ErrorField(err))
		} else if s.generation.Load() != generation {
			// A Set landed while we were reading; drop what we just cached
			if err := s.cache.Invalidate(ctx); err != nil {
				logger.Warn("Failed to drop stale settings cache", logger.ErrorField(err))
			}
		}
	}

	return snap, nil
}

// Get returns the effective value of one setting.
func (s *Service) Get(ctx context.Context, key string) (*domain.EffectiveSetting, error) {
	stored, err := s.repo.Get(ctx, key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	def, known := Lookup(key)
	if !known && stored == nil {
		return nil, customError.WrapUnknownSetting(key)
	}

	return effective(def, known, stored), nil
}

// List returns every schema setting with its effective value, plus stored keys the schema does not know.
func (s *Service) List(ctx context.Context) ([]*domain.EffectiveSetting, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	stored := make(map[string]*domain.SystemSetting, len(rows))
	for _, row := range rows {
		stored[row.Key] = row
	}

	defs := Definitions()
	out := make([]*domain.EffectiveSetting, 0, len(defs)+len(rows))
	for _, def := range defs {
		out = append(out, effective(def, true, stored[def.Key]))
		delete(stored, def.Key)
	}

	extra := make([]*domain.EffectiveSetting, 0, len(stored))
	for _, row := range stored {
		extra = append(extra, effective(Definition{}, false, row))
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Key < extra[j].Key })

	return append(out, extra...), nil
}

// Set validates value against the schema and stores it as an override.
func (s *Service) Set(ctx context.Context, key, value, adminID string) (*domain.EffectiveSetting, error) {
	def, ok := Lookup(key)
	if !ok {
		return nil, customError.WrapUnknownSetting(key)
	}

	value = strings.TrimSpace(value)
	if value != "" {
		if err := ValidateValue(def, value); err != nil {
			return nil, err
		}
	}

	current, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	candidate := make(Snapshot, len(current)+1)
	for k, v := range current {
		candidate[k] = v
	}
	candidate[key] = value
	if err := candidate.Check(key); err != nil {
		return nil, customError.WrapSettingRejected(key, value, err)
	}

	description := def.Description
	setting := &domain.SystemSetting{
		Key:         key,
		Value:       value,
		Description: &description,
		DataType:    def.DataType,
		Category:    def.Category,
		UpdatedAt:   s.now(),
		UpdatedBy:   &adminID,
	}

	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	s.generation.Add(1)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.Warn("Failed to invalidate settings cache", logger.String("key", key), logger.ErrorField(err))
		}
	}

	logger.Info("Setting updated",
		logger.String("key", key),
		logger.String("value", value),
		logger.String("admin_id", adminID),
	)

	return effective(def, true, setting), nil
}

func effective(def Definition, known bool, stored *domain.SystemSetting) *domain.EffectiveSetting {
	out := &domain.EffectiveSetting{
		Key:         def.Key,
		Value:       def.Default,
		Default:     def.Default,
		DataType:    def.DataType,
		Category:    def.Category,
		Description: def.Description,
	}

	if stored == nil || (known && strings.TrimSpace(stored.Value) == "") {
		return out
	}

	out.Value = stored.Value
	out.Overridden = true
	if !known {
		out.Key = stored.Key
		out.DataType = stored.DataType
		out.Category = stored.Category
		if stored.Description != nil {
			out.Description = *stored.Description
		}
	}

	return out
}
