package modelversion

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"nereus/internal/adapters/kafka"
	"nereus/internal/domain/modelversion"
	"nereus/internal/repository/redis"
	"nereus/pkg/errors"
	"nereus/pkg/logger"
)

// UpdateInfo is the answer to a client update check
type UpdateInfo struct {
	UpdateAvailable bool                       `json:"update_available"`
	Model           *modelversion.ModelVersion `json:"model,omitempty"`
}

// ModelActivatedEvent is published when a model version becomes active
type ModelActivatedEvent struct {
	ModelID   string    `json:"model_id"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Service manages distributable model versions. The active version is
// cached in Redis because mobile clients poll for updates frequently.
type Service struct {
	repo     modelversion.Repository
	cache    *redis.ModelCache
	producer *kafka.Producer
	log      *logger.Logger
}

// NewService creates the model version service. Cache and producer may be nil.
func NewService(repo modelversion.Repository, cache *redis.ModelCache, producer *kafka.Producer) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		producer: producer,
		log:      logger.Get().With("service", "modelversion"),
	}
}

// Register stores a new model version record
func (s *Service) Register(ctx context.Context, m *modelversion.ModelVersion) error {
	if m.Version == "" || m.ModelURL == "" {
		return errors.Wrap(errors.ErrInvalidInput, "version and model_url are required")
	}

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return errors.Wrap(err, "store model version")
	}

	s.log.Infof("Registered model version %s (%s)",
		m.Version, humanize.Bytes(uint64(m.ModelSizeBytes)))
	return nil
}

// GetLatest returns the newest active model version, consulting the cache first
func (s *Service) GetLatest(ctx context.Context) (*modelversion.ModelVersion, error) {
	if s.cache != nil {
		cached, err := s.cache.GetActive(ctx)
		if err != nil {
			s.log.Warnf("Model cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	latest, err := s.repo.GetLatestActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetActive(ctx, latest); err != nil {
			s.log.Warnf("Model cache write failed: %v", err)
		}
	}

	return latest, nil
}

// CheckForUpdate compares the client's model version against the latest
// active one, honoring the model's minimum app version constraint
func (s *Service) CheckForUpdate(ctx context.Context, currentVersion, appVersion string) (*UpdateInfo, error) {
	latest, err := s.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return &UpdateInfo{UpdateAvailable: false}, nil
		}
		return nil, err
	}

	if !latest.CompatibleWith(appVersion) {
		return &UpdateInfo{UpdateAvailable: false}, nil
	}

	if currentVersion != "" && modelversion.CompareVersions(latest.Version, currentVersion) <= 0 {
		return &UpdateInfo{UpdateAvailable: false}, nil
	}

	return &UpdateInfo{UpdateAvailable: true, Model: latest}, nil
}

// Activate marks a model version as active, invalidates the cache, and
// announces the activation
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return errors.Wrap(err, "activate model version")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warnf("Model cache invalidation failed: %v", err)
		}
	}

	if s.producer != nil {
		event := ModelActivatedEvent{
			ModelID:   m.ID.String(),
			Version:   m.Version,
			Timestamp: time.Now().UTC(),
		}
		if err := s.producer.Publish(ctx, kafka.TopicModelActivated, m.Version, event); err != nil {
			s.log.Errorf("Failed to publish model activation event: %v", err)
		}
	}

	s.log.Infof("Model version %s activated", m.Version)
	return nil
}

// List returns model versions with pagination
func (s *Service) List(ctx context.Context, limit, offset int) ([]*modelversion.ModelVersion, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}
