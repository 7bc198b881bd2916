package modelversion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nereus/internal/domain/modelversion"
	"nereus/pkg/errors"
)

// fakeRepo is an in-memory modelversion.Repository
type fakeRepo struct {
	versions map[uuid.UUID]*modelversion.ModelVersion
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{versions: make(map[uuid.UUID]*modelversion.ModelVersion)}
}

func (f *fakeRepo) Create(ctx context.Context, m *modelversion.ModelVersion) error {
	f.versions[m.ID] = m
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*modelversion.ModelVersion, error) {
	m, ok := f.versions[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "model version %s", id)
	}
	return m, nil
}

func (f *fakeRepo) GetByVersion(ctx context.Context, version string) (*modelversion.ModelVersion, error) {
	for _, m := range f.versions {
		if m.Version == version {
			return m, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "model version %q", version)
}

func (f *fakeRepo) GetLatestActive(ctx context.Context) (*modelversion.ModelVersion, error) {
	var latest *modelversion.ModelVersion
	for _, m := range f.versions {
		if !m.IsActive {
			continue
		}
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) {
			latest = m
		}
	}
	if latest == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "no active model version")
	}
	return latest, nil
}

func (f *fakeRepo) List(ctx context.Context, limit, offset int) ([]*modelversion.ModelVersion, error) {
	out := make([]*modelversion.ModelVersion, 0, len(f.versions))
	for _, m := range f.versions {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	m, ok := f.versions[id]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "model version %s", id)
	}
	m.IsActive = active
	return nil
}

func addVersion(repo *fakeRepo, version string, active bool, minApp string, age time.Duration) *modelversion.ModelVersion {
	m := &modelversion.ModelVersion{
		ID:            uuid.New(),
		Version:       version,
		ModelURL:      "https://models.example.com/growth_" + version + ".onnx",
		ModelSizeBytes: 4 << 20,
		IsActive:      active,
		MinAppVersion: minApp,
		CreatedAt:     time.Now().UTC().Add(-age),
	}
	repo.versions[m.ID] = m
	return m
}

func TestService_CheckForUpdate_NewerAvailable(t *testing.T) {
	repo := newFakeRepo()
	addVersion(repo, "1.2.0", true, "", 0)
	svc := NewService(repo, nil, nil)

	info, err := svc.CheckForUpdate(context.Background(), "1.1.0", "2.0.0")
	require.NoError(t, err)
	assert.True(t, info.UpdateAvailable)
	require.NotNil(t, info.Model)
	assert.Equal(t, "1.2.0", info.Model.Version)
}

func TestService_CheckForUpdate_AlreadyCurrent(t *testing.T) {
	repo := newFakeRepo()
	addVersion(repo, "1.2.0", true, "", 0)
	svc := NewService(repo, nil, nil)

	info, err := svc.CheckForUpdate(context.Background(), "1.2.0", "2.0.0")
	require.NoError(t, err)
	assert.False(t, info.UpdateAvailable)
}

func TestService_CheckForUpdate_MinAppVersionBlocks(t *testing.T) {
	repo := newFakeRepo()
	addVersion(repo, "2.0.0", true, "3.0.0", 0)
	svc := NewService(repo, nil, nil)

	// Old app cannot take the new model
	info, err := svc.CheckForUpdate(context.Background(), "1.0.0", "2.5.0")
	require.NoError(t, err)
	assert.False(t, info.UpdateAvailable)

	// Upgraded app can
	info, err = svc.CheckForUpdate(context.Background(), "1.0.0", "3.0.0")
	require.NoError(t, err)
	assert.True(t, info.UpdateAvailable)
}

func TestService_CheckForUpdate_NoActiveModel(t *testing.T) {
	repo := newFakeRepo()
	addVersion(repo, "1.0.0", false, "", 0)
	svc := NewService(repo, nil, nil)

	info, err := svc.CheckForUpdate(context.Background(), "", "1.0.0")
	require.NoError(t, err)
	assert.False(t, info.UpdateAvailable)
}

func TestService_GetLatest_PicksNewestActive(t *testing.T) {
	repo := newFakeRepo()
	addVersion(repo, "1.0.0", true, "", 48*time.Hour)
	want := addVersion(repo, "1.1.0", true, "", time.Hour)
	addVersion(repo, "1.2.0", false, "", 0)
	svc := NewService(repo, nil, nil)

	latest, err := svc.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.ID, latest.ID)
}

func TestService_Activate(t *testing.T) {
	repo := newFakeRepo()
	m := addVersion(repo, "1.3.0", false, "", 0)
	svc := NewService(repo, nil, nil)

	require.NoError(t, svc.Activate(context.Background(), m.ID))
	assert.True(t, repo.versions[m.ID].IsActive)

	err := svc.Activate(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestService_Register_Validation(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	err := svc.Register(context.Background(), &modelversion.ModelVersion{Version: "1.0.0"})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.2.0", "1.1.9", 1},
		{"1.0", "1.0.0", 0},
		{"1.0.1", "1.0", 1},
		{"0.9.9", "1.0.0", -1},
		{"2.10.0", "2.9.0", 1},
		{"abc", "1.0", -1},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, modelversion.CompareVersions(tc.a, tc.b),
			"CompareVersions(%q, %q)", tc.a, tc.b)
	}
}
