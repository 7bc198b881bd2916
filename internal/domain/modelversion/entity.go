package modelversion

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ModelVersion tracks a distributable on-device model artifact together with
// the preprocessing configuration it was trained against
type ModelVersion struct {
	ID                  uuid.UUID       `db:"id" json:"model_id"`
	Version             string          `db:"version" json:"version"`
	ModelURL            string          `db:"model_url" json:"model_url"`
	ModelSizeBytes      int64           `db:"model_size_bytes" json:"model_size_bytes"`
	PreprocessingConfig json.RawMessage `db:"preprocessing_config" json:"preprocessing_config,omitempty"`
	IsActive            bool            `db:"is_active" json:"is_active"`
	MinAppVersion       string          `db:"min_app_version" json:"min_app_version,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}

// CompatibleWith reports whether an app version may use this model.
// Models without a min version constraint accept any client.
func (m *ModelVersion) CompatibleWith(appVersion string) bool {
	if m.MinAppVersion == "" || appVersion == "" {
		return true
	}
	return CompareVersions(appVersion, m.MinAppVersion) >= 0
}
