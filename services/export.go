package services

import (
	"encoding/json"
	"fmt"
	"time"

	"studysync-engine/models"
	"studysync-engine/utils"

	"github.com/google/uuid"
)

// ExportService bundles every stored blob of a user into one JSON
// document and parks it in object storage as an on-demand backup.
type ExportService struct {
	Store *GormStore

	now func() time.Time
}

func NewExportService(store *GormStore) *ExportService {
	return &ExportService{Store: store, now: time.Now}
}

type exportBundle struct {
	UserID     string                     `json:"user_id"`
	ExportedAt time.Time                  `json:"exported_at"`
	State      map[string]json.RawMessage `json:"state"`
}

// Export uploads the bundle and returns its public URL.
func (s *ExportService) Export(userID string) (string, error) {
	bundle := exportBundle{
		UserID:     userID,
		ExportedAt: s.now().UTC(),
		State:      make(map[string]json.RawMessage),
	}

	for _, key := range models.RecognizedKeys {
		value, found, err := s.Store.Raw(userID, key)
		if err != nil {
			return "", fmt.Errorf("read %s for export: %w", key, err)
		}
		if found {
			bundle.State[key] = json.RawMessage(value)
		}
	}

	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("exports/%s/%s.json", userID, uuid.NewString())
	return utils.UploadJSONToR2(payload, objectKey)
}
