package models

import "time"

// StorageEntry is one key/value pair persisted for a browser session.
type StorageEntry struct {
	SessionID string    `json:"session_id" bson:"session_id"`
	Key       string    `json:"key" bson:"key"`
	Value     string    `json:"value" bson:"value"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
