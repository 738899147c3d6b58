package domain

import (
	"context"
	"encoding/json"
)

// Collection names used by the persistence gateways.
const (
	CollectionUsers    = "users"
	CollectionTasks    = "tasks"
	CollectionEvents   = "events"
	CollectionMessages = "messages"
	CollectionSchedule = "schedule"
)

// Document is one stored record: an id plus its JSON payload.
type Document struct {
	ID      string
	Payload json.RawMessage
}

// DocumentStore is the abstract remote document store backing the persistence
// gateways. Implementations provide no cross-document transactional
// guarantees; the engine's consistency model is built on that assumption.
//
// Load of an unknown collection returns an empty slice, indistinguishable
// from a collection that is truly empty. Save fully overwrites; merge
// semantics ahead of Save are the caller's responsibility. Update merges the
// patch's top-level JSON keys into the stored payload and is a no-op for an
// absent id. Delete of an absent id succeeds.
type DocumentStore interface {
	Load(ctx context.Context, collection string) ([]Document, error)
	Save(ctx context.Context, collection, id string, payload json.RawMessage) error
	Update(ctx context.Context, collection, id string, patch json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

// MergePatch applies a top-level JSON merge of patch into payload. Keys
// present in patch replace keys in payload; other keys are unchanged. A
// missing or invalid payload yields the patch itself.
func MergePatch(payload, patch json.RawMessage) (json.RawMessage, error) {
	var dst map[string]json.RawMessage
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &dst); err != nil {
			return nil, err
		}
	}
	if dst == nil {
		dst = map[string]json.RawMessage{}
	}
	var src map[string]json.RawMessage
	if err := json.Unmarshal(patch, &src); err != nil {
		return nil, err
	}
	for k, v := range src {
		dst[k] = v
	}
	return json.Marshal(dst)
}
