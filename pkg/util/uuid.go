// Package util holds small cross-package helpers with no natural home of
// their own.
package util

import (
	"crypto/md5"
	"encoding/json"

	"github.com/google/uuid"
)

// HashUUID derives a deterministic UUID string from value's JSON
// representation, letting a caller give repeatable, content-addressed
// correlation ids to records (pkg/history entries) without a central
// counter. Returns "" if value can't be marshaled.
func HashUUID(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	hasher := md5.New()
	hasher.Write([]byte(raw))
	hash := hasher.Sum(nil)
	uuid, err := uuid.FromBytes(hash[:16])
	if err != nil {
		return ""
	}
	return uuid.String()
}
