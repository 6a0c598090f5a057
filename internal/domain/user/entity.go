// internal/domain/user/entity.go
package user

import "context"

// Profile is the read-only buyer record the core consumes for display joins.
// Credential storage and verification live in the external identity system;
// the core only ever sees the opaque user id.
type Profile struct {
	ID       string `json:"id"`
	FirmName string `json:"firmName"`
	City     string `json:"city"`
	Mobile   string `json:"mobile,omitempty"`
}

// Repository is the read-only profile port.
//
// Nil policy: GetByID returns (nil, nil) when no record matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)

	// ProfilesByIDs resolves a batch of user ids in one round trip.
	ProfilesByIDs(ctx context.Context, ids []string) (map[string]*Profile, error)
}
