package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the only persisted entity. provider and provider_id together
// identify the external account; the pair is unique across all rows.
type User struct {
	ID              uuid.UUID `db:"id"`
	Provider        string    `db:"provider"`
	ProviderID      *string   `db:"provider_id"`
	Email           *string   `db:"email"`
	Name            *string   `db:"name"`
	ProfileImageURL *string   `db:"profile_image_url"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
