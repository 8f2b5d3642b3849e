package model

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is the tenant: every doctor, patient and appointment belongs to
// exactly one clinic.
type Clinic struct {
	Base
	Name string  `db:"name" json:"name"`
	Logo *string `db:"logo" json:"logo"`
}

// Membership links a user to a clinic. Access to clinic data requires one.
type Membership struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	CreatedAt time.Time `db:"created_at" json:"joined_at"`
}

// UserClinic is a clinic as seen by one of its members.
type UserClinic struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Logo      *string    `db:"logo" json:"logo"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at"`
	JoinedAt  time.Time  `db:"joined_at" json:"joined_at"`
}

type CreateClinicRequest struct {
	Name string  `json:"name" binding:"required,max=200"`
	Logo *string `json:"logo" binding:"omitempty,url"`
}
