package model

import (
	"github.com/google/uuid"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type Patient struct {
	Base
	ClinicID uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name     string    `db:"name" json:"name"`
	Email    string    `db:"email" json:"email"`
	Phone    string    `db:"phone" json:"phone"`
	Sex      Sex       `db:"sex" json:"sex"`
}

// PatientRequest is used for both create and update.
type PatientRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,max=32"`
	Sex   Sex    `json:"sex" binding:"required,oneof=male female"`
}

// Apply copies the request onto p.
func (r *PatientRequest) Apply(p *Patient) {
	p.Name = r.Name
	p.Email = r.Email
	p.Phone = r.Phone
	p.Sex = r.Sex
}
