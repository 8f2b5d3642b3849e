package model

import (
	"github.com/google/uuid"
)

type Doctor struct {
	Base
	ClinicID                uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name                    string    `db:"name" json:"name"`
	Specialty               string    `db:"specialty" json:"specialty"`
	AvatarImageURL          *string   `db:"avatar_image_url" json:"avatar_image_url"`
	AvailableFromWeekDay    int       `db:"available_from_week_day" json:"available_from_week_day"`
	AvailableToWeekDay      int       `db:"available_to_week_day" json:"available_to_week_day"`
	AvailableFromTime       string    `db:"available_from_time" json:"available_from_time"`
	AvailableToTime         string    `db:"available_to_time" json:"available_to_time"`
	AppointmentPriceInCents int       `db:"appointment_price_in_cents" json:"appointment_price_in_cents"`
}

// DoctorRequest is the body of create and update calls. The clinic comes
// from the route, never from the body.
type DoctorRequest struct {
	Name                    string  `json:"name" binding:"required,max=200"`
	Specialty               string  `json:"specialty" binding:"required,max=200"`
	AvatarImageURL          *string `json:"avatar_image_url" binding:"omitempty,url"`
	AvailableFromWeekDay    *int    `json:"available_from_week_day" binding:"required,weekday"`
	AvailableToWeekDay      *int    `json:"available_to_week_day" binding:"required,weekday"`
	AvailableFromTime       string  `json:"available_from_time" binding:"required,clocktime"`
	AvailableToTime         string  `json:"available_to_time" binding:"required,clocktime"`
	AppointmentPriceInCents *int    `json:"appointment_price_in_cents" binding:"required,min=0"`
}

// Apply copies the request onto d.
func (r *DoctorRequest) Apply(d *Doctor) {
	d.Name = r.Name
	d.Specialty = r.Specialty
	d.AvatarImageURL = r.AvatarImageURL
	d.AvailableFromWeekDay = *r.AvailableFromWeekDay
	d.AvailableToWeekDay = *r.AvailableToWeekDay
	d.AvailableFromTime = r.AvailableFromTime
	d.AvailableToTime = r.AvailableToTime
	d.AppointmentPriceInCents = *r.AppointmentPriceInCents
}
