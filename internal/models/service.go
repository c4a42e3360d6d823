package models

import (
	"time"

	"gorm.io/gorm"
)

type ServiceStatus string

const (
	ServiceScheduled    ServiceStatus = "scheduled"
	ServiceInProgress   ServiceStatus = "in_progress"
	ServiceWaitingParts ServiceStatus = "waiting_parts"
	ServiceDone         ServiceStatus = "done"
)

var ServiceStatuses = []ServiceStatus{ServiceScheduled, ServiceInProgress, ServiceWaitingParts, ServiceDone}

// Service: сервисный выезд к клиенту.
type Service struct {
	ID            string        `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title         *string       `gorm:"size:255;not null" json:"title"`
	ClientName    *string       `gorm:"size:255" json:"client_name"`
	Location      *string       `gorm:"size:255" json:"location"`
	Status        ServiceStatus `gorm:"type:varchar(20);not null;default:scheduled" json:"status"`
	ServiceDate   *time.Time    `gorm:"type:date" json:"service_date"`
	DurationHours *float64      `json:"duration_hours"`
	IsRecurring   bool          `gorm:"not null;default:false" json:"is_recurring"`
	AssignedTo    *string       `gorm:"type:varchar(64)" json:"assigned_to"`
	Description   *string       `gorm:"type:text" json:"description"`
	CreatedBy     *string       `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}

type ServiceInput struct {
	Title         *string `form:"title" json:"title"`
	ClientName    *string `form:"client_name" json:"client_name"`
	Location      *string `form:"location" json:"location"`
	Status        *string `form:"status" json:"status"`
	ServiceDate   *string `form:"service_date" json:"service_date"`
	DurationHours *string `form:"duration_hours" json:"duration_hours"`
	IsRecurring   *bool   `form:"is_recurring" json:"is_recurring"`
	AssignedTo    *string `form:"assigned_to" json:"assigned_to"`
	Description   *string `form:"description" json:"description"`
}

func (in ServiceInput) Fields() (map[string]any, error) {
	var f fieldSet
	f.text("title", in.Title)
	f.text("client_name", in.ClientName)
	f.text("location", in.Location)
	setEnum(&f, "status", in.Status, ServiceStatuses)
	f.date("service_date", in.ServiceDate)
	f.decimal("duration_hours", in.DurationHours)
	f.flag("is_recurring", in.IsRecurring)
	f.text("assigned_to", in.AssignedTo)
	f.text("description", in.Description)
	return f.result()
}
