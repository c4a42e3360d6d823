package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectPlanning    ProjectStatus = "planning"
	ProjectDevelopment ProjectStatus = "development"
	ProjectProduction  ProjectStatus = "production"
	ProjectCompleted   ProjectStatus = "completed"
	ProjectStopped     ProjectStatus = "stopped"
)

var ProjectStatuses = []ProjectStatus{
	ProjectPlanning,
	ProjectDevelopment,
	ProjectProduction,
	ProjectCompleted,
	ProjectStopped,
}

type Project struct {
	ID          string        `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title       *string       `gorm:"size:255;not null" json:"title"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:planning" json:"status"`
	ClientName  *string       `gorm:"size:255" json:"client_name"`
	ManagerID   *string       `gorm:"type:varchar(64);index" json:"manager_id"`
	CreatedBy   *string       `gorm:"type:varchar(64)" json:"created_by"`
	StartDate   *time.Time    `gorm:"type:date" json:"start_date"`
	EndDate     *time.Time    `gorm:"type:date" json:"end_date"`
	Quantity    *int          `json:"quantity"`
	Description *string       `gorm:"type:text" json:"description"`
	Note        *string       `gorm:"type:text" json:"note"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}

// ProjectInput: поля проекта, которые можно передать при создании/изменении.
// nil означает "поле не передано" и в запись не попадает.
type ProjectInput struct {
	Title       *string `form:"title" json:"title"`
	Status      *string `form:"status" json:"status"`
	ClientName  *string `form:"client_name" json:"client_name"`
	ManagerID   *string `form:"manager_id" json:"manager_id"`
	StartDate   *string `form:"start_date" json:"start_date"`
	EndDate     *string `form:"end_date" json:"end_date"`
	Quantity    *string `form:"quantity" json:"quantity"`
	Description *string `form:"description" json:"description"`
	Note        *string `form:"note" json:"note"`
}

func (in ProjectInput) Fields() (map[string]any, error) {
	var f fieldSet
	f.text("title", in.Title)
	setEnum(&f, "status", in.Status, ProjectStatuses)
	f.text("client_name", in.ClientName)
	f.text("manager_id", in.ManagerID)
	f.date("start_date", in.StartDate)
	f.date("end_date", in.EndDate)
	f.integer("quantity", in.Quantity)
	f.text("description", in.Description)
	f.text("note", in.Note)
	return f.result()
}
