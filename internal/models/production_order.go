package models

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderDone       OrderStatus = "done"
	OrderCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderInProgress, OrderDone, OrderCancelled}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// ProductionOrder: производственный заказ, может быть привязан к проекту.
type ProductionOrder struct {
	ID         string      `gorm:"type:varchar(64);primaryKey" json:"id"`
	ProjectID  *string     `gorm:"type:varchar(64);index" json:"project_id"`
	Title      *string     `gorm:"size:255;not null" json:"title"`
	Status     OrderStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	Priority   Priority    `gorm:"type:varchar(20);not null;default:medium" json:"priority"`
	StartDate  *time.Time  `gorm:"type:date" json:"start_date"`
	EndDate    *time.Time  `gorm:"type:date" json:"end_date"`
	AssignedTo *string     `gorm:"type:varchar(64);index" json:"assigned_to"`
	Quantity   *int        `json:"quantity"`
	Note       *string     `gorm:"type:text" json:"note"`
	CreatedBy  *string     `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (o *ProductionOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = NewID()
	}
	return nil
}

type ProductionOrderInput struct {
	ProjectID  *string `form:"project_id" json:"project_id"`
	Title      *string `form:"title" json:"title"`
	Status     *string `form:"status" json:"status"`
	Priority   *string `form:"priority" json:"priority"`
	StartDate  *string `form:"start_date" json:"start_date"`
	EndDate    *string `form:"end_date" json:"end_date"`
	AssignedTo *string `form:"assigned_to" json:"assigned_to"`
	Quantity   *string `form:"quantity" json:"quantity"`
	Note       *string `form:"note" json:"note"`
}

func (in ProductionOrderInput) Fields() (map[string]any, error) {
	var f fieldSet
	f.text("project_id", in.ProjectID)
	f.text("title", in.Title)
	setEnum(&f, "status", in.Status, OrderStatuses)
	setEnum(&f, "priority", in.Priority, Priorities)
	f.date("start_date", in.StartDate)
	f.date("end_date", in.EndDate)
	f.text("assigned_to", in.AssignedTo)
	f.integer("quantity", in.Quantity)
	f.text("note", in.Note)
	return f.result()
}
