// Package seating models a shop's areas and the tables inside them.
package seating

import (
	"strings"
	"time"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
)

var (
	ErrAreaNotFound  = apperr.NotFound("area")
	ErrTableNotFound = apperr.NotFound("table")
)

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}

type Area struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shop_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Table struct {
	ID        string      `json:"id"`
	ShopID    string      `json:"shop_id"`
	AreaID    *string     `json:"area_id"`
	Number    string      `json:"number"`
	Capacity  int         `json:"capacity"`
	Status    TableStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CreateAreaRequest payload of creation.
// swagger:model CreateAreaRequest
type CreateAreaRequest struct {
	ShopID string `json:"shop_id" binding:"required,uuid"`
	Name   string `json:"name" binding:"required,max=255" example:"Terrace"`
}

// UpdateAreaRequest payload of update.
// swagger:model UpdateAreaRequest
type UpdateAreaRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// CreateTableRequest payload of creation.
// swagger:model CreateTableRequest
type CreateTableRequest struct {
	ShopID   string  `json:"shop_id" binding:"required,uuid"`
	AreaID   *string `json:"area_id" binding:"omitempty,uuid"`
	Number   string  `json:"number" binding:"required,max=32" example:"T01"`
	Capacity int     `json:"capacity" binding:"omitempty,min=1,max=100" example:"4"`
}

// UpdateTableRequest payload of partial update.
// swagger:model UpdateTableRequest
type UpdateTableRequest struct {
	AreaID   *string      `json:"area_id" binding:"omitempty,uuid"`
	Number   *string      `json:"number" binding:"omitempty,min=1,max=32"`
	Capacity *int         `json:"capacity" binding:"omitempty,min=1,max=100"`
	Status   *TableStatus `json:"status"`
}

func NewTable(req CreateTableRequest) *Table {
	t := &Table{
		ShopID:   req.ShopID,
		AreaID:   req.AreaID,
		Number:   strings.TrimSpace(req.Number),
		Capacity: req.Capacity,
		Status:   TableAvailable,
	}
	if t.Capacity == 0 {
		t.Capacity = 2
	}
	return t
}

func (t *Table) Apply(req UpdateTableRequest) error {
	if req.AreaID != nil {
		if *req.AreaID == "" {
			t.AreaID = nil
		} else {
			t.AreaID = req.AreaID
		}
	}
	if req.Number != nil {
		t.Number = strings.TrimSpace(*req.Number)
	}
	if req.Capacity != nil {
		t.Capacity = *req.Capacity
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return apperr.BadRequest("invalid table status %q", *req.Status)
		}
		t.Status = *req.Status
	}
	if t.Number == "" {
		return apperr.BadRequest("number is required")
	}
	return nil
}

type TableQuery struct {
	ShopID string
	AreaID string
	Status string
	Limit  int
	Offset int
}
