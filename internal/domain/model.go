package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntityBase carries the identity, audit and soft-delete columns shared by
// every persisted record. Embed it in a model to make the model an Entity.
//
// created_by and created_time are create-only: GORM never includes them in an
// UPDATE statement.
type EntityBase struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CreatedBy   *string    `gorm:"column:created_by;size:64;<-:create" json:"createdBy"`
	CreatedTime time.Time  `gorm:"column:created_time;not null;<-:create" json:"createdTime"`
	ModifyBy    *string    `gorm:"column:modify_by;size:64" json:"modifyBy"`
	ModifyTime  *time.Time `gorm:"column:modify_time" json:"modifyTime"`
	IsDeleted   *bool      `gorm:"column:is_deleted;index" json:"isDeleted"`
}

// Entity is the capability every soft-deletable, audited record exposes.
// *EntityBase implements it, so any struct embedding EntityBase does too.
type Entity interface {
	Base() *EntityBase
}

// Base returns the receiver.
func (b *EntityBase) Base() *EntityBase {
	return b
}

// Deleted reports whether the record is logically deleted.
func (b *EntityBase) Deleted() bool {
	return b.IsDeleted != nil && *b.IsDeleted
}

// Column names of the EntityBase fields.
const (
	ColumnID          = "id"
	ColumnCreatedBy   = "created_by"
	ColumnCreatedTime = "created_time"
	ColumnModifyBy    = "modify_by"
	ColumnModifyTime  = "modify_time"
	ColumnIsDeleted   = "is_deleted"
)

// PageRequest holds pagination, sorting, and filtering parameters.
type PageRequest struct {
	PageIndex int
	PageSize  int
	Order     string
	Filter    map[string]string
}
