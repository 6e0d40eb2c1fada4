package user

import "github.com/google/uuid"

// CreateUserRequest is the body of POST /api/v1/users.
type CreateUserRequest struct {
	Account  string `json:"account" form:"account" binding:"required,min=2,max=100"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=72"`
}

// UpdateUserRequest is the body of PUT /api/v1/users/:id. An empty password
// keeps the current one.
type UpdateUserRequest struct {
	Account  string `json:"account" form:"account" binding:"required,min=2,max=100"`
	Password string `json:"password" form:"password" binding:"omitempty,min=6,max=72"`
}

// BatchDeleteRequest is the body of POST /api/v1/users/batch-delete.
type BatchDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=500"`
}

// BatchDeleteResponse reports how many users a batch delete affected.
type BatchDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}
