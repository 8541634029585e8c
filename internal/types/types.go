// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// User represents a user record in our system.
//
// Struct tags serve two purposes:
//
//  1. json:"..."       controls how the field appears when encoded to JSON
//     (snake_case names match the REST API contract, e.g. student_id).
//
//  2. validate:"..."   rules checked by the go-playground/validator
//     package. "required" means the field must be non-zero / non-empty.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"       validate:"required,max=255"`
	Email     string `json:"email"      validate:"required,email"`
	Age       int    `json:"age"        validate:"required,gte=1,lte=150"`
	StudentID string `json:"student_id" validate:"required,max=64"`
}

// UserPatch is the body of PATCH /api/users/{id}.
//
// Every field is a pointer so "not sent" (nil) can be told apart from
// "sent as the zero value". omitnil skips validation only for nil
// pointers; a supplied empty string still fails min=1.
type UserPatch struct {
	Name      *string `json:"name"       validate:"omitnil,min=1,max=255"`
	Email     *string `json:"email"      validate:"omitnil,email"`
	Age       *int    `json:"age"        validate:"omitnil,gte=1,lte=150"`
	StudentID *string `json:"student_id" validate:"omitnil,min=1,max=64"`
}

// Empty reports whether the patch carries no fields at all.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Age == nil && p.StudentID == nil
}

// Project represents a project owned by a single user.
// OwnerID is a foreign key to User.ID; one user may own many projects.
type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"        validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	OwnerID     int64  `json:"owner_id"    validate:"required,gte=1"`
}

// ProjectPatch is the body of PATCH /api/projects/{id}.
type ProjectPatch struct {
	Name        *string `json:"name"        validate:"omitnil,min=1,max=255"`
	Description *string `json:"description" validate:"omitnil,min=1"`
	OwnerID     *int64  `json:"owner_id"    validate:"omitnil,gte=1"`
}

// Empty reports whether the patch carries no fields at all.
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.OwnerID == nil
}
