package models

import "time"

const (
	RoleAdmin   = "ADMIN"
	RoleBuilder = "BUILDER"
)

// BuilderUser is a local account of the authoring tool itself, stored in the
// builder_users table. PasswordHash never leaves the server.
type BuilderUser struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`

	AccessAssessmentTest bool `json:"accessAssessmentTest"`
	AccessAssessmentProd bool `json:"accessAssessmentProd"`
	AccessJourneysTest   bool `json:"accessJourneysTest"`
	AccessJourneysProd   bool `json:"accessJourneysProd"`

	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Username    string `json:"username" validate:"required"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"omitempty,oneof=ADMIN BUILDER"`

	AccessAssessmentTest bool `json:"accessAssessmentTest"`
	AccessAssessmentProd bool `json:"accessAssessmentProd"`
	AccessJourneysTest   bool `json:"accessJourneysTest"`
	AccessJourneysProd   bool `json:"accessJourneysProd"`
}

type UpdateUserRequest struct {
	DisplayName *string `json:"displayName"`
	Role        *string `json:"role" validate:"omitempty,oneof=ADMIN BUILDER"`
	Active      *bool   `json:"active"`

	AccessAssessmentTest *bool `json:"accessAssessmentTest"`
	AccessAssessmentProd *bool `json:"accessAssessmentProd"`
	AccessJourneysTest   *bool `json:"accessJourneysTest"`
	AccessJourneysProd   *bool `json:"accessJourneysProd"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}
