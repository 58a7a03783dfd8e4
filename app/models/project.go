package models

import "time"

// BuilderProject is a draft saved by the authoring frontend. ProjectData is
// an opaque JSON document owned by the client.
type BuilderProject struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	ProjectData string    `json:"projectData"`
	CurrentStep int       `json:"currentStep"`
	CreatedBy   string    `json:"createdBy"`
	UpdatedBy   string    `json:"updatedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
