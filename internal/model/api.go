package model

import (
	"resume-builder/internal/domain"

	"github.com/google/uuid"
)

// CreateResumeRequest is the body of POST /api/resumes. When Content is
// omitted the resume is seeded from the profile of ProfileUserID.
type CreateResumeRequest struct {
	UserID        uuid.UUID              `json:"user_id"`
	Name          string                 `json:"name"`
	TemplateID    string                 `json:"template_id"`
	Content       *domain.ResumeDocument `json:"content,omitempty"`
	ProfileUserID *uuid.UUID             `json:"profile_user_id,omitempty"`
}

// UpdateResumeRequest is the body of PUT /api/resumes/:id. Omitted fields
// are left unchanged.
type UpdateResumeRequest struct {
	Name       *string                `json:"name,omitempty"`
	TemplateID *string                `json:"template_id,omitempty"`
	Status     *domain.Status         `json:"status,omitempty"`
	Content    *domain.ResumeDocument `json:"content,omitempty"`
}

type UploadResponse struct {
	FileURL string `json:"file_url"`
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// UpdateItemFieldRequest is the body of
// PATCH /api/resumes/:id/sections/:section/items/:itemId.
type UpdateItemFieldRequest struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

// SkillRequest is the body of the skill routes.
type SkillRequest struct {
	Value string `json:"value"`
}

// ItemCreatedResponse reports the id given to a newly added item together
// with the saved resume.
type ItemCreatedResponse struct {
	ItemID string               `json:"item_id"`
	Resume *domain.ResumeRecord `json:"resume"`
}
