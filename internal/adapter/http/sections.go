package http

import (
	"encoding/json"
	"fmt"
	"strings"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// The section routes edit one part of a stored resume through an editing
// session, so every change is validated and saved like a full update.

func (h *Handler) Completeness(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	stages, err := h.svc.Completeness(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	complete := true
	for _, s := range stages {
		complete = complete && s.Valid
	}
	return c.JSON(fiber.Map{"complete": complete, "stages": stages})
}

// ReplaceSection takes the section value itself as the body: an object for
// header and skills, a string for summary, an array for the list sections.
func (h *Handler) ReplaceSection(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	section := domain.Section(c.Params("section"))
	value, err := decodeSection(section, c.Body())
	if err != nil {
		return writeError(c, err)
	}
	rec, err := h.svc.Edit(c.UserContext(), id, func(s *usecase.Session) error {
		return s.ReplaceSection(section, value)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

func (h *Handler) AddItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	section := domain.Section(c.Params("section"))
	item, err := decodeItem(section, c.Body())
	if err != nil {
		return writeError(c, err)
	}
	var itemID string
	rec, err := h.svc.Edit(c.UserContext(), id, func(s *usecase.Session) error {
		newID, err := s.AddItem(section, item)
		itemID = newID
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(model.ItemCreatedResponse{ItemID: itemID, Resume: rec})
}

func (h *Handler) UpdateItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req model.UpdateItemFieldRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if req.Field == "" {
		return writeError(c, fieldError("field", "is required"))
	}
	section, itemID := domain.Section(c.Params("section")), c.Params("itemId")
	rec, err := h.svc.Edit(c.UserContext(), id, func(s *usecase.Session) error {
		ok, err := s.UpdateItemFieldByID(section, itemID, req.Field, req.Value)
		if err == nil && !ok {
			err = itemNotFound(section, itemID)
		}
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

func (h *Handler) RemoveItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	section, itemID := domain.Section(c.Params("section")), c.Params("itemId")
	if !section.IsList() {
		return writeError(c, fmt.Errorf("%w: %q is not a list section", usecase.ErrUnknownSection, section))
	}
	rec, err := h.svc.Edit(c.UserContext(), id, func(s *usecase.Session) error {
		ok, err := s.RemoveItemByID(section, itemID)
		if err == nil && !ok {
			err = itemNotFound(section, itemID)
		}
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

// AddSkill appends a non-empty entry. Empty entries are dropped on save, so
// the value is required here rather than lost silently.
func (h *Handler) AddSkill(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	value, err := skillValue(c)
	if err != nil {
		return writeError(c, err)
	}
	category := domain.SkillCategory(c.Params("category"))
	rec, err := h.svc.Edit(c.UserContext(), id, func(s *usecase.Session) error {
		i, err := s.AddSkill(category)
		if err != nil {
			return err
		}
		_, err = s.UpdateSkill(category, i, value)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) UpdateSkill(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "invalid index")
	}
	value, err := skillValue(c)
	if err != nil {
		return writeError(c, err)
	}
	category := domain.SkillCategory(c.Params("category"))
	rec, err := h.svc.Edit(c.UserContext(), id, func(s *usecase.Session) error {
		ok, err := s.UpdateSkill(category, index, value)
		if err == nil && !ok {
			err = skillNotFound(category, index)
		}
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

func (h *Handler) RemoveSkill(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "invalid index")
	}
	category := domain.SkillCategory(c.Params("category"))
	rec, err := h.svc.Edit(c.UserContext(), id, func(s *usecase.Session) error {
		ok, err := s.RemoveSkill(category, index)
		if err == nil && !ok {
			err = skillNotFound(category, index)
		}
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

func skillValue(c *fiber.Ctx) (string, error) {
	var req model.SkillRequest
	if err := c.BodyParser(&req); err != nil {
		return "", fieldError("value", "invalid payload")
	}
	v := strings.TrimSpace(req.Value)
	if v == "" {
		return "", fieldError("value", "is required")
	}
	return v, nil
}

func itemNotFound(section domain.Section, itemID string) error {
	return fmt.Errorf("%s item %q: %w", section, itemID, domain.ErrNotFound)
}

func skillNotFound(category domain.SkillCategory, index int) error {
	return fmt.Errorf("%s skill %d: %w", category, index, domain.ErrNotFound)
}

// decodeSection unmarshals body into the Go type the store expects for
// section.
func decodeSection(section domain.Section, body []byte) (interface{}, error) {
	var (
		v   interface{}
		err error
	)
	switch section {
	case domain.SectionHeader:
		var h domain.Header
		err = json.Unmarshal(body, &h)
		v = h
	case domain.SectionSummary:
		var s string
		err = json.Unmarshal(body, &s)
		v = s
	case domain.SectionExperience:
		var items []domain.Experience
		err = json.Unmarshal(body, &items)
		v = items
	case domain.SectionEducation:
		var items []domain.Education
		err = json.Unmarshal(body, &items)
		v = items
	case domain.SectionSkills:
		var s domain.Skills
		err = json.Unmarshal(body, &s)
		v = s
	case domain.SectionProjects:
		var items []domain.Project
		err = json.Unmarshal(body, &items)
		v = items
	case domain.SectionCertifications:
		var items []domain.Certification
		err = json.Unmarshal(body, &items)
		v = items
	default:
		return nil, fmt.Errorf("%w: %q", usecase.ErrUnknownSection, section)
	}
	if err != nil {
		return nil, fieldError(string(section), "invalid value")
	}
	return v, nil
}

// decodeItem unmarshals body into one item of a list section.
func decodeItem(section domain.Section, body []byte) (interface{}, error) {
	var (
		v   interface{}
		err error
	)
	switch section {
	case domain.SectionExperience:
		var it domain.Experience
		err = json.Unmarshal(body, &it)
		v = it
	case domain.SectionEducation:
		var it domain.Education
		err = json.Unmarshal(body, &it)
		v = it
	case domain.SectionProjects:
		var it domain.Project
		err = json.Unmarshal(body, &it)
		v = it
	case domain.SectionCertifications:
		var it domain.Certification
		err = json.Unmarshal(body, &it)
		v = it
	default:
		return nil, fmt.Errorf("%w: %q is not a list section", usecase.ErrUnknownSection, section)
	}
	if err != nil {
		return nil, fieldError(string(section), "invalid value")
	}
	return v, nil
}
