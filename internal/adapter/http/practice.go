package http

import (
	"resume-builder/internal/practice"

	"github.com/gofiber/fiber/v2"
)

// PracticeHandler serves the development practice fixtures.
type PracticeHandler struct {
	fixtures *practice.Fixtures
}

func NewPracticeHandler(f *practice.Fixtures) *PracticeHandler {
	return &PracticeHandler{fixtures: f}
}

func (h *PracticeHandler) Register(r fiber.Router) {
	r.Get("/practice/modules", h.List)
	r.Get("/practice/modules/:id", h.Get)
	r.Post("/practice/modules/:id/submit", h.Submit)
	r.Post("/practice/modules/:id/questions/bulk", h.Bulk)
}

func (h *PracticeHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.fixtures.List())
}

func (h *PracticeHandler) Get(c *fiber.Ctx) error {
	m, err := h.fixtures.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(m)
}

func (h *PracticeHandler) Submit(c *fiber.Ctx) error {
	var sub practice.Submission
	if err := c.BodyParser(&sub); err != nil {
		return badRequest(c, "invalid payload")
	}
	res, err := h.fixtures.Submit(c.Params("id"), sub)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

func (h *PracticeHandler) Bulk(c *fiber.Ctx) error {
	var req struct {
		Questions []practice.Question `json:"questions"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	res, err := h.fixtures.AddQuestions(c.Params("id"), req.Questions)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
