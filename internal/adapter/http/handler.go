package http

import (
	"context"
	"io"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/templates"
	"resume-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ResumeService is what the handlers need from usecase.Service.
type ResumeService interface {
	Templates() []templates.Info
	Template(id string) (templates.Info, error)
	Create(ctx context.Context, in usecase.CreateInput) (*domain.ResumeRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ResumeRecord, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.ResumeRecord, error)
	Update(ctx context.Context, id uuid.UUID, in usecase.UpdateInput) (*domain.ResumeRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Edit(ctx context.Context, id uuid.UUID, fn func(*usecase.Session) error) (*domain.ResumeRecord, error)
	Completeness(ctx context.Context, id uuid.UUID) ([]*usecase.StageValidationResult, error)
	Export(ctx context.Context, id uuid.UUID, opts export.Options) (*export.Result, error)
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

type Handler struct {
	svc ResumeService
}

func NewHandler(svc ResumeService) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the resume API on r.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/:id", h.GetTemplate)

	r.Post("/resumes", h.CreateResume)
	r.Get("/resumes", h.ListResumes)
	r.Get("/resumes/:id", h.GetResume)
	r.Put("/resumes/:id", h.UpdateResume)
	r.Delete("/resumes/:id", h.DeleteResume)
	r.Post("/resumes/:id/export", h.ExportResume)
	r.Get("/resumes/:id/completeness", h.Completeness)

	r.Put("/resumes/:id/sections/:section", h.ReplaceSection)
	r.Post("/resumes/:id/sections/:section/items", h.AddItem)
	r.Patch("/resumes/:id/sections/:section/items/:itemId", h.UpdateItem)
	r.Delete("/resumes/:id/sections/:section/items/:itemId", h.RemoveItem)

	r.Post("/resumes/:id/skills/:category", h.AddSkill)
	r.Put("/resumes/:id/skills/:category/:index", h.UpdateSkill)
	r.Delete("/resumes/:id/skills/:category/:index", h.RemoveSkill)

	r.Post("/uploads", h.Upload)
}

func (h *Handler) ListTemplates(c *fiber.Ctx) error {
	return c.JSON(h.svc.Templates())
}

func (h *Handler) GetTemplate(c *fiber.Ctx) error {
	info, err := h.svc.Template(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(info)
}

func (h *Handler) CreateResume(c *fiber.Ctx) error {
	var req model.CreateResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	in := usecase.CreateInput{
		UserID:     req.UserID,
		Name:       req.Name,
		TemplateID: req.TemplateID,
		Content:    req.Content,
	}
	if req.ProfileUserID != nil {
		in.ProfileUserID = *req.ProfileUserID
	}
	rec, err := h.svc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) ListResumes(c *fiber.Ctx) error {
	uid, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return badRequest(c, "invalid user_id")
	}
	list, err := h.svc.List(c.UserContext(), uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) GetResume(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	rec, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

func (h *Handler) UpdateResume(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req model.UpdateResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	rec, err := h.svc.Update(c.UserContext(), id, usecase.UpdateInput{
		Name:       req.Name,
		TemplateID: req.TemplateID,
		Status:     req.Status,
		Content:    req.Content,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

func (h *Handler) DeleteResume(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportResume takes optional export.Overrides as the JSON body and
// responds with the PDF as an attachment.
func (h *Handler) ExportResume(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var ov export.Overrides
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&ov); err != nil {
			return badRequest(c, "invalid export options")
		}
	}
	res, err := h.svc.Export(c.UserContext(), id, export.DefaultOptions().Apply(ov))
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(res.FileName)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(res.PDF)
}

func (h *Handler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fieldError("file", "is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, err)
	}
	url, err := h.svc.Upload(c.UserContext(), fh.Filename, data)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(model.UploadResponse{FileURL: url})
}
