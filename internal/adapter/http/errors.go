package http

import (
	"errors"
	"log/slog"

	"resume-builder/internal/adapter/storage"
	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/practice"
	"resume-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

// writeError maps err to a status code and a model.ErrorResponse body.
func writeError(c *fiber.Ctx, err error) error {
	if ve, ok := model.AsValidation(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{Error: "validation failed", Fields: ve.Fields})
	}
	status := statusOf(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(model.ErrorResponse{Error: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, practice.ErrModuleNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, export.ErrInvalidOptions),
		errors.Is(err, usecase.ErrUnknownSection),
		errors.Is(err, usecase.ErrUnknownField),
		errors.Is(err, usecase.ErrSectionType):
		return fiber.StatusBadRequest
	case errors.Is(err, export.ErrExportInProgress):
		return fiber.StatusConflict
	case errors.Is(err, export.ErrUnsupportedEnvironment), errors.Is(err, usecase.ErrUploadsDisabled):
		return fiber.StatusNotImplemented
	case errors.Is(err, storage.ErrStorage), errors.Is(err, export.ErrInvalidOutput):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{Error: msg})
}

func fieldError(field, msg string) error {
	ve := &model.ValidationError{}
	ve.Add(field, msg)
	return ve
}
