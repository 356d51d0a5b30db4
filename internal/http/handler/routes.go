package handler

import (
	"context"
	"database/sql"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docassist/internal/service"
)

// downloadExpiry bounds how long a presigned download link stays valid.
const downloadExpiry = 15 * time.Minute

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; all business rules live in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, analyzeSvc service.AnalyzeService, docSvc service.DocumentService, chatSvc service.ChatService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/documents/analyze", AnalyzeDocument(analyzeSvc))
	app.Post("/images/analyze", AnalyzeImage(analyzeSvc))

	app.Get("/documents", ListDocuments(docSvc))
	app.Get("/documents/:id", GetDocument(docSvc))
	app.Delete("/documents/:id", DeleteDocument(docSvc))
	app.Get("/documents/:id/download", DownloadDocument(docSvc))

	app.Post("/chat", Chat(chatSvc))
	app.Get("/users/:id/memory", GetMemory(chatSvc))
	app.Delete("/users/:id/memory", ResetMemory(chatSvc))
}

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is the simple always-OK probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// AnalyzeDocument accepts a multipart document upload (fields: file,
// user_id) and returns the stored document with its analysis.
func AnalyzeDocument(svc service.AnalyzeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, contentType, err := openUpload(fh)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Analyze(c.UserContext(), f, fh.Filename, contentType, fh.Size, c.FormValue("user_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// AnalyzeImage accepts a multipart image upload (fields: file, user_id,
// caption) and returns the generated description.
func AnalyzeImage(svc service.AnalyzeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, contentType, err := openUpload(fh)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		analysis, err := svc.AnalyzeImage(c.UserContext(), f, fh.Filename, contentType, fh.Size,
			c.FormValue("user_id"), c.FormValue("caption"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"analysis": analysis})
	}
}

// ListDocuments supports limit/offset pagination and an optional user_id
// filter.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset, c.Query("user_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument returns a single document by ID.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document by ID.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument returns a presigned URL for the raw stored file.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.DownloadURL(c.UserContext(), id, downloadExpiry)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Chat answers one conversational message for a user.
func Chat(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Message == "" {
			return writeError(c, fiber.StatusBadRequest, "MESSAGE_REQUIRED", "message is required")
		}

		reply, err := svc.Chat(c.UserContext(), req.UserID, req.Message)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"reply": reply})
	}
}

// GetMemory returns everything remembered about a user's session.
func GetMemory(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := svc.Memory(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(snap)
	}
}

// ResetMemory clears a user's conversation history.
func ResetMemory(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Reset(c.UserContext(), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func openUpload(fh *multipart.FileHeader) (multipart.File, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return f, contentType, nil
}
