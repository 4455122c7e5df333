package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/artem13815/folio/api/http/middleware"
	"github.com/artem13815/folio/api/http/presenter"
	"github.com/artem13815/folio/pkg/resume"
)

type ResumeHandler struct {
	svc resume.UseCase
	log zerolog.Logger
	// Limit uploaded file size read into memory (bytes)
	maxBytes int64
}

func NewResumeHandler(svc resume.UseCase, maxBytes int64, log zerolog.Logger) *ResumeHandler {
	if maxBytes <= 0 {
		maxBytes = 15 << 20 // 15MB
	}
	return &ResumeHandler{svc: svc, maxBytes: maxBytes, log: log}
}

// Ingest разбирает загруженное PDF-резюме и переносит найденные данные в профиль.
// @Summary     Загрузка резюме в профиль
// @Description Принимает PDF, извлекает текст, структурирует его через LLM и обновляет профиль.
// @Description Если модель недоступна, используется шаблонный профиль (fallback=true).
// @Tags        resume
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "Файл резюме (PDF)"
// @Security    BearerAuth
// @Success     200 {object} resume.IngestOutcome
// @Failure     400 {object} presenter.ErrorResponse "Файл отсутствует или не PDF"
// @Failure     422 {object} presenter.ErrorResponse "Из PDF не удалось извлечь текст"
// @Failure     500 {object} presenter.ErrorResponse "Внутренняя ошибка сервиса"
// @Router      /resume/ingest [post]
func (h *ResumeHandler) Ingest(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required (pdf)")
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := readAtMost(file, h.maxBytes)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}

	out, err := h.svc.Ingest(c.UserContext(), userID, &resume.Upload{
		Filename:  fh.Filename,
		MediaType: fh.Header.Get(fiber.HeaderContentType),
		Data:      data,
	})
	if err != nil {
		switch {
		case errors.Is(err, resume.ErrInvalidInput):
			return presenter.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, resume.ErrExtractionFailed):
			return presenter.Error(c, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error().Err(err).Str("rid", middleware.RequestID(c)).Msg("resume ingestion failed")
			return presenter.Error(c, http.StatusInternalServerError, "failed to ingest resume")
		}
	}
	return presenter.JSON(c, http.StatusOK, out)
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("file too large: limit is %d bytes", max)
	}
	return b, nil
}
