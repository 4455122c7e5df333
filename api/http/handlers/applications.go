package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/folio/api/http/presenter"
	"github.com/artem13815/folio/pkg/application"
)

const defaultPageLimit = 20

type ApplicationHandler struct {
	useCase application.UseCase
}

func NewApplicationHandler(useCase application.UseCase) *ApplicationHandler {
	return &ApplicationHandler{useCase: useCase}
}

type createApplicationRequest struct {
	Company   string     `json:"company"`
	Position  string     `json:"position"`
	Location  string     `json:"location"`
	URL       string     `json:"url"`
	Status    string     `json:"status"`
	AppliedAt *time.Time `json:"appliedAt"`
}

// List
// @Summary  List applications
// @Tags     applications
// @Produce  json
// @Security BearerAuth
// @Param    status query string false "applied | phone_screening | interview | offer"
// @Param    q      query string false "search in company, position and location"
// @Param    limit  query int    false "page size"
// @Param    offset query int    false "offset"
// @Success  200 {object} presenter.Page[application.Application]
// @Failure  400 {object} presenter.ErrorResponse
// @Router   /applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	limit, offset := parseLimitOffset(c, defaultPageLimit)
	items, err := h.useCase.List(c.UserContext(), userID, application.Filter{
		Status: application.Status(c.Query("status")),
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, presenter.NewPage(items, limit, offset))
}

// Create
// @Summary  Create application
// @Tags     applications
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    input body createApplicationRequest true "application"
// @Success  201 {object} application.Application
// @Failure  400 {object} presenter.ErrorResponse
// @Router   /applications [post]
func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	a := application.Application{
		Company:  req.Company,
		Position: req.Position,
		Location: req.Location,
		URL:      req.URL,
		Status:   application.Status(req.Status),
	}
	if req.AppliedAt != nil {
		a.AppliedAt = req.AppliedAt.UTC()
	}
	created, err := h.useCase.Create(c.UserContext(), userID, a)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, created)
}

// Get
// @Summary  Get application
// @Tags     applications
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "application id"
// @Success  200 {object} application.Application
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /applications/{id} [get]
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	a, err := h.useCase.Get(c.UserContext(), userID, id)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// Update
// @Summary  Edit application fields
// @Tags     applications
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id    path string            true "application id"
// @Param    input body application.Patch true "fields to change"
// @Success  200 {object} application.Application
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /applications/{id} [patch]
func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	var p application.Patch
	if err := c.BodyParser(&p); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	a, err := h.useCase.Update(c.UserContext(), userID, id, p)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// Delete
// @Summary  Delete application
// @Tags     applications
// @Security BearerAuth
// @Param    id path string true "application id"
// @Success  204
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /applications/{id} [delete]
func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.useCase.Delete(c.UserContext(), userID, id); err != nil {
		return applicationError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

type advanceRequest struct {
	Status string `json:"status"`
}

// Advance
// @Summary  Move application to a later stage
// @Tags     applications
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id    path string         true "application id"
// @Param    input body advanceRequest true "target status"
// @Success  200 {object} application.Application
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  409 {object} presenter.ErrorResponse "backward or same-stage transition"
// @Router   /applications/{id}/status [post]
func (h *ApplicationHandler) Advance(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req advanceRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	a, err := h.useCase.Advance(c.UserContext(), userID, id, application.Status(req.Status))
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

type noteRequest struct {
	Note string `json:"note"`
}

// SetNote
// @Summary  Set note for a pipeline stage
// @Tags     applications
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id    path string      true "application id"
// @Param    stage path string      true "stage"
// @Param    input body noteRequest true "note"
// @Success  200 {object} application.Application
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /applications/{id}/notes/{stage} [put]
func (h *ApplicationHandler) SetNote(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	a, err := h.useCase.SetNote(c.UserContext(), userID, id, application.Status(c.Params("stage")), req.Note)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// Stats
// @Summary  Pipeline analytics
// @Tags     applications
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} application.Stats
// @Router   /applications/stats [get]
func (h *ApplicationHandler) Stats(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	st, err := h.useCase.Stats(c.UserContext(), userID)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, st)
}

func applicationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, application.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "application not found")
	case errors.Is(err, application.ErrValidation):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrInvalidTransition):
		return presenter.Error(c, http.StatusConflict, err.Error())
	default:
		return presenter.Error(c, http.StatusInternalServerError, "failed to process application")
	}
}
