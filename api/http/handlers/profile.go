package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/folio/api/http/presenter"
	"github.com/artem13815/folio/pkg/profile"
)

type ProfileHandler struct {
	useCase profile.UseCase
}

func NewProfileHandler(useCase profile.UseCase) *ProfileHandler {
	return &ProfileHandler{useCase: useCase}
}

// Get returns the full profile of the current user.
// @Summary  Get profile
// @Tags     profile
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} profile.Profile
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /profile [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	p, err := h.useCase.Get(c.UserContext(), userID)
	if err != nil {
		return profileError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

// Update applies a sparse edit of scalar profile fields.
// @Summary  Update profile
// @Tags     profile
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    input body profile.Patch true "fields to change"
// @Success  200 {object} profile.User
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /profile [patch]
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	var patch profile.Patch
	if err := c.BodyParser(&patch); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	u, err := h.useCase.Update(c.UserContext(), userID, patch)
	if err != nil {
		return profileError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, u)
}

type addSkillRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    *int   `json:"level"`
}

// AddSkill adds one skill to the profile.
// @Summary  Add skill
// @Tags     profile
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    input body addSkillRequest true "skill"
// @Success  201 {object} profile.Skill
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  409 {object} presenter.ErrorResponse
// @Router   /profile/skills [post]
func (h *ProfileHandler) AddSkill(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	var req addSkillRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	sk, err := h.useCase.AddSkill(c.UserContext(), userID, req.Name, req.Category, req.Level)
	if err != nil {
		return profileError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, sk)
}

func profileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "profile not found")
	case errors.Is(err, profile.ErrValidation):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrDuplicateSkill):
		return presenter.Error(c, http.StatusConflict, err.Error())
	default:
		return presenter.Error(c, http.StatusInternalServerError, "failed to process profile")
	}
}
