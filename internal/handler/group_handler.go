package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusview/attendance-api/internal/dto"
	"github.com/campusview/attendance-api/internal/models"
	appErrors "github.com/campusview/attendance-api/pkg/errors"
	"github.com/campusview/attendance-api/pkg/response"
)

type groupService interface {
	List(namespace string) ([]models.Group, error)
	Get(namespace, name string) (*models.Group, error)
	Create(namespace string, group models.Group) (*models.Group, error)
	Update(namespace, name string, group models.Group) (*models.Group, error)
	Delete(namespace, name string) error
}

// GroupHandler exposes group CRUD endpoints.
type GroupHandler struct {
	service groupService
}

// NewGroupHandler builds a new handler.
func NewGroupHandler(service groupService) *GroupHandler {
	return &GroupHandler{service: service}
}

// List godoc
// @Summary List groups in the caller's namespace
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.service.List(namespaceFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups)
}

// Create godoc
// @Summary Create a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body dto.GroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req dto.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group payload"))
		return
	}
	group, err := h.service.Create(namespaceFromRequest(c), models.Group{
		Name:        req.Name,
		RollNumbers: req.RollNumbers,
		Campus:      req.Campus,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update godoc
// @Summary Update or rename a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param name path string true "Current group name"
// @Param payload body dto.GroupRequest true "Group payload"
// @Success 200 {object} response.Envelope
// @Router /groups/{name} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	name := c.Param("name")
	if !dto.ValidGroupName(name) {
		response.Error(c, appErrors.ErrValidation)
		return
	}
	var req dto.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group payload"))
		return
	}
	group, err := h.service.Update(namespaceFromRequest(c), name, models.Group{
		Name:        req.Name,
		RollNumbers: req.RollNumbers,
		Campus:      req.Campus,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group)
}

// Delete godoc
// @Summary Delete a group
// @Tags Groups
// @Produce json
// @Param name path string true "Group name"
// @Success 204
// @Router /groups/{name} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if !dto.ValidGroupName(name) {
		response.Error(c, appErrors.ErrValidation)
		return
	}
	if err := h.service.Delete(namespaceFromRequest(c), name); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
