package service

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/campusview/attendance-api/internal/models"
	appErrors "github.com/campusview/attendance-api/pkg/errors"
)

type groupStore interface {
	List(namespace string) ([]models.Group, error)
	Get(namespace, name string) (*models.Group, error)
	Create(namespace string, group models.Group) error
	Update(namespace, name string, group models.Group) error
	Delete(namespace, name string) error
}

// GroupService fronts the flat-file group store and enforces the limits
// the request schema cannot express (campus membership, roll count cap).
type GroupService struct {
	store    groupStore
	campuses []string
	maxRolls int
	logger   *zap.Logger
}

// NewGroupService constructs a GroupService.
func NewGroupService(store groupStore, campuses []string, maxRolls int, logger *zap.Logger) *GroupService {
	if maxRolls <= 0 {
		maxRolls = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{store: store, campuses: campuses, maxRolls: maxRolls, logger: logger}
}

// List returns all groups in the namespace.
func (s *GroupService) List(namespace string) ([]models.Group, error) {
	return s.store.List(namespace)
}

// Get returns one group by name.
func (s *GroupService) Get(namespace, name string) (*models.Group, error) {
	return s.store.Get(namespace, name)
}

// Create validates and stores a new group.
func (s *GroupService) Create(namespace string, group models.Group) (*models.Group, error) {
	normalized, err := s.normalize(group)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(namespace, *normalized); err != nil {
		return nil, err
	}
	s.logger.Info("group created",
		zap.String("namespace", namespace),
		zap.String("group", normalized.Name),
		zap.Int("rolls", len(normalized.RollNumbers)),
	)
	return normalized, nil
}

// Update validates and replaces the group stored under name; a differing
// group.Name renames it.
func (s *GroupService) Update(namespace, name string, group models.Group) (*models.Group, error) {
	normalized, err := s.normalize(group)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(namespace, name, *normalized); err != nil {
		return nil, err
	}
	s.logger.Info("group updated",
		zap.String("namespace", namespace),
		zap.String("group", normalized.Name),
	)
	return normalized, nil
}

// Delete removes a group by name.
func (s *GroupService) Delete(namespace, name string) error {
	if err := s.store.Delete(namespace, name); err != nil {
		return err
	}
	s.logger.Info("group deleted", zap.String("namespace", namespace), zap.String("group", name))
	return nil
}

func (s *GroupService) normalize(group models.Group) (*models.Group, error) {
	if len(group.RollNumbers) > s.maxRolls {
		return nil, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "too many roll numbers in group")
	}
	if group.Campus == "" && len(s.campuses) > 0 {
		group.Campus = s.campuses[0]
	}
	if group.Campus != "" && !s.knownCampus(group.Campus) {
		return nil, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "unknown campus")
	}
	return &group, nil
}

func (s *GroupService) knownCampus(campus string) bool {
	for _, known := range s.campuses {
		if campus == known {
			return true
		}
	}
	return false
}
