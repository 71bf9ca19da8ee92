package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusview/attendance-api/internal/models"
	appErrors "github.com/campusview/attendance-api/pkg/errors"
)

type memoryStore struct {
	groups map[string]map[string]models.Group
}

func newMemoryStore() *memoryStore {
	return &memoryStore{groups: make(map[string]map[string]models.Group)}
}

func (m *memoryStore) List(namespace string) ([]models.Group, error) {
	out := make([]models.Group, 0, len(m.groups[namespace]))
	for _, g := range m.groups[namespace] {
		out = append(out, g)
	}
	return out, nil
}

func (m *memoryStore) Get(namespace, name string) (*models.Group, error) {
	g, ok := m.groups[namespace][name]
	if !ok {
		return nil, appErrors.ErrGroupNotFound
	}
	return &g, nil
}

func (m *memoryStore) Create(namespace string, group models.Group) error {
	if _, exists := m.groups[namespace][group.Name]; exists {
		return appErrors.ErrGroupExists
	}
	if m.groups[namespace] == nil {
		m.groups[namespace] = make(map[string]models.Group)
	}
	m.groups[namespace][group.Name] = group
	return nil
}

func (m *memoryStore) Update(namespace, name string, group models.Group) error {
	if _, ok := m.groups[namespace][name]; !ok {
		return appErrors.ErrGroupNotFound
	}
	delete(m.groups[namespace], name)
	m.groups[namespace][group.Name] = group
	return nil
}

func (m *memoryStore) Delete(namespace, name string) error {
	if _, ok := m.groups[namespace][name]; !ok {
		return appErrors.ErrGroupNotFound
	}
	delete(m.groups[namespace], name)
	return nil
}

func newGroupTestService(store groupStore) *GroupService {
	return NewGroupService(store, []string{"AEC", "ACET", "AGBS"}, 20, nil)
}

func TestGroupCreateDefaultsCampus(t *testing.T) {
	svc := newGroupTestService(newMemoryStore())

	created, err := svc.Create("default", models.Group{
		Name:        "CSE-A",
		RollNumbers: []string{"2201A0001"},
	})
	require.NoError(t, err)
	assert.Equal(t, "AEC", created.Campus)
}

func TestGroupCreateRejectsUnknownCampus(t *testing.T) {
	svc := newGroupTestService(newMemoryStore())

	_, err := svc.Create("default", models.Group{
		Name:        "CSE-A",
		RollNumbers: []string{"2201A0001"},
		Campus:      "NOWHERE",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGroupCreateRejectsTooManyRolls(t *testing.T) {
	store := newMemoryStore()
	svc := NewGroupService(store, []string{"AEC"}, 2, nil)

	_, err := svc.Create("default", models.Group{
		Name:        "CSE-A",
		RollNumbers: []string{"2201A0001", "2201A0002", "2201A0003"},
	})
	require.Error(t, err)
	assert.Empty(t, store.groups["default"], "nothing must be stored on validation failure")
}

func TestGroupCreateDuplicateName(t *testing.T) {
	svc := newGroupTestService(newMemoryStore())

	_, err := svc.Create("default", models.Group{Name: "CSE-A", RollNumbers: []string{"2201A0001"}})
	require.NoError(t, err)

	_, err = svc.Create("default", models.Group{Name: "CSE-A", RollNumbers: []string{"2201A0002"}})
	assert.ErrorIs(t, err, appErrors.ErrGroupExists)
}

func TestGroupUpdateKeepsExplicitCampus(t *testing.T) {
	svc := newGroupTestService(newMemoryStore())

	_, err := svc.Create("default", models.Group{Name: "CSE-A", RollNumbers: []string{"2201A0001"}})
	require.NoError(t, err)

	updated, err := svc.Update("default", "CSE-A", models.Group{
		Name:        "CSE-A",
		RollNumbers: []string{"2201A0001", "2201A0002"},
		Campus:      "ACET",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACET", updated.Campus)
	assert.Len(t, updated.RollNumbers, 2)
}

func TestGroupDeleteMissing(t *testing.T) {
	svc := newGroupTestService(newMemoryStore())
	err := svc.Delete("default", "nope")
	assert.ErrorIs(t, err, appErrors.ErrGroupNotFound)
}
