package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/campusview/attendance-api/internal/models"
	appErrors "github.com/campusview/attendance-api/pkg/errors"
)

// storedGroup is the on-disk shape of one group, keyed by name inside a
// per-user namespace.
type storedGroup struct {
	RollNumbers []string `json:"rollNumbers"`
	Campus      string   `json:"campus"`
}

type groupsFile map[string]map[string]storedGroup

// GroupRepository persists groups in a single JSON document on disk. The
// whole file is read and rewritten per operation; group counts are tiny
// and the process-wide mutex keeps writers serialized.
type GroupRepository struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewGroupRepository ensures the data directory exists and returns a
// repository over the given file path.
func NewGroupRepository(path string, logger *zap.Logger) (*GroupRepository, error) {
	if path == "" {
		path = "./data/groups.json"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create groups directory: %w", err)
	}
	return &GroupRepository{path: path, logger: logger}, nil
}

// List returns every group in the namespace, sorted by name.
func (r *GroupRepository) List(namespace string) ([]models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return nil, err
	}

	groups := make([]models.Group, 0, len(file[namespace]))
	for name, g := range file[namespace] {
		groups = append(groups, models.Group{Name: name, RollNumbers: g.RollNumbers, Campus: g.Campus})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// Get returns one group by name.
func (r *GroupRepository) Get(namespace, name string) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return nil, err
	}

	g, ok := file[namespace][name]
	if !ok {
		return nil, appErrors.ErrGroupNotFound
	}
	return &models.Group{Name: name, RollNumbers: g.RollNumbers, Campus: g.Campus}, nil
}

// Create stores a new group; the name must be free within the namespace.
func (r *GroupRepository) Create(namespace string, group models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return err
	}

	if _, exists := file[namespace][group.Name]; exists {
		return appErrors.ErrGroupExists
	}
	if file[namespace] == nil {
		file[namespace] = make(map[string]storedGroup)
	}
	file[namespace][group.Name] = storedGroup{RollNumbers: group.RollNumbers, Campus: group.Campus}
	return r.save(file)
}

// Update replaces the group stored under name; group.Name may differ to
// rename, in which case the new name must be free.
func (r *GroupRepository) Update(namespace, name string, group models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return err
	}

	if _, ok := file[namespace][name]; !ok {
		return appErrors.ErrGroupNotFound
	}
	if group.Name != name {
		if _, taken := file[namespace][group.Name]; taken {
			return appErrors.ErrGroupExists
		}
	}
	delete(file[namespace], name)
	file[namespace][group.Name] = storedGroup{RollNumbers: group.RollNumbers, Campus: group.Campus}
	return r.save(file)
}

// Delete removes a group by name.
func (r *GroupRepository) Delete(namespace, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return err
	}

	if _, ok := file[namespace][name]; !ok {
		return appErrors.ErrGroupNotFound
	}
	delete(file[namespace], name)
	return r.save(file)
}

// load reads the groups document. A missing file is an empty store.
func (r *GroupRepository) load() (groupsFile, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return groupsFile{}, nil
		}
		return nil, fmt.Errorf("read groups file: %w", err)
	}

	var file groupsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		// A corrupt store should not brick the API; start over but shout.
		r.logger.Error("groups file corrupt, starting empty", zap.String("path", r.path), zap.Error(err))
		return groupsFile{}, nil
	}
	if file == nil {
		file = groupsFile{}
	}
	return file, nil
}

// save writes the document atomically via temp file and rename.
func (r *GroupRepository) save(file groupsFile) error {
	payload, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal groups file: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write groups file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace groups file: %w", err)
	}
	return nil
}
