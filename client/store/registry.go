package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
)

// ErrClusterNotFound mirrors the registry CLI's "Cluster <id> does not
// exist!" user-visible message (spec §7).
var ErrClusterNotFound = errors.New("cluster does not exist")

// AddCluster inserts a new registry row. Callers must already have set
// InitialPolicy/CurrentPolicy via the cluster service (spec §4.1).
func (s *Store) AddCluster(c *structs.Cluster) error {
	return s.db.Create(c).Error
}

// GetCluster returns the registry row for id, or ErrClusterNotFound.
func (s *Store) GetCluster(id string) (*structs.Cluster, error) {
	var c structs.Cluster
	err := s.db.First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClusterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClusters returns every registry row.
func (s *Store) ListClusters() ([]structs.Cluster, error) {
	var clusters []structs.Cluster
	err := s.db.Order("id").Find(&clusters).Error
	return clusters, err
}

// ActiveClusterIDs returns the ids of every active cluster, used to
// snapshot the scheduler's per-tick work list (spec §4.7 step 1).
func (s *Store) ActiveClusterIDs() ([]string, error) {
	var ids []string
	err := s.db.Model(&structs.Cluster{}).Where("active = ?", true).Pluck("id", &ids).Error
	return ids, err
}

// UpdateCluster persists the full cluster row, used both by the
// registry CLI (config fields) and the reconciliation loop (observed/
// control state) — never concurrently, per spec §5.
func (s *Store) UpdateCluster(c *structs.Cluster) error {
	return s.db.Save(c).Error
}

// DeleteCluster removes a registry row and returns ErrClusterNotFound
// if it did not exist.
func (s *Store) DeleteCluster(id string) error {
	res := s.db.Delete(&structs.Cluster{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClusterNotFound
	}
	return nil
}

// SetActive flips the active flag for one cluster, or every cluster
// when id is empty (enable-cluster/-a, disable-cluster/-a — spec §6).
func (s *Store) SetActive(id string, active bool) error {
	tx := s.db.Model(&structs.Cluster{})
	if id != "" {
		tx = tx.Where("id = ?", id)
	}
	res := tx.Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if id != "" && res.RowsAffected == 0 {
		return ErrClusterNotFound
	}
	return nil
}

// NotExistError formats the exact user-visible message spec §7 requires.
func NotExistError(id string) error {
	return fmt.Errorf("Cluster %s does not exist!", id)
}
