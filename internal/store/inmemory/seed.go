package inmemory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mydv/vrsync/internal/vehicles"
)

// seedFile is the YAML layout of a vehicle seed file
type seedFile struct {
	Vehicles []seedVehicle `yaml:"vehicles"`
}

type seedVehicle struct {
	ID           string    `yaml:"id,omitempty"`
	TenantID     string    `yaml:"tenantId"`
	Registration string    `yaml:"registration,omitempty"`
	Active       *bool     `yaml:"active,omitempty"`
	CreatedAt    time.Time `yaml:"createdAt,omitempty"`
}

// LoadSeedFile reads vehicles from a YAML seed file. Vehicles without an id
// get a random one; active defaults to true.
func LoadSeedFile(path string) ([]vehicles.Vehicle, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	result := make([]vehicles.Vehicle, 0, len(seed.Vehicles))
	for i, sv := range seed.Vehicles {
		if sv.TenantID == "" {
			return nil, fmt.Errorf("vehicles[%d]: tenantId is required", i)
		}

		id := uuid.New()
		if sv.ID != "" {
			id, err = uuid.Parse(sv.ID)
			if err != nil {
				return nil, fmt.Errorf("vehicles[%d]: invalid id: %w", i, err)
			}
		}

		active := true
		if sv.Active != nil {
			active = *sv.Active
		}

		result = append(result, vehicles.Vehicle{
			ID:           id,
			TenantID:     sv.TenantID,
			Registration: sv.Registration,
			Active:       active,
			CreatedAt:    sv.CreatedAt,
		})
	}
	return result, nil
}
