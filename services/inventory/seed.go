package inventory

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultSeed returns the baseline collection used when the durable store is
// empty and no seed file is configured.
func DefaultSeed() []Machine {
	now := time.Now().UTC()
	entries := []struct {
		name   string
		status Status
	}{
		{"Cutter A", StatusRunning},
		{"Press B", StatusIdle},
		{"Lathe C", StatusRunning},
		{"Welder D", StatusOffline},
		{"Drill E", StatusIdle},
		{"Packer F", StatusRunning},
	}

	machines := make([]Machine, 0, len(entries))
	for _, e := range entries {
		machines = append(machines, Machine{
			ID:          uuid.New(),
			Name:        e.name,
			Status:      e.status,
			LastUpdated: now,
		})
	}
	return machines
}

type seedFile struct {
	Machines []seedMachine `yaml:"machines"`
}

type seedMachine struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
}

// LoadSeedFile reads a YAML seed definition and converts it into machine
// records with fresh ids and current timestamps.
func LoadSeedFile(path string) ([]Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	now := time.Now().UTC()
	machines := make([]Machine, 0, len(sf.Machines))
	for i, entry := range sf.Machines {
		if err := ValidateName(entry.Name); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		status, err := ParseStatus(entry.Status)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		machines = append(machines, Machine{
			ID:          uuid.New(),
			Name:        entry.Name,
			Status:      status,
			LastUpdated: now,
		})
	}
	return machines, nil
}
