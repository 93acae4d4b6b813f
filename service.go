package main

import (
	"log"
	"sync"
)

// Service owns the active navigation grid and the request dispatcher
type Service struct {
	cfg Config

	mu         sync.RWMutex
	grid       *NavGrid
	pathfinder *Pathfinder
	zoneCount  int

	requests *RequestManager
}

// NewService creates a service with no grid; call Rebuild before routing
func NewService(cfg Config) *Service {
	s := &Service{cfg: cfg}
	s.requests = NewRequestManager(s.Pathfinder, cfg.Server.Workers, cfg.Server.QueueSize)
	return s
}

// Pathfinder returns the pathfinder for the active grid, or nil
func (s *Service) Pathfinder() *Pathfinder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pathfinder
}

// Grid returns the active grid, or nil
func (s *Service) Grid() *NavGrid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// ZoneCount returns the number of zones the active grid was built from
func (s *Service) ZoneCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoneCount
}

// Rebuild builds a new grid from zones and swaps it in. Searches already
// running keep the grid they started with.
func (s *Service) Rebuild(zones []Zone) error {
	prepared := PrepareZones(zones, s.cfg.Zones.SimplifyEpsilon)
	index := NewZoneIndex(prepared)

	grid, err := NewNavGrid(s.cfg.Grid, index)
	if err != nil {
		return err
	}
	s.SetGrid(grid, index.Len())
	return nil
}

// SetGrid swaps in a prebuilt grid
func (s *Service) SetGrid(grid *NavGrid, zoneCount int) {
	pf := NewPathfinder(grid, s.cfg.Search)

	s.mu.Lock()
	s.grid = grid
	s.pathfinder = pf
	s.zoneCount = zoneCount
	s.mu.Unlock()

	walkable, blocked := grid.Stats()
	recordGrid(walkable, blocked)
	log.Printf("✅ Navigation grid active (%d walkable, %d blocked, %d zones)\n", walkable, blocked, zoneCount)
}

// Close stops the request dispatcher
func (s *Service) Close() {
	s.requests.Close()
}
