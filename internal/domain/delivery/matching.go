// internal/domain/delivery/matching.go
package delivery

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"github.com/your-org/marketplace-backend/internal/pkg/geo"
)

// Candidate pairs a driver with their resolved position
type Candidate struct {
	Driver     user.User
	Coords     geo.Coordinates
	DistanceKm float64
}

// Match is the outcome of driver selection for a store
type Match struct {
	Driver     user.User `json:"driver"`
	DistanceKm float64   `json:"distance_km"`
}

// nearestCandidate picks the candidate closest to the store by
// great-circle distance. Ties go to the first encountered. Returns nil
// when the pool is empty.
func nearestCandidate(storeCoords geo.Coordinates, candidates []Candidate) *Candidate {
	var best *Candidate
	for i := range candidates {
		candidates[i].DistanceKm = geo.HaversineDistance(storeCoords, candidates[i].Coords)
		if best == nil || candidates[i].DistanceKm < best.DistanceKm {
			best = &candidates[i]
		}
	}
	return best
}

// resolveAddressCoordinates returns stored coordinates when present,
// otherwise geocodes the free-text address. A nil result with nil error
// means the position could not be determined.
func (s *Service) resolveAddressCoordinates(ctx context.Context, hasCoords bool, lat, lon *float64, freeText string) (*geo.Coordinates, error) {
	if hasCoords {
		return &geo.Coordinates{Latitude: *lat, Longitude: *lon}, nil
	}
	if freeText == "" {
		return nil, nil
	}
	return s.geocoder.Geocode(ctx, freeText)
}

func (s *Service) resolveStoreCoordinates(ctx context.Context, st *store.Store) (*geo.Coordinates, error) {
	if st.Address == nil {
		return nil, nil
	}
	return s.resolveAddressCoordinates(ctx,
		st.Address.HasCoordinates(), st.Address.Latitude, st.Address.Longitude,
		st.Address.FreeText())
}

func (s *Service) resolveUserCoordinates(ctx context.Context, u *user.User) (*geo.Coordinates, error) {
	addr := u.DefaultAddress()
	if addr == nil {
		return nil, nil
	}
	return s.resolveAddressCoordinates(ctx,
		addr.HasCoordinates(), addr.Latitude, addr.Longitude,
		addr.FreeText())
}

// FindBestDriverForStore scans every driver, resolves their position and
// returns the one nearest to the store. Drivers whose position cannot be
// resolved are skipped. Returns ErrNoDriverAvailable when nothing in the
// pool yields a usable coordinate pair.
func (s *Service) FindBestDriverForStore(ctx context.Context, storeID uint) (*Match, error) {
	st, err := s.stores.FindByID(storeID)
	if err != nil {
		return nil, err
	}

	storeCoords, err := s.resolveStoreCoordinates(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store position: %w", err)
	}
	if storeCoords == nil {
		return nil, fmt.Errorf("store %d: %w", storeID, ErrLocationUnavailable)
	}

	drivers, err := s.users.FindDrivers()
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(drivers))
	for i := range drivers {
		coords, err := s.resolveUserCoordinates(ctx, &drivers[i])
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"driver_id": drivers[i].ID,
			}).WithError(err).Warn("Failed to resolve driver position, skipping")
			continue
		}
		if coords == nil {
			continue
		}
		candidates = append(candidates, Candidate{Driver: drivers[i], Coords: *coords})
	}

	best := nearestCandidate(*storeCoords, candidates)
	if best == nil {
		return nil, fmt.Errorf("store %d: %w", storeID, ErrNoDriverAvailable)
	}

	s.logger.WithFields(logrus.Fields{
		"store_id":    storeID,
		"driver_id":   best.Driver.ID,
		"distance_km": best.DistanceKm,
	}).Info("Driver matched to store")

	return &Match{Driver: best.Driver, DistanceKm: best.DistanceKm}, nil
}
