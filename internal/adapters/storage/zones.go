package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/cylvision/dockwatch/internal/domain/geometry"
	"github.com/cylvision/dockwatch/internal/domain/model"
)

// Zone identifiers are short operator-chosen labels. The legacy
// deployment hardcoded the alphabet {A,B,C}; any identifier matching
// this pattern is now accepted.
var zoneIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,16}$`)

// ValidateZoneID checks a zone identifier against the allowed pattern.
func ValidateZoneID(id string) error {
	if !zoneIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidZoneID, id)
	}
	return nil
}

// Zones returns the platform's configured zone map. An unknown
// platform has no zones; that is not an error.
func (s *Store) Zones(ctx context.Context, platform string) (map[string]model.Zone, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT zones FROM cameras WHERE platform = ?`, platform,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]model.Zone{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load zones for %q: %w", platform, err)
	}

	zones := make(map[string]model.Zone)
	if err := json.Unmarshal([]byte(raw), &zones); err != nil {
		return nil, fmt.Errorf("decode zones for %q: %w", platform, err)
	}
	return zones, nil
}

// SetZones validates and replaces the platform's zone map. The new map
// takes effect for all subsequent crossing tests; no history of past
// shapes is kept.
func (s *Store) SetZones(ctx context.Context, platform string, zones map[string]model.Zone) error {
	for id, z := range zones {
		if err := ValidateZoneID(id); err != nil {
			return err
		}
		if !geometry.ValidSegment(z) {
			return fmt.Errorf("%w: zone %q", ErrInvalidSegment, id)
		}
	}

	raw, err := json.Marshal(zones)
	if err != nil {
		return fmt.Errorf("encode zones for %q: %w", platform, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cameras (platform, zones) VALUES (?, ?)
		ON CONFLICT(platform) DO UPDATE SET zones = excluded.zones`,
		platform, string(raw),
	)
	if err != nil {
		return fmt.Errorf("store zones for %q: %w", platform, err)
	}
	return nil
}
