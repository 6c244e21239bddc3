package enums

import "fmt"

// PointsLevel is the reward tier derived from lifetime points.
type PointsLevel string

const (
	PointsLevelBronze   PointsLevel = "bronze"
	PointsLevelSilver   PointsLevel = "silver"
	PointsLevelGold     PointsLevel = "gold"
	PointsLevelPlatinum PointsLevel = "platinum"
)

var validPointsLevels = []PointsLevel{
	PointsLevelBronze,
	PointsLevelSilver,
	PointsLevelGold,
	PointsLevelPlatinum,
}

// IsValid reports whether the value matches the canonical points level enum.
func (p PointsLevel) IsValid() bool {
	for _, candidate := range validPointsLevels {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePointsLevel converts the raw string to PointsLevel.
func ParsePointsLevel(value string) (PointsLevel, error) {
	for _, candidate := range validPointsLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid points level %q", value)
}
