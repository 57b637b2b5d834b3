package engine

const pointsPerLevel = 100

// Progression is the display view of a raw points total.
type Progression struct {
	Level           int     `json:"level"`
	PointsIntoLevel int     `json:"points_into_level"`
	Fraction        float64 `json:"progress"`
}

// Progress derives the level curve from points. This is the only place the
// formula lives; level is never stored.
func Progress(points int) Progression {
	if points < 0 {
		points = 0
	}
	level := points/pointsPerLevel + 1
	into := points - (level-1)*pointsPerLevel
	return Progression{
		Level:           level,
		PointsIntoLevel: into,
		Fraction:        float64(into) / pointsPerLevel,
	}
}
