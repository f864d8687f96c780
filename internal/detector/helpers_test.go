package detector

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

func pointsJSON(points []Point3D) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf(`{"x":%g,"y":%g,"z":%g}`, p.X, p.Y, p.Z)
	}
	return strings.Join(parts, ",")
}

func zerologNop() zerolog.Logger {
	return zerolog.Nop()
}
