package pathdata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"scene-exporter/internal/exporter/geom"
)

// ============================================================
// Path Parser
// ============================================================

// Command - команда пути в абсолютных координатах. Op: 'M', 'L', 'C' или 'Z'.
// Для 'C' Points = [c1, c2, end].
type Command struct {
	Op     byte
	Points []geom.Point
}

var commandRe = regexp.MustCompile(`([MmLlHhVvCcZz])([^MmLlHhVvCcZz]*)`)

// Parse разбирает атрибут d в список абсолютных команд.
func Parse(d string) ([]Command, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, fmt.Errorf("empty path")
	}

	var cmds []Command
	var current, start geom.Point

	for _, match := range commandRe.FindAllStringSubmatch(d, -1) {
		op := match[1][0]
		coords, err := parseCoords(match[2])
		if err != nil {
			return nil, fmt.Errorf("command %c: %w", op, err)
		}

		switch op {
		case 'M', 'm', 'L', 'l':
			if len(coords) < 2 || len(coords)%2 != 0 {
				return nil, fmt.Errorf("command %c: expected coordinate pairs, got %d values", op, len(coords))
			}
			for i := 0; i < len(coords); i += 2 {
				pt := geom.Point{X: coords[i], Y: coords[i+1]}
				if op == 'm' || op == 'l' {
					pt = pt.Add(current)
				}
				kind := byte('L')
				if i == 0 && (op == 'M' || op == 'm') {
					kind = 'M'
					start = pt
				}
				current = pt
				cmds = append(cmds, Command{Op: kind, Points: []geom.Point{pt}})
			}

		case 'H', 'h', 'V', 'v':
			if len(coords) == 0 {
				return nil, fmt.Errorf("command %c: missing value", op)
			}
			for _, v := range coords {
				switch op {
				case 'H':
					current.X = v
				case 'h':
					current.X += v
				case 'V':
					current.Y = v
				case 'v':
					current.Y += v
				}
				cmds = append(cmds, Command{Op: 'L', Points: []geom.Point{current}})
			}

		case 'C', 'c':
			if len(coords) == 0 || len(coords)%6 != 0 {
				return nil, fmt.Errorf("command %c: expected 6 values per curve, got %d", op, len(coords))
			}
			for i := 0; i < len(coords); i += 6 {
				pts := []geom.Point{
					{X: coords[i], Y: coords[i+1]},
					{X: coords[i+2], Y: coords[i+3]},
					{X: coords[i+4], Y: coords[i+5]},
				}
				if op == 'c' {
					for j := range pts {
						pts[j] = pts[j].Add(current)
					}
				}
				current = pts[2]
				cmds = append(cmds, Command{Op: 'C', Points: pts})
			}

		case 'Z', 'z':
			// Возвращаемся к началу подпути
			current = start
			cmds = append(cmds, Command{Op: 'Z'})
		}
	}

	if len(cmds) == 0 {
		return nil, fmt.Errorf("no commands in path")
	}
	return cmds, nil
}

func parseCoords(s string) ([]float64, error) {
	// Разделитель: запятая или пробел
	s = strings.ReplaceAll(s, ",", " ")
	parts := strings.Fields(s)

	coords := make([]float64, 0, len(parts))
	for _, part := range parts {
		val, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		coords = append(coords, val)
	}
	return coords, nil
}
