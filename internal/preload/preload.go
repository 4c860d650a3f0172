// Package preload extracts storage slot preload assignments from the
// simulation setup log.
package preload

import (
	"regexp"
	"strconv"

	"github.com/paulmach/orb"
)

// The dot after "sim" is left unescaped and matches any character.
var preloadPattern = regexp.MustCompile(
	`sim.preload_variable\((?:agent )?(\d+), Point\((\d+), (\d+)\), 0\)`)

// Variable is one preloaded storage slot with its initial position.
type Variable struct {
	ID string
	X  string
	Y  string
}

// Match finds a preload call anywhere in line.
func Match(line string) (Variable, bool) {
	m := preloadPattern.FindStringSubmatch(line)
	if m == nil {
		return Variable{}, false
	}
	return Variable{ID: m[1], X: m[2], Y: m[3]}, true
}

// Text returns the ssv output line without its trailing newline.
func (v Variable) Text() string {
	return "0," + v.ID + "," + v.X + "," + v.Y
}

// Point returns the position as a planar point. The pattern only admits
// digit runs, so parsing fails only on overflow and yields 0 there.
func (v Variable) Point() orb.Point {
	x, _ := strconv.ParseFloat(v.X, 64)
	y, _ := strconv.ParseFloat(v.Y, 64)
	return orb.Point{x, y}
}
