package uitree

import (
	"fmt"
	"regexp"
	"strconv"
)

// Rect is a pixel rectangle in screen coordinates.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Center returns the integer midpoint, rounding toward negative infinity.
func (r Rect) Center() (int, int) {
	return floorHalf(r.Left + r.Right), floorHalf(r.Top + r.Bottom)
}

// String formats the rectangle the way Android prints bounds.
func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}

var boundsDigits = regexp.MustCompile(`\d+`)

// ParseBoundsString extracts the first four embedded integers of s as
// [left, top, right, bottom], ignoring punctuation. Reports false when s holds
// fewer than four.
func ParseBoundsString(s string) (Rect, bool) {
	m := boundsDigits.FindAllString(s, 4)
	if len(m) < 4 {
		return Rect{}, false
	}
	var v [4]int
	for i, digits := range m {
		n, err := strconv.Atoi(digits)
		if err != nil {
			return Rect{}, false
		}
		v[i] = n
	}
	return Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}, true
}

// Bounds returns the node's rectangle. The structured boundsInScreen object
// wins over the bounds string.
func Bounds(n FlatNode) (Rect, bool) {
	if n.BoundsInScreen != nil {
		return *n.BoundsInScreen, true
	}
	if n.BoundsText != "" {
		return ParseBoundsString(n.BoundsText)
	}
	return Rect{}, false
}

// Center returns the center of the node's bounds, ok=false when the node has
// no resolvable position.
func Center(n FlatNode) (x, y int, ok bool) {
	r, ok := Bounds(n)
	if !ok {
		return 0, 0, false
	}
	x, y = r.Center()
	return x, y, true
}

func floorHalf(v int) int {
	if v < 0 && v%2 != 0 {
		return v/2 - 1
	}
	return v / 2
}
