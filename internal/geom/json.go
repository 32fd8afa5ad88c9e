package geom

import (
	"encoding/json"
	"fmt"
)

// Coordinates serialise as two-element [y, x] arrays, the layout point-source
// dataset files use on disk.

// MarshalJSON encodes the coordinate as [y, x].
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Y, c.X})
}

// UnmarshalJSON decodes a [y, x] array.
func (c *Coord) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinate must be a [y, x] pair: %w", err)
	}
	c.Y, c.X = pair[0], pair[1]
	return nil
}
