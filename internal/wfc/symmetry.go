package wfc

import "fmt"

// NormalizeRotation maps any rotation count into 0..5. Rotation 6 is the
// identity and negative values turn the other way.
func NormalizeRotation(r int) int {
	return ((r % SideCount) + SideCount) % SideCount
}

func mod6(v int) int {
	return NormalizeRotation(v)
}

func checkOrientation(o Orientation) error {
	if o.Rotation < 0 || o.Rotation >= SideCount {
		return fmt.Errorf("%w: %d", ErrRotationOutOfRange, o.Rotation)
	}
	return nil
}

// RotatedSideSockets returns the socket pair a tile presents on a physical
// side under o. The physical side reads canonical side (side - rotation)
// mod 6; when inverted that side is reflected to (6 - k) mod 6 and the two
// corners of each edge are swapped.
func RotatedSideSockets(t *TileDefinition, side Side, o Orientation) (SidePair, error) {
	if err := checkOrientation(o); err != nil {
		return SidePair{}, err
	}
	if !side.Valid() {
		return SidePair{}, fmt.Errorf("%w: side %d", ErrInvalidSide, int(side))
	}
	return sideSockets(t, side, o), nil
}

// RotatedLayerSockets returns the six corner sockets of a face under o.
// Corner i reads canonical corner (i - rotation) mod 6; inversion reverses
// the traversal so corner j reads (1 - j) mod 6 before rotation.
func RotatedLayerSockets(t *TileDefinition, face Face, o Orientation) ([SideCount]SocketID, error) {
	if err := checkOrientation(o); err != nil {
		return [SideCount]SocketID{}, err
	}
	if face != FaceBottom && face != FaceTop {
		return [SideCount]SocketID{}, fmt.Errorf("%w: face %d", ErrInvalidSide, int(face))
	}
	return layerSockets(t, face, o), nil
}

// sideSockets is RotatedSideSockets without argument checks.
func sideSockets(t *TileDefinition, side Side, o Orientation) SidePair {
	c := mod6(int(side) - o.Rotation)
	if !o.Inverted {
		return t.Sides[c]
	}
	return InvertSidePair(t.Sides[mod6(-c)])
}

// layerSockets is RotatedLayerSockets without argument checks.
func layerSockets(t *TileDefinition, face Face, o Orientation) [SideCount]SocketID {
	src := t.Layers.Face(face)
	var out [SideCount]SocketID
	for i := 0; i < SideCount; i++ {
		c := mod6(i - o.Rotation)
		if o.Inverted {
			c = mod6(1 - c)
		}
		out[i] = src[c]
	}
	return out
}

// InvertSidePair swaps the two corners of both edges of a side.
func InvertSidePair(p SidePair) SidePair {
	return SidePair{
		Bottom: [2]SocketID{p.Bottom[1], p.Bottom[0]},
		Top:    [2]SocketID{p.Top[1], p.Top[0]},
	}
}

// InvertLayer mirrors a face's corner ring.
func InvertLayer(corners [SideCount]SocketID) [SideCount]SocketID {
	var out [SideCount]SocketID
	for j := 0; j < SideCount; j++ {
		out[j] = corners[mod6(1-j)]
	}
	return out
}
