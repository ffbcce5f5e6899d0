package marching

// EdgeMask returns the crossed-edge bitmask for a corner configuration.
func EdgeMask(config int) uint16 {
	return edgeTable[config]
}

// EdgeCorners returns the two corner indices joined by an edge.
func EdgeCorners(edge int) (int, int) {
	return edgeCorners[edge][0], edgeCorners[edge][1]
}

// PackedEdgeTable flattens the edge table into u32 form for upload to a
// GPU storage buffer.
func PackedEdgeTable() []uint32 {
	out := make([]uint32, len(edgeTable))
	for i, m := range edgeTable {
		out[i] = uint32(m)
	}
	return out
}

// PackedTriangleTable flattens the triangle table row-major into i32 form
// for upload to a GPU storage buffer. Rows keep their -1 terminators.
func PackedTriangleTable() []int32 {
	out := make([]int32, 0, len(triTable)*16)
	for _, row := range triTable {
		for _, e := range row {
			out = append(out, int32(e))
		}
	}
	return out
}
