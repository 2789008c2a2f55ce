package sync

import "github.com/mydv/vrsync/internal/vehicles"

// partition splits vs into consecutive groups of at most size vehicles
func partition(vs []vehicles.Vehicle, size int) [][]vehicles.Vehicle {
	if size <= 0 {
		size = 1
	}
	groups := make([][]vehicles.Vehicle, 0, (len(vs)+size-1)/size)
	for start := 0; start < len(vs); start += size {
		end := min(start+size, len(vs))
		groups = append(groups, vs[start:end])
	}
	return groups
}
