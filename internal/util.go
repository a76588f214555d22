package internal

// Backtrack follows cameFrom links from end until it reaches a node without a
// predecessor. The returned chain starts at end.
func Backtrack[NodeType comparable](cameFrom map[NodeType]NodeType, end NodeType) []NodeType {
	chain := []NodeType{end}
	current := end
	for {
		previousNode, exists := cameFrom[current]
		if !exists {
			return chain
		}
		chain = append(chain, previousNode)
		current = previousNode
	}
}

// Reversed returns a reversed copy of nodes.
func Reversed[NodeType any](nodes []NodeType) []NodeType {
	out := make([]NodeType, len(nodes))
	for i, j := 0, len(nodes)-1; j >= 0; i, j = i+1, j-1 {
		out[i] = nodes[j]
	}
	return out
}
