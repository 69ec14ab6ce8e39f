package circuit

// SetGroups overwrites the partition groups of node id.
func SetGroups(c *Circuit, id int, groups []int) { c.nodes[id].Groups = groups }
