package modules

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Cycles returns the groups of modules that depend on each other in a
// cycle. Each group is sorted and groups are ordered by their first member.
func Cycles(g *Graph) [][]string {
	ids := map[string]int64{}
	names := map[int64]string{}
	directed := simple.NewDirectedGraph()

	nodeID := func(m string) int64 {
		if id, ok := ids[m]; ok {
			return id
		}
		id := int64(len(ids))
		ids[m] = id
		names[id] = m
		directed.AddNode(simple.Node(id))
		return id
	}

	for _, from := range sortedKeys(g.Efferent) {
		fromID := nodeID(from)
		for _, to := range sortedSet(g.Efferent[from]) {
			toID := nodeID(to)
			if fromID == toID {
				continue
			}
			directed.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
		}
	}

	var cycles [][]string
	for _, scc := range topo.TarjanSCC(directed) {
		if len(scc) < 2 {
			continue
		}
		group := make([]string, 0, len(scc))
		for _, n := range scc {
			group = append(group, names[n.ID()])
		}
		sort.Strings(group)
		cycles = append(cycles, group)
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}

func sortedKeys(m map[string]map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
