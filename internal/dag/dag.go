package dag

import (
	"fmt"
	"strings"
)

// Graph is a dependency graph over named nodes kept in declaration order.
// An edge a -> b means a reads b, so b must settle before a can.
type Graph struct {
	nodes []string
	index map[string]int
	deps  [][]int
}

// New creates a graph with the given nodes in declaration order
func New(names []string) *Graph {
	g := &Graph{
		nodes: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, name := range names {
		if _, exists := g.index[name]; exists {
			continue
		}
		g.index[name] = len(g.nodes)
		g.nodes = append(g.nodes, name)
	}
	g.deps = make([][]int, len(g.nodes))
	return g
}

// AddDependency records that node depends on dependsOn
func (g *Graph) AddDependency(node, dependsOn string) error {
	from, ok := g.index[node]
	if !ok {
		return fmt.Errorf("node '%s' not found", node)
	}
	to, ok := g.index[dependsOn]
	if !ok {
		return fmt.Errorf("dependency '%s' of '%s' not found", dependsOn, node)
	}
	for _, existing := range g.deps[from] {
		if existing == to {
			return nil
		}
	}
	g.deps[from] = append(g.deps[from], to)
	return nil
}

// Nodes returns the node names in declaration order
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// DependsOn returns the direct dependencies of node
func (g *Graph) DependsOn(node string) []string {
	idx, ok := g.index[node]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.deps[idx]))
	for _, d := range g.deps[idx] {
		out = append(out, g.nodes[d])
	}
	return out
}

// Cycles returns the cycles met during a depth-first search, each rotated to
// start at its earliest-declared node and reported once
func (g *Graph) Cycles() [][]string {
	visited := make([]bool, len(g.nodes))
	visiting := make([]bool, len(g.nodes))
	var stack []int
	seen := make(map[string]bool)
	var cycles [][]string

	var visit func(int)
	visit = func(n int) {
		visiting[n] = true
		stack = append(stack, n)

		for _, dep := range g.deps[n] {
			if visiting[dep] {
				start := len(stack) - 1
				for stack[start] != dep {
					start--
				}
				cycle := rotate(stack[start:])
				key := g.key(cycle)
				if !seen[key] {
					seen[key] = true
					names := make([]string, len(cycle))
					for i, idx := range cycle {
						names[i] = g.nodes[idx]
					}
					cycles = append(cycles, names)
				}
				continue
			}
			if !visited[dep] {
				visit(dep)
			}
		}

		stack = stack[:len(stack)-1]
		visiting[n] = false
		visited[n] = true
	}

	for i := range g.nodes {
		if !visited[i] {
			visit(i)
		}
	}
	return cycles
}

// Order returns the nodes sorted so that every node comes after its
// dependencies, using Kahn's algorithm with declaration order as tiebreak
func (g *Graph) Order() ([]string, error) {
	n := len(g.nodes)
	dependents := make([][]int, n)
	inDegree := make([]int, n)
	for from, deps := range g.deps {
		for _, to := range deps {
			dependents[to] = append(dependents[to], from)
			inDegree[from]++
		}
	}

	ready := make([]bool, n)
	for i := 0; i < n; i++ {
		ready[i] = inDegree[i] == 0
	}

	result := make([]string, 0, n)
	done := make([]bool, n)
	for len(result) < n {
		next := -1
		for i := 0; i < n; i++ {
			if ready[i] && !done[i] {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i := 0; i < n; i++ {
				if !done[i] {
					stuck = append(stuck, g.nodes[i])
				}
			}
			return nil, fmt.Errorf("circular dependency detected among: %s", strings.Join(stuck, ", "))
		}
		done[next] = true
		result = append(result, g.nodes[next])
		for _, dependent := range dependents[next] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready[dependent] = true
			}
		}
	}
	return result, nil
}

// Levels groups acyclic nodes by the length of their longest dependency
// chain. Level 0 holds nodes without dependencies. Nodes on or behind a
// cycle are left out.
func (g *Graph) Levels() [][]string {
	n := len(g.nodes)
	levels := make([]int, n)
	state := make([]int, n) // 0 unvisited, 1 visiting, 2 done, 3 cyclic

	var dfs func(int) int
	dfs = func(node int) int {
		switch state[node] {
		case 1, 3:
			state[node] = 3
			return -1
		case 2:
			return levels[node]
		}
		state[node] = 1

		level := 0
		for _, dep := range g.deps[node] {
			l := dfs(dep)
			if l < 0 {
				state[node] = 3
				return -1
			}
			if l+1 > level {
				level = l + 1
			}
		}
		levels[node] = level
		state[node] = 2
		return level
	}

	maxLevel := -1
	for i := 0; i < n; i++ {
		if l := dfs(i); l > maxLevel {
			maxLevel = l
		}
	}

	groups := make([][]string, maxLevel+1)
	for i := 0; i < n; i++ {
		if state[i] == 2 {
			groups[levels[i]] = append(groups[levels[i]], g.nodes[i])
		}
	}
	return groups
}

func (g *Graph) key(cycle []int) string {
	parts := make([]string, len(cycle))
	for i, idx := range cycle {
		parts[i] = g.nodes[idx]
	}
	return strings.Join(parts, "\x00")
}

// rotate returns a copy of cycle starting at its smallest index
func rotate(cycle []int) []int {
	minPos := 0
	for i, idx := range cycle {
		if idx < cycle[minPos] {
			minPos = i
		}
	}
	out := make([]int, 0, len(cycle))
	out = append(out, cycle[minPos:]...)
	out = append(out, cycle[:minPos]...)
	return out
}
