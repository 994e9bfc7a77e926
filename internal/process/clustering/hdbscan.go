package clustering

import (
	"math"
	"sort"
)

// Noise is the label given to points outside every cluster.
const Noise = -1

const (
	// MinSamples is the neighbour count, including the point itself, used
	// for core distances.
	MinSamples = 2

	minLambdaDistance = 1e-10

	// rootMembershipRatio is how far below the densest point a point may
	// leave the root and still belong to a single root cluster.
	rootMembershipRatio = 0.5
)

// HDBSCAN is hierarchical density-based clustering with excess-of-mass
// selection over Euclidean distance. When no split survives, the root is
// selected as one cluster; points that leave it well below the peak
// density stay noise.
type HDBSCAN struct{}

// Available always reports true.
func (HDBSCAN) Available() bool { return true }

// Labels assigns a cluster label in [0,k) or Noise to every point.
func (HDBSCAN) Labels(points [][]float64, minClusterSize int) ([]int, error) {
	n := len(points)
	labels := make([]int, n)

	for i := range labels {
		labels[i] = Noise
	}

	if minClusterSize < 2 {
		minClusterSize = 2
	}

	if n < minClusterSize || n < MinSamples {
		return labels, nil
	}

	edges := minimumSpanningTree(points)
	tree := singleLinkage(n, edges)
	condensed := condense(tree, n, minClusterSize)
	selected := selectClusters(condensed)

	if len(selected) == 0 {
		return rootLabels(condensed, n, minClusterSize), nil
	}

	return assignLabels(condensed, selected, n), nil
}

type edge struct {
	a, b int
	w    float64
}

func euclidean(a, b []float64) float64 {
	var sum float64

	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return math.Sqrt(sum)
}

// minimumSpanningTree runs Prim's algorithm over mutual reachability distance.
func minimumSpanningTree(points [][]float64) []edge {
	n := len(points)

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(points[i], points[j])
			dist[i][j], dist[j][i] = d, d
		}
	}

	core := make([]float64, n)
	row := make([]float64, n)

	for i := 0; i < n; i++ {
		copy(row, dist[i])
		sort.Float64s(row)
		core[i] = row[MinSamples-1]
	}

	mrd := func(i, j int) float64 {
		return max(core[i], core[j], dist[i][j])
	}

	inTree := make([]bool, n)
	best := make([]float64, n)
	from := make([]int, n)

	for i := range best {
		best[i] = math.Inf(1)
	}

	edges := make([]edge, 0, n-1)
	current := 0
	inTree[0] = true

	for len(edges) < n-1 {
		next, nextW := -1, math.Inf(1)

		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}

			if w := mrd(current, j); w < best[j] {
				best[j] = w
				from[j] = current
			}

			if best[j] < nextW {
				next, nextW = j, best[j]
			}
		}

		inTree[next] = true
		edges = append(edges, edge{a: from[next], b: next, w: nextW})
		current = next
	}

	sort.SliceStable(edges, func(i, j int) bool { return edges[i].w < edges[j].w })

	return edges
}

type treeNode struct {
	left, right int
	distance    float64
	size        int
}

// singleLinkage builds the dendrogram. Nodes 0..n-1 are points; merge k
// creates node n+k. The root is node 2n-2.
func singleLinkage(n int, edges []edge) []treeNode {
	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}

		return x
	}

	nodes := make([]treeNode, 2*n-1)
	for i := 0; i < n; i++ {
		nodes[i] = treeNode{left: -1, right: -1, size: 1}
	}

	for k, e := range edges {
		ra, rb := find(e.a), find(e.b)
		id := n + k

		nodes[id] = treeNode{left: ra, right: rb, distance: e.w, size: nodes[ra].size + nodes[rb].size}
		parent[ra], parent[rb] = id, id
	}

	return nodes
}

type condensedEdge struct {
	parent, child int
	lambda        float64
	size          int
}

func lambdaOf(d float64) float64 {
	return 1 / max(d, minLambdaDistance)
}

// condense walks the dendrogram top down and keeps only splits where both
// sides reach minClusterSize. Condensed cluster labels start at n; the root
// is n. Children always carry larger labels than their parents.
func condense(nodes []treeNode, n, minClusterSize int) []condensedEdge {
	root := len(nodes) - 1
	relabel := map[int]int{root: n}
	nextLabel := n + 1

	var out []condensedEdge

	var leaves func(int, func(int))
	leaves = func(node int, visit func(int)) {
		if node < n {
			visit(node)
			return
		}

		leaves(nodes[node].left, visit)
		leaves(nodes[node].right, visit)
	}

	fallOut := func(parent, node int, lambda float64) {
		leaves(node, func(p int) {
			out = append(out, condensedEdge{parent: parent, child: p, lambda: lambda, size: 1})
		})
	}

	queue := []int{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node < n {
			continue
		}

		label := relabel[node]
		left, right := nodes[node].left, nodes[node].right
		lambda := lambdaOf(nodes[node].distance)
		leftBig := nodes[left].size >= minClusterSize
		rightBig := nodes[right].size >= minClusterSize

		switch {
		case leftBig && rightBig:
			for _, child := range []int{left, right} {
				relabel[child] = nextLabel
				out = append(out, condensedEdge{parent: label, child: nextLabel, lambda: lambda, size: nodes[child].size})
				nextLabel++

				queue = append(queue, child)
			}
		case !leftBig && !rightBig:
			fallOut(label, left, lambda)
			fallOut(label, right, lambda)
		case leftBig:
			relabel[left] = label
			fallOut(label, right, lambda)

			queue = append(queue, left)
		default:
			relabel[right] = label
			fallOut(label, left, lambda)

			queue = append(queue, right)
		}
	}

	return out
}

// selectClusters applies excess-of-mass selection and returns the chosen
// condensed cluster labels. The root is excluded.
func selectClusters(tree []condensedEdge) map[int]bool {
	if len(tree) == 0 {
		return nil
	}

	root := tree[0].parent
	for _, e := range tree {
		root = min(root, e.parent)
	}

	birth := map[int]float64{root: 0}
	children := make(map[int][]int)

	for _, e := range tree {
		if e.size > 1 {
			birth[e.child] = e.lambda
			children[e.parent] = append(children[e.parent], e.child)
		}
	}

	stability := make(map[int]float64, len(birth))
	for c := range birth {
		stability[c] = 0
	}

	for _, e := range tree {
		stability[e.parent] += (e.lambda - birth[e.parent]) * float64(e.size)
	}

	clusters := make([]int, 0, len(birth))
	for c := range birth {
		if c != root {
			clusters = append(clusters, c)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(clusters)))

	selected := make(map[int]bool, len(clusters))
	for _, c := range clusters {
		selected[c] = true
	}

	var unselectSubtree func(int)
	unselectSubtree = func(c int) {
		for _, child := range children[c] {
			selected[child] = false
			unselectSubtree(child)
		}
	}

	for _, c := range clusters {
		var subtree float64
		for _, child := range children[c] {
			subtree += stability[child]
		}

		if len(children[c]) > 0 && subtree > stability[c] {
			selected[c] = false
			stability[c] = subtree

			continue
		}

		unselectSubtree(c)
	}

	for c, ok := range selected {
		if !ok {
			delete(selected, c)
		}
	}

	return selected
}

// assignLabels gives every point the label of its nearest selected
// ancestor cluster, or Noise when none exists.
func assignLabels(tree []condensedEdge, selected map[int]bool, n int) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}

	if len(selected) == 0 {
		return labels
	}

	ordered := make([]int, 0, len(selected))
	for c := range selected {
		ordered = append(ordered, c)
	}

	sort.Ints(ordered)

	index := make(map[int]int, len(ordered))
	for i, c := range ordered {
		index[c] = i
	}

	parentOf := make(map[int]int, len(tree))
	for _, e := range tree {
		parentOf[e.child] = e.parent
	}

	for p := 0; p < n; p++ {
		node, ok := parentOf[p]

		for ok {
			if selected[node] {
				labels[p] = index[node]
				break
			}

			node, ok = parentOf[node]
		}
	}

	return labels
}

// rootLabels labels the dense core of an unsplit tree as cluster 0. Every
// edge of such a tree is a point leaving the root.
func rootLabels(tree []condensedEdge, n, minClusterSize int) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}

	var peak float64

	for _, e := range tree {
		peak = max(peak, e.lambda)
	}

	members := 0

	for _, e := range tree {
		if e.size == 1 && e.child < n && e.lambda >= peak*rootMembershipRatio {
			members++
		}
	}

	if members < minClusterSize {
		return labels
	}

	for _, e := range tree {
		if e.size == 1 && e.child < n && e.lambda >= peak*rootMembershipRatio {
			labels[e.child] = 0
		}
	}

	return labels
}
