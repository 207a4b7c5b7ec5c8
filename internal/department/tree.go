package department

import (
	"errors"
	"fmt"
)

var ErrParentNotFound = errors.New("parent department not found")

// CycleError reports a department whose parent chain loops back on itself.
type CycleError struct {
	DepartmentID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("department %s: parent chain forms a cycle", e.DepartmentID)
}

type Node struct {
	Department *Department
	Parent     *Node
	Children   []*Node
}

// Tree is the department hierarchy of one business. It is always acyclic:
// Build places any department it cannot attach safely at the top level.
type Tree struct {
	Roots []*Node
	// Cycles lists departments found on a parent loop, in discovery order.
	// They are kept in the tree as roots.
	Cycles []string

	nodes map[string]*Node
}

// Build attaches every department under its parent. A department becomes a
// root when it has no parent, points at itself, or its parent is missing or
// inactive. Roots and siblings keep input order; duplicate ids keep the first.
func Build(departments []*Department) *Tree {
	t := &Tree{nodes: make(map[string]*Node, len(departments))}

	ordered := make([]*Node, 0, len(departments))
	for _, d := range departments {
		if d == nil {
			continue
		}
		if _, dup := t.nodes[d.ID]; dup {
			continue
		}
		n := &Node{Department: d}
		t.nodes[d.ID] = n
		ordered = append(ordered, n)
	}

	parentOf := make(map[*Node]*Node, len(ordered))
	for _, n := range ordered {
		pid := n.Department.Parent()
		if pid == "" || pid == n.Department.ID {
			continue
		}
		if p, ok := t.nodes[pid]; ok && p.Department.IsActive {
			parentOf[n] = p
		}
	}

	t.breakCycles(ordered, parentOf)

	for _, n := range ordered {
		if p, ok := parentOf[n]; ok {
			n.Parent = p
			p.Children = append(p.Children, n)
			continue
		}
		t.Roots = append(t.Roots, n)
	}

	return t
}

func (t *Tree) breakCycles(ordered []*Node, parentOf map[*Node]*Node) {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[*Node]int, len(ordered))
	for _, start := range ordered {
		if state[start] == done {
			continue
		}

		var path []*Node
		n := start
		for n != nil && state[n] == unvisited {
			state[n] = visiting
			path = append(path, n)
			n = parentOf[n]
		}

		if n != nil && state[n] == visiting {
			onLoop := false
			for _, p := range path {
				if p == n {
					onLoop = true
				}
				if onLoop {
					delete(parentOf, p)
					t.Cycles = append(t.Cycles, p.Department.ID)
				}
			}
		}

		for _, p := range path {
			state[p] = done
		}
	}
}

func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

func (t *Tree) Contains(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

// Entry is one row of a flattened tree. AncestorsLast[i] tells whether the
// ancestor at level i was the last of its siblings, which is all a renderer
// needs to draw connector glyphs.
type Entry struct {
	Department    *Department
	Level         int
	IsLast        bool
	AncestorsLast []bool
}

// Flatten lists the tree depth first, parents before children, siblings in
// tree order. The subtree rooted at excludeID is left out entirely.
func Flatten(t *Tree, excludeID string) []Entry {
	out := make([]Entry, 0, t.Len())

	var walk func(nodes []*Node, level int, ancestors []bool)
	walk = func(nodes []*Node, level int, ancestors []bool) {
		visible := make([]*Node, 0, len(nodes))
		for _, n := range nodes {
			if excludeID != "" && n.Department.ID == excludeID {
				continue
			}
			visible = append(visible, n)
		}

		for i, n := range visible {
			last := i == len(visible)-1
			out = append(out, Entry{
				Department:    n.Department,
				Level:         level,
				IsLast:        last,
				AncestorsLast: append([]bool(nil), ancestors...),
			})

			next := make([]bool, len(ancestors), len(ancestors)+1)
			copy(next, ancestors)
			walk(n.Children, level+1, append(next, last))
		}
	}
	walk(t.Roots, 0, nil)

	return out
}

// Validate walks every department's declared parent chain, inactive parents
// included, and returns a *CycleError for the first department whose chain
// revisits a node before reaching a root or a missing parent.
//
// It is the all-or-nothing form of the check. The service reads cycles from
// Build, which reports every one in Tree.Cycles and keeps the tree usable,
// and refuses writes that would add one with ValidateParentChange.
func Validate(departments []*Department) error {
	byID := indexByID(departments)
	for _, d := range departments {
		if d == nil {
			continue
		}
		if err := checkChain(byID, d.ID); err != nil {
			return err
		}
	}
	return nil
}

// ValidateParentChange reports whether moving departmentID under
// newParentID keeps the hierarchy acyclic. An empty newParentID always
// passes.
func ValidateParentChange(departments []*Department, departmentID, newParentID string) error {
	if newParentID == "" {
		return nil
	}
	if newParentID == departmentID {
		return &CycleError{DepartmentID: departmentID}
	}

	byID := indexByID(departments)
	if _, ok := byID[newParentID]; !ok {
		return ErrParentNotFound
	}

	moved := &Department{ID: departmentID, ParentID: &newParentID}
	if current, ok := byID[departmentID]; ok {
		cp := *current
		cp.ParentID = &newParentID
		moved = &cp
	}
	byID[departmentID] = moved

	return checkChain(byID, departmentID)
}

func checkChain(byID map[string]*Department, id string) error {
	seen := map[string]struct{}{id: {}}
	for cur := byID[id]; cur != nil; {
		pid := cur.Parent()
		if pid == "" {
			return nil
		}
		if _, loop := seen[pid]; loop {
			return &CycleError{DepartmentID: id}
		}
		seen[pid] = struct{}{}
		cur = byID[pid]
	}
	return nil
}

func indexByID(departments []*Department) map[string]*Department {
	byID := make(map[string]*Department, len(departments))
	for _, d := range departments {
		if d == nil {
			continue
		}
		if _, dup := byID[d.ID]; !dup {
			byID[d.ID] = d
		}
	}
	return byID
}
