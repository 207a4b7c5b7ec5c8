package department

// IDSet is a set of department ids.
type IDSet map[string]struct{}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IsDescendant reports whether ancestorID appears on candidateID's parent
// chain. A department is not its own descendant.
func IsDescendant(t *Tree, candidateID, ancestorID string) bool {
	if candidateID == ancestorID {
		return false
	}
	n, ok := t.Node(candidateID)
	if !ok {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Department.ID == ancestorID {
			return true
		}
	}
	return false
}

// IsChild is the one-hop form of IsDescendant.
func IsChild(t *Tree, candidateID, parentID string) bool {
	n, ok := t.Node(candidateID)
	return ok && n.Parent != nil && n.Parent.Department.ID == parentID
}

// Descendants returns every department below departmentID, excluding
// departmentID itself.
func Descendants(t *Tree, departmentID string) IDSet {
	out := IDSet{}
	n, ok := t.Node(departmentID)
	if !ok {
		return out
	}

	stack := append([]*Node(nil), n.Children...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out[cur.Department.ID] = struct{}{}
		stack = append(stack, cur.Children...)
	}
	return out
}

// Subtree returns departmentID together with all of its descendants.
func Subtree(t *Tree, departmentID string) IDSet {
	out := Descendants(t, departmentID)
	if t.Contains(departmentID) {
		out[departmentID] = struct{}{}
	}
	return out
}
