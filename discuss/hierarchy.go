package discuss

// BuildHierarchy links a flat, ordered list of items into trees by their
// parent references. Two passes over a flat slice: first an id index, then
// each item is either appended to the root list (nil parent) or handed to
// appendChild for its parent. An item whose parent is not in the list (for
// example outside the fetched page) becomes a root instead of being
// dropped. Input order is preserved within each level.
func BuildHierarchy[T any](
	items []*T,
	id func(*T) string,
	parentID func(*T) *string,
	appendChild func(parent, child *T),
) []*T {
	index := make(map[string]*T, len(items))
	for _, item := range items {
		index[id(item)] = item
	}

	roots := make([]*T, 0, len(items))

	for _, item := range items {
		pid := parentID(item)
		if pid == nil {
			roots = append(roots, item)

			continue
		}

		parent, ok := index[*pid]
		if !ok {
			roots = append(roots, item)

			continue
		}

		appendChild(parent, item)
	}

	return roots
}
