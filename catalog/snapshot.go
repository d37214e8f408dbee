package catalog

import (
	"github.com/google/btree"
	"github.com/google/uuid"
)

const btreeDegree = 32

// Snapshot is an immutable, name-ordered copy of the catalog. Reconcile
// derives a new Snapshot instead of mutating the receiver, so a Snapshot can
// be read from any goroutine once published.
type Snapshot struct {
	tree  *btree.BTreeG[Product]
	index map[uuid.UUID]Product
	order *nameOrder
}

// NewSnapshot orders products by name under the given collation tag. Rows that
// are not displayable are dropped, and a repeated identifier keeps the last row.
func NewSnapshot(products []Product, collation string) *Snapshot {
	order := newNameOrder(collation)
	s := &Snapshot{
		tree:  btree.NewG(btreeDegree, order.less),
		index: make(map[uuid.UUID]Product, len(products)),
		order: order,
	}
	for _, p := range products {
		if !p.Displayable() {
			continue
		}
		s.put(p)
	}
	return s
}

func (s *Snapshot) put(p Product) {
	if old, ok := s.index[p.ID]; ok {
		s.tree.Delete(old)
	}
	s.tree.ReplaceOrInsert(p)
	s.index[p.ID] = p
}

// Len returns the number of products; a nil Snapshot is empty.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return s.tree.Len()
}

// Get returns the product with the given identifier.
func (s *Snapshot) Get(id uuid.UUID) (Product, bool) {
	if s == nil {
		return Product{}, false
	}
	p, ok := s.index[id]
	return p, ok
}

// Ascend calls fn for each product in name order until fn returns false.
func (s *Snapshot) Ascend(fn func(Product) bool) {
	if s == nil {
		return
	}
	s.tree.Ascend(func(p Product) bool {
		return fn(p)
	})
}

// First returns up to n products in name order.
func (s *Snapshot) First(n int) []Product {
	out := make([]Product, 0, min(n, s.Len()))
	s.Ascend(func(p Product) bool {
		if len(out) >= n {
			return false
		}
		out = append(out, p)
		return true
	})
	return out
}

// with returns a copy of the snapshot in which p replaces the product with the
// same identifier. The receiver is left untouched.
func (s *Snapshot) with(p Product) *Snapshot {
	next := &Snapshot{
		tree:  s.tree.Clone(),
		index: make(map[uuid.UUID]Product, len(s.index)),
		order: s.order,
	}
	for id, existing := range s.index {
		next.index[id] = existing
	}
	next.put(p)
	return next
}
