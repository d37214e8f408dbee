package catalog

import (
	"bytes"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// nameOrder orders products by name using a locale collator, falling back to
// the identifier so that distinct products never compare equal. A Collator is
// not safe for concurrent use, hence the mutex.
type nameOrder struct {
	mu       sync.Mutex
	collator *collate.Collator
}

func newNameOrder(tag string) *nameOrder {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.Spanish
	}
	return &nameOrder{collator: collate.New(lang)}
}

func (o *nameOrder) less(a, b Product) bool {
	o.mu.Lock()
	c := o.collator.CompareString(a.Name, b.Name)
	o.mu.Unlock()

	if c != 0 {
		return c < 0
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}
