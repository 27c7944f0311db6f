package dataset

import (
	"iter"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// DomainSet indexes concept ordinals by domain label using roaring
// bitmaps. It is built once at dataset construction and read-only
// afterwards, so it is safe for concurrent use.
type DomainSet struct {
	bitmaps map[string]*roaring.Bitmap
	order   []string // sorted labels
}

func newDomainSet() *DomainSet {
	return &DomainSet{
		bitmaps: make(map[string]*roaring.Bitmap),
	}
}

func (s *DomainSet) add(domain string, ord uint32) {
	rb, ok := s.bitmaps[domain]
	if !ok {
		rb = roaring.New()
		s.bitmaps[domain] = rb
		s.order = append(s.order, domain)
		sort.Strings(s.order)
	}
	rb.Add(ord)
}

// Domains returns all labels in sorted order.
func (s *DomainSet) Domains() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Count returns the number of concepts in a domain.
func (s *DomainSet) Count(domain string) uint64 {
	rb, ok := s.bitmaps[domain]
	if !ok {
		return 0
	}
	return rb.GetCardinality()
}

// Contains checks whether the concept ordinal belongs to the domain.
func (s *DomainSet) Contains(domain string, ord uint32) bool {
	rb, ok := s.bitmaps[domain]
	return ok && rb.Contains(ord)
}

// Bitmap returns the union of the given domains' ordinal bitmaps as a
// fresh bitmap the caller may mutate. Unknown labels contribute nothing;
// with no arguments the result is empty.
func (s *DomainSet) Bitmap(domains ...string) *roaring.Bitmap {
	out := roaring.New()
	for _, domain := range domains {
		if rb, ok := s.bitmaps[domain]; ok {
			out.Or(rb)
		}
	}
	return out
}

// Iterate yields the ordinals of a domain in ascending order.
func (s *DomainSet) Iterate(domain string) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		rb, ok := s.bitmaps[domain]
		if !ok {
			return
		}
		it := rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}
