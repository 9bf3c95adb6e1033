package domain

import "slices"

// DeliveryDateSet delivery dates for one postal code, unique by calendar value.
// The zero value is an empty set ready for use.
type DeliveryDateSet struct {
	dates map[DeliveryDate]struct{}
}

// NewDeliveryDateSet builds a set, dropping duplicates
func NewDeliveryDateSet(dates ...DeliveryDate) DeliveryDateSet {
	s := DeliveryDateSet{dates: make(map[DeliveryDate]struct{}, len(dates))}
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add inserts d and reports whether it was new
func (s *DeliveryDateSet) Add(d DeliveryDate) bool {
	if s.dates == nil {
		s.dates = make(map[DeliveryDate]struct{})
	}
	if _, ok := s.dates[d]; ok {
		return false
	}
	s.dates[d] = struct{}{}
	return true
}

// Len number of unique dates
func (s DeliveryDateSet) Len() int {
	return len(s.dates)
}

// Contains reports whether d is in the set
func (s DeliveryDateSet) Contains(d DeliveryDate) bool {
	_, ok := s.dates[d]
	return ok
}

// Sorted returns the dates in ascending calendar order
func (s DeliveryDateSet) Sorted() []DeliveryDate {
	out := make([]DeliveryDate, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	slices.SortFunc(out, DeliveryDate.Compare)
	return out
}
