package dataprocessing

import "deliverydash/pkg/contracts/domain"

// ApplyFilter keeps orders placed strictly before f.Before whose traffic
// density is one of f.Traffic. A zero Before disables the date bound; an
// empty traffic selection keeps nothing.
func ApplyFilter(orders []domain.Order, f domain.Filter) []domain.Order {
	allowed := make(map[string]struct{}, len(f.Traffic))
	for _, t := range f.Traffic {
		allowed[t] = struct{}{}
	}

	kept := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if !f.Before.IsZero() && !o.OrderDate.Before(f.Before) {
			continue
		}
		if _, ok := allowed[o.TrafficDensity]; !ok {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}
