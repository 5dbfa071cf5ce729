package static

import (
	"context"
	"sort"
	"strings"

	"github.com/wolfman30/docsmile-suite/internal/billing"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

func (s *Store) ListServices(ctx context.Context, creds records.Credentials, q records.ServiceQuery) (records.ServicePage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.ServicePage{}, err
	}

	search := strings.TrimSpace(q.Search)
	matched := make([]records.DentalService, 0, len(s.serviceOrder))
	for _, id := range s.serviceOrder {
		svc := *s.services[id]
		if q.IsActive != nil && svc.IsActive != *q.IsActive {
			continue
		}
		if q.Category != "" && svc.Category != q.Category {
			continue
		}
		if search != "" && !containsFold(svc.Name, search) && !containsFold(svc.Description, search) && !containsFold(svc.Code, search) {
			continue
		}
		matched = append(matched, svc)
	}
	page, pagination := records.Paginate(matched, q.Page, q.Limit)
	return records.ServicePage{Services: page, Pagination: pagination}, nil
}

func (s *Store) GetService(ctx context.Context, creds records.Credentials, id string) (records.DentalService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.DentalService{}, err
	}
	svc, ok := s.services[id]
	if !ok {
		return records.DentalService{}, notFound("service", id)
	}
	return *svc, nil
}

func (s *Store) ServiceCategories(ctx context.Context, creds records.Credentials) ([]records.CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return nil, err
	}
	counts := map[taxonomy.Category]int{}
	for _, svc := range s.services {
		if svc.IsActive {
			counts[svc.Category]++
		}
	}
	out := make([]records.CategoryCount, 0, len(counts))
	for _, c := range taxonomy.Categories() {
		if n := counts[c]; n > 0 {
			out = append(out, records.CategoryCount{Name: c, Count: n})
		}
	}
	return out, nil
}

func (s *Store) ServicesByCategory(ctx context.Context, creds records.Credentials, category taxonomy.Category) ([]records.DentalService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return nil, err
	}
	out := []records.DentalService{}
	for _, id := range s.serviceOrder {
		if svc := s.services[id]; svc.IsActive && svc.Category == category {
			out = append(out, *svc)
		}
	}
	return out, nil
}

func (s *Store) CreateService(ctx context.Context, creds records.Credentials, in records.ServiceInput) (records.DentalService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.DentalService{}, err
	}
	now := s.timestamp()
	svc := &records.DentalService{ID: newID(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	in.Apply(svc)
	s.services[svc.ID] = svc
	s.serviceOrder = append(s.serviceOrder, svc.ID)
	return *svc, nil
}

func (s *Store) UpdateService(ctx context.Context, creds records.Credentials, id string, in records.ServiceInput) (records.DentalService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.DentalService{}, err
	}
	svc, ok := s.services[id]
	if !ok {
		return records.DentalService{}, notFound("service", id)
	}
	in.Apply(svc)
	svc.UpdatedAt = s.timestamp()
	return *svc, nil
}

func (s *Store) DeleteService(ctx context.Context, creds records.Credentials, id string) error {
	_, err := s.setServiceActive(creds, id, false)
	return err
}

func (s *Store) RestoreService(ctx context.Context, creds records.Credentials, id string) (records.DentalService, error) {
	return s.setServiceActive(creds, id, true)
}

func (s *Store) setServiceActive(creds records.Credentials, id string, active bool) (records.DentalService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.DentalService{}, err
	}
	svc, ok := s.services[id]
	if !ok {
		return records.DentalService{}, notFound("service", id)
	}
	svc.IsActive = active
	svc.UpdatedAt = s.timestamp()
	return *svc, nil
}

func (s *Store) ServiceStats(ctx context.Context, creds records.Credentials) (records.ServiceStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.ServiceStats{}, err
	}

	stats := records.ServiceStats{ByCategory: []records.CategoryStat{}}
	sums := map[taxonomy.Category]float64{}
	counts := map[taxonomy.Category]int{}
	for _, svc := range s.services {
		stats.Total++
		if !svc.IsActive {
			stats.Inactive++
			continue
		}
		stats.Active++
		sums[svc.Category] += svc.Price
		counts[svc.Category]++
	}
	for category, n := range counts {
		stats.ByCategory = append(stats.ByCategory, records.CategoryStat{
			Category: category,
			Count:    n,
			AvgPrice: billing.RoundCents(sums[category] / float64(n)),
		})
	}
	sort.Slice(stats.ByCategory, func(i, j int) bool {
		if stats.ByCategory[i].Count != stats.ByCategory[j].Count {
			return stats.ByCategory[i].Count > stats.ByCategory[j].Count
		}
		return stats.ByCategory[i].Category < stats.ByCategory[j].Category
	})
	return stats, nil
}
