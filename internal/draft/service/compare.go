package service

import (
	"github.com/bistroplan/bistroplan/internal/draft"
	"github.com/bistroplan/bistroplan/internal/draft/compare"
)

// Compare produces the side-by-side report for two drafts by id.
func (s *Service) Compare(idA, idB string) (*compare.Report, error) {
	s.mu.RLock()
	a := s.findLocked(idA)
	b := s.findLocked(idB)
	if a == nil || b == nil {
		s.mu.RUnlock()
		return nil, draft.ErrNotFound
	}
	ca, cb := a.Clone(), b.Clone()
	s.mu.RUnlock()
	return compare.Drafts(ca, cb), nil
}
