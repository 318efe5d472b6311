package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bistroplan/bistroplan/internal/draft"
	"github.com/bistroplan/bistroplan/internal/draft/store"
	"github.com/bistroplan/bistroplan/pkg/logger"
	"github.com/bistroplan/bistroplan/pkg/metrics"
)

// Notifier receives failed background saves. The in-memory mutation has
// already succeeded when a failure is delivered; the UI should surface a
// non-blocking "failed to save" indicator and keep the user's edit.
type Notifier func(draft.SaveFailure)

// Service owns the authoritative in-memory draft list and the active-draft
// pointer. All reads and actions are synchronous against that state; the
// document store only ever holds durable copies written in the background
// and is never the source of truth for a running session.
//
// A nil store, or an empty user id, puts the service in memory-only mode.
type Service struct {
	mu       sync.RWMutex
	drafts   []*draft.Draft
	activeID string
	compareA string
	compareB string

	st     store.Store
	userID string
	appID  string

	notify Notifier
	saves  sync.WaitGroup
	saveMu sync.Mutex
}

// New creates a service persisting through st for the given user and app.
// Pass a nil store or empty userID for memory-only operation.
func New(st store.Store, userID, appID string) *Service {
	return &Service{st: st, userID: userID, appID: appID}
}

// OnSaveFailure registers the callback for failed background writes.
// Call before the first action; there is exactly one notifier.
func (s *Service) OnSaveFailure(fn Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// Load pulls the user's drafts from the store and installs them. A load
// failure is fatal to the load path only: the service bootstraps a single
// default draft so the application stays usable offline. The same bootstrap
// covers a first-run user with no stored drafts.
func (s *Service) Load(ctx context.Context, defaultName string) error {
	if s.st == nil || s.userID == "" {
		s.bootstrap(defaultName)
		return nil
	}
	drafts, err := s.st.LoadDrafts(ctx, s.userID, s.appID)
	if err != nil {
		logger.Warnf("draft load failed for user %s, bootstrapping default draft: %v", s.userID, err)
		s.bootstrap(defaultName)
		return fmt.Errorf("load drafts: %w", err)
	}
	if len(drafts) == 0 {
		s.bootstrap(defaultName)
		return nil
	}
	s.ReplaceAll(drafts)
	return nil
}

func (s *Service) bootstrap(name string) {
	if strings.TrimSpace(name) == "" {
		name = "Draft 1"
	}
	d := draft.New(name)
	s.mu.Lock()
	s.drafts = []*draft.Draft{d}
	s.activeID = d.ID
	s.mu.Unlock()
	s.scheduleSave("bootstrap", d.ID)
}

// ReplaceAll bulk-loads a draft list. If the previously active id is no
// longer present the first draft (if any) becomes active, else none.
func (s *Service) ReplaceAll(drafts []*draft.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts = make([]*draft.Draft, len(drafts))
	copy(s.drafts, drafts)
	if s.findLocked(s.activeID) == nil {
		if len(s.drafts) > 0 {
			s.activeID = s.drafts[0].ID
		} else {
			s.activeID = ""
		}
	}
}

// ListDrafts returns draft summaries in list order. Never fails.
func (s *Service) ListDrafts() []draft.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summariesLocked()
}

func (s *Service) summariesLocked() []draft.Summary {
	out := make([]draft.Summary, 0, len(s.drafts))
	for _, d := range s.drafts {
		out = append(out, d.Summarize())
	}
	return out
}

// ActiveDraftID returns the id of the active draft, or "" when none is.
func (s *Service) ActiveDraftID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// CurrentView derives the view of the active draft. With no active draft it
// returns an all-empty default view, so consumers never need a nil check.
func (s *Service) CurrentView() draft.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.findLocked(s.activeID)
	if d == nil {
		return draft.View{Vendors: []draft.Vendor{}}
	}
	cp := d.Clone()
	return draft.View{BusinessPlan: cp.BusinessPlan, FinancialData: cp.FinancialData, Vendors: cp.Vendors}
}

// GetDraft returns a copy of the draft with the given id.
func (s *Service) GetDraft(id string) (*draft.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.findLocked(id)
	if d == nil {
		return nil, draft.ErrNotFound
	}
	return d.Clone(), nil
}

// SetActiveDraft switches the active draft. The derived current view updates
// atomically with the pointer.
func (s *Service) SetActiveDraft(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) == nil {
		return draft.ErrNotFound
	}
	s.activeID = id
	metrics.DraftOps.WithLabelValues("activate").Inc()
	return nil
}

// CreateDraft adds a draft and makes it active. With baseID set, the new
// draft deep-copies that draft's content; otherwise it starts blank. Naming
// policy lives at the call site: an empty trimmed name is rejected rather
// than invented here.
func (s *Service) CreateDraft(name, baseID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", draft.ErrInvalidName
	}
	s.mu.Lock()
	nd := draft.New(name)
	if baseID != "" {
		base := s.findLocked(baseID)
		if base == nil {
			s.mu.Unlock()
			return "", draft.ErrNotFound
		}
		cp := base.Clone()
		nd.BusinessPlan = cp.BusinessPlan
		nd.FinancialData = cp.FinancialData
		nd.Vendors = cp.Vendors
	}
	s.drafts = append(s.drafts, nd)
	s.activeID = nd.ID
	s.mu.Unlock()
	metrics.DraftOps.WithLabelValues("create").Inc()
	s.scheduleSave("create", nd.ID)
	return nd.ID, nil
}

// DuplicateDraft copies a draft under a new name without changing which
// draft is active: duplication is a background copy, not a navigation.
func (s *Service) DuplicateDraft(sourceID, newName string) (string, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return "", draft.ErrInvalidName
	}
	s.mu.Lock()
	src := s.findLocked(sourceID)
	if src == nil {
		s.mu.Unlock()
		return "", draft.ErrNotFound
	}
	cp := src.Clone()
	nd := draft.New(newName)
	nd.BusinessPlan = cp.BusinessPlan
	nd.FinancialData = cp.FinancialData
	nd.Vendors = cp.Vendors
	s.drafts = append(s.drafts, nd)
	s.mu.Unlock()
	metrics.DraftOps.WithLabelValues("duplicate").Inc()
	s.scheduleSave("duplicate", nd.ID)
	return nd.ID, nil
}

// RenameDraft changes a draft's label.
func (s *Service) RenameDraft(id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return draft.ErrInvalidName
	}
	s.mu.Lock()
	d := s.findLocked(id)
	if d == nil {
		s.mu.Unlock()
		return draft.ErrNotFound
	}
	d.Name = newName
	d.UpdatedAt = time.Now().UTC()
	s.mu.Unlock()
	metrics.DraftOps.WithLabelValues("rename").Inc()
	s.scheduleSave("rename", id)
	return nil
}

// DeleteDraft removes a draft. The sole remaining draft can never be
// deleted. When the active draft is deleted, the most recently updated
// remaining draft is promoted.
func (s *Service) DeleteDraft(id string) error {
	s.mu.Lock()
	idx := -1
	for i, d := range s.drafts {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return draft.ErrNotFound
	}
	if len(s.drafts) == 1 {
		s.mu.Unlock()
		return draft.ErrLastDraft
	}
	s.drafts = append(s.drafts[:idx], s.drafts[idx+1:]...)
	if s.activeID == id {
		s.activeID = s.mostRecentLocked().ID
	}
	if s.compareA == id || s.compareB == id {
		s.compareA, s.compareB = "", ""
	}
	s.mu.Unlock()
	metrics.DraftOps.WithLabelValues("delete").Inc()
	s.scheduleDelete(id)
	return nil
}

// SetComparisonPair records the two drafts selected for comparison.
// Clearing is SetComparisonPair("", "").
func (s *Service) SetComparisonPair(idA, idB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idA == "" && idB == "" {
		s.compareA, s.compareB = "", ""
		return nil
	}
	if s.findLocked(idA) == nil || s.findLocked(idB) == nil {
		return draft.ErrNotFound
	}
	s.compareA, s.compareB = idA, idB
	return nil
}

// ComparisonPair returns the currently selected pair ("", "" when cleared).
func (s *Service) ComparisonPair() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compareA, s.compareB
}

// UpdateBusinessPlanSection merges field values into one section of the
// active draft. A no-op (logged) when no draft is active or the section is
// unknown: both indicate a UI bug, not a user-facing error.
func (s *Service) UpdateBusinessPlanSection(section string, patch map[string]string) {
	s.mutateActive("plan:"+section, func(d *draft.Draft) bool {
		if !d.BusinessPlan.ApplyPatch(section, patch) {
			logger.Warnf("unknown business-plan section %q ignored", section)
			return false
		}
		return true
	})
}

// UpdateFinancialSection merges numeric field values into one category of
// the active draft.
func (s *Service) UpdateFinancialSection(category string, patch map[string]float64) {
	s.mutateActive("financial:"+category, func(d *draft.Draft) bool {
		if !d.FinancialData.ApplyPatch(category, patch) {
			logger.Warnf("unknown financial category %q ignored", category)
			return false
		}
		return true
	})
}

// SetVendors replaces the active draft's vendor list.
func (s *Service) SetVendors(vendors []draft.Vendor) {
	s.mutateActive("vendors:set", func(d *draft.Draft) bool {
		d.Vendors = make([]draft.Vendor, len(vendors))
		copy(d.Vendors, vendors)
		return true
	})
}

// AddVendor appends a vendor to the active draft. A missing vendor id is
// filled in so later removal and comparison have a stable key.
func (s *Service) AddVendor(v draft.Vendor) {
	if v.ID == "" {
		v.ID = draft.NewID()
	}
	s.mutateActive("vendors:add", func(d *draft.Draft) bool {
		d.Vendors = append(d.Vendors, v)
		return true
	})
}

// RemoveVendor deletes a vendor from the active draft by id. Unknown ids
// are ignored without touching the draft.
func (s *Service) RemoveVendor(vendorID string) {
	s.mutateActive("vendors:remove", func(d *draft.Draft) bool {
		for i, v := range d.Vendors {
			if v.ID == vendorID {
				d.Vendors = append(d.Vendors[:i], d.Vendors[i+1:]...)
				return true
			}
		}
		return false
	})
}

// mutateActive applies fn to the active draft, refreshes its updatedAt and
// schedules persistence of the latest snapshot. This is the single funnel
// for all content mutations. fn returns false to signal "nothing changed".
func (s *Service) mutateActive(op string, fn func(*draft.Draft) bool) {
	s.mu.Lock()
	d := s.findLocked(s.activeID)
	if d == nil {
		s.mu.Unlock()
		logger.Warnf("content mutation %q with no active draft ignored", op)
		return
	}
	if !fn(d) {
		s.mu.Unlock()
		return
	}
	d.UpdatedAt = time.Now().UTC()
	id := d.ID
	s.mu.Unlock()
	metrics.DraftOps.WithLabelValues("update").Inc()
	s.scheduleSave(op, id)
}

// Flush blocks until every scheduled write has settled. Used on shutdown
// and by tests.
func (s *Service) Flush() {
	s.saves.Wait()
}

// scheduleSave persists one draft plus the rebuilt listing index in the
// background. Writes are idempotent "put latest state": the snapshot is
// captured when the write actually runs, and writes for one service are
// serialized, so the store always converges on the newest in-memory state
// however quickly edits are issued.
func (s *Service) scheduleSave(op, draftID string) {
	if s.st == nil || s.userID == "" {
		return
	}
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		s.saveMu.Lock()
		defer s.saveMu.Unlock()
		s.mu.RLock()
		d := s.findLocked(draftID)
		var snap *draft.Draft
		if d != nil {
			snap = d.Clone()
		}
		index := s.summariesLocked()
		s.mu.RUnlock()
		if snap == nil {
			// deleted before the write ran; the delete task owns cleanup
			return
		}
		ctx := context.Background()
		if err := s.st.SaveDraft(ctx, s.userID, s.appID, snap); err != nil {
			s.reportSaveFailure(draftID, op, err)
			return
		}
		if err := s.st.SaveDraftsIndex(ctx, s.userID, s.appID, index); err != nil {
			s.reportSaveFailure(draftID, op+":index", err)
		}
	}()
}

func (s *Service) scheduleDelete(draftID string) {
	if s.st == nil || s.userID == "" {
		return
	}
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		s.saveMu.Lock()
		defer s.saveMu.Unlock()
		s.mu.RLock()
		index := s.summariesLocked()
		s.mu.RUnlock()
		ctx := context.Background()
		if err := s.st.DeleteDraft(ctx, s.userID, s.appID, draftID); err != nil && err != store.ErrNotFound {
			s.reportSaveFailure(draftID, "delete", err)
			return
		}
		if err := s.st.SaveDraftsIndex(ctx, s.userID, s.appID, index); err != nil {
			s.reportSaveFailure(draftID, "delete:index", err)
		}
	}()
}

func (s *Service) reportSaveFailure(draftID, op string, err error) {
	logger.Warnf("background save %s for draft %s failed: %v", op, draftID, err)
	metrics.SaveFailures.WithLabelValues(op).Inc()
	s.mu.RLock()
	notify := s.notify
	s.mu.RUnlock()
	if notify != nil {
		notify(draft.SaveFailure{DraftID: draftID, Op: op, Err: err})
	}
}

// findLocked returns the draft with the given id, or nil. Caller holds s.mu.
func (s *Service) findLocked(id string) *draft.Draft {
	if id == "" {
		return nil
	}
	for _, d := range s.drafts {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// mostRecentLocked returns the most recently updated draft. Caller holds
// s.mu and guarantees the list is non-empty.
func (s *Service) mostRecentLocked() *draft.Draft {
	best := s.drafts[0]
	for _, d := range s.drafts[1:] {
		if d.UpdatedAt.After(best.UpdatedAt) {
			best = d
		}
	}
	return best
}
