package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/bistroplan/bistroplan/internal/draft"
	"github.com/bistroplan/bistroplan/internal/draft/service"
	"github.com/bistroplan/bistroplan/internal/draft/store"
	"github.com/bistroplan/bistroplan/internal/identity"
	"github.com/bistroplan/bistroplan/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Exporter snapshots a draft to external storage and returns a download URL.
type Exporter interface {
	ExportDraft(ctx context.Context, userID string, d *draft.Draft, expires time.Duration) (string, error)
}

// Handler exposes the draft workspace over HTTP. Each authenticated user
// gets one lazily created service instance persisting through the shared
// store; anonymous requests share a memory-only workspace.
type Handler struct {
	mu          sync.Mutex
	workspaces  map[string]*workspace
	st          store.Store
	appID       string
	defaultName string
	exporter    Exporter
}

type workspace struct {
	svc      *service.Service
	mu       sync.Mutex
	failures []saveFailure
}

type saveFailure struct {
	DraftID string    `json:"draftId"`
	Op      string    `json:"op"`
	Error   string    `json:"error"`
	At      time.Time `json:"at"`
}

// keep only the most recent failures; the UI shows an indicator, not a log
const maxFailures = 20

func New(st store.Store, appID, defaultName string, exporter Exporter) *Handler {
	return &Handler{
		workspaces:  make(map[string]*workspace),
		st:          st,
		appID:       appID,
		defaultName: defaultName,
		exporter:    exporter,
	}
}

// Register mounts all draft routes under /api.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")

	api.GET("/drafts", h.listDrafts)
	api.POST("/drafts", h.createDraft)
	api.GET("/drafts/:id", h.getDraft)
	api.PATCH("/drafts/:id", h.renameDraft)
	api.DELETE("/drafts/:id", h.deleteDraft)
	api.POST("/drafts/:id/activate", h.activateDraft)
	api.POST("/drafts/:id/duplicate", h.duplicateDraft)
	api.POST("/drafts/:id/export", h.exportDraft)

	api.GET("/workspace", h.currentView)
	api.PUT("/workspace/plan/:section", h.updatePlanSection)
	api.PUT("/workspace/financial/:category", h.updateFinancialSection)
	api.PUT("/workspace/vendors", h.setVendors)
	api.POST("/workspace/vendors", h.addVendor)
	api.DELETE("/workspace/vendors/:vendorId", h.removeVendor)

	api.GET("/comparison", h.comparisonReport)
	api.PUT("/comparison", h.setComparisonPair)

	api.GET("/save-failures", h.saveFailures)
}

// workspaceFor resolves (and lazily creates) the caller's workspace. The
// first touch loads persisted drafts; a load failure already bootstrapped a
// default draft, so it is logged and not surfaced.
func (h *Handler) workspaceFor(c *gin.Context) *workspace {
	userID := identity.FromContext(c.Get)
	h.mu.Lock()
	defer h.mu.Unlock()
	if ws, ok := h.workspaces[userID]; ok {
		return ws
	}
	ws := &workspace{svc: service.New(h.st, userID, h.appID)}
	ws.svc.OnSaveFailure(func(f draft.SaveFailure) {
		ws.mu.Lock()
		defer ws.mu.Unlock()
		ws.failures = append(ws.failures, saveFailure{
			DraftID: f.DraftID, Op: f.Op, Error: f.Err.Error(), At: time.Now().UTC(),
		})
		if len(ws.failures) > maxFailures {
			ws.failures = ws.failures[len(ws.failures)-maxFailures:]
		}
	})
	if err := ws.svc.Load(c.Request.Context(), h.defaultName); err != nil {
		logger.Warnf("workspace load for user %q degraded to defaults: %v", userID, err)
	}
	h.workspaces[userID] = ws
	return ws
}

func actionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, draft.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
	case errors.Is(err, draft.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "draft name must not be empty"})
	case errors.Is(err, draft.ErrLastDraft):
		c.JSON(http.StatusConflict, gin.H{"error": "the last remaining draft cannot be deleted"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) listDrafts(c *gin.Context) {
	ws := h.workspaceFor(c)
	c.JSON(http.StatusOK, gin.H{
		"drafts":        ws.svc.ListDrafts(),
		"activeDraftId": ws.svc.ActiveDraftID(),
	})
}

func (h *Handler) createDraft(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		BaseDraftID string `json:"baseDraftId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws := h.workspaceFor(c)
	id, err := ws.svc.CreateDraft(req.Name, req.BaseDraftID)
	if err != nil {
		actionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) getDraft(c *gin.Context) {
	ws := h.workspaceFor(c)
	d, err := ws.svc.GetDraft(c.Param("id"))
	if err != nil {
		actionError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) renameDraft(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws := h.workspaceFor(c)
	if err := ws.svc.RenameDraft(c.Param("id"), req.Name); err != nil {
		actionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "name": req.Name})
}

func (h *Handler) deleteDraft(c *gin.Context) {
	ws := h.workspaceFor(c)
	if err := ws.svc.DeleteDraft(c.Param("id")); err != nil {
		actionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) activateDraft(c *gin.Context) {
	ws := h.workspaceFor(c)
	if err := ws.svc.SetActiveDraft(c.Param("id")); err != nil {
		actionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activeDraftId": c.Param("id")})
}

func (h *Handler) duplicateDraft(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws := h.workspaceFor(c)
	id, err := ws.svc.DuplicateDraft(c.Param("id"), req.Name)
	if err != nil {
		actionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) exportDraft(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export storage not configured"})
		return
	}
	userID := identity.FromContext(c.Get)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "export requires a signed-in user"})
		return
	}
	ws := h.workspaceFor(c)
	d, err := ws.svc.GetDraft(c.Param("id"))
	if err != nil {
		actionError(c, err)
		return
	}
	url, err := h.exporter.ExportDraft(c.Request.Context(), userID, d, time.Hour)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "export failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresIn": "1h"})
}

func (h *Handler) currentView(c *gin.Context) {
	ws := h.workspaceFor(c)
	c.JSON(http.StatusOK, gin.H{
		"activeDraftId": ws.svc.ActiveDraftID(),
		"view":          ws.svc.CurrentView(),
	})
}

func (h *Handler) updatePlanSection(c *gin.Context) {
	var patch map[string]string
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws := h.workspaceFor(c)
	ws.svc.UpdateBusinessPlanSection(c.Param("section"), patch)
	c.Status(http.StatusNoContent)
}

func (h *Handler) updateFinancialSection(c *gin.Context) {
	var patch map[string]float64
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws := h.workspaceFor(c)
	ws.svc.UpdateFinancialSection(c.Param("category"), patch)
	c.Status(http.StatusNoContent)
}

func (h *Handler) setVendors(c *gin.Context) {
	var vendors []draft.Vendor
	if err := c.ShouldBindJSON(&vendors); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws := h.workspaceFor(c)
	ws.svc.SetVendors(vendors)
	c.Status(http.StatusNoContent)
}

func (h *Handler) addVendor(c *gin.Context) {
	var v draft.Vendor
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws := h.workspaceFor(c)
	ws.svc.AddVendor(v)
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeVendor(c *gin.Context) {
	ws := h.workspaceFor(c)
	ws.svc.RemoveVendor(c.Param("vendorId"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) setComparisonPair(c *gin.Context) {
	var req struct {
		IDA string `json:"idA"`
		IDB string `json:"idB"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws := h.workspaceFor(c)
	if err := ws.svc.SetComparisonPair(req.IDA, req.IDB); err != nil {
		actionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) comparisonReport(c *gin.Context) {
	ws := h.workspaceFor(c)
	idA, idB := ws.svc.ComparisonPair()
	// direct query params override the stored pair for one-off comparisons
	if a, b := c.Query("a"), c.Query("b"); a != "" && b != "" {
		idA, idB = a, b
	}
	if idA == "" || idB == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no comparison pair selected"})
		return
	}
	report, err := ws.svc.Compare(idA, idB)
	if err != nil {
		actionError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// saveFailures returns (and clears) pending failed-save notifications for
// the caller's workspace. The UI polls this for its "failed to save" toast.
func (h *Handler) saveFailures(c *gin.Context) {
	ws := h.workspaceFor(c)
	ws.svc.Flush()
	ws.mu.Lock()
	out := ws.failures
	ws.failures = nil
	ws.mu.Unlock()
	if out == nil {
		out = []saveFailure{}
	}
	c.JSON(http.StatusOK, gin.H{"failures": out})
}
