package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/coaching"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/db"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/unify"
)

type Handler struct {
	Unify     *unify.Service
	Coaching  *coaching.Engine
	Store     *db.Store
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

func (h *Handler) Healthz(c *gin.Context) {
	resp := gin.H{"status": "ok", "cache_loaded_at": h.Unify.LoadedAt()}
	c.JSON(http.StatusOK, resp)
}

// @Summary Search service orders
// @Description Filtered, paginated query over the normalized order collection
// @Tags orders
// @Produce json
// @Param search query string false "Free-text match on order no, customer, technician"
// @Param planning_area query string false "Planning area"
// @Param technician query string false "Technician id"
// @Param customer_rating query string false "1-5 or 'unrated'"
// @Param tech_rating query string false "1-5 or 'unrated'"
// @Param date_from query string false "Inclusive complete-date lower bound (YYYY-MM-DD)"
// @Param date_to query string false "Inclusive complete-date upper bound (YYYY-MM-DD)"
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page offset"
// @Success 200 {object} unify.SearchResult
// @Router /api/service-orders [get]
func (h *Handler) ServiceOrdersSearch(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	params := unify.SearchParams{
		Search:         c.Query("search"),
		PlanningArea:   c.Query("planning_area"),
		Technician:     c.Query("technician"),
		CustomerRating: c.Query("customer_rating"),
		TechRating:     c.Query("tech_rating"),
		Limit:          limit,
		Offset:         offset,
	}
	if from, ok := parseQueryDate(c.Query("date_from")); ok {
		params.DateFrom = &from
	}
	if to, ok := parseQueryDate(c.Query("date_to")); ok {
		params.DateTo = &to
	}

	c.JSON(http.StatusOK, h.Unify.SearchServiceOrders(params))
}

func (h *Handler) CompletedServiceOrders(c *gin.Context) {
	orders := h.Unify.CompletedServiceOrders()
	c.JSON(http.StatusOK, gin.H{"items": orders, "count": len(orders)})
}

func (h *Handler) TechniciansList(c *gin.Context) {
	district := c.Query("district")
	area := c.Query("planning_area")
	status := c.Query("status")

	var items []models.Technician
	for _, t := range h.Unify.Technicians() {
		if district != "" && !strings.EqualFold(t.District, district) {
			continue
		}
		if area != "" && !strings.EqualFold(t.PlanningArea, area) {
			continue
		}
		if status != "" && !strings.EqualFold(t.Status, status) {
			continue
		}
		items = append(items, t)
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *Handler) TechnicianDetails(c *gin.Context) {
	id := c.Param("id")
	tech, ok := h.Unify.TechnicianByID(id)
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Technician not found", nil)
		return
	}
	c.JSON(http.StatusOK, tech)
}

// @Summary Technician performance insight
// @Tags coaching
// @Produce json
// @Param id path string true "Technician id"
// @Success 200 {object} models.TechnicianInsight
// @Failure 404 {object} map[string]any
// @Router /api/technicians/{id}/insights [get]
func (h *Handler) TechnicianInsights(c *gin.Context) {
	in, err := h.Coaching.AnalyzeTechnicianPerformance(c.Param("id"))
	if err != nil {
		if errors.Is(err, coaching.ErrTechnicianNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Technician not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "ANALYTICS_ERROR", "Insight computation failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, in)
}

func (h *Handler) TechnicianRecommendations(c *gin.Context) {
	recs, err := h.Coaching.GenerateForTechnician(c.Param("id"))
	if err != nil {
		if errors.Is(err, coaching.ErrTechnicianNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Technician not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "ANALYTICS_ERROR", "Recommendation generation failed", err.Error())
		return
	}
	recs = h.overlayStatuses(c, recs)
	c.JSON(http.StatusOK, gin.H{"items": recs, "count": len(recs)})
}

func (h *Handler) AllRecommendations(c *gin.Context) {
	recs := h.overlayStatuses(c, h.Coaching.AllRecommendations())
	c.JSON(http.StatusOK, gin.H{"items": recs, "count": len(recs)})
}

// @Summary Fleet coaching summary
// @Tags coaching
// @Produce json
// @Success 200 {object} models.CoachingSummary
// @Router /api/coaching/summary [get]
func (h *Handler) CoachingSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.Coaching.Summary())
}

func (h *Handler) ClearCache(c *gin.Context) {
	h.Unify.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type StatusUpdateRequest struct {
	Status models.RecommendationStatus `json:"status" validate:"required,oneof=pending in_progress completed dismissed"`
}

// UpdateRecommendationStatus persists a lifecycle transition for one
// recommendation. Requires a configured database; the core itself never
// persists anything.
func (h *Handler) UpdateRecommendationStatus(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusServiceUnavailable, "PERSISTENCE_DISABLED", "No database configured for status persistence", nil)
		return
	}

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	id := c.Param("id")
	var target *models.CoachingRecommendation
	for _, r := range h.Coaching.AllRecommendations() {
		if r.ID == id {
			rec := r
			target = &rec
			break
		}
	}
	if target == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Recommendation not found", nil)
		return
	}

	current := models.StatusPending
	stored, err := h.Store.GetStatus(c.Request.Context(), id)
	if err == nil {
		current = stored
	} else if !errors.Is(err, pgx.ErrNoRows) {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load status", err.Error())
		return
	}

	if !models.CanTransition(current, req.Status) {
		writeError(c, http.StatusConflict, "INVALID_TRANSITION", "Status transition not allowed", gin.H{
			"from": current, "to": req.Status,
		})
		return
	}

	if err := h.Store.SetStatus(c.Request.Context(), id, target.TechnicianID, req.Status); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to persist status", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// overlayStatuses merges persisted lifecycle state onto freshly computed
// recommendations. Without a store every recommendation stays pending.
func (h *Handler) overlayStatuses(c *gin.Context, recs []models.CoachingRecommendation) []models.CoachingRecommendation {
	if h.Store == nil || len(recs) == 0 {
		return recs
	}
	statuses, err := h.Store.ListStatuses(c.Request.Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to load persisted statuses")
		return recs
	}
	for i := range recs {
		if s, ok := statuses[recs[i].ID]; ok {
			recs[i].Status = s
		}
	}
	return recs
}

func parseQueryDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
