package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parking-gate-service/internal/config"
	"parking-gate-service/internal/domain/parking"
	"parking-gate-service/internal/service"
)

type Handler struct {
	admissions *service.AdmissionService
	stats      *service.StatsService
	config     *config.Config
	log        zerolog.Logger
}

func NewHandler(
	admissions *service.AdmissionService,
	stats *service.StatsService,
	cfg *config.Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		admissions: admissions,
		stats:      stats,
		config:     cfg,
		log:        log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Read-only endpoints, polled by the console UI
	public := r.Group("/api/v1")
	{
		public.GET("/reservations", h.listReservations)
		public.GET("/reservations/:id/admissions", h.reservationHistory)
		public.GET("/admissions", h.recentAdmissions)
		public.GET("/admissions/decision", h.evaluateAdmission)
		public.GET("/stats", h.dailyStats)
	}

	// Mutations carry the operator's badge token
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.POST("/admissions", h.admitVehicle)
		protected.POST("/reservations", h.provisionReservation)
	}
}

func (h *Handler) listReservations(c *gin.Context) {
	if fragment := strings.TrimSpace(c.Query("plate")); fragment != "" {
		matches, err := h.admissions.SearchReservations(c.Request.Context(), fragment)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse(matches))
		return
	}

	reservations, err := h.admissions.ListReservations(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(reservations))
}

func (h *Handler) reservationHistory(c *gin.Context) {
	records, err := h.admissions.HistoryForReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) recentAdmissions(c *gin.Context) {
	records, err := h.admissions.RecentAdmissions(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	if l := c.Query("limit"); l != "" {
		if limit, err := strconv.Atoi(l); err == nil && limit >= 0 && limit < len(records) {
			records = records[:limit]
		}
	}

	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) evaluateAdmission(c *gin.Context) {
	fragment := strings.TrimSpace(c.Query("plate"))
	if fragment == "" {
		c.JSON(http.StatusBadRequest, errorResponse("plate parameter is required"))
		return
	}

	decision, err := h.admissions.Evaluate(c.Request.Context(), fragment)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(decision))
}

type admitRequest struct {
	ReservationID string `json:"reservation_id"`
	Plate         string `json:"plate" binding:"required"`
	ChargeFee     bool   `json:"charge_fee"`
}

func (h *Handler) admitVehicle(c *gin.Context) {
	var req admitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	operatorID := c.GetString(operatorKey)
	record, err := h.admissions.Admit(c.Request.Context(), req.ReservationID, req.Plate, req.ChargeFee, operatorID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// Consistency fault: the reservation vanished after the
			// decision step. The console re-runs the evaluation.
			c.JSON(http.StatusConflict, errorResponse(err.Error()))
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) provisionReservation(c *gin.Context) {
	var res parking.Reservation
	if err := c.ShouldBindJSON(&res); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	created, err := h.admissions.ProvisionReservation(c.Request.Context(), &res)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(created))
}

func (h *Handler) dailyStats(c *gin.Context) {
	stats, err := h.stats.DailyStats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	// Capacity and occupancy are presentation concerns, attached here
	// rather than computed by the stats core.
	capacity := h.config.Parking.Capacity
	occupancy := 0
	if capacity > 0 {
		occupancy = stats.CurrentParked * 100 / capacity
	}

	c.JSON(http.StatusOK, gin.H{
		"data":              stats,
		"capacity":          capacity,
		"occupancy_percent": occupancy,
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
