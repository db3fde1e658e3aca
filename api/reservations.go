package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/service/reservation"
)

const maxListLimit = 500

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type createReservationRequest struct {
	Type          string  `json:"type" binding:"required"`
	Date          string  `json:"date" binding:"required"`
	Nights        int     `json:"nights"`
	Rooms         int     `json:"rooms"`
	People        int     `json:"people" binding:"required"`
	Time          string  `json:"time"`
	Location      string  `json:"location"`
	Name          string  `json:"name" binding:"required"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	Note          string  `json:"note"`
	Source        string  `json:"source"`
	WellnessHours int     `json:"wellness_hours"`
	MealType      string  `json:"meal_type"`
	PackageType   string  `json:"package_type"`
	PackagePrice  float64 `json:"package_price"`
}

type updateReservationRequest struct {
	Status     *string `json:"status"`
	Date       *string `json:"date"`
	Nights     *int    `json:"nights"`
	Rooms      *int    `json:"rooms"`
	People     *int    `json:"people"`
	Time       *string `json:"time"`
	Location   *string `json:"location"`
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Note       *string `json:"note"`
	AdminNotes *string `json:"admin_notes"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type reservationResponse struct {
	ID            int64   `json:"id"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	Source        string  `json:"source"`
	Date          string  `json:"date"`
	Nights        int     `json:"nights,omitempty"`
	Rooms         int     `json:"rooms,omitempty"`
	People        int     `json:"people"`
	Time          string  `json:"time,omitempty"`
	Location      string  `json:"location,omitempty"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	Note          string  `json:"note,omitempty"`
	WellnessHours int     `json:"wellness_hours,omitempty"`
	MealType      string  `json:"meal_type,omitempty"`
	PackageType   string  `json:"package_type,omitempty"`
	PackagePrice  float64 `json:"package_price,omitempty"`
	AdminNotes    string  `json:"admin_notes,omitempty"`
	ConfirmedAt   string  `json:"confirmed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.update)
	router.POST("/:id/confirm", h.confirm)
	router.POST("/:id/reject", h.reject)
	router.POST("/:id/cancel", h.cancel)
}

func (h *ReservationHandler) list(c *gin.Context) {
	filter := domain.ReservationFilter{
		Status: domain.ReservationStatus(c.Query("status")),
		Type:   domain.ReservationType(c.Query("type")),
		Source: c.Query("source"),
	}
	if filter.Type != domain.ReservationTypeUnset && !filter.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type"})
		return
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]reservationResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReservationHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	source := req.Source
	if source == "" {
		source = domain.SourceAPI
	}

	created, err := h.service.Create(c.Request.Context(), &domain.Reservation{
		Type:          domain.ReservationType(req.Type),
		Date:          req.Date,
		Nights:        req.Nights,
		Rooms:         req.Rooms,
		People:        req.People,
		Time:          req.Time,
		Location:      req.Location,
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Note:          req.Note,
		Source:        source,
		WellnessHours: req.WellnessHours,
		MealType:      req.MealType,
		PackageType:   req.PackageType,
		PackagePrice:  req.PackagePrice,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(created))
}

func (h *ReservationHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := domain.ReservationUpdate{
		Date:       req.Date,
		Nights:     req.Nights,
		Rooms:      req.Rooms,
		People:     req.People,
		Time:       req.Time,
		Location:   req.Location,
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Note:       req.Note,
		AdminNotes: req.AdminNotes,
	}
	if req.Status != nil {
		status := domain.ReservationStatus(*req.Status)
		upd.Status = &status
	}

	updated, err := h.service.Update(c.Request.Context(), id, upd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(updated))
}

func (h *ReservationHandler) confirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

func (h *ReservationHandler) reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req rejectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	r, err := h.service.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrInvalidInput),
		errors.Is(err, reservation.ErrInvalidStatus),
		errors.Is(err, reservation.ErrInvalidTransition),
		errors.Is(err, reservation.ErrNoChanges):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrUnavailable),
		errors.Is(err, reservation.ErrDuplicateSubmit):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toResponse(r *domain.Reservation) reservationResponse {
	resp := reservationResponse{
		ID:            r.ID,
		Type:          string(r.Type),
		Status:        string(r.Status),
		Source:        r.Source,
		Date:          r.Date,
		Nights:        r.Nights,
		Rooms:         r.Rooms,
		People:        r.People,
		Time:          r.Time,
		Location:      r.Location,
		Name:          r.Name,
		Phone:         r.Phone,
		Email:         r.Email,
		Note:          r.Note,
		WellnessHours: r.WellnessHours,
		MealType:      r.MealType,
		PackageType:   r.PackageType,
		PackagePrice:  r.PackagePrice,
		AdminNotes:    r.AdminNotes,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.ConfirmedAt != nil {
		resp.ConfirmedAt = r.ConfirmedAt.Format(time.RFC3339)
	}
	return resp
}
