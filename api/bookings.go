package api

import (
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/timefmt"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/mine", RequireUser(), h.history)
	router.GET("/refunds", RequireUser(), h.refundNotifications)
	router.PUT("/:id/refund", h.requestRefund)
}

func (h *BookingHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("/bookings", h.list)
	router.PUT("/bookings/:id", h.update)
	router.DELETE("/bookings/:id", h.delete)
	router.GET("/refunds", h.pendingRefunds)
	router.PUT("/refunds/:id/approve", h.approveRefund)
}

type bookingResponse struct {
	domain.Booking
	CreatedDisplay string `json:"created_display,omitempty"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	resp := bookingResponse{Booking: b}
	if created := b.Created(); !created.IsZero() {
		resp.CreatedDisplay = timefmt.Stamp(created)
	}
	return resp
}

func toBookingResponses(bs []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingResponse(b))
	}
	return out
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.LoginPerson = userEmail(c)
	if img := c.GetHeader(HeaderUserImage); img != "" {
		req.LoginUserImage = img
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(*b))
}

func (h *BookingHandler) history(c *gin.Context) {
	bs, err := h.service.History(c.Request.Context(), userEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toBookingResponses(bs)})
}

func (h *BookingHandler) refundNotifications(c *gin.Context) {
	bs, err := h.service.RefundNotifications(c.Request.Context(), userEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toBookingResponses(bs)})
}

func (h *BookingHandler) requestRefund(c *gin.Context) {
	b, err := h.service.RequestRefund(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) list(c *gin.Context) {
	bs, err := h.service.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(bs), "items": toBookingResponses(bs)})
}

func (h *BookingHandler) update(c *gin.Context) {
	var req booking.UpdateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *BookingHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) pendingRefunds(c *gin.Context) {
	bs, err := h.service.PendingRefunds(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toBookingResponses(bs)})
}

func (h *BookingHandler) approveRefund(c *gin.Context) {
	b, err := h.service.ApproveRefund(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}
