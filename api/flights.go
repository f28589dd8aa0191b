package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/directory"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/Domenick1991/flightdesk/internal/timefmt"
	"github.com/gin-gonic/gin"
)

// Catalog is the searchable flight directory. *directory.Directory
// implements it.
type Catalog interface {
	Load(ctx context.Context) error
	Search(c domain.SearchCriteria, page, size int) (directory.Page[domain.Flight], error)
	Upcoming(now time.Time, limit int) ([]domain.Flight, error)
}

// maxPageSize caps the page_size query parameter.
const maxPageSize = 100

type FlightHandler struct {
	catalog       Catalog
	service       flights.FlightUseCase
	pageSize      int
	upcomingLimit int
	now           func() time.Time
}

func NewFlightHandler(catalog Catalog, service flights.FlightUseCase, pageSize, upcomingLimit int) *FlightHandler {
	return &FlightHandler{
		catalog:       catalog,
		service:       service,
		pageSize:      pageSize,
		upcomingLimit: upcomingLimit,
		now:           time.Now,
	}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.search)
	router.GET("/upcoming", h.upcoming)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.adminList)
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

type flightResponse struct {
	domain.Flight
	DisplayDate string `json:"display_date,omitempty"`
	DisplayTime string `json:"display_time,omitempty"`
}

func toFlightResponse(f domain.Flight) flightResponse {
	d := timefmt.ForFlight(f)
	return flightResponse{Flight: f, DisplayDate: d.Date, DisplayTime: d.Time}
}

func toFlightResponses(fs []domain.Flight) []flightResponse {
	out := make([]flightResponse, 0, len(fs))
	for _, f := range fs {
		out = append(out, toFlightResponse(f))
	}
	return out
}

type searchQuery struct {
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
	Date        string `form:"date"`
	Page        int    `form:"page,default=1"`
	PageSize    int    `form:"page_size"`
}

func (q searchQuery) criteria() (domain.SearchCriteria, error) {
	c := domain.SearchCriteria{
		Origin:      strings.TrimSpace(q.Origin),
		Destination: strings.TrimSpace(q.Destination),
	}
	if strings.TrimSpace(q.Date) != "" {
		d, err := domain.ParseCalendarDate(q.Date)
		if err != nil {
			return c, err
		}
		c.Date = &d
	}
	return c, nil
}

func (h *FlightHandler) search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	criteria, err := q.criteria()
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	size := q.PageSize
	if size <= 0 {
		size = h.pageSize
	}
	size = min(size, maxPageSize)

	page, err := h.catalog.Search(criteria, q.Page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, directory.Page[flightResponse]{
		Items:      toFlightResponses(page.Items),
		Number:     page.Number,
		Size:       page.Size,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
	})
}

type upcomingQuery struct {
	Limit int `form:"limit"`
}

func (h *FlightHandler) upcoming(c *gin.Context) {
	var q upcomingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	limit := q.Limit
	if limit <= 0 {
		limit = h.upcomingLimit
	}

	fs, err := h.catalog.Upcoming(h.now(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toFlightResponses(fs)})
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func (h *FlightHandler) adminList(c *gin.Context) {
	all, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	term := c.Query("q")
	matched := make([]domain.Flight, 0, len(all))
	for _, f := range all {
		if directory.MatchFlightNumber(f.FlightNumber, term) {
			matched = append(matched, f)
		}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(all), "items": toFlightResponses(matched)})
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flights.CreateFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.UserEmail = userEmail(c)
	req.UserImage = c.GetHeader(HeaderUserImage)

	flight, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.reload(c)
	c.JSON(http.StatusCreated, toFlightResponse(*flight))
}

func (h *FlightHandler) update(c *gin.Context) {
	var req flights.UpdateFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	h.reload(c)
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *FlightHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.reload(c)
	c.Status(http.StatusNoContent)
}

// reload refreshes the directory after an admin write. A failed reload is
// logged; the write itself already succeeded.
func (h *FlightHandler) reload(c *gin.Context) {
	if err := h.catalog.Load(c.Request.Context()); err != nil {
		logging.Warn("directory reload after admin write failed", "request_id", requestID(c), "error", err)
	}
}
