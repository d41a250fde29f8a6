package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medtrack/medtrack/internal/platform/api"
	"github.com/medtrack/medtrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients", h.List)
	g.POST("/patients", h.Create)
	g.GET("/patients/statistics/compliance", h.Statistics)
	g.GET("/patients/:id", h.Get)
	g.GET("/patients/:id/compliance-history", h.ConsumptionHistory)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	search := c.QueryParam("search")

	patients, total, err := h.svc.ListCompliance(c.Request().Context(), search, pg.Limit, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal mengambil data pasien").SetInternal(err)
	}
	if patients == nil {
		patients = []*Compliance{}
	}

	return api.OK(c, echo.Map{
		"patients":   patients,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "ID pasien tidak valid")
	}

	p, err := h.svc.GetCompliance(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Pasien tidak ditemukan")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal mengambil data pasien").SetInternal(err)
	}

	return api.OK(c, p)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Format data tidak valid").SetInternal(err)
	}

	created, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ErrNameRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal menambahkan pasien").SetInternal(err)
	}

	return api.Created(c, created, "Pasien berhasil ditambahkan")
}

func (h *Handler) ConsumptionHistory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "ID pasien tidak valid")
	}

	records, err := h.svc.ConsumptionHistory(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Pasien tidak ditemukan")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal mengambil riwayat kepatuhan").SetInternal(err)
	}
	if records == nil {
		records = []*ConsumptionRecord{}
	}

	return api.OK(c, echo.Map{"records": records})
}

func (h *Handler) Statistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal mengambil statistik kepatuhan").SetInternal(err)
	}
	return api.OK(c, stats)
}
