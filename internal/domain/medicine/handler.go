package medicine

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
	g.GET("/medicines", h.List)
	g.POST("/medicines", h.Create)
	g.GET("/medicines/analytics/low-compliance", h.LowCompliance)
	g.GET("/medicines/analytics/most-prescribed", h.MostPrescribed)
	g.GET("/medicines/:id", h.Get)
	g.GET("/medicines/:id/statistics", h.Statistics)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	medicines, total, err := h.svc.List(c.Request().Context(),
		c.QueryParam("search"), c.QueryParam("type"),
		c.QueryParam("sortBy"), c.QueryParam("sortOrder"),
		pg.Limit, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal mengambil data obat").SetInternal(err)
	}
	if medicines == nil {
		medicines = []*Medicine{}
	}

	return api.OK(c, echo.Map{
		"medicines":  medicines,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "ID obat tidak valid")
	}

	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Obat tidak ditemukan")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal mengambil data obat").SetInternal(err)
	}

	return api.OK(c, m)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Format data tidak valid").SetInternal(err)
	}

	created, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ErrNameRequired) || errors.Is(err, ErrPatientRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal menambahkan obat").SetInternal(err)
	}

	return api.Created(c, created, "Obat berhasil ditambahkan")
}

func (h *Handler) LowCompliance(c echo.Context) error {
	threshold, _ := strconv.ParseFloat(c.QueryParam("threshold"), 64)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	medicines, err := h.svc.LowCompliance(c.Request().Context(), threshold, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal mengambil data obat dengan kepatuhan rendah").SetInternal(err)
	}
	if medicines == nil {
		medicines = []*LowCompliance{}
	}

	return api.OK(c, echo.Map{"medicines": medicines})
}

func (h *Handler) MostPrescribed(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("period"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	medicines, err := h.svc.MostPrescribed(c.Request().Context(), days, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal mengambil data obat paling banyak diresepkan").SetInternal(err)
	}
	if medicines == nil {
		medicines = []*Prescribed{}
	}

	return api.OK(c, echo.Map{"medicines": medicines})
}

func (h *Handler) Statistics(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "ID obat tidak valid")
	}

	stats, err := h.svc.Statistics(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Obat tidak ditemukan")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Gagal mengambil statistik obat").SetInternal(err)
	}

	return api.OK(c, stats)
}
