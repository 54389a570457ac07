package httpapi

import (
	"errors"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/amsilva/stationview/internal/analytics"
	"github.com/amsilva/stationview/internal/station"
	"github.com/amsilva/stationview/internal/store"
)

var validate = validator.New()

// Options carries request defaults and bounds from configuration.
type Options struct {
	DefaultLimit  int
	MaxLimit      int
	DefaultWindow int
}

// RegisterRoutes wires the viewer endpoints into the Fiber app.
func RegisterRoutes(app *fiber.App, svc *station.Service, cache *store.MemoryCache, opts Options) {
	v1 := app.Group("/api/v1")

	v1.Get("/stations", func(c *fiber.Ctx) error {
		infos, err := svc.ListStations(c.Context())
		if err != nil {
			if errors.Is(err, station.ErrUnavailable) {
				// The viewer shows an empty catalog with a retry
				// affordance rather than an error page.
				return c.JSON(fiber.Map{
					"status":   "unavailable",
					"stations": []station.Info{},
				})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list stations")
		}

		return c.JSON(fiber.Map{
			"status":   "ok",
			"stations": infos,
		})
	})

	v1.Get("/stations/:id/current", func(c *fiber.Ctx) error {
		reading, err := svc.LatestReading(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, station.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no current reading for station")
			}
			if errors.Is(err, station.ErrUnavailable) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "station store unavailable, retry later")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch current reading")
		}

		return c.JSON(reading)
	})

	v1.Get("/stations/:id/readings", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c, opts); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stationID := c.Params("id")

		var readings []station.Reading
		var err error
		if req.From != nil {
			readings, err = svc.ReadingsSince(c.Context(), stationID, *req.From, req.Limit)
		} else {
			readings, err = svc.Readings(c.Context(), stationID, req.Limit)
		}
		if err != nil {
			return readingsFetchError(c, stationID, err)
		}

		return c.JSON(fiber.Map{
			"status":   "ok",
			"station":  stationID,
			"count":    len(readings),
			"readings": readings,
		})
	})

	v1.Get("/stations/:id/analytics", func(c *fiber.Ctx) error {
		var req analyticsQuery
		if err := req.bind(c, opts); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stationID := c.Params("id")
		readings, err := svc.Readings(c.Context(), stationID, req.Limit)
		if err != nil {
			return readingsFetchError(c, stationID, err)
		}

		values := metricValues(readings, req.Metric)
		smoothed, err := analytics.MovingAverage(values, req.Window)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		fit := analytics.LinearTrend(values)
		trend := analytics.ClassifyTrendWithThreshold(fit.Slope, metricUnit(req.Metric), req.Threshold)

		return c.JSON(fiber.Map{
			"status":        "ok",
			"station":       stationID,
			"metric":        req.Metric,
			"unit":          metricUnit(req.Metric),
			"count":         len(readings),
			"values":        values,
			"movingAverage": smoothed,
			"slope":         fit.Slope,
			"trendLine":     fit.Line,
			"trend":         trend,
			"stats":         station.ComputeStats(readings),
		})
	})

	v1.Get("/stations/:id/live", func(c *fiber.Ctx) error {
		stationID := c.Params("id")

		readings, err := cache.Series(stationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(fiber.Map{
					"status":   "empty",
					"station":  stationID,
					"readings": []station.Reading{},
				})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read live series")
		}

		return c.JSON(fiber.Map{
			"status":   "ok",
			"station":  stationID,
			"readings": readings,
		})
	})
}

// readingsFetchError maps data-access errors to the viewer's conventions:
// unknown stations are 404, an unreachable store degrades to an empty
// payload the client renders with a retry affordance.
func readingsFetchError(c *fiber.Ctx, stationID string, err error) error {
	if errors.Is(err, station.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "unknown station")
	}
	if errors.Is(err, station.ErrUnavailable) {
		log.Printf("degrading to empty response for %s: %v", stationID, err)
		return c.JSON(fiber.Map{
			"status":   "unavailable",
			"station":  stationID,
			"count":    0,
			"readings": []station.Reading{},
		})
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

// historyQuery holds query parameters for the readings endpoint.
type historyQuery struct {
	Limit int    `validate:"gte=1"`
	From  *int64 // optional unix-seconds lower bound
}

func (h *historyQuery) bind(c *fiber.Ctx, opts Options) error {
	limit, err := parseLimit(c, opts)
	if err != nil {
		return err
	}
	h.Limit = limit

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := strconv.ParseInt(fromStr, 10, 64)
		if err != nil {
			return errors.New("invalid from; use unix seconds")
		}
		h.From = &from
	}

	return validate.Struct(h)
}

// analyticsQuery holds query parameters for the analytics endpoint.
type analyticsQuery struct {
	Metric    string  `validate:"required,oneof=temperature humidity particulates"`
	Limit     int     `validate:"gte=1"`
	Window    int     `validate:"gte=1"`
	Threshold float64 `validate:"gte=0"`
}

func (a *analyticsQuery) bind(c *fiber.Ctx, opts Options) error {
	a.Metric = c.Query("metric", "temperature")

	limit, err := parseLimit(c, opts)
	if err != nil {
		return err
	}
	a.Limit = limit

	a.Window = opts.DefaultWindow
	if windowStr := c.Query("window"); windowStr != "" {
		w, err := strconv.Atoi(windowStr)
		if err != nil {
			return errors.New("invalid window; use a positive integer")
		}
		a.Window = w
	}

	a.Threshold = analytics.DefaultSlopeThreshold
	if thresholdStr := c.Query("threshold"); thresholdStr != "" {
		t, err := strconv.ParseFloat(thresholdStr, 64)
		if err != nil {
			return errors.New("invalid threshold; use a non-negative number")
		}
		a.Threshold = t
	}

	return validate.Struct(a)
}

func parseLimit(c *fiber.Ctx, opts Options) (int, error) {
	limit := opts.DefaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return 0, errors.New("invalid limit; use a positive integer")
		}
		limit = n
	}
	if limit < 1 || limit > opts.MaxLimit {
		return 0, errors.New("limit out of range")
	}
	return limit, nil
}

func metricValues(readings []station.Reading, metric string) []float64 {
	values := make([]float64, len(readings))
	for i, r := range readings {
		switch metric {
		case "humidity":
			values[i] = r.Humidity
		case "particulates":
			values[i] = r.ParticulateCount
		default:
			values[i] = r.Temperature
		}
	}
	return values
}

func metricUnit(metric string) string {
	switch metric {
	case "temperature":
		return "°C"
	case "humidity":
		return "%"
	default:
		return ""
	}
}
