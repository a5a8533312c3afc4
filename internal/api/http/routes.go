package httpapi

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/yava-code/weatherAI/internal/measurements"
	"github.com/yava-code/weatherAI/internal/weather"
)

var validate = validator.New()

// Analyzer is the orchestrator surface the routing layer calls into.
type Analyzer interface {
	Analyze(ctx context.Context, city string) (*weather.IntelBundle, error)
	PredictAt(city string, ts time.Time, humidity, windSpeed float64) (float64, error)
	TrainGlobal(ctx context.Context) error
	GlobalMetrics() (*weather.ModelMetrics, error)
}

// MeasurementStore is the slice of the history store the API touches.
type MeasurementStore interface {
	Insert(ctx context.Context, m weather.Measurement) error
	Stats(ctx context.Context) (measurements.Stats, error)
}

// analyzeRequest is the /analyze body. A missing city name fails
// validation before the orchestrator (and any network call) is reached.
type analyzeRequest struct {
	CityName string `json:"city_name" validate:"required"`
}

// ingestRequest is one observation submitted through the API.
type ingestRequest struct {
	City        string     `json:"city" validate:"required"`
	Timestamp   *time.Time `json:"timestamp"`
	Temperature float64    `json:"temperature"`
	Humidity    float64    `json:"humidity"`
	WindSpeed   float64    `json:"wind_speed"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Analyzer, history MeasurementStore, intel weather.IntelCache) {
	v1 := app.Group("/api/v1")

	v1.Post("/analyze", func(c *fiber.Ctx) error {
		var req analyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "city_name is required")
		}

		bundle, err := service.Analyze(c.UserContext(), req.CityName)
		if err != nil {
			return mapAnalysisError(err)
		}
		return c.JSON(bundle)
	})

	v1.Get("/predict", func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required")
		}

		ts := time.Now().UTC().Add(time.Hour)
		if at := c.Query("at"); at != "" {
			parsed, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "at must be an RFC3339 timestamp")
			}
			ts = parsed
		}

		temp, err := service.PredictAt(city, ts, c.QueryFloat("humidity", 50), c.QueryFloat("wind_speed", 0))
		if err != nil {
			if errors.Is(err, weather.ErrModelNotTrained) {
				return fiber.NewError(fiber.StatusNotFound, "no trained model for city")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "prediction failed")
		}
		return c.JSON(fiber.Map{
			"city":        city,
			"timestamp":   ts,
			"temperature": temp,
		})
	})

	v1.Get("/intel", func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required")
		}

		bundle, ok := intel.Get(city)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no cached intel for city")
		}
		return c.JSON(bundle)
	})

	v1.Post("/measurements", func(c *fiber.Ctx) error {
		var req ingestRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ts := time.Now().UTC()
		if req.Timestamp != nil {
			ts = *req.Timestamp
		}

		m := weather.Measurement{
			City:        req.City,
			Timestamp:   ts,
			Temperature: req.Temperature,
			Humidity:    req.Humidity,
			WindSpeed:   req.WindSpeed,
		}
		if err := history.Insert(c.UserContext(), m); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store measurement")
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	})

	v1.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := history.Stats(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute stats")
		}
		return c.JSON(stats)
	})

	v1.Post("/train/global", func(c *fiber.Ctx) error {
		// Fire and forget: training runs in the background and its write
		// lands whether or not this response is ever read.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := service.TrainGlobal(ctx); err != nil {
				log.Printf("api: global training failed: %v", err)
			}
		}()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "global model training triggered",
		})
	})

	v1.Get("/model/metrics", func(c *fiber.Ctx) error {
		metrics, err := service.GlobalMetrics()
		if err != nil {
			if errors.Is(err, weather.ErrModelNotTrained) {
				return fiber.NewError(fiber.StatusNotFound, "global model not trained yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load model metrics")
		}
		return c.JSON(metrics)
	})
}

// mapAnalysisError translates each pipeline stage's named outcome to a
// transport status.
func mapAnalysisError(err error) error {
	switch {
	case errors.Is(err, weather.ErrCityNotFound):
		return fiber.NewError(fiber.StatusNotFound, "city could not be geocoded")
	case errors.Is(err, weather.ErrWeatherUnavailable):
		return fiber.NewError(fiber.StatusGatewayTimeout, "weather provider unavailable")
	case errors.Is(err, weather.ErrTrainingFailed):
		return fiber.NewError(fiber.StatusInternalServerError, "model training failed")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "analysis failed")
	}
}
