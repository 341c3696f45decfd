package httpapi

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/i474232898/lawn-tracker/internal/analyzer"
	"github.com/i474232898/lawn-tracker/internal/geo"
	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/recommend"
	"github.com/i474232898/lawn-tracker/internal/soil"
	"github.com/i474232898/lawn-tracker/internal/weather"
)

// Records is the record repository as used by the handlers.
type Records interface {
	Applications(ctx context.Context, kind lawn.Kind) ([]lawn.Application, error)
	AllApplications(ctx context.Context) ([]lawn.Application, error)
	AddApplication(ctx context.Context, a lawn.Application) (lawn.Application, error)
	UpdateApplication(ctx context.Context, id string, a lawn.Application) (lawn.Application, error)
	DeleteApplication(ctx context.Context, id string) error

	SoilMeasurements(ctx context.Context) ([]lawn.SoilMeasurement, error)
	AddSoilMeasurement(ctx context.Context, m lawn.SoilMeasurement) (lawn.SoilMeasurement, error)

	Settings(ctx context.Context) (lawn.Settings, error)
	SaveSettings(ctx context.Context, s lawn.Settings) (lawn.Settings, error)
}

// Recommender builds recommendation reports and usage summaries.
type Recommender interface {
	Recommendations(ctx context.Context) (recommend.Report, error)
	Usage(ctx context.Context) ([]recommend.Usage, error)
}

// WeatherSource returns the current snapshot for a location.
type WeatherSource interface {
	Current(ctx context.Context, loc weather.Location) (weather.Snapshot, error)
}

// ReverseGeocoder resolves coordinates to a postal address.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, c geo.Coordinates) (geo.Place, error)
}

// Deps are the collaborators of the HTTP handlers. Locator may be nil.
type Deps struct {
	Records        Records
	Recommender    Recommender
	Weather        WeatherSource
	Analyzer       analyzer.Analyzer
	Locator        ReverseGeocoder
	UploadMaxBytes int
	Logger         *zap.Logger
}

type handler struct {
	Deps
	now func() time.Time
}

const defaultUploadMaxBytes = 10 << 20

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.UploadMaxBytes <= 0 {
		deps.UploadMaxBytes = defaultUploadMaxBytes
	}
	deps.Logger = deps.Logger.Named("http")
	h := &handler{Deps: deps, now: time.Now}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "lawn-tracker",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/applications", h.listApplications)
	v1.Post("/applications", h.addApplication)
	v1.Get("/applications/summary", h.usageSummary)
	v1.Put("/applications/:id", h.updateApplication)
	v1.Delete("/applications/:id", h.deleteApplication)

	v1.Get("/soil/measurements", h.listSoil)
	v1.Post("/soil/measurements", h.addManualSoil)
	v1.Post("/soil/reports", h.uploadSoilReport)
	v1.Get("/soil/analysis", h.soilAnalysis)
	v1.Get("/soil/history", h.soilHistory)

	v1.Get("/settings", h.getSettings)
	v1.Put("/settings", h.saveSettings)
	v1.Get("/settings/locate", h.locate)

	v1.Get("/weather", h.currentWeather)
	v1.Get("/recommendations", h.recommendations)
}

func (h *handler) listApplications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		apps []lawn.Application
		err  error
	)
	if kind := c.Query("kind"); kind != "" {
		apps, err = h.Records.Applications(ctx, lawn.Kind(kind))
	} else {
		apps, err = h.Records.AllApplications(ctx)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"applications": nonNil(apps)})
}

func (h *handler) addApplication(c *fiber.Ctx) error {
	var req applicationRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	a, err := req.toApplication()
	if err != nil {
		return err
	}
	saved, err := h.Records.AddApplication(c.UserContext(), a)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (h *handler) updateApplication(c *fiber.Ctx) error {
	var req applicationRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	a, err := req.toApplication()
	if err != nil {
		return err
	}
	saved, err := h.Records.UpdateApplication(c.UserContext(), c.Params("id"), a)
	if err != nil {
		return err
	}
	return c.JSON(saved)
}

func (h *handler) deleteApplication(c *fiber.Ctx) error {
	if err := h.Records.DeleteApplication(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) usageSummary(c *fiber.Ctx) error {
	usage, err := h.Recommender.Usage(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"usage": usage})
}

func (h *handler) listSoil(c *fiber.Ctx) error {
	history, err := h.Records.SoilMeasurements(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"measurements": nonNil(history)})
}

func (h *handler) addManualSoil(c *fiber.Ctx) error {
	var req manualSoilRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	values, err := soil.ParseManual(req.inputs())
	if err != nil {
		return err
	}

	m := lawn.SoilMeasurement{Values: values, Source: "manual"}
	if req.Date != "" {
		if m.Date, err = parseDate(req.Date); err != nil {
			return err
		}
	}
	saved, err := h.Records.AddSoilMeasurement(c.UserContext(), m)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(soilResponse(saved))
}

func (h *handler) uploadSoilReport(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field \"file\" is required")
	}
	if fh.Size > int64(h.UploadMaxBytes) {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "soil report exceeds the upload size limit")
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, int64(h.UploadMaxBytes)+1))
	if err != nil {
		return err
	}
	if len(data) > h.UploadMaxBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "soil report exceeds the upload size limit")
	}

	doc := analyzer.Document{
		Name:      fh.Filename,
		MediaType: fh.Header.Get(fiber.HeaderContentType),
		Data:      data,
	}
	m, err := h.Analyzer.Analyze(c.UserContext(), doc)
	if err != nil {
		h.Logger.Warn("Soil report analysis failed",
			zap.String("name", doc.Name),
			zap.Error(err))
		return err
	}
	saved, err := h.Records.AddSoilMeasurement(c.UserContext(), m)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(soilResponse(saved))
}

func (h *handler) soilAnalysis(c *fiber.Ctx) error {
	history, err := h.Records.SoilMeasurements(c.UserContext())
	if err != nil {
		return err
	}
	latest, ok := lawn.LatestMeasurement(history)
	if !ok {
		return c.JSON(fiber.Map{
			"measurement":     nil,
			"analysis":        nil,
			"recommendations": soil.Recommendations(nil),
		})
	}
	return c.JSON(soilResponse(latest))
}

func (h *handler) soilHistory(c *fiber.Ctx) error {
	window, err := soil.ParseWindow(c.Query("window"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	history, err := h.Records.SoilMeasurements(c.UserContext())
	if err != nil {
		return err
	}

	now := h.now()
	param := c.Query("parameter")
	if param == "" {
		return c.JSON(fiber.Map{
			"range":        window,
			"measurements": nonNil(soil.Filter(history, window, now)),
		})
	}

	p := lawn.Parameter(param)
	if !p.Valid() {
		var ok bool
		if p, ok = soil.LookupParameter(param); !ok {
			return fiber.NewError(fiber.StatusBadRequest, "unknown soil parameter "+param)
		}
	}
	trend, err := soil.TrendOf(history, p, window, now)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(trend)
}

func (h *handler) getSettings(c *fiber.Ctx) error {
	s, err := h.Records.Settings(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"settings":   s,
		"grassTypes": lawn.GrassTypes(),
	})
}

func (h *handler) saveSettings(c *fiber.Ctx) error {
	var req settingsRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	saved, err := h.Records.SaveSettings(c.UserContext(), req.toSettings())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"settings": saved})
}

func (h *handler) locate(c *fiber.Ctx) error {
	if h.Locator == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "reverse geocoding is not configured")
	}
	lat, err := parseCoordinate(c, "lat")
	if err != nil {
		return err
	}
	lon, err := parseCoordinate(c, "lon")
	if err != nil {
		return err
	}
	coords := geo.Coordinates{Latitude: lat, Longitude: lon}
	if err := coords.Validate(); err != nil {
		return err
	}

	place, err := h.Locator.Reverse(c.UserContext(), coords)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"place": place, "coordinates": coords})
}

func (h *handler) currentWeather(c *fiber.Ctx) error {
	// Query values alias the request buffer; the location outlives it in the
	// weather cache.
	zip, country := utils.CopyString(c.Query("zip")), utils.CopyString(c.Query("country"))
	if zip == "" {
		s, err := h.Records.Settings(c.UserContext())
		if err != nil {
			return err
		}
		zip = s.ZipCode
		if country == "" {
			country = s.Country()
		}
	}
	loc := weather.NewLocation(zip, country)
	if err := loc.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "set a zip code in settings or pass ?zip=")
	}

	snap, err := h.Weather.Current(c.UserContext(), loc)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

func (h *handler) recommendations(c *fiber.Ctx) error {
	report, err := h.Recommender.Recommendations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func soilResponse(m lawn.SoilMeasurement) fiber.Map {
	return fiber.Map{
		"measurement": m,
		"analysis":    soil.Score(m),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
