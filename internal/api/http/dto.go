package httpapi

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

var validate = validator.New()

// applicationRequest is the body of application create and edit calls. Kind
// is ignored on edit.
type applicationRequest struct {
	Kind        lawn.Kind `json:"kind" validate:"omitempty,oneof=pgr fertilizer iron"`
	Date        string    `json:"date" validate:"required"`
	Rate        float64   `json:"rate" validate:"gt=0"`
	ProductType string    `json:"productType" validate:"max=100"`
	NPK         string    `json:"npk" validate:"max=20"`
	Notes       string    `json:"notes" validate:"max=1000"`
}

func (r applicationRequest) toApplication() (lawn.Application, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return lawn.Application{}, err
	}
	return lawn.Application{
		Kind:        r.Kind,
		Date:        date,
		Rate:        r.Rate,
		ProductType: r.ProductType,
		NPK:         r.NPK,
		Notes:       r.Notes,
	}, nil
}

// manualSoilRequest is a hand-entered soil test. Values may be numbers or
// numeric strings, keyed by parameter name or a report label.
type manualSoilRequest struct {
	Date   string                     `json:"date"`
	Values map[string]json.RawMessage `json:"values" validate:"required"`
}

func (r manualSoilRequest) inputs() map[string]string {
	out := make(map[string]string, len(r.Values))
	for k, raw := range r.Values {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			out[k] = s
			continue
		}
		out[k] = string(raw)
	}
	return out
}

// settingsRequest is the body of a settings update.
type settingsRequest struct {
	GrassType      lawn.GrassType `json:"grassType" validate:"max=64"`
	ZipCode        string         `json:"zipCode" validate:"max=16"`
	CountryCode    string         `json:"countryCode" validate:"omitempty,len=2,alpha"`
	SquareFootage  float64        `json:"squareFootage" validate:"gte=0"`
	UseGeolocation bool           `json:"useGeolocation"`
}

func (r settingsRequest) toSettings() lawn.Settings {
	return lawn.Settings{
		GrassType:      lawn.GrassType(strings.TrimSpace(string(r.GrassType))),
		ZipCode:        r.ZipCode,
		CountryCode:    r.CountryCode,
		SquareFootage:  r.SquareFootage,
		UseGeolocation: r.UseGeolocation,
	}
}

// bindJSON parses and validates a request body.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// parseDate accepts a calendar date or an RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "invalid date; use YYYY-MM-DD or RFC3339")
}

func parseCoordinate(c *fiber.Ctx, key string) (float64, error) {
	s := c.Query(key)
	if s == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" query parameter is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return v, nil
}
