package httpapi

import (
	"context"
	"errors"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-signage/internal/display"
	"github.com/i474232898/weather-signage/internal/layout"
	"github.com/i474232898/weather-signage/internal/settings"
	"github.com/i474232898/weather-signage/internal/weather"
)

var validate = validator.New()

// Display is the read side of the cycle controller plus its retry action.
type Display interface {
	View() display.View
	Retry() bool
}

// SettingsStore is the part of the settings store the API writes through.
type SettingsStore interface {
	Get() (settings.Settings, bool)
	Set(ctx context.Context, v settings.Settings) (settings.Settings, error)
	Update(ctx context.Context, fn func(*settings.Settings) error) (settings.Settings, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, disp Display, store SettingsStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/display", func(c *fiber.Ctx) error {
		resp := displayResponse{View: disp.View()}
		if raw := c.Query("aspect"); raw != "" {
			aspect, err := layout.ParseAspect(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			resp.Layout = layout.Select(aspect)
		}
		return c.JSON(resp)
	})

	v1.Post("/display/retry", func(c *fiber.Ctx) error {
		queued := disp.Retry()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": queued})
	})

	v1.Get("/layout", func(c *fiber.Ctx) error {
		q := layoutQuery{Aspect: c.Query("aspect")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		aspect, err := layout.ParseAspect(q.Aspect)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{
			"aspect":  aspect,
			"variant": layout.Select(aspect),
		})
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		s, loaded := store.Get()
		if !loaded {
			return fiber.NewError(fiber.StatusServiceUnavailable, settings.ErrNotLoaded.Error())
		}
		return c.JSON(s)
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var s settings.Settings
		if err := c.BodyParser(&s); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid settings payload")
		}
		saved, err := store.Set(c.UserContext(), s)
		if err != nil {
			return storeError(err)
		}
		return c.JSON(saved)
	})

	v1.Post("/settings/locations", func(c *fiber.Ctx) error {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid location payload")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.toLocation()
		if _, err := store.Update(c.UserContext(), func(s *settings.Settings) error {
			s.Locations = append(s.Locations, loc)
			return nil
		}); err != nil {
			return storeError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	})

	v1.Delete("/settings/locations/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := store.Update(c.UserContext(), func(s *settings.Settings) error {
			i := slices.IndexFunc(s.Locations, func(l weather.LocationConfig) bool { return l.ID == id })
			if i < 0 {
				return settings.ErrLocationNotFound
			}
			s.Locations = slices.Delete(s.Locations, i, i+1)
			return nil
		}); err != nil {
			return storeError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

type displayResponse struct {
	display.View
	Layout layout.Variant `json:"layout,omitempty"`
}

// layoutQuery holds query parameters for the layout endpoint.
type layoutQuery struct {
	Aspect string `validate:"required"`
}

// locationRequest is the body of a new location. ID is generated when empty.
type locationRequest struct {
	ID    string               `json:"id" validate:"omitempty,max=64"`
	Type  weather.LocationType `json:"type" validate:"required,oneof=manual auto"`
	City  string               `json:"city" validate:"required_if=Type manual"`
	Label string               `json:"label"`
}

func (r locationRequest) toLocation() weather.LocationConfig {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	loc := weather.LocationConfig{ID: id, Type: r.Type, City: r.City, Label: r.Label}
	if loc.Type == weather.LocationAuto {
		loc.City = ""
	}
	return loc
}

// storeError maps settings store errors onto HTTP errors.
func storeError(err error) error {
	switch {
	case errors.Is(err, settings.ErrNotLoaded):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, settings.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, settings.ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save settings")
	}
}
