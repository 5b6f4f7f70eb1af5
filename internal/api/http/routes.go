package httpapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"radar-prefetch/internal/radar"
	"radar-prefetch/internal/tile"
)

// RegisterRoutes wires the controller's UI-layer contract into the Fiber
// app: state snapshots out, viewport/slider/playback triggers in.
func RegisterRoutes(app *fiber.App, ctrl *radar.Controller) {
	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"state": ctrl.Snapshot(),
			"cache": ctrl.Cache(),
		})
	})

	v1.Post("/viewport", func(c *fiber.Ctx) error {
		var region tile.Region
		if err := c.BodyParser(&region); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if region.LonSpan <= 0 || region.LatSpan <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "viewport spans must be positive")
		}
		ctrl.SetRegion(region)
		return c.JSON(ctrl.Snapshot())
	})

	v1.Post("/frame", func(c *fiber.Ctx) error {
		index, err := parseIndex(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ctrl.SetFrameIndex(index)
		return c.JSON(ctrl.Snapshot())
	})

	v1.Post("/pending", func(c *fiber.Ctx) error {
		index, err := parseIndex(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ctrl.SetPendingIndex(index)
		return c.JSON(ctrl.Snapshot())
	})

	v1.Post("/play", func(c *fiber.Ctx) error {
		var req struct {
			Playing bool `json:"playing"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ctrl.SetIsPlaying(req.Playing)
		return c.JSON(ctrl.Snapshot())
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		ctrl.RefreshFrames()
		return c.JSON(ctrl.Snapshot())
	})

	v1.Post("/prefetch", func(c *fiber.Ctx) error {
		ctrl.SchedulePrefetch()
		return c.SendStatus(fiber.StatusAccepted)
	})
}

func parseIndex(c *fiber.Ctx) (int, error) {
	var req struct {
		Index *int `json:"index"`
	}
	if err := c.BodyParser(&req); err != nil {
		return 0, err
	}
	if req.Index == nil {
		return 0, fmt.Errorf("index is required")
	}
	if *req.Index < 0 {
		return 0, fmt.Errorf("index must be non-negative")
	}
	return *req.Index, nil
}
