// Package server exposes the coordinator's lifecycle hooks over HTTP.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/braunma/netans-reconciler/pkg/client"
	"github.com/braunma/netans-reconciler/pkg/metrics"
	"github.com/braunma/netans-reconciler/pkg/models"
	"github.com/braunma/netans-reconciler/pkg/provisioning"
	"github.com/braunma/netans-reconciler/pkg/reconciler"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

// Error kinds returned in error bodies
const (
	KindBadRequest          = "bad_request"
	KindLinkInfoMissing     = "link_info_missing"
	KindUnresolvedSwitch    = "unresolved_switch"
	KindInvalidSegmentation = "invalid_segmentation"
	KindFanOut              = "fan_out"
	KindExecution           = "automation_execution"
	KindInternal            = "internal"
)

// NetworkEvent is the body of the network hooks
type NetworkEvent struct {
	Network models.Network `json:"network"`
}

// BindRequest is the body of the bind hook
type BindRequest struct {
	Port     models.Port      `json:"port"`
	Network  models.Network   `json:"network"`
	Segments []models.Segment `json:"segments"`
}

// BindResponse reports whether the port was bound by this reconciler
type BindResponse struct {
	Bound   bool            `json:"bound"`
	Binding *models.Binding `json:"binding,omitempty"`
}

// PortUpdate is the body of the port update hook
type PortUpdate struct {
	Current  models.Port    `json:"current"`
	Original models.Port    `json:"original"`
	Network  models.Network `json:"network"`
}

// PortEvent is the body of the port delete and trunk hooks
type PortEvent struct {
	Port    models.Port    `json:"port"`
	Network models.Network `json:"network"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Server serves the lifecycle hooks
type Server struct {
	app         *fiber.App
	coordinator *reconciler.Coordinator
	tracker     *provisioning.Tracker
	metrics     *metrics.Metrics
	logger      *utils.Logger
}

// New creates the server and registers its routes
func New(coordinator *reconciler.Coordinator, tracker *provisioning.Tracker, m *metrics.Metrics, logger *utils.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "netans",
			DisableStartupMessage: true,
			ReadTimeout:           30 * time.Second,
		}),
		coordinator: coordinator,
		tracker:     tracker,
		metrics:     m,
		logger:      logger,
	}
	s.routes()
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.logger.Info("Listening on http://%s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for in-flight hooks to finish
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) routes() {
	s.app.Get("/healthz", s.health)
	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	v1 := s.app.Group("/v1")
	v1.Get("/inventory", s.inventoryDocument)

	v1.Post("/networks/created", s.networkCreated)
	v1.Post("/networks/deleted", s.networkDeleted)

	v1.Post("/ports/bind", s.bindPort)
	v1.Post("/ports/updated", s.portUpdated)
	v1.Post("/ports/deleted", s.portDeleted)
	v1.Post("/ports/trunk", s.trunkUpdated)
	v1.Get("/ports/:id/provisioning", s.provisioningStatus)
}

func (s *Server) health(c *fiber.Ctx) error {
	inv := s.coordinator.Inventory()
	return c.JSON(fiber.Map{
		"status":        "ok",
		"hosts":         inv.Len(),
		"managed_hosts": len(inv.ManagedHosts()),
	})
}

func (s *Server) inventoryDocument(c *fiber.Ctx) error {
	return c.JSON(s.coordinator.Inventory().Document())
}

func (s *Server) networkCreated(c *fiber.Ctx) error {
	var req NetworkEvent
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := s.coordinator.NetworkCreated(c.UserContext(), req.Network); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) networkDeleted(c *fiber.Ctx) error {
	var req NetworkEvent
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := s.coordinator.NetworkDeleted(c.UserContext(), req.Network); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) bindPort(c *fiber.Ctx) error {
	var req BindRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Port.ID == "" {
		return badRequest(c, errors.New("port id is required"))
	}

	binding, err := s.coordinator.BindPort(c.UserContext(), req.Port, req.Network, req.Segments)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(BindResponse{Bound: binding != nil, Binding: binding})
}

func (s *Server) portUpdated(c *fiber.Ctx) error {
	var req PortUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := s.coordinator.UpdatePortPostcommit(c.UserContext(), req.Current, req.Original, req.Network); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) portDeleted(c *fiber.Ctx) error {
	var req PortEvent
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := s.coordinator.DeletePortPostcommit(c.UserContext(), req.Port, req.Network); err != nil {
		return s.fail(c, err)
	}
	if s.tracker != nil {
		s.tracker.Forget(req.Port.ID)
	}
	return ok(c)
}

func (s *Server) trunkUpdated(c *fiber.Ctx) error {
	var req PortEvent
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := s.coordinator.TrunkUpdated(c.UserContext(), req.Port, req.Network); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) provisioningStatus(c *fiber.Ctx) error {
	if s.tracker == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "provisioning is tracked by the host framework",
			Kind:  KindBadRequest,
		})
	}
	return c.JSON(s.tracker.Status(c.Params("id")))
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status, kind := classify(err)
	s.logger.Debug("  ✗ %s %s -> %d %s", c.Method(), c.Path(), status, kind)
	return c.Status(status).JSON(ErrorResponse{Error: err.Error(), Kind: kind})
}

// classify maps reconciler errors to an HTTP status and error kind
func classify(err error) (int, string) {
	var (
		missing    *reconciler.LinkInfoMissingError
		unresolved *reconciler.UnresolvedSwitchError
		fanOut     *reconciler.FanOutError
		execErr    *client.ExecutionError
	)

	switch {
	case errors.As(err, &missing):
		return fiber.StatusUnprocessableEntity, KindLinkInfoMissing
	case errors.As(err, &unresolved):
		return fiber.StatusUnprocessableEntity, KindUnresolvedSwitch
	case errors.Is(err, reconciler.ErrInvalidSegmentation):
		return fiber.StatusUnprocessableEntity, KindInvalidSegmentation
	case errors.As(err, &fanOut):
		return fiber.StatusBadGateway, KindFanOut
	case errors.As(err, &execErr):
		return fiber.StatusBadGateway, KindExecution
	}
	return fiber.StatusInternalServerError, KindInternal
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error(), Kind: KindBadRequest})
}

func ok(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
