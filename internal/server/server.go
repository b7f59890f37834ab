package server

import (
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"apptcal/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server is the reference appointment store: the REST surface the calendar talks to
type Server struct {
	app     *fiber.App
	repo    Repository
	metrics *metrics
}

// New creates a server over repo with every route registered under /api
func New(repo Repository) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ErrorHandler:          errorHandler,
		}),
		repo:    repo,
		metrics: newMetrics(),
	}

	s.app.Use(recoverMiddleware.New())
	s.app.Use(requestid.New())
	s.app.Use(cors.New())
	s.app.Use(s.requestLogger)

	s.app.Get("/metrics", s.metrics.handler())

	api := s.app.Group("/api")
	api.Get("/clients", s.listClients)
	api.Post("/clients", s.createClient)
	api.Get("/schedules", s.listSchedules)
	api.Post("/schedules", s.createSchedule)
	api.Put("/schedules/:id", s.updateSchedule)
	api.Delete("/schedules/:id", s.deleteSchedule)

	return s
}

// App exposes the fiber app, mainly for app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on addr and blocks until SIGINT or SIGTERM
func (s *Server) Run(addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()
	logging.Log.Info("server started", zap.String("listen", addr), zap.Int("pid", os.Getpid()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		return err
	case <-sigChan:
	}

	logging.Log.Info("shutting down")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	logging.Log.Info("server stopped")
	return nil
}

// requestLogger logs and measures every request. Handler errors are rendered
// here so the logged status is the one the client sees.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if err := errorHandler(c, err); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)
	status := c.Response().StatusCode()
	// ctx strings point into the request buffer; metric labels outlive it
	method := utils.CopyString(c.Method())
	route := utils.CopyString(c.Route().Path)

	logging.Log.Info("request",
		zap.String("method", method),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		zap.Duration("elapsed", elapsed))
	s.metrics.observe(method, route, status, elapsed)
	return nil
}

// errorHandler renders every failure as {error: message}
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logging.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}

func (s *Server) listClients(c *fiber.Ctx) error {
	clients, err := s.repo.ListClients(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]clientResponse, len(clients))
	for i, client := range clients {
		resp[i] = newClientResponse(client)
	}
	return c.JSON(resp)
}

func (s *Server) createClient(c *fiber.Ctx) error {
	var req clientRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Client name is required")
	}

	client := Client{Name: strings.TrimSpace(req.Name), Email: req.Email, Phone: req.Phone}
	if err := s.repo.CreateClient(c.UserContext(), &client); err != nil {
		return err
	}
	return c.JSON(newClientResponse(client))
}

func (s *Server) listSchedules(c *fiber.Ctx) error {
	rows, err := s.repo.ListSchedules(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]scheduleResponse, len(rows))
	for i, row := range rows {
		resp[i] = newScheduleResponse(row.Schedule, row.ClientName)
	}
	return c.JSON(resp)
}

func (s *Server) createSchedule(c *fiber.Ctx) error {
	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.AppointmentTime == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Appointment time is required")
	}

	// a missing or unknown client_id is a constraint failure, as in the SQL store
	var clientID int64
	if req.ClientID != nil {
		clientID = *req.ClientID
	}
	schedule := Schedule{
		ClientID:        clientID,
		AppointmentTime: req.AppointmentTime.Time,
		Description:     req.Description,
	}
	if req.EndTime != nil {
		end := req.EndTime.Time
		schedule.EndTime = &end
	}

	if err := s.repo.CreateSchedule(c.UserContext(), &schedule); err != nil {
		return err
	}
	return c.JSON(newScheduleResponse(schedule, ""))
}

func (s *Server) updateSchedule(c *fiber.Ctx) error {
	id, err := scheduleID(c)
	if err != nil {
		return err
	}

	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.AppointmentTime == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Appointment time is required")
	}

	patch := SchedulePatch{
		ClientID:        req.ClientID,
		AppointmentTime: req.AppointmentTime.Time,
		Description:     req.Description,
	}
	if req.EndTime != nil {
		end := req.EndTime.Time
		patch.EndTime = &end
	}

	schedule, err := s.repo.UpdateSchedule(c.UserContext(), id, patch)
	if err != nil {
		return notFoundError(err)
	}
	return c.JSON(envelope{
		Message:     "Appointment updated successfully",
		Appointment: newScheduleResponse(*schedule, ""),
	})
}

func (s *Server) deleteSchedule(c *fiber.Ctx) error {
	id, err := scheduleID(c)
	if err != nil {
		return err
	}

	schedule, err := s.repo.DeleteSchedule(c.UserContext(), id)
	if err != nil {
		return notFoundError(err)
	}
	return c.JSON(envelope{
		Message:     "Appointment deleted successfully",
		Appointment: newScheduleResponse(*schedule, ""),
	})
}

func scheduleID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid appointment ID")
	}
	return id, nil
}

func notFoundError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Appointment not found")
	}
	return err
}
