// Package server wires the room, service, bridge, and HTTP surface into
// a runnable chat server.
package server

import (
	"strings"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/roomcast/roomcast/config"
	"github.com/roomcast/roomcast/src/bridge"
	"github.com/roomcast/roomcast/src/room"
	"github.com/roomcast/roomcast/src/service"
)

// Server hosts one chat room behind a WebSocket endpoint plus a small
// HTTP API.
type Server struct {
	cfg     *config.ServerConfig
	room    *room.Room
	service *service.Service
	bridge  bridge.Bridge
	http    *fasthttp.Server
	logger  zerolog.Logger

	upgrader websocket.FastHTTPUpgrader
}

// New assembles a server from configuration. Call Start to begin serving.
func New(cfg *config.ServerConfig, logger zerolog.Logger) *Server {
	r := room.New(logger)
	return &Server{
		cfg:     cfg,
		room:    r,
		service: service.New(r, logger),
		logger:  logger,
		upgrader: websocket.FastHTTPUpgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
	}
}

// Service exposes the room service, for embedders and tests.
func (s *Server) Service() *service.Service { return s.service }

// Start runs the room loop, optionally connects the bridge, and serves
// HTTP on the configured address. It blocks until the listener stops.
func (s *Server) Start() error {
	go s.room.Run()

	if s.cfg.Bridge {
		s.initBridge()
	}

	app := s.routes()
	fiberHandler := app.Handler()

	// Fiber v3 does not expose *fasthttp.RequestCtx, so the WebSocket
	// upgrade is dispatched ahead of it at the fasthttp level.
	s.http = &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) == "/ws" {
				s.handleUpgrade(ctx)
				return
			}
			fiberHandler(ctx)
		},
	}

	s.logger.Info().Str("addr", s.cfg.Addr).Msg("chat server listening")
	return s.http.ListenAndServe(s.cfg.Addr)
}

// Stop shuts the server down: bridge first, then the room loop and all
// session transports, then the HTTP listener.
func (s *Server) Stop() error {
	if s.bridge != nil {
		if err := s.bridge.Stop(); err != nil {
			s.logger.Error().Err(err).Msg("bridge stop error")
		}
		s.bridge = nil
	}
	s.room.Shutdown()
	if s.http != nil {
		return s.http.Shutdown()
	}
	return nil
}

// initBridge tries to start the Redis pub/sub bridge. If Redis is not
// reachable, the server runs in standalone mode.
func (s *Server) initBridge() {
	cfg := bridge.RedisConfigFromEnv()
	rb := bridge.NewRedisBridge(cfg, s.room, s.logger)

	if err := rb.Start(); err != nil {
		s.logger.Warn().Err(err).Msg("redis bridge unavailable, running standalone")
		return
	}

	s.bridge = rb
	s.room.SetBridge(rb)
	s.logger.Info().Str("redis_addr", cfg.Addr).Msg("redis bridge connected")
}

func (s *Server) routes() *fiber.App {
	app := fiber.New()

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/ws/info", s.handleInfo)
	app.Post("/announce", s.handleAnnounce)

	return app
}

func (s *Server) handleInfo(c fiber.Ctx) error {
	info := s.service.Info()
	return c.JSON(fiber.Map{
		"websocket": true,
		"endpoint":  "/ws",
		"sessions":  info.Sessions,
		"users":     info.Users,
		"messages":  info.Messages,
		"typing":    info.Typing,
	})
}

func (s *Server) handleAnnounce(c fiber.Ctx) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := s.service.Announce(body.Text); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"announced": true})
}

// handleUpgrade accepts a WebSocket connection and runs its session
// pumps. The session drives its own lifecycle from here on; upgrade
// failures and session errors never escape this handler.
func (s *Server) handleUpgrade(ctx *fasthttp.RequestCtx) {
	upgrade := string(ctx.Request.Header.Peek("Upgrade"))
	if !strings.EqualFold(upgrade, "websocket") {
		ctx.SetStatusCode(fasthttp.StatusUpgradeRequired)
		ctx.SetBodyString(`{"error":"upgrade_required","message":"WebSocket upgrade required"}`)
		return
	}
	if s.room.SessionCount() >= s.cfg.MaxConnections {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		ctx.SetBodyString(`{"error":"room_full"}`)
		return
	}

	sessionID := uuid.New().String()

	err := s.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		sess := room.NewSession(sessionID, &wsConn{conn}, s.room, s.logger)
		go sess.WritePump()
		sess.ReadPump()
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
	}
}

// wsConn adapts fasthttp/websocket.Conn to types.Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (w *wsConn) ReadText() (string, error) {
	_, data, err := w.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (w *wsConn) WriteJSON(v any) error { return w.conn.WriteJSON(v) }
func (w *wsConn) Close() error          { return w.conn.Close() }
