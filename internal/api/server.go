package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"canteen/internal/adapter/broker"
	"canteen/internal/adapter/store"
	"canteen/internal/api/handle"
	"canteen/internal/app/core"
	"canteen/internal/app/services"
	"canteen/internal/domain/models"
	"canteen/internal/xpkg/config"
	"canteen/internal/xpkg/logger"
)

var ErrServerClosed = errors.New("server closed")

type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	params *core.ServerParams
	srv    *http.Server
	mylog  logger.Logger
	st     *store.Store
	events core.EventPublisher
	ctx    context.Context
	mu     sync.Mutex
}

func NewServer(ctx context.Context, cfg *config.Config, params *core.ServerParams, mylog logger.Logger) *Server {
	return &Server{
		ctx:    ctx,
		cfg:    cfg,
		params: params,
		mylog:  mylog,
		mux:    http.NewServeMux(),
	}
}

// Run initializes the record store, the event publisher and the routes, then
// listens until the server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	if err := s.initializeStore(); err != nil {
		mylog.Action("store_init_failed").Error("Failed to initialize record store", err)
		return err
	}
	mylog.Action("store_initialized").Info("Record store ready",
		"driver", s.cfg.Storage.Driver)

	if err := s.initializeBroker(); err != nil {
		mylog.Action("mb_connection_failed").Error("Failed to connect to message broker", err)
		return err
	}

	s.configureRoutes()

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.params.Port),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog.With("port", s.params.Port).Info("server is running")
	return s.startHTTPServer()
}

// Stop shuts the server down gracefully, then closes the broker and the
// store.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Action("graceful_shutdown_started").Info("Shutting down HTTP server...")

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, core.WaitTime*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Action("graceful_shutdown_failed").Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			s.mylog.Action("mb_close_failed").Error("Failed to close message broker", err)
		}
	}
	if s.st != nil {
		if err := s.st.Close(ctx); err != nil {
			s.mylog.Action("store_close_failed").Error("Failed to close record store", err)
			return fmt.Errorf("store close: %w", err)
		}
	}

	s.mylog.Action("graceful_shutdown_completed").Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) initializeStore() error {
	var backend store.Backend
	switch s.cfg.Storage.Driver {
	case "postgres":
		b, err := store.NewPostgresBackend(s.ctx, s.cfg.Storage.DB)
		if err != nil {
			return err
		}
		backend = b
	default:
		b, err := store.NewFileBackend(s.cfg.Storage.DataDir)
		if err != nil {
			return err
		}
		backend = b
	}
	s.st = store.New(backend)
	return nil
}

func (s *Server) initializeBroker() error {
	if s.cfg.RMQ == nil {
		s.events = broker.Noop{}
		s.mylog.Action("mb_disabled").Info("No rabbitmq config, order events disabled")
		return nil
	}
	mb, err := broker.ConnectRabbitMQ(s.cfg.RMQ)
	if err != nil {
		return err
	}
	s.events = mb
	s.mylog.Action("mb_connected").Info("Successful message broker connection")
	return nil
}

func (s *Server) configureRoutes() {
	authService := services.NewAuthService(s.st, s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL, s.mylog)
	orderService := services.NewOrderService(s.st, s.events, s.mylog)
	adminService := services.NewAdminService(s.st, s.mylog)
	itemService := services.NewItemService(s.st, s.mylog)
	statsService := services.NewStatsService(s.st)

	authHandler := handle.NewAuthHandler(authService, s.mylog)
	orderHandler := handle.NewOrderHandler(orderService, s.mylog)
	shopHandler := handle.NewShopHandler(adminService, itemService)
	adminHandler := handle.NewAdminHandler(adminService, statsService, s.mylog)
	itemHandler := handle.NewItemHandler(itemService, s.mylog)

	authn := handle.Authenticate(authService, s.mylog)
	adminOnly := handle.RequireRole(models.RoleShopAdmin, models.RoleSuperAdmin)
	superOnly := handle.RequireRole(models.RoleSuperAdmin)

	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","timestamp":%q}`, time.Now().Format(time.RFC3339))
	})

	// Public.
	s.mux.Handle("POST /api/auth/register", authHandler.Register())
	s.mux.Handle("POST /api/auth/login", authHandler.Login())
	s.mux.Handle("GET /api/shops", shopHandler.List())
	s.mux.Handle("GET /api/shops/{shopId}/menu", shopHandler.Menu())

	// Authenticated users.
	s.mux.Handle("POST /api/orders/place", authn(orderHandler.Place()))
	s.mux.Handle("GET /api/orders/my-orders", authn(orderHandler.MyOrders()))

	// Shop and super admins.
	s.mux.Handle("GET /api/admin/orders", authn(adminOnly(orderHandler.ShopOrders())))
	s.mux.Handle("PUT /api/admin/orders/{orderId}/status", authn(adminOnly(orderHandler.UpdateStatus())))
	s.mux.Handle("PUT /api/admin/orders/{orderId}/reject", authn(adminOnly(orderHandler.Reject())))
	s.mux.Handle("GET /api/admin/my-shop", authn(adminOnly(adminHandler.MyShop())))
	s.mux.Handle("GET /api/admin/shop/{shopId}/stats", authn(adminOnly(adminHandler.ShopStats())))
	s.mux.Handle("PUT /api/admin/shop/{shopId}/status", authn(adminOnly(adminHandler.ShopStatus())))
	s.mux.Handle("PUT /api/admin/shop/{shopId}/toggle", authn(adminOnly(adminHandler.ToggleShop())))
	s.mux.Handle("GET /api/admin/items", authn(adminOnly(itemHandler.List())))
	s.mux.Handle("POST /api/admin/items", authn(adminOnly(itemHandler.Add())))
	s.mux.Handle("PUT /api/admin/items/{itemId}", authn(adminOnly(itemHandler.Update())))
	s.mux.Handle("DELETE /api/admin/items/{itemId}", authn(adminOnly(itemHandler.Delete())))
	s.mux.Handle("PUT /api/admin/items/{itemId}/toggle", authn(adminOnly(itemHandler.Toggle())))

	// Super admin only.
	s.mux.Handle("GET /api/admin/shops", authn(adminOnly(adminHandler.Shops())))
	s.mux.Handle("GET /api/admin/shops/{shopId}", authn(adminOnly(adminHandler.ShopByID())))
	s.mux.Handle("POST /api/admin/shops", authn(superOnly(adminHandler.CreateShop())))
	s.mux.Handle("PUT /api/admin/shops/{shopId}", authn(superOnly(adminHandler.UpdateShop())))
	s.mux.Handle("DELETE /api/admin/shops/{shopId}", authn(superOnly(adminHandler.DeleteShop())))
	s.mux.Handle("GET /api/admin/users", authn(superOnly(adminHandler.Users())))
	s.mux.Handle("PUT /api/admin/users/{userId}/role", authn(superOnly(adminHandler.UpdateUserRole())))
}
