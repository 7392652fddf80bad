// Package httpapi serves the admin collections over HTTP. List endpoints
// answer with {data, pagination} pages computed by the store, which is the
// only source of pagination totals.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aihavenlabs/pathwei-admin/internal/filter"
	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/internal/sqlite"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// BasePath prefixes every admin route.
const BasePath = "/api/admin"

// Deps are the data sources behind the routes.
type Deps struct {
	Users       types.Collection[types.User]
	Subscribers types.Collection[types.Subscriber]
	Experiments types.Collection[types.PriceExperiment]

	RecordExperiment func(ctx context.Context, id string, views, conversions int) (types.PriceExperiment, error)
	Stats            func(ctx context.Context) (types.Stats, error)
	LocaleStats      func(ctx context.Context) ([]types.LocaleStat, error)
}

// FromBackend wires Deps to a SQLite backend.
func FromBackend(b *sqlite.Backend) Deps {
	return Deps{
		Users:            b.Users(),
		Subscribers:      b.Subscribers(),
		Experiments:      b.Experiments(),
		RecordExperiment: b.Experiments().Record,
		Stats:            b.Stats,
		LocaleStats:      b.LocaleStats,
	}
}

// Server is the admin HTTP API.
type Server struct {
	deps  Deps
	pages types.PaginationConfig
	log   logger.Logger
	r     *gin.Engine
}

// New builds the router. Zero pagination settings take the defaults.
func New(deps Deps, pages types.PaginationConfig, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	if pages.DefaultLimit < 1 {
		pages.DefaultLimit = types.DefaultPageLimit
	}
	if pages.MaxLimit < 1 {
		pages.MaxLimit = types.DefaultMaxPageLimit
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.NoRoute(func(c *gin.Context) {
		respondError(c, fmt.Errorf("%w: %s %s", types.ErrNotFound, c.Request.Method, c.Request.URL.Path))
	})

	s := &Server{deps: deps, pages: pages, log: log, r: r}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group(BasePath)
	mount(s, api, types.CollectionUsers, deps.Users)
	mount(s, api, types.CollectionSubscribers, deps.Subscribers)
	mount(s, api, types.CollectionExperiments, deps.Experiments)
	if deps.RecordExperiment != nil {
		api.POST("/"+types.CollectionExperiments+"/:id/record", s.recordExperiment)
	}
	if deps.Stats != nil {
		api.GET("/stats", s.stats)
	}
	if deps.LocaleStats != nil {
		api.GET("/stats/locales", s.localeStats)
	}
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("admin API listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		<-errCh
		s.log.Info("admin API stopped")
		return nil
	}
}

// limit sanitizes the requested page size against the configured cap.
func (s *Server) limit(requested int) int {
	if requested < 1 {
		return s.pages.DefaultLimit
	}
	return min(requested, s.pages.MaxLimit)
}

func mount[T any](s *Server, g *gin.RouterGroup, name string, coll types.Collection[T]) {
	if coll == nil {
		return
	}
	h := &collectionHandler[T]{s: s, name: name, coll: coll}
	rg := g.Group("/" + name)
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type collectionHandler[T any] struct {
	s    *Server
	name string
	coll types.Collection[T]
}

// list parses the query string through the collection's filter schema, so
// unknown keys are dropped and values take their declared kinds.
func (h *collectionHandler[T]) list(c *gin.Context) {
	schema, ok := filter.ForCollection(h.name, h.s.pages.DefaultLimit)
	if !ok {
		respondError(c, types.ErrCollectionNotFound)
		return
	}
	st := filter.New(schema, filter.WithLogger(logger.FromContext(c.Request.Context())))
	st.SetFromSearchParams(c.Request.URL.Query())

	q := types.ListQuery{
		Page:    st.Page(),
		Limit:   h.s.limit(st.Limit(h.s.pages.DefaultLimit)),
		Filters: st.Active().Map(),
	}
	page, err := h.coll.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *collectionHandler[T]) get(c *gin.Context) {
	e, err := h.coll.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *collectionHandler[T]) create(c *gin.Context) {
	var e T
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, "invalid JSON body", err)
		return
	}
	created, err := h.coll.Create(c.Request.Context(), e)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *collectionHandler[T]) update(c *gin.Context) {
	var e T
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, "invalid JSON body", err)
		return
	}
	updated, err := h.coll.Update(c.Request.Context(), c.Param("id"), e)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *collectionHandler[T]) delete(c *gin.Context) {
	if err := h.coll.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordRequest is the body of POST /experiments/:id/record.
type RecordRequest struct {
	Views       int `json:"views"`
	Conversions int `json:"conversions"`
}

func (s *Server) recordExperiment(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body", err)
		return
	}
	e, err := s.deps.RecordExperiment(c.Request.Context(), c.Param("id"), req.Views, req.Conversions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.deps.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) localeStats(c *gin.Context) {
	st, err := s.deps.LocaleStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": st})
}
