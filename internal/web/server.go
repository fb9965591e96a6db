// Package web serves the dashboard page and its JSON API.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dyike/StockPulse/internal/dashboard"
	"github.com/dyike/StockPulse/internal/quote"
)

//go:embed templates/*.html
var templateFS embed.FS

// Lookuper is satisfied by *dashboard.Service.
type Lookuper interface {
	Lookup(ctx context.Context, rawSymbol string) (*dashboard.Result, error)
}

// Settings are the parts of the config the handlers read per request.
type Settings struct {
	DefaultSymbol  string
	Location       *time.Location
	CORSOrigins    []string
	NewsWindowDays int
}

type serverState struct {
	lookup   Lookuper
	settings Settings
	// cors is nil when no origins are allowed.
	cors     gin.HandlerFunc
}

type Server struct {
	router  *gin.Engine
	current atomic.Pointer[serverState]
	logger  zerolog.Logger
	now     func() time.Time
}

func NewServer(lookup Lookuper, settings Settings, logger zerolog.Logger) *Server {
	s := &Server{
		logger: logger.With().Str("component", "web").Logger(),
		now:    time.Now,
	}
	s.Swap(lookup, settings)
	s.router = s.routes()
	return s
}

// Swap replaces the service and settings used by subsequent requests,
// including the CORS policy on /api.
func (s *Server) Swap(lookup Lookuper, settings Settings) {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.DefaultSymbol == "" {
		settings.DefaultSymbol = "AAPL"
	}
	if settings.NewsWindowDays <= 0 {
		settings.NewsWindowDays = 7
	}
	s.current.Store(&serverState{
		lookup:   lookup,
		settings: settings,
		cors:     newCORS(settings.CORSOrigins),
	})
}

func newCORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	tmpl := template.Must(template.ParseFS(templateFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.index)
	r.GET("/healthz", s.health)

	api := r.Group("/api", s.apiCORS)
	api.GET("/quote", s.apiQuote)
	api.OPTIONS("/quote", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

// apiCORS applies whatever CORS policy the latest Swap installed.
// A rejected origin or a preflight aborts the chain inside the handler.
func (s *Server) apiCORS(c *gin.Context) {
	if h := s.current.Load().cors; h != nil {
		h(c)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) index(c *gin.Context) {
	rt := s.current.Load()
	page := pageView{DefaultSymbol: rt.settings.DefaultSymbol}

	raw, submitted := c.GetQuery("symbol")
	if !submitted {
		page.Symbol = rt.settings.DefaultSymbol
		c.HTML(http.StatusOK, "index.html", page)
		return
	}

	res, err := rt.lookup.Lookup(c.Request.Context(), raw)
	if err != nil {
		page.Symbol = strings.ToUpper(strings.TrimSpace(raw))
		page.Error = msgNotFound
		if errors.Is(err, quote.ErrEmptySymbol) {
			page.Error = msgEmptyInput
		}
		c.HTML(http.StatusOK, "index.html", page)
		return
	}

	page = buildPage(res, s.now(), rt.settings.Location, rt.settings.NewsWindowDays)
	page.DefaultSymbol = rt.settings.DefaultSymbol
	c.HTML(http.StatusOK, "index.html", page)
}

func (s *Server) apiQuote(c *gin.Context) {
	rt := s.current.Load()

	res, err := rt.lookup.Lookup(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		switch {
		case errors.Is(err, quote.ErrEmptySymbol):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgEmptyInput})
		case errors.Is(err, quote.ErrNoValidQuote):
			c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		default:
			s.logger.Error().Err(err).Msg("quote lookup failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": msgNotFound})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
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
		return srv.Shutdown(shutdownCtx)
	}
}
