package api

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/Domenick1991/trainbooking/internal/service/booking"
	"github.com/Domenick1991/trainbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

//go:embed openapi.json
var openAPIDoc []byte

type RouterDeps struct {
	Catalog        catalog.CatalogUseCase
	Bookings       booking.BookingUseCase
	Gate           AccessGate
	Tokens         TokenParser
	Log            *zap.Logger
	RequestTimeout time.Duration
	EnableDocs     bool
	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(d.Log), Timeout(d.RequestTimeout), Identity(d.Tokens))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	if d.EnableDocs {
		r.GET("/openapi.json", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", openAPIDoc)
		})
		r.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))
	}

	group := r.Group("/api")

	trains := group.Group("/trains")
	admin := trains.Group("", RequireAdmin(d.Gate, d.Log))
	NewTrainHandler(d.Catalog, d.Log).Register(trains, admin)

	NewBookingHandler(d.Bookings, d.Log).Register(group.Group("/bookings"))

	return r
}
