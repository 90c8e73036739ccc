package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"simmer/config"
	"simmer/server/domain"
	"simmer/server/handler"
)

type RouteDeps struct {
	PubSub      domain.PubSub
	RoomManager domain.RoomManager
	Endpoint    domain.EndpointOptions
	State       handler.Snapshotter
	Metrics     config.MetricsConfig
	Gatherer    prometheus.Gatherer
}

func Route(deps RouteDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ws", gin.WrapH(handler.NewAcceptHandler(deps.PubSub, deps.RoomManager, deps.Endpoint)))
	router.GET("/healthz", handler.Health)
	if deps.State != nil {
		router.GET("/api/state", handler.NewStateHandler(deps.State))
	}
	if deps.Metrics.Enabled && deps.Gatherer != nil {
		router.GET(deps.Metrics.Path, gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	return router
}
