// Package httpapi exposes the scheduling service as a JSON REST API with a
// websocket feed of status changes.
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetHQ/internal/auth"
	"fleetHQ/internal/events"
	"fleetHQ/internal/scheduling"
	"fleetHQ/repository"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Service     *scheduling.Service
	Users       repository.UserStore
	JWTSecret   string
	Hub         *events.Hub
	CORSOrigins []string
}

const requestIDHeader = "X-Request-ID"

// requestID tags each request with an id, echoing the client's when sent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewRouter wires the REST routes.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestID(), cors.New(corsConfig(d.CORSOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handlers{svc: d.Service}
	api := router.Group("/api")
	api.Use(auth.Authenticate(d.JWTSecret, d.Users, false))
	{
		drones := api.Group("/drones")
		drones.POST("", h.createDrone)
		drones.GET("", h.listDrones)
		drones.GET("/available", h.listAvailableDrones)
		drones.GET("/:id", h.getDrone)
		drones.PUT("/:id", h.updateDrone)
		drones.DELETE("/:id", h.deleteDrone)

		missions := api.Group("/missions")
		missions.POST("", h.createMission)
		missions.GET("", h.listMissions)
		missions.GET("/:id", h.getMission)
		missions.PUT("/:id", h.updateMission)
		missions.DELETE("/:id", h.deleteMission)
	}

	if d.Hub != nil {
		ws := &eventsHandler{hub: d.Hub}
		// browsers cannot set headers on the upgrade request
		router.GET("/api/events", auth.Authenticate(d.JWTSecret, d.Users, true), ws.serve)
	}
	return router
}
