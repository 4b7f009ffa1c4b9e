package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/middleware"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.Logger(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthorRoutes(v1, c)
		setupBookRoutes(v1, c)
		setupPatronRoutes(v1, c)
		setupLoanRoutes(v1, c)
	}

	return router
}

func setupAuthorRoutes(v1 *gin.RouterGroup, c *container.Container) {
	authors := v1.Group("/authors")
	{
		authors.POST("", c.AuthorHandler.Create)
		authors.GET("", c.AuthorHandler.List)
		authors.GET("/:id", c.AuthorHandler.GetByID)
		authors.PUT("/:id", c.AuthorHandler.Update)
	}
}

func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	{
		books.POST("", c.BookHandler.Create)
		books.GET("", c.BookHandler.List)
		books.GET("/:id", c.BookHandler.GetByID)
		books.POST("/:id/availability", c.BookHandler.AdjustAvailability)
	}
}

func setupPatronRoutes(v1 *gin.RouterGroup, c *container.Container) {
	patrons := v1.Group("/patrons")
	{
		patrons.POST("", c.PatronHandler.Register)
		patrons.GET("", c.PatronHandler.List)
		patrons.GET("/:id", c.PatronHandler.GetByID)
		patrons.PUT("/:id", c.PatronHandler.Update)
		patrons.POST("/:id/deactivate", c.PatronHandler.Deactivate)
		patrons.POST("/:id/reactivate", c.PatronHandler.Reactivate)

		patrons.GET("/:id/loans", c.LoanHandler.ListForPatron)
		patrons.GET("/:id/loans/active", c.LoanHandler.ListActiveForPatron)
	}
}

func setupLoanRoutes(v1 *gin.RouterGroup, c *container.Container) {
	loans := v1.Group("/loans")
	{
		loans.POST("", c.LoanHandler.Issue)
		loans.GET("/:id", c.LoanHandler.GetByID)
		loans.POST("/:id/return", c.LoanHandler.Return)
		loans.POST("/expire-overdue", c.LoanHandler.ExpireOverdue)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "up"
		if err := c.DB.HealthCheck(checkCtx); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "up"
		if err := c.Cache.Ping(checkCtx); err != nil {
			cacheStatus = "down"
		}

		status := http.StatusOK
		overall := "ok"
		if dbStatus == "down" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		ctx.JSON(status, gin.H{
			"status":   overall,
			"database": dbStatus,
			"cache":    cacheStatus,
			"version":  c.Config.App.Version,
			"time":     time.Now().UTC(),
		})
	}
}
