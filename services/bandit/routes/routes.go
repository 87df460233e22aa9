// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banditlabs/banditd/services/bandit/handlers"
	"github.com/banditlabs/banditd/services/bandit/middleware"
	"github.com/banditlabs/banditd/services/bandit/registry"
)

// SetupRoutes registers every endpoint of the bandit API on the router.
func SetupRoutes(router *gin.Engine, reg *registry.Registry) {
	router.Use(middleware.RequestID())

	router.GET("/", handlers.Index)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/select", handlers.SelectArm(reg))
		v1.POST("/update", handlers.UpdateReward(reg))

		experiments := v1.Group("/experiments")
		{
			experiments.POST("", handlers.CreateExperiment(reg))
			experiments.GET("", handlers.ListExperiments(reg))
			experiments.GET("/:name/stats", handlers.GetExperimentStats(reg))
			experiments.DELETE("/:name", handlers.DeleteExperiment(reg))
		}
	}
}
