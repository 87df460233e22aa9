// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck handles GET /health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Index handles GET / with a small endpoint directory.
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "banditd",
		"endpoints": gin.H{
			"create":  "POST /v1/experiments",
			"select":  "POST /v1/select",
			"update":  "POST /v1/update",
			"stats":   "GET /v1/experiments/:name/stats",
			"list":    "GET /v1/experiments",
			"delete":  "DELETE /v1/experiments/:name",
			"metrics": "GET /metrics",
		},
	})
}
