// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policygraph

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all policy graph routes with the router.
//
// Description:
//
//	Registers all /v1/policygraph/* endpoints with the given Gin router
//	group. The router group should already have any required middleware
//	applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	GET /v1/policygraph/graph - Full graph with findings and stats
//	GET /v1/policygraph/node/:kind/:id - One node with adjacency
//	GET /v1/policygraph/findings - Findings with severity counts
//	GET /v1/policygraph/health - Health check
//	GET /v1/policygraph/ready - Readiness check
//
// Example:
//
//	svc, _ := policygraph.NewService(policygraph.DefaultServiceConfig())
//	handlers := policygraph.NewHandlers(svc)
//
//	v1 := router.Group("/v1")
//	policygraph.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	pg := rg.Group("/policygraph")
	{
		pg.GET("/graph", handlers.HandleGraph)
		pg.GET("/node/:kind/:id", handlers.HandleNode)
		pg.GET("/findings", handlers.HandleFindings)

		pg.GET("/health", handlers.HandleHealth)
		pg.GET("/ready", handlers.HandleReady)
	}
}
