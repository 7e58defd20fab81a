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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/graph"
)

// Handlers contains the HTTP handlers for the policy graph service.
//
// Every endpoint is read-only. The handlers never mutate the snapshot;
// the only state transition in the service is the one Build performs at
// startup.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleGraph handles GET /v1/policygraph/graph.
//
// Description:
//
//	Returns the entire frozen graph: contract metadata, the node and
//	edge tables, summary stats, and every finding the pipeline produced.
//
// Response:
//
//	200 OK: GraphResponse
//	503 Service Unavailable: Graph not built yet
func (h *Handlers) HandleGraph(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGraph")

	resp, err := h.svc.GraphPayload()
	if err != nil {
		logger.Warn("Graph not available", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Graph not built yet",
			Code:  "NOT_BUILT",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleNode handles GET /v1/policygraph/node/:kind/:id.
//
// Description:
//
//	Returns one node with its full payload and both adjacency lists.
//	Kind is one of statute, section, test, quirk.
//
// Response:
//
//	200 OK: graph.Detail
//	400 Bad Request: Unknown node kind
//	404 Not Found: No node with that kind and ID
//	503 Service Unavailable: Graph not built yet
func (h *Handlers) HandleNode(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleNode")

	kind := c.Param("kind")
	id := c.Param("id")

	detail, err := h.svc.NodeDetail(kind, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotBuilt):
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: "Graph not built yet",
				Code:  "NOT_BUILT",
			})
		case errors.Is(err, ErrUnknownNodeKind):
			logger.Warn("Unknown node kind", "kind", kind)
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "Unknown node kind: " + kind,
				Code:  "INVALID_KIND",
			})
		case errors.Is(err, graph.ErrNodeNotFound):
			logger.Warn("Node not found", "kind", kind, "id", id)
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "Node not found: " + kind + "/" + id,
				Code:  "NODE_NOT_FOUND",
			})
		default:
			logger.Error("Node lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "Node lookup failed",
				Code:  "LOOKUP_FAILED",
			})
		}
		return
	}

	c.JSON(http.StatusOK, detail)
}

// HandleFindings handles GET /v1/policygraph/findings.
//
// Description:
//
//	Returns every finding from the build pipeline with severity counts.
//	A clean contract returns an empty list and zero counts.
//
// Response:
//
//	200 OK: FindingsResponse
//	503 Service Unavailable: Graph not built yet
func (h *Handlers) HandleFindings(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleFindings")

	resp, err := h.svc.FindingsPayload()
	if err != nil {
		logger.Warn("Findings not available", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Graph not built yet",
			Code:  "NOT_BUILT",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/policygraph/health.
//
// Description:
//
//	Returns the health status of the service. Always returns 200 if running.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: "policygraph",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/policygraph/ready.
//
// Description:
//
//	Returns readiness. The service is ready once the startup build has
//	completed and the snapshot is frozen.
//
// Response:
//
//	200 OK: ReadyResponse (Ready=true)
//	503 Service Unavailable: ReadyResponse (Ready=false) - Build in progress
func (h *Handlers) HandleReady(c *gin.Context) {
	snap := h.svc.Snapshot()
	if snap == nil {
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{Ready: false})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Ready:   true,
		BuiltAt: snap.BuiltAt,
		Nodes:   snap.Graph.NumNodes(),
		Edges:   snap.Graph.NumEdges(),
	})
}

// getOrCreateRequestID extracts the request ID from headers or creates one.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
