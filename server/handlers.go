// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/basketopt/basket"
	"github.com/jcodagnone/basketopt/region"
	"github.com/jcodagnone/basketopt/spatial"
)

// Order is the wire form of an order location. Pointers tell a missing
// coordinate apart from zero.
type Order struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

type BasketsRequest struct {
	Orders   []Order  `json:"orders" binding:"required,dive"`
	Radius   *float64 `json:"radius" binding:"omitempty,gt=0"`
	Strategy string   `json:"strategy" binding:"omitempty,oneof=optimal-cover diameter-greedy density-cluster"`
	Index    string   `json:"index" binding:"omitempty,oneof=kdtree rtree h3"`
}

type OrdersRequest struct {
	Regions []string `json:"regions" binding:"required"`
	Count   *int     `json:"count" binding:"omitempty,min=1,max=10000"`
}

func (r *BasketsRequest) points() []spatial.Point {
	points := make([]spatial.Point, len(r.Orders))
	for i, o := range r.Orders {
		points[i] = spatial.Point{Lat: *o.Latitude, Lng: *o.Longitude}
	}

	return points
}

func (s *Server) validationFailed(ctx *gin.Context, err error) {
	verr := classifyBindError(err)
	ctx.JSON(http.StatusUnprocessableEntity, gin.H{
		"status":  "error",
		"message": "Validation error",
		"errors":  verr.Errors,
	})
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) createBaskets(ctx *gin.Context) {
	var req BasketsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.validationFailed(ctx, err)

		return
	}

	opts := basket.Options{
		Strategy:     basket.Strategy(req.Strategy),
		Index:        spatial.IndexKind(req.Index),
		SolverBudget: s.options.SolverBudget,
	}
	if req.Radius != nil {
		opts.RadiusKm = *req.Radius
	}

	allocation, err := basket.Allocate(ctx.Request.Context(), req.points(), opts)
	if err != nil {
		switch {
		case errors.Is(err, basket.ErrInvalidRadius),
			errors.Is(err, basket.ErrUnknownStrategy),
			errors.Is(err, spatial.ErrUnknownIndex):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Allocating baskets failed - %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to allocate baskets"})
		}

		return
	}

	log.Printf("Allocated %d orders into %d baskets (%s, solver=%q, optimal=%t) in %s",
		len(req.Orders), len(allocation.Baskets), allocation.Strategy,
		allocation.Solver, allocation.Optimal, allocation.Elapsed)

	if allocation.Solver != "" {
		ctx.Header(solverHeader, string(allocation.Solver))
	}

	ctx.JSON(http.StatusCreated, allocation.Baskets)
}

func (s *Server) createOrders(ctx *gin.Context) {
	var req OrdersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.validationFailed(ctx, err)

		return
	}

	regions, err := s.regions.Find(req.Regions...)
	if err != nil {
		if errors.Is(err, region.ErrNoRegions) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid regions selected"})
		} else {
			log.Printf("Loading regions failed - %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load regions"})
		}

		return
	}

	count := region.DefaultSampleCount
	if req.Count != nil {
		count = *req.Count
	}

	points, err := region.Sampler{Rand: s.options.Rand()}.Sample(regions, count)
	if err != nil {
		if errors.Is(err, region.ErrEmptyArea) || errors.Is(err, region.ErrSampleCount) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			log.Printf("Sampling orders failed - %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate orders"})
		}

		return
	}

	ctx.JSON(http.StatusCreated, points)
}

func (s *Server) listRegions(ctx *gin.Context) {
	regions, err := s.regions.Regions()
	if err != nil {
		log.Printf("Loading regions failed - %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load regions"})

		return
	}

	ctx.JSON(http.StatusOK, regions)
}
