// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes basket allocation and synthetic order generation
// over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jcodagnone/basketopt/region"
)

const (
	solverHeader    = "X-Basket-Solver"
	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// SolverBudget bounds the exact cover solver per request.
	SolverBudget time.Duration
	// Rand returns the random source for one order generation request. The
	// default is seeded from the clock.
	Rand func() *rand.Rand
}

type Server struct {
	regions *region.Provider
	options Options
}

func NewServer(regions *region.Provider, options Options) *Server {
	if options.Rand == nil {
		options.Rand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 - synthetic data
		}
	}

	return &Server{regions: regions, options: options}
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report JSON field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})
	})
}

// Router returns the gin engine serving every route.
func (s *Server) Router() *gin.Engine {
	useJSONFieldNames()

	r := gin.Default()
	r.Use(newCORS())

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.POST("/baskets/batch", s.createBaskets)
	api.POST("/orders/batch", s.createOrders)
	api.GET("/regions", s.listRegions)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Printf("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Println("Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	return nil
}
