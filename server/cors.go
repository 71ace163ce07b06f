// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}

	corsAllowHeaders = []string{
		"Content-Type",
		"X-Instance-Id",
		"Authorization",
		"Accept",
		"Origin",
		"X-Requested-With",
		"Access-Control-Request-Method",
		"Access-Control-Request-Headers",
		"X-CSRF-Token",
		"X-API-Key",
	}

	corsExposeHeaders = []string{
		"Content-Type",
		"X-Instance-Id",
		"Content-Length",
		"Content-Range",
		"X-Total-Count",
		"X-Rate-Limit-Limit",
		"X-Rate-Limit-Remaining",
		"X-Rate-Limit-Reset",
		solverHeader,
	}
)

const corsMaxAge = time.Hour

// newCORS allows any origin, with credentials, by echoing the request's
// Origin. Preflight requests are answered with 204.
func newCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     corsMethods,
		AllowHeaders:     corsAllowHeaders,
		ExposeHeaders:    corsExposeHeaders,
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})
}
