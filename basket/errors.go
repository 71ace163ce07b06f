// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package basket

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidRadius   = errors.New("basket: radius must be a positive finite number")
	ErrUnknownStrategy = errors.New("basket: unknown strategy")
	ErrSolverBudget    = errors.New("basket: exact solver exceeded its budget")
)

// InvariantError reports a broken internal guarantee such as a point left
// uncovered by a solver. It is raised with panic, never returned.
type InvariantError struct {
	Op     string
	Point  int
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("basket: invariant violated in %s at point %d: %s", e.Op, e.Point, e.Detail)
}

func checkRadius(radiusKm float64) error {
	if radiusKm <= 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, radiusKm)
	}

	return nil
}
