// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/basketopt/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
