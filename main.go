// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the dataorch CLI application.
// It answers cross-domain business questions by delegating sub-questions to
// database-backed language-model agents and synthesizing their answers.
package main

import (
	"seedfast/dataorch/cmd"
)

// main is the entry point for the dataorch CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
