// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	serverURL string

	createAlgorithm string
	createArms      []string
	createEpsilon   float64
	createC         float64

	simulateRates  []float64
	simulatePulls  int
	simulateSeed   uint64
	simulateCreate bool

	rootCmd = &cobra.Command{
		Use:   "banditctl",
		Short: "A cli to manage experiments on a banditd server",
		Long: `banditctl drives a running banditd instance: creating experiments,
routing traffic through arm selections, reporting rewards, and
inspecting learned statistics.`,
	}

	createCmd = &cobra.Command{
		Use:   "create [experiment_name]",
		Short: "Create a new experiment",
		Args:  cobra.ExactArgs(1),
		Run:   runCreate, // Defined in cmd_experiments.go
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List all experiments on the server",
		Args:  cobra.NoArgs,
		Run:   runList, // Defined in cmd_experiments.go
	}

	statsCmd = &cobra.Command{
		Use:   "stats [experiment_name]",
		Short: "Show learned statistics for an experiment",
		Args:  cobra.ExactArgs(1),
		Run:   runStats, // Defined in cmd_experiments.go
	}

	deleteCmd = &cobra.Command{
		Use:   "delete [experiment_name]",
		Short: "Delete an experiment and its durable record",
		Args:  cobra.ExactArgs(1),
		Run:   runDelete, // Defined in cmd_experiments.go
	}

	selectCmd = &cobra.Command{
		Use:   "select [experiment_name]",
		Short: "Ask the server which arm to serve next",
		Args:  cobra.ExactArgs(1),
		Run:   runSelect, // Defined in cmd_traffic.go
	}

	updateCmd = &cobra.Command{
		Use:   "update [experiment_name] [arm_index] [reward]",
		Short: "Report an observed reward for an arm",
		Args:  cobra.ExactArgs(3),
		Run:   runUpdate, // Defined in cmd_traffic.go
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate [experiment_name]",
		Short: "Drive synthetic Bernoulli traffic through an experiment",
		Long: `Simulate repeatedly selects an arm, draws a Bernoulli reward from
the per-arm true rates given with --rates, and reports it back. At the
end it prints per-arm pulls, learned values, and cumulative regret
against the best arm.`,
		Args: cobra.ExactArgs(1),
		Run:  runSimulate, // Defined in cmd_traffic.go
	}
)

func init() {
	defaultServer := os.Getenv("BANDITD_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8000"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer,
		"Base URL of the banditd server (env: BANDITD_URL)")

	createCmd.Flags().StringVarP(&createAlgorithm, "algorithm", "a", "thompson_sampling",
		"Algorithm: epsilon_greedy, ucb, or thompson_sampling")
	createCmd.Flags().StringSliceVar(&createArms, "arms", nil,
		"Comma-separated arm names (at least two)")
	createCmd.Flags().Float64Var(&createEpsilon, "epsilon", -1,
		"Exploration rate for epsilon_greedy (server default when unset)")
	createCmd.Flags().Float64Var(&createC, "c", -1,
		"Exploration constant for ucb (server default when unset)")
	_ = createCmd.MarkFlagRequired("arms")

	simulateCmd.Flags().Float64SliceVar(&simulateRates, "rates", nil,
		"True Bernoulli success rate per arm, in arm order")
	simulateCmd.Flags().IntVar(&simulatePulls, "pulls", 1000, "Number of simulated selections")
	simulateCmd.Flags().Uint64Var(&simulateSeed, "seed", 0, "RNG seed (0 picks a random seed)")
	simulateCmd.Flags().BoolVar(&simulateCreate, "create", false,
		"Create the experiment first with auto-named arms")
	simulateCmd.Flags().StringVarP(&createAlgorithm, "algorithm", "a", "thompson_sampling",
		"Algorithm used with --create")
	_ = simulateCmd.MarkFlagRequired("rates")

	rootCmd.AddCommand(createCmd, listCmd, statsCmd, deleteCmd, selectCmd, updateCmd, simulateCmd)
}
