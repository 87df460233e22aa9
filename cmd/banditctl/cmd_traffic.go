// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	exprand "golang.org/x/exp/rand"

	"github.com/banditlabs/banditd/services/bandit/datatypes"
)

func runSelect(cmd *cobra.Command, args []string) {
	client := newAPIClient(serverURL)
	sel, err := client.selectArm(context.Background(), args[0])
	if err != nil {
		fatal(err)
	}
	fmt.Printf("%d\t%s\n", sel.ArmIndex, sel.ArmName)
}

func runUpdate(cmd *cobra.Command, args []string) {
	arm, err := strconv.Atoi(args[1])
	if err != nil {
		fatal(fmt.Errorf("arm_index must be an integer: %w", err))
	}
	reward, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		fatal(fmt.Errorf("reward must be a number: %w", err))
	}

	client := newAPIClient(serverURL)
	if err := client.updateReward(context.Background(), args[0], arm, reward); err != nil {
		fatal(err)
	}
	printOK("recorded reward %s for arm %d", formatFloat(reward), arm)
}

func runSimulate(cmd *cobra.Command, args []string) {
	name := args[0]
	ctx := context.Background()
	client := newAPIClient(serverURL)

	if len(simulateRates) < 2 {
		fatal(fmt.Errorf("--rates needs at least two arms, got %d", len(simulateRates)))
	}
	for i, r := range simulateRates {
		if r < 0 || r > 1 {
			fatal(fmt.Errorf("rate %d (%v) outside [0,1]", i, r))
		}
	}

	if simulateCreate {
		arms := make([]string, len(simulateRates))
		for i := range arms {
			arms[i] = fmt.Sprintf("arm_%d", i)
		}
		err := client.createExperiment(ctx, datatypes.CreateExperimentRequest{
			ExperimentName: name,
			Arms:           arms,
			Algorithm:      createAlgorithm,
		})
		if err != nil {
			fatal(err)
		}
		printOK("created experiment %q (%s, %d arms)", name, createAlgorithm, len(arms))
	}

	seed := simulateSeed
	if seed == 0 {
		var b [8]byte
		_, _ = rand.Read(b[:])
		seed = binary.LittleEndian.Uint64(b[:])
	}
	rng := exprand.New(exprand.NewSource(seed))

	bestRate := simulateRates[0]
	for _, r := range simulateRates[1:] {
		if r > bestRate {
			bestRate = r
		}
	}

	pulls := make([]int, len(simulateRates))
	var totalReward, regret float64

	for i := 0; i < simulatePulls; i++ {
		sel, err := client.selectArm(ctx, name)
		if err != nil {
			fatal(err)
		}
		if sel.ArmIndex < 0 || sel.ArmIndex >= len(simulateRates) {
			fatal(fmt.Errorf("server selected arm %d but only %d rates were given",
				sel.ArmIndex, len(simulateRates)))
		}

		reward := 0.0
		if rng.Float64() < simulateRates[sel.ArmIndex] {
			reward = 1.0
		}
		if err := client.updateReward(ctx, name, sel.ArmIndex, reward); err != nil {
			fatal(err)
		}

		pulls[sel.ArmIndex]++
		totalReward += reward
		regret += bestRate - simulateRates[sel.ArmIndex]
	}

	printNote("seed %d", seed)
	fmt.Println()

	w := newTable()
	fmt.Fprintln(w, "ARM\tTRUE RATE\tPULLS\tSHARE")
	for i, n := range pulls {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.1f%%\n",
			i, formatFloat(simulateRates[i]), n, 100*float64(n)/float64(simulatePulls))
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("Total reward:      %s\n", formatFloat(totalReward))
	fmt.Printf("Cumulative regret: %s\n", formatFloat(regret))
	fmt.Printf("Regret per pull:   %s\n", formatFloat(regret/float64(simulatePulls)))
}
