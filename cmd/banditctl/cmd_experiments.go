// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banditlabs/banditd/services/bandit/datatypes"
)

func runCreate(cmd *cobra.Command, args []string) {
	name := args[0]

	req := datatypes.CreateExperimentRequest{
		ExperimentName: name,
		Arms:           createArms,
		Algorithm:      createAlgorithm,
	}
	// Negative sentinel means the flag was not given; the server picks
	// its defaults.
	if createEpsilon >= 0 {
		req.Epsilon = &createEpsilon
	}
	if createC >= 0 {
		req.C = &createC
	}

	client := newAPIClient(serverURL)
	if err := client.createExperiment(context.Background(), req); err != nil {
		fatal(err)
	}
	printOK("created experiment %q (%s, %d arms)", name, createAlgorithm, len(createArms))
}

func runList(cmd *cobra.Command, args []string) {
	client := newAPIClient(serverURL)
	resp, err := client.list(context.Background())
	if err != nil {
		fatal(err)
	}

	if len(resp.Experiments) == 0 {
		printNote("no experiments")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "NAME\tALGORITHM\tPULLS\tCREATED")
	for _, e := range resp.Experiments {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Name, e.Algorithm, e.TotalPulls, e.CreatedAt)
	}
	w.Flush()
}

func runStats(cmd *cobra.Command, args []string) {
	client := newAPIClient(serverURL)
	s, err := client.stats(context.Background(), args[0])
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Experiment:   %s\n", s.ExperimentName)
	fmt.Printf("Algorithm:    %s\n", s.Algorithm)
	fmt.Printf("Created:      %s\n", s.CreatedAt)
	fmt.Printf("Total pulls:  %d\n", s.TotalPulls)
	fmt.Printf("Total reward: %s\n", formatFloat(s.TotalReward))
	fmt.Printf("Avg reward:   %s\n", formatFloat(s.AverageReward))
	if s.Epsilon != nil {
		fmt.Printf("Epsilon:      %s\n", formatFloat(*s.Epsilon))
	}
	if s.C != nil {
		fmt.Printf("C:            %s\n", formatFloat(*s.C))
	}
	fmt.Println()

	w := newTable()
	if len(s.Alpha) > 0 {
		fmt.Fprintln(w, "ARM\tNAME\tPULLS\tVALUE\tALPHA\tBETA")
		for i, armName := range s.ArmNames {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
				i, armName, s.ArmCounts[i], formatFloat(s.ArmValues[i]),
				formatFloat(s.Alpha[i]), formatFloat(s.Beta[i]))
		}
	} else {
		fmt.Fprintln(w, "ARM\tNAME\tPULLS\tVALUE")
		for i, armName := range s.ArmNames {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n",
				i, armName, s.ArmCounts[i], formatFloat(s.ArmValues[i]))
		}
	}
	w.Flush()
}

func runDelete(cmd *cobra.Command, args []string) {
	client := newAPIClient(serverURL)
	if err := client.deleteExperiment(context.Background(), args[0]); err != nil {
		fatal(err)
	}
	printOK("deleted experiment %q", args[0])
}
