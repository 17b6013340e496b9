// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package compiler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for event tree compilation.
var (
	nodesCompiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdstudio_compile_nodes_total",
		Help: "Total number of enabled event nodes lowered by an emission rule",
	})

	unknownKinds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdstudio_unknown_kinds_total",
		Help: "Total number of event nodes whose kind was not registered",
	})

	// Labelled by kind id; cardinality is bounded by the registry.
	defaultsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdstudio_field_defaults_total",
		Help: "Total number of invalid field values replaced by their default",
	}, []string{"kind"})

	ruleFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdstudio_rule_failures_total",
		Help: "Total number of emission rules that failed and were rolled back",
	}, []string{"kind"})

	unbalancedRules = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdstudio_unbalanced_rules_total",
		Help: "Total number of emission rules that returned with a changed indent depth",
	}, []string{"kind"})
)
