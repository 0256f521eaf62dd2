// Package pkg provides the core libraries for cobotgen synthetic dataset
// generation.
//
// # Overview
//
// Cobotgen renders annotated images of a collaborative robot cell. Each image
// shows a randomized layout of the cell — robot pose, worker position,
// workpiece placement, camera and light — that has been verified against
// minimum-distance safety constraints before rendering. The pkg directory is
// organized into four main areas:
//
//  1. Domain logic (geometry, scene, sampler, constraint, negotiate)
//  2. Infrastructure (cache, runlog, observability)
//  3. Rendering (render, render/schematic)
//  4. Orchestration (pipeline)
//
// # Architecture
//
// The typical data flow through cobotgen:
//
//	Scene description + run configuration
//	         ↓
//	    [sampler] package (draw a candidate layout)
//	         ↓
//	    [constraint] package (measure distances, verdict)
//	         ↓
//	    [negotiate] package (retry until safe or exhausted)
//	         ↓
//	    [render] package (image + segmentation map)
//	         ↓
//	    [runlog] package (append-only record, CSV/MongoDB export)
//
// # Quick Start
//
// Generate a dataset programmatically:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/cobotgen/pkg/config"
//	    "github.com/matzehuels/cobotgen/pkg/pipeline"
//	)
//
//	cfg, _ := config.Load("config.toml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), pipeline.Options{Config: cfg})
//	for _, rec := range result.Records {
//	    fmt.Println(rec.Name, rec.State, rec.MinDistance)
//	}
//
// # Main Packages
//
// ## Domain Logic
//
// [geometry] - Vectors, bounding volumes (sphere, capsule, axis-aligned box)
// and exact pairwise distance computation between them.
//
// [scene] - The cell description: named entities with roles, shapes and
// poses, loaded from JSON.
//
// [sampler] - Seeded randomization of the cell within configured ranges,
// plus camera shell sampling and light placement.
//
// [constraint] - Safety evaluation of a posed scene against minimum-distance
// rules and overlap checks.
//
// [negotiate] - The sample-evaluate loop that retries candidates up to a
// bounded attempt budget and keeps every attempt for the audit trail.
//
// ## Infrastructure
//
// [cache] - Content-addressed caching of rendered frames. NullCache and
// FileCache for the CLI, RedisCache for shared deployments.
//
// [runlog] - Append-only run records with CSV and MongoDB export.
//
// ## Rendering
//
// [render] - The renderer contract and output naming.
//
// [render/schematic] - Top-down orthographic 2D renderer producing the image
// and its pixel-aligned segmentation map.
//
// ## Orchestration
//
// [pipeline] - Wires sampling, evaluation, rendering and logging into one
// run; the CLI and the HTTP server sit on top of it.
package pkg
