// Package pkg provides the libraries behind strata, a tool that reconstructs
// the burial and subsidence history of sedimentary wells.
//
// # Overview
//
// Given a drilled stratigraphic column, strata decompacts the sediment,
// removes its load isostatically and models the remaining (tectonic)
// subsidence to predict paleo water depth, or recovers tectonic subsidence
// from recorded paleo water depths. The pkg directory is organized into
// three areas:
//
//  1. Numeric core - lithology, strat, isostasy, agedepth, rift,
//     dyntopo, sealevel, curve
//  2. Collaborator seams - geo, grid, plate
//  3. Plumbing - pipeline, well, config, cache, observability,
//     errors, buildinfo
//
// # Architecture
//
//	well file ──► well.Read ──► strat.Column
//	                                 │
//	site grids ◄── grid ◄── pipeline.Runner ──► agedepth or rift,
//	                                 │           dyntopo, sealevel
//	                                 ▼
//	                decompacted series ──► well.WriteDecompacted
//
// The numeric packages are pure: they never log, do no I/O beyond explicit
// readers, and report non-fatal numeric conditions as errors.Warning values.
// The pipeline Runner logs each warning once.
//
// # Quick Start
//
//	cfg, _ := config.Load("strata.toml")
//	table, _ := cfg.LithologyTable()
//	col, _ := well.ReadFile("ODP-1208.txt", table, nil)
//
//	runner := pipeline.NewRunner(cfg, nil, nil)
//	res, _ := runner.Backtrack(ctx, pipeline.BacktrackInput{Name: "ODP-1208", Column: col})
//	_ = well.WriteDecompacted(os.Stdout, res.Rows(), well.BacktrackFields)
//
// # Testing
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/strat/...           # Specific package
//	go test ./pkg/well -update        # Regenerate golden files
package pkg
