// Package forecast provides the probabilistic fill-date forecasting engine
// for open hiring requisitions.
//
// # Reading Guide
//
// Start with these three files to understand the engine kernel:
//   - stage.go: the canonical pipeline stages and their ordering
//   - duration.go: stage-duration distributions and sampling
//   - simulator.go: the Monte Carlo loops (single-candidate and pipeline mode)
//
// # Architecture
//
// The forecast package holds the pure simulation core; the layers that feed
// it live in sub-packages:
//   - forecast/capacity: recruiter/HM throughput inference, global demand
//     aggregation, and the queueing-penalty model that turns excess demand
//     into added stage delay
//   - forecast/scenario: YAML scenario loading and the shrinkage +
//     small-sample fallback policy that turns fitted historical rates into
//     SimulationParameters
//
// Every simulation call is a pure function of its inputs and a deterministic
// SimulationKey: identical inputs always reproduce identical SimulatedDays,
// whether iterations run serially or partitioned across goroutines. The only
// shared state is the bounded ResultCache, whose entries are immutable once
// written.
package forecast
