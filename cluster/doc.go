// Package cluster runs the Jobs of progressive queries on remote workers.
//
// A Worker serves a single gRPC method which executes one Job against the Worker's own
// copy of the Dataset, returning the serialized Partial. A RemoteExecutor dispatches
// Jobs to a set of Workers and may be handed to a scheduler in place of local execution.
package cluster
