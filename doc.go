// Package agentcore is an orchestration runtime for desktop development
// assistants: it turns a user request into a streaming, permissioned,
// multi-step collaboration between LLM agents and local tools.
//
// # Core pieces
//
// Every provider adapter and composite agent speaks the same flat event
// model defined in package event. An orchestrator.Loop drives one
// conversation's agentic turn: it streams a provider.Provider's response,
// dispatches tool calls through a tool.Registry, and gates anything risky
// through a permission.Gate before it runs. Multi-step work is described
// as a plan.Plan — a dependency DAG a stepexec.Executor runs in
// concurrency-bounded batches — or composed directly with package
// composer's sequential/parallel/conditional combinators. A
// subagent.Spawner bounds how many nested Task-tool invocations can run
// at once.
//
// Supporting packages round out a single long-running assistant process:
// skill indexes and injects project-local skill documents, knowledge
// ranks and injects retrieved context, quality runs a phase-ordered
// validation pipeline over an agent's output, webhook dispatches unified
// events to external channels with retry and rate limiting, watcher
// reports debounced filesystem changes, and recovery resumes an
// in-flight run from a snapshot the host has stored.
//
// # Using as a Go library
//
//	import (
//	    "github.com/arborcode/agentcore/orchestrator"
//	    "github.com/arborcode/agentcore/permission"
//	    "github.com/arborcode/agentcore/provider"
//	    "github.com/arborcode/agentcore/tool"
//	)
//
// cmd/agentcore wires these into a minimal terminal harness for local
// exercising; it is not the core's public contract, which is these
// in-process packages.
package agentcore
