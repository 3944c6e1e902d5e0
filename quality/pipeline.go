package quality

import "sort"

// PipelineResult is the full outcome of running a Pipeline once.
type PipelineResult struct {
	Status  Status
	Results []PipelineGateResult
}

// Pipeline runs its gates in phase order (Validation, PostValidation,
// then any plugin gates), within a phase in registration order.
type Pipeline struct {
	gates []Gate
}

func NewPipeline(gates ...Gate) *Pipeline {
	ordered := append([]Gate(nil), gates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return phaseOrder[ordered[i].Phase()] < phaseOrder[ordered[j].Phase()]
	})
	return &Pipeline{gates: ordered}
}

// Run executes every gate and computes the overall status: Skipped gates
// count as success, and any single Failed gate fails the whole pipeline
// regardless of where in the phase order it sits.
func (p *Pipeline) Run(ctx Context) PipelineResult {
	results := make([]PipelineGateResult, 0, len(p.gates))
	overall := StatusPassed
	for _, g := range p.gates {
		r := g.Run(ctx)
		results = append(results, r)
		if r.Status == StatusFailed {
			overall = StatusFailed
		}
	}
	return PipelineResult{Status: overall, Results: results}
}
