package signal

import "context"

// Pipeline binds a Router's routing decision to a Dispatcher and an
// InstructionRunner, so a caller has one entry point from Signal to
// delivered/executed handlers (spec §2 control-flow paragraph, §4.6).
type Pipeline struct {
	router   *Router
	dispatch *Dispatcher
	runner   InstructionRunner
}

// NewPipeline builds a Pipeline. runner may be nil if the bound Router
// never produces Instruction handlers; Handle returns a routing_error if
// an Instruction is routed with no runner configured.
func NewPipeline(router *Router, dispatch *Dispatcher, runner InstructionRunner) *Pipeline {
	return &Pipeline{router: router, dispatch: dispatch, runner: runner}
}

// Handle routes s, runs every Instruction handler through the configured
// InstructionRunner, and dispatches every Dispatch/DispatchGroup handler
// (already flattened to individual Dispatch targets by Router.Route) as a
// single DispatchSpec through the Dispatcher, returning one aggregated
// Result. Instructions run sequentially, in routed order, before any
// dispatch target is delivered; an Instruction failure aborts the remaining
// Instructions and dispatch entirely, matching spec §4.5's "first hard
// failure stops the pipeline, delivery failures don't" split.
func (p *Pipeline) Handle(ctx context.Context, s *Signal) (*Result, error) {
	handlers, err := p.router.Route(ctx, s)
	if err != nil {
		return nil, err
	}

	var targets []Target
	for _, h := range handlers {
		switch v := h.(type) {
		case Instruction:
			if p.runner == nil {
				return nil, newRoutingErrorf("no InstructionRunner configured for action %q", v.Action)
			}
			if err := p.runner.Run(ctx, v, s); err != nil {
				return nil, err
			}
		case Dispatch:
			targets = append(targets, v.Target)
		case DispatchGroup:
			targets = append(targets, v.Targets...)
		}
	}

	if len(targets) == 0 {
		return &Result{}, nil
	}
	return p.dispatch.Dispatch(ctx, s, DispatchSpec{Targets: targets})
}
