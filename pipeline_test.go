package signal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type PipelineSuite struct {
	suite.Suite
	registry  *Registry
	endpoint  *MemoryEndpoint
	processes *MemoryProcessRegistry
}

func (s *PipelineSuite) SetupTest() {
	s.processes = NewMemoryProcessRegistry()
	s.endpoint = NewMemoryEndpoint()
	s.processes.Register("worker-1", s.endpoint)
	s.registry = NewRegistry(Collaborators{Processes: s.processes})
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) sig(typ string) *Signal {
	return Must(Fields{"type": typ, "source": "svc"})
}

func (s *PipelineSuite) router(routes ...*Route) *Router {
	r, err := New(routes)
	s.Require().NoError(err)
	return r
}

func (s *PipelineSuite) route(pattern string, h Handler, opts ...RouteOption) *Route {
	r, err := NewRoute(pattern, h, opts...)
	s.Require().NoError(err)
	return r
}

func (s *PipelineSuite) TestHandle_RoutesDispatchThroughDispatcher() {
	router := s.router(s.route("order.created", Dispatch{Target: Target{Tag: "pid", Options: map[string]any{"target": "worker-1"}}}))

	pipeline := NewPipeline(router, NewDispatcher(s.registry), nil)
	result, err := pipeline.Handle(context.Background(), s.sig("order.created"))

	s.Require().NoError(err)
	s.Assert().False(result.Failed())
	s.Assert().Len(s.endpoint.Received(), 1)
}

func (s *PipelineSuite) TestHandle_RunsInstructionsSequentially() {
	var ran []string
	runner := InstructionRunnerFunc(func(ctx context.Context, instr Instruction, sig *Signal) error {
		ran = append(ran, instr.Action)
		return nil
	})

	router := s.router(
		s.route("order.created", Instruction{Action: "validate"}, WithPriority(10)),
		s.route("order.created", Instruction{Action: "persist"}, WithPriority(5)),
	)

	pipeline := NewPipeline(router, NewDispatcher(s.registry), runner)
	result, err := pipeline.Handle(context.Background(), s.sig("order.created"))

	s.Require().NoError(err)
	s.Assert().Equal([]string{"validate", "persist"}, ran)
	s.Assert().Empty(result.Deliveries)
}

func (s *PipelineSuite) TestHandle_InstructionFailureAbortsRemainingWork() {
	var ran []string
	boom := errors.New("validation failed")
	runner := InstructionRunnerFunc(func(ctx context.Context, instr Instruction, sig *Signal) error {
		ran = append(ran, instr.Action)
		if instr.Action == "validate" {
			return boom
		}
		return nil
	})

	router := s.router(
		s.route("order.created", Instruction{Action: "validate"}, WithPriority(10)),
		s.route("order.created", Instruction{Action: "persist"}, WithPriority(5)),
		s.route("order.created", Dispatch{Target: Target{Tag: "pid", Options: map[string]any{"target": "worker-1"}}}, WithPriority(1)),
	)

	pipeline := NewPipeline(router, NewDispatcher(s.registry), runner)
	_, err := pipeline.Handle(context.Background(), s.sig("order.created"))

	s.Require().ErrorIs(err, boom)
	s.Assert().Equal([]string{"validate"}, ran, "persist must not run after validate fails")
	s.Assert().Empty(s.endpoint.Received(), "dispatch must not run after an instruction fails")
}

func (s *PipelineSuite) TestHandle_MissingRunnerIsRoutingError() {
	router := s.router(s.route("order.created", Instruction{Action: "validate"}))

	pipeline := NewPipeline(router, NewDispatcher(s.registry), nil)
	_, err := pipeline.Handle(context.Background(), s.sig("order.created"))

	s.Require().Error(err)
	s.Assert().Equal(KindRoutingError, ErrorKind(err))
}

func (s *PipelineSuite) TestHandle_GroupFlattensIntoOneDispatchSpec() {
	group := DispatchGroup{Targets: []Target{
		{Tag: "pid", Options: map[string]any{"target": "worker-1"}},
		{Tag: "console"},
	}}
	router := s.router(s.route("order.created", group))

	pipeline := NewPipeline(router, NewDispatcher(s.registry), nil)
	result, err := pipeline.Handle(context.Background(), s.sig("order.created"))

	s.Require().NoError(err)
	s.Require().Len(result.Deliveries, 2)
	s.Assert().False(result.Failed())
}

func (s *PipelineSuite) TestHandle_NoMatchPropagatesRoutingError() {
	router := s.router()
	pipeline := NewPipeline(router, NewDispatcher(s.registry), nil)

	_, err := pipeline.Handle(context.Background(), s.sig("order.created"))
	s.Require().Error(err)
	s.Assert().Equal(KindRoutingError, ErrorKind(err))
}
