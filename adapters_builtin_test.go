package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AdaptersSuite struct {
	suite.Suite
	processes *MemoryProcessRegistry
	buses     *MemoryBusRegistry
	pubsub    *MemoryPubSubRegistry
	registry  *Registry
}

func (s *AdaptersSuite) SetupTest() {
	s.processes = NewMemoryProcessRegistry()
	s.buses = NewMemoryBusRegistry()
	s.pubsub = NewMemoryPubSubRegistry()
	s.registry = NewRegistry(Collaborators{Processes: s.processes, Buses: s.buses, PubSub: s.pubsub})
}

func TestAdaptersSuite(t *testing.T) {
	suite.Run(t, new(AdaptersSuite))
}

func (s *AdaptersSuite) TestPid_DeliversSync() {
	endpoint := NewMemoryEndpoint()
	s.processes.Register("worker-1", endpoint)

	adapter, _ := s.registry.Lookup("pid")
	options, err := adapter.Validate(map[string]any{"target": "worker-1"})
	s.Require().NoError(err)
	s.Assert().Equal("sync", options["delivery_mode"])

	sig := Must(Fields{"type": "x", "source": "y"})
	s.Require().NoError(adapter.Deliver(context.Background(), sig, options))
	s.Assert().Len(endpoint.Received(), 1)
}

func (s *AdaptersSuite) TestPid_DeliversAsync() {
	endpoint := NewMemoryEndpoint()
	s.processes.Register("worker-1", endpoint)

	adapter, _ := s.registry.Lookup("direct")
	options, err := adapter.Validate(map[string]any{"target": "worker-1", "delivery_mode": "async"})
	s.Require().NoError(err)

	sig := Must(Fields{"type": "x", "source": "y"})
	s.Require().NoError(adapter.Deliver(context.Background(), sig, options))

	s.Require().Eventually(func() bool {
		return len(endpoint.Received()) == 1
	}, time.Second, time.Millisecond)
}

func (s *AdaptersSuite) TestPid_ValidateRejectsMissingTarget() {
	adapter, _ := s.registry.Lookup("pid")
	_, err := adapter.Validate(map[string]any{})
	s.Require().Error(err)
}

func (s *AdaptersSuite) TestPid_ValidateRejectsUnknownOption() {
	adapter, _ := s.registry.Lookup("pid")
	_, err := adapter.Validate(map[string]any{"target": "x", "bogus": "y"})
	s.Require().Error(err)
	s.Assert().Contains(err.Error(), "unrecognized option")
}

func (s *AdaptersSuite) TestPid_DeliverFailsProcessNotFound() {
	adapter, _ := s.registry.Lookup("pid")
	options, err := adapter.Validate(map[string]any{"target": "missing"})
	s.Require().NoError(err)

	sig := Must(Fields{"type": "x", "source": "y"})
	err = adapter.Deliver(context.Background(), sig, options)
	s.Require().Error(err)
	s.Assert().Equal(KindProcessNotFound, ErrorKind(err))
}

func (s *AdaptersSuite) TestNamed_ResolvesThenDelivers() {
	endpoint := NewMemoryEndpoint()
	s.processes.Register("service-a", endpoint)

	adapter, _ := s.registry.Lookup("named")
	options, err := adapter.Validate(map[string]any{"target": "service-a"})
	s.Require().NoError(err)

	sig := Must(Fields{"type": "x", "source": "y"})
	s.Require().NoError(adapter.Deliver(context.Background(), sig, options))
	s.Assert().Len(endpoint.Received(), 1)
}

func (s *AdaptersSuite) TestBus_DefaultsStreamAndEnqueues() {
	bus := NewMemoryBus()
	s.buses.Register("events", bus)

	adapter, _ := s.registry.Lookup("bus")
	options, err := adapter.Validate(map[string]any{"target": "events"})
	s.Require().NoError(err)
	s.Assert().Equal(defaultStream, options["stream"])

	sig := Must(Fields{"type": "x", "source": "y"})
	s.Require().NoError(adapter.Deliver(context.Background(), sig, options))
	s.Assert().Len(bus.Stream(defaultStream), 1)
}

func (s *AdaptersSuite) TestBus_DeliverFailsBusNotFound() {
	adapter, _ := s.registry.Lookup("bus")
	options, err := adapter.Validate(map[string]any{"target": "missing"})
	s.Require().NoError(err)

	sig := Must(Fields{"type": "x", "source": "y"})
	err = adapter.Deliver(context.Background(), sig, options)
	s.Require().Error(err)
	s.Assert().Equal(KindBusNotFound, ErrorKind(err))
}

func (s *AdaptersSuite) TestPubSub_PublishesToTopic() {
	broker := NewMemoryPubSubBroker()
	s.pubsub.Register("broker-1", broker)

	adapter, _ := s.registry.Lookup("pubsub")
	options, err := adapter.Validate(map[string]any{"target": "broker-1", "topic": "events.created"})
	s.Require().NoError(err)

	sig := Must(Fields{"type": "x", "source": "y"})
	s.Require().NoError(adapter.Deliver(context.Background(), sig, options))
	s.Assert().Len(broker.Topic("events.created"), 1)
}

func (s *AdaptersSuite) TestPubSub_ValidateRequiresTopic() {
	adapter, _ := s.registry.Lookup("pubsub")
	_, err := adapter.Validate(map[string]any{"target": "broker-1"})
	s.Require().Error(err)
}

func (s *AdaptersSuite) TestLogger_ValidatesLevelEnum() {
	adapter, _ := s.registry.Lookup("logger")
	_, err := adapter.Validate(map[string]any{"level": "trace"})
	s.Require().Error(err)

	_, err = adapter.Validate(map[string]any{"level": "debug"})
	s.Require().NoError(err)
}

func (s *AdaptersSuite) TestLogger_DeliversThroughCustomSink() {
	var gotLevel, gotMsg string
	sink := LogSinkFunc(func(ctx context.Context, level, msg string, sig *Signal) {
		gotLevel, gotMsg = level, msg
	})
	registry := NewRegistry(Collaborators{Logs: sink})
	adapter, _ := registry.Lookup("logger")

	options, err := adapter.Validate(map[string]any{"level": "warn"})
	s.Require().NoError(err)

	sig := Must(Fields{"type": "user.created", "source": "svc"})
	s.Require().NoError(adapter.Deliver(context.Background(), sig, options))
	s.Assert().Equal("warn", gotLevel)
	s.Assert().Contains(gotMsg, sig.ID)
}

func (s *AdaptersSuite) TestConsole_RejectsAnyOptions() {
	adapter, _ := s.registry.Lookup("console")
	_, err := adapter.Validate(map[string]any{"anything": true})
	s.Require().Error(err)

	_, err = adapter.Validate(map[string]any{})
	s.Require().NoError(err)
}

func (s *AdaptersSuite) TestConsole_DeliverNeverFails() {
	adapter, _ := s.registry.Lookup("console")
	sig := Must(Fields{"type": "x", "source": "y"})
	s.Require().NoError(adapter.Deliver(context.Background(), sig, map[string]any{}))
}

func (s *AdaptersSuite) TestNoop_AcceptsAnythingAndDiscards() {
	adapter, _ := s.registry.Lookup("noop")
	_, err := adapter.Validate(map[string]any{"whatever": 1, "nested": map[string]any{"a": 1}})
	s.Require().NoError(err)

	sig := Must(Fields{"type": "x", "source": "y"})
	s.Require().NoError(adapter.Deliver(context.Background(), sig, map[string]any{"whatever": 1}))
}
