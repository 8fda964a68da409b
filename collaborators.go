package signal

import (
	"context"
	"sync"
)

// Endpoint is the external collaborator a "pid"/direct dispatch target
// resolves to: a single addressable destination for a Signal. Concrete
// implementations (a local process mailbox, an HTTP callback, a gRPC
// stream) live outside this package (spec §1 "Out of scope: external
// collaborators").
type Endpoint interface {
	Send(ctx context.Context, s *Signal) error
}

// ProcessRegistry resolves a symbolic name to an Endpoint for the "named"
// adapter.
type ProcessRegistry interface {
	Lookup(name string) (Endpoint, bool)
}

// Bus is the external collaborator a "bus" dispatch target enqueues onto.
type Bus interface {
	Enqueue(ctx context.Context, stream string, s *Signal) error
}

// BusRegistry resolves a bus reference to a Bus for the "bus" adapter.
type BusRegistry interface {
	Lookup(name string) (Bus, bool)
}

// PubSubBroker is the external collaborator a "pubsub" dispatch target
// publishes to.
type PubSubBroker interface {
	Publish(ctx context.Context, topic string, s *Signal) error
}

// PubSubRegistry resolves a broker reference to a PubSubBroker for the
// "pubsub" adapter.
type PubSubRegistry interface {
	Lookup(name string) (PubSubBroker, bool)
}

// LogSink is the external collaborator the "logger" adapter emits through.
// The package ships one concrete implementation backed by zerolog (see
// adapters_builtin.go); callers may supply their own.
type LogSink interface {
	Log(ctx context.Context, level, msg string, s *Signal)
}

// LogSinkFunc adapts a function to LogSink.
type LogSinkFunc func(ctx context.Context, level, msg string, s *Signal)

func (f LogSinkFunc) Log(ctx context.Context, level, msg string, s *Signal) {
	f(ctx, level, msg, s)
}

// InstructionRunner executes Instruction handlers produced by routing.
// Instruction execution semantics are themselves out of scope (spec §1);
// this is the narrow seam a Pipeline calls into.
type InstructionRunner interface {
	Run(ctx context.Context, instr Instruction, s *Signal) error
}

// InstructionRunnerFunc adapts a function to InstructionRunner.
type InstructionRunnerFunc func(ctx context.Context, instr Instruction, s *Signal) error

func (f InstructionRunnerFunc) Run(ctx context.Context, instr Instruction, s *Signal) error {
	return f(ctx, instr, s)
}

// MemoryEndpoint is an in-memory Endpoint that records every Signal it
// receives, for tests and doc examples.
type MemoryEndpoint struct {
	mu       sync.Mutex
	received []*Signal
}

func NewMemoryEndpoint() *MemoryEndpoint {
	return &MemoryEndpoint{}
}

func (e *MemoryEndpoint) Send(_ context.Context, s *Signal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.received = append(e.received, s)
	return nil
}

// Received returns every Signal sent to this endpoint so far.
func (e *MemoryEndpoint) Received() []*Signal {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Signal, len(e.received))
	copy(out, e.received)
	return out
}

// MemoryProcessRegistry is an in-memory ProcessRegistry backed by a plain
// map, populated via Register.
type MemoryProcessRegistry struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
}

func NewMemoryProcessRegistry() *MemoryProcessRegistry {
	return &MemoryProcessRegistry{endpoints: make(map[string]Endpoint)}
}

func (r *MemoryProcessRegistry) Register(name string, e Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints[name] = e
}

func (r *MemoryProcessRegistry) Lookup(name string) (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.endpoints[name]
	return e, ok
}

// MemoryBus is an in-memory Bus: each stream is an ordered, in-memory
// queue of received Signals.
type MemoryBus struct {
	mu      sync.Mutex
	streams map[string][]*Signal
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{streams: make(map[string][]*Signal)}
}

func (b *MemoryBus) Enqueue(_ context.Context, stream string, s *Signal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streams[stream] = append(b.streams[stream], s)
	return nil
}

// Stream returns the Signals enqueued onto stream so far, in order.
func (b *MemoryBus) Stream(stream string) []*Signal {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Signal, len(b.streams[stream]))
	copy(out, b.streams[stream])
	return out
}

// MemoryBusRegistry resolves bus references to MemoryBus instances.
type MemoryBusRegistry struct {
	mu    sync.RWMutex
	buses map[string]Bus
}

func NewMemoryBusRegistry() *MemoryBusRegistry {
	return &MemoryBusRegistry{buses: make(map[string]Bus)}
}

func (r *MemoryBusRegistry) Register(name string, b Bus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buses[name] = b
}

func (r *MemoryBusRegistry) Lookup(name string) (Bus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.buses[name]
	return b, ok
}

// MemoryPubSubBroker is an in-memory PubSubBroker: each topic records
// every Signal published to it.
type MemoryPubSubBroker struct {
	mu     sync.Mutex
	topics map[string][]*Signal
}

func NewMemoryPubSubBroker() *MemoryPubSubBroker {
	return &MemoryPubSubBroker{topics: make(map[string][]*Signal)}
}

func (b *MemoryPubSubBroker) Publish(_ context.Context, topic string, s *Signal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics[topic] = append(b.topics[topic], s)
	return nil
}

// Topic returns the Signals published to topic so far, in order.
func (b *MemoryPubSubBroker) Topic(topic string) []*Signal {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Signal, len(b.topics[topic]))
	copy(out, b.topics[topic])
	return out
}

// MemoryPubSubRegistry resolves broker references to MemoryPubSubBroker
// instances.
type MemoryPubSubRegistry struct {
	mu      sync.RWMutex
	brokers map[string]PubSubBroker
}

func NewMemoryPubSubRegistry() *MemoryPubSubRegistry {
	return &MemoryPubSubRegistry{brokers: make(map[string]PubSubBroker)}
}

func (r *MemoryPubSubRegistry) Register(name string, b PubSubBroker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brokers[name] = b
}

func (r *MemoryPubSubRegistry) Lookup(name string) (PubSubBroker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.brokers[name]
	return b, ok
}
