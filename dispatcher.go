package signal

import (
	"context"
	"sync"
)

// Result is the aggregate outcome of dispatching a Signal to one or more
// Targets: one DeliveryResult per Target, in the order routing produced
// them (spec §4.4/§4.5 "best-effort fan-out").
type Result struct {
	Deliveries []DeliveryResult
}

// DeliveryResult is the per-Target outcome of a dispatch attempt.
type DeliveryResult struct {
	Target Target
	Err    error
}

// Failed reports whether any delivery in the Result failed.
func (r *Result) Failed() bool {
	for _, d := range r.Deliveries {
		if d.Err != nil {
			return true
		}
	}
	return false
}

// Errors returns every non-nil delivery error, in delivery order.
func (r *Result) Errors() []error {
	var errs []error
	for _, d := range r.Deliveries {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}
	return errs
}

// OnDeliverFunc is called once per Target immediately before Deliver runs.
type OnDeliverFunc func(ctx context.Context, s *Signal, target Target)

// OnDeliverSuccessFunc is called once per Target after a successful Deliver.
type OnDeliverSuccessFunc func(ctx context.Context, s *Signal, target Target)

// OnDeliverFailureFunc is called once per Target after a failed Deliver.
type OnDeliverFailureFunc func(ctx context.Context, s *Signal, target Target, err error)

// DispatcherOption configures a Dispatcher at construction, following the
// same functional-option shape as SignalOption/RouterOption.
type DispatcherOption func(*Dispatcher)

// WithOnDeliver registers a hook called before each per-Target delivery
// attempt.
func WithOnDeliver(fn OnDeliverFunc) DispatcherOption {
	return func(d *Dispatcher) { d.onDeliver = append(d.onDeliver, fn) }
}

// WithOnDeliverSuccess registers a hook called after each successful
// per-Target delivery.
func WithOnDeliverSuccess(fn OnDeliverSuccessFunc) DispatcherOption {
	return func(d *Dispatcher) { d.onDeliverSuccess = append(d.onDeliverSuccess, fn) }
}

// WithOnDeliverFailure registers a hook called after each failed per-Target
// delivery.
func WithOnDeliverFailure(fn OnDeliverFailureFunc) DispatcherOption {
	return func(d *Dispatcher) { d.onDeliverFailure = append(d.onDeliverFailure, fn) }
}

// Dispatcher resolves Dispatch/DispatchGroup handlers against an Adapter
// Registry and delivers a Signal to every Target independently: one
// Target's failure never prevents another's delivery (spec §4.4 "best-
// effort fan-out", §4.5). Dispatcher is stateless aside from its Registry
// and hooks, and is safe for concurrent use.
type Dispatcher struct {
	registry *Registry

	onDeliver        []OnDeliverFunc
	onDeliverSuccess []OnDeliverSuccessFunc
	onDeliverFailure []OnDeliverFailureFunc
}

// NewDispatcher builds a Dispatcher against registry.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{registry: registry}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers s to every Target in spec concurrently, one goroutine
// per Target, and waits for all of them (spec §4.4/§4.5). Validate runs
// synchronously per Target before Deliver; an unregistered tag or a
// Validate failure is recorded as that Target's error without starting a
// goroutine for it. A panic inside Deliver is recovered and reported as a
// routing_error for that Target alone, so one misbehaving adapter cannot
// take down the others' delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, s *Signal, spec DispatchSpec) (*Result, error) {
	if len(spec.Targets) == 0 {
		return &Result{}, nil
	}

	deliveries := make([]DeliveryResult, len(spec.Targets))
	var wg sync.WaitGroup

	for i, target := range spec.Targets {
		i, target := i, target

		adapter, ok := d.registry.Lookup(target.Tag)
		if !ok {
			err := &DispatchError{Tag: target.Tag, Reason: newRoutingErrorf("no adapter registered for tag %q", target.Tag)}
			deliveries[i] = DeliveryResult{Target: target, Err: err}
			d.callOnDeliverFailure(ctx, s, target, err)
			continue
		}

		options, err := adapter.Validate(target.Options)
		if err != nil {
			wrapped := &DispatchError{Tag: target.Tag, Reason: err}
			deliveries[i] = DeliveryResult{Target: target, Err: wrapped}
			d.callOnDeliverFailure(ctx, s, target, wrapped)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			d.deliverOne(ctx, adapter, s, target, options, deliveries, i)
		}()
	}

	wg.Wait()
	return &Result{Deliveries: deliveries}, nil
}

func (d *Dispatcher) deliverOne(ctx context.Context, adapter Adapter, s *Signal, target Target, options map[string]any, deliveries []DeliveryResult, i int) {
	d.callOnDeliver(ctx, s, target)

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = newRoutingErrorf("adapter %q panicked: %v", target.Tag, p)
			}
		}()
		return adapter.Deliver(ctx, s, options)
	}()

	deliveries[i] = DeliveryResult{Target: target, Err: err}
	if err != nil {
		d.callOnDeliverFailure(ctx, s, target, err)
	} else {
		d.callOnDeliverSuccess(ctx, s, target)
	}
}

func (d *Dispatcher) callOnDeliver(ctx context.Context, s *Signal, target Target) {
	for _, fn := range d.onDeliver {
		fn(ctx, s, target)
	}
}

func (d *Dispatcher) callOnDeliverSuccess(ctx context.Context, s *Signal, target Target) {
	for _, fn := range d.onDeliverSuccess {
		fn(ctx, s, target)
	}
}

func (d *Dispatcher) callOnDeliverFailure(ctx context.Context, s *Signal, target Target, err error) {
	for _, fn := range d.onDeliverFailure {
		fn(ctx, s, target, err)
	}
}
