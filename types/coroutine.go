package types

import "fmt"

// CoStatus is a coroutine's lifecycle state
type CoStatus int

const (
	CoSuspended CoStatus = iota // created or parked on a yield
	CoRunning                   // currently executing
	CoNormal                    // resumed another coroutine and is waiting on it
	CoDead                      // returned or faulted
)

var coStatusNames = [...]string{
	CoSuspended: "suspended",
	CoRunning:   "running",
	CoNormal:    "normal",
	CoDead:      "dead",
}

func (s CoStatus) String() string { return coStatusNames[s] }

// coEvent is what a coroutine hands its driver: a yield, or the final
// return or fault.
type coEvent struct {
	vals  []Value
	fault Value
	final bool
}

// Coroutine is an explicit suspended computation. Its body runs on its own
// goroutine, parked on the resume channel between activations; the driver
// blocks on the event channel until the body yields, returns or faults. A
// coroutine abandoned while suspended keeps its goroutine parked until the
// process ends.
type Coroutine struct {
	Fn      Value
	status  CoStatus
	started bool
	resume  chan []Value
	events  chan coEvent
}

// NewCoroutine creates a suspended coroutine over a function value
func NewCoroutine(fn Value) *Coroutine {
	return &Coroutine{
		Fn:     fn,
		status: CoSuspended,
		resume: make(chan []Value),
		events: make(chan coEvent),
	}
}

func (co *Coroutine) Type() TypeCode { return TypeThread }
func (co *Coroutine) String() string { return fmt.Sprintf("thread: %p", co) }
func (co *Coroutine) Truthy() bool   { return true }

func (co *Coroutine) Equal(o Value) bool {
	oc, ok := o.(*Coroutine)
	return ok && oc == co
}

// Status returns the lifecycle state
func (co *Coroutine) Status() CoStatus { return co.status }

// SetStatus adjusts the lifecycle state; the resume driver uses it to mark
// a resuming coroutine normal while its child runs.
func (co *Coroutine) SetStatus(s CoStatus) { co.status = s }

// Resume transfers args into the coroutine and blocks until its next yield,
// return or fault. On the first resume the body is launched through run,
// which receives the args as the function call's arguments. The protocol
// result is (values, nil, true) for a yield or return and (nil, fault,
// false) for a fault or an invalid resume.
func (co *Coroutine) Resume(args []Value, run func([]Value) Result) ([]Value, Value, bool) {
	switch co.status {
	case CoDead:
		return nil, NewStr("cannot resume dead coroutine"), false
	case CoRunning, CoNormal:
		return nil, NewStr("cannot resume non-suspended coroutine"), false
	}
	co.status = CoRunning
	if !co.started {
		co.started = true
		go func() {
			res := run(args)
			ev := coEvent{final: true}
			if res.Flow == FlowError {
				ev.fault = res.Err
			} else {
				ev.vals = res.Vals
			}
			co.events <- ev
		}()
	} else {
		co.resume <- args
	}
	ev := <-co.events
	if ev.final {
		co.status = CoDead
		if ev.fault != nil {
			return nil, ev.fault, false
		}
		return ev.vals, nil, true
	}
	co.status = CoSuspended
	return ev.vals, nil, true
}

// YieldFrom parks the calling goroutine until the next resume, handing vals
// to the driver. It must run on the coroutine's own goroutine.
func (co *Coroutine) YieldFrom(vals []Value) []Value {
	co.events <- coEvent{vals: vals}
	return <-co.resume
}
