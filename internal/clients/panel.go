// Package clients holds the state of the client registry panel: the cached
// client list, the draft form, and the loading and error flags.
//
// A Panel is owned by a single event loop. Begin* and Apply* must be called
// from that loop; Run* performs the network call and may run anywhere.
package clients

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jask/legalhub/internal/registry"
)

// Registry is the remote API the panel synchronises with.
type Registry interface {
	List(ctx context.Context, caller registry.Caller) ([]registry.ClientRecord, error)
	Create(ctx context.Context, caller registry.Caller, draft registry.Draft) (registry.ClientRecord, error)
}

// Op is an operation kind that may be in flight.
type Op int

const (
	OpList Op = iota
	OpCreate
)

func (o Op) String() string {
	switch o {
	case OpList:
		return "list"
	case OpCreate:
		return "create"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

var (
	// ErrBusy rejects a call while another request is outstanding.
	ErrBusy = errors.New("a request of this kind is already in progress")
	// ErrNotMounted rejects calls on a panel that is not mounted.
	ErrNotMounted = errors.New("client panel is not mounted")
)

// IncompleteDraftError reports required draft fields left blank. It is a
// form-level check; the server still validates.
type IncompleteDraftError struct {
	Fields []string
}

func (e *IncompleteDraftError) Error() string {
	return "required: " + strings.Join(e.Fields, ", ")
}

// Ticket identifies one in-flight request.
type Ticket struct {
	op     Op
	seq    uint64
	caller registry.Caller
	draft  registry.Draft
	ctx    context.Context
	cancel context.CancelFunc
}

// Op returns the operation kind the ticket was issued for.
func (t Ticket) Op() Op { return t.op }

// ListResult is the outcome of a list request.
type ListResult struct {
	Ticket  Ticket
	Records []registry.ClientRecord
	Err     error
}

// CreateResult is the outcome of a create request.
type CreateResult struct {
	Ticket Ticket
	Record registry.ClientRecord
	Err    error
}

// Panel is the client registry state machine.
type Panel struct {
	api     Registry
	caller  registry.Caller
	timeout time.Duration
	logger  *zap.Logger

	life     context.Context
	stop     context.CancelFunc
	mounted  bool
	seq      uint64
	inflight map[Op]uint64

	records []registry.ClientRecord
	draft   registry.Draft
	errMsg  string
}

// New returns an unmounted panel. A zero timeout means requests only end
// when the server answers or the panel is unmounted.
func New(api Registry, caller registry.Caller, timeout time.Duration, logger *zap.Logger) *Panel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel{
		api:      api,
		caller:   caller,
		timeout:  timeout,
		logger:   logger,
		inflight: map[Op]uint64{},
	}
}

// Mount starts a fresh panel lifetime under parent. State from a previous
// mount is dropped.
func (p *Panel) Mount(parent context.Context) {
	if p.mounted {
		p.Unmount()
	}
	p.life, p.stop = context.WithCancel(parent)
	p.mounted = true
	p.records = nil
	p.draft = registry.Draft{}
	p.errMsg = ""
	clear(p.inflight)
}

// Unmount cancels every outstanding request. Their results are discarded
// when they arrive.
func (p *Panel) Unmount() {
	if !p.mounted {
		return
	}
	p.stop()
	p.mounted = false
	clear(p.inflight)
}

// Mounted reports whether the panel has a live lifetime.
func (p *Panel) Mounted() bool { return p.mounted }

// Caller returns the identity attached to every request.
func (p *Panel) Caller() registry.Caller { return p.caller }

// Loading reports whether any request is outstanding.
func (p *Panel) Loading() bool { return len(p.inflight) > 0 }

// InFlight reports whether a request of kind op is outstanding.
func (p *Panel) InFlight(op Op) bool {
	_, ok := p.inflight[op]
	return ok
}

// Err returns the message shown in the error banner, or "".
func (p *Panel) Err() string { return p.errMsg }

// Records returns a copy of the cached list in display order.
func (p *Panel) Records() []registry.ClientRecord { return slices.Clone(p.records) }

// Len returns the number of cached records.
func (p *Panel) Len() int { return len(p.records) }

// Draft returns the current form contents.
func (p *Panel) Draft() registry.Draft { return p.draft }

// SetDraft replaces the form contents.
func (p *Panel) SetDraft(d registry.Draft) { p.draft = d }

// SetField updates one form field by its JSON name.
func (p *Panel) SetField(name, value string) error {
	switch name {
	case "full_name":
		p.draft.FullName = value
	case "email":
		p.draft.Email = value
	case "phone":
		p.draft.Phone = value
	default:
		return fmt.Errorf("unknown draft field %q", name)
	}
	return nil
}

func (p *Panel) begin(op Op) (Ticket, error) {
	if !p.mounted {
		return Ticket{}, ErrNotMounted
	}
	// a list replaces the whole cache, so it must not overlap a create
	if p.Loading() {
		p.logger.Debug("request rejected, another in flight", zap.Stringer("op", op))
		return Ticket{}, ErrBusy
	}
	p.seq++
	t := Ticket{op: op, seq: p.seq, caller: p.caller}
	if p.timeout > 0 {
		t.ctx, t.cancel = context.WithTimeout(p.life, p.timeout)
	} else {
		t.ctx, t.cancel = context.WithCancel(p.life)
	}
	p.inflight[op] = t.seq
	p.errMsg = ""
	return t, nil
}

// current reports whether t is still the outstanding request of its kind in
// this lifetime, and retires it either way.
func (p *Panel) current(t Ticket) bool {
	if t.cancel != nil {
		t.cancel()
	}
	if seq, ok := p.inflight[t.op]; !ok || seq != t.seq {
		p.logger.Debug("discarding stale result", zap.Stringer("op", t.op), zap.Uint64("seq", t.seq))
		return false
	}
	delete(p.inflight, t.op)
	return true
}

// BeginList marks a list request as started: loading is set and the error
// banner is cleared.
func (p *Panel) BeginList() (Ticket, error) {
	return p.begin(OpList)
}

// RunList performs the list request for t.
func (p *Panel) RunList(t Ticket) ListResult {
	records, err := p.api.List(t.ctx, t.caller)
	return ListResult{Ticket: t, Records: records, Err: err}
}

// ApplyList reconciles a list result. On success the cached list is replaced
// wholesale; on failure it is left untouched and the banner shows the error.
// It returns false when the result was stale and discarded.
func (p *Panel) ApplyList(res ListResult) bool {
	if !p.current(res.Ticket) {
		return false
	}
	if res.Err != nil {
		p.errMsg = res.Err.Error()
		p.logger.Warn("list clients failed", zap.Error(res.Err))
		return true
	}
	p.records = slices.Clone(res.Records)
	return true
}

// BeginCreate submits the current draft. Blank required fields are rejected
// before any state changes.
func (p *Panel) BeginCreate() (Ticket, error) {
	if missing := p.draft.Missing(); len(missing) > 0 {
		return Ticket{}, &IncompleteDraftError{Fields: missing}
	}
	t, err := p.begin(OpCreate)
	if err != nil {
		return Ticket{}, err
	}
	t.draft = p.draft
	return t, nil
}

// RunCreate performs the create request for t.
func (p *Panel) RunCreate(t Ticket) CreateResult {
	rec, err := p.api.Create(t.ctx, t.caller, t.draft)
	return CreateResult{Ticket: t, Record: rec, Err: err}
}

// ApplyCreate reconciles a create result. On success the server's record is
// appended and the draft reset, unless it was edited while the request was in
// flight; on failure the draft is kept for a retry.
func (p *Panel) ApplyCreate(res CreateResult) bool {
	if !p.current(res.Ticket) {
		return false
	}
	if res.Err != nil {
		p.errMsg = res.Err.Error()
		p.logger.Warn("create client failed", zap.Error(res.Err))
		return true
	}
	p.records = append(p.records, res.Record)
	if p.draft == res.Ticket.draft {
		p.draft = registry.Draft{}
	}
	return true
}

// List runs a full list cycle synchronously and returns the operation error.
func (p *Panel) List() error {
	t, err := p.BeginList()
	if err != nil {
		return err
	}
	res := p.RunList(t)
	p.ApplyList(res)
	return res.Err
}

// Create replaces the draft with d and runs a full create cycle synchronously.
func (p *Panel) Create(d registry.Draft) error {
	p.draft = d
	t, err := p.BeginCreate()
	if err != nil {
		return err
	}
	res := p.RunCreate(t)
	p.ApplyCreate(res)
	return res.Err
}
