package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/david/voluntrack/internal/ai"
	"github.com/david/voluntrack/internal/metrics"
	"github.com/david/voluntrack/internal/models"
)

type State string

const (
	StateIdle          State = "idle"
	StateFetching      State = "fetching"
	StateSuccess       State = "success"
	StateFallbackError State = "fallback_error"
)

const DefaultTimeout = 30 * time.Second

// Fallback is the bundled catalogue shown when generation fails or is disabled.
type Fallback struct {
	Organizations []models.Organization
	Opportunities []models.Opportunity
}

type Options struct {
	// Enabled switches live generation on. When false every request commits the fallback.
	Enabled bool
	Timeout time.Duration
	Now     func() time.Time
}

// Snapshot is a consistent read of the orchestrator state.
type Snapshot struct {
	Seq           uint64                `json:"seq"`
	State         State                 `json:"state"`
	Loading       bool                  `json:"isLoading"`
	Opportunities []models.Opportunity  `json:"opportunities"`
	Organizations []models.Organization `json:"organizations"`
	Error         string                `json:"error,omitempty"`
	ErrorKind     ErrorKind             `json:"errorKind,omitempty"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

type batch struct {
	opps []models.Opportunity
	orgs []models.Organization
	err  error
}

// Orchestrator runs ingestion batches and owns the current opportunity and
// organization collections. Batches may overlap; only the batch carrying the
// most recently issued sequence number is committed.
type Orchestrator struct {
	gen      ai.Generator
	fallback Fallback
	norm     *Normalizer
	logger   *zap.Logger
	opts     Options

	mu        sync.RWMutex
	issued    uint64
	committed uint64
	state     State
	opps      []models.Opportunity
	orgs      []models.Organization
	err       error
	updatedAt time.Time

	wg sync.WaitGroup
}

func NewOrchestrator(gen ai.Generator, fallback Fallback, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		gen:      gen,
		fallback: fallback,
		norm:     NewNormalizer(logger),
		logger:   logger,
		opts:     opts,
		state:    StateIdle,
	}
}

// Request starts a batch for q in the background and returns its sequence
// number. The batch outlives ctx cancellation; only ctx values are kept.
func (o *Orchestrator) Request(ctx context.Context, q models.Query) uint64 {
	seq := o.begin()
	ctx = context.WithoutCancel(ctx)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.commit(seq, o.fetch(ctx, q))
	}()
	return seq
}

// Refresh runs a batch for q synchronously and returns the resulting snapshot.
// If a newer request was issued meanwhile, the snapshot reflects that one.
func (o *Orchestrator) Refresh(ctx context.Context, q models.Query) Snapshot {
	seq := o.begin()
	o.commit(seq, o.fetch(ctx, q))
	return o.Snapshot()
}

// Wait blocks until every background batch has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) begin() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.issued++
	o.state = StateFetching
	o.err = nil
	return o.issued
}

func (o *Orchestrator) commit(seq uint64, b batch) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.issued {
		metrics.StaleResultsTotal.Inc()
		o.logger.Debug("discarding superseded ingestion result",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", o.issued))
		return false
	}

	o.opps = b.opps
	o.orgs = b.orgs
	o.err = b.err
	o.committed = seq
	o.updatedAt = o.opts.Now().UTC()
	if b.err != nil {
		o.state = StateFallbackError
		metrics.RecordIngestion("fallback", string(KindOf(b.err)))
		o.logger.Warn("ingestion fell back to bundled data",
			zap.Uint64("seq", seq),
			zap.String("kind", string(KindOf(b.err))),
			zap.Error(b.err))
	} else {
		o.state = StateSuccess
		metrics.RecordIngestion("success", "")
		o.logger.Info("ingestion batch committed",
			zap.Uint64("seq", seq),
			zap.Int("opportunities", len(b.opps)),
			zap.Int("organizations", len(b.orgs)))
	}
	return true
}

func (o *Orchestrator) fetch(ctx context.Context, q models.Query) batch {
	if !o.opts.Enabled || o.gen == nil {
		return o.fallbackBatch(ErrDisabled)
	}

	prompt := ai.BuildOpportunityPrompt(q, o.opts.Now().Year())

	gctx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	start := time.Now()
	text, err := o.gen.GenerateText(gctx, prompt)
	metrics.RecordGeneration("opportunities", time.Since(start), err)
	if err != nil {
		if errors.Is(gctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("no response within %s: %w", o.opts.Timeout, err)
		}
		return o.fallbackBatch(providerError(err))
	}

	records, skipped, err := ParseRawRecords(text)
	if err != nil {
		return o.fallbackBatch(err)
	}
	if skipped > 0 {
		o.logger.Warn("skipped non-object records in AI response", zap.Int("skipped", skipped))
		if len(records) == 0 {
			return o.fallbackBatch(parseErrorf("AI response contained no usable records"))
		}
	}

	return o.normalizeBatch(records)
}

func (o *Orchestrator) normalizeBatch(records []RawRecord) batch {
	reg := NewOrgRegistry(o.fallback.Organizations)
	batchTime := o.opts.Now()

	seen := make(map[string]struct{}, len(records))
	opps := make([]models.Opportunity, 0, len(records))
	for _, rec := range records {
		opp := o.norm.Normalize(rec, reg, batchTime)
		if _, dup := seen[opp.ID]; dup {
			newID := o.norm.newID(batchTime)
			o.logger.Warn("duplicate opportunity id in batch, regenerating",
				zap.String("id", opp.ID),
				zap.String("new_id", newID))
			opp.ID = newID
		}
		seen[opp.ID] = struct{}{}
		opps = append(opps, opp)
	}

	return batch{opps: opps, orgs: reg.Snapshot()}
}

// fallbackBatch copies the bundled catalogue, newest first.
func (o *Orchestrator) fallbackBatch(cause error) batch {
	opps := make([]models.Opportunity, len(o.fallback.Opportunities))
	copy(opps, o.fallback.Opportunities)
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].PublishedDate.After(opps[j].PublishedDate)
	})

	orgs := make([]models.Organization, len(o.fallback.Organizations))
	copy(orgs, o.fallback.Organizations)

	return batch{opps: opps, orgs: orgs, err: cause}
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	s := Snapshot{
		Seq:           o.committed,
		State:         o.state,
		Loading:       o.issued > o.committed,
		Opportunities: make([]models.Opportunity, len(o.opps)),
		Organizations: make([]models.Organization, len(o.orgs)),
		UpdatedAt:     o.updatedAt,
	}
	copy(s.Opportunities, o.opps)
	copy(s.Organizations, o.orgs)
	if o.err != nil {
		s.Error = o.err.Error()
		s.ErrorKind = KindOf(o.err)
	}
	return s
}

// Opportunity looks up an opportunity in the current collection. It returns
// ErrLoading while a batch that could still contain id is in flight.
func (o *Orchestrator) Opportunity(id string) (models.Opportunity, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, opp := range o.opps {
		if opp.ID == id {
			return opp, nil
		}
	}
	return models.Opportunity{}, o.missing()
}

func (o *Orchestrator) Organization(id string) (models.Organization, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, org := range o.orgs {
		if org.ID == id {
			return org, nil
		}
	}
	return models.Organization{}, o.missing()
}

// missing must be called with mu held.
func (o *Orchestrator) missing() error {
	if o.committed == 0 || o.issued > o.committed {
		return ErrLoading
	}
	return ErrNotFound
}
