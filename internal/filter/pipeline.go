package filter

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/shunkie/lightprobe/internal/assets"
	"github.com/shunkie/lightprobe/internal/cubemap"
	"github.com/shunkie/lightprobe/internal/probe"
)

// ErrInvalidSourceDimensions is returned by Submit when the source
// cubemap's face edge length is not a power of two. No job is scheduled.
var ErrInvalidSourceDimensions = errors.New("source cubemap face size must be a power of two")

// Config controls the filter pipeline.
type Config struct {
	// Workers is the number of concurrent filter jobs. Zero means one
	// per CPU.
	Workers int

	// DiffuseSize is the face edge length of the diffuse irradiance
	// output.
	DiffuseSize int

	// DiffuseSamples and SpecularSamples are the per-texel sample counts
	// of the two convolutions.
	DiffuseSamples  int
	SpecularSamples int
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		DiffuseSize:     32,
		DiffuseSamples:  512,
		SpecularSamples: 256,
	}
}

// job is one filtering run. gen ties the job to the generation of the
// probe's source at submit time; if the source changes while the job runs,
// the generation moves on and the job's output is dropped, never published.
type job struct {
	id     probe.ID
	gen    uint64
	src    *cubemap.Cubemap
	handle assets.Handle
}

// Pipeline filters raw source cubemaps in the background and publishes the
// results into the asset store. It implements probe.FilteredSource, so a
// registry snapshot picks up published maps transparently; probes whose
// filtering has not finished simply contribute nothing.
type Pipeline struct {
	store *assets.Store
	cfg   Config
	log   *zap.Logger

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []job
	closed    bool
	gens      map[probe.ID]uint64
	sources   map[probe.ID]assets.Handle
	published map[probe.ID]probe.FilteredMaps

	notify chan probe.ID
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a pipeline and starts its workers. A nil logger disables
// logging. Call Close to stop the workers.
func New(store *assets.Store, cfg Config, log *zap.Logger) *Pipeline {
	p := newPipeline(store, cfg, log)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// newPipeline builds the pipeline state without starting workers.
func newPipeline(store *assets.Store, cfg Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{
		store:     store,
		cfg:       cfg,
		log:       log,
		gens:      make(map[probe.ID]uint64),
		sources:   make(map[probe.ID]assets.Handle),
		published: make(map[probe.ID]probe.FilteredMaps),
		notify:    make(chan probe.ID, 64),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Submit schedules filtering for a probe's generated environment map.
//
// A source that is not loaded yet is not an error: Submit returns nil and
// does nothing; call it again once the asset arrives. A source whose face
// size is not a power of two fails with ErrInvalidSourceDimensions and no
// job is scheduled. Re-submitting an unchanged source is a no-op, so
// intensity, rotation or flag edits never trigger refiltering; a changed
// source invalidates any previous result and supersedes a running job.
func (p *Pipeline) Submit(id probe.ID, light probe.GeneratedEnvironmentMapLight) error {
	src, ok := p.store.Cubemap(light.SourceMap)
	if !ok {
		p.log.Debug("filter source not loaded yet",
			zap.Uint32("probe", uint32(id)),
			zap.String("source", string(light.SourceMap)),
		)
		return nil
	}

	if !cubemap.IsPowerOfTwo(src.Size) {
		return fmt.Errorf("probe %d source %q (%dx%d faces): %w",
			id, light.SourceMap, src.Size, src.Size, ErrInvalidSourceDimensions)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	if p.sources[id] == light.SourceMap {
		// Same source: either already published or still in flight.
		p.mu.Unlock()
		return nil
	}
	p.gens[id]++
	p.sources[id] = light.SourceMap
	delete(p.published, id) // stale maps must not serve anymore
	// The queue is unbounded so Submit never blocks frame submission,
	// however far filtering has fallen behind.
	p.queue = append(p.queue, job{id: id, gen: p.gens[id], src: src, handle: light.SourceMap})
	p.cond.Signal()
	p.mu.Unlock()

	p.log.Info("filter job scheduled",
		zap.Uint32("probe", uint32(id)),
		zap.String("source", string(light.SourceMap)),
		zap.Int("size", src.Size),
	)
	return nil
}

// FilteredMaps reports the published output for a probe. ok is false while
// filtering is pending, superseded, or was never triggered.
func (p *Pipeline) FilteredMaps(id probe.ID) (probe.FilteredMaps, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	maps, ok := p.published[id]
	return maps, ok
}

// Notify returns the completion channel. One probe ID is sent per
// publication, best effort: if nobody is draining the channel,
// notifications are dropped rather than blocking a worker.
func (p *Pipeline) Notify() <-chan probe.ID {
	return p.notify
}

// Close stops accepting jobs and waits for running workers to finish.
// Queued jobs that no worker has picked up yet are discarded.
func (p *Pipeline) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.cond.Broadcast()
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for {
		j, ok := p.next()
		if !ok {
			return
		}
		if p.superseded(j) {
			continue
		}

		diffuse := Diffuse(j.src, p.cfg.DiffuseSize, p.cfg.DiffuseSamples)
		if p.superseded(j) {
			continue
		}
		specular := Specular(j.src, p.cfg.SpecularSamples)

		p.publish(j, diffuse, specular)
	}
}

// next blocks until a job is queued or the pipeline closes.
func (p *Pipeline) next() (job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return job{}, false
	}
	j := p.queue[0]
	p.queue = p.queue[1:]
	return j, true
}

func (p *Pipeline) superseded(j job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gens[j.id] != j.gen
}

// publish stores the filtered maps and records them for the probe, unless
// the job was superseded while it ran. Superseded output is dropped whole;
// partial or stale maps are never visible to snapshots.
func (p *Pipeline) publish(j job, diffuse *cubemap.Cubemap, specular *cubemap.MipChain) {
	diffuseHandle := j.handle + "/diffuse"
	specularHandle := j.handle + "/specular"

	p.mu.Lock()
	if p.gens[j.id] != j.gen {
		p.mu.Unlock()
		p.log.Debug("filter job superseded, output dropped",
			zap.Uint32("probe", uint32(j.id)),
		)
		return
	}
	p.store.AddCubemap(diffuseHandle, diffuse)
	p.store.AddMipChain(specularHandle, specular)
	p.published[j.id] = probe.FilteredMaps{
		Diffuse:  diffuseHandle,
		Specular: specularHandle,
	}
	p.mu.Unlock()

	p.log.Info("filter job published",
		zap.Uint32("probe", uint32(j.id)),
		zap.String("diffuse", string(diffuseHandle)),
		zap.String("specular", string(specularHandle)),
	)

	select {
	case p.notify <- j.id:
	default:
	}
}
