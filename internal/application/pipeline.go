package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/lf-go/pretsched/infrastructure/middleware"
	"github.com/lf-go/pretsched/internal/domain"
	"github.com/lf-go/pretsched/internal/ports"
)

var pipelineTracer = otel.Tracer("pretsched-pipeline")

// runStage executes a ports.CompileStage inside its own span, so every
// compile step (elaborate, explore, split, generate, link) shows up as a
// named unit of work in a trace regardless of which concrete function
// implements it.
func runStage(ctx context.Context, stage ports.CompileStage, in any) (any, error) {
	ctx, span := pipelineTracer.Start(ctx, stage.ID(), trace.WithAttributes(attribute.String("stage", stage.ID())))
	defer span.End()

	out, err := stage.Run(ctx, in)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

// PipelineOptions configures one compilation run.
type PipelineOptions struct {
	NumWorkers      int
	ShutdownTimeout domain.Timestamp
	FastMode        bool
	InitAndPeriodic domain.Tag // horizon for the INIT_AND_PERIODIC exploration
}

// Pipeline sequences the full compile: elaboration, the three
// exploration modes, fragment splitting, per-fragment DAG generation and
// codegen, and linking into one Program (§4, component table in §2).
type Pipeline struct {
	opts PipelineOptions
}

// NewPipeline returns a Pipeline with the given options.
func NewPipeline(opts PipelineOptions) *Pipeline {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 1
	}
	return &Pipeline{opts: opts}
}

// Compile runs source through the entire backend and returns the linked,
// placeholder-resolved Program.
func (p *Pipeline) Compile(ctx context.Context, source ports.ASTSource) (*domain.Program, error) {
	elaborateStage := ports.StageFunc{IDValue: "elaborate", Fn: func(ctx context.Context, in any) (any, error) {
		return NewElaborator(in.(ports.ASTSource)).Elaborate()
	}}
	rootAny, err := runStage(ctx, elaborateStage, source)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	root := rootAny.(*domain.ReactorInstance)

	exploreStage := ports.StageFunc{IDValue: "explore", Fn: func(ctx context.Context, in any) (any, error) {
		return p.explore(ctx, in.(*domain.ReactorInstance))
	}}
	diagramsAny, err := runStage(ctx, exploreStage, root)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	diagrams := diagramsAny.(map[domain.ExplorationMode]*domain.StateSpaceDiagram)

	splitStage := ports.StageFunc{IDValue: "split-fragments", Fn: func(_ context.Context, in any) (any, error) {
		return NewFragmentSplitter(p.opts.NumWorkers).Split(in.(map[domain.ExplorationMode]*domain.StateSpaceDiagram)), nil
	}}
	fragmentsAny, err := runStage(ctx, splitStage, diagrams)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	fragments := fragmentsAny.([]*domain.Fragment)

	generateStage := ports.StageFunc{IDValue: "generate-fragments", Fn: func(_ context.Context, in any) (any, error) {
		fs := in.([]*domain.Fragment)
		return fs, p.generateFragments(fs)
	}}
	if _, err := runStage(ctx, generateStage, fragments); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	allReactors := root.AllReactorInstances()
	linker := NewLinker(p.opts.NumWorkers, p.opts.ShutdownTimeout, allReactors, defaultReactorResolver, defaultReactionResolver)

	linkStage := ports.StageFunc{IDValue: "link", Fn: func(_ context.Context, in any) (any, error) {
		return linker.Link(in.([]*domain.Fragment))
	}}
	programAny, err := runStage(ctx, linkStage, fragments)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return programAny.(*domain.Program), nil
}

// explore runs the three exploration modes concurrently: each mode
// simulates an independent event history over the same instance tree, so
// there is no shared mutable state between them (§4.2).
func (p *Pipeline) explore(ctx context.Context, root *domain.ReactorInstance) (map[domain.ExplorationMode]*domain.StateSpaceDiagram, error) {
	modes := []struct {
		mode    domain.ExplorationMode
		horizon domain.Tag
	}{
		{domain.InitAndPeriodic, p.opts.InitAndPeriodic},
		{domain.ShutdownTimeout, domain.Tag{Timestamp: p.opts.ShutdownTimeout}},
		{domain.ShutdownStarvation, domain.ForeverTag},
	}

	results := make([]*domain.StateSpaceDiagram, len(modes))
	g, _ := errgroup.WithContext(ctx)
	for i, m := range modes {
		i, m := i, m
		g.Go(func() error {
			diagram, err := NewExplorer(root).Explore(m.horizon, m.mode)
			if err != nil {
				return fmt.Errorf("explore %v: %w", m.mode, err)
			}
			results[i] = diagram
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[domain.ExplorationMode]*domain.StateSpaceDiagram, len(modes))
	for i, m := range modes {
		out[m.mode] = results[i]
	}
	return out, nil
}

// generateFragments runs DAG generation and code generation over every
// fragment independently; each fragment's diagram is disjoint from the
// others, so this fans out safely.
func (p *Pipeline) generateFragments(fragments []*domain.Fragment) error {
	g := errgroup.Group{}
	for _, f := range fragments {
		f := f
		g.Go(func() error {
			dag, err := NewDagGenerator(p.opts.NumWorkers).GenerateDag(f.Diagram)
			if err != nil {
				return fmt.Errorf("fragment %s: %w", f.Phase, err)
			}
			f.Dag = dag

			of, err := NewCodeGenerator(p.opts.NumWorkers, p.opts.FastMode).Generate(f.Phase, dag)
			if err != nil {
				return fmt.Errorf("fragment %s: %w", f.Phase, err)
			}
			f.ObjectFile = of
			return nil
		})
	}
	return g.Wait()
}

// Watch drives a file-watching compile loop: each value received on
// triggers recompiles source, debounced through limiter so a burst of
// filesystem events collapses into a single recompile: triggers that
// arrive while Watch waits on limiter are merged, and only the most recent
// source is compiled. Watch returns when ctx is canceled or triggers is
// closed.
func (p *Pipeline) Watch(ctx context.Context, triggers <-chan ports.ASTSource, limiter *middleware.RecompileLimiter, onCompile func(*domain.Program, error)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case source, ok := <-triggers:
			if !ok {
				return nil
			}
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		drain:
			for {
				select {
				case next, more := <-triggers:
					if !more {
						break drain
					}
					source = next
				default:
					break drain
				}
			}
			program, err := p.Compile(ctx, source)
			onCompile(program, err)
		}
	}
}

func defaultReactorResolver(r *domain.ReactorInstance) string {
	return fmt.Sprintf("env.reactor_self_array[%s]", r.Path())
}

func defaultReactionResolver(r *domain.ReactionInstance) string {
	return fmt.Sprintf("env.reaction_array[%s]", r.Path())
}
