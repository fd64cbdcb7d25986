// Package pipeline runs the generation pipeline and publishes its progress.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"libgenui_server/internal/ai"
	"libgenui_server/internal/pubsub"
	"libgenui_server/internal/types"
	"libgenui_server/internal/utils"
)

const (
	StageDescribe = "describe"
	StageGenerate = "generate"
	StageValidate = "validate"
	StageRepair   = "repair"
	StagePersist  = "persist"
)

// StageError records the stage at which a run failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ArtifactSaver persists a finished artifact.
type ArtifactSaver interface {
	Save(ctx context.Context, a *types.Artifact) error
}

type Config struct {
	RenderPreview bool
}

// Orchestrator runs describe, generate, validate, repair, render and persist
// for each request. Only the most recently started run updates the
// published state, description and fragment.
type Orchestrator struct {
	generator *ai.Generator
	artifacts ArtifactSaver
	cfg       Config

	State       *pubsub.Latch[types.PipelineState]
	Fragment    *pubsub.Latch[string]
	Description *pubsub.Latch[string]

	latest    atomic.Uint64
	publishMu sync.Mutex
	wg        sync.WaitGroup
}

func NewOrchestrator(generator *ai.Generator, artifacts ArtifactSaver, cfg Config) *Orchestrator {
	return &Orchestrator{
		generator:   generator,
		artifacts:   artifacts,
		cfg:         cfg,
		State:       pubsub.NewLatch(types.PipelineState{}),
		Fragment:    pubsub.NewLatch(""),
		Description: pubsub.NewLatch(""),
	}
}

type run struct {
	id  string
	seq uint64
}

// Run executes one pipeline run and returns its artifact. Caller
// cancellation does not stop a started run.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*types.Artifact, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	return o.execute(context.WithoutCancel(ctx), o.begin(), req)
}

// RunAsync starts a run in the background and returns its id.
func (o *Orchestrator) RunAsync(req Request) (string, error) {
	if err := req.normalize(); err != nil {
		return "", err
	}
	r := o.begin()
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		_, _ = o.execute(context.Background(), r, req)
	}()
	return r.id, nil
}

// Wait blocks until every run started with RunAsync has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) begin() run {
	o.publishMu.Lock()
	defer o.publishMu.Unlock()
	r := run{id: uuid.NewString(), seq: o.latest.Add(1)}
	o.State.Update(func(prev types.PipelineState) types.PipelineState {
		return types.PipelineState{
			RunID:        r.id,
			IsLoading:    true,
			CurrentFiles: prev.CurrentFiles,
			Description:  prev.Description,
		}
	})
	return r
}

// ifCurrent runs publish only while r is the most recently started run.
func (o *Orchestrator) ifCurrent(r run, publish func()) bool {
	o.publishMu.Lock()
	defer o.publishMu.Unlock()
	if o.latest.Load() != r.seq {
		return false
	}
	publish()
	return true
}

func (o *Orchestrator) execute(ctx context.Context, r run, req Request) (*types.Artifact, error) {
	started := time.Now()
	klog.V(2).Infof("pipeline: run %s started", r.id)

	description := req.Prompt
	if len(req.Image) > 0 {
		d, err := o.generator.Describe(ctx, req.Image, req.ImageMIMEType)
		if err != nil {
			return nil, o.fail(r, StageDescribe, err)
		}
		description = d
		o.ifCurrent(r, func() { o.Description.Publish(description) })
		klog.V(2).Infof("pipeline: run %s described image (%d chars)", r.id, len(description))
	}

	files, err := o.generator.GenerateFiles(ctx, description)
	if err != nil {
		return nil, o.fail(r, StageGenerate, err)
	}
	if err := files.Validate(o.generator.RequiredFiles()); err != nil {
		return nil, o.fail(r, StageValidate, err)
	}

	outcome, err := o.generator.Repair(ctx, files)
	if err != nil {
		return nil, o.fail(r, StageRepair, err)
	}
	files = outcome.Files
	if !outcome.Evaluation.IsValid {
		klog.V(2).Infof("pipeline: run %s evaluation issues: %v (fixed=%v)", r.id, outcome.Evaluation.Issues, outcome.Fixed)
	}

	artifact := &types.Artifact{
		ID:          r.id,
		Description: description,
		Files:       files,
		CreatedAt:   time.Now().UTC(),
	}
	if o.cfg.RenderPreview {
		fragment, err := o.generator.Render(ctx, files)
		if err != nil {
			klog.Warningf("pipeline: run %s preview skipped: %v", r.id, err)
		}
		artifact.RenderedFragment = fragment
		o.ifCurrent(r, func() { o.Fragment.Publish(fragment) })
	} else {
		o.ifCurrent(r, func() { o.Fragment.Publish("") })
	}

	if err := o.artifacts.Save(ctx, artifact); err != nil {
		return nil, o.fail(r, StagePersist, err)
	}

	current := o.ifCurrent(r, func() {
		o.State.Publish(types.PipelineState{
			RunID:        r.id,
			CurrentFiles: files.Clone(),
			Description:  description,
		})
	})
	if !current {
		klog.V(2).Infof("pipeline: run %s superseded, state left to newer run", r.id)
	}
	klog.Infof("pipeline: run %s completed in %s with %d files", r.id, time.Since(started).Round(time.Millisecond), len(files))
	return artifact, nil
}

func (o *Orchestrator) fail(r run, stage string, err error) error {
	stageErr := &StageError{Stage: stage, Err: err}
	klog.Errorf("pipeline: run %s: %v (transient=%v)", r.id, stageErr, utils.ShouldRetry(err))
	o.ifCurrent(r, func() {
		o.State.Update(func(prev types.PipelineState) types.PipelineState {
			return types.PipelineState{
				RunID:        r.id,
				Error:        stageErr.Error(),
				CurrentFiles: prev.CurrentFiles,
				Description:  prev.Description,
			}
		})
	})
	return stageErr
}
