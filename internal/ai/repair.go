package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"k8s.io/klog/v2"

	"libgenui_server/internal/ai/prompts"
	"libgenui_server/internal/llm"
	"libgenui_server/internal/types"
)

// RepairOutcome reports what the evaluate/fix pass did.
type RepairOutcome struct {
	Files      types.FileSet
	Evaluation types.EvaluationResult
	Fixed      bool
}

// Evaluate asks the model for a semantic verdict on files. A response that
// cannot be parsed counts as an invalid verdict, not an error; only model
// failures are returned.
func Evaluate(ctx context.Context, model llm.Model, files types.FileSet) (types.EvaluationResult, error) {
	out, err := model.Generate(ctx, llm.ProfileText, []llm.Part{
		llm.Text(prompts.GetEvaluationPrompt(files)),
	})
	if err != nil {
		return types.EvaluationResult{}, fmt.Errorf("evaluate files: %w", err)
	}
	klog.V(6).Infof("evaluate: raw output: %s", out)

	var result types.EvaluationResult
	if err := json.Unmarshal([]byte(Sanitize(out)), &result); err != nil {
		return types.EvaluationResult{
			IsValid: false,
			Issues:  []string{fmt.Sprintf("evaluation response could not be parsed: %v", err)},
		}, nil
	}
	return result, nil
}

// Fix makes exactly one model call to correct files. It returns the
// original files and false when the response yields no usable file set.
func Fix(ctx context.Context, model llm.Model, extractor *Extractor, files types.FileSet, eval types.EvaluationResult, required []string) (types.FileSet, bool, error) {
	out, err := model.Generate(ctx, llm.ProfileText, []llm.Part{
		llm.Text(prompts.GetFixPrompt(files, eval, required)),
	})
	if err != nil {
		return files, false, fmt.Errorf("fix files: %w", err)
	}
	klog.V(6).Infof("fix: raw output: %s", out)

	fixed, err := extractor.Extract(Sanitize(out))
	if err != nil {
		klog.Warningf("fix: discarding response: %v", err)
		return files, false, nil
	}
	if err := fixed.Validate(required); err != nil {
		klog.Warningf("fix: discarding structurally invalid file set: %v", err)
		return files, false, nil
	}
	return fixed, true, nil
}

// Repair evaluates files and, when the verdict is invalid, fixes them once.
// The fixed set is not re-evaluated. Only an evaluation model error is
// returned; a failed fix keeps the original files.
func Repair(ctx context.Context, model llm.Model, extractor *Extractor, files types.FileSet, required []string) (RepairOutcome, error) {
	eval, err := Evaluate(ctx, model, files)
	if err != nil {
		return RepairOutcome{Files: files}, err
	}
	outcome := RepairOutcome{Files: files, Evaluation: eval}
	if eval.IsValid {
		klog.V(2).Info("repair: evaluation passed")
		return outcome, nil
	}

	klog.V(2).Infof("repair: %d issues reported, attempting fix", len(eval.Issues))
	fixed, ok, err := Fix(ctx, model, extractor, files, eval, required)
	if err != nil {
		klog.Warningf("repair: keeping original files: %v", err)
		return outcome, nil
	}
	outcome.Files, outcome.Fixed = fixed, ok
	return outcome, nil
}
