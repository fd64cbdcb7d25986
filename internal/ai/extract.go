package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"k8s.io/klog/v2"

	"libgenui_server/internal/types"
)

var (
	// ErrNoFileSet means no strategy found a file list in the text.
	ErrNoFileSet = errors.New("no file set found in model output")
	// ErrInvalidRecord means a file list was found but a record lacks a
	// non-empty filename or content.
	ErrInvalidRecord = errors.New("file record missing filename or content")
)

// Strategy looks for a JSON list of file records in text.
type Strategy struct {
	Name string
	Find func(text string) ([]json.RawMessage, bool)
}

// Extractor applies its strategies in order and stops at the first match.
type Extractor struct {
	strategies []Strategy
}

func NewExtractor() *Extractor {
	return &Extractor{strategies: []Strategy{
		{Name: "array", Find: wholeArray},
		{Name: "wrapped", Find: wrappedFiles},
		{Name: "embedded", Find: embeddedJSON},
	}}
}

// Extract turns sanitized model output into a file set. It returns
// ErrNoFileSet when nothing matched and ErrInvalidRecord when the matched
// list holds an incomplete record.
func (e *Extractor) Extract(text string) (types.FileSet, error) {
	for _, s := range e.strategies {
		records, ok := s.Find(text)
		if !ok {
			continue
		}
		klog.V(4).Infof("extractor: matched %s strategy with %d records", s.Name, len(records))
		return decodeRecords(records)
	}
	return nil, ErrNoFileSet
}

func decodeRecords(records []json.RawMessage) (types.FileSet, error) {
	files := make(types.FileSet, 0, len(records))
	for i, raw := range records {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, ErrInvalidRecord)
		}
		var f types.GeneratedFile
		if err := json.Unmarshal(fields["filename"], &f.Filename); err != nil || strings.TrimSpace(f.Filename) == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrInvalidRecord)
		}
		if err := json.Unmarshal(fields["content"], &f.Content); err != nil || f.Content == "" {
			return nil, fmt.Errorf("record %d (%s): %w", i, f.Filename, ErrInvalidRecord)
		}
		files = append(files, f)
	}
	return files, nil
}

func wholeArray(text string) ([]json.RawMessage, bool) {
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(text), &arr); err != nil {
		return nil, false
	}
	return arr, looksLikeFiles(arr)
}

func wrappedFiles(text string) ([]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return filesField(obj)
}

func filesField(obj map[string]json.RawMessage) ([]json.RawMessage, bool) {
	raw, ok := obj["files"]
	if !ok {
		return nil, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	return arr, looksLikeFiles(arr)
}

func looksLikeFiles(arr []json.RawMessage) bool {
	if len(arr) == 0 {
		return false
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal(arr[0], &first); err != nil {
		return false
	}
	_, ok := first["filename"]
	return ok
}

var candidateStartRe = regexp.MustCompile(`\{\s*"files"\s*:\s*\[\s*\{\s*"filename"|\[\s*\{\s*"filename"`)

// embeddedJSON finds file lists surrounded by prose. Every position that
// starts like a file list is decoded as one JSON value; the longest value of
// the right shape wins.
func embeddedJSON(text string) ([]json.RawMessage, bool) {
	var (
		best    []json.RawMessage
		bestLen int
	)
	for _, loc := range candidateStartRe.FindAllStringIndex(text, -1) {
		for _, start := range candidateStarts(text, loc) {
			dec := json.NewDecoder(strings.NewReader(text[start:]))
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				continue
			}
			records, ok := shapeOf(raw)
			if ok && len(raw) > bestLen {
				best, bestLen = records, len(raw)
			}
		}
	}
	return best, best != nil
}

// candidateStarts returns the match start and, for a wrapper match, the
// position of its inner array so a truncated wrapper can still yield files.
func candidateStarts(text string, loc []int) []int {
	starts := []int{loc[0]}
	if text[loc[0]] == '{' {
		if i := strings.IndexByte(text[loc[0]:loc[1]], '['); i >= 0 {
			starts = append(starts, loc[0]+i)
		}
	}
	return starts
}

func shapeOf(raw json.RawMessage) ([]json.RawMessage, bool) {
	switch strings.TrimSpace(string(raw))[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, false
		}
		return arr, looksLikeFiles(arr)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		return filesField(obj)
	}
	return nil, false
}
