package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"libgenui_server/internal/types"
)

const (
	DefaultCollection = "items"
	DefaultDocument   = "description-code"
)

// storedArtifact is the value written under an artifact key. Code holds the
// generated files followed by the preview fragment, if any.
type storedArtifact struct {
	Description      string        `json:"description"`
	Code             types.FileSet `json:"code"`
	RenderedFragment string        `json:"renderedFragment,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// ArtifactRepository keeps all artifacts as keys of a single document.
type ArtifactRepository struct {
	store      DocumentStore
	collection string
	document   string
}

func NewArtifactRepository(s DocumentStore, collection, document string) *ArtifactRepository {
	if collection == "" {
		collection = DefaultCollection
	}
	if document == "" {
		document = DefaultDocument
	}
	return &ArtifactRepository{store: s, collection: collection, document: document}
}

// Save writes a under its ID, assigning a random one when empty. Keys are
// not checked for collisions.
func (r *ArtifactRepository) Save(ctx context.Context, a *types.Artifact) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	value, err := toDocumentValue(storedArtifact{
		Description:      a.Description,
		Code:             a.StoredFiles(),
		RenderedFragment: a.RenderedFragment,
		CreatedAt:        a.CreatedAt,
	})
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, r.collection, r.document, map[string]any{a.ID: value}); err != nil {
		return fmt.Errorf("save artifact %s: %w", a.ID, err)
	}
	klog.V(2).Infof("store: saved artifact %s to %s/%s", a.ID, r.collection, r.document)
	return nil
}

// List returns every stored artifact, oldest first.
func (r *ArtifactRepository) List(ctx context.Context) ([]types.Artifact, error) {
	doc, err := r.store.Load(ctx, r.collection, r.document)
	if errors.Is(err, ErrNotFound) {
		return []types.Artifact{}, nil
	}
	if err != nil {
		return nil, err
	}

	artifacts := make([]types.Artifact, 0, len(doc))
	for id, v := range doc {
		a, err := fromDocumentValue(id, v)
		if err != nil {
			klog.Warningf("store: skipping artifact %s: %v", id, err)
			continue
		}
		artifacts = append(artifacts, a)
	}
	sort.Slice(artifacts, func(i, j int) bool {
		if artifacts[i].CreatedAt.Equal(artifacts[j].CreatedAt) {
			return artifacts[i].ID < artifacts[j].ID
		}
		return artifacts[i].CreatedAt.Before(artifacts[j].CreatedAt)
	})
	return artifacts, nil
}

// Get returns the artifact stored under id.
func (r *ArtifactRepository) Get(ctx context.Context, id string) (types.Artifact, error) {
	doc, err := r.store.Load(ctx, r.collection, r.document)
	if err != nil {
		return types.Artifact{}, err
	}
	v, ok := doc[id]
	if !ok {
		return types.Artifact{}, ErrNotFound
	}
	return fromDocumentValue(id, v)
}

// toDocumentValue converts v into plain maps and slices so every backend
// stores the same shape.
func toDocumentValue(v storedArtifact) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return out, nil
}

func fromDocumentValue(id string, v any) (types.Artifact, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return types.Artifact{}, err
	}
	var s storedArtifact
	if err := json.Unmarshal(raw, &s); err != nil {
		return types.Artifact{}, err
	}
	files := make(types.FileSet, 0, len(s.Code))
	for _, f := range s.Code {
		if f.Filename == types.PreviewFilename && s.RenderedFragment != "" {
			continue
		}
		files = append(files, f)
	}
	return types.Artifact{
		ID:               id,
		Description:      s.Description,
		Files:            files,
		RenderedFragment: s.RenderedFragment,
		CreatedAt:        s.CreatedAt,
	}, nil
}
