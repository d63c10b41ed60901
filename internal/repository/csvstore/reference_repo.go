// internal/repository/csvstore/reference_repo.go
package csvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/repository"
	"github.com/stepsurvey/steps-survey/internal/storage"
)

// referenceDocument mirrors the keys of the reference resource.
type referenceDocument struct {
	StudyEnergyEffects json.RawMessage `json:"study_energy_effects"`
	ChartTitle         *string         `json:"chart_title"`
}

type jsonReferenceRepository struct {
	blobs storage.BlobStore
	key   string
	log   *slog.Logger
}

// NewJSONReferenceRepository loads the study dataset kept as JSON under key.
func NewJSONReferenceRepository(blobs storage.BlobStore, key string, logger *slog.Logger) repository.ReferenceRepository {
	return &jsonReferenceRepository{blobs: blobs, key: key, log: logger}
}

func (r *jsonReferenceRepository) Load(ctx context.Context) (domain.ReferenceDataset, error) {
	ds := domain.ReferenceDataset{ChartTitle: domain.DefaultReferenceTitle}

	data, err := r.blobs.Get(ctx, r.key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		r.log.Debug("no reference dataset", "key", r.key)
		return ds, nil
	}
	if err != nil {
		return ds, err
	}

	var doc referenceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ds, &repository.ParseError{Key: r.key, Err: err}
	}
	if doc.ChartTitle != nil && *doc.ChartTitle != "" {
		ds.ChartTitle = *doc.ChartTitle
	}

	effects, err := decodeOrderedEffects(doc.StudyEnergyEffects)
	if err != nil {
		return ds, &repository.ParseError{Key: r.key, Err: err}
	}
	ds.Effects = effects
	return ds, nil
}

// decodeOrderedEffects reads a JSON object of label -> number keeping the
// order of keys as written. A missing or null object yields no effects.
func decodeOrderedEffects(raw json.RawMessage) ([]domain.StudyEffect, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("study_energy_effects must be an object")
	}

	var effects []domain.StudyEffect
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		label, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		num, ok := tok.(json.Number)
		if !ok {
			return nil, fmt.Errorf("effect size for %q is not a number", label)
		}
		size, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("effect size for %q: %w", label, err)
		}
		effects = append(effects, domain.StudyEffect{Intensity: label, EffectSize: size})
	}
	return effects, nil
}
