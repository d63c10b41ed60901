package csvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/logging"
	"github.com/stepsurvey/steps-survey/internal/repository"
	"github.com/stepsurvey/steps-survey/internal/storage"
)

func loadReference(t *testing.T, body *string) (domain.ReferenceDataset, error) {
	t.Helper()
	dir := t.TempDir()
	if body != nil {
		if err := os.WriteFile(filepath.Join(dir, "data.json"), []byte(*body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	repo := NewJSONReferenceRepository(storage.NewLocalStorage(dir), "data.json", logging.Discard())
	return repo.Load(context.Background())
}

func TestReferenceMissingIsEmpty(t *testing.T) {
	ds, err := loadReference(t, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ds.IsEmpty() {
		t.Fatalf("expected empty dataset, got %+v", ds)
	}
}

func TestReferenceKeepsDocumentOrder(t *testing.T) {
	body := `{
  "chart_title": "Effect on energy",
  "study_energy_effects": {"Low-Medium": 0.31, "Moderate-High": 0.47, "Control": 0}
}`
	ds, err := loadReference(t, &body)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := domain.ReferenceDataset{
		ChartTitle: "Effect on energy",
		Effects: []domain.StudyEffect{
			{Intensity: "Low-Medium", EffectSize: 0.31},
			{Intensity: "Moderate-High", EffectSize: 0.47},
			{Intensity: "Control", EffectSize: 0},
		},
	}
	if diff := cmp.Diff(want, ds); diff != "" {
		t.Fatalf("dataset mismatch (-want +got):\n%s", diff)
	}
}

func TestReferenceDefaultsTitleAndToleratesMissingEffects(t *testing.T) {
	body := `{"other": true}`
	ds, err := loadReference(t, &body)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.ChartTitle != domain.DefaultReferenceTitle || !ds.IsEmpty() {
		t.Fatalf("unexpected dataset %+v", ds)
	}
}

func TestReferenceMalformedIsParseError(t *testing.T) {
	for name, body := range map[string]string{
		"truncated":     `{"study_energy_effects": {"Low": 0.3`,
		"not an object": `{"study_energy_effects": [0.3, 0.4]}`,
		"not a number":  `{"study_energy_effects": {"Low": "big"}}`,
		"empty file":    ``,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := loadReference(t, &body)
			var perr *repository.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %T %v", err, err)
			}
		})
	}
}
