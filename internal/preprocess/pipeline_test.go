package preprocess

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/preprocess/pagenumbers"
)

// mockCleaner is a test cleaner that applies fn to every page.
type mockCleaner struct {
	name string
	fn   func(string) string
	drop bool
	err  error
}

func (m *mockCleaner) Name() string {
	return m.name
}

func (m *mockCleaner) Clean(_ context.Context, pages []string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.drop {
		return pages[1:], nil
	}
	out := make([]string, len(pages))
	for i, p := range pages {
		if m.fn != nil {
			p = m.fn(p)
		}
		out[i] = p
	}
	return out, nil
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 cleaners, got %d", p.Len())
	}
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(&mockCleaner{name: "test"})

	if p.Len() != 1 {
		t.Errorf("expected 1 cleaner, got %d", p.Len())
	}
	if got := p.Names(); len(got) != 1 || got[0] != "test" {
		t.Errorf("unexpected names: %v", got)
	}
}

func TestPipeline_Process_NilText(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPipeline_Process_EmptyPipelineJoinsPages(t *testing.T) {
	text := &domain.ExtractedText{Pages: []string{" first ", "", "second"}}

	got, err := NewPipeline().Process(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "first\n\nsecond" {
		t.Errorf("unexpected text: %q", got)
	}
}

func TestPipeline_Process_RunsInOrder(t *testing.T) {
	p := NewPipeline(
		&mockCleaner{name: "upper", fn: strings.ToUpper},
		&mockCleaner{name: "suffix", fn: func(s string) string { return s + "!" }},
	)
	text := &domain.ExtractedText{Pages: []string{"a", "b"}}

	got, err := p.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A!\n\nB!" {
		t.Errorf("unexpected text: %q", got)
	}
	if text.Pages[0] != "a" {
		t.Error("input pages must not be modified")
	}
}

func TestPipeline_Process_CleanerError(t *testing.T) {
	expectedErr := errors.New("cleaner failed")
	p := NewPipeline(&mockCleaner{name: "failing", err: expectedErr})

	_, err := p.Process(context.Background(), &domain.ExtractedText{Pages: []string{"x"}})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected wrapped error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "cleaner failing") {
		t.Errorf("expected cleaner name in error, got: %v", err)
	}
}

func TestPipeline_Process_PageCountChange(t *testing.T) {
	p := NewPipeline(&mockCleaner{name: "dropper", drop: true})

	_, err := p.Process(context.Background(), &domain.ExtractedText{Pages: []string{"x", "y"}})
	if err == nil {
		t.Fatal("expected error when a cleaner changes the page count")
	}
}

func TestPipeline_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(&mockCleaner{name: "x"}).Process(ctx, &domain.ExtractedText{Pages: []string{"x"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDefaultPipeline_RemovesPageNumbers(t *testing.T) {
	p, err := NewDefaultRegistry().BuildPipeline(domain.DefaultPipelineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := &domain.ExtractedText{Pages: []string{
		"Lastenheft Kundenportal\nDas System muss Rechnungen als PDF\nexportieren.\n1",
		"Die Anmeldung erfolgt per Single-Sign-\nOn.\nDie Anforde-\nrung gilt ab Release 2.\n- 2 -",
		"Seite 3 von 4\nAntwortzeit unter 2 Sekunden.",
		"Offene Frage: Datenhaltung?\nPage 4 of 4",
	}}

	got, err := p.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, line := range strings.Split(got.String(), "\n") {
		if pagenumbers.IsMarker(line) {
			t.Errorf("page number line survived: %q", line)
		}
	}
	for _, want := range []string{
		"Das System muss Rechnungen als PDF exportieren.",
		"Die Anforderung gilt ab Release 2.",
		"Antwortzeit unter 2 Sekunden.",
		"Offene Frage: Datenhaltung?",
	} {
		if !strings.Contains(got.String(), want) {
			t.Errorf("expected %q in cleaned text:\n%s", want, got)
		}
	}
}
