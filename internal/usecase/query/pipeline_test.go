package query

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
)

type mockProvider struct {
	set result.Set[string]
	err error
}

func (m *mockProvider) Query(_ context.Context, _ request.Request) (result.Set[string], error) {
	return m.set, m.err
}

type upperEnricher struct{}

func (upperEnricher) Enrich(_ context.Context, set result.Set[string]) (result.Set[string], error) {
	return result.Map(set, func(s string) string { return s + "!" }), nil
}

func TestPipeline_RunsProviderEnricherHooks(t *testing.T) {
	var seenStore string
	hook := HookFunc[string](func(_ context.Context, store string, set *result.Set[string]) error {
		seenStore = store
		*set = result.New(append(set.Records(), "hooked"), set.Total()+1)
		return nil
	})
	p := NewPipeline[string]("title", &mockProvider{set: result.New([]string{"a", "b"}, 7)},
		upperEnricher{}, MetricsHook[string](), hook)

	req, _ := request.New(request.Params{})
	set, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenStore != "title" {
		t.Errorf("hook saw store %q", seenStore)
	}
	want := []string{"a!", "b!", "hooked"}
	if got := set.Records(); len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("records: got %v, want %v", got, want)
	}
	if set.Total() != 8 {
		t.Errorf("total: got %d, want 8", set.Total())
	}
}

func TestPipeline_ProviderError(t *testing.T) {
	errBoom := errors.New("boom")
	p := NewPipeline[string]("user", &mockProvider{err: errBoom}, nil)

	req, _ := request.New(request.Params{})
	if _, err := p.Run(context.Background(), req); !errors.Is(err, errBoom) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestPipeline_HookError(t *testing.T) {
	errHook := errors.New("veto")
	hook := HookFunc[string](func(context.Context, string, *result.Set[string]) error { return errHook })
	p := NewPipeline[string]("file", &mockProvider{set: result.New([]string{"a"}, 1)}, nil, hook)

	req, _ := request.New(request.Params{})
	if _, err := p.Run(context.Background(), req); !errors.Is(err, errHook) {
		t.Errorf("expected hook error, got %v", err)
	}
}
