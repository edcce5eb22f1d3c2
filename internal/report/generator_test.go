package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/celestia-labs/reportgen/internal/astro"
	"github.com/celestia-labs/reportgen/internal/cache"
	"github.com/celestia-labs/reportgen/internal/completion"
	"github.com/celestia-labs/reportgen/internal/idempotency"
	"github.com/celestia-labs/reportgen/internal/types"
)

type fakeCharts struct {
	mu    sync.Mutex
	chart *astro.Chart
	errs  []error
	calls int
}

func (f *fakeCharts) Chart(_ context.Context, _ types.BirthInput) (*astro.Chart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.chart, nil
}

type fakeCompleter struct {
	mu      sync.Mutex
	texts   []string
	errs    []error
	calls   int
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, _ types.ReportType, _, prompt string) (*completion.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	text := "fallback"
	if len(f.texts) > 0 {
		text = f.texts[0]
		if len(f.texts) > 1 {
			f.texts = f.texts[1:]
		}
	}
	return &completion.Response{Text: text, TokensUsed: 100, Provider: "fake"}, nil
}

func testChart() *astro.Chart {
	return &astro.Chart{
		Ascendant: "Leo",
		MoonSign:  "Taurus",
		Nakshatra: "Rohini",
		Placements: []astro.Placement{
			{Planet: "Sun", Sign: "Aries", House: 9},
		},
	}
}

func testInput() types.BirthInput {
	return types.BirthInput{
		Name:        "Asha Rao",
		DateOfBirth: "1990-03-14",
		TimeOfBirth: "06:45",
		Place:       "Pune, India",
	}
}

// goodText is long enough to clear every paid length gate.
func goodText() string {
	body := strings.TrimSpace(strings.Repeat("insight ", 800))
	return "# Career Outlook\n" + body + "\n# Guidance\n- stay the course"
}

func newTestGenerator(store cache.Store, charts *fakeCharts, completer *fakeCompleter) *Generator {
	return NewGenerator(store, charts, completer, Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewID:  func() string { return "rpt_test0001" },
	})
}

func TestGenerate_Success(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	charts := &fakeCharts{chart: testChart()}
	completer := &fakeCompleter{texts: []string{goodText()}}
	g := newTestGenerator(store, charts, completer)

	res, err := g.Generate(context.Background(), testInput(), types.ReportCareer, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Status != cache.StatusDelivered || res.ReportID != "rpt_test0001" {
		t.Errorf("result = %+v", res)
	}
	if res.Content == nil || len(res.Content.Sections) < 2 {
		t.Fatalf("content = %+v, want parsed sections", res.Content)
	}

	entry, err := store.GetByReportID(context.Background(), "rpt_test0001")
	if err != nil || entry == nil {
		t.Fatalf("GetByReportID: entry=%v err=%v", entry, err)
	}
	if entry.Status != cache.StatusDelivered {
		t.Errorf("stored status = %s", entry.Status)
	}
}

func TestGenerate_DuplicateServedFromCache(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	charts := &fakeCharts{chart: testChart()}
	completer := &fakeCompleter{texts: []string{goodText()}}
	g := newTestGenerator(store, charts, completer)

	first, err := g.Generate(context.Background(), testInput(), types.ReportCareer, "sess-1")
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}

	second, err := g.Generate(context.Background(), testInput(), types.ReportCareer, "sess-1")
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if !second.Deduplicated {
		t.Error("Deduplicated = false on repeat request")
	}
	if second.ReportID != first.ReportID {
		t.Errorf("report id = %q, want %q", second.ReportID, first.ReportID)
	}
	if completer.calls != 1 {
		t.Errorf("completion calls = %d, want 1", completer.calls)
	}
}

func TestGenerate_InFlightConflict(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	g := newTestGenerator(store, &fakeCharts{chart: testChart()}, &fakeCompleter{})

	key := idempotency.Key(testInput(), types.ReportCareer, "")
	if ok, err := store.TryClaim(context.Background(), key, "rpt_holder", types.ReportCareer, testInput()); err != nil || !ok {
		t.Fatalf("seed claim: ok=%v err=%v", ok, err)
	}

	_, err := g.Generate(context.Background(), testInput(), types.ReportCareer, "")
	var inflight *InFlightError
	if !errors.As(err, &inflight) {
		t.Fatalf("error = %v, want *InFlightError", err)
	}
	if inflight.ReportID != "rpt_holder" {
		t.Errorf("ReportID = %q, want holder's id", inflight.ReportID)
	}
}

func TestGenerate_RetriesTransientCompletionError(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	charts := &fakeCharts{chart: testChart()}
	completer := &fakeCompleter{
		errs:  []error{&completion.ProviderError{StatusCode: 503}},
		texts: []string{goodText()},
	}
	g := newTestGenerator(store, charts, completer)

	res, err := g.Generate(context.Background(), testInput(), types.ReportCareer, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Status != cache.StatusDelivered {
		t.Errorf("status = %s", res.Status)
	}
	if completer.calls != 2 {
		t.Errorf("completion calls = %d, want 2", completer.calls)
	}
}

func TestGenerate_FatalReleasesClaim(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	charts := &fakeCharts{chart: testChart(), errs: []error{astro.ErrUnsupportedLocation}}
	completer := &fakeCompleter{texts: []string{goodText()}}
	g := newTestGenerator(store, charts, completer)

	_, err := g.Generate(context.Background(), testInput(), types.ReportCareer, "")
	var gerr *GenerationError
	if !errors.As(err, &gerr) || gerr.Code != types.CodeUnsupportedLocation {
		t.Fatalf("error = %v, want fatal UNSUPPORTED_LOCATION", err)
	}

	// The claim is released, so a corrected retry can proceed.
	key := idempotency.Key(testInput(), types.ReportCareer, "")
	if entry, _ := store.Get(context.Background(), key); entry != nil {
		t.Errorf("entry = %+v, want released", entry)
	}
	res, err := g.Generate(context.Background(), testInput(), types.ReportCareer, "")
	if err != nil || res.Status != cache.StatusDelivered {
		t.Errorf("retry after release: res=%+v err=%v", res, err)
	}
}

func TestGenerate_MaxRetriesExceeded(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	charts := &fakeCharts{chart: testChart()}
	// Every attempt comes back too short, which is retryable until the
	// ceiling.
	completer := &fakeCompleter{texts: []string{"# Career\ntoo short"}}
	g := newTestGenerator(store, charts, completer)

	_, err := g.Generate(context.Background(), testInput(), types.ReportCareer, "")
	var gerr *GenerationError
	if !errors.As(err, &gerr) || gerr.Code != types.CodeMaxRetriesExceeded {
		t.Fatalf("error = %v, want MAX_RETRIES_EXCEEDED", err)
	}
	if completer.calls != types.MaxGenerationRetries+1 {
		t.Errorf("completion calls = %d, want %d", completer.calls, types.MaxGenerationRetries+1)
	}

	key := idempotency.Key(testInput(), types.ReportCareer, "")
	if entry, _ := store.Get(context.Background(), key); entry != nil {
		t.Errorf("entry = %+v, want released after fatal outcome", entry)
	}
}

func TestGenerate_AutoExpandRetryPrompt(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	charts := &fakeCharts{chart: testChart()}
	completer := &fakeCompleter{texts: []string{"# Career\ntoo short", goodText()}}
	g := newTestGenerator(store, charts, completer)

	if _, err := g.Generate(context.Background(), testInput(), types.ReportCareer, ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(completer.prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(completer.prompts))
	}
	if strings.Contains(completer.prompts[0], "Expand each section") {
		t.Error("first prompt already asks for expansion")
	}
	if !strings.Contains(completer.prompts[1], "Expand each section") {
		t.Error("retry prompt missing expansion request")
	}
}

func TestGenerate_MissingInputFatalWithoutClaim(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	completer := &fakeCompleter{}
	g := newTestGenerator(store, &fakeCharts{chart: testChart()}, completer)

	input := testInput()
	input.TimeOfBirth = ""
	_, err := g.Generate(context.Background(), input, types.ReportCareer, "")
	var gerr *GenerationError
	if !errors.As(err, &gerr) || gerr.Code != types.CodeMissingInputData {
		t.Fatalf("error = %v, want MISSING_INPUT_DATA", err)
	}
	if store.Len() != 0 {
		t.Errorf("store entries = %d, want 0", store.Len())
	}
	if completer.calls != 0 {
		t.Errorf("completion calls = %d, want 0", completer.calls)
	}
}

func TestGenerate_QualityWarningPersisted(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	charts := &fakeCharts{chart: testChart()}
	// Short 12-month report: soft pass with a warning, never a hard fail.
	completer := &fakeCompleter{texts: []string{"# Yearly Overview\n" + strings.Repeat("w ", 100)}}
	g := newTestGenerator(store, charts, completer)

	res, err := g.Generate(context.Background(), testInput(), types.ReportYearAnalysis, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.QualityWarning == "" {
		t.Error("QualityWarning empty, want soft-pass flag")
	}
	entry, _ := store.GetByReportID(context.Background(), res.ReportID)
	if entry == nil || entry.QualityWarning != res.QualityWarning {
		t.Errorf("stored entry = %+v, want persisted warning", entry)
	}
}

func TestGenerate_ConcurrentRequestsSingleCompletion(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	charts := &fakeCharts{chart: testChart()}
	completer := &fakeCompleter{texts: []string{goodText()}}

	ids := make(chan string, 8)
	next := 0
	var mu sync.Mutex
	g := NewGenerator(store, charts, completer, Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			next++
			return "rpt_concurrent" + string(rune('a'+next))
		},
	})

	var wg sync.WaitGroup
	delivered := 0
	conflicts := 0
	var resMu sync.Mutex
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := g.Generate(context.Background(), testInput(), types.ReportCareer, "")
			resMu.Lock()
			defer resMu.Unlock()
			var inflight *InFlightError
			switch {
			case err == nil:
				delivered++
				ids <- res.ReportID
			case errors.As(err, &inflight):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	close(ids)

	if completer.calls != 1 {
		t.Errorf("completion calls = %d, want exactly 1", completer.calls)
	}
	if delivered+conflicts != 8 {
		t.Errorf("delivered=%d conflicts=%d, want 8 total", delivered, conflicts)
	}
	if delivered == 0 {
		t.Error("no request was delivered")
	}
	first := ""
	for id := range ids {
		if first == "" {
			first = id
		} else if id != first {
			t.Errorf("report ids differ: %q vs %q", first, id)
		}
	}
}
