package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/gendataset/internal/expand"
	"github.com/ppiankov/gendataset/internal/llm"
	"github.com/ppiankov/gendataset/internal/model"
	"github.com/ppiankov/gendataset/internal/parse"
	"github.com/ppiankov/gendataset/internal/prompt"
	"github.com/ppiankov/gendataset/internal/sink"
)

func reply(content, summary string) llm.MockResponse {
	return llm.MockResponse{Text: "content:\"" + content + "\"\nsummary:\"" + summary + "\""}
}

func openCSV(t *testing.T) sink.Sink {
	t.Helper()
	s, err := sink.Open(filepath.Join(t.TempDir(), "out.csv"), sink.Options{Format: sink.FormatCSV})
	require.NoError(t, err)
	return s
}

func readRecords(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

type memoryRecorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *memoryRecorder) Record(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func TestRun_TwoFragments(t *testing.T) {
	provider := llm.NewMockProvider(
		reply("乾卦", "元亨利贞"),
		reply("坤卦", "厚德载物"),
	)
	s := openCSV(t)

	stats, err := New(provider, s, Options{}).Run(context.Background(), []model.Fragment{"乾：元亨利贞。", "坤：元亨，利牝马之贞。"})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Fragments)
	assert.Equal(t, 40, stats.Rows)
	assert.Equal(t, s.Path(), stats.Output)
	assert.NotEmpty(t, stats.RunID)

	records := readRecords(t, s.Path())
	require.Len(t, records, 41, "header plus 20 rows per fragment")
	assert.Equal(t, []string{"content", "summary"}, records[0])

	// The first column holds generated questions under the "content" header
	assert.Equal(t, []string{"乾卦代表什么？", "元亨利贞"}, records[1])
	assert.Equal(t, []string{"乾卦在周易哲学中扮演什么角色？", "元亨利贞"}, records[20])
	assert.Equal(t, []string{"坤卦代表什么？", "厚德载物"}, records[21])
	for _, rec := range records[21:] {
		assert.Equal(t, "厚德载物", rec[1])
	}
}

func TestRun_SendsSystemAndFragment(t *testing.T) {
	provider := llm.NewMockProvider(reply("乾卦", "x"))

	_, err := New(provider, openCSV(t), Options{}).Run(context.Background(), []model.Fragment{"乾：元亨利贞。"})
	require.NoError(t, err)

	require.Len(t, provider.Calls, 1)
	assert.Equal(t, prompt.DefaultSystem, provider.Calls[0].System)
	assert.Equal(t, "乾：元亨利贞。", provider.Calls[0].Input)
}

func TestRun_NoLossOnFailure(t *testing.T) {
	serviceErr := &llm.ErrProviderUnavailable{Err: errors.New("connection reset")}
	provider := llm.NewMockProvider(
		reply("乾卦", "元亨利贞"),
		llm.MockResponse{Err: serviceErr},
		reply("屯卦", "never requested"),
	)
	s := openCSV(t)

	stats, err := New(provider, s, Options{}).Run(context.Background(), []model.Fragment{"乾", "坤", "屯"})
	require.Error(t, err)

	var fragErr *FragmentError
	require.ErrorAs(t, err, &fragErr)
	assert.Equal(t, 1, fragErr.Index)
	assert.Equal(t, model.Fragment("坤"), fragErr.Fragment)
	assert.ErrorIs(t, err, serviceErr)

	assert.Equal(t, 1, stats.Fragments)
	assert.Equal(t, 20, stats.Rows)
	assert.Equal(t, 2, provider.CallCount(), "the run stops at the failing fragment")

	records := readRecords(t, s.Path())
	require.Len(t, records, 21)
	for _, rec := range records[1:] {
		assert.Equal(t, "元亨利贞", rec[1])
	}
}

func TestRun_EmptyCorpus(t *testing.T) {
	provider := llm.NewMockProvider()
	s := openCSV(t)

	stats, err := New(provider, s, Options{}).Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Zero(t, stats.Rows)
	assert.Zero(t, provider.CallCount())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "content,summary\n", string(data))
}

func TestRun_EmptyReply(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Text: "  \n "})

	_, err := New(provider, openCSV(t), Options{}).Run(context.Background(), []model.Fragment{"乾"})
	assert.ErrorIs(t, err, llm.ErrEmptyReply)
}

func TestRun_LenientParsingNeverFails(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Text: "I cannot answer that."})
	s := openCSV(t)

	stats, err := New(provider, s, Options{}).Run(context.Background(), []model.Fragment{"乾"})
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Rows)
}

func TestRun_StrictParsing(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Text: "I cannot answer that."})
	s := openCSV(t)

	stats, err := New(provider, s, Options{Parser: parse.Parser{Mode: parse.ModeStrict}}).Run(context.Background(), []model.Fragment{"乾"})
	require.Error(t, err)
	assert.ErrorIs(t, err, parse.ErrMissingMarker)
	assert.Zero(t, stats.Rows)

	records := readRecords(t, s.Path())
	assert.Len(t, records, 1)
}

func TestRun_CustomTemplates(t *testing.T) {
	exp, err := expand.New([]string{"What is {}?", "Explain {}."})
	require.NoError(t, err)

	provider := llm.NewMockProvider(reply("Qian", "Heaven"))
	s := openCSV(t)

	stats, err := New(provider, s, Options{Expander: exp, System: "custom"}).Run(context.Background(), []model.Fragment{"Qian"})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, "custom", provider.Calls[0].System)

	records := readRecords(t, s.Path())
	assert.Equal(t, [][]string{{"content", "summary"}, {"What is Qian?", "Heaven"}, {"Explain Qian.", "Heaven"}}, records)
}

func TestRun_Cancelled(t *testing.T) {
	provider := llm.NewMockProvider(reply("乾卦", "x"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := New(provider, openCSV(t), Options{}).Run(ctx, []model.Fragment{"乾"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Rows)
	assert.Zero(t, provider.CallCount())
}

func TestRun_RecordsEveryCall(t *testing.T) {
	provider := llm.NewMockProvider(
		reply("乾卦", "元亨利贞"),
		llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}},
	)
	rec := &memoryRecorder{}

	p := New(provider, openCSV(t), Options{Recorder: rec, RunID: "run-1"})
	_, err := p.Run(context.Background(), []model.Fragment{"乾", "坤"})
	require.Error(t, err)
	assert.Equal(t, "run-1", p.RunID())

	require.Len(t, rec.events, 2)

	ok := rec.events[0]
	assert.True(t, ok.Success())
	assert.Equal(t, "run-1", ok.RunID)
	assert.Equal(t, 0, ok.Seq)
	assert.Equal(t, "乾", ok.Fragment)
	assert.Equal(t, "mock", ok.Provider)
	assert.Equal(t, "mock", ok.Model)
	assert.Equal(t, model.ExtractedPair{Content: "乾卦", Summary: "元亨利贞"}, ok.Pair)
	assert.Equal(t, 20, ok.Rows)

	failed := rec.events[1]
	assert.False(t, failed.Success())
	assert.Equal(t, 1, failed.Seq)
	assert.Zero(t, failed.Rows)
}

func TestRun_RecorderFailureIsNotFatal(t *testing.T) {
	provider := llm.NewMockProvider(reply("乾卦", "元亨利贞"))
	rec := &memoryRecorder{err: errors.New("database is locked")}

	stats, err := New(provider, openCSV(t), Options{Recorder: rec}).Run(context.Background(), []model.Fragment{"乾"})
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Rows)
	assert.Len(t, rec.events, 1)
}

func TestRun_ClosesSink(t *testing.T) {
	provider := llm.NewMockProvider(reply("乾卦", "x"))
	s := openCSV(t)

	_, err := New(provider, s, Options{}).Run(context.Background(), []model.Fragment{"乾"})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Append(model.TrainingRow{}), sink.ErrClosed)
}

func TestRecorderFunc(t *testing.T) {
	var got Event
	r := RecorderFunc(func(_ context.Context, e Event) error {
		got = e
		return nil
	})
	require.NoError(t, r.Record(context.Background(), Event{Seq: 3}))
	assert.Equal(t, 3, got.Seq)
}

func TestFragmentError(t *testing.T) {
	err := &FragmentError{Index: 0, Fragment: "乾", Err: llm.ErrEmptyReply}
	assert.Equal(t, "fragment 1: empty reply from service", err.Error())
	assert.ErrorIs(t, err, llm.ErrEmptyReply)
}
