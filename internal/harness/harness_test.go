package harness

import (
	"context"
	"errors"
	"testing"
	"wireshairk/internal/models"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type sliceWriter struct {
	records []any
}

func (w *sliceWriter) Write(v any) error {
	w.records = append(w.records, v)
	return nil
}

const validYes = `{"is_correct": "Yes", "punctuation": 90}`

func newEvaluator(t *testing.T, cfg EvaluatorConfig) (*Evaluator, *MockBackend, *MockConfirmer) {
	t.Helper()
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	confirmer := NewMockConfirmer(ctrl)
	log, _ := test.NewNullLogger()
	return NewEvaluator(backend, confirmer, cfg, log), backend, confirmer
}

func TestJudgeAcceptsFirstValidReply(t *testing.T) {
	e, backend, _ := newEvaluator(t, EvaluatorConfig{Model: "llama3"})

	want := models.GenerateRequest{Model: "llama3", System: EvaluatorSystem, Prompt: "in"}
	backend.EXPECT().Generate(gomock.Any(), want).Return(validYes, nil)

	j, err := e.Judge(context.Background(), "in")
	require.NoError(t, err)
	assert.Equal(t, validYes, j.Reply)
	assert.Equal(t, 1, j.Attempts)
	assert.False(t, j.Degraded)
}

func TestJudgeRetriesUntilContractMatches(t *testing.T) {
	e, backend, _ := newEvaluator(t, EvaluatorConfig{Model: "llama3"})

	gomock.InOrder(
		backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("Sure! The answer is right.", nil),
		backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("connection reset")),
		backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(`{"is_correct": "No", "punctuation": 5}`, nil),
	)

	j, err := e.Judge(context.Background(), "in")
	require.NoError(t, err)
	assert.Equal(t, `{"is_correct": "No", "punctuation": 5}`, j.Reply)
	assert.Equal(t, 3, j.Attempts)
}

func TestJudgeDegradesAfterRetryBound(t *testing.T) {
	e, backend, _ := newEvaluator(t, EvaluatorConfig{Model: "llama3"})

	// One initial attempt plus DefaultMaxRetries retries.
	backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("not json", nil).Times(DefaultMaxRetries + 1)

	j, err := e.Judge(context.Background(), "in")
	require.NoError(t, err)
	assert.True(t, j.Degraded)
	assert.Equal(t, SentinelReply, j.Reply)
	assert.Equal(t, DefaultMaxRetries+1, j.Attempts)
}

func TestJudgeStopsOnCancel(t *testing.T) {
	e, backend, _ := newEvaluator(t, EvaluatorConfig{Model: "llama3"})
	ctx, cancel := context.WithCancel(context.Background())

	backend.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, models.GenerateRequest) (string, error) {
			cancel()
			return "", context.Canceled
		})

	_, err := e.Judge(ctx, "in")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluatorRunWritesRecords(t *testing.T) {
	e, backend, _ := newEvaluator(t, EvaluatorConfig{Model: "llama3"})

	backend.EXPECT().Ping(gomock.Any()).Return(nil)
	backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(validYes, nil)
	backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("bad", nil).Times(DefaultMaxRetries + 1)

	generated := []models.GeneratedRecord{
		{Prompt: "p1", GeneratedOutput: "4"},
		{Prompt: "p2", GeneratedOutput: "TCP"},
	}
	refs := []models.DatasetRecord{
		{Answer: "There are 4 packets."},
		{Answer: "TCP protocol predominates."},
	}

	w := &sliceWriter{}
	sum, err := e.Run(context.Background(), generated, refs, w)
	require.NoError(t, err)
	assert.Equal(t, EvaluationSummary{Evaluated: 2, Degraded: 1}, sum)
	require.Len(t, w.records, 2)

	first := w.records[0].(models.EvaluationRecord)
	assert.Equal(t, "Model to evaluate answer: 4\nReal answer:\nThere are 4 packets.", first.Prompt)
	assert.Equal(t, models.VerdictYes, first.Evaluation.IsCorrect)
	assert.Equal(t, 90, first.Evaluation.Punctuation)
	assert.False(t, first.Evaluation.Degraded())

	second := w.records[1].(models.EvaluationRecord)
	assert.Equal(t, models.VerdictNo, second.Evaluation.IsCorrect)
	assert.Equal(t, 0, second.Evaluation.Punctuation)
	require.True(t, second.Evaluation.Degraded())
	assert.Equal(t, SentinelNote, *second.Evaluation.Note)
}

func TestEvaluatorRunDropsUnparsableReply(t *testing.T) {
	e, backend, _ := newEvaluator(t, EvaluatorConfig{Model: "llama3"})

	backend.EXPECT().Ping(gomock.Any()).Return(nil)
	gomock.InOrder(
		backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(validYes+" and some commentary", nil),
		backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(validYes, nil),
	)

	generated := []models.GeneratedRecord{{GeneratedOutput: "a"}, {GeneratedOutput: "b"}}
	refs := []models.DatasetRecord{{Answer: "a"}, {Answer: "b"}}

	w := &sliceWriter{}
	sum, err := e.Run(context.Background(), generated, refs, w)
	require.NoError(t, err)
	assert.Equal(t, EvaluationSummary{Evaluated: 1, Dropped: 1}, sum)
	require.Len(t, w.records, 1)
	assert.Contains(t, w.records[0].(models.EvaluationRecord).Prompt, "Model to evaluate answer: b")
}

func TestEvaluatorRunStrictAlignment(t *testing.T) {
	e, backend, _ := newEvaluator(t, EvaluatorConfig{Model: "llama3", StrictAlignment: true})

	backend.EXPECT().Ping(gomock.Any()).Return(nil)
	backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(validYes+"}", nil)

	generated := []models.GeneratedRecord{{GeneratedOutput: "a"}, {GeneratedOutput: "b"}}
	refs := []models.DatasetRecord{{Answer: "a"}, {Answer: "b"}}

	w := &sliceWriter{}
	_, err := e.Run(context.Background(), generated, refs, w)
	assert.ErrorIs(t, err, ErrMisaligned)
	assert.Empty(t, w.records)
}

func TestEvaluatorRunMissingReference(t *testing.T) {
	e, backend, _ := newEvaluator(t, EvaluatorConfig{Model: "llama3"})

	backend.EXPECT().Ping(gomock.Any()).Return(nil)
	backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(validYes, nil)

	generated := []models.GeneratedRecord{{GeneratedOutput: "a"}, {GeneratedOutput: "b"}}
	refs := []models.DatasetRecord{{Answer: "a"}}

	sum, err := e.Run(context.Background(), generated, refs, &sliceWriter{})
	require.NoError(t, err)
	assert.Equal(t, EvaluationSummary{Evaluated: 1, Dropped: 1}, sum)
}

func TestEvaluatorRunConfirmsWhenBackendDown(t *testing.T) {
	e, backend, confirmer := newEvaluator(t, EvaluatorConfig{Model: "llama3"})

	aborted := errors.New("aborted by operator")
	backend.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
	confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(aborted)

	w := &sliceWriter{}
	_, err := e.Run(context.Background(), []models.GeneratedRecord{{}}, []models.DatasetRecord{{}}, w)
	assert.ErrorIs(t, err, aborted)
	assert.Empty(t, w.records)
}

func newGenerator(t *testing.T) (*Generator, *MockBackend, *MockConfirmer) {
	t.Helper()
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	confirmer := NewMockConfirmer(ctrl)
	log, _ := test.NewNullLogger()
	return NewGenerator(backend, confirmer, "llama2", log), backend, confirmer
}

func TestGeneratorSpinsUntilNonEmpty(t *testing.T) {
	g, backend, _ := newGenerator(t)

	rec := models.DatasetRecord{Context: "ctx", Prompt: "prompt", Answer: "ref"}
	want := models.GenerateRequest{Model: "llama2", System: "ctx", Prompt: "prompt"}

	backend.EXPECT().Ping(gomock.Any()).Return(nil)
	gomock.InOrder(
		backend.EXPECT().Generate(gomock.Any(), want).Return("", nil).Times(2),
		backend.EXPECT().Generate(gomock.Any(), want).Return("", errors.New("timeout")),
		backend.EXPECT().Generate(gomock.Any(), want).Return("4 packets", nil),
	)

	w := &sliceWriter{}
	sum, err := g.Run(context.Background(), []models.DatasetRecord{rec}, w)
	require.NoError(t, err)
	assert.Equal(t, GenerationSummary{Written: 1, Attempts: 4}, sum)
	require.Len(t, w.records, 1)
	assert.Equal(t, models.GeneratedRecord{Prompt: "prompt", GeneratedOutput: "4 packets"}, w.records[0])
}

func TestGeneratorContinuesAfterWriteFailure(t *testing.T) {
	g, backend, _ := newGenerator(t)
	ctrl := gomock.NewController(t)
	w := NewMockRecordWriter(ctrl)

	backend.EXPECT().Ping(gomock.Any()).Return(nil)
	backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("answer", nil).Times(2)
	gomock.InOrder(
		w.EXPECT().Write(gomock.Any()).Return(errors.New("disk full")),
		w.EXPECT().Write(gomock.Any()).Return(nil),
	)

	sum, err := g.Run(context.Background(), []models.DatasetRecord{{Prompt: "a"}, {Prompt: "b"}}, w)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 1, sum.Failed)
}

func TestGeneratorStopsOnCancel(t *testing.T) {
	g, backend, _ := newGenerator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	backend.EXPECT().Ping(gomock.Any()).Return(nil)
	backend.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, models.GenerateRequest) (string, error) {
			calls++
			if calls == 3 {
				cancel()
			}
			return "", nil
		}).Times(3)

	w := &sliceWriter{}
	sum, err := g.Run(ctx, []models.DatasetRecord{{Prompt: "a"}}, w)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, sum.Attempts)
	assert.Empty(t, w.records)
}

func TestGeneratorResumesAfterConfirm(t *testing.T) {
	g, backend, confirmer := newGenerator(t)

	gomock.InOrder(
		backend.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused")),
		confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(nil),
		backend.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("ok", nil),
	)

	sum, err := g.Run(context.Background(), []models.DatasetRecord{{Prompt: "a"}}, &sliceWriter{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)
}
