package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"wireshairk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EvaluatorSystem instructs the evaluator model to answer in the reply contract.
const EvaluatorSystem = `You are a model used to evaluate if this answer of other model is well answered, you ONLY can answer with this json format: {"is_correct": "Yes" or "No", "punctuation": <Number from 0 to 100 with how good is the question answered>}. Every other format answer will be considered as wrong.`

// SentinelNote marks evaluations forced after the evaluator kept breaking the contract.
const SentinelNote = "Model to evaluate the answer is not working properly"

// SentinelReply is accepted in place of a valid reply once retries run out.
var SentinelReply = fmt.Sprintf(`{"is_correct": "No", "punctuation": 0, "note": %q}`, SentinelNote)

// DefaultMaxRetries is how many failed attempts are tolerated before degrading.
const DefaultMaxRetries = 10

// replyPattern is the evaluator reply contract. It is anchored at the start
// only; trailing text passes here and fails later when parsed.
var replyPattern = regexp.MustCompile(`^\{"is_correct": "(Yes|No)", "punctuation": \d{1,3}\}`)

// ErrMisaligned is returned in strict mode when a pair cannot produce a record.
var ErrMisaligned = errors.New("evaluation output would be misaligned with the dataset")

// EvaluatorInput is the prompt sent to the evaluator for one pair.
func EvaluatorInput(candidate, reference string) string {
	return fmt.Sprintf("Model to evaluate answer: %s\nReal answer:\n%s", candidate, reference)
}

type judgeState int

const (
	stateAttempt judgeState = iota
	stateAccept
	stateRetry
	stateDegrade
)

// Judgement is the reply accepted for one pair.
type Judgement struct {
	Reply    string
	Attempts int
	Degraded bool
}

// EvaluationSummary counts the outcome of an evaluation run.
type EvaluationSummary struct {
	Evaluated int
	Degraded  int
	Dropped   int
}

// EvaluatorConfig configures an Evaluator.
type EvaluatorConfig struct {
	Model      string
	MaxRetries int
	// StrictAlignment fails the run instead of skipping a pair that produced no record.
	StrictAlignment bool
}

// Evaluator grades generated answers against reference answers.
type Evaluator struct {
	backend   Backend
	confirmer Confirmer
	cfg       EvaluatorConfig
	log       logrus.FieldLogger
}

func NewEvaluator(backend Backend, confirmer Confirmer, cfg EvaluatorConfig, log logrus.FieldLogger) *Evaluator {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &Evaluator{backend: backend, confirmer: confirmer, cfg: cfg, log: log}
}

// Judge asks the evaluator until its reply matches the contract. After more
// than MaxRetries failed attempts the sentinel reply is accepted instead.
func (e *Evaluator) Judge(ctx context.Context, input string) (Judgement, error) {
	return e.judge(ctx, input, e.log)
}

func (e *Evaluator) judge(ctx context.Context, input string, log logrus.FieldLogger) (Judgement, error) {
	req := models.GenerateRequest{Model: e.cfg.Model, System: EvaluatorSystem, Prompt: input}

	var (
		reply    string
		failures int
		state    = stateAttempt
	)
	for {
		switch state {
		case stateAttempt:
			out, err := e.backend.Generate(ctx, req)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Judgement{}, ctxErr
			}
			switch {
			case err != nil:
				log.WithError(err).WithField("attempt", failures+1).Warn("Evaluator call failed, trying again")
				failures++
				state = stateRetry
			case !replyPattern.MatchString(out):
				log.WithField("attempt", failures+1).Warn("Output text format is not like the expected, trying again")
				failures++
				state = stateRetry
			default:
				reply = out
				state = stateAccept
			}
		case stateRetry:
			if failures > e.cfg.MaxRetries {
				state = stateDegrade
			} else {
				state = stateAttempt
			}
		case stateDegrade:
			log.WithField("attempts", failures).Warn("The evaluator is not working properly, writing default answer and note")
			return Judgement{Reply: SentinelReply, Attempts: failures, Degraded: true}, nil
		case stateAccept:
			return Judgement{Reply: reply, Attempts: failures + 1}, nil
		}
	}
}

// Run evaluates generated[i] against references[i] for every i and writes one
// EvaluationRecord per pair. A pair whose accepted reply does not parse is
// skipped, which shifts every later record; StrictAlignment turns that into
// an ErrMisaligned failure.
func (e *Evaluator) Run(ctx context.Context, generated []models.GeneratedRecord, references []models.DatasetRecord, w RecordWriter) (EvaluationSummary, error) {
	var sum EvaluationSummary
	runLog := e.log.WithFields(logrus.Fields{"run_id": uuid.NewString(), "model": e.cfg.Model})

	if err := preflight(ctx, e.backend, e.confirmer, runLog); err != nil {
		return sum, err
	}

	for i, gen := range generated {
		log := runLog.WithField("record", i)

		if i >= len(references) {
			if err := e.drop(&sum, log, i, errors.New("no reference answer at this position")); err != nil {
				return sum, err
			}
			continue
		}

		input := EvaluatorInput(gen.GeneratedOutput, references[i].Answer)
		j, err := e.judge(ctx, input, log)
		if err != nil {
			return sum, err
		}

		var eval models.Evaluation
		if err := json.Unmarshal([]byte(j.Reply), &eval); err != nil {
			if err := e.drop(&sum, log, i, fmt.Errorf("parse evaluator reply: %w", err)); err != nil {
				return sum, err
			}
			continue
		}

		if err := w.Write(models.EvaluationRecord{Prompt: input, Evaluation: eval}); err != nil {
			if err := e.drop(&sum, log, i, err); err != nil {
				return sum, err
			}
			continue
		}

		sum.Evaluated++
		if j.Degraded {
			sum.Degraded++
		}
	}

	runLog.WithFields(logrus.Fields{"evaluated": sum.Evaluated, "degraded": sum.Degraded}).Info("Evaluation finished")

	if sum.Dropped > 0 {
		runLog.WithField("dropped", sum.Dropped).Warn("Some pairs produced no evaluation; report slots after the first drop are shifted")
	}
	return sum, nil
}

func (e *Evaluator) drop(sum *EvaluationSummary, log logrus.FieldLogger, i int, cause error) error {
	if e.cfg.StrictAlignment {
		return fmt.Errorf("record %d: %w: %v", i, ErrMisaligned, cause)
	}
	log.WithError(cause).Warn("Skipping pair")
	sum.Dropped++
	return nil
}
