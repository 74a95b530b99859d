package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

const (
	fallbackResponse = "Bu konuda belgelerimde yeterli bilgi bulunmuyor. Lütfen daha spesifik bir soru sorun veya farklı bir konuda soru sormayı deneyin."
	lowSimilarityFmt = "Bu konuda kesin bilgi bulunamadı. En yakın benzerlik skoru: %.2f. Daha spesifik bir soru sormayı deneyebilirsiniz."
	errorResponseFmt = "Üzgünüm, sorunuzu işlerken bir hata oluştu: %s"

	lowSimilarityOverall = 0.2
)

// Stage is a state of a single pipeline run.
type Stage string

const (
	StageReceived      Stage = "received"
	StageAnalyzed      Stage = "analyzed"
	StageRetrieved     Stage = "retrieved"
	StageNoResults     Stage = "no_results"
	StageLowSimilarity Stage = "low_similarity"
	StageContextReady  Stage = "context_ready"
	StageSynthesized   Stage = "synthesized"
	StageEvaluated     Stage = "evaluated"
	StageDone          Stage = "done"
	StageErrorResponse Stage = "error_response"
)

// run carries the intermediate results of one ProcessQuery call.
type run struct {
	text      string
	query     domain.Query
	retrieved domain.RetrievalResult
	filtered  []domain.RetrievalCandidate
	bundle    domain.ContextBundle
	response  string
	eval      domain.Evaluation
	answer    domain.Answer
}

// Pipeline drives a question through analysis, retrieval, context assembly,
// synthesis and evaluation. It holds no per-call state and is safe for
// concurrent use.
type Pipeline struct {
	analyzer    *QueryAnalyzer
	retriever   *Retriever
	assembler   *ContextAssembler
	synthesizer *AnswerSynthesizer
	evaluator   *QualityEvaluator
	topK        int
	logger      *slog.Logger
}

func NewPipeline(
	analyzer *QueryAnalyzer,
	retriever *Retriever,
	assembler *ContextAssembler,
	synthesizer *AnswerSynthesizer,
	evaluator *QualityEvaluator,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		analyzer:    analyzer,
		retriever:   retriever,
		assembler:   assembler,
		synthesizer: synthesizer,
		evaluator:   evaluator,
		topK:        retriever.Config().DefaultLimit,
		logger:      logger,
	}
}

// ProcessQuery never returns an error: failures become an answer with
// outcome error and confidence 0.
func (p *Pipeline) ProcessQuery(ctx context.Context, text string) (answer domain.Answer) {
	started := time.Now()
	r := &run{text: text}
	stage := StageReceived

	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("pipeline_panic", "stage", stage, "panic", fmt.Sprint(rec))
			answer = errorAnswer(fmt.Errorf("%v", rec))
		}
		p.logger.Info("pipeline_outcome",
			"outcome", answer.Outcome,
			"category", r.query.Category,
			"confidence", answer.Confidence,
			"total_found", answer.RetrievalInfo.TotalFound,
			"after_filtering", answer.RetrievalInfo.AfterFiltering,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}()

	for stage != StageDone {
		next, err := p.step(ctx, r, stage)
		if err != nil {
			p.logger.Error("pipeline_stage_failed", "stage", stage, "error", err)
			r.answer = errorAnswer(err)
			break
		}
		stage = next
	}
	return r.answer
}

func (p *Pipeline) step(ctx context.Context, r *run, stage Stage) (Stage, error) {
	switch stage {
	case StageReceived:
		r.query = p.analyzer.Analyze(r.text)
		return StageAnalyzed, nil

	case StageAnalyzed:
		if r.query.IsEmpty() {
			return StageNoResults, nil
		}
		result, err := p.retriever.RetrieveAnalyzed(ctx, r.query, p.topK)
		if err != nil {
			return StageErrorResponse, err
		}
		r.retrieved = result
		return StageRetrieved, nil

	case StageRetrieved:
		if len(r.retrieved.Candidates) == 0 {
			return StageNoResults, nil
		}
		r.filtered = p.retriever.FilterBySimilarityThreshold(r.retrieved.Candidates)
		if len(r.filtered) == 0 {
			return StageLowSimilarity, nil
		}
		return StageContextReady, nil

	case StageNoResults:
		r.answer = noResultsAnswer(r.query)
		return StageDone, nil

	case StageLowSimilarity:
		r.answer = lowSimilarityAnswer(r.query, r.retrieved.Candidates)
		return StageDone, nil

	case StageContextReady:
		r.bundle = p.assembler.Assemble(r.filtered, r.query)
		response, err := p.synthesizer.Synthesize(ctx, r.query, r.bundle)
		if err != nil {
			return StageErrorResponse, err
		}
		r.response = response
		return StageSynthesized, nil

	case StageSynthesized:
		r.eval = p.evaluator.Evaluate(r.response, r.query, r.bundle.Sources, r.bundle.Documents)
		return StageEvaluated, nil

	case StageEvaluated:
		r.answer = answeredAnswer(r)
		return StageDone, nil

	default:
		return StageErrorResponse, fmt.Errorf("unexpected pipeline stage %q", stage)
	}
}

func answeredAnswer(r *run) domain.Answer {
	sources := []string{}
	if len(r.bundle.Sources) > 0 {
		sources = r.bundle.Sources[:1]
	}
	eval := r.eval
	return domain.Answer{
		Response:      r.response,
		Sources:       sources,
		Confidence:    eval.Overall,
		QualityLevel:  eval.Level,
		Outcome:       domain.OutcomeAnswered,
		QueryAnalysis: domain.AnalysisOf(r.query),
		RetrievalInfo: domain.RetrievalInfo{
			TotalFound:     len(r.retrieved.Candidates),
			AfterFiltering: len(r.filtered),
			BestScore:      r.filtered[0].CombinedScore,
		},
		Evaluation: &eval,
	}
}

func noResultsAnswer(q domain.Query) domain.Answer {
	return domain.Answer{
		Response:      fallbackResponse,
		Sources:       []string{},
		Confidence:    0,
		QualityLevel:  domain.QualityNoInformation,
		Outcome:       domain.OutcomeNoResults,
		QueryAnalysis: domain.AnalysisOf(q),
		Evaluation: &domain.Evaluation{
			Level:       domain.QualityNoInformation,
			Suggestions: []string{"Daha spesifik soru sorun"},
		},
	}
}

func lowSimilarityAnswer(q domain.Query, candidates []domain.RetrievalCandidate) domain.Answer {
	best := 0.0
	if len(candidates) > 0 {
		best = candidates[0].CombinedScore
	}
	return domain.Answer{
		Response:      fmt.Sprintf(lowSimilarityFmt, best),
		Sources:       []string{},
		Confidence:    clamp01(best),
		QualityLevel:  domain.QualityLowConfidence,
		Outcome:       domain.OutcomeLowSimilarity,
		QueryAnalysis: domain.AnalysisOf(q),
		RetrievalInfo: domain.RetrievalInfo{
			TotalFound: len(candidates),
			BestScore:  best,
		},
		Evaluation: &domain.Evaluation{
			Overall:     lowSimilarityOverall,
			Level:       domain.QualityLowConfidence,
			Suggestions: []string{"Sorguyu yeniden formüle edin"},
		},
	}
}

func errorAnswer(err error) domain.Answer {
	return domain.Answer{
		Response:     fmt.Sprintf(errorResponseFmt, err.Error()),
		Sources:      []string{},
		Confidence:   0,
		QualityLevel: domain.QualityError,
		Outcome:      domain.OutcomeError,
		Error:        err.Error(),
	}
}
