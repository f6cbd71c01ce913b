package supervisor

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"trading-supervisor/internal/domain"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type TechnicalAnalyzer interface {
	AnalyzeTechnical(ctx context.Context, ticker string) (domain.TechnicalResult, error)
}

type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, ticker string) (domain.SentimentResult, error)
}

// Recorder receives per-query outcomes. A nil Recorder is allowed.
type Recorder interface {
	ObserveQuery(action domain.Action, elapsed time.Duration)
	ObserveToolFailure(tool domain.Tool, code domain.ErrorCode)
}

type Options struct {
	// Timeout bounds one whole query. Zero means no bound beyond ctx.
	Timeout  time.Duration
	Parallel bool
	Recorder Recorder
}

// Supervisor answers one query per HandleQuery call: validate, extract the
// ticker, select tools, run them with failure isolation, synthesize.
type Supervisor struct {
	tracer      trace.Tracer
	logger      zerolog.Logger
	technical   TechnicalAnalyzer
	sentiment   SentimentAnalyzer
	synthesizer *Synthesizer
	opts        Options
	now         func() time.Time
}

func New(tracer trace.Tracer, logger zerolog.Logger, technical TechnicalAnalyzer, sentiment SentimentAnalyzer, opts Options) *Supervisor {
	return &Supervisor{
		tracer:      tracer,
		logger:      logger.With().Str("component", "supervisor").Logger(),
		technical:   technical,
		sentiment:   sentiment,
		synthesizer: NewSynthesizer(),
		opts:        opts,
		now:         time.Now,
	}
}

// HandleQuery always returns a Recommendation. Validation and extraction
// failures short-circuit into an ERROR envelope before any tool runs; tool
// failures are embedded in the result; panics become INTERNAL_ERROR.
func (s *Supervisor) HandleQuery(ctx context.Context, text, sessionID string) (rec domain.Recommendation) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "supervisor.handle-query")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic while handling query")
			rec = domain.ErrorRecommendation(rec.Ticker, domain.Internal(nil, "unexpected error: %v", r), s.now())
		}
		span.SetAttributes(
			attribute.String("recommendation", string(rec.Action)),
			attribute.Float64("confidence", rec.Confidence),
		)
		if s.opts.Recorder != nil {
			s.opts.Recorder.ObserveQuery(rec.Action, s.now().Sub(start))
		}
	}()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	q, err := domain.NewQuery(text, sessionID)
	if err != nil {
		s.logger.Info().Err(err).Msg("query rejected")
		return domain.ErrorRecommendation("", err, s.now())
	}

	ticker, err := ExtractTicker(q.Text)
	if err == nil {
		q, err = q.WithTicker(ticker)
	}
	if err != nil {
		s.logger.Info().Err(err).Str("session_id", q.SessionID).Msg("no ticker in query")
		return domain.ErrorRecommendation("", err, s.now())
	}

	tools := SelectTools(q.Text)
	span.SetAttributes(
		attribute.String("ticker", q.Ticker),
		attribute.Bool("tool.technical", tools.Technical),
		attribute.Bool("tool.sentiment", tools.Sentiment),
	)
	s.logger.Info().
		Str("ticker", q.Ticker).
		Str("session_id", q.SessionID).
		Interface("tools", tools.Tools()).
		Msg("handling query")

	tech, sent := s.invoke(ctx, q.Ticker, tools)
	rec = s.synthesizer.Synthesize(q.Ticker, tech, sent)

	s.logger.Info().
		Str("ticker", rec.Ticker).
		Str("recommendation", string(rec.Action)).
		Float64("confidence", rec.Confidence).
		Dur("elapsed", s.now().Sub(start)).
		Msg("query complete")
	return rec
}

// invoke runs the selected tools. Unselected tools yield nil; selected tools
// always yield a result, errored if the tool failed.
func (s *Supervisor) invoke(ctx context.Context, ticker string, tools domain.ToolSet) (*domain.TechnicalResult, *domain.SentimentResult) {
	var (
		tech *domain.TechnicalResult
		sent *domain.SentimentResult
	)
	runTech := func() {
		r := s.runTechnical(ctx, ticker)
		tech = &r
	}
	runSent := func() {
		r := s.runSentiment(ctx, ticker)
		sent = &r
	}

	if !s.opts.Parallel {
		if tools.Technical {
			runTech()
		}
		if tools.Sentiment {
			runSent()
		}
		return tech, sent
	}

	// Tool errors are folded into results, so the group never fails.
	var g errgroup.Group
	if tools.Technical {
		g.Go(func() error { runTech(); return nil })
	}
	if tools.Sentiment {
		g.Go(func() error { runSent(); return nil })
	}
	_ = g.Wait()
	return tech, sent
}

func (s *Supervisor) runTechnical(ctx context.Context, ticker string) (res domain.TechnicalResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.FailedTechnical(ticker, domain.Internal(nil, "technical analysis panicked: %v", r), s.now())
		}
		if res.Failed() {
			s.toolFailed(domain.ToolTechnical, ticker, res.Error)
		}
	}()
	if s.technical == nil {
		return domain.FailedTechnical(ticker, domain.Unavailable(nil, "technical analysis is not configured"), s.now())
	}
	r, err := s.technical.AnalyzeTechnical(ctx, ticker)
	if err != nil {
		return domain.FailedTechnical(ticker, classify(err), s.now())
	}
	return r
}

func (s *Supervisor) runSentiment(ctx context.Context, ticker string) (res domain.SentimentResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.FailedSentiment(ticker, domain.Internal(nil, "sentiment analysis panicked: %v", r), s.now())
		}
		if res.Failed() {
			s.toolFailed(domain.ToolSentiment, ticker, res.Error)
		}
	}()
	if s.sentiment == nil {
		return domain.FailedSentiment(ticker, domain.Unavailable(nil, "sentiment analysis is not configured"), s.now())
	}
	r, err := s.sentiment.AnalyzeSentiment(ctx, ticker)
	if err != nil {
		return domain.FailedSentiment(ticker, classify(err), s.now())
	}
	return r
}

func (s *Supervisor) toolFailed(tool domain.Tool, ticker string, info *domain.ErrorInfo) {
	s.logger.Warn().
		Str("tool", string(tool)).
		Str("ticker", ticker).
		Str("code", string(info.Code)).
		Msg(info.Message)
	if s.opts.Recorder != nil {
		s.opts.Recorder.ObserveToolFailure(tool, info.Code)
	}
}

// classify keeps typed errors and maps untyped ones onto the taxonomy.
func classify(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Timeout(err, "analysis timed out")
	}
	return domain.Unavailable(err, "analysis failed")
}
