// Package pipeline sequences matching, detection, benefits math, savings
// allocation and summarization over one case.
package pipeline

import (
	"fmt"
	"math"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/billcheck/internal/benefits"
	"github.com/gyeh/billcheck/internal/config"
	"github.com/gyeh/billcheck/internal/idgen"
	"github.com/gyeh/billcheck/internal/match"
	"github.com/gyeh/billcheck/internal/metrics"
	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/rules"
	"github.com/gyeh/billcheck/internal/savings"
	"github.com/gyeh/billcheck/internal/summary"
)

// benefitsSource names the benefits engine in faults and diagnostics.
const benefitsSource = "benefits"

// Engine is stateless between runs; one value can analyze many cases
// concurrently as long as its id generator is safe for concurrent use.
type Engine struct {
	Rules    config.RuleConfig
	Suite    *rules.Suite
	Benefits benefits.Engine
	IDs      idgen.Generator
	Log      zerolog.Logger
	Metrics  *metrics.Metrics
}

// New returns an engine over the full rule catalog.
func New(cfg config.RuleConfig, workers int, ids idgen.Generator, log zerolog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		Rules:   cfg,
		Suite:   rules.NewSuite(workers),
		IDs:     ids,
		Log:     log,
		Metrics: m,
	}
}

// Run analyzes c. It returns an error only when c violates the input
// contract; rule faults are isolated and reported in Diagnostics.
func (e *Engine) Run(c *model.Case) (*model.AnalyzerResult, error) {
	start := time.Now()
	if err := model.Validate(c); err != nil {
		e.Metrics.ObserveRejected()
		return nil, err
	}
	log := e.Log.With().Str("case_id", c.CaseID).Logger()

	matches := match.Align(c)
	network := match.InferNetwork(c.LineItems)
	in := rules.NewInput(c, matches, network, e.Rules)

	var (
		wg             sync.WaitGroup
		found, benefit []model.Detection
		faults         []rules.Fault
		benefitFault   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		found, faults = e.Suite.Run(in)
	}()
	go func() {
		defer wg.Done()
		benefit, benefitFault = e.evaluateBenefits(c)
	}()
	wg.Wait()
	if benefitFault != nil {
		faults = append(faults, rules.Fault{RuleKey: benefitsSource, Err: benefitFault})
	}

	res := &model.AnalyzerResult{
		CaseID:       c.CaseID,
		DocumentMeta: c.Meta,
		LineItems:    c.LineItems,
		Matches:      matches,
	}

	var faulted []string
	for _, f := range faults {
		log.Error().Str("rule", f.RuleKey).Err(f.Err).Msg("rule faulted, findings dropped")
		res.Diagnostics = append(res.Diagnostics, model.Diagnostic{Source: f.RuleKey, Message: firstLine(f.Err.Error())})
		faulted = append(faulted, f.RuleKey)
	}

	all := append(found, benefit...)
	for i := range all {
		res.Diagnostics = append(res.Diagnostics, dropUnknownRefs(&all[i], in.ByID, log)...)
		all[i].DetectionID = e.IDs.Next()
	}

	res.Detections, res.Savings = savings.Allocate(all, c.LineItems)
	if err := savings.CheckNoDoubleCount(res.Detections); err != nil {
		log.Error().Err(err).Msg("savings allocation invariant violated")
	}
	res.PricedSummary = summary.Build(c, e.Rules)
	res.Confidence = Score(c, res.Detections)

	elapsed := time.Since(start)
	e.Metrics.ObserveRun(res, faulted, elapsed)
	log.Info().
		Int("lines", len(c.LineItems)).
		Int("detections", len(res.Detections)).
		Int("faults", len(faults)).
		Int64("savings_cents", res.Savings.TotalCents).
		Dur("duration", elapsed).
		Msg("analysis complete")
	return res, nil
}

func (e *Engine) evaluateBenefits(c *model.Case) (out []model.Detection, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = fmt.Errorf("benefits engine panicked: %v\n%s", p, debug.Stack())
		}
	}()
	return e.Benefits.Evaluate(c), nil
}

// dropUnknownRefs removes evidence line ids that are not in the case.
func dropUnknownRefs(d *model.Detection, byID map[string]*model.LineItem, log zerolog.Logger) []model.Diagnostic {
	var diags []model.Diagnostic
	kept := d.Evidence.LineRefs[:0:0]
	for _, ref := range d.Evidence.LineRefs {
		if _, ok := byID[ref]; ok {
			kept = append(kept, ref)
			continue
		}
		log.Error().Str("rule", d.RuleKey).Str("line_id", ref).Msg("evidence references unknown line, dropped")
		diags = append(diags, model.Diagnostic{
			Source:  d.RuleKey,
			Message: fmt.Sprintf("dropped evidence reference to unknown line %q", ref),
		})
	}
	if len(diags) > 0 {
		d.Evidence.LineRefs = kept
	}
	return diags
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// Confidence weights.
const (
	weightOCR       = 0.4
	weightParsing   = 0.3
	weightDetection = 0.3
)

// Score blends OCR quality, parsing completeness and detection certainty
// into 0-100 values rounded to one decimal.
//
// OCR is the mean artifact OCR confidence (1 when no artifact reports one).
// Parsing is the share of lines carrying a code, a date of service and a
// charge. Detection is the mean finding confidence (1 when nothing was
// found, since no finding was degraded).
func Score(c *model.Case, ds []model.Detection) model.Confidence {
	ocr, n := 0.0, 0
	for _, a := range c.Artifacts {
		if a.OCRConfidence > 0 {
			ocr += a.OCRConfidence
			n++
		}
	}
	if n > 0 {
		ocr /= float64(n)
	} else {
		ocr = 1
	}

	parsing := 0.0
	for _, l := range c.LineItems {
		present := 0
		if l.Code != "" {
			present++
		}
		if l.DOS != "" {
			present++
		}
		if l.ChargeCents != nil {
			present++
		}
		parsing += float64(present) / 3
	}
	if len(c.LineItems) > 0 {
		parsing /= float64(len(c.LineItems))
	}

	detection := 1.0
	if len(ds) > 0 {
		detection = 0
		for _, d := range ds {
			detection += d.Confidence
		}
		detection /= float64(len(ds))
	}

	return model.Confidence{
		Overall:   pct(weightOCR*ocr + weightParsing*parsing + weightDetection*detection),
		OCR:       pct(ocr),
		Parsing:   pct(parsing),
		Detection: pct(detection),
	}
}

func pct(v float64) float64 {
	return math.Round(v*1000) / 10
}
