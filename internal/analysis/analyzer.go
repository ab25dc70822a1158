// Package analysis produces a threat verdict for a piece of user content by
// combining two independent checks: an LLM pass for scams and fake news, and
// a Safe Browsing lookup for malicious URLs. The checks share no state and
// run concurrently.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	openaigo "github.com/openai/openai-go/v3"
	"golang.org/x/sync/errgroup"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

const quotaReason = "⚠️ El análisis automático está temporalmente deshabilitado. Respuesta simulada: Tu mensaje parece seguro."

// ScamChecker is the LLM half of the verdict.
type ScamChecker interface {
	CheckScamAndFakeNews(ctx context.Context, text string) (Outcome, error)
}

// VirusChecker is the URL-reputation half of the verdict.
type VirusChecker interface {
	Lookup(ctx context.Context, urls []string) (bool, error)
}

type Analyzer struct {
	scam  ScamChecker
	virus VirusChecker
}

func NewAnalyzer(scam ScamChecker, virus VirusChecker) *Analyzer {
	return &Analyzer{scam: scam, virus: virus}
}

// Analyze runs both checks concurrently and merges their results. A virus
// lookup failure degrades to hasVirus=false rather than failing the whole
// verdict; an LLM quota error degrades to a simulated-safe outcome with an
// explanatory reason.
func (a *Analyzer) Analyze(ctx context.Context, text string) (Outcome, error) {
	urls := urlPattern.FindAllString(text, -1)

	var (
		scamOutcome Outcome
		hasVirus    bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := a.scam.CheckScamAndFakeNews(gctx, text)
		if err != nil {
			if isQuotaError(err) {
				scamOutcome = Outcome{Reason: quotaReason}
				return nil
			}
			return fmt.Errorf("scam check: %w", err)
		}
		scamOutcome = out
		return nil
	})
	g.Go(func() error {
		hit, err := a.virus.Lookup(gctx, urls)
		if err != nil {
			// Reputation lookup is best-effort; the LLM verdict still stands.
			return nil
		}
		hasVirus = hit
		return nil
	})
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}

	scamOutcome.HasVirus = hasVirus
	return scamOutcome, nil
}

func isQuotaError(err error) bool {
	var apiErr *openaigo.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 {
			return true
		}
	}
	return strings.Contains(err.Error(), "insufficient_quota")
}
