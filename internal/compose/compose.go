// Package compose turns an analysis outcome into the user-facing response
// text plus a short summary label for the feedback log. Severity ranking:
// an active threat (virus) outranks deceptive content (scam, fake news),
// which outranks informational verdicts (verified, safe).
package compose

import (
	"strings"

	"github.com/itsGabo22/GuardianDigitalBot/internal/analysis"
)

const (
	virusResponse = "☣️ ¡Peligro de Virus! El enlace podría ser malicioso. Te recomiendo no abrirlo."
	virusSummary  = "Peligro de Virus Detectado"

	scamTitle   = "⚠️ ¡Alerta de Estafa!"
	scamSummary = "Estafa Detectada"

	fakeNewsTitle   = "📰 ¡Noticia Falsa Detectada!"
	fakeNewsSummary = "Noticia Falsa Detectada"

	verifiedPrefix  = "✔️ Información Verificada."
	verifiedSummary = "Información Verificada"

	safePrefix  = "✅ Tu mensaje parece seguro."
	safeSummary = "Mensaje Seguro"
)

// Result carries what the user reads and what the feedback log records.
type Result struct {
	ResponseText    string
	AnalysisSummary string
}

// Compose is deterministic and pure. A virus verdict is exclusive: scam and
// fake-news flags are ignored when HasVirus is set. Otherwise scam and
// fake-news combine additively, scam title first, with the analyzer's reason
// appearing exactly once.
func Compose(outcome analysis.Outcome) Result {
	if outcome.HasVirus {
		return Result{ResponseText: virusResponse, AnalysisSummary: virusSummary}
	}

	var titles, labels []string
	if outcome.IsScam {
		titles = append(titles, scamTitle)
		labels = append(labels, scamSummary)
	}
	if outcome.IsFakeNews {
		titles = append(titles, fakeNewsTitle)
		labels = append(labels, fakeNewsSummary)
	}
	if len(titles) > 0 {
		return Result{
			ResponseText:    strings.Join(titles, " ") + " " + outcome.Reason,
			AnalysisSummary: strings.Join(labels, ", "),
		}
	}

	if outcome.IsVerifiedTrue {
		return Result{
			ResponseText:    verifiedPrefix + " " + outcome.Reason,
			AnalysisSummary: verifiedSummary,
		}
	}

	return Result{
		ResponseText:    safePrefix + " " + outcome.Reason,
		AnalysisSummary: safeSummary,
	}
}
