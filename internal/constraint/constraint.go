// Package constraint holds the read-only translation constraints of a job:
// glossary terms with fixed per-language translations, brand terms that must
// survive translation verbatim, and character-length budgets derived from
// the original text length and per-language expansion behavior. A Set is
// seeded once at job start and shared across concurrent batch workers
// without locking.
package constraint

import (
	"math"
	"regexp"
	"strings"
)

// Glossary maps a lowercased source term to its fixed translation per
// lowercased target language.
type Glossary map[string]map[string]string

// For returns the term→translation mapping for one target language.
func (g Glossary) For(targetLang string) map[string]string {
	lang := strings.ToLower(targetLang)
	out := map[string]string{}
	for term, byLang := range g {
		if t, ok := byLang[lang]; ok {
			out[term] = t
		}
	}
	return out
}

// Apply substitutes every glossary term appearing in text (whole-word,
// case-insensitive) with its fixed translation for targetLang, unless the
// occurrence already is the target form.
func (g Glossary) Apply(text, targetLang string) string {
	for term, target := range g.For(targetLang) {
		if strings.EqualFold(term, target) {
			continue
		}
		re := wordPattern(term)
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			if strings.EqualFold(match, target) {
				return match
			}
			return target
		})
	}
	return text
}

// BrandTerms is the set of strings that must appear byte-identical in
// translated output wherever they appeared in the source.
type BrandTerms []string

// Missing returns the brand terms present in original but absent (verbatim)
// from translated.
func (b BrandTerms) Missing(original, translated string) []string {
	var missing []string
	for _, term := range b {
		if term == "" {
			continue
		}
		if wordPattern(term).MatchString(original) && !strings.Contains(translated, term) {
			missing = append(missing, term)
		}
	}
	return missing
}

// Restore rewrites case-mangled or accent-garbled occurrences of brand
// terms back to their exact source casing. Terms the model dropped entirely
// cannot be repaired here; Review flags those as brand_term_lost.
func (b BrandTerms) Restore(original, translated string) string {
	for _, term := range b {
		if term == "" || !wordPattern(term).MatchString(original) {
			continue
		}
		translated = wordPattern(term).ReplaceAllString(translated, term)
	}
	return translated
}

// wordPattern compiles a whole-word case-insensitive matcher for term.
func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}

// Limits computes per-item character budgets. Factors maps a lowercased
// target-language name or code to its base expansion factor; languages not
// listed use Default.
type Limits struct {
	Factors map[string]float64 `mapstructure:"factors"`
	Default float64            `mapstructure:"default"`
}

const (
	// shortText is the length at and below which the full short-string
	// headroom multiplier applies.
	shortText = 10
	// longText is the length at and above which the budget tapers down to
	// the plain base factor.
	longText = 30
	// shortHeadroom doubles the base factor for very short UI strings
	// ("OK", "Play") whose translations routinely need far more relative
	// room than running copy.
	shortHeadroom = 2.0

	defaultFactor = 1.3
)

// Factor returns the base expansion factor for targetLang.
func (l Limits) Factor(targetLang string) float64 {
	if f, ok := l.Factors[strings.ToLower(targetLang)]; ok && f > 0 {
		return f
	}
	if l.Default > 0 {
		return l.Default
	}
	return defaultFactor
}

// Budget returns the maximum permitted character count for a translation of
// a string of originalLen characters into targetLang. The multiplier is
// nonlinear: up to 2× the base factor at ≤10 characters, tapering linearly
// to the base factor at ≥30.
func (l Limits) Budget(originalLen int, targetLang string) int {
	if originalLen <= 0 {
		return 0
	}
	base := l.Factor(targetLang)
	mult := base * shortHeadroom
	switch {
	case originalLen >= longText:
		mult = base
	case originalLen > shortText:
		span := float64(longText - shortText)
		frac := float64(originalLen-shortText) / span
		mult = base*shortHeadroom - frac*base*(shortHeadroom-1)
	}
	return int(math.Ceil(float64(originalLen) * mult))
}

// Set bundles the constraints of one job.
type Set struct {
	Glossary Glossary
	Brand    BrandTerms
	Limits   Limits
}

// Defaults returns the constraint set of the reference deployment (a poker
// training site). Real deployments override all three tables through
// configuration.
func Defaults() Set {
	return Set{
		Glossary: Glossary{
			"grinders": {"portuguese": "jogadores dedicados", "spanish": "jugadores dedicados"},
			"gto":      {"portuguese": "GTO (Teoria dos Jogos Otimizada)", "spanish": "GTO (Teoría de Juegos Óptima)"},
			"icm":      {"portuguese": "ICM (Modelo de Fichas Independentes)", "spanish": "ICM (Modelo de Fichas Independientes)"},
			"hh":       {"portuguese": "histórico de mãos", "spanish": "historial de manos"},
			"sims":     {"portuguese": "simulações", "spanish": "simulaciones"},
		},
		Brand: BrandTerms{"Octopi", "George", "Vault", "Trainer"},
		Limits: Limits{
			Default: defaultFactor,
			Factors: map[string]float64{
				"spanish":    1.25,
				"portuguese": 1.25,
				"french":     1.3,
				"german":     1.4,
				"italian":    1.25,
			},
		},
	}
}
