package services

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/logger"
)

const (
	maxCompetitors       = 10
	maxCompetitorNameLen = 60
	maxBareNameWords     = 4
	maxSWOTItems         = 6

	// DefaultFinancialDocs is the number of collected documents mined for revenue.
	DefaultFinancialDocs = 9

	noRevenueNote = "No revenue series found in PDFs. Ensure annual report PDFs were captured."
)

// lineKind classifies a line of generated report text.
type lineKind int

const (
	lineBlank lineKind = iota
	lineCompetitorHeading
	lineSectionHeading
	lineQuadrantHeading
	linePair
	lineBullet
	lineText
)

// classifiedLine is a line with its kind and the payload relevant to that kind.
type classifiedLine struct {
	kind     lineKind
	name     string // pair name or bullet text
	desc     string
	quadrant string
}

var (
	competitorHeading = regexp.MustCompile(`(?i)^\s*competitor`)
	sectionHeading    = regexp.MustCompile(`(?i)^\s*(company overview|main products|market position|financial summary|swot)`)
	bareCompetitor    = regexp.MustCompile(`^[-*•]\s*([A-Za-z0-9&.\- ]+)$`)
	swotBullet        = regexp.MustCompile(`^[-*]\s*(.+)`)

	revenuePattern = regexp.MustCompile(`(?i)(revenue|net sales|sales)\s*(?:in|for|,)?\s*(?P<year>(20[0-9]{2}|19[0-9]{2}))?.{0,40}?(?P<curr>USD|US\$|\$|EUR|€)?\s*(?P<amt>[0-9][0-9,.\s]*)(?P<unit>billion|million|B|M)?`)
)

// classifyCompetitorLine tags a trimmed line for competitor extraction.
func classifyCompetitorLine(s string) classifiedLine {
	switch {
	case s == "":
		return classifiedLine{kind: lineBlank}
	case competitorHeading.MatchString(s):
		return classifiedLine{kind: lineCompetitorHeading}
	case sectionHeading.MatchString(s):
		return classifiedLine{kind: lineSectionHeading}
	}
	if name, desc, ok := strings.Cut(s, ":"); ok {
		return classifiedLine{
			kind: linePair,
			name: strings.TrimSpace(strings.TrimLeft(name, "-*• ")),
			desc: strings.TrimSpace(desc),
		}
	}
	if m := bareCompetitor.FindStringSubmatch(s); m != nil {
		return classifiedLine{kind: lineBullet, name: strings.TrimSpace(m[1])}
	}
	return classifiedLine{kind: lineText}
}

// ExtractCompetitors mines "name: descriptor" pairs and short bare bullet names
// from the competitors part of report text. Names are deduplicated
// case-insensitively and at most ten are returned.
func ExtractCompetitors(text string) []domain.Competitor {
	var items []domain.Competitor
	inSection := false

	for _, raw := range strings.Split(text, "\n") {
		line := classifyCompetitorLine(strings.TrimSpace(raw))
		switch line.kind {
		case lineBlank:
			continue
		case lineCompetitorHeading:
			inSection = true
			continue
		case lineSectionHeading:
			inSection = false
		}
		if !inSection {
			continue
		}

		switch line.kind {
		case linePair:
			if line.name != "" && line.desc != "" && len(line.name) <= maxCompetitorNameLen {
				items = append(items, domain.Competitor{Name: line.name, Description: line.desc})
			}
		case lineBullet:
			if len(strings.Fields(line.name)) <= maxBareNameWords {
				items = append(items, domain.Competitor{Name: line.name})
			}
		}
	}

	out := []domain.Competitor{}
	seen := make(map[string]struct{})
	for _, it := range items {
		key := strings.ToLower(it.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
		if len(out) == maxCompetitors {
			break
		}
	}
	return out
}

// classifySWOTLine tags a trimmed line for SWOT extraction. Any line naming a
// quadrant switches to it.
func classifySWOTLine(s string) classifiedLine {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "strength"):
		return classifiedLine{kind: lineQuadrantHeading, quadrant: "strengths"}
	case strings.Contains(lower, "weakness"):
		return classifiedLine{kind: lineQuadrantHeading, quadrant: "weaknesses"}
	case strings.Contains(lower, "opportunit"):
		return classifiedLine{kind: lineQuadrantHeading, quadrant: "opportunities"}
	case strings.Contains(lower, "threat"):
		return classifiedLine{kind: lineQuadrantHeading, quadrant: "threats"}
	}
	if m := swotBullet.FindStringSubmatch(s); m != nil {
		return classifiedLine{kind: lineBullet, name: strings.TrimSpace(m[1])}
	}
	if s == "" {
		return classifiedLine{kind: lineBlank}
	}
	return classifiedLine{kind: lineText}
}

// ExtractSWOT groups bullet lines under the most recent quadrant heading,
// keeping at most six per quadrant.
func ExtractSWOT(text string) domain.SWOT {
	quadrants := map[string][]string{}
	current := ""

	for _, raw := range strings.Split(text, "\n") {
		line := classifySWOTLine(strings.TrimSpace(raw))
		switch line.kind {
		case lineQuadrantHeading:
			current = line.quadrant
		case lineBullet:
			if current != "" {
				quadrants[current] = append(quadrants[current], line.name)
			}
		}
	}

	take := func(q string) []string {
		items := quadrants[q]
		if len(items) > maxSWOTItems {
			items = items[:maxSWOTItems]
		}
		if items == nil {
			items = []string{}
		}
		return items
	}
	return domain.SWOT{
		Strengths:     take("strengths"),
		Weaknesses:    take("weaknesses"),
		Opportunities: take("opportunities"),
		Threats:       take("threats"),
	}
}

// ParseRevenueLine extracts a yearly revenue figure in billions of USD from
// one line of document text. EUR amounts are converted at eurusd.
// Lines without a plausible year or amount yield false.
func ParseRevenueLine(line string, eurusd float64) (domain.RevenuePoint, bool) {
	m := revenuePattern.FindStringSubmatch(line)
	if m == nil {
		return domain.RevenuePoint{}, false
	}
	group := func(name string) string {
		return m[revenuePattern.SubexpIndex(name)]
	}

	amtRaw := strings.NewReplacer(",", "", " ", "", "\t", "", "\n", "", "\r", "").Replace(group("amt"))
	val, err := strconv.ParseFloat(amtRaw, 64)
	if err != nil {
		return domain.RevenuePoint{}, false
	}
	unit := strings.ToLower(group("unit"))
	if unit == "million" || unit == "m" {
		val /= 1000
	}

	currency := ""
	switch strings.ToUpper(group("curr")) {
	case "USD", "US$", "$":
		currency = "USD"
	case "EUR", "€":
		currency = "EUR"
	}
	if currency == "EUR" {
		val *= eurusd
	}
	if val < 0.05 || val > 500 {
		return domain.RevenuePoint{}, false
	}

	year, err := strconv.Atoi(group("year"))
	if err != nil || year < 1990 || year > 2100 {
		return domain.RevenuePoint{}, false
	}
	if currency == "" {
		currency = "USD"
	}

	return domain.RevenuePoint{
		Year:        year,
		ValueBilUSD: math.Round(val*1000) / 1000,
		Currency:    currency,
		Raw:         strings.TrimSpace(line),
	}, true
}

// ExtractFinancials mines a yearly revenue series from up to maxDocs collected
// documents, keeping the largest figure per year. The series is cached.
func (a *ResearchAgent) ExtractFinancials(ctx context.Context, maxDocs int) domain.FinancialSeries {
	if maxDocs <= 0 {
		maxDocs = DefaultFinancialDocs
	}

	var deep domain.DeepCollection
	if _, err := a.deps.Cache.Get(ctx, a.profile.Name, domain.CacheKeyDeepCollect, &deep); err != nil {
		logger.Warn("Reading deep collect cache: %v", err)
	}
	docs := deep.Downloaded
	if len(docs) > maxDocs {
		docs = docs[:maxDocs]
	}

	byYear := map[int]domain.RevenuePoint{}
	for _, d := range docs {
		text := a.extractText(ctx, d.Path)
		if text == "" {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			p, ok := ParseRevenueLine(line, a.settings.Research.EURUSDRate)
			if !ok {
				continue
			}
			p.Source = d.URL
			if cur, seen := byYear[p.Year]; !seen || p.ValueBilUSD > cur.ValueBilUSD {
				byYear[p.Year] = p
			}
		}
	}

	series := make([]domain.RevenuePoint, 0, len(byYear))
	for _, p := range byYear {
		series = append(series, p)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })

	out := domain.FinancialSeries{Series: series}
	if len(series) == 0 {
		out.Notes = noRevenueNote
	}

	if err := a.deps.Cache.Put(ctx, a.profile.Name, domain.CacheKeyFinancials, out); err != nil {
		logger.Warn("Writing financials cache: %v", err)
	}
	return out
}
