package analysis

import (
	"fmt"
	"strconv"

	"reportai-backend/report/model"
)

type fallbackText struct {
	summaryFormat    string
	findings         []string
	measurementRange string
	outliers         string
	recommendations  []string
	conclusion       string
}

var fallbacks = map[model.Language]fallbackText{
	model.LanguageEN: {
		summaryFormat: "This is a sample report for %s analysis. " +
			"The measurement data reveals several interesting observations.",
		findings: []string{
			"Measurement values are generally within expected ranges",
			"Minor variations observed across different measurement points",
			"All quality control limits are met",
		},
		measurementRange: "Variation within normal limits",
		outliers:         "No significant outliers detected",
		recommendations: []string{
			"Continue measurements with current methodology",
			"Document all deviations systematically",
			"Verify calibration on regular basis",
		},
		conclusion: "The measurement results are reliable and meet quality requirements.",
	},
	model.LanguageFI: {
		summaryFormat: "Tämä on esimerkkiraportti %s-tyyppiselle analyysille. " +
			"Mittausdatasta löytyi useita mielenkiintoisia havaintoja.",
		findings: []string{
			"Mittausarvot ovat pääosin odotusten mukaisia",
			"Havaittu pieni vaihtelu eri mittauspisteissä",
			"Laadunvalvontarajat täyttyvät kaikissa tapauksissa",
		},
		measurementRange: "Vaihteluväli on normaali",
		outliers:         "Ei merkittäviä poikkeamia havaittu",
		recommendations: []string{
			"Jatka mittauksia nykyisellä metodologialla",
			"Dokumentoi kaikki poikkeamat",
			"Tarkista kalibrointi säännöllisesti",
		},
		conclusion: "Mittaustulokset ovat luotettavia ja vastaavat laadullisia vaatimuksia.",
	},
}

// Fallback returns the deterministic analysis for a language. Unknown
// languages get the English text.
func Fallback(summary Summary, templateType string, lang model.Language) model.AnalysisResult {
	text, ok := fallbacks[lang]
	if !ok {
		text = fallbacks[model.LanguageEN]
	}
	if templateType == "" {
		templateType = model.DefaultTemplateType
	}
	return model.AnalysisResult{
		ExecutiveSummary: fmt.Sprintf(text.summaryFormat, templateType),
		KeyFindings:      append([]string(nil), text.findings...),
		StatisticalAnalysis: FlattenStatistics(map[string]any{
			"sample_count":      strconv.Itoa(summary.Rows),
			"measurement_range": text.measurementRange,
			"outliers":          text.outliers,
		}),
		Recommendations: append([]string(nil), text.recommendations...),
		Conclusion:      text.conclusion,
	}
}
