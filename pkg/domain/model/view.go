package model

import "fmt"

const (
	BadgeAuthentic    = "Authentic"
	BadgeAIGenerated  = "AI Generated"
	ClassAuthentic    = "authentic"
	ClassNotAuthentic = "not-authentic"
	ClassManipulated  = "manipulated"
)

// ResultView is the rendered projection of an AnalysisResult
type ResultView struct {
	Badge           string
	BadgeClass      string
	Percentage      int
	ScoreText       string
	ConfidenceLabel string
	IsAuthentic     bool
	Models          []ModelRow
}

// ModelRow is one line of the per-model breakdown
type ModelRow struct {
	Name        string
	Status      string
	StatusClass string
	Percentage  int
	ScoreText   string
}

// RenderResult projects a result into its view. Model rows keep the server order.
func RenderResult(result *AnalysisResult, category MediaCategory) *ResultView {
	authentic := result.Score.IsAuthentic()
	view := &ResultView{
		Badge:           BadgeAIGenerated,
		BadgeClass:      ClassNotAuthentic,
		Percentage:      result.Score.Percentage(),
		ConfidenceLabel: category.Label() + " Deepfake Probability",
		IsAuthentic:     authentic,
	}
	if authentic {
		view.Badge = BadgeAuthentic
		view.BadgeClass = ClassAuthentic
	}
	view.ScoreText = fmt.Sprintf("%d%%", view.Percentage)

	for _, m := range result.Models {
		row := ModelRow{
			Name:        m.Name,
			Status:      m.DisplayStatus(),
			StatusClass: ClassManipulated,
			Percentage:  m.Score.Percentage(),
		}
		if m.Score.IsAuthentic() {
			row.StatusClass = ClassAuthentic
		}
		row.ScoreText = fmt.Sprintf("%d%%", row.Percentage)
		view.Models = append(view.Models, row)
	}

	return view
}
