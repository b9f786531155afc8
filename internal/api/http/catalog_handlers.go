package http

import (
	"net/http"

	"github.com/kinelab/biomech-tutor/internal/dataset"
)

type questionSummary struct {
	MainQuestion   string `json:"main_question"`
	QuestionNumber string `json:"question_number"`
	Steps          int    `json:"steps"`
}

type sectionSummary struct {
	Name      string            `json:"name"`
	Questions []questionSummary `json:"questions"`
}

// ListSectionsHandler returns the public catalog: sections and their
// questions in dataset row order. No answer data crosses this boundary.
func ListSectionsHandler(ds *dataset.Dataset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]sectionSummary, 0, len(ds.Sections()))
		for _, name := range ds.Sections() {
			qs, err := ds.Questions(name)
			if err != nil {
				continue
			}
			sec := sectionSummary{Name: name, Questions: make([]questionSummary, 0, len(qs))}
			for _, q := range qs {
				sec.Questions = append(sec.Questions, questionSummary{
					MainQuestion:   q.MainQuestion,
					QuestionNumber: q.QuestionNumber,
					Steps:          len(q.Steps),
				})
			}
			out = append(out, sec)
		}
		writeJSON(w, map[string]any{"sections": out})
	}
}
