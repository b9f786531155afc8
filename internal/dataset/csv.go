package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var requiredColumns = []string{
	"section", "question_number", "main_question", "sub_question",
	"full_question", "image_url", "solution",
	"option_1", "option_2", "option_3", "option_4",
	"feedback_1", "feedback_2", "feedback_3", "feedback_4",
	"correct_option", "min_value", "max_value", "units",
}

// LoadCSV reads and indexes a question CSV file.
func LoadCSV(path string) (*Dataset, []Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	rows, err := ParseCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	d, problems := New(rows)
	return d, problems, nil
}

// ParseCSV decodes question rows from a UTF-8 (BOM-tolerant) CSV stream.
// Columns are resolved by header name. A blank section drops the row;
// a non-numeric correct_option means "absent", never an error.
func ParseCSV(r io.Reader) ([]QuestionRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	field := func(rec []string, name string) string {
		i := col[name]
		if i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []QuestionRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		section := strings.TrimSpace(field(rec, "section"))
		if section == "" {
			continue
		}
		row := QuestionRow{
			Section:        section,
			QuestionNumber: strings.TrimSpace(field(rec, "question_number")),
			MainQuestion:   strings.TrimSpace(field(rec, "main_question")),
			SubQuestion:    field(rec, "sub_question"),
			FullQuestion:   field(rec, "full_question"),
			ImageURL:       strings.TrimSpace(field(rec, "image_url")),
			Solution:       field(rec, "solution"),
			CorrectOption:  parseOptionIndex(field(rec, "correct_option")),
			MinValue:       parseFloatOrNaN(field(rec, "min_value")),
			MaxValue:       parseFloatOrNaN(field(rec, "max_value")),
			Units:          strings.TrimSpace(field(rec, "units")),
		}
		for i := 0; i < 4; i++ {
			row.Options[i] = Option{
				Text:     field(rec, "option_"+strconv.Itoa(i+1)),
				Feedback: field(rec, "feedback_"+strconv.Itoa(i+1)),
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseOptionIndex(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	n := int(v)
	if n < 1 || n > 4 {
		return 0
	}
	return n
}

func parseFloatOrNaN(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
