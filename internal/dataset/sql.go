package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"math"
)

const selectRows = `SELECT section, question_number, main_question, sub_question,
	full_question, image_url, solution,
	option_1, option_2, option_3, option_4,
	feedback_1, feedback_2, feedback_3, feedback_4,
	correct_option, min_value, max_value, units
	FROM question_rows ORDER BY seq`

// LoadSQL reads and indexes the question_rows table. Row order follows
// insertion order, mirroring the CSV contract.
func LoadSQL(ctx context.Context, db *sql.DB) (*Dataset, []Problem, error) {
	rows, err := db.QueryContext(ctx, selectRows)
	if err != nil {
		return nil, nil, fmt.Errorf("query question_rows: %w", err)
	}
	defer rows.Close()

	var all []QuestionRow
	for rows.Next() {
		var (
			r        QuestionRow
			img, sol sql.NullString
			opt, fb  [4]sql.NullString
			correct  sql.NullInt64
			min, max sql.NullFloat64
		)
		if err := rows.Scan(
			&r.Section, &r.QuestionNumber, &r.MainQuestion, &r.SubQuestion,
			&r.FullQuestion, &img, &sol,
			&opt[0], &opt[1], &opt[2], &opt[3],
			&fb[0], &fb[1], &fb[2], &fb[3],
			&correct, &min, &max, &r.Units,
		); err != nil {
			return nil, nil, fmt.Errorf("scan question_rows: %w", err)
		}
		r.ImageURL = img.String
		r.Solution = sol.String
		for i := 0; i < 4; i++ {
			r.Options[i] = Option{Text: opt[i].String, Feedback: fb[i].String}
		}
		if correct.Valid {
			r.CorrectOption = int(correct.Int64)
		}
		r.MinValue, r.MaxValue = math.NaN(), math.NaN()
		if min.Valid {
			r.MinValue = min.Float64
		}
		if max.Valid {
			r.MaxValue = max.Float64
		}
		if r.Section == "" {
			continue
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	d, problems := New(all)
	return d, problems, nil
}

// SaveRows appends rows to the question_rows table inside one transaction.
// Used by the question-bank importer.
func SaveRows(ctx context.Context, db *sql.DB, rows []QuestionRow) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insert = `INSERT INTO question_rows
		(section, question_number, main_question, sub_question,
		 full_question, image_url, solution,
		 option_1, option_2, option_3, option_4,
		 feedback_1, feedback_2, feedback_3, feedback_4,
		 correct_option, min_value, max_value, units)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`
	for _, r := range rows {
		var correct any
		if r.CorrectOption != 0 {
			correct = r.CorrectOption
		}
		var min, max any
		if !math.IsNaN(r.MinValue) {
			min = r.MinValue
		}
		if !math.IsNaN(r.MaxValue) {
			max = r.MaxValue
		}
		if _, err := tx.ExecContext(ctx, insert,
			r.Section, r.QuestionNumber, r.MainQuestion, r.SubQuestion,
			r.FullQuestion, r.ImageURL, r.Solution,
			r.Options[0].Text, r.Options[1].Text, r.Options[2].Text, r.Options[3].Text,
			r.Options[0].Feedback, r.Options[1].Feedback, r.Options[2].Feedback, r.Options[3].Feedback,
			correct, min, max, r.Units,
		); err != nil {
			return fmt.Errorf("insert question row: %w", err)
		}
	}
	return tx.Commit()
}
