package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const textSize = 2147483647

var (
	// QuizzesColumns holds the columns for the "quizzes" table.
	QuizzesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "course_id", Type: field.TypeString, Default: ""},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "description", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "questions", Type: field.TypeString, Size: textSize},
		{Name: "settings", Type: field.TypeString, Size: textSize},
		{Name: "published", Type: field.TypeBool, Default: false},
		{Name: "question_count", Type: field.TypeInt, Default: 0},
		{Name: "total_points", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	// QuizzesTable holds the schema information for the "quizzes" table.
	QuizzesTable = &schema.Table{
		Name:       "quizzes",
		Columns:    QuizzesColumns,
		PrimaryKey: []*schema.Column{QuizzesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quiz_course_id", Columns: []*schema.Column{QuizzesColumns[1]}},
		},
	}

	// AttemptsColumns holds the columns for the "attempts" table.
	AttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "quiz_id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString},
		{Name: "number", Type: field.TypeInt},
		{Name: "answers", Type: field.TypeString, Size: textSize},
		{Name: "correct", Type: field.TypeString, Size: textSize},
		{Name: "score", Type: field.TypeInt},
		{Name: "earned_points", Type: field.TypeInt},
		{Name: "total_points", Type: field.TypeInt},
		{Name: "passed", Type: field.TypeBool},
		{Name: "time_spent", Type: field.TypeInt},
		{Name: "started_at", Type: field.TypeInt64},
		{Name: "submitted_at", Type: field.TypeInt64},
		{Name: "feedback", Type: field.TypeString, Size: textSize, Nullable: true},
	}
	// AttemptsTable holds the schema information for the "attempts" table.
	AttemptsTable = &schema.Table{
		Name:       "attempts",
		Columns:    AttemptsColumns,
		PrimaryKey: []*schema.Column{AttemptsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "attempts_quizzes_attempts",
				Columns:    []*schema.Column{AttemptsColumns[1]},
				RefColumns: []*schema.Column{QuizzesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "attempt_quiz_id_user_id_number",
				Unique:  true,
				Columns: []*schema.Column{AttemptsColumns[1], AttemptsColumns[2], AttemptsColumns[3]},
			},
			{
				Name:    "attempt_user_id_submitted_at",
				Columns: []*schema.Column{AttemptsColumns[2], AttemptsColumns[12]},
			},
		},
	}

	// UnlocksColumns holds the columns for the "unlocks" table.
	UnlocksColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "quiz_id", Type: field.TypeString, Size: 36},
		{Name: "unlocked_at", Type: field.TypeInt64},
	}
	// UnlocksTable holds the schema information for the "unlocks" table.
	UnlocksTable = &schema.Table{
		Name:       "unlocks",
		Columns:    UnlocksColumns,
		PrimaryKey: []*schema.Column{UnlocksColumns[0], UnlocksColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "unlocks_quizzes_unlocks",
				Columns:    []*schema.Column{UnlocksColumns[1]},
				RefColumns: []*schema.Column{QuizzesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// LlmRequestsColumns holds the columns for the "llm_requests" table.
	LlmRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	// LlmRequestsTable holds the schema information for the "llm_requests" table.
	LlmRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    LlmRequestsColumns,
		PrimaryKey: []*schema.Column{LlmRequestsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequest_purpose", Columns: []*schema.Column{LlmRequestsColumns[4]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		QuizzesTable,
		AttemptsTable,
		UnlocksTable,
		LlmRequestsTable,
	}
)

func init() {
	AttemptsTable.ForeignKeys[0].RefTable = QuizzesTable
	UnlocksTable.ForeignKeys[0].RefTable = QuizzesTable
}

// migrate creates missing tables, columns and indexes. Columns are never
// dropped.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(true))
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}
