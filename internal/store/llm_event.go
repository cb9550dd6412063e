package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var llmRequestColumns = []string{
	"id", "created_at", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

// eventRepo implements EventRepo on the llm_requests table.
type eventRepo struct {
	conn
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, e LLMRequest) error {
	query, args := r.build().Insert(LlmRequestsTable.Name).
		Columns(llmRequestColumns[1:]...).
		Values(millis(e.CreatedAt), e.Provider, e.Model, e.Purpose, e.InputTokens, e.OutputTokens,
			e.LatencyMs, e.Success, e.ErrorMessage, e.RequestBody, e.ResponseBody).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) ListLLMRequests(ctx context.Context, f LLMFilter) ([]LLMRequest, error) {
	sel := r.build().Select(llmRequestColumns...).
		From(r.build().Table(LlmRequestsTable.Name)).
		OrderBy(entsql.Desc("id"))
	if f.Purpose != "" {
		sel.Where(entsql.EQ("purpose", f.Purpose))
	}
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	query, args := sel.Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM request events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequest
	for rows.Next() {
		e, err := scanLLMRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM request event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMRequest(ctx context.Context, id int64) (LLMRequest, error) {
	query, args := r.build().Select(llmRequestColumns...).
		From(r.build().Table(LlmRequestsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	e, err := scanLLMRequest(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return LLMRequest{}, fmt.Errorf("get LLM request event %d: %w", id, mapError(err))
	}
	return e, nil
}

func (r *eventRepo) LLMUsage(ctx context.Context) ([]LLMUsage, error) {
	query, args := r.build().Select(
		"purpose", "model",
		entsql.Count("*"),
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
		entsql.Sum("latency_ms"),
	).
		From(r.build().Table(LlmRequestsTable.Name)).
		GroupBy("purpose", "model").
		OrderBy("purpose", "model").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate LLM usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Purpose, &u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.LatencyMs); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanLLMRequest(s scanner) (LLMRequest, error) {
	var (
		e       LLMRequest
		created int64
	)
	err := s.Scan(&e.ID, &created, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens, &e.OutputTokens,
		&e.LatencyMs, &e.Success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	if err != nil {
		return LLMRequest{}, err
	}
	e.CreatedAt = fromMillis(created)
	return e, nil
}
