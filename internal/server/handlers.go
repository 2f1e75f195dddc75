package server

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rurban/mysqldiff/internal/differ"
	"github.com/rurban/mysqldiff/internal/loader"
	"github.com/rurban/mysqldiff/internal/model"
)

// diffRequest is the body of POST /v1/diff and /v1/refs. Either the dump
// pair or the DSN pair is supplied, matching the CLI's file-vs-live
// loader choice.
type diffRequest struct {
	SourceDump string        `json:"source_dump"`
	TargetDump string        `json:"target_dump"`
	SourceDSN  string        `json:"source_dsn"`
	TargetDSN  string        `json:"target_dsn"`
	Options    requestOptions `json:"options"`
}

type requestOptions struct {
	TableRE       string `json:"table_re"`
	OnlyBoth      bool   `json:"only_both"`
	KeepOldTables bool   `json:"keep_old_tables"`
	ListTables    bool   `json:"list_tables"`
	NoOldDefs     bool   `json:"no_old_defs"`
	Tolerant      bool   `json:"tolerant"`
	SaveQuotes    bool   `json:"save_quotes"`
}

func (o requestOptions) toDifferOptions(refs bool) (differ.Options, error) {
	opts := differ.Options{
		Refs:          refs,
		OnlyBoth:      o.OnlyBoth,
		KeepOldTables: o.KeepOldTables,
		ListTables:    o.ListTables,
		NoOldDefs:     o.NoOldDefs,
		Tolerant:      o.Tolerant,
		SaveQuotes:    o.SaveQuotes,
	}
	if o.TableRE != "" {
		re, err := regexp.Compile(o.TableRE)
		if err != nil {
			return differ.Options{}, err
		}
		opts.TableRE = re
	}
	return opts, nil
}

type planResponse struct {
	Statements     []planStatement `json:"statements"`
	WorkaroundUsed bool            `json:"workaround_used"`
	ProcedureName  string          `json:"procedure_name,omitempty"`
}

type planStatement struct {
	SQL      string `json:"sql"`
	Priority int    `json:"priority"`
}

func toPlanResponse(p *differ.Plan) planResponse {
	resp := planResponse{
		WorkaroundUsed: p.WorkaroundUsed,
		ProcedureName:  p.ProcedureName,
	}
	for _, s := range p.Statements {
		resp.Statements = append(resp.Statements, planStatement{SQL: s.SQL, Priority: s.Priority})
	}
	return resp
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	s.handlePlan(w, r, "diff", func(ctx context.Context, req diffRequest) (*differ.Plan, error) {
		opts, err := req.Options.toDifferOptions(false)
		if err != nil {
			return nil, err
		}
		source, err := s.loadSchema(ctx, req.SourceDump, req.SourceDSN, opts.SaveQuotes)
		if err != nil {
			return nil, err
		}
		target, err := s.loadSchema(ctx, req.TargetDump, req.TargetDSN, opts.SaveQuotes)
		if err != nil {
			return nil, err
		}
		return differ.Diff(source, target, opts), nil
	})
}

func (s *Server) handleRefs(w http.ResponseWriter, r *http.Request) {
	s.handlePlan(w, r, "refs", func(ctx context.Context, req diffRequest) (*differ.Plan, error) {
		opts, err := req.Options.toDifferOptions(true)
		if err != nil {
			return nil, err
		}
		source, err := s.loadSchema(ctx, req.SourceDump, req.SourceDSN, opts.SaveQuotes)
		if err != nil {
			return nil, err
		}
		return differ.Refs(source, opts), nil
	})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request, mode string, run func(context.Context, diffRequest) (*differ.Plan, error)) {
	var req diffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	plan, err := run(r.Context(), req)
	s.metrics.DiffDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for _, stmt := range plan.Statements {
		s.metrics.PlanStatements.WithLabelValues(priorityLabel(stmt.Priority)).Inc()
	}

	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(plan.String()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(toPlanResponse(plan))
}

func (s *Server) loadSchema(ctx context.Context, dump, dsn string, saveQuotes bool) (*model.Schema, error) {
	if dsn != "" {
		return loader.FromMySQL(ctx, dsn)
	}
	return loader.ParseDumpText(dump, saveQuotes)
}

func priorityLabel(p int) string {
	switch {
	case p >= 9:
		return "9"
	case p <= 0:
		return "0"
	default:
		return string(rune('0' + p))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
