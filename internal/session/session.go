// Package session holds the state of one reconciliation run, from upload to
// submission, and the workflow that moves it forward.
package session

import (
	"time"

	"github.com/freitasmatheusrn/supplier-sync/internal/normalizer"
	"github.com/freitasmatheusrn/supplier-sync/internal/reconcile"
	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
	"github.com/freitasmatheusrn/supplier-sync/internal/submission"
	"github.com/freitasmatheusrn/supplier-sync/internal/synthesis"
)

type Session struct {
	ID         string                        `json:"id"`
	Source     string                        `json:"source"`
	SubClassID string                        `json:"sub_class_id,omitempty"`
	CreatedAt  time.Time                     `json:"created_at"`
	Table      *normalizer.Table             `json:"table"`
	Parent     *synthesis.ParentMeta         `json:"parent,omitempty"`
	Suppliers  []synthesis.SupplierMeta      `json:"suppliers,omitempty"`
	Master     []reconcile.MasterRow         `json:"master,omitempty"`
	Result     *reconcile.Result             `json:"result,omitempty"`
	Records    []synthesis.Record            `json:"records,omitempty"`
	Operations synthesis.DimensionOperations `json:"operations"`
	Inserted   int                           `json:"inserted"`
}

// CommonRow is a matched pair annotated with what differs.
type CommonRow struct {
	reconcile.Pair
	URLStatus   string `json:"url_status"`
	PriceStatus string `json:"price_status"`
}

type View struct {
	ID         string                        `json:"id"`
	Source     string                        `json:"source"`
	SubClassID string                        `json:"sub_class_id,omitempty"`
	Headers    []string                      `json:"headers"`
	Rules      rules.RuleSet                 `json:"rules"`
	Rows       []normalizer.Row              `json:"rows"`
	Parent     *synthesis.ParentMeta         `json:"parent,omitempty"`
	Compared   bool                          `json:"compared"`
	Common     []CommonRow                   `json:"common"`
	Missing    []normalizer.Row              `json:"missing"`
	AllMatch   bool                          `json:"all_match"`
	Records    []synthesis.Record            `json:"records"`
	Operations synthesis.DimensionOperations `json:"operations"`
	Inserted   int                           `json:"inserted"`
}

func (s *Session) View() *View {
	v := &View{
		ID:         s.ID,
		Source:     s.Source,
		SubClassID: s.SubClassID,
		Parent:     s.Parent,
		Records:    s.Records,
		Operations: s.Operations,
		Inserted:   s.Inserted,
		Common:     []CommonRow{},
		Missing:    []normalizer.Row{},
	}
	if s.Table != nil {
		v.Headers = s.Table.Headers
		v.Rules = s.Table.Rules
		v.Rows = s.Table.Rows
	}
	if s.Result != nil {
		v.Compared = true
		for _, p := range s.Result.Common {
			v.Common = append(v.Common, CommonRow{Pair: p, URLStatus: p.URLStatus(), PriceStatus: p.PriceStatus()})
		}
		if s.Result.Missing != nil {
			v.Missing = s.Result.Missing
		}
		v.AllMatch = reconcile.AllMatch(s.Result.Common)
	}
	if v.Records == nil {
		v.Records = []synthesis.Record{}
	}
	return v
}

type MoveColumnInput struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type CompareInput struct {
	ParentName string `json:"parent_name"`
}

type UpdateCommonInput struct {
	// ItemIDs restricts the update to these items; empty means every pending
	// update.
	ItemIDs []int `json:"item_ids"`
}

type FailureView struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Error string `json:"error"`
}

type SubmitOutput struct {
	Outcome     submission.Outcome `json:"outcome"`
	Total       int                `json:"total"`
	Succeeded   int                `json:"succeeded"`
	Failed      int                `json:"failed"`
	Failures    []FailureView      `json:"failures"`
	Error       string             `json:"error,omitempty"`
	Unavailable bool               `json:"-"`
}

type ParentSummary struct {
	ID         int    `json:"id"`
	ParentNoDE string `json:"parent_no_de"`
	NameEN     string `json:"parent_name_en"`
}

// SSE progress events

type ProgressEventType string

const (
	ProgressEventStart    ProgressEventType = "start"
	ProgressEventChunk    ProgressEventType = "chunk"
	ProgressEventError    ProgressEventType = "error"
	ProgressEventComplete ProgressEventType = "complete"
)

type ProgressEvent struct {
	Type      ProgressEventType `json:"type"`
	Chunk     int               `json:"chunk,omitempty"`
	Chunks    int               `json:"chunks,omitempty"`
	Processed int               `json:"processed"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Message   string            `json:"message,omitempty"`
	Result    *SubmitOutput     `json:"result,omitempty"`
}

type ProgressCallback func(event ProgressEvent)
