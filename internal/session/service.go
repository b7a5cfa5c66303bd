package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/freitasmatheusrn/supplier-sync/internal/catalog"
	"github.com/freitasmatheusrn/supplier-sync/internal/database"
	"github.com/freitasmatheusrn/supplier-sync/internal/email"
	"github.com/freitasmatheusrn/supplier-sync/internal/identifier"
	"github.com/freitasmatheusrn/supplier-sync/internal/normalizer"
	"github.com/freitasmatheusrn/supplier-sync/internal/reconcile"
	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
	"github.com/freitasmatheusrn/supplier-sync/internal/submission"
	"github.com/freitasmatheusrn/supplier-sync/internal/synthesis"
	"github.com/freitasmatheusrn/supplier-sync/pkg/parser"
	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/freitasmatheusrn/supplier-sync/pkg/sheet"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ConstantsProvider interface {
	Values(ctx context.Context) (map[string]decimal.Decimal, *rest.ApiErr)
}

type SubClassConfig interface {
	AttributeModifications(ctx context.Context, id pgtype.UUID) (rules.RuleSet, *rest.ApiErr)
	DimensionOperations(ctx context.Context, id pgtype.UUID) (synthesis.DimensionOperations, *rest.ApiErr)
}

type CatalogReader interface {
	GetProduct(ctx context.Context, id pgtype.UUID) (*catalog.Product, *rest.ApiErr)
	ListProducts(ctx context.Context, subClassID *pgtype.UUID) ([]catalog.Product, *rest.ApiErr)
}

type Config struct {
	ChunkSize       int
	ItemIDMin       int
	ItemIDMax       int
	MaxAttempts     int
	AlertRecipients []string
}

type Deps struct {
	Store       Store
	Master      MasterData
	Gateway     Gateway
	Constants   ConstantsProvider
	SubClasses  SubClassConfig
	Catalog     CatalogReader
	Engine      *rules.Engine
	Synthesizer *synthesis.Synthesizer
	Email       email.Email
	Logger      *zap.Logger
	// Random feeds identifier minting; nil uses the global generator.
	Random identifier.Source
}

type Service interface {
	Upload(ctx context.Context, filename string, r io.Reader, subClassID string) (*View, *rest.ApiErr)
	FromProduct(ctx context.Context, productID pgtype.UUID) (*View, *rest.ApiErr)
	FromSubClass(ctx context.Context, subClassID pgtype.UUID) (*View, *rest.ApiErr)
	Get(ctx context.Context, id string) (*View, *rest.ApiErr)
	SetRules(ctx context.Context, id string, set rules.RuleSet) (*View, *rest.ApiErr)
	MoveColumn(ctx context.Context, id string, input MoveColumnInput) (*View, *rest.ApiErr)
	Compare(ctx context.Context, id string, input CompareInput) (*View, *rest.ApiErr)
	Synthesize(ctx context.Context, id string) (*View, *rest.ApiErr)
	ApplyDimensionOperations(ctx context.Context, id string, ops synthesis.DimensionOperations) (*View, *rest.ApiErr)
	Submit(ctx context.Context, id string, onProgress ProgressCallback) (*SubmitOutput, *rest.ApiErr)
	UpdateCommon(ctx context.Context, id string, input UpdateCommonInput) (*SubmitOutput, *rest.ApiErr)
	Export(ctx context.Context, id string) (*bytes.Buffer, *rest.ApiErr)
	Delete(ctx context.Context, id string) *rest.ApiErr
	SearchParents(ctx context.Context, term string) ([]ParentSummary, *rest.ApiErr)
}

type svc struct {
	Deps
	cfg Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(deps Deps, cfg Config) Service {
	if deps.Random == nil {
		deps.Random = globalSource{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 100
	}
	if cfg.ItemIDMax <= 0 {
		cfg.ItemIDMin, cfg.ItemIDMax = identifier.DefaultItemIDMin, identifier.DefaultItemIDMax
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = identifier.DefaultMaxAttempts
	}
	return &svc{Deps: deps, cfg: cfg, locks: make(map[string]*sync.Mutex)}
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// lock serializes mutations of one session.
func (s *svc) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *svc) Upload(ctx context.Context, filename string, r io.Reader, subClassID string) (*View, *rest.ApiErr) {
	sh, err := sheet.Read(r, filename)
	if err != nil {
		if errors.Is(err, sheet.ErrUnsupportedFormat) {
			return nil, rest.NewBadRequestError("formato de arquivo nao suportado, use csv ou xlsx")
		}
		s.Logger.Warn("failed to parse upload", zap.String("file", filename), zap.Error(err))
		return nil, rest.NewUnprocessableEntity("erro ao ler arquivo")
	}
	return s.open(ctx, filename, sh.Headers, sh.Rows, subClassID)
}

func (s *svc) FromProduct(ctx context.Context, productID pgtype.UUID) (*View, *rest.ApiErr) {
	p, apiErr := s.Catalog.GetProduct(ctx, productID)
	if apiErr != nil {
		return nil, apiErr
	}
	return s.open(ctx, "catalog:"+p.ID, catalogHeaders, catalog.ToRecords([]catalog.Product{*p}), p.SubClassID)
}

func (s *svc) FromSubClass(ctx context.Context, subClassID pgtype.UUID) (*View, *rest.ApiErr) {
	products, apiErr := s.Catalog.ListProducts(ctx, &subClassID)
	if apiErr != nil {
		return nil, apiErr
	}
	if len(products) == 0 {
		return nil, rest.NewNotFoundError("nenhum produto encontrado para a subclasse")
	}
	id, _ := parser.PgUUIDToString(subClassID)
	return s.open(ctx, "sub-class:"+id, catalogHeaders, catalog.ToRecords(products), id)
}

var catalogHeaders = []string{
	normalizer.ColAttributes1, normalizer.ColAttributes2, normalizer.ColAttributes3,
	normalizer.ColAttributes4, normalizer.ColAttributes5,
	normalizer.ColURL, normalizer.ColPrice,
}

func (s *svc) open(ctx context.Context, source string, headers []string, raw []map[string]string, subClassID string) (*View, *rest.ApiErr) {
	if len(raw) == 0 {
		return nil, rest.NewBadRequestError("arquivo sem linhas")
	}

	sess := &Session{
		ID:         uuid.NewString(),
		Source:     source,
		SubClassID: subClassID,
		CreatedAt:  time.Now(),
		Table:      normalizer.Normalize(headers, raw),
	}

	if subClassID != "" {
		if apiErr := s.loadSubClass(ctx, sess); apiErr != nil {
			return nil, apiErr
		}
	}

	constants, apiErr := s.Constants.Values(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	sess.Table.Recompute(s.Engine, constants)

	if apiErr := s.save(ctx, sess); apiErr != nil {
		return nil, apiErr
	}
	s.Logger.Info("session opened",
		zap.String("session", sess.ID),
		zap.String("source", source),
		zap.Int("rows", len(sess.Table.Rows)),
	)
	return sess.View(), nil
}

// loadSubClass applies the rules and dimension formulas saved for the
// session's sub-class. Saved rules for columns the upload lacks are ignored.
func (s *svc) loadSubClass(ctx context.Context, sess *Session) *rest.ApiErr {
	id, err := parser.PgUUIDFromString(sess.SubClassID)
	if err != nil {
		return rest.NewBadRequestError("id da subclasse invalido")
	}
	saved, apiErr := s.SubClasses.AttributeModifications(ctx, id)
	if apiErr != nil {
		return apiErr
	}
	for column, rule := range saved {
		_ = sess.Table.SetRule(column, rule)
	}
	ops, apiErr := s.SubClasses.DimensionOperations(ctx, id)
	if apiErr != nil {
		return apiErr
	}
	sess.Operations = ops
	return nil
}

func (s *svc) Get(ctx context.Context, id string) (*View, *rest.ApiErr) {
	sess, apiErr := s.load(ctx, id)
	if apiErr != nil {
		return nil, apiErr
	}
	return sess.View(), nil
}

func (s *svc) SetRules(ctx context.Context, id string, set rules.RuleSet) (*View, *rest.ApiErr) {
	return s.mutate(ctx, id, func(sess *Session) *rest.ApiErr {
		for column, rule := range set {
			if err := sess.Table.SetRule(column, rule); err != nil {
				return rest.NewBadRequestError(fmt.Sprintf("coluna %s nao existe na tabela", column))
			}
		}
		return s.recompute(ctx, sess)
	})
}

func (s *svc) MoveColumn(ctx context.Context, id string, input MoveColumnInput) (*View, *rest.ApiErr) {
	return s.mutate(ctx, id, func(sess *Session) *rest.ApiErr {
		if err := sess.Table.MoveColumn(input.From, input.To); err != nil {
			return rest.NewBadRequestError("posicao de coluna invalida")
		}
		return s.recompute(ctx, sess)
	})
}

// recompute rebuilds the rows and drops the comparison made on the old ones.
func (s *svc) recompute(ctx context.Context, sess *Session) *rest.ApiErr {
	constants, apiErr := s.Constants.Values(ctx)
	if apiErr != nil {
		return apiErr
	}
	sess.Table.Recompute(s.Engine, constants)
	sess.Result = nil
	return nil
}

func (s *svc) Compare(ctx context.Context, id string, input CompareInput) (*View, *rest.ApiErr) {
	if input.ParentName == "" {
		return nil, rest.NewBadRequestError("nome do produto pai e obrigatorio")
	}
	return s.mutate(ctx, id, func(sess *Session) *rest.ApiErr {
		parent, suppliers, master, err := s.Master.FetchByParentName(ctx, input.ParentName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return rest.NewNotFoundError("produto pai nao encontrado")
			}
			return s.handleDBError("fetching master data", err)
		}

		if err := reconcile.CheckAttributeCounts(sess.Table.Rows, master); err != nil {
			return rest.NewBadRequestError(err.Error())
		}

		if sess.Parent != nil && sess.Parent.ID != parent.ID {
			sess.Records = nil
		}
		result := reconcile.Reconcile(master, sess.Table.Rows)
		sess.Parent = &parent
		sess.Suppliers = suppliers
		sess.Master = master
		sess.Result = &result

		s.Logger.Info("session compared",
			zap.String("session", sess.ID),
			zap.String("parent_no_de", parent.ParentNoDE),
			zap.Int("common", len(result.Common)),
			zap.Int("missing", len(result.Missing)),
		)
		return nil
	})
}

func (s *svc) Synthesize(ctx context.Context, id string) (*View, *rest.ApiErr) {
	return s.mutate(ctx, id, func(sess *Session) *rest.ApiErr {
		if sess.Result == nil || sess.Parent == nil {
			return rest.NewBadRequestError("compare a tabela antes de gerar registros")
		}
		if len(sess.Result.Missing) == 0 {
			return nil
		}

		eans, itemIDs, err := s.Master.UsedIdentifiers(ctx)
		if err != nil {
			return s.handleDBError("loading used identifiers", err)
		}
		for _, r := range sess.Records {
			eans = append(eans, r.TItem.EAN)
			itemIDs = append(itemIDs, r.VariationValues.ItemNoDE)
		}
		reg := identifier.NewRegistry(s.Random, eans, itemIDs,
			identifier.WithItemIDRange(s.cfg.ItemIDMin, s.cfg.ItemIDMax),
			identifier.WithMaxAttempts(s.cfg.MaxAttempts),
		)

		constants, apiErr := s.Constants.Values(ctx)
		if apiErr != nil {
			return apiErr
		}

		fresh, err := s.Synthesizer.Synthesize(synthesis.Batch{
			Missing:    sess.Result.Missing,
			Existing:   sess.Records,
			Parent:     *sess.Parent,
			Suppliers:  sess.Suppliers,
			Operations: sess.Operations,
			Constants:  constants,
		}, reg)
		if err != nil {
			return synthesisError(err)
		}
		sess.Records = synthesis.Merge(sess.Records, fresh)
		return nil
	})
}

func synthesisError(err error) *rest.ApiErr {
	var vErr *synthesis.ValidationError
	switch {
	case errors.As(err, &vErr) && errors.Is(err, synthesis.ErrZeroWeight):
		causes := make([]rest.Causes, 0, len(vErr.URLs))
		for _, u := range vErr.URLs {
			causes = append(causes, rest.Causes{Field: "weight", Message: u})
		}
		return rest.NewBadRequestValidationError("existem registros com peso zero", causes)
	case errors.Is(err, synthesis.ErrNoSupplier):
		return rest.NewBadRequestError("produto pai sem fornecedor cadastrado")
	case errors.Is(err, identifier.ErrCapacityExhausted):
		return rest.NewConflictError("nao ha identificadores disponiveis")
	}
	return rest.NewInternalServerError("erro ao gerar registros")
}

func (s *svc) ApplyDimensionOperations(ctx context.Context, id string, ops synthesis.DimensionOperations) (*View, *rest.ApiErr) {
	return s.mutate(ctx, id, func(sess *Session) *rest.ApiErr {
		sess.Operations = ops
		if len(sess.Records) == 0 {
			return nil
		}
		constants, apiErr := s.Constants.Values(ctx)
		if apiErr != nil {
			return apiErr
		}
		sess.Records = s.Synthesizer.ApplyDimensionOperations(sess.Records, ops, constants)
		return nil
	})
}

func (s *svc) Submit(ctx context.Context, id string, onProgress ProgressCallback) (*SubmitOutput, *rest.ApiErr) {
	unlock := s.lock(id)
	defer unlock()

	sess, apiErr := s.load(ctx, id)
	if apiErr != nil {
		return nil, apiErr
	}
	if len(sess.Records) == 0 {
		return nil, rest.NewBadRequestError("nenhum registro para enviar")
	}
	if err := synthesis.ValidateWeights(sess.Records); err != nil {
		return nil, synthesisError(err)
	}

	records := sess.Records
	emit(onProgress, ProgressEvent{Type: ProgressEventStart, Total: len(records)})
	report, err := submission.Submit(ctx, records, s.cfg.ChunkSize, insertChunk(s.Gateway),
		submission.WithProgress(func(p submission.Progress) {
			emit(onProgress, chunkEvent(p))
		}),
	)

	done := min(report.ChunksDone*s.cfg.ChunkSize, len(records))
	sess.Records = append(report.FailedItems(), records[done:]...)
	sess.Inserted += report.SuccessCount

	out := buildOutput(report, err, func(r synthesis.Record) string { return r.SupplierItem.URL })
	s.logSubmission("records submitted", sess, out)
	if out.Outcome != submission.OutcomeSuccess {
		s.notifyFailure("Falha no envio de registros", sess, out)
	}

	if apiErr := s.save(context.WithoutCancel(ctx), sess); apiErr != nil {
		return nil, apiErr
	}
	emit(onProgress, ProgressEvent{
		Type:      ProgressEventComplete,
		Processed: done,
		Total:     len(records),
		Succeeded: out.Succeeded,
		Failed:    out.Failed,
		Result:    out,
	})
	return out, nil
}

func (s *svc) UpdateCommon(ctx context.Context, id string, input UpdateCommonInput) (*SubmitOutput, *rest.ApiErr) {
	unlock := s.lock(id)
	defer unlock()

	sess, apiErr := s.load(ctx, id)
	if apiErr != nil {
		return nil, apiErr
	}
	if sess.Result == nil {
		return nil, rest.NewBadRequestError("compare a tabela antes de atualizar")
	}

	pending := reconcile.PendingUpdates(sess.Result.Common)
	if len(input.ItemIDs) > 0 {
		wanted := make(map[int]struct{}, len(input.ItemIDs))
		for _, itemID := range input.ItemIDs {
			wanted[itemID] = struct{}{}
		}
		filtered := pending[:0:0]
		for _, u := range pending {
			if _, ok := wanted[u.ItemID]; ok {
				filtered = append(filtered, u)
			}
		}
		pending = filtered
	}
	if len(pending) == 0 {
		return &SubmitOutput{Outcome: submission.OutcomeSuccess, Failures: []FailureView{}}, nil
	}

	report, err := submission.Submit(ctx, pending, s.cfg.ChunkSize, updateChunk(s.Gateway))

	failed := make(map[int]struct{}, report.FailedCount)
	for _, f := range report.Failed {
		failed[f.Item.ItemID] = struct{}{}
	}
	done := min(report.ChunksDone*s.cfg.ChunkSize, len(pending))
	confirmed := make(map[int]struct{}, done)
	for _, u := range pending[:done] {
		if _, ok := failed[u.ItemID]; !ok {
			confirmed[u.ItemID] = struct{}{}
		}
	}

	sess.Result.Common = reconcile.ApplyConfirmed(sess.Result.Common, confirmed)
	for i := range sess.Master {
		for _, p := range sess.Result.Common {
			if _, ok := confirmed[p.DB.ItemID]; ok && p.DB.ItemID == sess.Master[i].ItemID {
				sess.Master[i] = p.DB
			}
		}
	}
	for _, p := range sess.Result.Common {
		if _, ok := confirmed[p.DB.ItemID]; ok {
			s.Logger.Info("supplier item updated",
				zap.String("session", sess.ID),
				zap.String("parent_no_de", p.DB.ParentNoDE),
				zap.String("item_name", p.DB.ItemName),
				zap.String("ean", p.DB.EAN),
				zap.Strings("values_en", []string{p.DB.ValueEN, p.DB.ValueEN2, p.DB.ValueEN3}),
				zap.String("url", p.DB.URL),
				zap.String("price_rmb", p.DB.PriceRMB),
			)
		}
	}

	out := buildOutput(report, err, func(u reconcile.SupplierUpdate) string { return u.EAN })
	s.logSubmission("supplier fields updated", sess, out)
	if out.Outcome != submission.OutcomeSuccess {
		s.notifyFailure("Falha na atualizacao de fornecedores", sess, out)
	}

	if apiErr := s.save(context.WithoutCancel(ctx), sess); apiErr != nil {
		return nil, apiErr
	}
	return out, nil
}

var exportHeaders = []string{
	"parent_no_de", "itemID_DE", "item_no_de", "ean", "item_name", "item_name_de", "item_name_cn",
	"value_de", "value_de_2", "value_de_3", "supplier_id", "url", "RMB_Price",
	"weight", "height", "width", "length", "supp_cat", "tariff_code", "taric_id",
}

func (s *svc) Export(ctx context.Context, id string) (*bytes.Buffer, *rest.ApiErr) {
	sess, apiErr := s.load(ctx, id)
	if apiErr != nil {
		return nil, apiErr
	}
	if len(sess.Records) == 0 {
		return nil, rest.NewBadRequestError("nenhum registro para exportar")
	}

	rows := make([][]any, 0, len(sess.Records))
	for _, r := range sess.Records {
		rows = append(rows, []any{
			r.TItem.ParentNoDE, r.TItem.ItemIDDE, r.VariationValues.ItemNoDE, r.TItem.EAN,
			r.TItem.ItemName, r.TItem.ItemNameDE, r.TItem.ItemNameCN,
			r.VariationValues.ValueDE, r.VariationValues.ValueDE2, r.VariationValues.ValueDE3,
			r.SupplierItem.SupplierID, r.SupplierItem.URL, r.TItem.RMBPrice,
			r.TItem.Weight, r.TItem.Height, r.TItem.Width, r.TItem.Length,
			r.TItem.SuppCat, r.TItem.TariffCode, r.TItem.TaricID,
		})
	}
	buf, err := sheet.WriteXLSX("Registros", exportHeaders, rows)
	if err != nil {
		s.Logger.Error("failed to export records", zap.String("session", id), zap.Error(err))
		return nil, rest.NewInternalServerError("erro ao gerar planilha")
	}
	return buf, nil
}

func (s *svc) Delete(ctx context.Context, id string) *rest.ApiErr {
	unlock := s.lock(id)
	defer unlock()

	if err := s.Store.Delete(ctx, id); err != nil {
		s.Logger.Error("failed to delete session", zap.String("session", id), zap.Error(err))
		return rest.NewInternalServerError("erro ao remover sessao")
	}
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
	return nil
}

func (s *svc) SearchParents(ctx context.Context, term string) ([]ParentSummary, *rest.ApiErr) {
	if term == "" {
		return nil, rest.NewBadRequestError("termo de busca e obrigatorio")
	}
	parents, err := s.Master.SearchParents(ctx, term)
	if err != nil {
		return nil, s.handleDBError("searching parents", err)
	}
	if parents == nil {
		parents = []ParentSummary{}
	}
	return parents, nil
}

// mutate runs fn on the stored session under its lock and saves the result.
func (s *svc) mutate(ctx context.Context, id string, fn func(sess *Session) *rest.ApiErr) (*View, *rest.ApiErr) {
	unlock := s.lock(id)
	defer unlock()

	sess, apiErr := s.load(ctx, id)
	if apiErr != nil {
		return nil, apiErr
	}
	if apiErr := fn(sess); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := s.save(ctx, sess); apiErr != nil {
		return nil, apiErr
	}
	return sess.View(), nil
}

func (s *svc) load(ctx context.Context, id string) (*Session, *rest.ApiErr) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, rest.NewNotFoundError("sessao nao encontrada")
		}
		s.Logger.Error("failed to load session", zap.String("session", id), zap.Error(err))
		return nil, rest.NewServiceUnavailableError("armazenamento de sessao indisponivel")
	}
	return sess, nil
}

func (s *svc) save(ctx context.Context, sess *Session) *rest.ApiErr {
	if err := s.Store.Save(ctx, sess); err != nil {
		s.Logger.Error("failed to save session", zap.String("session", sess.ID), zap.Error(err))
		return rest.NewServiceUnavailableError("armazenamento de sessao indisponivel")
	}
	return nil
}

func (s *svc) handleDBError(op string, err error) *rest.ApiErr {
	if database.IsUnavailable(err) {
		s.Logger.Warn(op, zap.Error(err))
		return rest.NewServiceUnavailableError("banco de dados indisponivel")
	}
	s.Logger.Error(op, zap.Error(err))
	return rest.NewInternalServerError("erro ao consultar banco de dados")
}

func (s *svc) logSubmission(msg string, sess *Session, out *SubmitOutput) {
	fields := []zap.Field{
		zap.String("session", sess.ID),
		zap.String("outcome", string(out.Outcome)),
		zap.Int("total", out.Total),
		zap.Int("succeeded", out.Succeeded),
		zap.Int("failed", out.Failed),
	}
	if out.Outcome == submission.OutcomeSuccess {
		s.Logger.Info(msg, fields...)
		return
	}
	s.Logger.Warn(msg, append(fields, zap.String("error", out.Error))...)
}

func buildOutput[T any](report submission.Report[T], err error, keyOf func(T) string) *SubmitOutput {
	out := &SubmitOutput{
		Outcome:   report.Outcome(),
		Total:     report.Total,
		Succeeded: report.SuccessCount,
		Failed:    report.FailedCount,
		Failures:  make([]FailureView, 0, len(report.Failed)),
	}
	for _, f := range report.Failed {
		out.Failures = append(out.Failures, FailureView{Index: f.Index, Key: keyOf(f.Item), Error: f.Err.Error()})
	}
	if err != nil {
		out.Outcome = submission.OutcomeAborted
		out.Error = err.Error()
		out.Unavailable = database.IsUnavailable(err)
	}
	return out
}

func chunkEvent(p submission.Progress) ProgressEvent {
	return ProgressEvent{
		Type:      ProgressEventChunk,
		Chunk:     p.Chunk,
		Chunks:    p.Chunks,
		Processed: p.Processed,
		Total:     p.Total,
		Succeeded: p.Succeeded,
		Failed:    p.Failed,
	}
}

func emit(cb ProgressCallback, event ProgressEvent) {
	if cb != nil {
		cb(event)
	}
}
