package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/youth-camp-api/internal/models"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
)

// Header aliases for the payment reference column, in priority order.
var referenceHeaders = []string{"ref_number", "reference", "ref"}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ErrMissingReferenceColumn is returned for statements without any reference header.
var ErrMissingReferenceColumn = errors.New("no ref_number, reference or ref column")

// ParsePaymentCSV reads a bank or mobile-money statement with a header row.
// Any structural problem, such as a row with the wrong number of fields,
// fails the whole file. Rows whose reference is empty are dropped.
func ParsePaymentCSV(r io.Reader) ([]models.PaymentReference, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	refCols := make([]int, 0, len(referenceHeaders))
	for _, name := range referenceHeaders {
		if i, ok := index[name]; ok {
			refCols = append(refCols, i)
		}
	}
	if len(refCols) == 0 {
		return nil, ErrMissingReferenceColumn
	}

	field := func(rec []string, name string) string {
		if i, ok := index[name]; ok {
			return rec[i]
		}
		return ""
	}

	refs := make([]models.PaymentReference, 0)
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		ref := ""
		for _, i := range refCols {
			if rec[i] != "" {
				ref = rec[i]
				break
			}
		}
		if ref == "" {
			continue
		}
		refs = append(refs, models.PaymentReference{
			Reference: ref,
			Amount:    parseAmount(field(rec, "amount")),
			Phone:     field(rec, "phone"),
			Date:      field(rec, "date"),
		})
	}
	return refs, nil
}

// parseAmount reads the leading number of s, or 0 when there is none.
func parseAmount(s string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

type orderTransitioner interface {
	Verify(ctx context.Context, id string) (*models.TShirtOrder, error)
	Cancel(ctx context.Context, id string) (*models.TShirtOrder, error)
}

// Reconciler matches payment references against pending orders.
type Reconciler struct {
	orders  orderTransitioner
	metrics *MetricsService
	logger  *zap.Logger
}

func NewReconciler(orders orderTransitioner, metrics *MetricsService, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{orders: orders, metrics: metrics, logger: logger}
}

// Reconcile walks refs in order. Each reference is matched exactly against
// the orders still pending in this run: one match is verified, several are
// all cancelled as duplicates, none counts as no match. Orders transitioned
// by an earlier row leave the pool, so a reference repeated later in the same
// file finds nothing. Failed transitions are logged, not counted, and the
// order stays in the pool. Only ctx cancellation stops the run early.
func (r *Reconciler) Reconcile(ctx context.Context, refs []models.PaymentReference, pending []models.TShirtOrder) (models.ReconciliationReport, error) {
	pool := make(map[string][]string)
	for _, o := range pending {
		if o.Status != models.OrderPending {
			continue
		}
		pool[o.PaymentReference] = append(pool[o.PaymentReference], o.ID)
	}

	var report models.ReconciliationReport
	failed := 0
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			r.record(report, failed)
			return report, err
		}
		if ref.Reference == "" {
			continue
		}

		matches := pool[ref.Reference]
		switch len(matches) {
		case 0:
			report.NoMatchCount++
		case 1:
			if _, err := r.orders.Verify(ctx, matches[0]); err != nil {
				failed++
				r.logger.Warn("reconcile verify failed", zap.String("order_id", matches[0]), zap.String("reference", ref.Reference), zap.Error(err))
				continue
			}
			report.VerifiedCount++
			delete(pool, ref.Reference)
		default:
			remaining := matches[:0:0]
			for _, id := range matches {
				if _, err := r.orders.Cancel(ctx, id); err != nil {
					failed++
					remaining = append(remaining, id)
					r.logger.Warn("reconcile cancel failed", zap.String("order_id", id), zap.String("reference", ref.Reference), zap.Error(err))
					continue
				}
				report.DuplicateCount++
			}
			if len(remaining) == 0 {
				delete(pool, ref.Reference)
			} else {
				pool[ref.Reference] = remaining
			}
		}
	}

	r.record(report, failed)
	return report, nil
}

func (r *Reconciler) record(report models.ReconciliationReport, failed int) {
	r.metrics.RecordReconciliation(OutcomeVerified, report.VerifiedCount)
	r.metrics.RecordReconciliation(OutcomeDuplicate, report.DuplicateCount)
	r.metrics.RecordReconciliation(OutcomeNoMatch, report.NoMatchCount)
	r.metrics.RecordReconciliation(OutcomeFailed, failed)
}

type reconciliationOrders interface {
	orderTransitioner
	ListPending(ctx context.Context, sel models.EditionSelection) ([]models.TShirtOrder, error)
	List(ctx context.Context, filter models.TShirtOrderFilter) ([]models.TShirtOrder, error)
}

// ReconciliationResult is the report plus the order list as reloaded afterwards.
type ReconciliationResult struct {
	models.ReconciliationReport
	Orders []models.TShirtOrder `json:"orders"`
}

// Summary renders the counts the way the admin console shows them.
func (r ReconciliationResult) Summary() string {
	return fmt.Sprintf("Verified: %d, Duplicates: %d, No Match: %d", r.VerifiedCount, r.DuplicateCount, r.NoMatchCount)
}

// ReconciliationService runs an uploaded statement against the pending orders.
type ReconciliationService struct {
	orders     reconciliationOrders
	reconciler *Reconciler
	logger     *zap.Logger
}

func NewReconciliationService(orders reconciliationOrders, metrics *MetricsService, logger *zap.Logger) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{orders: orders, reconciler: NewReconciler(orders, metrics, logger), logger: logger}
}

// ReconcileCSV parses the statement before touching any order, reconciles it
// against the pending orders of the selection, then reloads the order list.
func (s *ReconciliationService) ReconcileCSV(ctx context.Context, statement io.Reader, sel models.EditionSelection) (*ReconciliationResult, error) {
	refs, err := ParsePaymentCSV(statement)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidCSV.Code, appErrors.ErrInvalidCSV.Status, "Invalid CSV format")
	}

	pending, err := s.orders.ListPending(ctx, sel)
	if err != nil {
		return nil, err
	}

	report, err := s.reconciler.Reconcile(ctx, refs, pending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "reconciliation interrupted")
	}

	result := &ReconciliationResult{ReconciliationReport: report}
	s.logger.Info("payment reconciliation finished",
		zap.String("edition", sel.String()),
		zap.Int("rows", len(refs)),
		zap.Int("verified", report.VerifiedCount),
		zap.Int("duplicates", report.DuplicateCount),
		zap.Int("no_match", report.NoMatchCount))

	orders, err := s.orders.List(ctx, models.TShirtOrderFilter{EditionID: sel.EditionID()})
	if err != nil {
		s.logger.Warn("order reload after reconciliation failed", zap.Error(err))
		return result, nil
	}
	result.Orders = orders
	return result, nil
}
