package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"resto-pos/models"
)

var (
	ErrInvoiceExists  = errors.New("invoice already exists for this session")
	ErrAlreadyPaid    = errors.New("invoice is already paid")
	ErrMissingSession = errors.New("session_id is required")
)

var oneHundred = decimal.NewFromInt(100)

// Totals is the frozen billing breakdown for a session. All amounts are
// rounded half-up to 2 decimal places in the fixed order documented on
// ComputeTotals.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// quantize rounds to 2 decimal places. decimal.Round rounds half away
// from zero, which is half-up for the non-negative amounts handled here.
func quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeTotals derives the invoice amounts from the session's line
// items and the rate settings. The rounding order is load-bearing for
// financial correctness and must not be rearranged:
//
//  1. subtotal  = sum(price_snapshot * quantity), rounded
//  2. discount  = subtotal * discount_rate/100, rounded
//  3. after_discount = subtotal - discount (inherits precision)
//  4. service_charge = after_discount * service_charge_rate/100, rounded
//  5. tax = (after_discount + service_charge) * tax_rate/100, rounded
//  6. total = after_discount + service_charge + tax, rounded
//
// Tax applies to a base that already includes the service charge, not to
// the raw subtotal. Items count regardless of status, served or not.
func ComputeTotals(items []models.OrderItem, setting models.Setting) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.PriceSnapshot.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	subtotal = quantize(subtotal)

	discount := quantize(subtotal.Mul(setting.DiscountRate.Div(oneHundred)))
	afterDiscount := subtotal.Sub(discount)
	serviceCharge := quantize(afterDiscount.Mul(setting.ServiceChargeRate.Div(oneHundred)))
	taxBase := afterDiscount.Add(serviceCharge)
	tax := quantize(taxBase.Mul(setting.TaxRate.Div(oneHundred)))
	total := quantize(afterDiscount.Add(serviceCharge).Add(tax))

	return Totals{
		Subtotal:      subtotal,
		Discount:      discount,
		ServiceCharge: serviceCharge,
		Tax:           tax,
		Total:         total,
	}
}

// GetOrCreateSetting returns the singleton rates record, creating it
// with zero rates when absent. Callers fetch it once per computation and
// pass it down explicitly.
func GetOrCreateSetting(db *gorm.DB) (models.Setting, error) {
	var setting models.Setting
	err := db.First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.Setting{
			TaxRate:           decimal.Zero,
			ServiceChargeRate: decimal.Zero,
			DiscountRate:      decimal.Zero,
		}
		err = db.Create(&setting).Error
	}
	return setting, err
}

type BillingService struct {
	DB *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{DB: db}
}

// sessionItems loads every order item across all orders of a session.
func sessionItems(tx *gorm.DB, sessionID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := tx.
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.session_id = ?", sessionID).
		Preload("MenuItem").
		Order("order_items.created_at").
		Find(&items).Error
	return items, err
}

// CreateInvoice computes and freezes the totals for a session. At most
// one invoice per session: the existence check runs inside the
// transaction and the unique index on session_id backs it up against
// concurrent calls.
func (bs *BillingService) CreateInvoice(sessionID uint) (models.Invoice, error) {
	var invoice models.Invoice
	err := bs.DB.Transaction(func(tx *gorm.DB) error {
		var session models.TableSession
		if err := tx.First(&session, sessionID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Invoice{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrInvoiceExists
		}

		items, err := sessionItems(tx, sessionID)
		if err != nil {
			return err
		}

		setting, err := GetOrCreateSetting(tx)
		if err != nil {
			return err
		}

		totals := ComputeTotals(items, setting)
		invoice = models.Invoice{
			Number:        newInvoiceNumber(),
			SessionID:     sessionID,
			Subtotal:      totals.Subtotal,
			Discount:      totals.Discount,
			ServiceCharge: totals.ServiceCharge,
			Tax:           totals.Tax,
			Total:         totals.Total,
			Paid:          false,
			CreatedAt:     time.Now(),
		}
		return tx.Create(&invoice).Error
	})
	return invoice, err
}

// MarkPaid flips the one-way paid transition and stamps paid_at. A
// second call fails with ErrAlreadyPaid and leaves paid_at untouched.
func (bs *BillingService) MarkPaid(invoiceID uint) (models.Invoice, error) {
	var invoice models.Invoice
	err := bs.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&invoice, invoiceID).Error; err != nil {
			return err
		}
		if invoice.Paid {
			return ErrAlreadyPaid
		}
		now := time.Now()
		invoice.Paid = true
		invoice.PaidAt = &now
		return tx.Model(&invoice).Updates(map[string]interface{}{
			"paid":    true,
			"paid_at": now,
		}).Error
	})
	return invoice, err
}

// PendingBill is one entry of the cashier's work queue.
type PendingBill struct {
	SessionID       uint       `json:"session_id"`
	TableNumber     uint       `json:"table_number"`
	BillRequestedAt *time.Time `json:"bill_requested_at,omitempty"`
	HasInvoice      bool       `json:"has_invoice"`
	InvoiceID       *uint      `json:"invoice_id,omitempty"`
}

// PendingBills lists sessions that are active, have requested their bill
// and have no invoice yet or an unpaid one.
func (bs *BillingService) PendingBills() ([]PendingBill, error) {
	var sessions []models.TableSession
	err := bs.DB.
		Where("status = ? AND bill_requested = ?", models.SessionActive, true).
		Preload("Table").
		Preload("Invoice").
		Order("bill_requested_at").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	bills := make([]PendingBill, 0, len(sessions))
	for _, s := range sessions {
		if s.Invoice != nil && s.Invoice.Paid {
			continue
		}
		bill := PendingBill{
			SessionID:       s.ID,
			TableNumber:     s.Table.Number,
			BillRequestedAt: s.BillRequestedAt,
		}
		if s.Invoice != nil {
			bill.HasInvoice = true
			bill.InvoiceID = &s.Invoice.ID
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

// InvoiceLine is one materialized line of the invoice detail projection.
type InvoiceLine struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Status    string          `json:"status"`
}

type InvoiceDetail struct {
	Invoice     models.Invoice `json:"invoice"`
	SessionID   uint           `json:"session_id"`
	TableNumber uint           `json:"table_number"`
	Items       []InvoiceLine  `json:"items"`
	Waiters     []string       `json:"waiters"`
}

// InvoiceDetailByID returns the invoice plus all session line items and
// the distinct, sorted names of staff who created orders in the session.
func (bs *BillingService) InvoiceDetailByID(invoiceID uint) (InvoiceDetail, error) {
	var detail InvoiceDetail

	var invoice models.Invoice
	if err := bs.DB.First(&invoice, invoiceID).Error; err != nil {
		return detail, err
	}

	var session models.TableSession
	if err := bs.DB.Preload("Table").First(&session, invoice.SessionID).Error; err != nil {
		return detail, err
	}

	var orders []models.Order
	err := bs.DB.
		Where("session_id = ?", session.ID).
		Preload("CreatedBy").
		Preload("Items.MenuItem").
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		return detail, err
	}

	waiterSet := make(map[string]struct{})
	var lines []InvoiceLine
	for _, order := range orders {
		if order.CreatedBy.Name != "" {
			waiterSet[order.CreatedBy.Name] = struct{}{}
		}
		for _, it := range order.Items {
			lines = append(lines, InvoiceLine{
				ID:        it.ID,
				Name:      it.MenuItem.Name,
				Quantity:  it.Quantity,
				UnitPrice: it.PriceSnapshot,
				LineTotal: it.PriceSnapshot.Mul(decimal.NewFromInt(int64(it.Quantity))),
				Status:    it.Status,
			})
		}
	}

	waiters := make([]string, 0, len(waiterSet))
	for name := range waiterSet {
		waiters = append(waiters, name)
	}
	sort.Strings(waiters)

	detail.Invoice = invoice
	detail.SessionID = session.ID
	detail.TableNumber = session.Table.Number
	detail.Items = lines
	detail.Waiters = waiters
	return detail, nil
}

func newInvoiceNumber() string {
	ref := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("INV-%s-%s", time.Now().Format("20060102"), ref)
}
