package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/queue"
	"github.com/iliyamo/invoice-dashboard/internal/repository"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// ResultKind classifies a failed mutation. The zero value means success.
type ResultKind string

const (
	KindNone       ResultKind = ""
	KindValidation ResultKind = "validation"
	KindNotFound   ResultKind = "not_found"
	KindStorage    ResultKind = "storage"
)

// Paths whose cached views change when an invoice changes.
const (
	InvoicesPath  = "/dashboard/invoices"
	DashboardPath = "/dashboard"
)

// ActionResult is the outcome of every invoice mutation.
type ActionResult struct {
	OK        bool                `json:"ok"`
	Kind      ResultKind          `json:"kind,omitempty"`
	Message   string              `json:"message,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	InvoiceID string              `json:"invoice_id,omitempty"`
	Redirect  string              `json:"redirect,omitempty"`
}

// InvoiceInput is the submitted invoice form. Amount stays a string until
// it has been parsed as a decimal dollar value.
type InvoiceInput struct {
	CustomerID string `form:"customerId" json:"customerId" validate:"required"`
	Amount     string `form:"amount" json:"amount"`
	Status     string `form:"status" json:"status" validate:"required,oneof=pending paid"`
}

type validInvoice struct {
	customerID uuid.UUID
	cents      int64
	status     model.InvoiceStatus
}

// InvoiceStore is the write side of the invoice repository.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv *model.Invoice) error
	UpdateInvoice(ctx context.Context, id, customerID uuid.UUID, amount int64, status model.InvoiceStatus) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
}

// Invalidator drops cached views under the given paths.
type Invalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

// NopInvalidator is used when no response cache is configured.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, ...string) error { return nil }

// InvoiceActions validates and persists invoice mutations, then invalidates
// cached views and publishes an event. Post-commit failures are logged only.
type InvoiceActions struct {
	store       InvoiceStore
	invalidator Invalidator
	events      EventPublisher
	validate    *validator.Validate
	Now         func() time.Time
}

func NewInvoiceActions(store InvoiceStore, inv Invalidator, events EventPublisher) *InvoiceActions {
	if inv == nil {
		inv = NopInvalidator{}
	}
	if events == nil {
		events = NopPublisher{}
	}
	return &InvoiceActions{
		store:       store,
		invalidator: inv,
		events:      events,
		validate:    newValidator(),
		Now:         time.Now,
	}
}

var fieldMessages = map[string]string{
	"customerId": "Please select a customer.",
	"amount":     "Please enter an amount greater than $0.",
	"status":     "Please select an invoice status.",
}

func (a *InvoiceActions) check(in InvoiceInput) (validInvoice, map[string][]string) {
	errs := map[string][]string{}
	if err := a.validate.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				errs[fe.Field()] = []string{fieldMessages[fe.Field()]}
			}
		}
	}

	var out validInvoice
	if _, bad := errs["customerId"]; !bad {
		id, err := uuid.Parse(in.CustomerID)
		if err != nil {
			errs["customerId"] = []string{fieldMessages["customerId"]}
		}
		out.customerID = id
	}
	amount, err := utils.ParseAmount(in.Amount)
	if err != nil || !amount.IsPositive() {
		errs["amount"] = []string{fieldMessages["amount"]}
	} else {
		out.cents = utils.DollarsToCents(amount)
	}
	if len(errs) > 0 {
		return validInvoice{}, errs
	}

	out.status = model.InvoiceStatus(in.Status)
	return out, nil
}

func validationFailed(msg string, errs map[string][]string) ActionResult {
	return ActionResult{Kind: KindValidation, Message: msg, Errors: errs}
}

// Create validates in and stores a new invoice dated today.
func (a *InvoiceActions) Create(ctx context.Context, in InvoiceInput) ActionResult {
	v, errs := a.check(in)
	if errs != nil {
		return validationFailed("Missing Fields. Failed to Create Invoice.", errs)
	}

	inv := &model.Invoice{
		ID:         uuid.New(),
		CustomerID: v.customerID,
		Amount:     v.cents,
		Status:     v.status,
		Date:       model.NewDate(a.Now()),
	}
	if err := a.store.CreateInvoice(ctx, inv); err != nil {
		log.Printf("invoices: create failed: %v", err)
		return ActionResult{Kind: KindStorage, Message: "Database Error: Failed to Create Invoice."}
	}

	a.afterCommit(ctx, queue.ActionCreated, inv)
	return ActionResult{OK: true, InvoiceID: inv.ID.String(), Redirect: InvoicesPath}
}

// Update replaces customer, amount and status of invoice id.
func (a *InvoiceActions) Update(ctx context.Context, id uuid.UUID, in InvoiceInput) ActionResult {
	v, errs := a.check(in)
	if errs != nil {
		return validationFailed("Missing Fields. Failed to Update Invoice.", errs)
	}

	err := a.store.UpdateInvoice(ctx, id, v.customerID, v.cents, v.status)
	switch {
	case errors.Is(err, repository.ErrInvoiceNotFound):
		return ActionResult{Kind: KindNotFound, Message: "Invoice not found.", InvoiceID: id.String()}
	case err != nil:
		log.Printf("invoices: update %s failed: %v", id, err)
		return ActionResult{Kind: KindStorage, Message: "Database Error: Failed to Update Invoice.", InvoiceID: id.String()}
	}

	a.afterCommit(ctx, queue.ActionUpdated, &model.Invoice{ID: id, CustomerID: v.customerID, Amount: v.cents, Status: v.status})
	return ActionResult{OK: true, InvoiceID: id.String(), Redirect: InvoicesPath}
}

// Delete removes invoice id. An id that matches nothing still succeeds.
func (a *InvoiceActions) Delete(ctx context.Context, id uuid.UUID) ActionResult {
	if err := a.store.DeleteInvoice(ctx, id); err != nil {
		log.Printf("invoices: delete %s failed: %v", id, err)
		return ActionResult{Kind: KindStorage, Message: "Database Error: Failed to Delete Invoice.", InvoiceID: id.String()}
	}
	a.afterCommit(ctx, queue.ActionDeleted, &model.Invoice{ID: id})
	return ActionResult{OK: true, Message: "Deleted Invoice.", InvoiceID: id.String(), Redirect: InvoicesPath}
}

func (a *InvoiceActions) afterCommit(ctx context.Context, action string, inv *model.Invoice) {
	if err := a.invalidator.Invalidate(ctx, InvoicesPath, DashboardPath); err != nil {
		log.Printf("cache: invalidate after %s invoice %s failed: %v", action, inv.ID, err)
	}

	ev := queue.InvoiceEvent{
		Action:     action,
		InvoiceID:  inv.ID.String(),
		OccurredAt: a.Now().UTC().Format(time.RFC3339),
	}
	if action != queue.ActionDeleted {
		ev.CustomerID = inv.CustomerID.String()
		ev.AmountCents = inv.Amount
		ev.Status = string(inv.Status)
		if !inv.Date.IsZero() {
			ev.Date = inv.Date.String()
		}
	}
	if err := a.events.Publish(ctx, ev); err != nil {
		log.Printf("events: publish invoice %s %s failed: %v", action, inv.ID, err)
	}
}
