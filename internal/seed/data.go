package seed

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/invoice-dashboard/internal/model"
)

// PlaceholderUser is the account seeded for signing in; Password is plain
// text and hashed at seed time.
var PlaceholderUser = model.User{
	ID:       uuid.MustParse("410544b2-4001-4271-9855-fec4b6a6442a"),
	Name:     "User",
	Email:    "user@nextmail.com",
	Password: "123456",
}

var Customers = []model.Customer{
	{ID: uuid.MustParse("d6e15727-9fe1-4961-8c5b-ea44a9bd81aa"), Name: "Evil Rabbit", Email: "evil@rabbit.com", ImageURL: "/customers/evil-rabbit.png"},
	{ID: uuid.MustParse("3958dc9e-712f-4377-85e9-fec4b6a6442a"), Name: "Delba de Oliveira", Email: "delba@oliveira.com", ImageURL: "/customers/delba-de-oliveira.png"},
	{ID: uuid.MustParse("3958dc9e-742f-4377-85e9-fec4b6a6442a"), Name: "Lee Robinson", Email: "lee@robinson.com", ImageURL: "/customers/lee-robinson.png"},
	{ID: uuid.MustParse("76d65c26-f784-44a2-ac19-586678f7c2f2"), Name: "Michael Novotny", Email: "michael@novotny.com", ImageURL: "/customers/michael-novotny.png"},
	{ID: uuid.MustParse("CC27C14A-0ACF-4F4A-A6C9-D45682C144B9"), Name: "Amy Burns", Email: "amy@burns.com", ImageURL: "/customers/amy-burns.png"},
	{ID: uuid.MustParse("13D07535-C59E-4157-A011-F8D2EF4E0CBB"), Name: "Balazs Orban", Email: "balazs@orban.com", ImageURL: "/customers/balazs-orban.png"},
}

// invoiceNamespace scopes the name-based ids of seed invoices.
var invoiceNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("invoice-dashboard/seed/invoices"))

// InvoiceID is the stable id of the i-th seed invoice.
func InvoiceID(i int) uuid.UUID {
	return uuid.NewSHA1(invoiceNamespace, []byte(fmt.Sprintf("invoice-%d", i)))
}

type seedInvoice struct {
	customer int
	amount   int64
	status   model.InvoiceStatus
	date     string
}

var invoiceRows = []seedInvoice{
	{0, 15795, model.StatusPending, "2022-12-06"},
	{1, 20348, model.StatusPending, "2022-11-14"},
	{4, 3040, model.StatusPaid, "2022-10-29"},
	{3, 44800, model.StatusPaid, "2023-09-10"},
	{5, 34577, model.StatusPending, "2023-08-05"},
	{2, 54246, model.StatusPending, "2023-07-16"},
	{0, 666, model.StatusPending, "2023-06-27"},
	{3, 32545, model.StatusPaid, "2023-06-09"},
	{4, 1250, model.StatusPaid, "2023-06-17"},
	{5, 8546, model.StatusPaid, "2023-06-07"},
	{1, 500, model.StatusPaid, "2023-08-19"},
	{5, 8945, model.StatusPaid, "2023-06-03"},
	{2, 1000, model.StatusPaid, "2022-06-05"},
}

// Invoices returns the seed invoices with their deterministic ids.
func Invoices() []model.Invoice {
	out := make([]model.Invoice, len(invoiceRows))
	for i, r := range invoiceRows {
		d, err := model.ParseDate(r.date)
		if err != nil {
			panic(err)
		}
		out[i] = model.Invoice{
			ID:         InvoiceID(i),
			CustomerID: Customers[r.customer].ID,
			Amount:     r.amount,
			Status:     r.status,
			Date:       d,
		}
	}
	return out
}

var Revenue = []model.Revenue{
	{Month: "Jan", Revenue: 2000},
	{Month: "Feb", Revenue: 1800},
	{Month: "Mar", Revenue: 2200},
	{Month: "Apr", Revenue: 2500},
	{Month: "May", Revenue: 2300},
	{Month: "Jun", Revenue: 3200},
	{Month: "Jul", Revenue: 3500},
	{Month: "Aug", Revenue: 3700},
	{Month: "Sep", Revenue: 2500},
	{Month: "Oct", Revenue: 2800},
	{Month: "Nov", Revenue: 3000},
	{Month: "Dec", Revenue: 4800},
}
