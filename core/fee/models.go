package fee

import (
	"math"
	"time"

	"github.com/trezcool/shule/core"
)

// Statuses
const (
	StatusPending = "pending"
	StatusPartial = "partial"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

var OrderingFields = []string{"fee_type", "amount", "paid_amount", "due_date", "status", "payment_date", "academic_year", "created_at"}

type Fee struct {
	ID            string     `json:"id" db:"id"`
	StudentID     string     `json:"student_id" db:"student_id"`
	FeeType       string     `json:"fee_type" db:"fee_type"`
	Amount        float64    `json:"amount" db:"amount"`
	PaidAmount    float64    `json:"paid_amount" db:"paid_amount"`
	DueDate       time.Time  `json:"due_date" db:"due_date"`
	Status        string     `json:"status" db:"status"`
	PaymentDate   *time.Time `json:"payment_date" db:"payment_date"`
	PaymentMethod string     `json:"payment_method" db:"payment_method"`
	AcademicYear  string     `json:"academic_year" db:"academic_year"`
	Term          string     `json:"term" db:"term"`
	Remarks       string     `json:"remarks" db:"remarks"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Balance is what remains to be paid.
func (f Fee) Balance() float64 {
	return roundAmount(f.Amount - f.PaidAmount)
}

// DeriveStatus returns the fee's status on day today: paid once fully paid, partial or pending
// otherwise, overdue when not fully paid after the due date.
func (f Fee) DeriveStatus(today time.Time) string {
	switch {
	case f.PaidAmount >= f.Amount:
		return StatusPaid
	case today.After(f.DueDate):
		return StatusOverdue
	case f.PaidAmount > 0:
		return StatusPartial
	default:
		return StatusPending
	}
}

func roundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

type NewFee struct {
	StudentID    string    `json:"student_id" validate:"required,uuid"`
	FeeType      string    `json:"fee_type" validate:"required,max=50"`
	Amount       float64   `json:"amount" validate:"gt=0"`
	DueDate      time.Time `json:"due_date" validate:"required"`
	AcademicYear string    `json:"academic_year" validate:"omitempty,max=20"`
	Term         string    `json:"term" validate:"omitempty,max=20"`
	Remarks      string    `json:"remarks" validate:"omitempty,max=500"`
}

func (nf *NewFee) Clean() {
	nf.StudentID = core.CleanString(nf.StudentID)
	nf.FeeType = core.CleanString(nf.FeeType, true /* lower */)
	nf.Amount = roundAmount(nf.Amount)
	nf.AcademicYear = core.CleanString(nf.AcademicYear)
	nf.Term = core.CleanString(nf.Term)
	nf.Remarks = core.CleanString(nf.Remarks)
}

// UpdateFee changes the fee's terms. Payments go through Service.RecordPayment.
type UpdateFee struct {
	FeeType      string    `json:"fee_type" validate:"omitempty,max=50"`
	Amount       *float64  `json:"amount" validate:"omitempty,gt=0"`
	DueDate      time.Time `json:"due_date"`
	AcademicYear string    `json:"academic_year" validate:"omitempty,max=20"`
	Term         string    `json:"term" validate:"omitempty,max=20"`
	Remarks      *string   `json:"remarks" validate:"omitempty,max=500"`
}

func (uf *UpdateFee) Clean() {
	uf.FeeType = core.CleanString(uf.FeeType, true /* lower */)
	if uf.Amount != nil {
		a := roundAmount(*uf.Amount)
		uf.Amount = &a
	}
	uf.AcademicYear = core.CleanString(uf.AcademicYear)
	uf.Term = core.CleanString(uf.Term)
	if uf.Remarks != nil {
		r := core.CleanString(*uf.Remarks)
		uf.Remarks = &r
	}
}

func (uf UpdateFee) apply(f *Fee) {
	if uf.FeeType != "" {
		f.FeeType = uf.FeeType
	}
	if uf.Amount != nil {
		f.Amount = *uf.Amount
	}
	if !uf.DueDate.IsZero() {
		f.DueDate = core.TruncateDay(uf.DueDate, nil)
	}
	if uf.AcademicYear != "" {
		f.AcademicYear = uf.AcademicYear
	}
	if uf.Term != "" {
		f.Term = uf.Term
	}
	if uf.Remarks != nil {
		f.Remarks = *uf.Remarks
	}
}

type Payment struct {
	Amount float64   `json:"amount" validate:"gt=0"`
	Method string    `json:"method" validate:"required,oneof=cash bank_transfer card mobile_money cheque online"`
	Date   time.Time `json:"date"`
}

func (p *Payment) Clean() {
	p.Amount = roundAmount(p.Amount)
	p.Method = core.CleanString(p.Method, true /* lower */)
}

type QueryFilter struct {
	StudentIDs   []string  `query:"student_id"`
	FeeType      string    `query:"fee_type"`
	Statuses     []string  `query:"status"`
	AcademicYear string    `query:"academic_year"`
	Term         string    `query:"term"`
	DueBefore    time.Time `query:"-"`
	IDs          []string  `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentIDs = core.CleanStrings(qf.StudentIDs)
	qf.FeeType = core.CleanString(qf.FeeType, true /* lower */)
	qf.Statuses = core.CleanStrings(qf.Statuses, true /* lower */)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
	qf.Term = core.CleanString(qf.Term)
}
