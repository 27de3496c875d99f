package mapper

import (
	"github.com/yigit/schooladmin/internal/client/domain"
	"github.com/yigit/schooladmin/internal/pkg/feecalc"
)

// FeeTypeToDomain maps a fee type object
func FeeTypeToDomain(o Object) domain.FeeType {
	return domain.FeeType{
		ID:     o.Int64("id"),
		Code:   o.String("code"),
		Name:   o.String("name"),
		Active: o.Bool("active"),
	}
}

// FeeTypeToAPI builds the create/update payload of a fee type
func FeeTypeToAPI(ft domain.FeeType) map[string]any {
	return map[string]any{
		"code":   ft.Code,
		"name":   ft.Name,
		"active": ft.Active,
	}
}

// FeeDefinitionToDomain maps a fee definition with its type relation
func FeeDefinitionToDomain(o Object) domain.FeeDefinition {
	fd := domain.FeeDefinition{
		ID:          o.Int64("id"),
		Name:        o.String("name"),
		BaseAmount:  o.Decimal("base_amount", "baseAmount"),
		Frequency:   feecalc.ParseFrequency(o.String("frequency")),
		Currency:    o.String("currency"),
		Description: o.String("description"),
	}
	if rel, ok := o.Relation("type", "fee_type"); ok {
		ft := FeeTypeToDomain(rel)
		fd.Type = &ft
	} else if id := o.OptionalInt64("type_id"); id != nil {
		fd.Type = &domain.FeeType{ID: *id}
	}
	for _, inst := range o.List("installments") {
		fd.Installments = append(fd.Installments, domain.Installment{
			Label:   inst.String("label"),
			Amount:  inst.Decimal("amount"),
			DueDate: inst.Time("due_date", "dueDate"),
		})
	}
	return fd
}

// FeeDefinitionToAPI builds the create/update payload of a fee definition
func FeeDefinitionToAPI(fd domain.FeeDefinition) map[string]any {
	payload := map[string]any{
		"name":        fd.Name,
		"base_amount": fd.BaseAmount,
		"frequency":   string(fd.Frequency),
	}
	if fd.Type != nil && fd.Type.ID > 0 {
		payload["type_id"] = fd.Type.ID
	}
	if fd.Currency != "" {
		payload["currency"] = fd.Currency
	}
	if fd.Description != "" {
		payload["description"] = fd.Description
	}
	if len(fd.Installments) > 0 {
		installments := make([]map[string]any, 0, len(fd.Installments))
		for _, inst := range fd.Installments {
			item := map[string]any{"label": inst.Label, "amount": inst.Amount}
			if inst.DueDate != nil {
				item["due_date"] = inst.DueDate
			}
			installments = append(installments, item)
		}
		payload["installments"] = installments
	}
	return payload
}

// FeeAssignmentToDomain maps an assignment with its fee relation
func FeeAssignmentToDomain(o Object) domain.FeeAssignment {
	fa := domain.FeeAssignment{
		ID:        o.Int64("id"),
		ClassID:   o.OptionalInt64("class_id"),
		BusStopID: o.OptionalInt64("bus_stop_id"),
		StudentID: o.OptionalInt64("student_id"),
		Priority:  o.Int("priority"),
		StartDate: o.Time("start_date"),
		EndDate:   o.Time("end_date"),
	}
	if rel, ok := o.Relation("fee", "fee_definition"); ok {
		fd := FeeDefinitionToDomain(rel)
		fa.Fee = &fd
	}
	if fa.ClassID == nil {
		if rel, ok := o.Relation("class"); ok {
			id := rel.Int64("id")
			fa.ClassID = &id
		}
	}
	if fa.BusStopID == nil {
		if rel, ok := o.Relation("bus_stop"); ok {
			id := rel.Int64("id")
			fa.BusStopID = &id
		}
	}
	return fa
}

// FeeAssignmentToAPI builds the create payload of an assignment
func FeeAssignmentToAPI(fa domain.FeeAssignment) map[string]any {
	payload := map[string]any{"priority": fa.Priority}
	if fa.Fee != nil {
		payload["fee_definition_id"] = fa.Fee.ID
	}
	if fa.ClassID != nil {
		payload["class_id"] = *fa.ClassID
	}
	if fa.BusStopID != nil {
		payload["bus_stop_id"] = *fa.BusStopID
	}
	if fa.StudentID != nil {
		payload["student_id"] = *fa.StudentID
	}
	if fa.StartDate != nil {
		payload["start_date"] = fa.StartDate
	}
	if fa.EndDate != nil {
		payload["end_date"] = fa.EndDate
	}
	return payload
}

// ClassToDomain maps a class
func ClassToDomain(o Object) domain.Class {
	return domain.Class{
		ID:           o.Int64("id"),
		Name:         o.String("name"),
		GradeLevel:   o.Int("grade_level", "gradeLevel"),
		Capacity:     o.Int("capacity"),
		StudentCount: o.Int("student_count", "studentCount"),
	}
}

// DivisionToDomain maps a division
func DivisionToDomain(o Object) domain.Division {
	d := domain.Division{
		ID:           o.Int64("id"),
		Name:         o.String("name"),
		ClassID:      o.Int64("class_id"),
		Capacity:     o.Int("capacity"),
		ClassTeacher: o.String("class_teacher", "classTeacher"),
	}
	if d.ClassID == 0 {
		if rel, ok := o.Relation("class"); ok {
			d.ClassID = rel.Int64("id")
		}
	}
	return d
}

// DivisionToAPI builds the create/update payload of a division
func DivisionToAPI(d domain.Division) map[string]any {
	payload := map[string]any{
		"name":     d.Name,
		"class_id": d.ClassID,
		"capacity": d.Capacity,
	}
	if d.ClassTeacher != "" {
		payload["class_teacher"] = d.ClassTeacher
	}
	return payload
}

// StudentToDomain maps a student
func StudentToDomain(o Object) domain.Student {
	return domain.Student{
		ID:        o.Int64("id"),
		FirstName: o.String("first_name", "firstName"),
		LastName:  o.String("last_name", "lastName"),
		Gender:    o.String("gender"),
	}
}

// EnrollmentToDomain maps an enrollment with its relations
func EnrollmentToDomain(o Object) domain.Enrollment {
	e := domain.Enrollment{
		ID:            o.Int64("id"),
		AdmissionType: o.String("admission_type", "admissionType"),
		Mode:          o.String("mode"),
		Status:        o.String("status"),
	}
	if t := o.Time("admission_date", "admissionDate"); t != nil {
		e.AdmissionDate = *t
	}
	if rel, ok := o.Relation("student"); ok {
		s := StudentToDomain(rel)
		e.Student = &s
	}
	if rel, ok := o.Relation("class"); ok {
		c := ClassToDomain(rel)
		e.Class = &c
	}
	if rel, ok := o.Relation("division"); ok {
		d := DivisionToDomain(rel)
		e.Division = &d
	}
	if rel, ok := o.Relation("academic_year"); ok {
		e.AcademicYear = &domain.AcademicYear{
			ID:        rel.Int64("id"),
			Name:      rel.String("name"),
			IsCurrent: rel.Bool("is_current"),
		}
	}
	return e
}

// PaymentItemToDomain maps a payment item, flattening the student name from
// payment_schedule.enrollment.student.
func PaymentItemToDomain(o Object) domain.PaymentItem {
	p := domain.PaymentItem{
		ID:                o.Int64("id"),
		PaymentScheduleID: o.Int64("payment_schedule_id"),
		Label:             o.String("label"),
		Amount:            o.Decimal("amount"),
		PaidAmount:        o.Decimal("paid_amount", "paidAmount"),
		DueDate:           o.Time("due_date", "dueDate"),
		Status:            o.String("status"),
	}
	p.FeeName = p.Label
	if rel, ok := o.Relation("fee_definition"); ok {
		if name := rel.String("name"); name != "" {
			p.FeeName = name
		}
	}
	if schedule, ok := o.Relation("payment_schedule"); ok {
		if p.PaymentScheduleID == 0 {
			p.PaymentScheduleID = schedule.Int64("id")
		}
		if enrollment, ok := schedule.Relation("enrollment"); ok {
			if student, ok := enrollment.Relation("student"); ok {
				s := StudentToDomain(student)
				p.StudentName = s.FullName()
			}
		}
	}
	return p
}

// WalletToDomain maps a wallet
func WalletToDomain(o Object) domain.Wallet {
	w := domain.Wallet{
		ID:                  o.Int64("id"),
		WalletID:            o.String("walletId", "wallet_id"),
		StudentID:           o.Int64("studentId", "student_id"),
		CurrentBalance:      o.Decimal("currentBalance", "current_balance"),
		TotalDeposits:       o.Decimal("totalDeposits", "total_deposits"),
		TotalWithdrawals:    o.Decimal("totalWithdrawals", "total_withdrawals"),
		DailySpendingLimit:  o.Decimal("dailySpendingLimit", "daily_spending_limit"),
		LowBalanceThreshold: o.Decimal("lowBalanceThreshold", "low_balance_threshold"),
		Status:              o.String("status"),
	}
	if rel, ok := o.Relation("student"); ok {
		s := StudentToDomain(rel)
		w.StudentName = s.FullName()
		if w.StudentID == 0 {
			w.StudentID = s.ID
		}
	}
	return w
}

// WalletTransactionToDomain maps a ledger row
func WalletTransactionToDomain(o Object) domain.WalletTransaction {
	tx := domain.WalletTransaction{
		ID:            o.Int64("id"),
		Type:          o.String("transactionType", "transaction_type"),
		Amount:        o.Decimal("amount"),
		BalanceBefore: o.Decimal("balanceBefore", "balance_before"),
		BalanceAfter:  o.Decimal("balanceAfter", "balance_after"),
		Category:      o.String("category"),
		Description:   o.String("description"),
		Reference:     o.String("reference"),
	}
	if t := o.Time("createdAt", "created_at"); t != nil {
		tx.CreatedAt = *t
	}
	return tx
}

// PaginationToDomain reads meta.pagination. A missing block gives a zero value.
func PaginationToDomain(meta Object) domain.Pagination {
	p, ok := meta.Relation("pagination")
	if !ok {
		return domain.Pagination{}
	}
	return domain.Pagination{
		CurrentPage: p.Int("currentPage"),
		TotalPages:  p.Int("totalPages"),
		PageSize:    p.Int("pageSize"),
		TotalItems:  p.Int64("totalItems"),
	}
}

// MapList applies fn to every object
func MapList[T any](items []Object, fn func(Object) T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
