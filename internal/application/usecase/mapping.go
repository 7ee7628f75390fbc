package usecase

import (
	"time"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
)

func toEntryResponses(entries []model.AmortizationEntry) []dto.AmortizationEntryResponse {
	out := make([]dto.AmortizationEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.AmortizationEntryResponse{
			Period:           e.Period,
			DueDate:          e.DueDate,
			Principal:        e.Principal,
			Interest:         e.Interest,
			Total:            e.Total,
			RemainingBalance: e.RemainingBalance,
		}
	}
	return out
}

func toScheduleResponse(q model.CreditQuote) dto.ScheduleResponse {
	interest := q.Schedule.TotalInterest()
	return dto.ScheduleResponse{
		MonthlyRate:       q.MonthlyRate,
		GraceInterest:     q.GraceInterest,
		CapitalizedAmount: q.CapitalizedAmount,
		InstallmentAmount: q.Schedule.FixedPayment,
		TotalInterest:     interest,
		TotalAmount:       q.Schedule.TotalPrincipal().Add(interest),
		Entries:           toEntryResponses(q.Schedule.Entries),
	}
}

func toInstallmentResponse(i model.Installment) dto.InstallmentResponse {
	resp := dto.InstallmentResponse{
		ID:                 i.ID(),
		CreditID:           i.CreditID(),
		Number:             i.Number(),
		DueDate:            i.DueDate(),
		Amount:             i.Amount(),
		PrincipalDue:       i.PrincipalDue(),
		InterestDue:        i.InterestDue(),
		PrincipalPaid:      i.PrincipalPaid(),
		InterestPaid:       i.InterestPaid(),
		PrincipalRemaining: i.PrincipalRemaining(),
		InterestRemaining:  i.InterestRemaining(),
		Status:             i.Status().String(),
		PaymentMethod:      i.PaymentMethod().String(),
	}
	if !i.PaymentDate().IsZero() {
		d := i.PaymentDate()
		resp.PaymentDate = &d
	}
	return resp
}

func toInstallmentResponses(items []model.Installment) []dto.InstallmentResponse {
	out := make([]dto.InstallmentResponse, len(items))
	for i, inst := range items {
		out[i] = toInstallmentResponse(inst)
	}
	return out
}

func toCreditResponse(c model.Credit) dto.CreditResponse {
	var installments []dto.InstallmentResponse
	if items := c.Installments(); len(items) > 0 {
		installments = toInstallmentResponses(items)
	}
	return dto.CreditResponse{
		ID:                c.ID(),
		Code:              c.Code(),
		ClientID:          c.ClientID(),
		Currency:          c.Currency().Code(),
		CapitalAmount:     c.CapitalAmount(),
		TEA:               c.TEA(),
		MonthlyRate:       c.MonthlyRate(),
		GraceDays:         c.GraceDays(),
		GraceInterest:     c.GraceInterest(),
		CapitalizedAmount: c.CapitalizedAmount(),
		InstallmentAmount: c.InstallmentAmount(),
		InstallmentCount:  c.InstallmentCount(),
		StartDate:         c.StartDate(),
		FirstPaymentDate:  c.FirstPaymentDate(),
		EndDate:           c.EndDate(),
		Status:            c.Status().String(),
		Installments:      installments,
		CreatedAt:         c.CreatedAt(),
		UpdatedAt:         c.UpdatedAt(),
	}
}

func toBalanceResponse(i model.Installment, today time.Time) dto.InstallmentBalanceResponse {
	resp := dto.InstallmentBalanceResponse{
		InstallmentID:      i.ID(),
		CreditID:           i.CreditID(),
		Number:             i.Number(),
		DueDate:            i.DueDate(),
		PrincipalRemaining: i.PrincipalRemaining(),
		InterestRemaining:  i.InterestRemaining(),
		TotalRemaining:     i.Outstanding(),
		Status:             i.Status().String(),
		Overdue:            i.IsOverdue(today),
	}
	if resp.Overdue {
		resp.DaysOverdue = model.DaysBetween(i.DueDate(), today)
	}
	return resp
}

func toCreditPaymentResponse(p model.CreditPayment) dto.CreditPaymentResponse {
	return dto.CreditPaymentResponse{
		ID:                p.ID,
		CreditID:          p.CreditID,
		InstallmentID:     p.InstallmentID,
		InstallmentNumber: p.InstallmentNumber,
		PrincipalAmount:   p.PrincipalAmount,
		InterestAmount:    p.InterestAmount,
		TotalAmount:       p.TotalAmount,
		Method:            p.Method.String(),
		PaidAt:            p.PaidAt,
	}
}

func toLoanResponse(l model.Loan) dto.LoanResponse {
	return dto.LoanResponse{
		ID:                l.ID(),
		Code:              l.Code(),
		ClientID:          l.ClientID(),
		Currency:          l.Currency().Code(),
		Amount:            l.Amount(),
		InterestRate:      l.InterestRate(),
		InterestAmount:    l.InterestAmount(),
		TotalAmount:       l.TotalAmount(),
		CapitalPaid:       l.CapitalPaid(),
		InterestPaid:      l.InterestPaid(),
		RemainingCapital:  l.RemainingCapital(),
		RemainingInterest: l.RemainingInterest(),
		IssueDate:         l.IssueDate(),
		DueDate:           l.DueDate(),
		Status:            l.Status().String(),
		DaysOverdue:       l.DaysOverdue(),
		CreatedAt:         l.CreatedAt(),
		UpdatedAt:         l.UpdatedAt(),
	}
}

func toLoanPaymentResponse(p model.LoanPayment) dto.LoanPaymentResponse {
	return dto.LoanPaymentResponse{
		ID:              p.ID,
		LoanID:          p.LoanID,
		CapitalAmount:   p.CapitalAmount,
		InterestAmount:  p.InterestAmount,
		TotalAmount:     p.TotalAmount,
		RequestedAmount: p.RequestedAmount,
		Method:          p.Method.String(),
		PaidAt:          p.PaidAt,
	}
}

func toLoanHistoryResponse(h model.LoanHistory) dto.LoanHistoryResponse {
	return dto.LoanHistoryResponse{
		ID:             h.ID,
		LoanID:         h.LoanID,
		TotalAmount:    h.TotalAmount,
		InterestAmount: h.InterestAmount,
		CapitalPaid:    h.CapitalPaid,
		InterestPaid:   h.InterestPaid,
		Amount:         h.Amount,
		Timestamp:      h.Timestamp,
	}
}
