package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

func TestItemFilterCombinesWithOr(t *testing.T) {
	pred := domain.ItemFilter{Description: "foo", CategoryID: "5"}.Predicate()

	or, ok := pred.(domain.Or)
	if !ok {
		t.Fatalf("expected Or predicate, got %T", pred)
	}
	if len(or.Preds) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(or.Preds))
	}
	if _, ok := or.Preds[0].(domain.ContainsFold); !ok {
		t.Fatalf("expected ContainsFold first, got %T", or.Preds[0])
	}
	eq, ok := or.Preds[1].(domain.Equals)
	if !ok {
		t.Fatalf("expected Equals second, got %T", or.Preds[1])
	}
	if eq.Field != domain.FieldCategoryID || eq.Value != int64(5) {
		t.Fatalf("unexpected equals clause: %+v", eq)
	}
}

func TestItemFilterIgnoresBadCategoryID(t *testing.T) {
	tests := []struct {
		name       string
		categoryID string
	}{
		{name: "not a number", categoryID: "abc"},
		{name: "zero", categoryID: "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pred := domain.ItemFilter{CategoryID: tc.categoryID}.Predicate()
			if _, ok := pred.(domain.MatchAll); !ok {
				t.Fatalf("bad categoryId must be ignored, got %T", pred)
			}
		})
	}
}

func TestItemFilterEmptyMatchesAll(t *testing.T) {
	pred := domain.ItemFilter{}.Predicate()
	if _, ok := pred.(domain.MatchAll); !ok {
		t.Fatalf("expected MatchAll, got %T", pred)
	}
}

func TestItemFilterSingleClauseUnwrapped(t *testing.T) {
	pred := domain.ItemFilter{Description: "cake"}.Predicate()
	if _, ok := pred.(domain.ContainsFold); !ok {
		t.Fatalf("single clause must not be wrapped, got %T", pred)
	}
}

func TestOrderFilterCombinesWithAnd(t *testing.T) {
	pred, err := domain.OrderFilter{
		ClientID:      7,
		Status:        []domain.OrderStatus{domain.OrderStatusPending},
		PaymentMethod: []domain.PaymentMethod{domain.PaymentMethodCash, domain.PaymentMethodCredit},
		SearchName:    "maria",
		DateFrom:      "2025-01-01",
		DateTo:        "2025-01-31",
	}.Predicate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	and, ok := pred.(domain.And)
	if !ok {
		t.Fatalf("order filters must combine with AND, got %T", pred)
	}
	if len(and.Preds) != 5 {
		t.Fatalf("expected 5 clauses, got %d", len(and.Preds))
	}

	rng, ok := and.Preds[4].(domain.Range)
	if !ok {
		t.Fatalf("expected Range last, got %T", and.Preds[4])
	}
	from, ok := rng.From.(time.Time)
	if !ok || !from.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected lower bound: %v", rng.From)
	}
	if rng.Field != domain.FieldCreatedAt {
		t.Fatalf("range must target createdAt, got %q", rng.Field)
	}
}

func TestOrderFilterEmptySetsSkipped(t *testing.T) {
	pred, err := domain.OrderFilter{ClientID: 3, Status: nil, PaymentMethod: []domain.PaymentMethod{}}.Predicate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := pred.(domain.Equals); !ok {
		t.Fatalf("empty sets must not add clauses, got %T", pred)
	}
}

func TestOrderFilterBadDateIsValidationError(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.OrderFilter
	}{
		{name: "bad dateFrom", filter: domain.OrderFilter{DateFrom: "not-a-date"}},
		{name: "bad dateTo", filter: domain.OrderFilter{DateTo: "31/01/2025"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.filter.Predicate(); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestOrderFilterUnknownEnumIsValidationError(t *testing.T) {
	if _, err := (domain.OrderFilter{Status: []domain.OrderStatus{"SHIPPED"}}).Predicate(); !domain.IsValidation(err) {
		t.Fatalf("unknown status must be a validation error, got %v", err)
	}
	if _, err := (domain.OrderFilter{PaymentMethod: []domain.PaymentMethod{"BARTER"}}).Predicate(); !domain.IsValidation(err) {
		t.Fatalf("unknown payment method must be a validation error, got %v", err)
	}
}

func TestOrderFilterOpenEndedRange(t *testing.T) {
	pred, err := domain.OrderFilter{DateFrom: "2025-06-01"}.Predicate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rng, ok := pred.(domain.Range)
	if !ok {
		t.Fatalf("expected Range, got %T", pred)
	}
	if rng.From == nil || rng.To != nil {
		t.Fatalf("expected open upper bound, got %+v", rng)
	}
}

func TestUserFilterCombinesWithOr(t *testing.T) {
	pred := domain.UserFilter{Query: "ana"}.Predicate()

	or, ok := pred.(domain.Or)
	if !ok {
		t.Fatalf("expected Or predicate, got %T", pred)
	}
	fields := make(map[string]bool)
	for _, p := range or.Preds {
		clause, ok := p.(domain.ContainsFold)
		if !ok {
			t.Fatalf("expected ContainsFold clauses, got %T", p)
		}
		if clause.Value != "ana" {
			t.Fatalf("clause value %q, want %q", clause.Value, "ana")
		}
		fields[clause.Field] = true
	}
	for _, field := range []string{domain.FieldName, domain.FieldPhone, domain.FieldEmail} {
		if !fields[field] {
			t.Fatalf("missing clause for field %q", field)
		}
	}
}

func TestUserFilterEmptyMatchesAll(t *testing.T) {
	if _, ok := (domain.UserFilter{}).Predicate().(domain.MatchAll); !ok {
		t.Fatal("empty user filter must match all")
	}
}
