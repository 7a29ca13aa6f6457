package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

func TestValidationfWrapsTaxonomy(t *testing.T) {
	err := domain.Validationf("page must be >= 1, got %d", 0)

	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if domain.IsNotFound(err) || domain.IsConflict(err) || domain.IsUnavailable(err) {
		t.Fatalf("error classified into more than one kind: %v", err)
	}
}

func TestTaxonomyKindsAreDisjoint(t *testing.T) {
	kinds := []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrUnavailable,
	}

	for i, kind := range kinds {
		wrapped := fmt.Errorf("%w: detail", kind)
		for j, other := range kinds {
			if got := errors.Is(wrapped, other); got != (i == j) {
				t.Fatalf("kind %v vs %v: Is=%v", kind, other, got)
			}
		}
	}
}

func TestOrderInvariantErrorsAreValidation(t *testing.T) {
	invariants := []error{
		domain.ErrOrderItemsRequired,
		domain.ErrOrderClientRequired,
		domain.ErrOrderCreatorRequired,
		domain.ErrOrderItemQtyInvalid,
		domain.ErrPaymentMethodInvalid,
		domain.ErrOrderStatusInvalid,
	}

	for _, err := range invariants {
		if !domain.IsValidation(err) {
			t.Fatalf("invariant error %v must belong to ErrValidation", err)
		}
	}
}
