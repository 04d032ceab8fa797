package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/go-playground/validator/v10"
)

// Validating rejects rows that fail their struct tags before they reach the
// wrapped gateway.
type Validating struct {
	next     Gateway
	validate *validator.Validate
}

// NewValidating wraps next.
func NewValidating(next Gateway) *Validating {
	return &Validating{
		next:     next,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (v *Validating) FetchAll(ctx context.Context) ([]schema.Row, error) {
	return v.next.FetchAll(ctx)
}

func (v *Validating) Upsert(ctx context.Context, row schema.Row) (schema.Row, error) {
	if err := v.Check(row); err != nil {
		return schema.Row{}, newError(OpUpsert, row.ID, ErrValidation, err)
	}
	return v.next.Upsert(ctx, row)
}

func (v *Validating) DeleteOne(ctx context.Context, id schema.ID) error {
	return v.next.DeleteOne(ctx, id)
}

// Check validates row and describes every failing field.
func (v *Validating) Check(row schema.Row) error {
	err := v.validate.Struct(row)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describeField(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
