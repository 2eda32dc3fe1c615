package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// checkRequest runs the struct's validate tags and reports the first
// failing field as a validation error.
func checkRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return apperr.Validation("%s is required", fe.Field())
		case "email":
			return apperr.Validation("%s must be a valid email address", fe.Field())
		case "min":
			return apperr.Validation("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return apperr.Validation("%s is invalid", fe.Field())
	}
	return apperr.Validation("invalid request: %v", err)
}

// parseAmount reads a required money field.
func parseAmount(raw, field string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.Validation("%s is required", field)
	}
	f := models.ParseAmount(raw)
	if f == 0 && strings.Trim(raw, "0.,GHSghs ") != "" {
		return 0, apperr.Validation("%s must be a number", field)
	}
	return f, nil
}

// parsePositive reads a required money field that must be above zero.
func parsePositive(raw, field string) (float64, error) {
	f, err := parseAmount(raw, field)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, apperr.Validation("%s must be greater than zero", field)
	}
	return f, nil
}

// parseOptional reads a price that may be left blank.
func parseOptional(raw, field string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	f, err := parseAmount(raw, field)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func amountPtr(f *float64) *models.Amount {
	if f == nil {
		return nil
	}
	a := models.Amount(*f)
	return &a
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// resolveClient finds the client a token names: an internal id first, then
// a client code, then the first client whose name contains the token.
func resolveClient(ctx context.Context, clients ClientStore, token string) (*models.Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Validation("client is required")
	}
	if models.IsInternalID(token) {
		c, err := clients.Get(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("failed to get client: %w", err)
		}
		if c != nil {
			return c, nil
		}
	}
	c, err := clients.GetByCode(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client by code: %w", err)
	}
	if c != nil {
		return c, nil
	}
	c, err = clients.FindByName(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find client by name: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound("client %q not found", token)
	}
	return c, nil
}

func clientFilter(c *models.Client) repositories.ClientFilter {
	return repositories.ClientFilter(c.Keys())
}

// clientBooks loads a client's orders (any status) and confirmed payments.
func clientBooks(ctx context.Context, orders OrderStore, payments PaymentStore, c *models.Client) ([]models.Order, []models.Payment, error) {
	ords, err := orders.List(ctx, repositories.OrderFilter{Clients: clientFilter(c)})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list orders: %w", err)
	}
	pays, err := payments.List(ctx, repositories.PaymentFilter{Status: models.PaymentConfirmed, Clients: clientFilter(c)})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return ords, pays, nil
}
