package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v84"
	stripecustomer "github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/customersession"
	"github.com/stripe/stripe-go/v84/invoice"

	"github.com/openfleet/fleetman-backend/internal/middleware"
	"github.com/openfleet/fleetman-backend/rental"
)

// createBillingSessionHandler provisions a Stripe customer for the caller's
// account if one does not exist yet and opens a customer session so the
// client can manage payment methods.
func (a *API) createBillingSessionHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	acct, err := a.ar.GetOrCreate(c, ownerID)
	if err != nil {
		logger.ErrorContext(c, "failed to get account", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if !acct.StripeID.Valid {
		stripeCustomer, err := stripecustomer.New(&stripe.CustomerParams{
			Metadata: map[string]string{
				"subject_id": ownerID,
				"id":         acct.ID.String(),
			},
		})
		if err != nil {
			logger.ErrorContext(c, "failed to create stripe customer", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		acct.StripeID.String = stripeCustomer.ID
		acct.StripeID.Valid = true

		if err := a.ar.AddStripeID(c, ownerID, stripeCustomer.ID); err != nil {
			logger.ErrorContext(c, "failed to save stripe customer id", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}

	csParams := &stripe.CustomerSessionParams{
		Customer: stripe.String(acct.StripeID.String),
	}
	csParams.AddExtra("components[customer_sheet][enabled]", "true")
	csParams.AddExtra("components[customer_sheet][features][payment_method_remove]", "enabled")
	cs, err := customersession.New(csParams)
	if err != nil {
		logger.ErrorContext(c, "failed to create customer session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, struct {
		CustomerID   string `json:"customerId"`
		ClientSecret string `json:"clientSecret"`
	}{
		CustomerID:   acct.StripeID.String,
		ClientSecret: cs.ClientSecret,
	})
}

// invoiceCompletedRental creates, finalizes and pays a Stripe invoice for a
// completed rental in the background. Billing failures never fail the
// completion itself; they are logged for manual follow-up.
func (a *API) invoiceCompletedRental(c *gin.Context, r rental.Rental, days int) {
	logger := middleware.GetLogger(c)

	acct, err := a.ar.GetBySubject(c, r.OwnerID)
	if err != nil || !acct.StripeID.Valid {
		logger.WarnContext(c, "rental completed without billing account", "rental_id", r.ID)
		return
	}

	stripeID := acct.StripeID.String
	go func() {
		ctx := context.Background()

		inParams := &stripe.InvoiceParams{
			Params:   stripe.Params{Context: ctx},
			Customer: stripe.String(stripeID),
		}
		in, err := invoice.New(inParams)
		if err != nil {
			logger.Error("Failed to create invoice", "error", err, "rental_id", r.ID)
			return
		}

		ilParams := &stripe.InvoiceAddLinesParams{
			Params: stripe.Params{Context: ctx},
			Lines: []*stripe.InvoiceAddLinesLineParams{
				{
					Amount: stripe.Int64(r.TotalCostCents),
					Description: stripe.String(fmt.Sprintf("Vehicle rental - %d day(s) for %s",
						days, r.CustomerName)),
				},
			},
		}
		if _, err := invoice.AddLines(in.ID, ilParams); err != nil {
			logger.Error("Failed to add lines to invoice", "error", err, "rental_id", r.ID)
			return
		}

		if _, err := invoice.FinalizeInvoice(in.ID, &stripe.InvoiceFinalizeInvoiceParams{}); err != nil {
			logger.Error("Failed to finalize invoice", "error", err, "rental_id", r.ID)
			return
		}
		if _, err := invoice.Pay(in.ID, nil); err != nil {
			logger.Error("Failed to pay invoice", "error", err, "rental_id", r.ID)
		}
	}()
}
