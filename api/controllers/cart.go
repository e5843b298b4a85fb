package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type discountQuoter interface {
	Quote(ctx context.Context, code string, subtotal decimal.Decimal) (*discounts.Quote, error)
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Storage   string `json:"storage" validate:"required,max=64"`
	Quantity  *int   `json:"quantity,omitempty" validate:"omitempty,min=1,max=99"`
}

type itemKeyRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Storage   string `json:"storage" validate:"required,max=64"`
}

func (r itemKeyRequest) key() cart.Key {
	return cart.Key{VariantID: strings.ToLower(r.VariantID), Storage: strings.TrimSpace(r.Storage)}
}

type cartWithQuote struct {
	cart.CartDTO
	Discount *discounts.Quote `json:"discount,omitempty"`
}

// CartGet returns the caller's cart. ?discount_code= attaches a quote against the subtotal.
func CartGet(svc cart.Service, quoter discountQuoter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		result, err := svc.Get(r.Context(), middleware.CartOwnerFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code := validators.QueryString(r, "discount_code", 64)
		if code == "" || quoter == nil {
			responses.WriteSuccess(w, cartWithQuote{CartDTO: result})
			return
		}

		subtotal, err := decimal.NewFromString(result.Subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse cart subtotal"))
			return
		}
		quote, err := quoter.Quote(r.Context(), code, subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartWithQuote{CartDTO: result, Discount: quote})
	}
}

func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity := 1
		if body.Quantity != nil {
			quantity = *body.Quantity
		}
		input := cart.AddItemInput{
			ProductID: uuid.MustParse(body.ProductID),
			VariantID: uuid.MustParse(body.VariantID),
			Storage:   strings.TrimSpace(body.Storage),
			Quantity:  quantity,
			Locale:    middleware.LocaleFromContext(r.Context()),
		}

		result, err := svc.AddItem(r.Context(), middleware.CartOwnerFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartDecrementItem takes one unit off a line; the line disappears at zero.
func CartDecrementItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartKeyed(svc, logg, cart.Service.RemoveOne)
}

// CartRemoveItem drops a line regardless of quantity.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartKeyed(svc, logg, cart.Service.RemoveItem)
}

func cartKeyed(svc cart.Service, logg *logger.Logger, op func(cart.Service, context.Context, string, cart.Key) (cart.CartDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body itemKeyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := op(svc, r.Context(), middleware.CartOwnerFromContext(r.Context()), body.key())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		result, err := svc.Clear(r.Context(), middleware.CartOwnerFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
