package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// VariantResolver looks up the catalog snapshot captured when an item is added.
type VariantResolver interface {
	ResolveVariant(ctx context.Context, productID, variantID uuid.UUID, storage, locale string) (*catalog.VariantSnapshot, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Sink        Sink
	Catalog     VariantResolver
	RemovalRule RemovalRule
	Metrics     *metrics.CartMetrics
	Logger      *logger.Logger
}

// Service exposes cart operations scoped to an owner (user id or guest session).
type Service interface {
	Get(ctx context.Context, owner string) (CartDTO, error)
	AddItem(ctx context.Context, owner string, input AddItemInput) (CartDTO, error)
	RemoveOne(ctx context.Context, owner string, key Key) (CartDTO, error)
	RemoveItem(ctx context.Context, owner string, key Key) (CartDTO, error)
	Clear(ctx context.Context, owner string) (CartDTO, error)
}

// AddItemInput is a validated add-to-cart request.
type AddItemInput struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
	Storage   string
	Quantity  int
	Locale    string
}

type service struct {
	sink    Sink
	catalog VariantResolver
	rule    RemovalRule
	metrics *metrics.CartMetrics
	logg    *logger.Logger
	locks   *ownerLocks
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Sink == nil {
		return nil, fmt.Errorf("cart sink required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("variant resolver required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	rule := params.RemovalRule
	if rule == "" {
		rule = RemovalExact
	}
	return &service{
		sink:    params.Sink,
		catalog: params.Catalog,
		rule:    rule,
		metrics: params.Metrics,
		logg:    params.Logger,
		locks:   newOwnerLocks(),
	}, nil
}

func (s *service) Get(ctx context.Context, owner string) (CartDTO, error) {
	if err := validateOwner(owner); err != nil {
		return CartDTO{}, err
	}
	store, err := s.open(ctx, owner)
	if err != nil {
		return CartDTO{}, err
	}
	return ToDTO(store.Snapshot()), nil
}

// AddItem snapshots the variant from the catalog and merges it into the owner's cart.
func (s *service) AddItem(ctx context.Context, owner string, input AddItemInput) (CartDTO, error) {
	if err := validateOwner(owner); err != nil {
		return CartDTO{}, err
	}
	if input.ProductID == uuid.Nil || input.VariantID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product and variant are required")
	}
	snapshot, err := s.catalog.ResolveVariant(ctx, input.ProductID, input.VariantID, strings.TrimSpace(input.Storage), input.Locale)
	if err != nil {
		return CartDTO{}, err
	}
	if snapshot.Stock <= 0 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "variant is out of stock").WithDetails(map[string]any{
			"variant_id": snapshot.VariantID.String(),
			"storage":    snapshot.Storage,
		})
	}

	item := LineItem{
		UserID:    owner,
		ProductID: snapshot.ProductID.String(),
		Title:     snapshot.Title,
		Image:     snapshot.Image,
		UnitPrice: snapshot.UnitPrice,
		Variant: Variant{
			VariantID:   snapshot.VariantID.String(),
			VariantName: snapshot.VariantName,
			Storage:     snapshot.Storage,
		},
		Quantity: input.Quantity,
	}
	return s.mutate(ctx, owner, func(store *Store) error {
		return store.Add(ctx, item)
	})
}

func (s *service) RemoveOne(ctx context.Context, owner string, key Key) (CartDTO, error) {
	if err := validateOwner(owner); err != nil {
		return CartDTO{}, err
	}
	return s.mutate(ctx, owner, func(store *Store) error {
		key := storedKey(store.Snapshot(), key)
		return store.RemoveOne(ctx, key.VariantID, key.Storage)
	})
}

func (s *service) RemoveItem(ctx context.Context, owner string, key Key) (CartDTO, error) {
	if err := validateOwner(owner); err != nil {
		return CartDTO{}, err
	}
	return s.mutate(ctx, owner, func(store *Store) error {
		key := storedKey(store.Snapshot(), key)
		return store.RemoveFromCart(ctx, key.VariantID, key.Storage)
	})
}

func (s *service) Clear(ctx context.Context, owner string) (CartDTO, error) {
	if err := validateOwner(owner); err != nil {
		return CartDTO{}, err
	}
	return s.mutate(ctx, owner, func(store *Store) error {
		return store.Clear(ctx)
	})
}

func (s *service) mutate(ctx context.Context, owner string, op func(*Store) error) (CartDTO, error) {
	unlock := s.locks.lock(owner)
	defer unlock()

	store, err := s.open(ctx, owner)
	if err != nil {
		return CartDTO{}, err
	}
	unsubscribe := store.Subscribe(s.record(ctx))
	defer unsubscribe()

	if err := op(store); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart storage unavailable")
	}
	return ToDTO(store.Snapshot()), nil
}

func (s *service) open(ctx context.Context, owner string) (*Store, error) {
	store, err := NewStore(ctx, s.sink, OwnerKey(owner), WithRemovalRule(s.rule))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart storage unavailable")
	}
	return store, nil
}

// record feeds transitions into metrics and logs persistence failures.
func (s *service) record(ctx context.Context) Listener {
	return func(evt Event) {
		outcome := metrics.OutcomeOK
		if evt.Err != nil {
			outcome = metrics.OutcomeError
			s.logg.Error(s.logg.WithField(ctx, "cart_op", evt.Op.String()), "cart persistence failed", evt.Err)
		}
		s.metrics.RecordMutation(evt.Op.String(), outcome, evt.State.Len())
	}
}

// storedKey maps a client key onto the catalog label saved on the line. The catalog matches
// storage labels case-insensitively, so "128gb" must reach the line added as "128GB".
func storedKey(state State, key Key) Key {
	key = Key{VariantID: strings.ToLower(strings.TrimSpace(key.VariantID)), Storage: strings.TrimSpace(key.Storage)}
	for _, item := range state.Items {
		if strings.EqualFold(item.Variant.VariantID, key.VariantID) && strings.EqualFold(item.Variant.Storage, key.Storage) {
			return item.Key()
		}
	}
	return key
}

func validateOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	return nil
}
