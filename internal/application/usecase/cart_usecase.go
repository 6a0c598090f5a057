// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	cartdom "storefront/internal/domain/cart"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
	ErrCartNotFound        = errors.New("cart_usecase: not found")
)

// Clock provides current time (for testability).
// Day keys are always derived from a Clock injected here, never from ambient
// time below the usecase layer, so tests can cross midnight freely.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// DeltaInput identifies one (product, variant) line and the signed change.
type DeltaInput struct {
	ProductID   string
	CategoryID  string
	ProductCode string
	VariantName string
	Delta       int
}

// CartUsecase coordinates cart operations.
type CartUsecase struct {
	repo  cartdom.Repository
	clock Clock
}

func NewCartUsecase(repo cartdom.Repository) *CartUsecase {
	return &CartUsecase{repo: repo, clock: systemClock{}}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(repo cartdom.Repository, clock Clock) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartUsecase{repo: repo, clock: clock}
}

// ApplyDelta applies one signed quantity change to today's cart for userID.
//
// The whole read-modify-write runs inside one storage transaction
// (repo.Mutate), so concurrent deltas on the same (user, day) key cannot
// lose updates.
//
// cleared=true reports the "last item removed, cart doc deleted" outcome,
// which the transport surfaces distinctly from a normal update.
func (uc *CartUsecase) ApplyDelta(ctx context.Context, userID string, in DeltaInput) (c *cartdom.Cart, cleared bool, err error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, false, ErrCartInvalidArgument
	}
	if in.Delta == 0 {
		return nil, false, cartdom.ErrZeroDelta
	}
	if strings.TrimSpace(in.ProductCode) == "" || strings.TrimSpace(in.VariantName) == "" {
		return nil, false, ErrCartInvalidArgument
	}

	now := uc.clock.Now()
	day := cartdom.DayKey(now)

	err = uc.repo.Mutate(ctx, uid, day, func(current *cartdom.Cart) (*cartdom.Cart, error) {
		c, cleared = nil, false // reset on transaction retry

		if current == nil {
			if in.Delta < 0 {
				// cannot decrement an item that doesn't exist
				return nil, ErrCartNotFound
			}
			fresh, nerr := cartdom.NewCart(uid, day, now)
			if nerr != nil {
				return nil, nerr
			}
			current = fresh
		}

		if aerr := current.ApplyDelta(in.ProductID, in.CategoryID, in.ProductCode, in.VariantName, in.Delta, now); aerr != nil {
			return nil, aerr
		}

		if current.Empty() {
			cleared = true
			return nil, nil // delete the doc, never persist an empty cart
		}
		c = current
		return current, nil
	})
	if err != nil {
		return nil, false, err
	}
	return c, cleared, nil
}

// Get returns today's cart for userID, or ErrCartNotFound.
func (uc *CartUsecase) Get(ctx context.Context, userID string) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	day := cartdom.DayKey(uc.clock.Now())
	c, err := uc.repo.Get(ctx, uid, day)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Empty() {
		return nil, ErrCartNotFound
	}
	return c, nil
}
