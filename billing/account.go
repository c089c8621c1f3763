// Package billing manages the subscription of the account: its plan, its
// token balance and top-up purchases.
package billing

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/errors"
	"github.com/bobinette/atelier/log"
)

// DefaultCapacity is the number of tokens the usage gauge is drawn against.
const DefaultCapacity int64 = 600000

type API interface {
	Subscription(ctx context.Context) (atelier.Subscription, error)
	Plans(ctx context.Context) ([]atelier.Plan, error)
	UpdateSubscription(ctx context.Context, planID string) (atelier.Subscription, string, error)
	TopUpPackages(ctx context.Context) ([]atelier.TopUpPackage, error)
	PurchaseTopUp(ctx context.Context, packageID string) (int64, string, error)
}

type Option func(*Account)

func WithCapacity(capacity int64) Option {
	return func(a *Account) { a.capacity = capacity }
}

func WithLogger(l log.Logger) Option {
	return func(a *Account) { a.logger = l }
}

// Account is the local view of the subscription. Load must be called
// before reading it.
type Account struct {
	api      API
	capacity int64
	logger   log.Logger

	mu           sync.RWMutex
	loaded       bool
	subscription atelier.Subscription
	plans        []atelier.Plan
	packages     []atelier.TopUpPackage
}

func NewAccount(api API, opts ...Option) (*Account, error) {
	if api == nil {
		return nil, errors.New("billing account requires an API", errors.Programming())
	}

	a := &Account{
		api:      api,
		capacity: DefaultCapacity,
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Load fetches the subscription, the plans and the top-up packages
// concurrently. Nothing is replaced unless the three succeed.
func (a *Account) Load(ctx context.Context) error {
	var (
		sub      atelier.Subscription
		plans    []atelier.Plan
		packages []atelier.TopUpPackage
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sub, err = a.api.Subscription(ctx)
		return err
	})
	g.Go(func() (err error) {
		plans, err = a.api.Plans(ctx)
		return err
	})
	g.Go(func() (err error) {
		packages, err = a.api.TopUpPackages(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		a.logger.Errorf("could not load subscription: %v", err)
		return failure(err, "Failed to fetch subscription data")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.loaded = true
	a.subscription = sub
	a.plans = plans
	a.packages = packages
	return nil
}

func (a *Account) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded
}

func (a *Account) Subscription() atelier.Subscription {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.subscription
}

func (a *Account) Plans() []atelier.Plan {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]atelier.Plan(nil), a.plans...)
}

func (a *Account) Packages() []atelier.TopUpPackage {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]atelier.TopUpPackage(nil), a.packages...)
}

// CurrentPlan returns the plan the subscription is on. The subscription
// names its plan, compared case insensitively.
func (a *Account) CurrentPlan() (atelier.Plan, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.subscription.Plan == "" {
		return atelier.Plan{}, false
	}
	for _, p := range a.plans {
		if strings.EqualFold(p.Name, a.subscription.Plan) {
			return p, true
		}
	}
	return atelier.Plan{}, false
}

// ChangePlan moves the subscription to planID and returns the confirmation
// message.
func (a *Account) ChangePlan(ctx context.Context, planID string) (string, error) {
	if planID == "" {
		return "", errors.New("No plan selected to change to", errors.Validation(), errors.BadRequest())
	}

	sub, msg, err := a.api.UpdateSubscription(ctx, planID)
	if err != nil {
		a.logger.Errorf("could not change plan to %s: %v", planID, err)
		return "", failure(err, "Failed to update subscription")
	}

	a.mu.Lock()
	a.subscription = sub
	a.mu.Unlock()

	if msg == "" {
		msg = "Subscription updated successfully"
	}
	return msg, nil
}

// PurchaseTopUp buys a token package. The purchased tokens are added to
// the local balance.
func (a *Account) PurchaseTopUp(ctx context.Context, packageID string) (string, error) {
	if packageID == "" {
		return "", errors.New("Please select a token package to continue", errors.Validation(), errors.BadRequest())
	}

	tokens, msg, err := a.api.PurchaseTopUp(ctx, packageID)
	if err != nil {
		a.logger.Errorf("could not purchase package %s: %v", packageID, err)
		return "", failure(err, "Failed to purchase token top-up")
	}

	a.mu.Lock()
	a.subscription.Tokens += tokens
	a.mu.Unlock()

	if msg == "" {
		msg = "Token top-up purchased successfully"
	}
	return msg, nil
}

// OutOfTokens reports whether a loaded subscription has no token left.
func (a *Account) OutOfTokens() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded && a.subscription.Tokens <= 0
}

// Usage is the share of the capacity covered by the token balance, in
// percent.
func (a *Account) Usage() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Usage(a.subscription.Tokens, a.capacity)
}

func (a *Account) Capacity() int64 {
	return a.capacity
}

// Usage returns tokens as a percentage of capacity, within [0, 100].
func Usage(tokens, capacity int64) float64 {
	if capacity <= 0 || tokens <= 0 {
		return 0
	}
	if tokens >= capacity {
		return 100
	}
	return float64(tokens) * 100 / float64(capacity)
}

func failure(err error, fallback string) error {
	if errors.MessageOr(err, "") != "" {
		return err
	}
	return errors.New(fallback, errors.WithCode(errors.CodeOf(err)), errors.WithKind(errors.KindOf(err)), errors.WithCause(err))
}
