package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/lauritienda/backend-tienda/internal/coupon"
	"github.com/lauritienda/backend-tienda/internal/obs"
	"github.com/lauritienda/backend-tienda/internal/ordercode"
	"github.com/lauritienda/backend-tienda/internal/pricing"
	"github.com/lauritienda/backend-tienda/internal/repo"
	"github.com/lauritienda/backend-tienda/internal/stock"
)

// ErrUnknownReference is returned when a cart line names a product, size or
// payment method that does not resolve.
var ErrUnknownReference = errors.New("unknown product, size or payment method reference")

// LineInput is one requested cart line.
type LineInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	SizeID    int64 `json:"size_id" validate:"required,gt=0"`
	Qty       int   `json:"quantity" validate:"required,gt=0"`
}

// Input is a checkout request. ShippingCost carries the client-chosen quote;
// the engine recomputes product pricing itself but trusts this figure unless
// free shipping overrides it.
type Input struct {
	CustomerName    string      `json:"nombre" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Phone           string      `json:"telefono"`
	Address         string      `json:"direccion" validate:"required"`
	PostalCode      string      `json:"codigo_postal" validate:"required"`
	PaymentMethodID int64       `json:"metodo_pago_id" validate:"required,gt=0"`
	CouponCode      string      `json:"cupon"`
	ShippingCost    int64       `json:"costo_envio" validate:"gte=0"`
	Lines           []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// OutputLine is one persisted order line with its discount breakdown.
type OutputLine struct {
	ProductID int64 `json:"product_id"`
	SizeID    int64 `json:"size_id"`
	Qty       int   `json:"quantity"`
	UnitPrice int64 `json:"precio_unitario"`
	Discount  int64 `json:"descuento"`
	Subtotal  int64 `json:"subtotal"`
}

// Output is the persisted checkout result.
type Output struct {
	Code         string       `json:"codigo"`
	Subtotal     int64        `json:"subtotal"`
	Discount     int64        `json:"descuento"`
	ShippingCost int64        `json:"costo_envio"`
	Total        int64        `json:"total"`
	Status       string       `json:"estado"`
	Lines        []OutputLine `json:"lines"`
}

// Notifier is invoked after commit with the created order.
type Notifier interface {
	OrderCreated(ctx context.Context, code string, email string, total int64) error
}

// Service runs the whole checkout inside one transaction: stock validation,
// the discount chain, order code generation and persistence commit together
// or not at all.
type Service struct {
	Pool               *pgxpool.Pool
	Log                zerolog.Logger
	Notify             Notifier
	OrderCodeRetries   int
	CodeInsertAttempts int
}

// Create validates and persists one order.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s.Pool == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	now := time.Now()

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Output{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	products := repo.Products{Q: tx}
	stocks := repo.Stock{Q: tx}
	promotions := repo.Promotions{Q: tx}
	methods := repo.PaymentMethods{Q: tx}
	orders := repo.Orders{Q: tx}

	cartLines, err := s.resolveLines(ctx, products, stocks, in.Lines)
	if err != nil {
		return Output{}, err
	}

	method, found, err := methods.Get(ctx, in.PaymentMethodID)
	if err != nil {
		return Output{}, err
	}
	if !found || !method.Active {
		return Output{}, fmt.Errorf("payment method %d: %w", in.PaymentMethodID, ErrUnknownReference)
	}

	promos, err := promotions.Active(ctx, now)
	if err != nil {
		return Output{}, err
	}

	engine := pricing.Engine{Coupons: coupon.Applier{Repo: promotions}}
	quote, err := engine.Price(ctx, pricing.Input{
		Lines:         cartLines,
		Promotions:    promos,
		CouponCode:    in.CouponCode,
		PaymentMethod: method.Name,
		ShippingCost:  in.ShippingCost,
		Now:           now,
	})
	if err != nil {
		s.countCoupon(err)
		return Output{}, err
	}
	if in.CouponCode != "" {
		s.countCoupon(nil)
	}

	order, err := s.persistOrder(ctx, tx, orders, in, quote)
	if err != nil {
		return Output{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Output{}, err
	}
	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.Inc()
	}

	if s.Notify != nil {
		if err := s.Notify.OrderCreated(ctx, order.Code, in.Email, quote.Total); err != nil {
			s.Log.Warn().Err(err).Str("order_code", order.Code).Msg("order notification enqueue failed")
		}
	}

	out := Output{
		Code:         order.Code,
		Subtotal:     quote.Subtotal,
		Discount:     quote.Discount,
		ShippingCost: quote.ShippingCost,
		Total:        quote.Total,
		Status:       order.Status,
		Lines:        make([]OutputLine, len(quote.Lines)),
	}
	for i, l := range quote.Lines {
		out.Lines[i] = OutputLine{
			ProductID: l.ProductID,
			SizeID:    l.SizeID,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Subtotal:  l.Subtotal,
		}
	}
	return out, nil
}

// resolveLines loads price/category snapshots and validates stock for every
// requested line. Unresolvable references abort checkout.
func (s *Service) resolveLines(ctx context.Context, products repo.Products, stocks repo.Stock, lines []LineInput) ([]pricing.CartLine, error) {
	checker := stock.Checker{Repo: stocks}
	resolved := make([]pricing.CartLine, 0, len(lines))
	for _, l := range lines {
		p, found, err := products.Get(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("product %d: %w", l.ProductID, ErrUnknownReference)
		}
		if err := checker.Ensure(ctx, l.ProductID, l.SizeID, l.Qty); err != nil {
			return nil, err
		}
		resolved = append(resolved, pricing.CartLine{
			ProductID:    p.ID,
			SizeID:       l.SizeID,
			Qty:          l.Qty,
			UnitPrice:    p.Price,
			CategoryID:   p.CategoryID,
			CategoryName: p.CategoryName,
		})
	}
	return resolved, nil
}

// persistOrder generates a code and inserts the order with its lines. A
// unique-constraint conflict on the code means another checkout won the race;
// each insert runs under a savepoint so the conflict can be rolled back and
// retried with a fresh code without aborting the outer transaction.
func (s *Service) persistOrder(ctx context.Context, tx pgx.Tx, orders repo.Orders, in Input, quote pricing.Quote) (repo.Order, error) {
	gen := ordercode.Generator{
		Store:      orders,
		MaxRetries: s.OrderCodeRetries,
		OnRetry:    func() { incCounter(obs.OrderCodeRetriesTotal) },
		OnFallback: func() { incCounter(obs.OrderCodeFallbackTotal) },
	}

	attempts := s.CodeInsertAttempts
	if attempts <= 0 {
		attempts = 3
	}
	var couponID *int64
	if quote.CouponID != 0 {
		id := quote.CouponID
		couponID = &id
	}

	for attempt := 0; attempt < attempts; attempt++ {
		code, err := gen.Generate(ctx)
		if err != nil {
			return repo.Order{}, err
		}
		order := repo.Order{
			Code:            code,
			CustomerName:    in.CustomerName,
			Email:           in.Email,
			Phone:           in.Phone,
			Address:         in.Address,
			PostalCode:      in.PostalCode,
			PaymentMethodID: in.PaymentMethodID,
			CouponID:        couponID,
			Subtotal:        quote.Subtotal,
			Discount:        quote.Discount,
			ShippingCost:    quote.ShippingCost,
			Total:           quote.Total,
			Status:          "pendiente",
		}

		sp, err := tx.Begin(ctx)
		if err != nil {
			return repo.Order{}, err
		}
		spOrders := repo.Orders{Q: sp}
		id, err := spOrders.Insert(ctx, order)
		if repo.IsUniqueViolation(err) {
			_ = sp.Rollback(ctx)
			incCounter(obs.OrderCodeRetriesTotal)
			continue
		}
		if err != nil {
			_ = sp.Rollback(ctx)
			return repo.Order{}, err
		}
		order.ID = id
		for _, l := range quote.Lines {
			if err := spOrders.InsertLine(ctx, repo.OrderLine{
				OrderID:   id,
				ProductID: l.ProductID,
				SizeID:    l.SizeID,
				Qty:       l.Qty,
				UnitPrice: l.UnitPrice,
				Discount:  l.Discount,
				Subtotal:  l.Subtotal,
			}); err != nil {
				_ = sp.Rollback(ctx)
				return repo.Order{}, err
			}
		}
		if err := sp.Commit(ctx); err != nil {
			return repo.Order{}, err
		}
		return order, nil
	}
	return repo.Order{}, errors.New("could not assign a unique order code")
}

func (s *Service) countCoupon(err error) {
	if obs.CouponRedemptionsTotal == nil {
		return
	}
	result := "applied"
	if err != nil {
		var cerr *coupon.Error
		if errors.As(err, &cerr) {
			result = string(cerr.Reason)
		} else {
			return
		}
	}
	obs.CouponRedemptionsTotal.WithLabelValues(result).Inc()
}

func incCounter(c interface{ Inc() }) {
	if c != nil {
		c.Inc()
	}
}
