package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"api-gateway-go/internal/config"
	"api-gateway-go/internal/metrics"
	"api-gateway-go/internal/model"
	"api-gateway-go/internal/promorpc"
)

const backendPromo = "promo"

// PromoClient calls the promo service over one long-lived gRPC channel.
// It is safe for concurrent use.
type PromoClient struct {
	conn    grpc.ClientConnInterface
	rpc     promorpc.PromoServiceClient
	timeout time.Duration
	target  string
	logger  *slog.Logger
	metrics *metrics.Metrics

	closeOnce sync.Once
	closeErr  error
}

// NewPromoClient opens the channel to the configured promo service address.
// The channel connects lazily; an unreachable service surfaces on the first call.
func NewPromoClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*PromoClient, error) {
	target := cfg.PromoService.Target()
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial promo service %s: %w", target, err)
	}
	timeout := time.Duration(cfg.PromoService.TimeoutSeconds) * time.Second
	return NewPromoClientFromConn(conn, target, timeout, logger, m), nil
}

// NewPromoClientFromConn wraps an existing channel. If conn implements
// io.Closer, Close closes it.
func NewPromoClientFromConn(conn grpc.ClientConnInterface, target string, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *PromoClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PromoClient{
		conn:    conn,
		rpc:     promorpc.NewPromoServiceClient(conn),
		timeout: timeout,
		target:  target,
		logger:  logger.With("component", "promo_client"),
		metrics: m,
	}
}

// Target returns the promo service address the channel is bound to.
func (c *PromoClient) Target() string {
	return c.target
}

// Create stores a new promo.
func (c *PromoClient) Create(ctx context.Context, in model.PromoCreate) (model.Promo, error) {
	var resp *promorpc.PromoResponse
	err := c.call(ctx, "create", func(ctx context.Context) (err error) {
		resp, err = c.rpc.CreatePromo(ctx, &promorpc.PromoRequest{
			Name:           in.Name,
			Description:    in.Description,
			CreatorID:      in.CreatorID,
			DiscountAmount: in.DiscountAmount,
			Code:           in.Code,
		})
		return err
	})
	if err != nil {
		return model.Promo{}, err
	}
	return fromResponse(resp)
}

// List returns one page of promos.
func (c *PromoClient) List(ctx context.Context, page, limit int) (model.PromoPage, error) {
	var resp *promorpc.PromoListResponse
	err := c.call(ctx, "list", func(ctx context.Context) (err error) {
		resp, err = c.rpc.ListPromos(ctx, &promorpc.PromoListRequest{Page: int32(page), Limit: int32(limit)})
		return err
	})
	if err != nil {
		return model.PromoPage{}, err
	}

	out := model.PromoPage{
		Items: make([]model.Promo, 0, len(resp.Items)),
		Total: int(resp.Total),
		Page:  int(resp.Page),
		Limit: int(resp.Limit),
		Pages: int(resp.Pages),
	}
	for _, item := range resp.Items {
		p, err := fromResponse(item)
		if err != nil {
			return model.PromoPage{}, err
		}
		out.Items = append(out.Items, p)
	}
	return out, nil
}

// Get fetches a promo by id.
func (c *PromoClient) Get(ctx context.Context, id string) (model.Promo, error) {
	var resp *promorpc.PromoResponse
	err := c.call(ctx, "get", func(ctx context.Context) (err error) {
		resp, err = c.rpc.GetPromo(ctx, &promorpc.PromoRequest{ID: id})
		return err
	})
	if err != nil {
		return model.Promo{}, err
	}
	return fromResponse(resp)
}

// Update changes the present fields of a promo.
func (c *PromoClient) Update(ctx context.Context, id string, in model.PromoUpdate) (model.Promo, error) {
	var resp *promorpc.PromoResponse
	err := c.call(ctx, "update", func(ctx context.Context) (err error) {
		resp, err = c.rpc.UpdatePromo(ctx, &promorpc.PromoUpdateRequest{
			ID:             id,
			Name:           in.Name,
			Description:    in.Description,
			DiscountAmount: in.DiscountAmount,
			Code:           in.Code,
		})
		return err
	})
	if err != nil {
		return model.Promo{}, err
	}
	return fromResponse(resp)
}

// Delete removes a promo by id.
func (c *PromoClient) Delete(ctx context.Context, id string) error {
	return c.call(ctx, "delete", func(ctx context.Context) error {
		_, err := c.rpc.DeletePromo(ctx, &promorpc.PromoDeleteRequest{ID: id})
		return err
	})
}

// Close closes the channel. Calls after the first return the first result.
func (c *PromoClient) Close() error {
	c.closeOnce.Do(func() {
		if closer, ok := c.conn.(io.Closer); ok {
			c.closeErr = closer.Close()
		}
		c.logger.Info("promo client closed", "target", c.target)
	})
	return c.closeErr
}

// call runs fn under the per-call deadline and normalizes its error.
func (c *PromoClient) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	if err == nil {
		c.metrics.ObserveBackend(backendPromo, op, time.Since(start).Seconds(), "")
		return nil
	}

	f := rpcFailure(err)
	c.metrics.ObserveBackend(backendPromo, op, time.Since(start).Seconds(), f.Kind.String())
	c.logger.Debug("promo call failed", "op", op, "kind", f.Kind.String(), "err", err)
	return f
}

func rpcFailure(err error) *model.Failure {
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return model.NewFailure(model.FailureTimeout, err)
		}
		return model.NewFailure(model.FailureUnreachable, err)
	}

	var kind model.FailureKind
	switch st.Code() {
	case codes.DeadlineExceeded:
		kind = model.FailureTimeout
	case codes.Unavailable, codes.Canceled:
		kind = model.FailureUnreachable
	case codes.Internal, codes.DataLoss:
		kind = model.FailureMalformedResponse
	default:
		kind = model.FailureBackendRejected
	}
	return &model.Failure{Kind: kind, Message: st.Message(), Err: err}
}

func fromResponse(r *promorpc.PromoResponse) (model.Promo, error) {
	if r == nil {
		return model.Promo{}, &model.Failure{Kind: model.FailureMalformedResponse, Message: "empty promo in response"}
	}
	created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return model.Promo{}, model.NewFailure(model.FailureMalformedResponse, fmt.Errorf("parse created_at: %w", err))
	}
	updated, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if err != nil {
		return model.Promo{}, model.NewFailure(model.FailureMalformedResponse, fmt.Errorf("parse updated_at: %w", err))
	}
	return model.Promo{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		CreatorID:      r.CreatorID,
		DiscountAmount: r.DiscountAmount,
		Code:           r.Code,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}, nil
}
