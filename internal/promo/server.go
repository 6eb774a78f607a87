package promo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"api-gateway-go/internal/model"
	"api-gateway-go/internal/promorpc"
)

// Server exposes a Store through promorpc.PromoServiceServer.
type Server struct {
	store  *Store
	logger *slog.Logger
}

var _ promorpc.PromoServiceServer = (*Server)(nil)

// NewServer creates a Server over store.
func NewServer(store *Store, logger *slog.Logger) *Server {
	return &Server{
		store:  store,
		logger: logger.With("component", "promo_server"),
	}
}

func (s *Server) CreatePromo(_ context.Context, in *promorpc.PromoRequest) (*promorpc.PromoResponse, error) {
	p := s.store.Create(model.PromoCreate{
		Name:           in.Name,
		Description:    in.Description,
		CreatorID:      in.CreatorID,
		DiscountAmount: in.DiscountAmount,
		Code:           in.Code,
	})
	s.logger.Debug("promo created", "id", p.ID)
	return toResponse(p), nil
}

func (s *Server) ListPromos(_ context.Context, in *promorpc.PromoListRequest) (*promorpc.PromoListResponse, error) {
	page, err := s.store.List(int(in.Page), int(in.Limit))
	if err != nil {
		return nil, s.statusError(err, "")
	}

	out := &promorpc.PromoListResponse{
		Items: make([]*promorpc.PromoResponse, 0, len(page.Items)),
		Total: int32(page.Total),
		Page:  int32(page.Page),
		Limit: int32(page.Limit),
		Pages: int32(page.Pages),
	}
	for _, p := range page.Items {
		out.Items = append(out.Items, toResponse(p))
	}
	return out, nil
}

func (s *Server) GetPromo(_ context.Context, in *promorpc.PromoRequest) (*promorpc.PromoResponse, error) {
	p, err := s.store.Get(in.ID)
	if err != nil {
		return nil, s.statusError(err, in.ID)
	}
	return toResponse(p), nil
}

func (s *Server) UpdatePromo(_ context.Context, in *promorpc.PromoUpdateRequest) (*promorpc.PromoResponse, error) {
	p, err := s.store.Update(in.ID, model.PromoUpdate{
		Name:           in.Name,
		Description:    in.Description,
		DiscountAmount: in.DiscountAmount,
		Code:           in.Code,
	})
	if err != nil {
		return nil, s.statusError(err, in.ID)
	}
	return toResponse(p), nil
}

func (s *Server) DeletePromo(_ context.Context, in *promorpc.PromoDeleteRequest) (*promorpc.Empty, error) {
	if err := s.store.Delete(in.ID); err != nil {
		return nil, s.statusError(err, in.ID)
	}
	s.logger.Debug("promo deleted", "id", in.ID)
	return &promorpc.Empty{}, nil
}

func (s *Server) statusError(err error, id string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return status.Errorf(codes.NotFound, "Promo with id %s not found", id)
	case errors.Is(err, ErrInvalidPage):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func toResponse(p model.Promo) *promorpc.PromoResponse {
	return &promorpc.PromoResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		CreatorID:      p.CreatorID,
		DiscountAmount: p.DiscountAmount,
		Code:           p.Code,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// LoggingInterceptor logs every unary call with its gRPC code and duration.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	logger = logger.With("component", "promo_rpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		logger.Info("rpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
