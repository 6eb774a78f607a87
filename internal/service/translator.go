// Package service implements the request translator: it turns inbound HTTP
// requests into backend calls and backend results into HTTP responses.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"api-gateway-go/internal/model"
	"api-gateway-go/internal/route"
)

const contentTypeJSON = "application/json"

// UserBackend forwards raw HTTP requests to the user service.
type UserBackend interface {
	Forward(ctx context.Context, req *model.InboundRequest) (*model.BackendResponse, error)
}

// PromoBackend is the typed RPC surface of the promo service.
type PromoBackend interface {
	Create(ctx context.Context, in model.PromoCreate) (model.Promo, error)
	List(ctx context.Context, page, limit int) (model.PromoPage, error)
	Get(ctx context.Context, id string) (model.Promo, error)
	Update(ctx context.Context, id string, in model.PromoUpdate) (model.Promo, error)
	Delete(ctx context.Context, id string) error
}

// Translator converts between the gateway's HTTP contract and its backends.
type Translator struct {
	users  UserBackend
	promos PromoBackend
	logger *slog.Logger
}

// NewTranslator creates a Translator.
func NewTranslator(users UserBackend, promos PromoBackend, logger *slog.Logger) *Translator {
	return &Translator{
		users:  users,
		promos: promos,
		logger: logger.With("component", "translator"),
	}
}

// Passthrough forwards req to the user service and returns its response
// unchanged. Transport faults become a KindUserService error.
func (t *Translator) Passthrough(ctx context.Context, req *model.InboundRequest) (*model.OutboundResponse, error) {
	resp, err := t.users.Forward(ctx, req)
	if err != nil {
		return nil, &Error{
			Kind:   KindUserService,
			Detail: "Error communicating with user service: " + failureDetail(err),
			Err:    err,
		}
	}

	return &model.OutboundResponse{
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}

// Translate runs the promo operation op for req. params carries path
// placeholders such as the promo id.
func (t *Translator) Translate(ctx context.Context, op route.Operation, req *model.InboundRequest, params route.Params) (*model.OutboundResponse, error) {
	out, err := t.translate(ctx, op, req, params)

	var se *Error
	if errors.As(err, &se) && se.Kind == KindValidation {
		t.logger.Debug("request rejected",
			"op", string(op),
			"path", req.Path,
			"detail", se.Detail,
		)
	}
	return out, err
}

func (t *Translator) translate(ctx context.Context, op route.Operation, req *model.InboundRequest, params route.Params) (*model.OutboundResponse, error) {
	switch op {
	case route.OpCreatePromo:
		return t.createPromo(ctx, req)
	case route.OpListPromos:
		return t.listPromos(ctx, req)
	case route.OpGetPromo:
		return t.getPromo(ctx, params)
	case route.OpUpdatePromo:
		return t.updatePromo(ctx, req, params)
	case route.OpDeletePromo:
		return t.deletePromo(ctx, params)
	default:
		return nil, fmt.Errorf("translate: unsupported operation %q", op)
	}
}

func (t *Translator) createPromo(ctx context.Context, req *model.InboundRequest) (*model.OutboundResponse, error) {
	in, err := parsePromoCreate(req.Body)
	if err != nil {
		return nil, validationError(route.OpCreatePromo, err)
	}

	p, err := t.promos.Create(ctx, in)
	if err != nil {
		return nil, operationError(route.OpCreatePromo, err)
	}
	return jsonResponse(http.StatusCreated, p)
}

func (t *Translator) listPromos(ctx context.Context, req *model.InboundRequest) (*model.OutboundResponse, error) {
	page, err := positiveQueryInt(req, "page", 1)
	if err != nil {
		return nil, validationError(route.OpListPromos, err)
	}
	limit, err := positiveQueryInt(req, "limit", 10)
	if err != nil {
		return nil, validationError(route.OpListPromos, err)
	}

	out, err := t.promos.List(ctx, page, limit)
	if err != nil {
		return nil, operationError(route.OpListPromos, err)
	}
	return jsonResponse(http.StatusOK, out)
}

func (t *Translator) getPromo(ctx context.Context, params route.Params) (*model.OutboundResponse, error) {
	id, err := pathID(params)
	if err != nil {
		return nil, validationError(route.OpGetPromo, err)
	}

	p, err := t.promos.Get(ctx, id)
	if err != nil {
		return nil, operationError(route.OpGetPromo, err)
	}
	return jsonResponse(http.StatusOK, p)
}

func (t *Translator) updatePromo(ctx context.Context, req *model.InboundRequest, params route.Params) (*model.OutboundResponse, error) {
	id, err := pathID(params)
	if err != nil {
		return nil, validationError(route.OpUpdatePromo, err)
	}
	in, err := parsePromoUpdate(req.Body)
	if err != nil {
		return nil, validationError(route.OpUpdatePromo, err)
	}

	p, err := t.promos.Update(ctx, id, in)
	if err != nil {
		return nil, operationError(route.OpUpdatePromo, err)
	}
	return jsonResponse(http.StatusOK, p)
}

func (t *Translator) deletePromo(ctx context.Context, params route.Params) (*model.OutboundResponse, error) {
	id, err := pathID(params)
	if err != nil {
		return nil, validationError(route.OpDeletePromo, err)
	}

	if err := t.promos.Delete(ctx, id); err != nil {
		return nil, operationError(route.OpDeletePromo, err)
	}
	return &model.OutboundResponse{StatusCode: http.StatusNoContent, Header: make(http.Header)}, nil
}

func jsonResponse(status int, v any) (*model.OutboundResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return &model.OutboundResponse{
		StatusCode:  status,
		Header:      make(http.Header),
		ContentType: contentTypeJSON,
		Body:        body,
	}, nil
}

// verbs maps each operation to the gerund used in error details.
var verbs = map[route.Operation]string{
	route.OpCreatePromo: "creating",
	route.OpListPromos:  "listing",
	route.OpGetPromo:    "getting",
	route.OpUpdatePromo: "updating",
	route.OpDeletePromo: "deleting",
}

func validationError(op route.Operation, err error) *Error {
	return &Error{
		Kind:   KindValidation,
		Detail: fmt.Sprintf("Error %s promo: %s", verbs[op], err),
		Err:    err,
	}
}

// operationError maps any adapter failure, not-found included, to one kind.
func operationError(op route.Operation, err error) *Error {
	return &Error{
		Kind:   KindPromoOperation,
		Detail: fmt.Sprintf("Error %s promo: %s", verbs[op], failureDetail(err)),
		Err:    err,
	}
}

func failureDetail(err error) string {
	var f *model.Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}
