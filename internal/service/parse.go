package service

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"

	"api-gateway-go/internal/model"
	"api-gateway-go/internal/route"
)

var errEmptyBody = errors.New("request body is required")

// parseObject checks that body holds a single JSON object.
func parseObject(body []byte) (gjson.Result, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return gjson.Result{}, errEmptyBody
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.New("request body is not valid JSON")
	}
	obj := gjson.ParseBytes(body)
	if !obj.IsObject() {
		return gjson.Result{}, errors.New("request body must be a JSON object")
	}
	return obj, nil
}

// field looks a key up literally; gjson path syntax is escaped.
func field(obj gjson.Result, name string) (gjson.Result, bool) {
	v := obj.Get(gjson.Escape(name))
	if !v.Exists() || v.Type == gjson.Null {
		return v, false
	}
	return v, true
}

func requiredString(obj gjson.Result, name string) (string, error) {
	v, ok := field(obj, name)
	if !ok {
		return "", fmt.Errorf("missing required field %q", name)
	}
	if v.Type != gjson.String {
		return "", fmt.Errorf("field %q must be a string", name)
	}
	return v.Str, nil
}

func requiredNumber(obj gjson.Result, name string) (float64, error) {
	v, ok := field(obj, name)
	if !ok {
		return 0, fmt.Errorf("missing required field %q", name)
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("field %q must be a number", name)
	}
	return v.Num, nil
}

// optionalString returns nil when the field is absent or null.
func optionalString(obj gjson.Result, name string) (*string, error) {
	v, ok := field(obj, name)
	if !ok {
		return nil, nil
	}
	if v.Type != gjson.String {
		return nil, fmt.Errorf("field %q must be a string", name)
	}
	s := v.Str
	return &s, nil
}

// optionalNumber returns nil when the field is absent or null.
func optionalNumber(obj gjson.Result, name string) (*float64, error) {
	v, ok := field(obj, name)
	if !ok {
		return nil, nil
	}
	if v.Type != gjson.Number {
		return nil, fmt.Errorf("field %q must be a number", name)
	}
	n := v.Num
	return &n, nil
}

func parsePromoCreate(body []byte) (model.PromoCreate, error) {
	obj, err := parseObject(body)
	if err != nil {
		return model.PromoCreate{}, err
	}

	var in model.PromoCreate
	if in.Name, err = requiredString(obj, "name"); err != nil {
		return model.PromoCreate{}, err
	}
	if in.Description, err = requiredString(obj, "description"); err != nil {
		return model.PromoCreate{}, err
	}
	if in.CreatorID, err = requiredString(obj, "creatorId"); err != nil {
		return model.PromoCreate{}, err
	}
	if in.DiscountAmount, err = requiredNumber(obj, "discountAmount"); err != nil {
		return model.PromoCreate{}, err
	}
	if in.Code, err = requiredString(obj, "code"); err != nil {
		return model.PromoCreate{}, err
	}
	return in, nil
}

// parsePromoUpdate reads the optional update fields. creatorId is not
// updatable and is ignored if sent.
func parsePromoUpdate(body []byte) (model.PromoUpdate, error) {
	obj, err := parseObject(body)
	if err != nil {
		return model.PromoUpdate{}, err
	}

	var in model.PromoUpdate
	if in.Name, err = optionalString(obj, "name"); err != nil {
		return model.PromoUpdate{}, err
	}
	if in.Description, err = optionalString(obj, "description"); err != nil {
		return model.PromoUpdate{}, err
	}
	if in.DiscountAmount, err = optionalNumber(obj, "discountAmount"); err != nil {
		return model.PromoUpdate{}, err
	}
	if in.Code, err = optionalString(obj, "code"); err != nil {
		return model.PromoUpdate{}, err
	}
	return in, nil
}

// positiveQueryInt reads a query parameter that must be a positive integer,
// returning def when the parameter is absent.
func positiveQueryInt(req *model.InboundRequest, name string, def int) (int, error) {
	raw, ok := req.QueryParam(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > math.MaxInt32 {
		return 0, fmt.Errorf("query parameter %q must be a positive integer; got %q", name, raw)
	}
	return n, nil
}

func pathID(params route.Params) (string, error) {
	id := params["id"]
	if id == "" {
		return "", errors.New("missing path parameter \"id\"")
	}
	return id, nil
}
