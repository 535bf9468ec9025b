package oneplusx

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/prebid/oneplusx-rtd/errortypes"
	"github.com/prebid/oneplusx-rtd/openrtb_ext"
	"github.com/xeipuuv/gojsonschema"
)

const (
	defaultTimeout = 1000 * time.Millisecond
	// Timeouts at or below this many milliseconds are ignored.
	minTimeoutMs = 300
	// Larger timeouts are capped to the longest representable duration.
	maxTimeoutMs = float64(math.MaxInt64 / int64(time.Millisecond))
)

const paramsSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "title": "1plusX RTD module params",
  "type": "object",
  "properties": {
    "customerId": {
      "type": "string",
      "minLength": 1
    },
    "bidders": {
      "type": "array"
    }
  },
  "required": ["customerId"]
}`

var paramsSchema = func() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(paramsSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid 1plusX params schema: %v", err))
	}
	return schema
}()

// moduleParams are the validated params of a single bid cycle.
type moduleParams struct {
	CustomerID string
	Timeout    time.Duration
	Bidders    []openrtb_ext.BidderName
}

// parseParams validates the caller module config, shaped as {"params": {...}}.
// It has no side effects.
func parseParams(moduleConfig json.RawMessage) (moduleParams, error) {
	params := []byte(`{}`)
	if len(moduleConfig) > 0 {
		value, dataType, _, err := jsonparser.Get(moduleConfig, "params")
		switch {
		case errors.Is(err, jsonparser.KeyPathNotFoundError):
		case err != nil:
			return moduleParams{}, &errortypes.ConfigError{Reason: errortypes.InvalidParams, Message: err.Error()}
		case dataType == jsonparser.Object:
			params = value
		case dataType != jsonparser.Null:
			return moduleParams{}, &errortypes.ConfigError{Reason: errortypes.InvalidParams, Message: "params must be an object"}
		}
	}

	if isCustomerIDMissing(params) {
		return moduleParams{}, &errortypes.ConfigError{Reason: errortypes.MissingCustomerId, Message: "missing parameter customerId in module config"}
	}

	result, err := paramsSchema.Validate(gojsonschema.NewBytesLoader(params))
	if err != nil {
		return moduleParams{}, &errortypes.ConfigError{Reason: errortypes.InvalidParams, Message: err.Error()}
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return moduleParams{}, &errortypes.ConfigError{Reason: errortypes.InvalidParams, Message: strings.Join(messages, "; ")}
	}

	customerID, _ := jsonparser.GetString(params, "customerId")

	return moduleParams{
		CustomerID: customerID,
		Timeout:    parseTimeout(params),
		Bidders:    parseBidders(params),
	}, nil
}

func isCustomerIDMissing(params []byte) bool {
	value, dataType, _, err := jsonparser.Get(params, "customerId")
	if err != nil {
		return true
	}
	return dataType == jsonparser.Null || (dataType == jsonparser.String && len(value) == 0)
}

// parseTimeout returns the configured timeout if it is a number above minTimeoutMs,
// and the default otherwise. Timeouts too large for a time.Duration are capped.
func parseTimeout(params []byte) time.Duration {
	value, dataType, _, err := jsonparser.Get(params, "timeout")
	if err != nil || dataType != jsonparser.Number {
		return defaultTimeout
	}

	ms, err := jsonparser.ParseFloat(value)
	if err != nil || ms <= minTimeoutMs {
		return defaultTimeout
	}

	if ms >= maxTimeoutMs {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(ms * float64(time.Millisecond))
}

func parseBidders(params []byte) []openrtb_ext.BidderName {
	bidders := make([]openrtb_ext.BidderName, 0)
	jsonparser.ArrayEach(params, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.String {
			return
		}
		if name, err := jsonparser.ParseString(value); err == nil {
			bidders = append(bidders, openrtb_ext.BidderName(name))
		}
	}, "bidders")
	return bidders
}
