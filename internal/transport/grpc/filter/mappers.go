package filter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
)

// structToValues flattens a request Struct into query-string form so it
// goes through the same parameter parsing as HTTP requests.
// Nested values are rejected.
func structToValues(in *structpb.Struct) (url.Values, error) {
	values := url.Values{}
	for key, v := range in.GetFields() {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			values.Set(key, kind.StringValue)
		case *structpb.Value_NumberValue:
			values.Set(key, strconv.FormatFloat(kind.NumberValue, 'f', -1, 64))
		case *structpb.Value_BoolValue:
			values.Set(key, strconv.FormatBool(kind.BoolValue))
		case *structpb.Value_NullValue:
		default:
			return nil, fmt.Errorf("field %q must be a scalar", key)
		}
	}
	return values, nil
}

// responseToStruct converts the envelope through its JSON form so the
// Struct carries exactly the keys the HTTP body would.
func responseToStruct(resp *contracts.FilterResponse) (*structpb.Struct, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("convert envelope: %w", err)
	}
	return out, nil
}
