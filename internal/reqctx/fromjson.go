package reqctx

import "time"

// FromJSON builds a Context from a generically JSON-decoded map (as
// produced by encoding/json into map[string]any), inferring each
// field's Scalar kind: numbers become Int, strings that parse as
// RFC3339 become Timestamp, every other string (including decimal
// amounts and pix keys) stays a plain string scalar. Fields of an
// unsupported type (bool, nested object, array) are dropped rather
// than rejected — an absent field is an ordinary evaluation-time
// anomaly, never an error.
func FromJSON(raw map[string]any) Context {
	ctx := make(Context, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case float64:
			ctx[k] = Int(int64(val))
		case string:
			if ts, err := time.Parse(time.RFC3339, val); err == nil {
				ctx[k] = Timestamp(ts)
			} else {
				ctx[k] = String(val)
			}
		}
	}
	return ctx
}
