package rulecompile

// validPixKeyTypes is the closed set condition_type=PIX_KEY_TYPE must
// coerce into.
var validPixKeyTypes = map[string]struct{}{
	"QRCODE_STATIC": {}, "QRCODE_DYNAMIC": {}, "EMAIL": {},
	"PHONE": {}, "CPF": {}, "CNPJ": {}, "EVP": {},
}

// expandAlias turns condition_type/condition_value into the matcher
// JSON node it stands for, so it can flow through the same
// compileMatcherNode path as an ADVANCED tree.
func expandAlias(conditionType string, value any, path string) (map[string]any, *CompileError) {
	switch conditionType {
	case "USER":
		return map[string]any{
			"type": "VALUE_IN", "field": "api_user_id",
			"values": []any{value}, "coerce": "int",
		}, nil
	case "PIX_KEY":
		return map[string]any{
			"type": "VALUE_IN", "field": "pix_key",
			"values": []any{value}, "coerce": "str",
		}, nil
	case "PIX_KEY_TYPE":
		str, ok := value.(string)
		if !ok {
			e := newErr(path+".condition_value", CodeBadType, "expected string, got %T", value)
			return nil, &e
		}
		if _, ok := validPixKeyTypes[str]; !ok {
			e := newErr(path+".condition_value", CodeInvalidPixKeyType, "%q is not a recognized pix key type", str)
			return nil, &e
		}
		return map[string]any{
			"type": "VALUE_IN", "field": "pix_key_type",
			"values": []any{value}, "coerce": "str",
		}, nil
	default:
		e := newErr(path+".condition_type", CodeUnknownConditional, "unknown condition_type %q", conditionType)
		return nil, &e
	}
}
