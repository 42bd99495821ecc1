package rulecompile

import "fmt"

// field reads a named key out of a decoded JSON object, reporting
// bad_type if present with the wrong shape. Missing keys are reported
// by the caller (some are required, some optional with defaults).

func fieldString(node map[string]any, key, path string) (string, bool, *CompileError) {
	raw, ok := node[key]
	if !ok {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		e := newErr(path+"."+key, CodeBadType, "expected string, got %T", raw)
		return "", true, &e
	}
	return s, true, nil
}

func fieldBool(node map[string]any, key, path string, def bool) (bool, *CompileError) {
	raw, ok := node[key]
	if !ok {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		e := newErr(path+"."+key, CodeBadType, "expected bool, got %T", raw)
		return def, &e
	}
	return b, nil
}

func fieldInt(node map[string]any, key, path string, def int) (int, *CompileError) {
	raw, ok := node[key]
	if !ok {
		return def, nil
	}
	n, ok := toInt(raw)
	if !ok {
		e := newErr(path+"."+key, CodeBadType, "expected integer, got %T", raw)
		return def, &e
	}
	return n, nil
}

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func fieldStringSlice(node map[string]any, key, path string) ([]string, *CompileError) {
	raw, ok := node[key]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		e := newErr(path+"."+key, CodeBadType, "expected array, got %T", raw)
		return nil, &e
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			e := newErr(fmt.Sprintf("%s.%s[%d]", path, key, i), CodeBadType, "expected string, got %T", item)
			return nil, &e
		}
		out = append(out, s)
	}
	return out, nil
}

func fieldAnySlice(node map[string]any, key, path string) ([]any, *CompileError) {
	raw, ok := node[key]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		e := newErr(path+"."+key, CodeBadType, "expected array, got %T", raw)
		return nil, &e
	}
	return items, nil
}
