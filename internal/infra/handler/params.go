package handler

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
)

func readQueryInt(r *http.Request, key string, min, max, def int) (int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, key, r.URL.Query(), &v); err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	if v == nil {
		return def, nil
	}
	return checkRange(key, *v, min, max)
}

func readQueryString(r *http.Request, key string) (string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, key, r.URL.Query(), &v); err != nil {
		return "", fmt.Errorf("%s is invalid", key)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func checkRange(name string, v, min, max int) (int, error) {
	if v < min {
		return 0, fmt.Errorf("%s must be >= %d", name, min)
	}
	if max > 0 && v > max {
		return 0, fmt.Errorf("%s must be <= %d", name, max)
	}
	return v, nil
}
