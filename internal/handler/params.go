package handler

import (
	"net/url"
	"strconv"
)

func queryInt(q url.Values, key string) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0
	}
	return v
}

func queryIntPtr(q url.Values, key string) *int {
	if q.Get(key) == "" {
		return nil
	}
	v, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return nil
	}
	return &v
}

func queryFloatPtr(q url.Values, key string) *float64 {
	if q.Get(key) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(q.Get(key), 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryBool(q url.Values, key string) bool {
	v, err := strconv.ParseBool(q.Get(key))
	return err == nil && v
}
