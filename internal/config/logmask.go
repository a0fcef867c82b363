// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"reflect"
	"strings"
	"time"
)

// sensitiveKeywords mark field and variable names whose values are never logged.
var sensitiveKeywords = []string{
	"password",
	"passwd",
	"secret",
	"apikey",
	"api_key",
	"credential",
}

// MaskSecrets converts data into maps, slices and scalars with every
// sensitive field replaced by "***". Durations are rendered as strings.
func MaskSecrets(data any) any {
	if data == nil {
		return nil
	}
	if d, ok := data.(time.Duration); ok {
		return d.String()
	}

	val := reflect.ValueOf(data)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		result := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			if isSensitiveKey(key) {
				result[key] = "***"
				continue
			}
			result[key] = MaskSecrets(iter.Value().Interface())
		}
		return result

	case reflect.Slice, reflect.Array:
		result := make([]any, val.Len())
		for i := range result {
			result[i] = MaskSecrets(val.Index(i).Interface())
		}
		return result

	case reflect.Struct:
		result := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			if isSensitiveKey(field.Name) {
				if val.Field(i).IsZero() {
					result[field.Name] = ""
				} else {
					result[field.Name] = "***"
				}
				continue
			}
			result[field.Name] = MaskSecrets(val.Field(i).Interface())
		}
		return result

	default:
		return val.Interface()
	}
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}
	return false
}
