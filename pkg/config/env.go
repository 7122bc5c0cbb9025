package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// applyEnvOverrides 按 env 标签应用环境变量覆盖
func applyEnvOverrides(v interface{}, prefix string) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return nil
	}
	return applyEnvToStruct(val.Elem(), prefix)
}

func applyEnvToStruct(val reflect.Value, prefix string) error {
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		if envKey := fieldType.Tag.Get("env"); envKey != "" {
			if prefix != "" {
				envKey = prefix + "_" + envKey
			}
			if envVal, ok := os.LookupEnv(envKey); ok && envVal != "" {
				if err := setFieldValue(field, envVal); err != nil {
					return fmt.Errorf("%s: %w", envKey, err)
				}
			}
		}

		if field.Kind() == reflect.Struct {
			if err := applyEnvToStruct(field, prefix); err != nil {
				return err
			}
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
