package handlers

import (
	"reflect"
	"strings"

	"github.com/cheetahbyte/licensemgr/internal/services"
	"github.com/go-playground/validator/v10"
)

const defaultMaxBodyBytes = 1 << 20

type Handlers struct {
	Services     services.ServiceStack
	validate     *validator.Validate
	maxBodyBytes int64
}

func New(s services.ServiceStack, maxBodyBytes int64) *Handlers {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handlers{Services: s, validate: v, maxBodyBytes: maxBodyBytes}
}
