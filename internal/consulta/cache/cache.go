// Package cache stores successful registry lookups keyed by normalized
// cédula. Records are cached whole; response views are derived per request,
// so one entry serves every format.
package cache

import (
	"context"

	"jceconsulta/internal/jce"
)

const keyPrefix = "consulta:ced:"

// Store is the consultation cache contract. Get reports a miss with
// found=false rather than an error; errors mean the store itself failed.
type Store interface {
	Get(ctx context.Context, cedula string) (*jce.Record, bool, error)
	Put(ctx context.Context, cedula string, rec *jce.Record) error
}

func recordKey(cedula string) string {
	return keyPrefix + cedula
}
