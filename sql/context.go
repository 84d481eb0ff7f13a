// Copyright 2025 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

import (
	"context"

	"github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// Context carries the per-rewrite state shared by every stage: the standard
// context for cancellation, the auth scope, the source query for
// diagnostics, a tracer, and a logger tagged with a stable rewrite id.
type Context struct {
	context.Context
	Scope          AuthScope
	rewriteID      uuid.UUID
	query          string
	sanitizedQuery string
	logger         *logrus.Entry
	tracer         opentracing.Tracer
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithScope sets the auth scope.
func WithScope(scope AuthScope) ContextOption {
	return func(ctx *Context) {
		ctx.Scope = scope
	}
}

// WithQuery sets the source query and its sanitized form. Only the
// sanitized form may appear in user-visible messages.
func WithQuery(query, sanitized string) ContextOption {
	return func(ctx *Context) {
		ctx.query = query
		ctx.sanitizedQuery = sanitized
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *logrus.Entry) ContextOption {
	return func(ctx *Context) {
		ctx.logger = logger
	}
}

// WithTracer sets the tracer used for rewrite spans.
func WithTracer(tracer opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = tracer
	}
}

// NewContext creates a Context from a parent context.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context:   ctx,
		rewriteID: uuid.NewV4(),
		tracer:    opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	c.logger = c.logger.WithField("rewrite_id", c.rewriteID.String())
	return c
}

// NewEmptyContext returns a default context suitable for tests.
func NewEmptyContext() *Context {
	return NewContext(context.Background())
}

// RewriteID returns the stable id of this rewrite, present in every log
// line and error metadata.
func (ctx *Context) RewriteID() uuid.UUID {
	return ctx.rewriteID
}

// Query returns the source query text.
func (ctx *Context) Query() string {
	return ctx.query
}

// SanitizedQuery returns the redacted query text safe to surface to users.
func (ctx *Context) SanitizedQuery() string {
	if ctx.sanitizedQuery == "" {
		return ctx.query
	}
	return ctx.sanitizedQuery
}

// GetLogger returns the logger tagged with the rewrite id.
func (ctx *Context) GetLogger() *logrus.Entry {
	return ctx.logger
}

// Span starts a new span with the given operation name, child of the
// context's active span if there is one.
func (ctx *Context) Span(opName string, opts ...opentracing.StartSpanOption) (opentracing.Span, *Context) {
	parent := opentracing.SpanFromContext(ctx.Context)
	if parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := ctx.tracer.StartSpan(opName, opts...)
	newCtx := *ctx
	newCtx.Context = opentracing.ContextWithSpan(ctx.Context, span)
	return span, &newCtx
}

// Cancelled reports whether the context has been cancelled. The rewrite driver
// checks it between saturation iterations.
func (ctx *Context) Cancelled() bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
