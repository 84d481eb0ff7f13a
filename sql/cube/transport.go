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

package cube

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dolthub/go-cubesql/sql"
)

// RetryingTransport wraps a transport with exponential backoff. Inner SQL
// generation is the only remote call on the rewrite path, so transient
// backend hiccups should not fail an otherwise valid plan.
type RetryingTransport struct {
	inner           sql.Transport
	initialInterval time.Duration
	maxElapsed      time.Duration
	maxInterval     time.Duration
}

// NewRetryingTransport decorates the given transport.
func NewRetryingTransport(inner sql.Transport) *RetryingTransport {
	return &RetryingTransport{
		inner:       inner,
		maxElapsed:  15 * time.Second,
		maxInterval: 2 * time.Second,
	}
}

// GenerateInnerSQL implements sql.Transport.
func (t *RetryingTransport) GenerateInnerSQL(ctx *sql.Context, req *sql.Request) (string, []interface{}, error) {
	var (
		sqlText string
		params  []interface{}
	)
	bo := backoff.NewExponentialBackOff()
	if t.initialInterval > 0 {
		bo.InitialInterval = t.initialInterval
	}
	bo.MaxElapsedTime = t.maxElapsed
	bo.MaxInterval = t.maxInterval
	op := func() error {
		var err error
		sqlText, params, err = t.inner.GenerateInnerSQL(ctx, req)
		return err
	}
	err := backoff.Retry(op, backoff.WithContext(bo, ctx))
	if err != nil {
		return "", nil, sql.ErrTransport.New(err)
	}
	return sqlText, params, nil
}
