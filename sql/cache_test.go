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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUCache(t *testing.T) {
	t.Run("basic methods", func(t *testing.T) {
		require := require.New(t)
		cache := NewLRUCache(1024)

		require.NoError(cache.Put(1, "foo", 10))
		v, err := cache.Get(1)
		require.NoError(err)
		require.Equal("foo", v)

		_, err = cache.Get(2)
		require.Error(err)
		require.True(ErrKeyNotFound.Is(err))

		cache.Free()
		_, err = cache.Get(1)
		require.Error(err)
		require.True(ErrKeyNotFound.Is(err))
	})

	t.Run("byte budget evicts oldest", func(t *testing.T) {
		require := require.New(t)
		cache := NewLRUCache(100)

		require.NoError(cache.Put(1, "a", 60))
		require.NoError(cache.Put(2, "b", 60))

		// The first entry no longer fits.
		_, err := cache.Get(1)
		require.Error(err)
		v, err := cache.Get(2)
		require.NoError(err)
		require.Equal("b", v)
		require.True(cache.Bytes() <= 100)
	})

	t.Run("replacing a key adjusts accounting", func(t *testing.T) {
		require := require.New(t)
		cache := NewLRUCache(100)

		require.NoError(cache.Put(1, "a", 40))
		require.NoError(cache.Put(1, "b", 50))
		require.Equal(uint64(50), cache.Bytes())

		v, err := cache.Get(1)
		require.NoError(err)
		require.Equal("b", v)
	})
}
