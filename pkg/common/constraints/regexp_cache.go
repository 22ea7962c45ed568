// Copyright (c) 2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package constraints

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// DefaultRegexpCacheSize is the number of compiled LIKE/UNLIKE patterns
// kept by an evaluator.
const DefaultRegexpCacheSize = 512

// regexpCache memoises compiled full-match patterns. It is safe for
// concurrent use.
type regexpCache struct {
	cache *lru.Cache
}

func newRegexpCache(size int) *regexpCache {
	if size <= 0 {
		size = DefaultRegexpCacheSize
	}
	// lru.New only fails for non-positive sizes.
	cache, _ := lru.New(size)
	return &regexpCache{cache: cache}
}

// get returns the compiled pattern which matches a whole string against
// the given expression.
func (c *regexpCache) get(pattern string) (*regexp.Regexp, error) {
	if v, ok := c.cache.Get(pattern); ok {
		return v.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPattern, "%q: %v", pattern, err)
	}
	c.cache.Add(pattern, re)
	return re, nil
}

// matches reports whether the whole of s matches pattern.
func (c *regexpCache) matches(pattern, s string) (bool, error) {
	re, err := c.get(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}
