// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mint

import (
	"github.com/GoogleCloudPlatform/go-mint-builder/dicom"
)

// TagSet is a promotion policy level: the set of tags whose attributes belong
// to a shared (study or series level) container rather than to individual
// instances. Tag sets are supplied at builder construction and read-only for
// the life of the builder.
type TagSet map[dicom.DataElementTag]bool

// NewTagSet returns a TagSet containing the given tags.
func NewTagSet(tags ...dicom.DataElementTag) TagSet {
	set := make(TagSet, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}
	return set
}

// Contains is true if the tag belongs to the set.
func (s TagSet) Contains(tag dicom.DataElementTag) bool {
	return s[tag]
}
