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

// standardizeAttribute rewrites the raw bytes of a float attribute into
// little endian form when the originating syntax was big endian. Applied only
// to attributes landing in a shared (study or series level) container, whose
// contributing instances may use differing byte orders.
func standardizeAttribute(attr *Attribute, bigEndian bool) {
	if !bigEndian || len(attr.Bytes) == 0 {
		return
	}

	var width int
	switch attr.VR {
	case "FL":
		width = 4
	case "FD":
		width = 8
	default:
		return
	}
	if len(attr.Bytes)%width != 0 {
		return
	}

	swapped := make([]byte, len(attr.Bytes))
	for i := 0; i < len(attr.Bytes); i += width {
		for j := 0; j < width; j++ {
			swapped[i+j] = attr.Bytes[i+width-1-j]
		}
	}
	attr.Bytes = swapped
}
