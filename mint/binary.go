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

// BinaryEntry locates one binary payload in its source file. No payload bytes
// are held; resolving an entry to bytes is the job of an external Resolver.
//
// For payloads in native encoding, Offset and Length give the byte range
// within the originating element's value field. For payloads in encapsulated
// encoding, FragmentStart and FragmentCount give the range of fragment
// indices composing the payload, counted with the Basic Offset Table occupying
// fragment index 0.
type BinaryEntry struct {
	// Source identifies the file the payload originated from
	Source string

	// TagPath locates the originating element within its instance: one
	// (tag, item index) pair per sequence nesting level, then the element's
	// own tag. Kept for traceability, not used for lookup.
	TagPath []uint32

	Offset int64
	Length int64

	FragmentStart int
	FragmentCount int

	// Encapsulated selects between the Offset/Length and the
	// FragmentStart/FragmentCount forms
	Encapsulated bool
}

// BinaryStore is the append-only ledger of binary payload descriptors
// produced by one accumulation run. Indices are assigned in append order
// starting at 0 and are never reused or reordered.
type BinaryStore struct {
	entries []BinaryEntry
}

// Len returns the number of entries in the store. Because indices are
// sequential, Len is also the index the next appended entry will receive.
func (s *BinaryStore) Len() int {
	return len(s.entries)
}

// Entry returns the entry at the given index.
func (s *BinaryStore) Entry(index int) BinaryEntry {
	return s.entries[index]
}

// Entries returns all entries in index order.
func (s *BinaryStore) Entries() []BinaryEntry {
	return s.entries
}

// AppendNative appends a descriptor for a contiguous byte range of a natively
// encoded value field and returns its index.
func (s *BinaryStore) AppendNative(source string, tagPath []uint32, offset, length int64) int {
	s.entries = append(s.entries, BinaryEntry{
		Source:  source,
		TagPath: tagPath,
		Offset:  offset,
		Length:  length,
	})
	return len(s.entries) - 1
}

// AppendFragments appends a descriptor for a range of fragments of an
// encapsulated value field and returns its index.
func (s *BinaryStore) AppendFragments(source string, tagPath []uint32, start, count int) int {
	s.entries = append(s.entries, BinaryEntry{
		Source:        source,
		TagPath:       tagPath,
		FragmentStart: start,
		FragmentCount: count,
		Encapsulated:  true,
	})
	return len(s.entries) - 1
}

// Resolver materializes the bytes a BinaryEntry refers to. Implementations
// live outside this package: the store records where payloads are, an
// external collaborator decides how to read them.
type Resolver interface {
	Resolve(entry BinaryEntry) ([]byte, error)
}
