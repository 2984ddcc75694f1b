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
	"encoding/binary"

	"github.com/GoogleCloudPlatform/go-mint-builder/dicom"
)

// jpegTransferSyntaxUIDs is the family of syntaxes whose frames may span a
// variable number of fragments; frame boundaries are recovered from the Basic
// Offset Table or by scanning for codestream start markers.
var jpegTransferSyntaxUIDs = map[string]bool{
	dicom.JPEGBaselineUID:                  true,
	dicom.JPEGExtendedUID:                  true,
	dicom.JPEGLosslessNonHierarchical14UID: true,
	dicom.JPEGLosslessUID:                  true,
	dicom.JPEGLSLosslessUID:                true,
	dicom.JPEGLSLossyUID:                   true,
	dicom.JPEG2000LosslessUID:              true,
	dicom.JPEG2000UID:                      true,
	dicom.JPEG2000Part2LosslessUID:         true,
	dicom.JPEG2000Part2UID:                 true,
}

// fragmentFramingOverhead is the per-fragment encoding overhead (item tag +
// item length) counted by Basic Offset Table offsets.
const fragmentFramingOverhead = 8

// segmentPixelData populates one BinaryStore entry per frame of the pixel
// data element and records the entry range on the attribute: BinaryID is the
// index of the first frame's entry, FrameCount the number of entries, and
// BinarySize the total payload byte count across frames.
func (b *Builder) segmentPixelData(path string, elem *dicom.DataElement, origin *dicom.DataSet,
	attr *Attribute, tagPath []uint32, syntax dicom.TransferSyntax) error {
	attr.BinaryID = b.store.Len()

	frames, err := origin.IntValue(dicom.NumberOfFramesTag, syntax.ByteOrder(), 1)
	if err != nil {
		return err
	}
	if frames == 0 {
		// Be lenient if the SOP instance creator did not care about frames.
		frames = 1
	}
	attr.FrameCount = frames

	if elem.Fragments != nil {
		return b.segmentEncapsulated(path, elem.Fragments, frames, attr, tagPath, syntax)
	}
	return b.segmentNative(path, elem.Value, frames, origin, attr, tagPath, syntax)
}

// segmentNative validates the payload length against the image pixel macro
// attributes and appends one contiguous byte-range entry per frame.
func (b *Builder) segmentNative(path string, data []byte, frames int, origin *dicom.DataSet,
	attr *Attribute, tagPath []uint32, syntax dicom.TransferSyntax) error {
	order := syntax.ByteOrder()
	rows, err := origin.IntValue(dicom.RowsTag, order, -1)
	if err != nil {
		return err
	}
	columns, err := origin.IntValue(dicom.ColumnsTag, order, -1)
	if err != nil {
		return err
	}
	bitsAllocated, err := origin.IntValue(dicom.BitsAllocatedTag, order, -1)
	if err != nil {
		return err
	}
	samples, err := origin.IntValue(dicom.SamplesPerPixelTag, order, -1)
	if err != nil {
		return err
	}

	if rows <= 0 || columns <= 0 || bitsAllocated <= 0 || samples <= 0 {
		return &PixelGeometryError{
			Path:            path,
			Rows:            rows,
			Columns:         columns,
			BitsAllocated:   bitsAllocated,
			SamplesPerPixel: samples,
		}
	}
	frameSize := rows * columns * samples * (bitsAllocated / 8)

	// The payload may carry one byte of padding to reach an even length.
	expectedLength := frameSize * frames
	if expectedLength&1 == 1 {
		expectedLength++
	}
	if expectedLength != len(data) {
		return &PixelSizeError{
			Path:            path,
			Got:             len(data),
			Want:            expectedLength,
			Rows:            rows,
			Columns:         columns,
			BitsAllocated:   bitsAllocated,
			SamplesPerPixel: samples,
		}
	}

	for i := 0; i < frames; i++ {
		b.store.AppendNative(path, tagPath, int64(i)*int64(frameSize), int64(frameSize))
	}
	attr.BinarySize = int64(len(data))
	return nil
}

// segmentEncapsulated maps the ordered fragments of an encapsulated payload
// to frames. Fragment 0 is the Basic Offset Table slot; frame data begins at
// fragment 1.
func (b *Builder) segmentEncapsulated(path string, fragments [][]byte, frames int,
	attr *Attribute, tagPath []uint32, syntax dicom.TransferSyntax) error {
	if len(fragments) == 0 {
		return &FragmentationError{Path: path, TransferSyntaxUID: syntax.UID, FrameCount: frames}
	}

	offsets, err := readOffsetTable(path, fragments[0], frames)
	if err != nil {
		return err
	}

	// Frame-to-fragment assignment is decided once per payload. With exactly
	// one data fragment per frame the mapping is positional regardless of
	// syntax. JPEG-family frames may span fragments and are delimited by
	// scanning. RLE and MPEG2 mandate one fragment per frame and cannot be
	// scanned, so any other count is a hard failure.
	numFragments := len(fragments)
	singleFragmentPerFrame := false
	switch {
	case numFragments == frames+1:
		singleFragmentPerFrame = true
	case jpegTransferSyntaxUIDs[syntax.UID]:
	case syntax.UID == dicom.RLELosslessUID,
		syntax.UID == dicom.MPEG2MainProfileMainLevelUID,
		syntax.UID == dicom.MPEG2MainProfileHighLevelUID:
		return &FragmentationError{
			Path:              path,
			TransferSyntaxUID: syntax.UID,
			FragmentCount:     numFragments - 1,
			FrameCount:        frames,
		}
	default:
		return &UnsupportedSyntaxError{Path: path, TransferSyntaxUID: syntax.UID}
	}

	fragmentIdx := 1
	fragmentByteIdx := 0
	binarySize := int64(0)
	for i := 0; i < frames; i++ {
		frameStartFragment := fragmentIdx
		for {
			if fragmentIdx >= numFragments {
				return &FragmentationError{
					Path:              path,
					TransferSyntaxUID: syntax.UID,
					FragmentCount:     numFragments - 1,
					FrameCount:        frames,
				}
			}
			fragmentBytes := fragments[fragmentIdx]
			fragmentIdx++
			binarySize += int64(len(fragmentBytes))
			fragmentByteIdx += len(fragmentBytes) + fragmentFramingOverhead

			if !frameContinues(singleFragmentPerFrame, fragments, fragmentIdx, offsets, i, frames, fragmentByteIdx) {
				break
			}
		}
		b.store.AppendFragments(path, tagPath, frameStartFragment, fragmentIdx-frameStartFragment)
	}

	attr.BinarySize = binarySize
	return nil
}

// frameContinues decides whether the frame with index frameIdx extends into
// the fragment at nextFragmentIdx.
func frameContinues(singleFragmentPerFrame bool, fragments [][]byte, nextFragmentIdx int,
	offsets []uint32, frameIdx, frames, fragmentByteIdx int) bool {
	if singleFragmentPerFrame {
		return false
	}
	// Every remaining frame needs at least one fragment; a frame may only
	// keep consuming while more fragments remain than frames to fill.
	if nextFragmentIdx+frames-frameIdx-1 >= len(fragments) {
		return false
	}
	if frameIdx+1 == frames {
		// The last frame consumes whatever fragments remain.
		return true
	}
	if offsets != nil {
		return fragmentByteIdx < int(offsets[frameIdx+1])
	}
	return !startsNewFrame(fragments[nextFragmentIdx])
}

// readOffsetTable parses the Basic Offset Table fragment into per-frame byte
// offsets. An empty table yields nil. A non-empty table must hold exactly one
// 32-bit little endian offset per declared frame.
func readOffsetTable(path string, table []byte, frames int) ([]uint32, error) {
	if len(table) == 0 {
		return nil, nil
	}
	if len(table) != frames*4 {
		return nil, &OffsetTableError{Path: path, Length: len(table), FrameCount: frames}
	}
	offsets := make([]uint32, 0, frames)
	for i := 0; i < len(table); i += 4 {
		offsets = append(offsets, binary.LittleEndian.Uint32(table[i:]))
	}
	return offsets, nil
}

// startsNewFrame is true if the fragment begins a new frame's codestream:
// after any leading 0xFF fill bytes, a JPEG Start-Of-Image marker (0xD8) or a
// JPEG 2000 Start-Of-Codestream marker (0x4F). A fragment too short to hold a
// marker is treated as a continuation.
func startsNewFrame(fragment []byte) bool {
	if len(fragment) < 2 || fragment[0] != 0xFF {
		return false
	}
	peekIdx := 1
	for peekIdx < len(fragment)-1 && fragment[peekIdx] == 0xFF {
		peekIdx++
	}
	switch fragment[peekIdx] {
	case 0xD8, 0x4F:
		return true
	}
	return false
}
