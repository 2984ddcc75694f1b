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
	"testing"

	"github.com/GoogleCloudPlatform/go-mint-builder/dicom"
)

func TestSegmentNative(t *testing.T) {
	b := NewBuilder(TagSet{}, TagSet{})
	ds := nativePixelDataSet(2, 2, 8, 1, "3", make([]byte, 12))
	if err := b.Accumulate("a.dcm", ds, littleEndianSyntax); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	attr := pixelDataAttribute(t, b)
	if attr.BinaryID != 0 || attr.FrameCount != 3 || attr.BinarySize != 12 {
		t.Fatalf("attribute: got id %v frames %v size %v, want 0, 3, 12", attr.BinaryID, attr.FrameCount, attr.BinarySize)
	}
	if got := b.BinaryStore().Len(); got != 3 {
		t.Fatalf("store entries: got %v, want 3", got)
	}
	for i := 0; i < 3; i++ {
		entry := b.BinaryStore().Entry(i)
		if entry.Encapsulated {
			t.Fatalf("entry %v: got fragment range, want native byte range", i)
		}
		if entry.Offset != int64(i*4) || entry.Length != 4 {
			t.Fatalf("entry %v: got [%v, +%v), want [%v, +4)", i, entry.Offset, entry.Length, i*4)
		}
	}
}

func TestSegmentNative_SizeMismatch(t *testing.T) {
	for _, size := range []int{11, 13} {
		b := NewBuilder(TagSet{}, TagSet{})
		ds := nativePixelDataSet(2, 2, 8, 1, "3", make([]byte, size))
		err := b.Accumulate("a.dcm", ds, littleEndianSyntax)
		sizeErr, ok := err.(*PixelSizeError)
		if !ok {
			t.Fatalf("payload of %v bytes: got %v, want *PixelSizeError", size, err)
		}
		if sizeErr.Got != size || sizeErr.Want != 12 {
			t.Fatalf("size error: got %v/%v, want %v/12", sizeErr.Got, sizeErr.Want, size)
		}
		if sizeErr.Rows != 2 || sizeErr.Columns != 2 || sizeErr.BitsAllocated != 8 || sizeErr.SamplesPerPixel != 1 {
			t.Fatalf("size error must report the pixel macro attributes, got %+v", sizeErr)
		}
	}
}

func TestSegmentNative_EvenLengthPadding(t *testing.T) {
	// One frame of 1x3 8-bit pixels is 3 bytes; the payload carries one byte
	// of padding to an even length.
	b := NewBuilder(TagSet{}, TagSet{})
	ds := nativePixelDataSet(1, 3, 8, 1, "1", make([]byte, 4))
	if err := b.Accumulate("a.dcm", ds, littleEndianSyntax); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry := b.BinaryStore().Entry(0)
	if entry.Offset != 0 || entry.Length != 3 {
		t.Fatalf("frame range: got [%v, +%v), want [0, +3)", entry.Offset, entry.Length)
	}
}

func TestSegmentNative_InvalidGeometry(t *testing.T) {
	b := NewBuilder(TagSet{}, TagSet{})
	ds := nativePixelDataSet(0, 2, 8, 1, "1", make([]byte, 2))
	err := b.Accumulate("a.dcm", ds, littleEndianSyntax)
	geoErr, ok := err.(*PixelGeometryError)
	if !ok {
		t.Fatalf("got %v, want *PixelGeometryError", err)
	}
	if geoErr.Rows != 0 || geoErr.Columns != 2 || geoErr.BitsAllocated != 8 || geoErr.SamplesPerPixel != 1 {
		t.Fatalf("geometry error must report the offending values, got %+v", geoErr)
	}
}

func TestSegmentNative_ZeroFrameCountMeansOne(t *testing.T) {
	b := NewBuilder(TagSet{}, TagSet{})
	ds := nativePixelDataSet(2, 2, 8, 1, "0", make([]byte, 4))
	if err := b.Accumulate("a.dcm", ds, littleEndianSyntax); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pixelDataAttribute(t, b).FrameCount; got != 1 {
		t.Fatalf("frame count: got %v, want 1", got)
	}
}

func TestSegmentEncapsulated_SingleFragmentPerFrame(t *testing.T) {
	// With fragmentCount == frameCount + 1 the mapping is positional for any
	// transfer syntax, including the ones that cannot be scanned.
	for _, uid := range []string{dicom.RLELosslessUID, dicom.MPEG2MainProfileMainLevelUID, dicom.JPEGBaselineUID} {
		b := NewBuilder(TagSet{}, TagSet{})
		fragments := [][]byte{{}, {1, 2, 3, 4}, {5, 6}}
		ds := encapsulatedPixelDataSet("2", fragments)
		if err := b.Accumulate("a.dcm", ds, dicom.TransferSyntax{UID: uid}); err != nil {
			t.Fatalf("syntax %v: unexpected error: %v", uid, err)
		}

		attr := pixelDataAttribute(t, b)
		if attr.BinaryID != 0 || attr.FrameCount != 2 || attr.BinarySize != 6 {
			t.Fatalf("syntax %v: attribute got id %v frames %v size %v, want 0, 2, 6",
				uid, attr.BinaryID, attr.FrameCount, attr.BinarySize)
		}
		assertFragmentRanges(t, b.BinaryStore(), [][2]int{{1, 1}, {2, 1}})
	}
}

func TestSegmentEncapsulated_RLEFragmentMismatch(t *testing.T) {
	b := NewBuilder(TagSet{}, TagSet{})
	fragments := [][]byte{{}, {1}, {2}, {3}}
	ds := encapsulatedPixelDataSet("2", fragments)
	err := b.Accumulate("a.dcm", ds, dicom.TransferSyntax{UID: dicom.RLELosslessUID})
	fragErr, ok := err.(*FragmentationError)
	if !ok {
		t.Fatalf("got %v, want *FragmentationError", err)
	}
	if fragErr.FragmentCount != 3 || fragErr.FrameCount != 2 {
		t.Fatalf("fragmentation error: got %v fragments %v frames, want 3, 2", fragErr.FragmentCount, fragErr.FrameCount)
	}
}

func TestSegmentEncapsulated_UnsupportedSyntax(t *testing.T) {
	b := NewBuilder(TagSet{}, TagSet{})
	fragments := [][]byte{{}, {1}, {2}, {3}}
	ds := encapsulatedPixelDataSet("2", fragments)
	err := b.Accumulate("a.dcm", ds, littleEndianSyntax)
	unsupported, ok := err.(*UnsupportedSyntaxError)
	if !ok {
		t.Fatalf("got %v, want *UnsupportedSyntaxError", err)
	}
	if unsupported.TransferSyntaxUID != dicom.ExplicitVRLittleEndianUID {
		t.Fatalf("unsupported syntax error uid: got %v, want %v",
			unsupported.TransferSyntaxUID, dicom.ExplicitVRLittleEndianUID)
	}
}

func TestSegmentEncapsulated_OffsetTableLengthMismatch(t *testing.T) {
	b := NewBuilder(TagSet{}, TagSet{})
	fragments := [][]byte{{0, 0, 0, 0}, {1}, {2}}
	ds := encapsulatedPixelDataSet("2", fragments)
	err := b.Accumulate("a.dcm", ds, dicom.TransferSyntax{UID: dicom.JPEGBaselineUID})
	tableErr, ok := err.(*OffsetTableError)
	if !ok {
		t.Fatalf("got %v, want *OffsetTableError", err)
	}
	if tableErr.Length != 4 || tableErr.FrameCount != 2 {
		t.Fatalf("offset table error: got length %v frames %v, want 4, 2", tableErr.Length, tableErr.FrameCount)
	}
}

func TestSegmentEncapsulated_JPEGScanWithOffsetTable(t *testing.T) {
	// Frame 0 spans fragments 1 and 2, frame 1 is fragment 3. The second
	// frame's table offset counts fragment bytes plus the 8-byte item
	// framing of each preceding fragment: (4+8) + (6+8) = 26.
	table := make([]byte, 8)
	binary.LittleEndian.PutUint32(table[4:], 26)
	fragments := [][]byte{table, {1, 2, 3, 4}, {5, 6, 7, 8, 9, 10}, {11, 12, 13, 14, 15}}

	b := NewBuilder(TagSet{}, TagSet{})
	ds := encapsulatedPixelDataSet("2", fragments)
	if err := b.Accumulate("a.dcm", ds, dicom.TransferSyntax{UID: dicom.JPEG2000UID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	attr := pixelDataAttribute(t, b)
	if attr.BinarySize != 15 {
		t.Fatalf("binary size: got %v, want 15 (table bytes excluded)", attr.BinarySize)
	}
	assertFragmentRanges(t, b.BinaryStore(), [][2]int{{1, 2}, {3, 1}})
}

func TestSegmentEncapsulated_JPEGScanMarkerPeek(t *testing.T) {
	// No offset table: fragment 2 continues frame 0 (no marker), fragment 3
	// opens frame 1 with a Start-Of-Image marker.
	fragments := [][]byte{
		{},
		{0xFF, 0xD8, 0x01, 0x02},
		{0x00, 0x01, 0x02},
		{0xFF, 0xD8, 0x03},
	}

	b := NewBuilder(TagSet{}, TagSet{})
	ds := encapsulatedPixelDataSet("2", fragments)
	if err := b.Accumulate("a.dcm", ds, dicom.TransferSyntax{UID: dicom.JPEGBaselineUID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFragmentRanges(t, b.BinaryStore(), [][2]int{{1, 2}, {3, 1}})
}

func TestSegmentEncapsulated_TooFewFragments(t *testing.T) {
	b := NewBuilder(TagSet{}, TagSet{})
	fragments := [][]byte{{}, {0xFF, 0xD8}, {0xFF, 0xD8}}
	ds := encapsulatedPixelDataSet("3", fragments)
	err := b.Accumulate("a.dcm", ds, dicom.TransferSyntax{UID: dicom.JPEGBaselineUID})
	if _, ok := err.(*FragmentationError); !ok {
		t.Fatalf("got %v, want *FragmentationError", err)
	}
}

func TestStartsNewFrame(t *testing.T) {
	tests := []struct {
		name     string
		fragment []byte
		want     bool
	}{
		{"empty fragment continues", nil, false},
		{"single byte continues", []byte{0xFF}, false},
		{"start of image", []byte{0xFF, 0xD8}, true},
		{"start of codestream", []byte{0xFF, 0x4F}, true},
		{"marker after fill bytes", []byte{0xFF, 0xFF, 0xFF, 0xD8}, true},
		{"no leading ff continues", []byte{0x00, 0xD8}, false},
		{"unrelated marker continues", []byte{0xFF, 0xC0}, false},
		{"all fill bytes continues", []byte{0xFF, 0xFF, 0xFF}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := startsNewFrame(tc.fragment); got != tc.want {
				t.Fatalf("startsNewFrame(% X): got %v, want %v", tc.fragment, got, tc.want)
			}
		})
	}
}

func TestBinaryStore_AppendOrder(t *testing.T) {
	// Indices are assigned in strict append order even when binary elements
	// are interleaved with other containers and sequences.
	b := NewBuilder(TagSet{}, TagSet{})
	b.SetInlineThreshold(0)
	ds := instanceDataSet(testStudyUID, testSeriesUID, "1.1",
		&dicom.DataElement{Tag: overlayDataTag, VR: dicom.OBVR, Value: []byte{1}},
	)
	ds.Elements = append(ds.Elements, nativePixelDataSet(2, 2, 8, 1, "2", make([]byte, 8)).Elements[3:]...)
	if err := b.Accumulate("a.dcm", ds, littleEndianSyntax); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := b.Study().Series(testSeriesUID).Instances()[0]
	if got := inst.Attribute(overlayDataTag).BinaryID; got != 0 {
		t.Fatalf("first appended payload: got id %v, want 0", got)
	}
	if got := inst.Attribute(dicom.PixelDataTag).BinaryID; got != 1 {
		t.Fatalf("first pixel frame: got id %v, want 1", got)
	}
	if got := b.BinaryStore().Len(); got != 3 {
		t.Fatalf("store entries: got %v, want 3", got)
	}
}

func pixelDataAttribute(t *testing.T, b *Builder) *Attribute {
	t.Helper()
	attr := b.Study().Series(testSeriesUID).Instances()[0].Attribute(dicom.PixelDataTag)
	if attr == nil {
		t.Fatalf("pixel data attribute missing from instance")
	}
	return attr
}

func assertFragmentRanges(t *testing.T, store *BinaryStore, want [][2]int) {
	t.Helper()
	if store.Len() != len(want) {
		t.Fatalf("store entries: got %v, want %v", store.Len(), len(want))
	}
	for i, frameRange := range want {
		entry := store.Entry(i)
		if !entry.Encapsulated {
			t.Fatalf("entry %v: got native byte range, want fragment range", i)
		}
		if entry.FragmentStart != frameRange[0] || entry.FragmentCount != frameRange[1] {
			t.Fatalf("entry %v: got fragments [%v, +%v), want [%v, +%v)",
				i, entry.FragmentStart, entry.FragmentCount, frameRange[0], frameRange[1])
		}
	}
}

func usElement(tag dicom.DataElementTag, value uint16) *dicom.DataElement {
	buff := make([]byte, 2)
	binary.LittleEndian.PutUint16(buff, value)
	return &dicom.DataElement{Tag: tag, VR: dicom.USVR, Value: buff}
}

// nativePixelDataSet returns an instance dataset with the given image pixel
// macro attributes and a natively encoded pixel data payload.
func nativePixelDataSet(rows, columns, bitsAllocated, samples uint16, numberOfFrames string, payload []byte) *dicom.DataSet {
	return instanceDataSet(testStudyUID, testSeriesUID, "1.1",
		usElement(dicom.RowsTag, rows),
		usElement(dicom.ColumnsTag, columns),
		usElement(dicom.BitsAllocatedTag, bitsAllocated),
		usElement(dicom.SamplesPerPixelTag, samples),
		plainElement(dicom.NumberOfFramesTag, dicom.ISVR, numberOfFrames),
		&dicom.DataElement{Tag: dicom.PixelDataTag, VR: dicom.OWVR, Value: payload},
	)
}

// encapsulatedPixelDataSet returns an instance dataset with a fragmented
// pixel data payload. fragments[0] is the Basic Offset Table slot.
func encapsulatedPixelDataSet(numberOfFrames string, fragments [][]byte) *dicom.DataSet {
	return instanceDataSet(testStudyUID, testSeriesUID, "1.1",
		plainElement(dicom.NumberOfFramesTag, dicom.ISVR, numberOfFrames),
		&dicom.DataElement{Tag: dicom.PixelDataTag, VR: dicom.OBVR, Fragments: fragments},
	)
}
