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
	"fmt"

	"github.com/GoogleCloudPlatform/go-mint-builder/dicom"
)

// StudyMismatchError is returned when an accumulated instance declares a study
// instance UID different from the study already in progress.
type StudyMismatchError struct {
	Path string
	Got  string
	Want string
}

func (e *StudyMismatchError) Error() string {
	return fmt.Sprintf("%v: study instance uid %q does not match current study %q", e.Path, e.Got, e.Want)
}

// MissingSeriesUIDError is returned when an accumulated instance has no series
// instance UID.
type MissingSeriesUIDError struct {
	Path string
}

func (e *MissingSeriesUIDError) Error() string {
	return fmt.Sprintf("%v: missing series instance uid", e.Path)
}

// MissingVRError is returned when a data element does not declare a value
// representation.
type MissingVRError struct {
	Path string
	Tag  dicom.DataElementTag
}

func (e *MissingVRError) Error() string {
	return fmt.Sprintf("%v: element %08X has no value representation", e.Path, uint32(e.Tag))
}

// UnexpectedFragmentsError is returned when a fragmented value field is found
// on a tag other than PixelData.
type UnexpectedFragmentsError struct {
	Path string
	Tag  dicom.DataElementTag
}

func (e *UnexpectedFragmentsError) Error() string {
	return fmt.Sprintf("%v: cannot handle item fragments outside of the PixelData element, got them on %08X",
		e.Path, uint32(e.Tag))
}

// PixelGeometryError is returned when the image pixel macro attributes of an
// instance with native pixel data are not all strictly positive.
type PixelGeometryError struct {
	Path            string
	Rows            int
	Columns         int
	BitsAllocated   int
	SamplesPerPixel int
}

func (e *PixelGeometryError) Error() string {
	return fmt.Sprintf("%v: invalid image pixel macro attributes (rows, columns, bits allocated, samples): (%v, %v, %v, %v)",
		e.Path, e.Rows, e.Columns, e.BitsAllocated, e.SamplesPerPixel)
}

// PixelSizeError is returned when the native pixel data length disagrees with
// the length derived from the image pixel macro attributes.
type PixelSizeError struct {
	Path            string
	Got             int
	Want            int
	Rows            int
	Columns         int
	BitsAllocated   int
	SamplesPerPixel int
}

func (e *PixelSizeError) Error() string {
	return fmt.Sprintf("%v: pixel data size %v does not correspond to expected size %v based on "+
		"(rows, columns, bits allocated, samples) = (%v, %v, %v, %v)",
		e.Path, e.Got, e.Want, e.Rows, e.Columns, e.BitsAllocated, e.SamplesPerPixel)
}

// OffsetTableError is returned when a non-empty Basic Offset Table length
// disagrees with the declared frame count.
type OffsetTableError struct {
	Path       string
	Length     int
	FrameCount int
}

func (e *OffsetTableError) Error() string {
	return fmt.Sprintf("%v: basic offset table length of %v not matching declaration of %v frames",
		e.Path, e.Length, e.FrameCount)
}

// FragmentationError is returned when a transfer syntax requires exactly one
// fragment per frame but the fragment count disagrees, or when the fragments
// of an encapsulated value field run out before all declared frames are
// assigned.
type FragmentationError struct {
	Path              string
	TransferSyntaxUID string
	FragmentCount     int
	FrameCount        int
}

func (e *FragmentationError) Error() string {
	return fmt.Sprintf("%v: transfer syntax %v cannot map %v fragments to %v frames",
		e.Path, e.TransferSyntaxUID, e.FragmentCount, e.FrameCount)
}

// UnsupportedSyntaxError is returned when encapsulated pixel data is encoded
// with a transfer syntax the segmenter does not recognize.
type UnsupportedSyntaxError struct {
	Path              string
	TransferSyntaxUID string
}

func (e *UnsupportedSyntaxError) Error() string {
	return fmt.Sprintf("%v: unsupported encapsulated transfer syntax: %v", e.Path, e.TransferSyntaxUID)
}
