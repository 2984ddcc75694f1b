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

package dicom

import (
	"encoding/binary"
)

// list of transfer syntaxes obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_A
const (
	// ImplicitVRLittleEndianUID is the Implicit VR Little Endian UID
	ImplicitVRLittleEndianUID = "1.2.840.10008.1.2"
	// ExplicitVRLittleEndianUID is the Explicit VR Little Endian UID
	ExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1"
	// ExplicitVRBigEndianUID is the Explicit VR Big Endian UID
	ExplicitVRBigEndianUID = "1.2.840.10008.1.2.2"
	// DeflatedExplicitVRLittleEndianUID is the Deflated Explicit VR Little Endian UID
	DeflatedExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1.99"

	// JPEGBaselineUID is the JPEG Baseline (Process 1) transfer syntax UID
	JPEGBaselineUID = "1.2.840.10008.1.2.4.50"
	// JPEGExtendedUID is the JPEG Extended (Process 2 & 4) transfer syntax UID
	JPEGExtendedUID = "1.2.840.10008.1.2.4.51"
	// JPEGLosslessNonHierarchical14UID is the JPEG Lossless, Non-Hierarchical
	// (Process 14) transfer syntax UID
	JPEGLosslessNonHierarchical14UID = "1.2.840.10008.1.2.4.57"
	// JPEGLosslessUID is the JPEG Lossless, Non-Hierarchical, First-Order
	// Prediction (Process 14, Selection Value 1) transfer syntax UID
	JPEGLosslessUID = "1.2.840.10008.1.2.4.70"
	// JPEGLSLosslessUID is the JPEG-LS Lossless transfer syntax UID
	JPEGLSLosslessUID = "1.2.840.10008.1.2.4.80"
	// JPEGLSLossyUID is the JPEG-LS Lossy (Near-Lossless) transfer syntax UID
	JPEGLSLossyUID = "1.2.840.10008.1.2.4.81"
	// JPEG2000LosslessUID is the JPEG 2000 (Lossless Only) transfer syntax UID
	JPEG2000LosslessUID = "1.2.840.10008.1.2.4.90"
	// JPEG2000UID is the JPEG 2000 transfer syntax UID
	JPEG2000UID = "1.2.840.10008.1.2.4.91"
	// JPEG2000Part2LosslessUID is the JPEG 2000 Part 2 Multi-component
	// (Lossless Only) transfer syntax UID
	JPEG2000Part2LosslessUID = "1.2.840.10008.1.2.4.92"
	// JPEG2000Part2UID is the JPEG 2000 Part 2 Multi-component transfer syntax UID
	JPEG2000Part2UID = "1.2.840.10008.1.2.4.93"

	// RLELosslessUID is the RLE Lossless transfer syntax UID
	RLELosslessUID = "1.2.840.10008.1.2.5"

	// MPEG2MainProfileMainLevelUID is the MPEG2 Main Profile / Main Level
	// transfer syntax UID
	MPEG2MainProfileMainLevelUID = "1.2.840.10008.1.2.4.100"
	// MPEG2MainProfileHighLevelUID is the MPEG2 Main Profile / High Level
	// transfer syntax UID
	MPEG2MainProfileHighLevelUID = "1.2.840.10008.1.2.4.101"
)

// TransferSyntax identifies the encoding of a parsed instance's dataset.
type TransferSyntax struct {
	UID string
}

// BigEndian is true if and only if the syntax encodes binary values in big
// endian byte order. Only Explicit VR Big Endian does; all other syntaxes are
// little endian according to PS3.5 A.4
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
func (s TransferSyntax) BigEndian() bool {
	return s.UID == ExplicitVRBigEndianUID
}

// ByteOrder returns the byte order of binary values under the syntax.
func (s TransferSyntax) ByteOrder() binary.ByteOrder {
	if s.BigEndian() {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
